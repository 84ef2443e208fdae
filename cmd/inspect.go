package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mabhi256/jmuzzle/internal/classpath"
	"github.com/mabhi256/jmuzzle/internal/jvm"
	"github.com/mabhi256/jmuzzle/utils"
)

var inspectSpace spaceFlags

var inspectCmd = &cobra.Command{
	Use:   "inspect [class-name]",
	Short: "Show the declared structure of a class as the verifier sees it",
	Long: `Resolves a class (binary a.b.C or internal a/b/C form) on the class path
and prints its modifiers, superclass chain, interfaces, fields and methods.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		space, closeSpace, err := inspectSpace.openSpace(cmd)
		if err != nil {
			return err
		}
		defer closeSpace()

		resolver := newResolver()
		className := jvm.BinaryName(args[0])

		res := resolver.Resolve(space, className)
		switch res.Status {
		case classpath.Unresolved:
			return fmt.Errorf("class %s not found in %s", className, space)
		case classpath.Failed:
			return fmt.Errorf("failed to resolve %s: %w", className, res.Err)
		}

		printClass(cmd.OutOrStdout(), res, superChain(resolver, space, res.Class))
		return nil
	},
}

// superChain lists the superclasses of class with their resolution status
func superChain(resolver *classpath.Resolver, space *classpath.Space, class *jvm.ClassDescriptor) []string {
	var chain []string
	seen := map[string]bool{class.Name: true}

	for name := class.SuperName; name != "" && !seen[name]; {
		seen[name] = true
		res := resolver.Resolve(space, name)
		if res.Status != classpath.Resolved {
			chain = append(chain, fmt.Sprintf("%s (%s)", name, res.Status))
			break
		}
		chain = append(chain, name)
		name = res.Class.SuperName
	}
	return chain
}

func printClass(w io.Writer, res classpath.Resolution, supers []string) {
	class := res.Class
	const keyWidth = 12

	fmt.Fprintln(w, utils.TitleStyle.Render(class.Name))
	fmt.Fprintln(w, utils.FormatKeyValue("Origin", res.Origin, keyWidth))
	fmt.Fprintln(w, utils.FormatKeyValue("Version", fmt.Sprintf("%d.%d (%s)", class.MajorVersion, class.MinorVersion, class.JavaVersion()), keyWidth))
	fmt.Fprintln(w, utils.FormatKeyValue("Access", class.Access.String(), keyWidth))

	if len(supers) > 0 {
		fmt.Fprintln(w, utils.FormatKeyValue("Extends", strings.Join(supers, " → "), keyWidth))
	}
	if len(class.Interfaces) > 0 {
		fmt.Fprintln(w, utils.FormatKeyValue("Implements", strings.Join(class.Interfaces, ", "), keyWidth))
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, utils.InfoStyle.Render(fmt.Sprintf("Fields (%d)", len(class.Fields))))
	for _, f := range class.Fields {
		fmt.Fprintf(w, "  %s  %s\n", jvm.FormatField(f.Name, f.Descriptor), utils.MutedStyle.Render(f.Access.String()))
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, utils.InfoStyle.Render(fmt.Sprintf("Methods (%d)", len(class.Methods))))
	for _, m := range class.Methods {
		fmt.Fprintf(w, "  %s  %s\n", jvm.FormatMethod(m.Name, m.Descriptor), utils.MutedStyle.Render(m.Access.String()))
	}
}

func init() {
	rootCmd.AddCommand(inspectCmd)
	inspectSpace.register(inspectCmd)
}
