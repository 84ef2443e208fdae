package cmd

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/mabhi256/jmuzzle/internal/classpath"
	"github.com/mabhi256/jmuzzle/internal/muzzle"
	"github.com/mabhi256/jmuzzle/internal/reference"
	"github.com/mabhi256/jmuzzle/utils"
)

// spaceFlags are shared by every command that needs a target class path
type spaceFlags struct {
	classpath string
	parent    string
}

func (f *spaceFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.classpath, "classpath", "c", "", "target class path: directories, .jar and .zip files separated by "+listSeparatorName())
	cmd.Flags().StringVarP(&f.parent, "parent", "p", "", "parent class path consulted first, e.g. the JDK runtime")

	cmd.RegisterFlagCompletionFunc("classpath", utils.CompleteClasspath)
	cmd.RegisterFlagCompletionFunc("parent", utils.CompleteClasspath)
}

func listSeparatorName() string {
	if filepath.ListSeparator == ';' {
		return "';'"
	}
	return "':'"
}

// resolve applies config values to flags that were not set explicitly
func (f *spaceFlags) resolve(cmd *cobra.Command) (string, string) {
	cp, parent := f.classpath, f.parent
	if !cmd.Flags().Changed("classpath") && cfg != nil {
		cp = cfg.Classpath
	}
	if !cmd.Flags().Changed("parent") && cfg != nil {
		parent = cfg.Parent
	}
	return cp, parent
}

// openSpace builds the target space, with an optional parent space. The
// returned close function releases every opened archive.
func (f *spaceFlags) openSpace(cmd *cobra.Command) (*classpath.Space, func() error, error) {
	cp, parentPath := f.resolve(cmd)
	if strings.TrimSpace(cp) == "" && strings.TrimSpace(parentPath) == "" {
		return nil, nil, errors.New("no class path given, use --classpath or set classpath in jmuzzle.yaml")
	}

	var parent *classpath.Space
	if parentPath != "" {
		locators, err := classpath.ParseClasspath(parentPath)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open parent class path: %w", err)
		}
		parent = classpath.NewSpace("parent", nil, locators...)
	}

	locators, err := classpath.ParseClasspath(cp)
	if err != nil {
		if parent != nil {
			parent.Close()
		}
		return nil, nil, fmt.Errorf("failed to open class path: %w", err)
	}
	space := classpath.NewSpace("target", parent, locators...)

	logger.Debug("opened class path",
		zap.Stringer("space", space),
		zap.Int("locators", len(locators)))

	closeAll := func() error {
		err := space.Close()
		if parent != nil {
			err = errors.Join(err, parent.Close())
		}
		return err
	}
	return space, closeAll, nil
}

func loadModules(paths []string) ([]*reference.Module, error) {
	modules := make([]*reference.Module, 0, len(paths))
	for _, path := range paths {
		module, err := reference.LoadModule(path)
		if err != nil {
			return nil, err
		}
		logger.Debug("loaded module",
			zap.String("path", path),
			zap.String("module", module.Name()),
			zap.Int("references", len(module.References())))
		modules = append(modules, module)
	}
	return modules, nil
}

func newResolver() *classpath.Resolver {
	return classpath.NewResolver(classpath.WithLogger(logger))
}

func matcherOptions() []muzzle.Option {
	opts := []muzzle.Option{muzzle.WithLogger(logger)}
	if cfg != nil {
		opts = append(opts, muzzle.WithMaxDepth(cfg.MaxDepth))
	}
	return opts
}

var completeModuleFiles = utils.CompleteFilesByExtension([]string{".yaml", ".yml"})
