package utils

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"strings"

	"github.com/spf13/cobra"
)

// ShellCompletion describes where a shell's completion script lives and how
// to activate it in the current session
type ShellCompletion struct {
	Shell    string
	Path     string
	Activate string

	generate func(io.Writer) error
}

// SupportedShells lists the shells completions can be installed for
var SupportedShells = []string{"bash", "zsh", "fish", "powershell"}

// DetectShell guesses the user's shell from $SHELL; bash when unset
func DetectShell() string {
	if runtime.GOOS == "windows" {
		return "powershell"
	}

	shell := os.Getenv("SHELL")
	if shell == "" {
		return "bash"
	}
	return filepath.Base(shell)
}

// CompletionFor locates the completion script for shell under home, named
// after root
func CompletionFor(root *cobra.Command, shell, home string) (ShellCompletion, error) {
	name := root.Name()

	switch shell {
	case "bash":
		path := filepath.Join(home, ".local/share/bash-completion/completions", name)
		return ShellCompletion{
			Shell:    shell,
			Path:     path,
			Activate: "source " + path,
			generate: root.GenBashCompletion,
		}, nil
	case "zsh":
		dir := filepath.Join(home, ".zsh/completions")
		return ShellCompletion{
			Shell:    shell,
			Path:     filepath.Join(dir, "_"+name),
			Activate: fmt.Sprintf("fpath=(%s $fpath) && autoload -U compinit && compinit", dir),
			generate: root.GenZshCompletion,
		}, nil
	case "fish":
		return ShellCompletion{
			Shell:    shell,
			Path:     filepath.Join(home, ".config/fish/completions", name+".fish"),
			Activate: "complete --do-complete=" + name,
			generate: func(w io.Writer) error { return root.GenFishCompletion(w, true) },
		}, nil
	case "powershell":
		path := filepath.Join(home, name+"_completion.ps1")
		return ShellCompletion{
			Shell:    shell,
			Path:     path,
			Activate: ". " + path,
			generate: root.GenPowerShellCompletionWithDesc,
		}, nil
	}
	return ShellCompletion{}, fmt.Errorf("unsupported shell: %s", shell)
}

// Installed reports whether the completion script is already on disk
func (c ShellCompletion) Installed() bool {
	_, err := os.Stat(c.Path)
	return err == nil
}

// Install writes the completion script, creating its directory
func (c ShellCompletion) Install() error {
	if err := os.MkdirAll(filepath.Dir(c.Path), 0o755); err != nil {
		return fmt.Errorf("failed to create %s: %w", filepath.Dir(c.Path), err)
	}

	file, err := os.Create(c.Path)
	if err != nil {
		return fmt.Errorf("failed to create completion file: %w", err)
	}
	defer file.Close()

	if err := c.generate(file); err != nil {
		return fmt.Errorf("failed to generate %s completions: %w", c.Shell, err)
	}
	return nil
}

// UserCompletion is CompletionFor the detected shell in the user's home
func UserCompletion(root *cobra.Command) (ShellCompletion, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return ShellCompletion{}, fmt.Errorf("failed to locate home directory: %w", err)
	}
	return CompletionFor(root, DetectShell(), home)
}

// InPath reports whether the running binary's directory is on $PATH
func InPath() bool {
	execPath, err := os.Executable()
	if err != nil {
		return false
	}

	paths := strings.Split(os.Getenv("PATH"), string(os.PathListSeparator))
	return slices.Contains(paths, filepath.Dir(execPath))
}
