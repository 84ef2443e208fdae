package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/mabhi256/jmuzzle/internal/config"
	"github.com/mabhi256/jmuzzle/internal/logging"
	"github.com/mabhi256/jmuzzle/utils"
)

var (
	configPath string
	logLevel   string
	logFormat  string

	cfg    *config.Config
	logger = zap.NewNop()
)

var rootCmd = &cobra.Command{
	Use:   "jmuzzle",
	Short: "Structural compatibility checks for JVM instrumentation",
	Long: `jmuzzle verifies, without loading or running anything, that every class,
field, method and modifier an instrumentation module depends on exists with
the expected shape on a target class path.`,
	SilenceUsage:  true,
	SilenceErrors: true,

	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := setup(cmd); err != nil {
			return err
		}

		if cmd.Name() == "install" || cmd.Name() == "version" || cmd.Name() == "help" {
			return nil
		}
		if !isTerminal(os.Stdout) {
			return nil
		}

		completion, err := utils.UserCompletion(cmd.Root())
		if err != nil || completion.Installed() {
			return nil
		}

		fmt.Println("🔧 First run detected, setting up jmuzzle...")
		if completion.Install() == nil {
			fmt.Println("✅ Shell completions installed")
			fmt.Println("💡 Restart your shell to enable tab completion")
		} else {
			fmt.Println("⚠️  Auto-setup failed. Run 'jmuzzle install' to try again.")
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Sync()
	},
}

// setup loads configuration, lets explicit flags win over it and builds
// the logger
func setup(cmd *cobra.Command) error {
	loaded, err := config.Load(configPath)
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	if flags.Changed("log-level") {
		loaded.Log.Level = logLevel
	}
	if flags.Changed("log-format") {
		loaded.Log.Format = logFormat
	}
	if err := loaded.Validate(); err != nil {
		return err
	}

	l, err := logging.New(loaded.Log.Level, loaded.Log.Format)
	if err != nil {
		return err
	}

	cfg = loaded
	logger = l
	logger.Debug("configuration loaded",
		zap.String("config", configPath),
		zap.String("output", cfg.Output),
		zap.Int("maxDepth", cfg.MaxDepth))
	return nil
}

var installCmd = &cobra.Command{
	Use:   "install",
	Short: "Install shell completions",
	Run: func(cmd *cobra.Command, args []string) {
		if !utils.InPath() {
			printPathInstructions()
			return
		}

		completion, err := utils.UserCompletion(cmd.Root())
		if err != nil {
			fmt.Printf("❌ %v\n", err)
			fmt.Printf("Supported shells: %s\n", strings.Join(utils.SupportedShells, ", "))
			return
		}

		if completion.Installed() {
			fmt.Println("✅ Already configured!")
			return
		}

		fmt.Println("📦 Installing completions...")
		if err := completion.Install(); err != nil {
			fmt.Printf("❌ Failed: %v\n", err)
			return
		}
		fmt.Println("✅ Done! Restart your shell to enable tab completion.")
		fmt.Printf("🔄 Run this command to enable completions now:\n   %s\n", completion.Activate)
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, formatError(err))
		os.Exit(1)
	}
}

func GetRootCmd() *cobra.Command {
	return rootCmd
}

func isTerminal(f *os.File) bool {
	info, err := f.Stat()
	return err == nil && info.Mode()&os.ModeCharDevice != 0
}

func printPathInstructions() {
	execPath, _ := os.Executable()
	execDir := filepath.Dir(execPath)

	fmt.Printf("❌ jmuzzle not in PATH. Binary location: %s\n\n", execPath)

	if runtime.GOOS == "windows" {
		fmt.Printf("Add to PATH: %s\n", execDir)
	} else {
		fmt.Printf("Add to shell profile: export PATH=\"%s:$PATH\"\n", execDir)
		fmt.Printf("Or copy to: /usr/local/bin\n")
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default ./jmuzzle.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level: debug, info, warn, error")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "console", "log format: console, json")

	rootCmd.RegisterFlagCompletionFunc("log-level", cobra.FixedCompletions(config.LogLevels, cobra.ShellCompDirectiveNoFileComp))
	rootCmd.RegisterFlagCompletionFunc("log-format", cobra.FixedCompletions(config.LogFormats, cobra.ShellCompDirectiveNoFileComp))

	rootCmd.AddCommand(installCmd)
}
