// Package cmd provides the CLI commands for the Pomodoro application.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/charmbracelet/x/term"
	"github.com/spf13/cobra"

	gitadapter "github.com/marianecozta/Pomodoro/internal/adapters/git"
	"github.com/marianecozta/Pomodoro/internal/adapters/tui"
)

var (
	// Version info (set at build time via ldflags)
	Version   = "dev"
	BuildDate = "unknown"
	GitCommit = "unknown"

	// Global flags
	configPath string
	logFile    string
	focusFlag  int
	restFlag   int
	nightFlag  bool
)

// ErrNotTerminal is returned when the interactive timer is started without
// a terminal attached.
var ErrNotTerminal = errors.New("the timer needs an interactive terminal (try \"pomodoro mcp\" for headless use)")

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "pomodoro",
	Short: "Pomodoro Universitário - a study timer with a task list",
	Long: `Pomodoro Universitário is a terminal study timer: a focus countdown,
a rest countdown, a to-do list and running statistics for the session.

Run "pomodoro" with no arguments to open the timer.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return initializeServices(cmd)
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		return cleanupServices()
	},
	RunE: runTimer,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to the config file (default: ~/.pomodoro/config.toml)")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "Write logs to this file (default: log.file from config, else discarded)")
	rootCmd.PersistentFlags().IntVar(&focusFlag, "focus", 0, "Focus block length in minutes (overrides config)")
	rootCmd.PersistentFlags().IntVar(&restFlag, "rest", 0, "Rest block length in minutes (overrides config)")
	rootCmd.PersistentFlags().BoolVar(&nightFlag, "night", false, "Start in night mode")

	// Set version - cobra handles --version automatically
	rootCmd.Version = Version
	rootCmd.SetVersionTemplate("Pomodoro Universitário\nVersion: {{.Version}}\n")

	rootCmd.AddCommand(mcpCmd)
	rootCmd.AddCommand(configCmd)
}

// runTimer opens the fullscreen timer and prints a summary once it closes.
func runTimer(cmd *cobra.Command, args []string) error {
	if !term.IsTerminal(os.Stdout.Fd()) || !term.IsTerminal(os.Stdin.Fd()) {
		return ErrNotTerminal
	}

	ctx, cancel := context.WithCancel(setupSignalHandler())
	defer cancel()
	wait := startController(ctx)

	snap, err := tui.Run(ctx, app.controller, tui.Options{
		Theme:    &app.config.Theme,
		Activity: app.controller,
		GitLabel: gitLabel(ctx),
		Logger:   app.logger,
	})

	summary, sumErr := app.controller.ActivitySummary(context.Background())
	if sumErr != nil {
		app.logger.Warn("failed to summarise journal", "error", sumErr)
		summary = nil
	}

	cancel()
	wait()

	if err != nil {
		return fmt.Errorf("timer error: %w", err)
	}
	tui.PrintSummary(cmd.OutOrStdout(), snap, summary)
	return nil
}

// gitLabel describes the repository of the working directory, or "" outside
// of one.
func gitLabel(ctx context.Context) string {
	if app.git == nil || !app.git.IsAvailable() {
		return ""
	}
	info, err := app.git.Detect(ctx, app.workingDir)
	if err != nil {
		app.logger.Debug("git context unavailable", "error", err)
		return ""
	}
	return gitadapter.Label(info)
}
