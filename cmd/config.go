package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/marianecozta/Pomodoro/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show the config file path and the effective settings",
	Long: `Print where the configuration lives and the values in effect after
environment variables (POMODORO_*) and command-line flags are applied.
Edit the file to change them.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		printConfig(cmd.OutOrStdout(), app.configPath, app.config)
		return nil
	},
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}

func orNone(s string) string {
	if s == "" {
		return "(none)"
	}
	return s
}

func printConfig(w io.Writer, path string, cfg *config.Config) {
	fmt.Fprintf(w, "  Config file: %s\n\n", path)

	fmt.Fprintln(w, "  Timer:")
	fmt.Fprintf(w, "    Focus:                  %d min\n", cfg.Timer.FocusMinutes)
	fmt.Fprintf(w, "    Rest:                   %d min\n", cfg.Timer.RestMinutes)
	fmt.Fprintf(w, "    Night mode:             %s\n", onOff(cfg.Timer.NightMode))
	fmt.Fprintln(w)

	fmt.Fprintln(w, "  Behavior:")
	fmt.Fprintf(w, "    Fixed study credit:     %s\n", onOff(cfg.Behavior.FixedStudyCredit))
	fmt.Fprintf(w, "    Fixed reset seconds:    %s\n", onOff(cfg.Behavior.FixedResetSeconds))
	fmt.Fprintf(w, "    Rest after every block: %s\n", onOff(cfg.Behavior.RestAfterEveryExpiry))
	fmt.Fprintf(w, "    Fixed progress span:    %s\n", onOff(cfg.Behavior.FixedProgressDenominator))
	fmt.Fprintln(w)

	fmt.Fprintln(w, "  Sounds:")
	fmt.Fprintf(w, "    Enabled:                %s (volume %+.1f)\n", onOff(cfg.Sounds.Enabled), cfg.Sounds.Volume)
	fmt.Fprintf(w, "    Start:                  %s\n", orNone(cfg.Sounds.Start))
	fmt.Fprintf(w, "    End:                    %s\n", orNone(cfg.Sounds.End))
	fmt.Fprintf(w, "    Task complete:          %s\n", orNone(cfg.Sounds.TaskComplete))
	fmt.Fprintln(w)

	fmt.Fprintf(w, "  Notifications:            %s\n", onOff(cfg.Notifications.Enabled))
	fmt.Fprintf(w, "  MCP server:               %s\n", onOff(cfg.MCP.Enabled))
	fmt.Fprintf(w, "  Log:                      %s (%s)\n", orNone(cfg.Log.File), cfg.Log.Level)
}
