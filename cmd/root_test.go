package cmd

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	hclog "github.com/hashicorp/go-hclog"
	"github.com/spf13/cobra"

	"github.com/marianecozta/Pomodoro/internal/config"
)

// executeCmd is a helper to execute a cobra command in tests
func executeCmd(cmd *cobra.Command, args ...string) (stdout string, stderr string, err error) {
	bufOut := new(bytes.Buffer)
	bufErr := new(bytes.Buffer)

	cmd.SetOut(bufOut)
	cmd.SetErr(bufErr)
	cmd.SetArgs(args)

	err = cmd.Execute()
	return bufOut.String(), bufErr.String(), err
}

func TestRootCmd(t *testing.T) {
	if rootCmd.Use != "pomodoro" {
		t.Errorf("rootCmd.Use = %q, want %q", rootCmd.Use, "pomodoro")
	}

	names := map[string]bool{}
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{"mcp", "config"} {
		if !names[want] {
			t.Errorf("subcommand %q not registered", want)
		}
	}
}

func TestRootCmd_Help(t *testing.T) {
	stdout, _, err := executeCmd(rootCmd, "--help")
	if err != nil {
		t.Fatalf("help command failed: %v", err)
	}
	if !strings.Contains(stdout, "pomodoro") {
		t.Errorf("help output should mention pomodoro:\n%s", stdout)
	}
}

func TestRootCmd_Version(t *testing.T) {
	stdout, _, err := executeCmd(rootCmd, "--version")
	if err != nil {
		t.Fatalf("--version failed: %v", err)
	}
	if !strings.Contains(stdout, "Version: "+Version) {
		t.Errorf("version output = %q", stdout)
	}
}

func TestRootCmd_Flags(t *testing.T) {
	for _, name := range []string{"config", "log-file", "focus", "rest", "night"} {
		if rootCmd.PersistentFlags().Lookup(name) == nil {
			t.Errorf("--%s flag should be registered", name)
		}
	}
}

func TestRootCmd_NeedsTerminal(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")

	_, _, err := executeCmd(rootCmd, "--config", path)
	if !errors.Is(err, ErrNotTerminal) {
		t.Errorf("running without a terminal: err = %v, want ErrNotTerminal", err)
	}
	_ = cleanupServices()
}

func TestConfigCmd(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")

	stdout, _, err := executeCmd(rootCmd, "config", "--config", path, "--focus", "50", "--night")
	if err != nil {
		t.Fatalf("config command failed: %v", err)
	}

	for _, want := range []string{
		"Config file: " + path,
		"Focus:                  50 min",
		"Rest:                   5 min",
		"Night mode:             on",
		"Fixed study credit:     on",
	} {
		if !strings.Contains(stdout, want) {
			t.Errorf("config output missing %q\n%s", want, stdout)
		}
	}

	if _, err := os.Stat(path); err != nil {
		t.Errorf("config file should be created on first run: %v", err)
	}

	saved, err := config.LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom() error = %v", err)
	}
	if saved.Timer.FocusMinutes != 25 {
		t.Errorf("flags must not be written back to the file, focus = %d", saved.Timer.FocusMinutes)
	}
}

func TestPrintConfig(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Sounds.End = "/sons/fim.wav"

	var buf bytes.Buffer
	printConfig(&buf, "/tmp/config.toml", cfg)
	out := buf.String()

	for _, want := range []string{
		"End:                    /sons/fim.wav",
		"Start:                  (none)",
		"MCP server:               on",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("printConfig() missing %q\n%s", want, out)
		}
	}
}

func TestNewLogger(t *testing.T) {
	t.Run("discard", func(t *testing.T) {
		logger, closer, err := newLogger(config.LogConfig{Level: "info"})
		if err != nil {
			t.Fatalf("newLogger() error = %v", err)
		}
		if closer != nil {
			t.Error("no file should be opened")
		}
		logger.Info("dropped")
	})

	t.Run("file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "logs", "pomodoro.log")
		logger, closer, err := newLogger(config.LogConfig{File: path, Level: "debug"})
		if err != nil {
			t.Fatalf("newLogger() error = %v", err)
		}
		logger.Named("controller").Debug("tick", "generation", 3)
		if err := closer.Close(); err != nil {
			t.Fatal(err)
		}

		data, err := os.ReadFile(path)
		if err != nil {
			t.Fatal(err)
		}
		if !strings.Contains(string(data), "pomodoro.controller: tick: generation=3") {
			t.Errorf("log file = %q", data)
		}
	})

	t.Run("unknown level falls back to info", func(t *testing.T) {
		logger, _, err := newLogger(config.LogConfig{Level: "chatty"})
		if err != nil {
			t.Fatal(err)
		}
		if logger.GetLevel() != hclog.Info {
			t.Errorf("level = %v, want info", logger.GetLevel())
		}
	})
}

type recordingHandler struct {
	mu    sync.Mutex
	stops int
}

func (h *recordingHandler) Start(ctx context.Context) error { return nil }

func (h *recordingHandler) Stop() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.stops++
	return nil
}

func (h *recordingHandler) stopCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.stops
}

func TestStopOnSignal(t *testing.T) {
	saved := app.logger
	app.logger = hclog.NewNullLogger()
	defer func() { app.logger = saved }()

	t.Run("signal stops the server", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		signals, interrupt := context.WithCancel(context.Background())
		handler := &recordingHandler{}

		stopOnSignal(ctx, signals, handler)
		interrupt()

		deadline := time.Now().Add(time.Second)
		for handler.stopCount() == 0 && time.Now().Before(deadline) {
			time.Sleep(5 * time.Millisecond)
		}
		if handler.stopCount() != 1 {
			t.Errorf("Stop() called %d times, want 1", handler.stopCount())
		}
	})

	t.Run("finished run leaves the server alone", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		signals, interrupt := context.WithCancel(context.Background())
		defer interrupt()
		handler := &recordingHandler{}

		stopOnSignal(ctx, signals, handler)
		cancel()
		time.Sleep(20 * time.Millisecond)
		interrupt()
		time.Sleep(20 * time.Millisecond)

		if handler.stopCount() != 0 {
			t.Errorf("Stop() called %d times after the run ended", handler.stopCount())
		}
	})
}
