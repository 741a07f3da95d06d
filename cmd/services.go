package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	hclog "github.com/hashicorp/go-hclog"
	"github.com/spf13/cobra"

	"github.com/marianecozta/Pomodoro/internal/adapters/audio"
	"github.com/marianecozta/Pomodoro/internal/adapters/clock"
	"github.com/marianecozta/Pomodoro/internal/adapters/git"
	"github.com/marianecozta/Pomodoro/internal/adapters/notification"
	"github.com/marianecozta/Pomodoro/internal/adapters/storage"
	"github.com/marianecozta/Pomodoro/internal/config"
	"github.com/marianecozta/Pomodoro/internal/ports"
	"github.com/marianecozta/Pomodoro/internal/services"
)

// appDeps groups all service-layer dependencies initialized at startup.
type appDeps struct {
	config     *config.Config
	configPath string
	logger     hclog.Logger
	logOutput  io.Closer
	journal    ports.Journal
	git        ports.GitDetector
	workingDir string

	controller *services.SessionController
	tasks      *services.TaskService
	pomodoro   *services.PomodoroService
	state      *services.StateService
}

// app holds all initialized service dependencies.
// Populated by initializeServices() and accessible to all commands.
var app appDeps

// initializeServices sets up all the required services and adapters. The
// controller is built but not started; commands that need a running timer
// call startController.
func initializeServices(cmd *cobra.Command) error {
	var err error
	app.configPath = configPath
	if app.configPath == "" {
		app.configPath, err = config.GetConfigPath()
		if err != nil {
			return err
		}
	}

	cfg, loadErr := config.LoadFrom(app.configPath)
	if loadErr != nil {
		// If config loading fails, use defaults
		cfg = config.DefaultConfig()
	}
	applyFlagOverrides(cmd, cfg)
	app.config = cfg

	app.logger, app.logOutput, err = newLogger(cfg.Log)
	if err != nil {
		return err
	}
	if loadErr != nil {
		app.logger.Warn("using default configuration", "path", app.configPath, "error", loadErr)
	}

	app.journal, err = storage.NewMemory(app.logger)
	if err != nil {
		return fmt.Errorf("failed to initialize journal: %w", err)
	}

	app.workingDir, _ = os.Getwd()
	app.git = git.NewDetector()

	app.controller = services.NewSessionController(cfg.ToSessionConfig(), services.ControllerDeps{
		Scheduler:   clock.NewScheduler(),
		Player:      audio.New(&cfg.Sounds, app.logger),
		Notifier:    notification.New(&cfg.Notifications),
		Journal:     app.journal,
		GitDetector: app.git,
		Logger:      app.logger,
		WorkingDir:  app.workingDir,
	})

	// Wire up services for state service
	app.tasks = services.NewTaskService(app.controller)
	app.pomodoro = services.NewPomodoroService(app.controller)
	app.state = services.NewStateService(app.controller, app.controller)
	app.state.SetTaskService(app.tasks)
	app.state.SetPomodoroService(app.pomodoro)

	return nil
}

// applyFlagOverrides lets explicitly set flags win over the config file.
func applyFlagOverrides(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("focus") {
		cfg.Timer.FocusMinutes = focusFlag
	}
	if flags.Changed("rest") {
		cfg.Timer.RestMinutes = restFlag
	}
	if flags.Changed("night") {
		cfg.Timer.NightMode = nightFlag
	}
	if flags.Changed("log-file") {
		cfg.Log.File = logFile
	}
}

// newLogger builds the root logger. The timer owns the terminal, so logs go
// to a file or nowhere.
func newLogger(cfg config.LogConfig) (hclog.Logger, io.Closer, error) {
	var out io.Writer = io.Discard
	var closer io.Closer
	if cfg.File != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.File), 0750); err != nil {
			return nil, nil, fmt.Errorf("failed to create log directory: %w", err)
		}
		f, err := os.OpenFile(cfg.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0640)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open log file: %w", err)
		}
		out, closer = f, f
	}

	level := hclog.LevelFromString(cfg.Level)
	if level == hclog.NoLevel {
		level = hclog.Info
	}
	logger := hclog.New(&hclog.LoggerOptions{
		Name:   "pomodoro",
		Level:  level,
		Output: out,
	})
	return logger, closer, nil
}

// startController runs the controller loop in the background. The returned
// function blocks until the loop has exited after ctx is cancelled.
func startController(ctx context.Context) func() {
	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := app.controller.Run(ctx); err != nil {
			app.logger.Error("controller stopped with error", "error", err)
		}
	}()
	return func() { <-done }
}

// cleanupServices closes all resources.
func cleanupServices() error {
	var firstErr error
	if app.journal != nil {
		if err := app.journal.Close(); err != nil {
			firstErr = fmt.Errorf("failed to close journal: %w", err)
		}
		app.journal = nil
	}
	if app.logOutput != nil {
		if err := app.logOutput.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
		app.logOutput = nil
	}
	return firstErr
}

// setupSignalHandler sets up a context that cancels on interrupt signals.
func setupSignalHandler() context.Context {
	ctx, cancel := context.WithCancel(context.Background())

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigChan
		cancel()
	}()

	return ctx
}
