package main

import (
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	mterm "github.com/moby/term"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/term"

	"remotail/internal/command"
	"remotail/internal/config"
	"remotail/internal/controller"
	"remotail/internal/crypto"
	"remotail/internal/logging"
	"remotail/internal/models"
	"remotail/internal/ssh"
	"remotail/internal/ui"
	"remotail/internal/ui/components"
	"remotail/internal/ui/plain"
	"remotail/internal/ui/views"
)

type rootOptions struct {
	filePaths    []string
	targetsFile  string
	settingsPath string
	logFile      string
	debug        bool
	plain        bool
	theme        int
}

func newRootCommand() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:   "remotail",
		Short: "Follow remote files over SSH, one panel per target",
		Long: "remotail runs tail -f on any number of remote hosts and shows every stream in its own panel.\n" +
			"Targets are written as alias://[user[:password]@]host[:port]/path/to/file.",
		Example: "  remotail -f web://alice@10.0.0.5/var/log/nginx/access.log -f db://bob@db:2222/var/log/pg.log\n" +
			"  remotail -c targets.txt --plain",
		Version:      version,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd, opts)
		},
	}

	flags := cmd.Flags()
	flags.StringArrayVarP(&opts.filePaths, "file-path", "f", nil, "target to follow (repeatable)")
	flags.StringVarP(&opts.targetsFile, "config", "c", "", "file listing targets, one per line (or a .yaml settings file)")
	flags.StringVar(&opts.settingsPath, "settings", "", "settings file (default ~/"+config.DefaultConfigDir+"/"+config.DefaultConfigFileName+")")
	flags.StringVar(&opts.logFile, "log-file", "", "log file (default "+logging.DefaultLogFile+")")
	flags.BoolVar(&opts.debug, "debug", false, "log at debug level")
	flags.BoolVar(&opts.plain, "plain", false, "print alias | line to stdout instead of the panel UI")
	flags.IntVar(&opts.theme, "theme", 0, fmt.Sprintf("colour theme, 0-%d", ui.ThemeCount()-1))

	cmd.AddCommand(newEncryptCommand(), newVersionCommand())
	return cmd
}

func run(cmd *cobra.Command, opts *rootOptions) (err error) {
	manager := config.NewManager(opts.settingsPath, nil)
	if err := manager.Load(); err != nil {
		return err
	}
	settings := manager.Settings()

	logFile := opts.logFile
	if logFile == "" {
		logFile = settings.LogFile
	}
	logger, err := logging.NewFileLogger(logFile, opts.debug)
	if err != nil {
		return err
	}
	defer logger.Close()

	log := logger.Named("MAIN")
	log.Info("remotail starting", zap.String("version", version), zap.String("settings", manager.ConfigPath()))

	themeIndex := settings.Theme
	if cmd.Flags().Changed("theme") {
		themeIndex = opts.theme
	}
	if err := ui.SetTheme(themeIndex); err != nil {
		log.Warn("theme ignored", zap.Error(err))
	}

	targets, skipped := collectTargets(opts, settings, logger.For(logging.ComponentConfig))

	client := ssh.NewClient(settings.SSHOptions(), logger.For(logging.ComponentSSH))
	plainMode := opts.plain || !mterm.IsTerminal(os.Stdout.Fd())

	var display controller.Display
	var panels *components.PanelSet
	if plainMode {
		display = plain.NewWriter(cmd.OutOrStdout())
	} else {
		panels = components.NewPanelSet(settings.MaxLines)
		display = panels
	}

	ctrl := controller.New(controller.Config{
		Opener:       client,
		Fetcher:      client,
		Display:      display,
		ChunkSize:    settings.ChunkSize,
		Logger:       logger.For(logging.ComponentController),
		WorkerLogger: logger.For(logging.ComponentWorker),
	})

	// Workers are stopped on every way out, a panic included.
	defer func() {
		if r := recover(); r != nil {
			log.Error("panic in main loop", zap.Any("panic", r), zap.Stack("stack"))
			err = fmt.Errorf("remotail crashed: %v", r)
		}
		if shutdownErr := ctrl.Shutdown(); shutdownErr != nil && err == nil {
			err = shutdownErr
		}
		log.Info("remotail stopped")
	}()

	for _, target := range targets {
		if err := ctrl.EnableTarget(target); err != nil {
			skipped = append(skipped, err)
		}
	}

	if plainMode {
		for _, reason := range skipped {
			fmt.Fprintf(cmd.ErrOrStderr(), "skipped: %v\n", reason)
		}
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return plain.Run(ctx, ctrl)
	}

	interpreter := command.New(ctrl, logger.For(logging.ComponentCommand))
	view := views.NewTailView(ctrl, interpreter, panels, version, logger.For(logging.ComponentUI))
	if len(skipped) > 0 {
		view.SetStatus(skippedStatus(skipped), true)
	}
	if width, height, sizeErr := term.GetSize(int(os.Stdout.Fd())); sizeErr == nil {
		view.Update(tea.WindowSizeMsg{Width: width, Height: height})
	}

	program := tea.NewProgram(view, tea.WithAltScreen(), tea.WithContext(cmd.Context()))
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("error running program: %w", err)
	}
	return nil
}

// collectTargets merges settings targets, the targets file and --file-path,
// in that order. Anything unusable is logged and returned in skipped.
func collectTargets(opts *rootOptions, settings config.Settings, log *zap.Logger) ([]models.Target, []error) {
	if log == nil {
		log = zap.NewNop()
	}
	var skipped []error

	entries := append([]config.TargetEntry(nil), settings.Targets...)
	if opts.targetsFile != "" {
		fromFile, err := config.LoadTargetsFile(opts.targetsFile)
		if err != nil {
			log.Error("targets file unusable", zap.String("path", opts.targetsFile), zap.Error(err))
			skipped = append(skipped, err)
		}
		entries = append(entries, fromFile...)
	}
	for _, raw := range opts.filePaths {
		entries = append(entries, config.TargetEntry{URL: raw})
	}

	targets, rejected := config.ResolveTargets(entries, crypto.CipherFromEnv(), log)
	return targets, append(skipped, rejected...)
}

func skippedStatus(skipped []error) string {
	reasons := make([]string, len(skipped))
	for i, err := range skipped {
		reasons[i] = err.Error()
	}
	return fmt.Sprintf("skipped %d: %s", len(skipped), strings.Join(reasons, "; "))
}
