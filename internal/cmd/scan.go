package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/harrison/textguard/internal/batch"
	"github.com/harrison/textguard/internal/blend"
	"github.com/harrison/textguard/internal/display"
	"github.com/harrison/textguard/internal/extract"
	"github.com/harrison/textguard/internal/fileutil"
	"github.com/harrison/textguard/internal/logger"
	"github.com/harrison/textguard/internal/report"
	"github.com/harrison/textguard/internal/watch"
	"github.com/harrison/textguard/internal/workspace"
)

// watchDebounce is how long a container must be quiet before it is rescanned
var watchDebounce = watch.DefaultDebounceDelay

// NewScanCommand creates the scan command
func NewScanCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scan <folder>",
		Short: "Extract and scan text blocks from every .blend file in a folder",
		Long: `Append the text datablocks of every .blend file in a folder to the workspace.

Only text datablocks are read from each file; scenes, objects, drivers and
embedded scripts are never loaded or run. Each block is stored as
"<file>_<block>", replacing a copy left by an earlier scan, and checked for
the configured keywords (case-insensitive substring match).

When a block matches or a file cannot be loaded, the report is stored in
the workspace as 'BlendTextGuard_FlagReport' and printed.

Examples:
  textguard scan ~/Downloads/assets
  textguard scan ./assets --keywords "exec,eval,socket"
  textguard scan ./assets --log-level debug --no-report
  textguard scan ./assets --watch`,
		Args: cobra.ExactArgs(1),
		RunE: runScan,
	}

	cmd.Flags().String("keywords", "", "Comma-separated keywords for this run (overrides config)")
	cmd.Flags().String("log-level", "", "Log level: trace, debug, info, warn, error")
	cmd.Flags().String("log-dir", "", "Directory for run logs (default: $TEXTGUARD_HOME/logs)")
	cmd.Flags().Bool("no-report", false, "Do not store or print the flag report")
	cmd.Flags().Bool("no-log-file", false, "Do not write a run log file")
	cmd.Flags().BoolP("recursive", "r", false, "Also scan subfolders")
	cmd.Flags().BoolP("watch", "w", false, "Keep running and rescan .blend files as they are saved")

	return cmd
}

func runScan(cmd *cobra.Command, args []string) error {
	folder := args[0]
	out := cmd.OutOrStdout()
	errOut := cmd.ErrOrStderr()

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	var keywordsPtr, logLevelPtr, logDirPtr *string
	if cmd.Flags().Changed("keywords") {
		v, _ := cmd.Flags().GetString("keywords")
		keywordsPtr = &v
	}
	if cmd.Flags().Changed("log-level") {
		v, _ := cmd.Flags().GetString("log-level")
		logLevelPtr = &v
	}
	if cmd.Flags().Changed("log-dir") {
		v, _ := cmd.Flags().GetString("log-dir")
		logDirPtr = &v
	}
	cfg.MergeWithFlags(keywordsPtr, nil, logLevelPtr, logDirPtr)

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	noReport, _ := cmd.Flags().GetBool("no-report")
	noLogFile, _ := cmd.Flags().GetBool("no-log-file")
	recursive, _ := cmd.Flags().GetBool("recursive")
	watchMode, _ := cmd.Flags().GetBool("watch")

	paths, err := fileutil.FindContainers(folder, cfg.Extension, recursive)
	if err != nil {
		return err
	}
	if len(paths) == 0 {
		display.Warning{Title: fmt.Sprintf("No %s files found in the selected folder.", cfg.Extension)}.Display(errOut)
		if !watchMode {
			return nil
		}
	}
	if backups, err := display.FindBackupFiles(folder); err == nil && len(backups) > 0 {
		display.WarnBackupFiles(backups).Display(errOut)
	}

	wsPath, err := cfg.ResolveWorkspacePath()
	if err != nil {
		return err
	}
	unlock, err := lockWorkspace(wsPath)
	if err != nil {
		return err
	}
	defer unlock()

	store, err := openWorkspace(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	console := logger.NewConsoleLogger(out, cfg.LogLevel)
	var log logger.Logger = console
	if !noLogFile {
		logDir, err := cfg.ResolveLogDir()
		if err != nil {
			return err
		}
		fileLog, err := logger.NewFileLogger(logDir, cfg.LogLevel)
		if err != nil {
			console.LogWarn(fmt.Sprintf("Run log disabled: %v", err))
		} else {
			defer fileLog.Close()
			log = logger.Multi{console, fileLog}
		}
	}

	s := &scanSession{
		store:    store,
		loader:   blend.Loader{MaxSize: cfg.MaxFileSize},
		log:      log,
		keywords: cfg.KeywordList(),
		noReport: noReport,
		out:      out,
		errOut:   errOut,
	}
	if len(s.keywords) == 0 {
		log.LogWarn("Keyword list is empty; nothing will be flagged")
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if len(paths) > 0 {
		if err := s.run(ctx, folder, paths); err != nil {
			return err
		}
	}

	if watchMode {
		return s.watch(ctx, folder, cfg.Extension, recursive)
	}
	return nil
}

// scanSession holds what one scan invocation needs across batch runs.
type scanSession struct {
	store    *workspace.Store
	loader   extract.Loader
	log      logger.Logger
	keywords []string
	noReport bool
	out      io.Writer
	errOut   io.Writer
}

// run processes paths as one batch, then publishes, records and summarises it.
func (s *scanSession) run(ctx context.Context, folder string, paths []string) error {
	progress := display.NewProgressIndicator(s.out, len(paths))
	progress.Start(folder)

	startedAt := time.Now()
	extractor := extract.New(s.loader, s.store, s.log)
	result, runErr := batch.NewOrchestrator(extractor, s.store, s.log).Run(ctx, paths, s.keywords)

	progress.Complete(result)

	published := false
	if !s.noReport {
		var err error
		published, err = report.NewPublisher(s.store, s.out, s.errOut).Publish(result, s.keywords)
		if err != nil {
			return err
		}
	}

	if err := s.store.RecordRun(context.WithoutCancel(ctx), workspace.NewRunRecord(folder, s.keywords, result, startedAt)); err != nil {
		s.log.LogWarn(fmt.Sprintf("Failed to record run history: %v", err))
	}

	fmt.Fprintln(s.out, report.Summary(result, len(paths)))

	if !published && result.FirstNew != nil {
		fmt.Fprintf(s.out, "\n--- %s ---\n%s\n", result.FirstNew.Name, result.FirstNew.Content)
	}

	return runErr
}

// watch rescans each container that is created or rewritten in folder
// until ctx is cancelled.
func (s *scanSession) watch(ctx context.Context, folder, ext string, recursive bool) error {
	w, err := watch.New(folder, ext, recursive)
	if err != nil {
		return fmt.Errorf("failed to watch %s: %w", folder, err)
	}
	defer w.Close()
	w.SetDebounceDelay(watchDebounce)

	s.log.LogInfo(fmt.Sprintf("Watching %s for %s files (Ctrl-C to stop)", folder, ext))

	for {
		select {
		case <-ctx.Done():
			s.log.LogInfo("Stopped watching")
			return nil
		case event := <-w.Events():
			if err := s.run(ctx, folder, []string{event.Path}); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
		case err := <-w.Errors():
			s.log.LogWarn(fmt.Sprintf("Watcher error: %v", err))
		}
	}
}
