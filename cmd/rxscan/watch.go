package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/jackzampolin/rxscan/internal/config"
	"github.com/jackzampolin/rxscan/internal/ingest"
	"github.com/jackzampolin/rxscan/internal/pipeline"
)

// settleDelay is how long a file must go without writes before it is read.
const settleDelay = 500 * time.Millisecond

var (
	watchFlags    overrides
	watchExisting bool
	watchReport   bool
)

var watchCmd = &cobra.Command{
	Use:   "watch <dir>",
	Short: "Extract medicines from every scan dropped into a directory",
	Long: `Watch a directory and run the pipeline over each supported image or PDF
that appears in it. Results are printed as they complete.

The config file is watched too: provider and pipeline changes apply to the
next scan without a restart.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := loadEnv()
		if err != nil {
			return err
		}

		dir := args[0]
		if info, err := os.Stat(dir); err != nil {
			return err
		} else if !info.IsDir() {
			return fmt.Errorf("%s is not a directory", dir)
		}

		p, err := pipeline.NewFromConfig(watchFlags.apply(e.config.Get()), e.registry, e.prompts, e.logger)
		if err != nil {
			return err
		}

		e.config.OnChange(func(cfg *config.Config) {
			e.registry.Reload(cfg.ToProviderRegistryConfig())
			if err := p.Reconfigure(watchFlags.apply(cfg)); err != nil {
				e.logger.Warn("keeping previous pipeline options", "error", err)
			}
		})
		if e.config.ConfigFile() != "" {
			e.config.WatchConfig()
		}

		w := &dirWatcher{
			dir:    dir,
			logger: e.logger,
			process: func(ctx context.Context, path string) {
				processScan(ctx, cmd, p, path, e.logger)
			},
		}
		if watchExisting {
			w.processExisting(cmd.Context())
		}
		return w.run(cmd.Context())
	},
}

func processScan(ctx context.Context, cmd *cobra.Command, p *pipeline.Pipeline, path string, logger *slog.Logger) {
	scan, err := ingest.Load(path, logger)
	if err != nil {
		logger.Warn("skipping file", "path", path, "error", err)
		return
	}
	report, err := p.Run(ctx, pipeline.Input{Image: scan.Image, Source: scan.Path})
	if err != nil {
		logger.Error("extraction failed", "path", path, "error", err)
		return
	}
	if err := printResult(cmd, report, watchReport, false); err != nil {
		logger.Error("failed to print result", "path", path, "error", err)
	}
}

// dirWatcher runs process once per new file in dir, after writes settle.
// Files are processed one at a time in the order they settle; events keep
// being debounced while a file is processed.
type dirWatcher struct {
	dir     string
	logger  *slog.Logger
	process func(ctx context.Context, path string)
}

func (d *dirWatcher) processExisting(ctx context.Context) {
	entries, err := os.ReadDir(d.dir)
	if err != nil {
		d.logger.Warn("failed to list directory", "dir", d.dir, "error", err)
		return
	}
	var paths []string
	for _, entry := range entries {
		if entry.Type().IsRegular() && ingest.IsSupported(entry.Name()) {
			paths = append(paths, filepath.Join(d.dir, entry.Name()))
		}
	}
	sort.Strings(paths)
	for _, path := range paths {
		if ctx.Err() != nil {
			return
		}
		d.process(ctx, path)
	}
}

// settled reports that a pending file saw no writes for settleDelay. gen
// identifies the timer so a stale firing can be told apart from the latest.
type settled struct {
	path string
	gen  uint64
}

type pendingFile struct {
	timer *time.Timer
	gen   uint64
}

// run watches dir until ctx is done. The event loop only debounces; files
// are handed to a single worker goroutine in the order they settle.
func (d *dirWatcher) run(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(d.dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", d.dir, err)
	}
	d.logger.Info("watching for prescriptions", "dir", d.dir)

	work := make(chan string)
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for path := range work {
			d.process(ctx, path)
		}
	}()

	pending := make(map[string]*pendingFile)
	settledCh := make(chan settled)
	done := make(chan struct{})
	var (
		queue   []string
		queued  = make(map[string]bool)
		nextGen uint64
	)
	defer func() {
		close(done)
		for _, p := range pending {
			p.timer.Stop()
		}
		close(work)
		wg.Wait()
	}()

	for {
		// Only offer work when something is queued.
		var out chan<- string
		var next string
		if len(queue) > 0 {
			out, next = work, queue[0]
		}

		select {
		case <-ctx.Done():
			return nil

		case out <- next:
			queue = queue[1:]
			delete(queued, next)

		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Write) {
				continue
			}
			if !ingest.IsSupported(ev.Name) {
				continue
			}
			// A new timer per write; an older one that already fired is
			// ignored by generation.
			if p, ok := pending[ev.Name]; ok {
				p.timer.Stop()
			}
			nextGen++
			s := settled{path: ev.Name, gen: nextGen}
			pending[ev.Name] = &pendingFile{
				gen: s.gen,
				timer: time.AfterFunc(settleDelay, func() {
					select {
					case settledCh <- s:
					case <-done:
					}
				}),
			}

		case s := <-settledCh:
			p, ok := pending[s.path]
			if !ok || p.gen != s.gen {
				continue
			}
			delete(pending, s.path)
			if !queued[s.path] {
				queued[s.path] = true
				queue = append(queue, s.path)
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			d.logger.Warn("watch error", "error", err)
		}
	}
}

func init() {
	watchFlags.register(watchCmd)
	watchCmd.Flags().BoolVar(&watchExisting, "existing", false, "process files already in the directory first")
	watchCmd.Flags().BoolVar(&watchReport, "report", false, "print every intermediate stage")
	rootCmd.AddCommand(watchCmd)
}
