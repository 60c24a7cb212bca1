package internal

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/penwyp/rewindcat/cache"
	"github.com/penwyp/rewindcat/calculations"
	"github.com/penwyp/rewindcat/config"
	"github.com/penwyp/rewindcat/fetch"
	"github.com/penwyp/rewindcat/fileio"
	"github.com/penwyp/rewindcat/logging"
	"github.com/penwyp/rewindcat/models"
	"github.com/penwyp/rewindcat/output"
	"github.com/penwyp/rewindcat/sources"
)

// Application orchestrates one run: fetch remote roots, collect events
// from every source, merge, aggregate, render. Collection is the single
// synchronization barrier: aggregation never starts before every source
// has been collected.
type Application struct {
	config *config.Config
	logger *logging.Logger
	loc    *time.Location

	directives []models.MergeDirective
	parseCache *cache.ParseCache
}

// NewApplication creates an application from a validated configuration.
func NewApplication(cfg *config.Config) (*Application, error) {
	loc, err := config.ResolveTimezone(cfg.App.Timezone)
	if err != nil {
		return nil, err
	}

	directives, err := sources.ParseMergeSpec(cfg.Data.MergeSources)
	if err != nil {
		return nil, err
	}

	app := &Application{
		config:     cfg,
		logger:     logging.GetLogger(),
		loc:        loc,
		directives: directives,
	}

	if cfg.Data.CacheEnabled {
		parseCache, err := cache.Open(cache.Config{DBPath: cfg.Data.CacheDir})
		if err != nil {
			// The cache is an optimization; a broken cache dir must
			// not block the run.
			app.logger.Warnf("parse cache disabled: %v", err)
		} else {
			app.parseCache = parseCache
		}
	}

	return app, nil
}

// Run executes the pipeline and blocks until done (or, in watch mode,
// until ctx is cancelled).
func (a *Application) Run(ctx context.Context) error {
	defer a.close()

	specs, cleanup, err := a.resolveSpecs(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	if err := a.runOnce(specs); err != nil {
		return err
	}

	if !a.config.Report.Watch {
		return nil
	}
	return a.watch(ctx, specs)
}

// resolveSpecs assembles the full set of source roots: remote-fetched,
// pre-fetched paths, and the local machine.
func (a *Application) resolveSpecs(ctx context.Context) ([]sources.Spec, func(), error) {
	var specs []sources.Spec
	cleanup := func() {}

	if len(a.config.Data.Remotes) > 0 {
		fetcher, err := fetch.NewFetcher()
		if err != nil {
			return nil, cleanup, err
		}
		cleanup = fetcher.Cleanup

		for _, result := range fetcher.FetchAll(ctx, a.config.Data.Remotes) {
			if result.Err != nil {
				continue // Already logged; a dead host is not fatal
			}
			specs = append(specs, result.Spec)
		}
	}

	for _, pathSpec := range a.config.Data.Paths {
		spec := sources.ParseDataPath(pathSpec)
		a.logger.Infof("including data from %s (as %s)", spec.Root, spec.Name)
		specs = append(specs, spec)
	}

	if !a.config.Data.RemoteOnly {
		home, err := os.UserHomeDir()
		if err != nil {
			a.logger.Warnf("cannot resolve home directory, skipping local source: %v", err)
		} else {
			specs = append(specs, sources.Spec{Name: "local", Root: home})
		}
	}

	return specs, cleanup, nil
}

// runOnce performs one full collect-merge-aggregate-render pass.
func (a *Application) runOnce(specs []sources.Spec) error {
	collector := sources.NewCollector(a.loc, a.parseCache)

	collected, err := collector.CollectAll(specs)
	if err != nil {
		return err
	}

	merged, err := sources.Merge(collected, a.directives)
	if err != nil {
		return err
	}

	// Sources that contributed nothing are noise in the report, but they
	// stay resolvable as merge targets above.
	reportable := merged[:0]
	for _, source := range merged {
		if len(source.Events) == 0 {
			a.logger.Infof("source %s: no events, omitting from report", source.Name)
			continue
		}
		reportable = append(reportable, source)
	}

	if len(reportable) == 0 {
		a.logger.Warn("no usage data found in any source")
	}

	stats := calculations.NewAggregator(a.loc).Aggregate(reportable)
	return a.render(stats)
}

func (a *Application) render(stats *models.AggregateStats) error {
	if a.config.Report.JSON {
		return output.WriteJSON(os.Stdout, stats)
	}

	if a.config.Report.HTML {
		path := a.config.Report.Output
		if path == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return fmt.Errorf("cannot resolve report path: %w", err)
			}
			path = filepath.Join(home, "rewindcat-review.html")
		}
		if err := a.writeHTML(path, stats); err != nil {
			return err
		}
		fmt.Printf("Report saved to: %s\n", path)
		if a.config.Report.Open {
			if err := output.OpenBrowser(path); err != nil {
				a.logger.Warnf("cannot open browser: %v", err)
			}
		}
		return nil
	}

	formatter := output.NewConsoleFormatter(a.config.Report.NoColor)
	_, err := os.Stdout.WriteString(formatter.Format(stats))
	return err
}

func (a *Application) writeHTML(path string, stats *models.AggregateStats) error {
	report, err := output.NewHTMLReport()
	if err != nil {
		return err
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("cannot write report: %w", err)
	}
	defer file.Close()

	return report.Render(file, stats)
}

// watch re-runs the pipeline whenever a source root changes.
func (a *Application) watch(ctx context.Context, specs []sources.Spec) error {
	roots := make([]string, 0, len(specs))
	for _, spec := range specs {
		roots = append(roots, spec.Root)
	}

	watcher, err := fileio.NewWatcher(roots)
	if err != nil {
		return err
	}
	if err := watcher.Start(); err != nil {
		return err
	}
	defer func() { _ = watcher.Stop() }()

	a.logger.Infof("watching %d source roots, press Ctrl+C to stop", len(roots))
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-watcher.Changes():
			a.logger.Info("source data changed, regenerating")
			if err := a.runOnce(specs); err != nil {
				a.logger.Errorf("regeneration failed: %v", err)
			}
		}
	}
}

func (a *Application) close() {
	if a.parseCache != nil {
		if err := a.parseCache.Close(); err != nil {
			a.logger.Debugf("cache close: %v", err)
		}
	}
}
