package sources

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/penwyp/rewindcat/cache"
	"github.com/penwyp/rewindcat/fileio"
	"github.com/penwyp/rewindcat/logging"
	"github.com/penwyp/rewindcat/models"
)

// Spec names a source root to collect from.
type Spec struct {
	Name string
	Root string
}

// ParseDataPath parses a --data-path value of the form "path" or
// "path:name". A trailing ":segment" is a name override only when it
// contains no path separator; otherwise the colon belongs to the path.
func ParseDataPath(spec string) Spec {
	path := spec
	name := ""

	if idx := strings.LastIndex(spec, ":"); idx >= 0 {
		candidate := spec[idx+1:]
		if candidate != "" && !strings.ContainsRune(candidate, filepath.Separator) {
			path = spec[:idx]
			name = candidate
		}
	}

	if name == "" {
		base := filepath.Base(path)
		if strings.HasPrefix(base, ".") && base != "." {
			// ~/.claude is a layout detail, not a useful source name.
			base = filepath.Base(filepath.Dir(path))
		}
		name = base
	}

	return Spec{Name: name, Root: path}
}

// Collector walks source roots and drives the per-tool parsers over every
// discovered log file. Parse failures are isolated per file; only an
// unusable root is fatal.
type Collector struct {
	loc    *time.Location
	cache  *cache.ParseCache // nil disables caching
	logger *logging.Logger
}

// NewCollector creates a collector that normalizes all event timestamps
// into loc. A nil loc falls back to the system timezone.
func NewCollector(loc *time.Location, parseCache *cache.ParseCache) *Collector {
	if loc == nil {
		loc = time.Local
	}
	return &Collector{
		loc:    loc,
		cache:  parseCache,
		logger: logging.GetLogger(),
	}
}

// Collect builds one Source from the given root. Tools without a matching
// directory under the root are silently skipped.
func (c *Collector) Collect(spec Spec) (models.Source, error) {
	source := models.Source{Name: spec.Name, Root: spec.Root}

	info, err := os.Stat(spec.Root)
	if err != nil {
		return source, &models.ConfigError{Field: "source " + spec.Name, Message: "unreadable source root " + spec.Root, Cause: err}
	}
	if !info.IsDir() {
		return source, models.NewConfigError("source "+spec.Name, "source root %s is not a directory", spec.Root)
	}

	seen := make(map[string]bool)
	for _, parser := range fileio.Parsers() {
		toolRoot, ok := parser.DetectRoot(spec.Root)
		if !ok {
			continue
		}

		files := parser.Files(toolRoot)
		c.logger.Debugf("source %s: %s at %s (%d files)", spec.Name, parser.Tool(), toolRoot, len(files))

		for _, path := range files {
			events, err := c.parseFile(parser, path)
			if err != nil {
				c.logger.Warnf("source %s: skipping %v", spec.Name, err)
				continue
			}
			for _, event := range events {
				if key := event.DedupKey(); key != "" {
					if seen[key] {
						continue
					}
					seen[key] = true
				}
				// Normalize once, here, so every downstream
				// computation sees the same calendar days.
				event.Timestamp = event.Timestamp.In(c.loc)
				source.Events = append(source.Events, event)
			}
		}
	}

	sort.Slice(source.Events, func(i, j int) bool {
		return source.Events[i].Timestamp.Before(source.Events[j].Timestamp)
	})

	c.logger.Infof("source %s: collected %d events", spec.Name, len(source.Events))
	return source, nil
}

// CollectAll collects every spec. Two specs declaring the same name is a
// configuration error rather than a silent merge; merging is what
// --merge-sources is for.
func (c *Collector) CollectAll(specs []Spec) ([]models.Source, error) {
	byName := make(map[string]bool, len(specs))
	var sources []models.Source

	for _, spec := range specs {
		if byName[spec.Name] {
			return nil, models.NewConfigError("sources", "duplicate source name %q; use --merge-sources to combine sources", spec.Name)
		}
		byName[spec.Name] = true

		source, err := c.Collect(spec)
		if err != nil {
			return nil, err
		}
		sources = append(sources, source)
	}
	return sources, nil
}

func (c *Collector) parseFile(parser fileio.Parser, path string) ([]models.UsageEvent, error) {
	if c.cache != nil {
		if summary, ok := c.cache.Get(path); ok {
			return summary.Events, nil
		}
	}

	events, err := parser.ParseFile(path)
	if err != nil {
		return nil, err
	}

	if c.cache != nil {
		checksum, err := cache.Checksum(path)
		if err == nil {
			summary := &cache.FileSummary{
				Path:     path,
				Checksum: checksum,
				Tool:     parser.Tool(),
				Events:   events,
				ParsedAt: time.Now(),
			}
			if err := c.cache.Put(summary); err != nil {
				c.logger.Debugf("cache: put %s: %v", path, err)
			}
		}
	}
	return events, nil
}
