package fetch

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/penwyp/rewindcat/logging"
	"github.com/penwyp/rewindcat/sources"
)

// DefaultTimeout bounds one remote rsync invocation.
const DefaultTimeout = 120 * time.Second

// Fetcher materializes remote ~/.claude-style data roots into a local
// staging directory so the collector can treat them like any other root.
// Transport is plain rsync over the user's existing SSH setup; no
// credentials are handled here.
type Fetcher struct {
	stagingDir string
	timeout    time.Duration
	logger     *logging.Logger
}

// Result is the outcome of fetching one remote host.
type Result struct {
	Host string
	Spec sources.Spec
	Err  error
}

// NewFetcher creates a fetcher staging under the system temp directory.
func NewFetcher() (*Fetcher, error) {
	stagingDir, err := os.MkdirTemp("", "rewindcat-fetch-")
	if err != nil {
		return nil, fmt.Errorf("failed to create staging directory: %w", err)
	}
	return &Fetcher{
		stagingDir: stagingDir,
		timeout:    DefaultTimeout,
		logger:     logging.GetLogger(),
	}, nil
}

// FetchAll pulls every remote in parallel. A failed host is a warning and
// produces a Result with Err set; the run continues with the hosts that
// succeeded. Collection must not start until every fetch has finished,
// which the internal WaitGroup guarantees.
func (f *Fetcher) FetchAll(ctx context.Context, remotes []string) []Result {
	results := make([]Result, len(remotes))

	var wg sync.WaitGroup
	for i, remote := range remotes {
		wg.Add(1)
		go func(i int, remote string) {
			defer wg.Done()
			spec, err := f.fetch(ctx, remote)
			results[i] = Result{Host: remote, Spec: spec, Err: err}
		}(i, remote)
	}
	wg.Wait()

	for _, r := range results {
		if r.Err != nil {
			f.logger.Warnf("fetch %s: %v", r.Host, r.Err)
		}
	}
	return results
}

// fetch pulls one host's .claude directory into a per-host staging dir.
// The remote alias becomes the source name.
func (f *Fetcher) fetch(ctx context.Context, remote string) (sources.Spec, error) {
	spec := sources.Spec{Name: remote}

	hostDir := filepath.Join(f.stagingDir, uuid.NewString())
	if err := os.MkdirAll(hostDir, 0700); err != nil {
		return spec, fmt.Errorf("failed to create host staging dir: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	f.logger.Infof("fetching data from %s...", remote)
	cmd := exec.CommandContext(ctx, "rsync", "-az", remote+":.claude/", hostDir+string(os.PathSeparator))
	if output, err := cmd.CombinedOutput(); err != nil {
		return spec, fmt.Errorf("rsync failed: %w: %s", err, truncate(string(output), 200))
	}

	entries, err := os.ReadDir(hostDir)
	if err != nil || len(entries) == 0 {
		return spec, fmt.Errorf("no data found on %s", remote)
	}

	spec.Root = hostDir
	return spec, nil
}

// Cleanup removes the staging directory and everything fetched into it.
func (f *Fetcher) Cleanup() {
	if f.stagingDir != "" {
		_ = os.RemoveAll(f.stagingDir)
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
