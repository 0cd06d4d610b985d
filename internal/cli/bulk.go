package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/spf13/cobra"

	apperrors "github.com/wbkit/waymark/pkg/errors"
	"github.com/wbkit/waymark/pkg/extract"
	"github.com/wbkit/waymark/pkg/queue"
	"github.com/wbkit/waymark/pkg/store"
	"github.com/wbkit/waymark/pkg/wayback"
)

// bulkOpts holds the command-line flags for the bulk command.
type bulkOpts struct {
	workers int  // worker pool size
	save    bool // store successful fetches in the library
}

// bulkCommand creates the bulk command, fetching many targets' latest
// captures through the job queue.
func (c *CLI) bulkCommand() *cobra.Command {
	opts := bulkOpts{workers: queue.DefaultWorkers}

	cmd := &cobra.Command{
		Use:   "bulk <file|target...>",
		Short: "Fetch the latest capture of many targets",
		Long: `Fetch the latest capture of many targets through a bounded worker pool.

Targets come either from arguments or from a file with one target per line
(blank lines and # comments are skipped). Each fetch keeps its own
independent timeout and retry lifecycle; only the fan-out is concurrent.

Examples:
  waymark bulk example.com other.org third.net
  waymark bulk targets.txt --workers 8 --save`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runBulk(cmd, args, opts)
		},
	}

	cmd.Flags().IntVarP(&opts.workers, "workers", "w", opts.workers, "concurrent fetches")
	cmd.Flags().BoolVar(&opts.save, "save", false, "save successful fetches to the library")

	return cmd
}

func (c *CLI) runBulk(cmd *cobra.Command, args []string, opts bulkOpts) error {
	targets, err := bulkTargets(args)
	if err != nil {
		return err
	}
	for _, target := range targets {
		if err := apperrors.ValidateTarget(target); err != nil {
			return err
		}
	}

	ctx := cmd.Context()
	logger := loggerFromContext(ctx)
	client := c.newClient()

	var st store.Store
	if opts.save {
		st, err = c.openStore(cmd)
		if err != nil {
			return err
		}
		defer st.Close()
	}

	q := queue.NewMemory()
	defer q.Close()

	jobs := make([]*queue.Job, 0, len(targets))
	for _, target := range targets {
		job := &queue.Job{Target: wayback.NormalizeTarget(target)}
		if err := q.Enqueue(ctx, job); err != nil {
			return err
		}
		jobs = append(jobs, job)
	}

	logger.Infof("Fetching %d targets with %d workers", len(jobs), opts.workers)
	prog := newProgress(logger)

	spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Fetched 0/%d targets...", len(jobs)))
	spinner.Start()

	// The pool runs until cancelled; the WaitGroup tells us when every
	// enqueued job has been handled.
	var pending sync.WaitGroup
	pending.Add(len(jobs))
	var handled atomic.Int64

	poolCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	pool := queue.NewPool(q, opts.workers, func(jobCtx context.Context, job *queue.Job) (string, error) {
		defer pending.Done()
		defer func() {
			spinner.SetMessage(fmt.Sprintf("Fetched %d/%d targets...", handled.Add(1), len(jobs)))
		}()
		return fetchLatest(jobCtx, client, st, job.Target)
	})
	pool.Start(poolCtx)

	waitDone := make(chan struct{})
	go func() {
		pending.Wait()
		close(waitDone)
	}()
	select {
	case <-waitDone:
	case <-ctx.Done():
		cancel()
		pool.Wait()
		spinner.Stop()
		return ctx.Err()
	}
	cancel()
	pool.Wait()
	spinner.Stop()

	prog.done("Finished bulk fetch")
	return c.printBulkSummary(ctx, q, jobs)
}

// fetchLatest is the bulk work function: resolve the newest capture,
// fetch it, and optionally save it. The returned summary lands in the job
// result.
func fetchLatest(ctx context.Context, client *wayback.Client, st store.Store, target string) (string, error) {
	snap, err := client.Latest(ctx, target)
	if err != nil {
		return "", err
	}
	content, err := client.Content(ctx, *snap)
	if err != nil {
		return "", err
	}

	if st != nil {
		rec := &store.Record{
			Target:      target,
			Timestamp:   snap.Timestamp,
			OriginalURL: snap.OriginalURL,
			SnapshotURL: content.URL,
			Title:       extract.Title(content.HTML),
			HTML:        content.HTML,
			Length:      content.Length,
		}
		if snap.StatusCode != nil {
			rec.StatusCode = *snap.StatusCode
		}
		if err := st.Save(ctx, rec); err != nil {
			return "", err
		}
	}

	return fmt.Sprintf("%s (%d bytes)", snap.Timestamp, content.Length), nil
}

// printBulkSummary reports per-job outcomes and totals.
func (c *CLI) printBulkSummary(ctx context.Context, q queue.Queue, jobs []*queue.Job) error {
	var completed, failed int

	printNewline()
	for _, enqueued := range jobs {
		job, err := q.Get(ctx, enqueued.ID)
		if err != nil {
			return err
		}
		switch job.Status {
		case queue.StatusCompleted:
			completed++
			printSuccess("%s %s", StyleHighlight.Render(job.Target), StyleDim.Render(job.Result))
		case queue.StatusFailed:
			failed++
			printError("%s %s", StyleHighlight.Render(job.Target), StyleDim.Render(job.Error))
		default:
			failed++
			printWarning("%s not processed", job.Target)
		}
	}

	printNewline()
	printDetail("%d completed · %d failed", completed, failed)
	if failed > 0 {
		return fmt.Errorf("%d of %d targets failed", failed, len(jobs))
	}
	return nil
}

// bulkTargets reads targets from args, or from a file when the single
// argument names one.
func bulkTargets(args []string) ([]string, error) {
	if len(args) != 1 {
		return args, nil
	}
	if _, err := os.Stat(args[0]); err != nil {
		return args, nil // not a file, treat as a target
	}

	f, err := os.Open(args[0])
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var targets []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		targets = append(targets, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if len(targets) == 0 {
		return nil, fmt.Errorf("no targets in %s", args[0])
	}
	return targets, nil
}
