package cli

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/wbkit/waymark/internal/server"
	"github.com/wbkit/waymark/pkg/observability"
	"github.com/wbkit/waymark/pkg/queue"
)

// serveCommand creates the serve command, running the HTTP API with its
// store, queue, and worker pool.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr    string
		workers int
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the waymark HTTP API",
		Long: `Run the HTTP API. Snapshots and content are fetched on demand; bulk
jobs submitted through the API are processed by an in-process worker
pool consuming the configured queue backend.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if addr == "" {
				addr = c.cfg.Serve.Addr
			}
			if workers <= 0 {
				workers = c.cfg.Serve.Workers
			}
			return c.runServe(cmd, addr, workers)
		},
	}

	cmd.Flags().StringVarP(&addr, "addr", "a", "", "listen address (default from config)")
	cmd.Flags().IntVarP(&workers, "workers", "w", 0, "bulk job workers (default from config)")

	return cmd
}

func (c *CLI) runServe(cmd *cobra.Command, addr string, workers int) error {
	ctx := cmd.Context()
	logger := loggerFromContext(ctx)

	// Surface client and store activity through the logger while serving.
	observability.SetFetchHooks(&logFetchHooks{logger: logger})
	observability.SetHTTPHooks(&logHTTPHooks{logger: logger})
	defer observability.Reset()

	st, err := c.openStore(cmd)
	if err != nil {
		return err
	}
	defer st.Close()

	var q queue.Queue
	if c.cfg.Serve.QueueBackend == "redis" {
		q, err = queue.NewRedis(ctx, c.cfg.Serve.RedisAddr)
		if err != nil {
			return err
		}
	} else {
		q = queue.NewMemory()
	}
	defer q.Close()

	client := c.newClient()

	pool := queue.NewPool(q, workers, func(jobCtx context.Context, job *queue.Job) (string, error) {
		return fetchLatest(jobCtx, client, st, job.Target)
	})
	poolCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	pool.Start(poolCtx)
	defer pool.Wait()

	srv := server.New(server.Config{
		Addr:   addr,
		Client: client,
		Store:  st,
		Queue:  q,
		Logger: logger,
	})
	return srv.Run(ctx)
}

// =============================================================================
// Logging Hooks
// =============================================================================

// logFetchHooks reports archive operations on the serve logger.
type logFetchHooks struct {
	logger *log.Logger
}

func (h *logFetchHooks) OnStart(_ context.Context, op, target string) {
	h.logger.Debug("fetch start", "op", op, "target", target)
}

func (h *logFetchHooks) OnRetryWait(_ context.Context, op string, attempt int, wait time.Duration) {
	h.logger.Warn("rate limited, backing off", "op", op, "attempt", attempt, "wait", wait)
}

func (h *logFetchHooks) OnDone(_ context.Context, op string, duration time.Duration, err error) {
	if err != nil {
		h.logger.Error("fetch failed", "op", op, "duration", duration.Round(time.Millisecond), "err", err)
		return
	}
	h.logger.Debug("fetch done", "op", op, "duration", duration.Round(time.Millisecond))
}

// logHTTPHooks reports raw archive HTTP traffic at debug level.
type logHTTPHooks struct {
	logger *log.Logger
}

func (h *logHTTPHooks) OnRequest(_ context.Context, method, host, path string) {
	h.logger.Debug("archive request", "method", method, "host", host, "path", path)
}

func (h *logHTTPHooks) OnResponse(_ context.Context, method, host, path string, status int, duration time.Duration) {
	h.logger.Debug("archive response", "method", method, "host", host, "status", status,
		"duration", duration.Round(time.Millisecond))
}

func (h *logHTTPHooks) OnError(_ context.Context, method, host, path string, err error) {
	h.logger.Debug("archive error", "method", method, "host", host, "err", err)
}
