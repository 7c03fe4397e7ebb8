package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/aretw0/nestcache/internal/config"
	"github.com/aretw0/nestcache/internal/logging"
	"github.com/aretw0/nestcache/internal/presentation"
	"github.com/aretw0/nestcache/internal/script"
	"github.com/aretw0/nestcache/pkg/account"
	"github.com/aretw0/nestcache/pkg/cache"
	"github.com/aretw0/nestcache/pkg/observability"
	"github.com/aretw0/nestcache/pkg/session"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
)

// ApplyOptions holds the inputs of the apply command.
// Empty LogLevel and Output fall back to the config file.
type ApplyOptions struct {
	ConfigPath string
	Scripts    []string
	SessionID  string
	LogLevel   string
	Output     string
	Metrics    bool

	Stdout io.Writer
	Stderr io.Writer
}

func (o *ApplyOptions) resolve() (config.Config, error) {
	cfg, err := config.Load(o.ConfigPath)
	if err != nil {
		return cfg, err
	}
	if o.LogLevel != "" {
		cfg.LogLevel = o.LogLevel
	}
	if o.Output != "" {
		cfg.Output = o.Output
	}
	cfg.Metrics = cfg.Metrics || o.Metrics
	if o.Stdout == nil {
		o.Stdout = os.Stdout
	}
	if o.Stderr == nil {
		o.Stderr = os.Stderr
	}
	return cfg, cfg.Validate()
}

// Apply runs the scripts, in order, against one session store and renders
// the resulting tree. The session is discarded when Apply returns.
func Apply(ctx context.Context, opts ApplyOptions) error {
	cfg, err := opts.resolve()
	if err != nil {
		return err
	}

	level, err := logging.ParseLevel(cfg.LogLevel)
	if err != nil {
		return err
	}
	logger := logging.NewWriter(opts.Stderr, level)

	renderer, err := presentation.NewRenderer(cfg.Output)
	if err != nil {
		return err
	}

	scripts := make([]*script.Script, 0, len(opts.Scripts))
	for _, path := range opts.Scripts {
		s, err := script.ParseFile(path)
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		scripts = append(scripts, s)
	}

	reg := prometheus.NewRegistry()
	metrics := observability.NewMetrics(reg)

	mgr := session.NewManager(
		session.WithLogger(logger),
		session.WithStoreOptions(
			cache.WithLogger(logger),
			cache.WithHooks(metrics.Hooks()),
		),
	)

	sessionID, _, err := mgr.Open(ctx, opts.SessionID)
	if err != nil {
		return err
	}
	defer func() {
		_ = mgr.Close(context.Background(), sessionID)
	}()

	var tree map[string]any
	err = mgr.WithLock(ctx, sessionID, func(ctx context.Context, store *cache.Store) error {
		if len(cfg.Scopes) > 0 {
			ids := make([]any, len(cfg.Scopes))
			for i, s := range cfg.Scopes {
				ids[i] = s
			}
			if err := store.Put(account.KeyUserIDs, ids); err != nil {
				return err
			}
		}

		runner := script.NewRunner(store, script.WithLogger(logger))
		for i, s := range scripts {
			results, err := runner.Run(ctx, s)
			for _, res := range results {
				if res.Op == script.OpGet && res.Err == nil {
					logger.Info("Script Get", "key", res.Key, "value", presentation.FormatValue(res.Value))
				}
			}
			if err != nil {
				return fmt.Errorf("%s: %w", opts.Scripts[i], err)
			}
		}
		tree = store.Snapshot()
		return nil
	})
	if err != nil {
		return err
	}

	if err := renderer.Render(opts.Stdout, tree); err != nil {
		return fmt.Errorf("failed to render: %w", err)
	}

	if cfg.Metrics {
		return WriteMetrics(opts.Stderr, reg)
	}
	return nil
}

// WriteMetrics dumps the gathered metric families in the Prometheus text format.
func WriteMetrics(w io.Writer, g prometheus.Gatherer) error {
	families, err := g.Gather()
	if err != nil {
		return fmt.Errorf("failed to gather metrics: %w", err)
	}
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return fmt.Errorf("failed to write metrics: %w", err)
		}
	}
	return nil
}
