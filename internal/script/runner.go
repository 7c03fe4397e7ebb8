package script

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/aretw0/nestcache/internal/logging"
	"github.com/aretw0/nestcache/pkg/account"
	"github.com/aretw0/nestcache/pkg/cache"
	"github.com/aretw0/nestcache/pkg/domain"
	"github.com/aretw0/nestcache/pkg/keypath"
	"github.com/aretw0/nestcache/pkg/ports"
	"github.com/mitchellh/mapstructure"
)

// Result is the outcome of one op. Value is set for get ops only.
type Result struct {
	Index int
	Op    string
	Key   string
	Value any
	Err   error
}

// Runner executes scripts against a store.
type Runner struct {
	store   *cache.Store
	logger  *slog.Logger
	account *account.Account
}

// Option configures the Runner.
type Option func(*Runner)

// WithLogger configures a logger for the Runner.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Runner) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// NewRunner creates a Runner over store.
func NewRunner(store *cache.Store, opts ...Option) *Runner {
	r := &Runner{
		store:  store,
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Account returns the account created by the last bind op, if any.
func (r *Runner) Account() *account.Account {
	return r.account
}

// Run executes the ops of s in order. It stops at the first failure unless
// the script sets continue_on_error, in which case all failures are joined.
func (r *Runner) Run(ctx context.Context, s *Script) ([]Result, error) {
	results := make([]Result, 0, len(s.Ops))
	var errs []error

	for i, op := range s.Ops {
		if err := ctx.Err(); err != nil {
			return results, err
		}

		scope := s.EffectiveScope(op)
		res := Result{Index: i, Op: op.Op, Key: op.Key}
		if scope != "" && op.Key != "" {
			res.Key = keypath.Join(scope, op.Key)
		}

		res.Value, res.Err = r.exec(op, scope)
		results = append(results, res)

		if res.Err == nil {
			r.logger.Debug("Script Op", "index", i, "op", op.Op, "key", res.Key)
			continue
		}

		r.logger.Warn("Script Op Failed", "index", i, "op", op.Op, "key", res.Key, "err", res.Err)
		err := fmt.Errorf("ops[%d] %s %q: %w", i, op.Op, res.Key, res.Err)
		if !s.ContinueOnError {
			return results, err
		}
		errs = append(errs, err)
	}
	return results, errors.Join(errs...)
}

func (r *Runner) exec(op Op, scope string) (any, error) {
	switch op.Op {
	case OpBind:
		return nil, r.bind(op.Value)
	case OpIngest:
		if r.account == nil {
			return nil, domain.ErrNotAuthenticated
		}
		payload, ok := op.Value.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("ingest: value must be a mapping, got %T", op.Value)
		}
		return nil, r.account.IngestDevice(payload)
	case OpIngestIntervals, OpIngestTrends:
		return nil, r.ingestSessions(op)
	}

	target, err := r.target(scope)
	if err != nil {
		return nil, err
	}

	switch op.Op {
	case OpGet:
		return target.Get(op.Key)
	case OpPut:
		return nil, target.Put(op.Key, op.Value)
	case OpMerge:
		return nil, target.Merge(op.Key, op.Value, op.MergeKey)
	default:
		return nil, fmt.Errorf("unknown op %q", op.Op)
	}
}

func (r *Runner) target(scope string) (ports.Cache, error) {
	if scope == "" {
		return r.store, nil
	}
	view, err := cache.NewScopedView(r.store, scope)
	if err != nil {
		return nil, err
	}
	return view.Scoped(), nil
}

func (r *Runner) ingestSessions(op Op) error {
	if r.account == nil {
		return domain.ErrNotAuthenticated
	}
	list, ok := op.Value.([]any)
	if !ok {
		return fmt.Errorf("%s: value must be a list, got %T", op.Op, op.Value)
	}

	var side *account.Side
	var err error
	switch op.Side {
	case account.SideLeft:
		side, err = r.account.Left()
	case account.SideRight:
		side, err = r.account.Right()
	case "", SideMe:
		side, err = r.account.Me()
	default:
		err = fmt.Errorf("unknown side %q", op.Side)
	}
	if err != nil {
		return err
	}

	if op.Op == OpIngestTrends {
		return side.IngestTrends(list)
	}
	return side.IngestIntervals(list)
}

// bind decodes an account session ("tz" plus the account.Session fields)
// and binds a new account to the store.
func (r *Runner) bind(value any) error {
	fields, _ := value.(map[string]any)

	var sess account.Session
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &sess,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return err
	}
	if err := decoder.Decode(fields); err != nil {
		return fmt.Errorf("decode session: %w", err)
	}

	tz, _ := fields["tz"].(string)
	acc, err := account.New(r.store, tz, account.WithLogger(r.logger))
	if err != nil {
		return err
	}
	if err := acc.Bind(sess); err != nil {
		return err
	}
	r.account = acc
	return nil
}
