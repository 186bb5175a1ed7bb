// Package action applies the logjson engine to log messages: it selects the
// text to inspect, attaches extracted data (or a fallback record) to the
// message's variable tree and tracks the parse-success flag.
package action

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/cybergodev/logjson"
	"github.com/cybergodev/logjson/internal"
)

// Action is a configured JSON extraction step. It is safe for concurrent
// use; per-goroutine state lives in the workers it creates.
type Action struct {
	cfg     *Config
	engine  *logjson.Engine
	logger  *slog.Logger
	metrics *internal.MetricsCollector
}

// Option customizes an Action.
type Option func(*Action)

// WithLogger sets the logger; the default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(a *Action) {
		if logger != nil {
			a.logger = logger
		}
	}
}

// WithMetrics shares a metrics collector, for instance between actions.
func WithMetrics(mc *internal.MetricsCollector) Option {
	return func(a *Action) {
		if mc != nil {
			a.metrics = mc
		}
	}
}

// New validates cfg and creates an action. A nil cfg selects DefaultConfig.
func New(cfg *Config, opts ...Option) (*Action, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	a := &Action{
		logger:  slog.Default(),
		metrics: internal.NewMetricsCollector(),
	}
	for _, opt := range opts {
		opt(a)
	}

	c := *cfg
	if err := c.Validate(); err != nil {
		return nil, err
	}
	for _, w := range c.Warnings() {
		a.logger.Warn("logjson: configuration warning", slog.String("warning", w))
	}

	engine, err := logjson.NewEngine(c.Options())
	if err != nil {
		return nil, err
	}
	a.cfg = &c
	a.engine = engine

	a.logger.Debug("logjson: action created",
		slog.String("cookie", c.CookieValue()),
		slog.String("container", c.Container),
		slog.Bool("userawmsg", c.UseRawMsg),
		slog.String("variable", c.Variable),
		slog.Bool("compact", c.Compact),
		slog.String("message_field", c.MessageField),
		slog.String("alt_message_field", c.AltMessageField),
		slog.Bool("repair", c.Repair),
	)
	return a, nil
}

// Config returns a copy of the action's configuration.
func (a *Action) Config() Config { return *a.cfg }

// Metrics returns a snapshot of the action's counters.
func (a *Action) Metrics() internal.Metrics { return a.metrics.GetMetrics() }

// MetricsSummary returns the counters formatted for humans.
func (a *Action) MetricsSummary() string { return a.metrics.GetSummary() }

// Worker processes messages for one goroutine at a time.
type Worker struct {
	action *Action
	worker *logjson.Worker
}

// NewWorker returns a worker with its own parser state.
func (a *Action) NewWorker() *Worker {
	return &Worker{action: a, worker: a.engine.NewWorker()}
}

// Process extracts JSON from msg and attaches the result at the configured
// container. Records without structured data get a {"msg": text} fallback
// instead. msg.ParseSuccess reports whether the record carried structured
// data; a record that was empty after compaction counts as parsed and has
// nothing attached.
//
// Only failures to attach data are returned as errors.
func (w *Worker) Process(ctx context.Context, msg *Message) error {
	a := w.action
	a.metrics.StartWorker()
	defer a.metrics.EndWorker()
	start := time.Now()

	result := w.worker.Extract([]byte(w.source(msg)))

	var err error
	switch {
	case result.Structured():
		if result.Resolve.Resolved() {
			a.metrics.RecordResolvedField()
		}
		err = msg.AddJSON(result.Container, result.Object)
	case result.Reason == logjson.ReasonCompactedToEmpty:
		a.logger.DebugContext(ctx, "logjson: object empty after compaction")
	default:
		a.logUnstructured(ctx, result)
		fallback := logjson.NewObject()
		fallback.Set(logjson.DefaultFallbackField, logjson.String(string(result.Remainder)))
		a.metrics.RecordFallback()
		err = msg.AddJSON(result.Container, fallback)
	}
	msg.ParseSuccess = result.ParseSucceeded()

	reason := ""
	if !result.Structured() {
		reason = result.Reason.String()
	}
	a.metrics.RecordRecord(time.Since(start), reason)

	if err != nil {
		a.logger.ErrorContext(ctx, "logjson: cannot attach result",
			slog.String("container", result.Container),
			slog.String("error", err.Error()),
		)
	}
	return err
}

// source selects the text to inspect: the raw record, a named property, or
// the message text.
func (w *Worker) source(msg *Message) string {
	cfg := w.action.cfg
	switch {
	case cfg.UseRawMsg:
		return msg.RawMsg
	case cfg.Variable != "":
		text, _ := msg.Property(cfg.Variable)
		return text
	default:
		return msg.Msg
	}
}

func (a *Action) logUnstructured(ctx context.Context, result *logjson.Result) {
	if !a.logger.Enabled(ctx, slog.LevelDebug) {
		return
	}
	attrs := []slog.Attr{
		slog.String("reason", result.Reason.String()),
		slog.String("text", truncate(string(result.Remainder), 256)),
	}
	if result.Err != nil {
		attrs = append(attrs, slog.String("error", result.Err.Error()))
	}
	var perr *logjson.ParseError
	if errors.As(result.Err, &perr) {
		attrs = append(attrs,
			slog.String("kind", perr.Kind.String()),
			slog.Int("offset", perr.Offset),
		)
	}
	a.logger.LogAttrs(ctx, slog.LevelDebug, "logjson: no structured data", attrs...)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
