// Package query turns a natural-language question plus the stored
// dataset into a grounded prompt, calls a completion service, and
// returns the answer alongside the aggregates that grounded it.
package query

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/Medini-eng/AICW-01-Financial-Analysis-LLM/internal/aggregate"
	"github.com/Medini-eng/AICW-01-Financial-Analysis-LLM/internal/domain"
)

// Completer is the seam to the completion backend. Implementations
// should return *UpstreamError for classified failures.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

const (
	DefaultMaxExcerptRows = 50
	DefaultTimeout        = 30 * time.Second
)

type Options struct {
	// MaxExcerptRows caps how many recent transactions are inlined into
	// the prompt. Zero means DefaultMaxExcerptRows; negative means all.
	MaxExcerptRows int
	// Retries is how many extra attempts to make after a network-kind
	// upstream failure. Other failure kinds are never retried.
	Retries int
	// Timeout bounds each completion call. Zero means DefaultTimeout.
	Timeout time.Duration
}

// Answer is the result of a successful question round trip.
type Answer struct {
	Question  string    `json:"question"`
	Text      string    `json:"answer"`
	Grounding Grounding `json:"grounding"`
}

// Grounding echoes the aggregate figures the prompt was built from, so
// clients can cross-check the model's claims against exact numbers.
type Grounding struct {
	Rows       int               `json:"rows"`
	DateFrom   string            `json:"date_from,omitempty"`
	DateTo     string            `json:"date_to,omitempty"`
	NetTotal   string            `json:"net_total"`
	Income     string            `json:"income"`
	Expense    string            `json:"expense"`
	ByCategory map[string]string `json:"by_category"`
	ByMonth    map[string]string `json:"by_month"`
}

type Orchestrator struct {
	completer Completer
	log       zerolog.Logger
	opts      Options
}

func New(completer Completer, log zerolog.Logger, opts Options) *Orchestrator {
	if opts.MaxExcerptRows == 0 {
		opts.MaxExcerptRows = DefaultMaxExcerptRows
	}
	if opts.Retries < 0 {
		opts.Retries = 0
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	return &Orchestrator{completer: completer, log: log, opts: opts}
}

// Ask answers question against ds. It fails with ErrNoData before any
// completion call when ds is nil, and surfaces completion failures as
// *UpstreamError.
func (o *Orchestrator) Ask(ctx context.Context, question string, ds *domain.Dataset) (*Answer, error) {
	if ds == nil {
		return nil, ErrNoData
	}

	res := aggregate.Aggregate(ds, aggregate.Spec{})
	prompt := buildPrompt(question, ds, res, o.opts.MaxExcerptRows)

	o.log.Debug().
		Str("dataset_id", ds.Provenance.DatasetID).
		Int("rows", ds.Len()).
		Int("prompt_bytes", len(prompt)).
		Msg("asking completion service")

	text, err := o.complete(ctx, prompt)
	if err != nil {
		return nil, err
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, &UpstreamError{Kind: UpstreamEmpty, Cause: errors.New("model returned an empty answer")}
	}

	return &Answer{
		Question:  question,
		Text:      text,
		Grounding: buildGrounding(ds, res),
	}, nil
}

func (o *Orchestrator) complete(ctx context.Context, prompt string) (string, error) {
	attempts := 1 + o.opts.Retries
	var lastErr error
	for i := 0; i < attempts; i++ {
		callCtx, cancel := context.WithTimeout(ctx, o.opts.Timeout)
		text, err := o.completer.Complete(callCtx, prompt)
		cancel()
		if err == nil {
			return text, nil
		}
		lastErr = classify(err)
		ue, _ := AsUpstream(lastErr)
		if ue.Kind != UpstreamNetwork || i+1 == attempts {
			break
		}
		o.log.Warn().Err(err).Int("attempt", i+1).Msg("retrying after transient completion failure")
	}
	return "", lastErr
}

// classify guarantees every completion failure reaches the caller as an
// *UpstreamError. Unclassified errors, including context expiry, count
// as network failures.
func classify(err error) error {
	if _, ok := AsUpstream(err); ok {
		return err
	}
	return &UpstreamError{Kind: UpstreamNetwork, Cause: err}
}

func buildGrounding(ds *domain.Dataset, res aggregate.Result) Grounding {
	g := Grounding{
		Rows:       res.Count,
		NetTotal:   aggregate.Present(res.NetTotal),
		Income:     aggregate.Present(res.Income),
		Expense:    aggregate.Present(res.Expense),
		ByCategory: make(map[string]string, len(res.ByCategory)),
		ByMonth:    make(map[string]string, len(res.ByMonth)),
	}
	if from, to, ok := ds.DateRange(); ok {
		g.DateFrom = from.String()
		g.DateTo = to.String()
	}
	for cat, v := range res.ByCategory {
		g.ByCategory[cat] = aggregate.Present(v)
	}
	for month, v := range res.ByMonth {
		g.ByMonth[month] = aggregate.Present(v)
	}
	return g
}
