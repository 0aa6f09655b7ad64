package scenario

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

type runOptions struct {
	logger   *zap.Logger
	enricher Enricher
	negative Persona
	positive Persona
	now      func() time.Time
	newID    func() string
}

// Option customizes Run.
type Option func(*runOptions)

func WithLogger(l *zap.Logger) Option {
	return func(o *runOptions) { o.logger = l }
}

// WithEnricher replaces DefaultEnricher.
func WithEnricher(e Enricher) Option {
	return func(o *runOptions) { o.enricher = e }
}

func WithPersonas(negative, positive Persona) Option {
	return func(o *runOptions) {
		o.negative = negative
		o.positive = positive
	}
}

// WithClock fixes the timestamp source.
func WithClock(now func() time.Time) Option {
	return func(o *runOptions) { o.now = now }
}

// WithRunID fixes the run identifier source.
func WithRunID(newID func() string) Option {
	return func(o *runOptions) { o.newID = newID }
}

// Run asks the negative and positive agents for their bundles concurrently and builds the
// result. A generator error from either agent cancels the other and is returned.
func Run(ctx context.Context, gen Generator, topic, contextText string, cfg Config, opts ...Option) (RunResult, error) {
	if gen == nil {
		return RunResult{}, errors.New("Run: generator is nil")
	}
	o := runOptions{
		logger:   zap.NewNop(),
		enricher: DefaultEnricher(),
		negative: NegativePersona,
		positive: PositivePersona,
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = zap.NewNop()
	}
	log := o.logger.With(zap.String("topic", topic))

	var neg, pos Bundle
	g, gctx := errgroup.WithContext(ctx)
	reason := func(p Persona, out *Bundle) func() error {
		return func() error {
			start := time.Now()
			log.Info("stance agent started", zap.String("agent", p.Name))
			b, err := Agent{Persona: p, Generator: gen, Enricher: o.enricher}.Reason(gctx, topic, contextText)
			if err != nil {
				log.Info("stance agent failed", zap.String("agent", p.Name), zap.Error(err))
				return err
			}
			*out = b
			log.Info("stance agent finished",
				zap.String("agent", p.Name),
				zap.Duration("elapsed", time.Since(start)),
				zap.Float64("confidence", b.Confidence))
			return nil
		}
	}
	g.Go(reason(o.negative, &neg))
	g.Go(reason(o.positive, &pos))
	if err := g.Wait(); err != nil {
		return RunResult{}, err
	}

	b := Builder{
		Logger: o.logger,
		Now:    o.now,
		NewID:  o.newID,
		Mode:   generatorMode(gen),
	}
	return b.Build(topic, contextText, neg, pos, cfg), nil
}
