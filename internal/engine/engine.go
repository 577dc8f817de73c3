package engine

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/petzzshop/ops-backend/internal/config"
	"github.com/petzzshop/ops-backend/internal/domain"
)

// Engine runs the full decision pipeline for product signals: derived
// metrics, priority score, action classification and order quantity. It is
// stateless and safe for concurrent use; every stage is a pure function of
// the signal and the process-wide configuration.
type Engine struct {
	cfg         config.EngineConfig
	calc        *Calculator
	scorer      *Scorer
	classifier  *Classifier
	recommender *Recommender
}

// New creates a decision engine with the given configuration.
func New(cfg config.EngineConfig) *Engine {
	return &Engine{
		cfg:         cfg,
		calc:        NewCalculator(cfg),
		scorer:      NewScorer(cfg),
		classifier:  NewClassifier(cfg),
		recommender: NewRecommender(cfg),
	}
}

// Config returns the active engine configuration.
func (e *Engine) Config() config.EngineConfig {
	return e.cfg
}

// Recommender exposes the order quantity recommender for strategy queries.
func (e *Engine) Recommender() *Recommender {
	return e.recommender
}

// Evaluate runs the pipeline for a single product signal.
func (e *Engine) Evaluate(sig domain.ProductSignal) domain.DecisionRow {
	metrics := e.calc.Calculate(&sig)
	priority := e.scorer.Score(metrics)
	decision := e.classifier.Classify(&sig, metrics)

	if decision.Action == domain.ActionOrder {
		_, qty, _ := e.recommender.Quantity(&sig, metrics, DefaultTemplate(e.cfg))
		decision.SuggestedOrderQty = qty
	}

	return domain.DecisionRow{
		ProductSignal: sig,
		Metrics:       metrics,
		Priority:      priority,
		Decision:      decision,
	}
}

// EvaluateAll evaluates every signal, preserving input order. Products are
// independent, so evaluation fans out across a bounded worker group; the
// only failure mode is context cancellation.
func (e *Engine) EvaluateAll(ctx context.Context, signals []domain.ProductSignal) ([]domain.DecisionRow, error) {
	rows := make([]domain.DecisionRow, len(signals))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.NumCPU())

	for i, sig := range signals {
		g.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}
			rows[i] = e.Evaluate(sig)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return rows, nil
}
