package conversion

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strconv"
	"sync"
	"time"

	"gorm.io/gorm"

	"github.com/AvaliaJa/AvaliaJa/app/models"
	"github.com/AvaliaJa/AvaliaJa/app/repository"
	"github.com/AvaliaJa/AvaliaJa/internal/pkg/env"
)

// Decision is the outcome of estimating one click.
type Decision struct {
	Converted   bool
	RatingDelta float64
}

// Estimator decides whether a click resulted in an actual review. The
// default implementation is probabilistic; a production attribution signal
// (e.g. a review-platform webhook) plugs in behind the same interface without
// touching the recorder or the leaderboard.
type Estimator interface {
	Estimate(click *models.Click) Decision
}

// RandomEstimator marks a configurable fraction of clicks as converted and
// nudges the restaurant rating by a small random delta. It is a development
// stand-in for a real conversion signal.
type RandomEstimator struct {
	rate float64

	mu  sync.Mutex
	rnd *rand.Rand
}

// NewRandomEstimator creates an estimator converting roughly rate of clicks.
// Rate is clamped to [0, 1].
func NewRandomEstimator(rate float64) *RandomEstimator {
	if rate < 0 {
		rate = 0
	}
	if rate > 1 {
		rate = 1
	}
	return &RandomEstimator{
		rate: rate,
		rnd:  rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// NewRandomEstimatorFromEnv reads CONVERSION_RATE (default 0.3).
func NewRandomEstimatorFromEnv() *RandomEstimator {
	rate := 0.3
	if v, err := strconv.ParseFloat(env.GetEnv("CONVERSION_RATE", "0.3"), 64); err == nil {
		rate = v
	}
	return NewRandomEstimator(rate)
}

func (e *RandomEstimator) Estimate(click *models.Click) Decision {
	_ = click
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.rnd.Float64() >= e.rate {
		return Decision{}
	}
	// Simulated reviews skew positive but can dip the average slightly.
	delta := e.rnd.Float64()*0.1 - 0.02
	return Decision{Converted: true, RatingDelta: delta}
}

// Applier runs conversion estimation for recorded clicks. It is idempotent
// per click: a click already marked converted is never re-evaluated, and the
// repository's guarded flip keeps a concurrent duplicate run from counting a
// conversion twice.
type Applier struct {
	clicks    repository.ClickRepository
	estimator Estimator
}

// NewApplier creates a conversion applier from an injected click repository
// and estimation strategy.
func NewApplier(clicks repository.ClickRepository, estimator Estimator) *Applier {
	return &Applier{clicks: clicks, estimator: estimator}
}

// Apply estimates one click and, when the decision is positive, marks it
// converted. A missing click is not an error; the log row may have been
// recorded by an instance whose transaction has not replicated yet, and the
// job will be retried.
func (a *Applier) Apply(ctx context.Context, clickID uint) error {
	_ = ctx
	click, err := a.clicks.GetByID(clickID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("click %d not found", clickID)
		}
		return fmt.Errorf("load click %d: %w", clickID, err)
	}

	if click.Converted {
		return nil
	}

	decision := a.estimator.Estimate(click)
	if !decision.Converted {
		return nil
	}

	if _, err := a.clicks.MarkConverted(click.ID, decision.RatingDelta); err != nil {
		return fmt.Errorf("mark click %d converted: %w", click.ID, err)
	}
	return nil
}
