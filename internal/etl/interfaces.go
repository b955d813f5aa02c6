package etl

import (
	"context"

	"github.com/BartekS5/posts-etl/pkg/models"
)

// Extractor produces the raw posts. A nil slice means the upstream
// returned no payload at all.
type Extractor interface {
	Extract(ctx context.Context) ([]models.RawPost, error)
}

// Loader persists projected posts. Implementations must treat an empty
// slice as "nothing to do".
type Loader interface {
	Load(ctx context.Context, posts []models.Post) error
}

// StepRunner executes one named pipeline step. The scheduler's
// implementation retries fn and records every attempt.
type StepRunner interface {
	RunStep(ctx context.Context, name string, fn func(ctx context.Context) error) error
}

// DirectRunner runs each step once.
type DirectRunner struct{}

func (DirectRunner) RunStep(ctx context.Context, _ string, fn func(ctx context.Context) error) error {
	return fn(ctx)
}
