package etl

import (
	"context"
	"time"

	"github.com/BartekS5/posts-etl/pkg/logger"
	"github.com/BartekS5/posts-etl/pkg/models"
)

// Step names, in execution order.
const (
	StepExtract   = "extract"
	StepTransform = "transform"
	StepLoad      = "load"
)

// Steps returns the step names in the order Run executes them.
func Steps() []string {
	return []string{StepExtract, StepTransform, StepLoad}
}

type Pipeline struct {
	Extractor   Extractor
	Transformer *Transformer
	Loader      Loader
}

func NewPipeline(ext Extractor, loader Loader) *Pipeline {
	return &Pipeline{
		Extractor:   ext,
		Transformer: NewTransformer(),
		Loader:      loader,
	}
}

// Result summarizes one pass through the pipeline.
type Result struct {
	Extracted   int
	Transformed int
	Written     int
	// Absent is set when the upstream returned no payload.
	Absent bool
}

// Run executes extract, transform and load through steps, handing each
// step's output to the next. A nil steps runs every step once.
func (p *Pipeline) Run(ctx context.Context, steps StepRunner) (*Result, error) {
	if steps == nil {
		steps = DirectRunner{}
	}
	start := time.Now()
	res := &Result{}

	var raw []models.RawPost
	err := steps.RunStep(ctx, StepExtract, func(ctx context.Context) error {
		var err error
		raw, err = p.Extractor.Extract(ctx)
		return err
	})
	if err != nil {
		return res, err
	}
	res.Extracted = len(raw)
	res.Absent = raw == nil

	var posts []models.Post
	err = steps.RunStep(ctx, StepTransform, func(context.Context) error {
		var err error
		posts, err = p.Transformer.Transform(raw)
		return err
	})
	if err != nil {
		return res, err
	}
	res.Transformed = len(posts)

	err = steps.RunStep(ctx, StepLoad, func(ctx context.Context) error {
		return p.Loader.Load(ctx, posts)
	})
	if err != nil {
		return res, err
	}
	res.Written = len(posts)

	logger.Infof("Pipeline finished in %s. Extracted: %d, Written: %d", time.Since(start).Round(time.Millisecond), res.Extracted, res.Written)
	return res, nil
}
