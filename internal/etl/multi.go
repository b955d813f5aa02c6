package etl

import (
	"context"

	"github.com/BartekS5/posts-etl/pkg/models"
)

// MultiLoader runs loaders one after another and stops at the first error.
type MultiLoader []Loader

func (m MultiLoader) Load(ctx context.Context, posts []models.Post) error {
	for _, l := range m {
		if err := l.Load(ctx, posts); err != nil {
			return err
		}
	}
	return nil
}
