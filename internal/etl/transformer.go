package etl

import (
	"github.com/BartekS5/posts-etl/pkg/models"
)

type Transformer struct {
	Validator *Validator
}

func NewTransformer() *Transformer {
	return &Transformer{Validator: NewValidator()}
}

// Transform projects userId, title and body out of every raw post,
// keeping order and length. A nil input yields a nil output; an empty
// but non-nil input yields an empty, non-nil output. Null attributes are
// written as zero values.
func (t *Transformer) Transform(raw []models.RawPost) ([]models.Post, error) {
	if raw == nil {
		return nil, nil
	}

	out := make([]models.Post, 0, len(raw))
	for i, r := range raw {
		if err := t.Validator.ValidateRawPost(i, r); err != nil {
			return nil, err
		}
		out = append(out, r.Project())
	}
	return out, nil
}
