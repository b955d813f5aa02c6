package etl

import (
	"github.com/BartekS5/posts-etl/pkg/models"
)

type Validator struct{}

func NewValidator() *Validator {
	return &Validator{}
}

// ValidateRawPost checks that the attributes projected by the transform
// step are present. A key set to null counts as present; only a key the
// object does not carry at all is missing. index is the position of the
// post in its batch.
func (v *Validator) ValidateRawPost(index int, post models.RawPost) error {
	// Checked in output column order, so the first missing column is reported.
	for _, field := range models.CSVHeader() {
		if !post.Has(field) {
			return &MissingFieldError{Index: index, Field: field}
		}
	}
	return nil
}
