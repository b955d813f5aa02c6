package etl

import (
	"github.com/BartekS5/posts-etl/pkg/models"
)

func int64p(v int64) *int64 { return &v }
func strp(v string) *string { return &v }

func rawPost(userID int64, title, body string) models.RawPost {
	return models.RawPost{UserID: int64p(userID), Title: strp(title), Body: strp(body)}
}
