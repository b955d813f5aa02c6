// Package models holds the records that flow through the posts pipeline
// and the run metadata kept by the scheduler.
package models

import (
	"encoding/json"
	"strconv"
)

// RawPost is one element of the upstream /posts payload. A nil field is
// either absent or JSON null; Has tells the two apart.
type RawPost struct {
	ID     *int64  `json:"id,omitempty"`
	UserID *int64  `json:"userId"`
	Title  *string `json:"title"`
	Body   *string `json:"body"`

	// keys holds every key of the decoded object, null-valued ones included.
	keys map[string]bool
}

func (p *RawPost) UnmarshalJSON(data []byte) error {
	// 1. Decode the values through an alias type so this method is not
	// called again recursively.
	type plain RawPost
	var v plain
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}

	// 2. Decode once more into raw messages, only to learn which keys the
	// object carried. A "title": null leaves Title nil but is still a key.
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}

	*p = RawPost(v)
	p.keys = make(map[string]bool, len(fields))
	for k := range fields {
		p.keys[k] = true
	}
	return nil
}

// Has reports whether the attribute was supplied, even if its value was
// null. Fields set directly on the struct count as supplied.
func (p RawPost) Has(field string) bool {
	switch field {
	case FieldUserID:
		if p.UserID != nil {
			return true
		}
	case FieldTitle:
		if p.Title != nil {
			return true
		}
	case FieldBody:
		if p.Body != nil {
			return true
		}
	}
	return p.keys[field]
}

// Project returns the post as persisted. Null attributes become zero
// values: an empty string, or 0 for userId.
func (p RawPost) Project() Post {
	var post Post
	if p.UserID != nil {
		post.UserID = *p.UserID
	}
	if p.Title != nil {
		post.Title = *p.Title
	}
	if p.Body != nil {
		post.Body = *p.Body
	}
	return post
}

// Post is the projected record persisted by the load step.
type Post struct {
	UserID int64  `json:"userId" bson:"userId"`
	Title  string `json:"title" bson:"title"`
	Body   string `json:"body" bson:"body"`
}

// Field names, in output column order.
const (
	FieldUserID = "userId"
	FieldTitle  = "title"
	FieldBody   = "body"
)

// CSVHeader returns the header row of the output file.
func CSVHeader() []string {
	return []string{FieldUserID, FieldTitle, FieldBody}
}

// CSVRecord returns the post as a row matching CSVHeader.
func (p Post) CSVRecord() []string {
	return []string{strconv.FormatInt(p.UserID, 10), p.Title, p.Body}
}
