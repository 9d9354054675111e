package models

import (
	"fmt"
	"strings"
)

// LookupQuery is a lookup request as received from a caller.
type LookupQuery struct {
	Query    string `json:"query"`
	Language string `json:"language"`
	Limit    int    `json:"limit,omitempty"`
}

// Normalize trims the query and applies the caller's limit policy:
// a non-positive limit becomes defaultLimit, and limits above maxLimit are capped.
// Returns an error if no language is given.
func (q *LookupQuery) Normalize(defaultLimit, maxLimit int) error {
	q.Query = strings.TrimSpace(q.Query)
	q.Language = strings.TrimSpace(q.Language)
	if q.Language == "" {
		return fmt.Errorf("language cannot be empty")
	}
	if q.Limit <= 0 {
		q.Limit = defaultLimit
	}
	if maxLimit > 0 && q.Limit > maxLimit {
		q.Limit = maxLimit
	}
	return nil
}
