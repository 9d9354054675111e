package models

import (
	"testing"
)

func TestLookupQuery_Normalize(t *testing.T) {
	tests := []struct {
		name      string
		query     *LookupQuery
		wantErr   bool
		wantLimit int
		wantQuery string
	}{
		{"missing language", &LookupQuery{Query: "happy"}, true, 0, "happy"},
		{"valid query", &LookupQuery{Query: "happy", Language: "en", Limit: 5}, false, 5, "happy"},
		{"sets default limit", &LookupQuery{Query: "x", Language: "en"}, false, 10, "x"},
		{"negative limit uses default", &LookupQuery{Query: "x", Language: "en", Limit: -3}, false, 10, "x"},
		{"caps limit at max", &LookupQuery{Query: "x", Language: "en", Limit: 500}, false, 100, "x"},
		{"trims whitespace", &LookupQuery{Query: "  glad ", Language: " en ", Limit: 1}, false, 1, "glad"},
		{"empty query is allowed", &LookupQuery{Query: "", Language: "en"}, false, 10, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.query.Normalize(10, 100)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Normalize() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if tt.query.Limit != tt.wantLimit {
				t.Errorf("Limit = %d, want %d", tt.query.Limit, tt.wantLimit)
			}
			if tt.query.Query != tt.wantQuery {
				t.Errorf("Query = %q, want %q", tt.query.Query, tt.wantQuery)
			}
		})
	}
}
