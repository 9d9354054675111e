package models

// WordResult is one (word, sense) row produced by a lookup.
type WordResult struct {
	Word        string       `json:"word"`
	POS         PartOfSpeech `json:"pos"`
	Definitions []string     `json:"definitions"`
	Examples    []string     `json:"examples"`
	Synonyms    []string     `json:"synonyms"`
	Antonyms    []string     `json:"antonyms"`
	MatchScore  int          `json:"match_score"`
}

// LookupResponse is the response for a lookup request.
type LookupResponse struct {
	Results   []WordResult `json:"results"`
	Total     int          `json:"total"`
	Query     string       `json:"query"`
	Language  string       `json:"language"`
	QueryTime int64        `json:"query_time_ms"`
	// Suggestions holds "Did you mean?" words. Only populated when the
	// lookup returned nothing and the language is loaded.
	Suggestions []string `json:"suggestions,omitempty"`
}
