package lexicon

import "fmt"

// Load operations reported in LoadError.Op.
const (
	OpRead     = "read"
	OpParse    = "parse"
	OpValidate = "validate"
)

// LoadError reports a lexicon source that could not be read or did not
// match the lexicon schema. No partial lexicon accompanies it.
type LoadError struct {
	Source string
	Op     string
	Err    error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("load lexicon %s: %s: %v", e.Source, e.Op, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

func loadErr(source, op string, err error) *LoadError {
	return &LoadError{Source: source, Op: op, Err: err}
}
