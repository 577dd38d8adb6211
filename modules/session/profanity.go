package session

import goaway "github.com/TwiN/go-away"

// WordFilter is the default ProfanityChecker backed by go-away.
type WordFilter struct {
	detector *goaway.ProfanityDetector
}

// NewWordFilter creates a filter with the default dictionaries.
func NewWordFilter() *WordFilter {
	return &WordFilter{detector: goaway.NewProfanityDetector()}
}

// IsProfane reports whether text contains profanity.
func (f *WordFilter) IsProfane(text string) bool {
	return f.detector.IsProfane(text)
}
