package model

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	// ErrNotFound is returned when a concept or misconception index does not exist.
	ErrNotFound = errors.New("not found")
	// ErrValidation is returned for out-of-range or malformed input.
	ErrValidation = errors.New("invalid")
	// ErrAlreadyExists is returned when adding a concept whose name is taken.
	ErrAlreadyExists = errors.New("already exists")
)

// Confidence is the learner's self-assessment of a concept.
type Confidence string

const (
	ConfidenceLow    Confidence = "low"
	ConfidenceMedium Confidence = "medium"
	ConfidenceHigh   Confidence = "high"
)

// ValidConfidences are the allowed confidence levels.
var ValidConfidences = map[Confidence]bool{
	ConfidenceLow:    true,
	ConfidenceMedium: true,
	ConfidenceHigh:   true,
}

// ParseConfidence validates s as a confidence level.
func ParseConfidence(s string) (Confidence, error) {
	c := Confidence(s)
	if !ValidConfidences[c] {
		return "", fmt.Errorf("%w confidence %q (must be low, medium, or high)", ErrValidation, s)
	}
	return c, nil
}

// ValidateMastery rejects values outside 0-100.
func ValidateMastery(m int) error {
	if m < 0 || m > 100 {
		return fmt.Errorf("%w mastery %d (must be 0-100)", ErrValidation, m)
	}
	return nil
}

// Change describes the outcome of a mutation for display.
// A NoOp change left the document untouched.
type Change struct {
	Concept  string   `json:"concept"`
	Summary  []string `json:"summary,omitempty"`
	Warnings []string `json:"warnings,omitempty"`
	NoOp     bool     `json:"no_op,omitempty"`
}

func noop(concept, msg string) *Change {
	return &Change{Concept: concept, Summary: []string{msg}, NoOp: true}
}

const timestampLayout = "2006-01-02T15:04:05.000000"

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// Timestamp is a local wall-clock time encoded without a zone offset,
// e.g. 2024-03-01T09:30:00.000000. The zero value encodes as null.
type Timestamp struct {
	time.Time
}

// At wraps t.
func At(t time.Time) Timestamp {
	return Timestamp{Time: t}
}

// ParseTimestamp accepts RFC 3339 and zone-less ISO 8601 forms.
func ParseTimestamp(s string) (Timestamp, error) {
	s = strings.TrimSpace(s)
	for _, layout := range timestampLayouts {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return At(t), nil
		}
	}
	return Timestamp{}, fmt.Errorf("%w timestamp %q", ErrValidation, s)
}

// String formats the timestamp, or returns "" when zero.
func (t Timestamp) String() string {
	if t.IsZero() {
		return ""
	}
	return t.Local().Format(timestampLayout)
}

// Date returns the YYYY-MM-DD part, or "never" when zero.
func (t Timestamp) Date() string {
	if t.IsZero() {
		return "never"
	}
	return t.Local().Format("2006-01-02")
}

func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(t.String())
}

func (t *Timestamp) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*t = Timestamp{}
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	parsed, err := ParseTimestamp(s)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

func (t Timestamp) MarshalYAML() (interface{}, error) {
	if t.IsZero() {
		return nil, nil
	}
	return t.String(), nil
}
