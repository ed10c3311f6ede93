package model

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// SessionBatch holds the raw items of a session-end invocation.
//
//	Updates:       "Concept:mastery:confidence"
//	Struggles:     "Concept:description"
//	Breakthroughs: "Concept:description"
type SessionBatch struct {
	Updates       []string
	Struggles     []string
	Breakthroughs []string
}

// SessionReport collects the per-item outcomes of a batch.
type SessionReport struct {
	Changes []*Change `json:"changes"`
	Errors  []error   `json:"-"`
}

// Applied counts the changes that modified the document.
func (r *SessionReport) Applied() int {
	n := 0
	for _, c := range r.Changes {
		if !c.NoOp {
			n++
		}
	}
	return n
}

// Empty reports whether the batch held no items at all.
func (b SessionBatch) Empty() bool {
	return len(b.Updates) == 0 && len(b.Struggles) == 0 && len(b.Breakthroughs) == 0
}

// ApplySession applies every item it can. Invalid items are reported and
// skipped; they never stop the rest of the batch.
func (d *Document) ApplySession(b SessionBatch, now time.Time) *SessionReport {
	r := &SessionReport{}
	record := func(ch *Change, err error) {
		if err != nil {
			r.Errors = append(r.Errors, err)
			return
		}
		r.Changes = append(r.Changes, ch)
	}

	for _, raw := range b.Updates {
		name, mastery, conf, err := ParseSessionUpdate(raw)
		if err != nil {
			record(nil, err)
			continue
		}
		confStr := string(conf)
		record(d.UpdateConcept(UpdateParams{Name: name, Mastery: &mastery, Confidence: &confStr}, now))
	}
	for _, raw := range b.Struggles {
		name, text, err := ParseSessionNote(raw, "struggle")
		if err != nil {
			record(nil, err)
			continue
		}
		record(d.LogStruggle(name, text, now))
	}
	for _, raw := range b.Breakthroughs {
		name, text, err := ParseSessionNote(raw, "breakthrough")
		if err != nil {
			record(nil, err)
			continue
		}
		record(d.LogBreakthrough(name, text, now))
	}
	return r
}

// ParseSessionUpdate parses "Concept:mastery:confidence".
func ParseSessionUpdate(s string) (string, int, Confidence, error) {
	parts := strings.Split(s, ":")
	if len(parts) != 3 {
		return "", 0, "", fmt.Errorf("%w update format %q (expected 'Concept:mastery:confidence')", ErrValidation, s)
	}
	name := strings.TrimSpace(parts[0])
	mastery, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return "", 0, "", fmt.Errorf("%w mastery value in %q", ErrValidation, s)
	}
	if err := ValidateMastery(mastery); err != nil {
		return "", 0, "", fmt.Errorf("%q: %w", name, err)
	}
	conf, err := ParseConfidence(strings.TrimSpace(parts[2]))
	if err != nil {
		return "", 0, "", fmt.Errorf("%q: %w", name, err)
	}
	return name, mastery, conf, nil
}

// ParseSessionNote parses "Concept:description". The description may contain
// colons and is returned as given.
func ParseSessionNote(s, kind string) (string, string, error) {
	name, text, ok := strings.Cut(s, ":")
	if !ok {
		return "", "", fmt.Errorf("%w %s format %q (expected 'Concept:description')", ErrValidation, kind, s)
	}
	return strings.TrimSpace(name), text, nil
}
