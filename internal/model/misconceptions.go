package model

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/samber/lo"
)

// StatusFilter selects misconceptions by resolution state.
type StatusFilter int

const (
	StatusAll StatusFilter = iota
	StatusResolved
	StatusUnresolved
)

// MisconceptionEntry is a misconception with its display index.
// Index is -1 for resolved entries.
type MisconceptionEntry struct {
	*Misconception
	Index int `json:"index"`
}

// MisconceptionGroup holds the entries for one concept.
type MisconceptionGroup struct {
	Concept string               `json:"concept"`
	Entries []MisconceptionEntry `json:"entries"`
}

// AddMisconception records a belief and its correction for a concept. The
// concept record itself is not touched. A belief already recorded for the
// concept (case-insensitive) is a no-op.
func (d *Document) AddMisconception(name, belief, correction string, now time.Time) (*Change, error) {
	key, _, err := d.Concept(name)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(belief) == "" || strings.TrimSpace(correction) == "" {
		return nil, fmt.Errorf("%w: belief and correction are required", ErrValidation)
	}
	dup := lo.ContainsBy(d.Misconceptions, func(m *Misconception) bool {
		return strings.EqualFold(m.Concept, key) && strings.EqualFold(m.Belief, belief)
	})
	if dup {
		return noop(key, "misconception already logged"), nil
	}

	d.Misconceptions = append(d.Misconceptions, &Misconception{
		ID:             ulid.MustNew(ulid.Timestamp(now), ulid.DefaultEntropy()).String(),
		Concept:        key,
		Belief:         belief,
		Correction:     correction,
		DateIdentified: At(now),
	})
	return &Change{
		Concept: key,
		Summary: []string{
			fmt.Sprintf("belief: %q", belief),
			fmt.Sprintf("correction: %q", correction),
		},
	}, nil
}

// UnresolvedMisconceptions returns the unresolved entries for a concept in
// insertion order. Positions in this slice are the display indices.
func (d *Document) UnresolvedMisconceptions(concept string) []*Misconception {
	return lo.Filter(d.Misconceptions, func(m *Misconception, _ int) bool {
		return !m.Resolved && strings.EqualFold(m.Concept, concept)
	})
}

// ResolveMisconception marks the index-th unresolved misconception of a
// concept as resolved.
func (d *Document) ResolveMisconception(name string, index int, now time.Time) (*Misconception, error) {
	key, _, err := d.Concept(name)
	if err != nil {
		return nil, err
	}
	open := d.UnresolvedMisconceptions(key)
	if len(open) == 0 {
		return nil, fmt.Errorf("%w: no unresolved misconceptions for %q", ErrNotFound, key)
	}
	if index < 0 || index >= len(open) {
		return nil, fmt.Errorf("%w: index %d out of range (0-%d)", ErrNotFound, index, len(open)-1)
	}
	m := open[index]
	m.Resolved = true
	m.DateResolved = At(now)
	return m, nil
}

// ResolveMisconceptionByID resolves an unresolved misconception of a concept
// by id or unique id prefix.
func (d *Document) ResolveMisconceptionByID(name, id string, now time.Time) (*Misconception, error) {
	key, _, err := d.Concept(name)
	if err != nil {
		return nil, err
	}
	id = strings.ToUpper(strings.TrimSpace(id))
	matches := lo.Filter(d.UnresolvedMisconceptions(key), func(m *Misconception, _ int) bool {
		return id != "" && strings.HasPrefix(m.ID, id)
	})
	switch len(matches) {
	case 0:
		return nil, fmt.Errorf("%w: no unresolved misconception %q for %q", ErrNotFound, id, key)
	case 1:
		matches[0].Resolved = true
		matches[0].DateResolved = At(now)
		return matches[0], nil
	default:
		return nil, fmt.Errorf("%w: id prefix %q is ambiguous", ErrValidation, id)
	}
}

// ListMisconceptions groups misconceptions by concept, sorted by concept name.
// An empty concept lists all of them. Display indices count unresolved
// entries only and are independent of the status filter.
func (d *Document) ListMisconceptions(concept string, status StatusFilter) (string, []MisconceptionGroup, error) {
	var key string
	if concept != "" {
		k, _, err := d.Concept(concept)
		if err != nil {
			return "", nil, err
		}
		key = k
	}

	byConcept := map[string]*MisconceptionGroup{}
	var order []string
	unresolvedSeen := map[string]int{}
	for _, m := range d.Misconceptions {
		if key != "" && !strings.EqualFold(m.Concept, key) {
			continue
		}
		entry := MisconceptionEntry{Misconception: m, Index: -1}
		if !m.Resolved {
			entry.Index = unresolvedSeen[strings.ToLower(m.Concept)]
			unresolvedSeen[strings.ToLower(m.Concept)]++
		}
		if status == StatusResolved && !m.Resolved || status == StatusUnresolved && m.Resolved {
			continue
		}
		g, ok := byConcept[m.Concept]
		if !ok {
			g = &MisconceptionGroup{Concept: m.Concept}
			byConcept[m.Concept] = g
			order = append(order, m.Concept)
		}
		g.Entries = append(g.Entries, entry)
	}

	sort.Strings(order)
	groups := lo.Map(order, func(name string, _ int) MisconceptionGroup { return *byConcept[name] })
	return key, groups, nil
}
