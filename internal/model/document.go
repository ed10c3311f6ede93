// Package model defines the student model document and the operations that mutate it.
package model

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"
)

// SchemaVersion is written into every new document. It is not used for migration.
const SchemaVersion = "1.0"

// LowMasteryThreshold is the mastery below which a related concept is flagged.
const LowMasteryThreshold = 60

// Document is the persisted root object.
type Document struct {
	SchemaVersion  string              `json:"schema_version" yaml:"schema_version"`
	Metadata       Metadata            `json:"metadata" yaml:"metadata"`
	Concepts       map[string]*Concept `json:"concepts" yaml:"concepts"`
	Misconceptions []*Misconception    `json:"misconceptions" yaml:"misconceptions"`
	// Sessions is reserved; entries are carried through untouched.
	Sessions []json.RawMessage `json:"sessions" yaml:"-"`

	Extra  map[string]json.RawMessage `json:"-" yaml:"-"`
	Opaque Opaque                     `json:"-" yaml:"-"`
}

// Metadata describes the document itself.
type Metadata struct {
	Created        Timestamp `json:"created" yaml:"created"`
	LastUpdated    Timestamp `json:"last_updated" yaml:"last_updated"`
	StudentProfile string    `json:"student_profile" yaml:"student_profile"`

	Extra map[string]json.RawMessage `json:"-" yaml:"-"`
}

// Concept is a tracked unit of knowledge.
type Concept struct {
	Mastery          int        `json:"mastery" yaml:"mastery"`
	Confidence       Confidence `json:"confidence" yaml:"confidence"`
	FirstEncountered Timestamp  `json:"first_encountered" yaml:"first_encountered"`
	LastReviewed     Timestamp  `json:"last_reviewed" yaml:"last_reviewed"`
	Struggles        []string   `json:"struggles" yaml:"struggles"`
	Breakthroughs    []string   `json:"breakthroughs" yaml:"breakthroughs"`
	RelatedConcepts  []string   `json:"related_concepts" yaml:"related_concepts"`

	Extra map[string]json.RawMessage `json:"-" yaml:"-"`
}

// Misconception is an incorrect belief recorded against a concept.
type Misconception struct {
	ID             string    `json:"id,omitempty" yaml:"id,omitempty"`
	Concept        string    `json:"concept" yaml:"concept"`
	Belief         string    `json:"belief" yaml:"belief"`
	Correction     string    `json:"correction" yaml:"correction"`
	DateIdentified Timestamp `json:"date_identified" yaml:"date_identified"`
	Resolved       bool      `json:"resolved" yaml:"resolved"`
	DateResolved   Timestamp `json:"date_resolved" yaml:"date_resolved"`

	Extra map[string]json.RawMessage `json:"-" yaml:"-"`
}

// NamedConcept pairs a concept with its stored key.
type NamedConcept struct {
	Name string `json:"name"`
	*Concept
}

// NewDocument returns an empty document stamped with now.
func NewDocument(now time.Time) *Document {
	return &Document{
		SchemaVersion: SchemaVersion,
		Metadata: Metadata{
			Created:     At(now),
			LastUpdated: At(now),
		},
		Concepts:       map[string]*Concept{},
		Misconceptions: []*Misconception{},
		Sessions:       []json.RawMessage{},
	}
}

// NewConcept returns a concept with every list initialized.
func NewConcept(mastery int, confidence Confidence, now time.Time) *Concept {
	return &Concept{
		Mastery:          mastery,
		Confidence:       confidence,
		FirstEncountered: At(now),
		LastReviewed:     At(now),
		Struggles:        []string{},
		Breakthroughs:    []string{},
		RelatedConcepts:  []string{},
	}
}

// Validate checks that the required members are present. A metadata date
// kept verbatim because it did not parse still counts as present. Nested
// concept and misconception shapes are not inspected.
func (d *Document) Validate() error {
	if d == nil {
		return fmt.Errorf("%w: document is nil", ErrValidation)
	}
	if d.Metadata.Created.IsZero() && !d.Metadata.kept("created") {
		return fmt.Errorf("%w: metadata.created is missing", ErrValidation)
	}
	if d.Metadata.LastUpdated.IsZero() && !d.Metadata.kept("last_updated") {
		return fmt.Errorf("%w: metadata.last_updated is missing", ErrValidation)
	}
	if d.Concepts == nil {
		return fmt.Errorf("%w: concepts is missing", ErrValidation)
	}
	if d.Sessions == nil {
		return fmt.Errorf("%w: sessions is missing", ErrValidation)
	}
	return nil
}

// Normalize fills absent optional fields with their defaults so later
// lookups never see nil lists. It does not create required fields.
func (d *Document) Normalize() {
	if _, kept := d.Extra["schema_version"]; d.SchemaVersion == "" && !kept {
		d.SchemaVersion = SchemaVersion
	}
	if d.Misconceptions == nil {
		d.Misconceptions = []*Misconception{}
	}
	for name, c := range d.Concepts {
		if c == nil {
			c = &Concept{}
			d.Concepts[name] = c
		}
		if c.Struggles == nil {
			c.Struggles = []string{}
		}
		if c.Breakthroughs == nil {
			c.Breakthroughs = []string{}
		}
		if c.RelatedConcepts == nil {
			c.RelatedConcepts = []string{}
		}
	}
	kept := d.Misconceptions[:0]
	for _, m := range d.Misconceptions {
		if m != nil {
			kept = append(kept, m)
		}
	}
	d.Misconceptions = kept
}

func (m Metadata) kept(key string) bool {
	_, ok := m.Extra[key]
	return ok
}

// touch refreshes last_reviewed. Members written by a mutation replace any
// value kept verbatim from disk.
func (c *Concept) touch(now time.Time, keys ...string) {
	c.LastReviewed = At(now)
	delete(c.Extra, "last_reviewed")
	for _, k := range keys {
		delete(c.Extra, k)
	}
}

// FindConcept resolves name case-insensitively and returns the stored key.
func (d *Document) FindConcept(name string) (string, bool) {
	if _, ok := d.Concepts[name]; ok {
		return name, true
	}
	for key := range d.Concepts {
		if strings.EqualFold(key, name) {
			return key, true
		}
	}
	return "", false
}

// Concept returns the concept stored under a case-insensitive name.
func (d *Document) Concept(name string) (string, *Concept, error) {
	key, ok := d.FindConcept(name)
	if !ok {
		return "", nil, fmt.Errorf("%w: concept %q", ErrNotFound, name)
	}
	return key, d.Concepts[key], nil
}

// SortedConcepts lists concepts by mastery descending, then name.
func (d *Document) SortedConcepts() []NamedConcept {
	out := make([]NamedConcept, 0, len(d.Concepts))
	for name, c := range d.Concepts {
		out = append(out, NamedConcept{Name: name, Concept: c})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Mastery != out[j].Mastery {
			return out[i].Mastery > out[j].Mastery
		}
		return out[i].Name < out[j].Name
	})
	return out
}

// AverageMastery returns the mean mastery, or 0 with no concepts.
func (d *Document) AverageMastery() float64 {
	if len(d.Concepts) == 0 {
		return 0
	}
	total := 0
	for _, c := range d.Concepts {
		total += c.Mastery
	}
	return float64(total) / float64(len(d.Concepts))
}
