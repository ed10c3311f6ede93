package model

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2024, 3, 1, 9, 30, 0, 0, time.Local)

func newTestDoc(t *testing.T) *Document {
	t.Helper()
	return NewDocument(t0)
}

func mustAdd(t *testing.T, d *Document, p AddParams) {
	t.Helper()
	_, err := d.AddConcept(p, t0)
	require.NoError(t, err)
}

func intPtr(n int) *int               { return &n }
func strPtr(s string) *string         { return &s }
func later(d time.Duration) time.Time { return t0.Add(d) }

func TestFindConceptCaseInsensitive(t *testing.T) {
	d := newTestDoc(t)
	mustAdd(t, d, AddParams{Name: "Photosynthesis", Mastery: 50, Confidence: "medium"})

	key, ok := d.FindConcept("PHOTOSYNTHESIS")
	require.True(t, ok)
	assert.Equal(t, "Photosynthesis", key, "stored casing is returned")

	_, ok = d.FindConcept("Respiration")
	assert.False(t, ok)
}

func TestAddConceptRejectsDuplicateName(t *testing.T) {
	d := newTestDoc(t)
	mustAdd(t, d, AddParams{Name: "Recursion", Mastery: 40, Confidence: "low"})

	_, err := d.AddConcept(AddParams{Name: "recursion", Mastery: 10, Confidence: "low"}, t0)
	assert.ErrorIs(t, err, ErrAlreadyExists)
	assert.Len(t, d.Concepts, 1)
}

func TestMasteryOutOfRangeLeavesDocumentUnchanged(t *testing.T) {
	for _, m := range []int{-1, -50, 101, 150, 1000} {
		d := newTestDoc(t)
		_, err := d.AddConcept(AddParams{Name: "X", Mastery: m, Confidence: "low"}, t0)
		assert.ErrorIs(t, err, ErrValidation, "add mastery %d", m)
		assert.Empty(t, d.Concepts, "add mastery %d created a concept", m)

		mustAdd(t, d, AddParams{Name: "Y", Mastery: 30, Confidence: "low"})
		_, err = d.UpdateConcept(UpdateParams{Name: "Y", Mastery: intPtr(m), Confidence: strPtr("high")}, later(time.Hour))
		assert.ErrorIs(t, err, ErrValidation, "update mastery %d", m)

		c := d.Concepts["Y"]
		assert.Equal(t, 30, c.Mastery)
		assert.Equal(t, ConfidenceLow, c.Confidence)
		assert.True(t, c.LastReviewed.Equal(t0), "update mastery %d touched last_reviewed", m)
	}
}

func TestAddConceptWithRelated(t *testing.T) {
	d := newTestDoc(t)
	mustAdd(t, d, AddParams{Name: "Loops", Mastery: 90, Confidence: "high"})

	ch, err := d.AddConcept(AddParams{
		Name: "Recursion", Mastery: 40, Confidence: "low",
		Related: []string{" loops ", "Stack", "", "LOOPS"},
	}, t0)
	require.NoError(t, err)
	assert.Equal(t, []string{"loops", "Stack"}, d.Concepts["Recursion"].RelatedConcepts)
	assert.Len(t, ch.Warnings, 1, "only 'Stack' is untracked")
}

func TestUpdateConcept(t *testing.T) {
	d := newTestDoc(t)
	mustAdd(t, d, AddParams{Name: "Graphs", Mastery: 20, Confidence: "low"})

	ch, err := d.UpdateConcept(UpdateParams{Name: "graphs", Mastery: intPtr(65)}, later(time.Hour))
	require.NoError(t, err)
	assert.False(t, ch.NoOp)
	assert.Equal(t, "Graphs", ch.Concept)

	c := d.Concepts["Graphs"]
	assert.Equal(t, 65, c.Mastery)
	assert.Equal(t, ConfidenceLow, c.Confidence)
	assert.True(t, c.LastReviewed.Equal(later(time.Hour)))

	ch, err = d.UpdateConcept(UpdateParams{Name: "Graphs"}, later(2*time.Hour))
	require.NoError(t, err)
	assert.True(t, ch.NoOp)
	assert.True(t, c.LastReviewed.Equal(later(time.Hour)), "no-op update must not touch the concept")

	_, err = d.UpdateConcept(UpdateParams{Name: "Graphs", Confidence: strPtr("very")}, t0)
	assert.ErrorIs(t, err, ErrValidation)
	_, err = d.UpdateConcept(UpdateParams{Name: "Trees", Mastery: intPtr(1)}, t0)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDuplicateStruggleIsNoOp(t *testing.T) {
	d := newTestDoc(t)
	mustAdd(t, d, AddParams{Name: "Pointers", Mastery: 30, Confidence: "low"})

	ch, err := d.LogStruggle("pointers", "double indirection", later(time.Hour))
	require.NoError(t, err)
	require.False(t, ch.NoOp)

	ch, err = d.LogStruggle("Pointers", "double indirection", later(2*time.Hour))
	require.NoError(t, err)
	assert.True(t, ch.NoOp)

	c := d.Concepts["Pointers"]
	assert.Len(t, c.Struggles, 1)
	assert.True(t, c.LastReviewed.Equal(later(time.Hour)), "no-op must not refresh last_reviewed")
}

func TestNoteTextIsTrimmed(t *testing.T) {
	d := newTestDoc(t)
	mustAdd(t, d, AddParams{Name: "Pointers", Mastery: 30, Confidence: "low"})

	_, err := d.LogStruggle("Pointers", "  nil dereference ", t0)
	require.NoError(t, err)
	assert.Equal(t, []string{"nil dereference"}, d.Concepts["Pointers"].Struggles)

	ch, err := d.LogStruggle("Pointers", "nil dereference", t0)
	require.NoError(t, err)
	assert.True(t, ch.NoOp, "surrounding whitespace does not make a new struggle")

	// The session-end path hands over the untrimmed description.
	r := d.ApplySession(SessionBatch{Struggles: []string{"Pointers: nil dereference"}}, t0)
	require.Empty(t, r.Errors)
	assert.Zero(t, r.Applied())
	assert.Len(t, d.Concepts["Pointers"].Struggles, 1)
}

func TestLogBreakthrough(t *testing.T) {
	d := newTestDoc(t)
	mustAdd(t, d, AddParams{Name: "Closures", Mastery: 50, Confidence: "medium"})

	_, err := d.LogBreakthrough("Closures", "captured variables are shared", t0)
	require.NoError(t, err)

	_, err = d.LogBreakthrough("Closures", "  ", t0)
	assert.ErrorIs(t, err, ErrValidation)
	_, err = d.LogBreakthrough("Monads", "x", t0)
	assert.ErrorIs(t, err, ErrNotFound)

	assert.Len(t, d.Concepts["Closures"].Breakthroughs, 1)
}

func TestLinkUntrackedConcept(t *testing.T) {
	d := newTestDoc(t)
	mustAdd(t, d, AddParams{Name: "Recursion", Mastery: 40, Confidence: "low"})

	ch, err := d.Link("Recursion", "Base Case", later(time.Minute))
	require.NoError(t, err)
	assert.Len(t, ch.Warnings, 1)

	_, related, err := d.Related("recursion")
	require.NoError(t, err)
	require.Len(t, related, 1)
	assert.Equal(t, "Base Case", related[0].Name)
	assert.False(t, related[0].Tracked)
}

func TestLinkUsesCanonicalCasingAndDedups(t *testing.T) {
	d := newTestDoc(t)
	mustAdd(t, d, AddParams{Name: "Recursion", Mastery: 40, Confidence: "low"})
	mustAdd(t, d, AddParams{Name: "Base Case", Mastery: 55, Confidence: "medium"})

	_, err := d.Link("Recursion", "base case", t0)
	require.NoError(t, err)

	ch, err := d.Link("Recursion", "BASE CASE", t0)
	require.NoError(t, err)
	assert.True(t, ch.NoOp)
	assert.Equal(t, []string{"Base Case"}, d.Concepts["Recursion"].RelatedConcepts)

	_, related, _ := d.Related("Recursion")
	assert.True(t, related[0].Tracked)
	assert.True(t, related[0].Low)
	assert.Equal(t, 55, related[0].Mastery)

	_, err = d.Link("Recursion", "recursion", t0)
	assert.ErrorIs(t, err, ErrValidation, "self-links are rejected")
}

func TestUnlink(t *testing.T) {
	d := newTestDoc(t)
	mustAdd(t, d, AddParams{Name: "Sorting", Mastery: 70, Confidence: "high", Related: []string{"Arrays", "Comparison"}})

	ch, err := d.Unlink("sorting", "ARRAYS", later(time.Hour))
	require.NoError(t, err)
	assert.False(t, ch.NoOp)

	c := d.Concepts["Sorting"]
	assert.Equal(t, []string{"Comparison"}, c.RelatedConcepts)
	assert.True(t, c.LastReviewed.Equal(later(time.Hour)))

	ch, err = d.Unlink("Sorting", "Arrays", t0)
	require.NoError(t, err)
	assert.True(t, ch.NoOp)
}

func TestSortedConceptsAndAverage(t *testing.T) {
	d := newTestDoc(t)
	assert.Zero(t, d.AverageMastery())

	mustAdd(t, d, AddParams{Name: "B", Mastery: 50, Confidence: "low"})
	mustAdd(t, d, AddParams{Name: "A", Mastery: 50, Confidence: "low"})
	mustAdd(t, d, AddParams{Name: "C", Mastery: 80, Confidence: "high"})

	var names []string
	for _, c := range d.SortedConcepts() {
		names = append(names, c.Name)
	}
	assert.Equal(t, []string{"C", "A", "B"}, names)
	assert.Equal(t, 60.0, d.AverageMastery())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Document)
		ok     bool
	}{
		{"fresh", func(*Document) {}, true},
		{"missing created", func(d *Document) { d.Metadata.Created = Timestamp{} }, false},
		{"missing last_updated", func(d *Document) { d.Metadata.LastUpdated = Timestamp{} }, false},
		{"unparsed created kept", func(d *Document) {
			d.Metadata.Created = Timestamp{}
			d.Metadata.Extra = map[string]json.RawMessage{"created": json.RawMessage(`""`)}
		}, true},
		{"nil concepts", func(d *Document) { d.Concepts = nil }, false},
		{"nil sessions", func(d *Document) { d.Sessions = nil }, false},
		{"nil misconceptions", func(d *Document) { d.Misconceptions = nil }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := newTestDoc(t)
			tt.mutate(d)
			err := d.Validate()
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, ErrValidation)
			}
		})
	}
}

func TestTimestampParsing(t *testing.T) {
	for _, s := range []string{
		"2024-03-01T09:30:00.123456",
		"2024-03-01T09:30:00",
		"2024-03-01",
	} {
		ts, err := ParseTimestamp(s)
		if assert.NoError(t, err, s) {
			assert.Equal(t, "2024-03-01", ts.Date(), s)
		}
	}
	_, err := ParseTimestamp("2024-03-01T09:30:00Z")
	assert.NoError(t, err)

	_, err = ParseTimestamp("yesterday")
	assert.Error(t, err)
	_, err = ParseTimestamp("")
	assert.Error(t, err)
	assert.Equal(t, "never", Timestamp{}.Date())
}
