package model

import (
	"fmt"
	"strings"
	"time"

	"github.com/samber/lo"
)

// AddParams holds parameters for adding a concept.
type AddParams struct {
	Name       string
	Mastery    int
	Confidence string
	Related    []string
}

// UpdateParams holds parameters for updating a concept. Nil fields are left alone.
type UpdateParams struct {
	Name       string
	Mastery    *int
	Confidence *string
}

// RelatedConcept is a resolved view of one related_concepts entry.
type RelatedConcept struct {
	Name         string     `json:"name"`
	Tracked      bool       `json:"tracked"`
	Mastery      int        `json:"mastery,omitempty"`
	Confidence   Confidence `json:"confidence,omitempty"`
	LastReviewed Timestamp  `json:"last_reviewed,omitempty"`
	Low          bool       `json:"low,omitempty"`
}

// AddConcept creates a new concept. Related names are trimmed and
// de-duplicated case-insensitively; untracked ones produce warnings.
func (d *Document) AddConcept(p AddParams, now time.Time) (*Change, error) {
	name := strings.TrimSpace(p.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: concept name is empty", ErrValidation)
	}
	if key, ok := d.FindConcept(name); ok {
		return nil, fmt.Errorf("%w: concept %q", ErrAlreadyExists, key)
	}
	if err := ValidateMastery(p.Mastery); err != nil {
		return nil, err
	}
	conf, err := ParseConfidence(p.Confidence)
	if err != nil {
		return nil, err
	}

	c := NewConcept(p.Mastery, conf, now)
	ch := &Change{
		Concept: name,
		Summary: []string{
			fmt.Sprintf("mastery: %d%%", p.Mastery),
			fmt.Sprintf("confidence: %s", conf),
		},
	}
	for _, rel := range p.Related {
		rel = strings.TrimSpace(rel)
		if rel == "" || containsFold(c.RelatedConcepts, rel) {
			continue
		}
		c.RelatedConcepts = append(c.RelatedConcepts, rel)
		if _, ok := d.FindConcept(rel); !ok && !strings.EqualFold(rel, name) {
			ch.Warnings = append(ch.Warnings, fmt.Sprintf("related concept %q not tracked yet", rel))
		}
	}
	if len(c.RelatedConcepts) > 0 {
		ch.Summary = append(ch.Summary, "related: "+strings.Join(c.RelatedConcepts, ", "))
	}

	d.Concepts[name] = c
	return ch, nil
}

// UpdateConcept changes mastery and/or confidence. All inputs are validated
// before anything is modified.
func (d *Document) UpdateConcept(p UpdateParams, now time.Time) (*Change, error) {
	key, c, err := d.Concept(p.Name)
	if err != nil {
		return nil, err
	}
	if p.Mastery != nil {
		if err := ValidateMastery(*p.Mastery); err != nil {
			return nil, err
		}
	}
	var conf Confidence
	if p.Confidence != nil {
		if conf, err = ParseConfidence(*p.Confidence); err != nil {
			return nil, err
		}
	}

	if p.Mastery == nil && p.Confidence == nil {
		return noop(key, "no changes specified"), nil
	}

	ch := &Change{Concept: key}
	var written []string
	if p.Mastery != nil {
		ch.Summary = append(ch.Summary, fmt.Sprintf("mastery %d%% → %d%%", c.Mastery, *p.Mastery))
		c.Mastery = *p.Mastery
		written = append(written, "mastery")
	}
	if p.Confidence != nil {
		ch.Summary = append(ch.Summary, fmt.Sprintf("confidence %s → %s", displayConfidence(c.Confidence), conf))
		c.Confidence = conf
		written = append(written, "confidence")
	}
	c.touch(now, written...)
	return ch, nil
}

// LogStruggle records a difficulty with a concept. The text is trimmed;
// exact duplicates are a no-op.
func (d *Document) LogStruggle(name, text string, now time.Time) (*Change, error) {
	return d.appendNote(name, text, "struggle", func(c *Concept) *[]string { return &c.Struggles }, now)
}

// LogBreakthrough records an insight about a concept. The text is trimmed;
// exact duplicates are a no-op.
func (d *Document) LogBreakthrough(name, text string, now time.Time) (*Change, error) {
	return d.appendNote(name, text, "breakthrough", func(c *Concept) *[]string { return &c.Breakthroughs }, now)
}

func (d *Document) appendNote(name, text, kind string, field func(*Concept) *[]string, now time.Time) (*Change, error) {
	key, c, err := d.Concept(name)
	if err != nil {
		return nil, err
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, fmt.Errorf("%w: %s text is empty", ErrValidation, kind)
	}
	list := field(c)
	if lo.Contains(*list, text) {
		return noop(key, kind+" already logged"), nil
	}
	*list = append(*list, text)
	c.touch(now, kind+"s")
	return &Change{Concept: key, Summary: []string{fmt.Sprintf("added %s: %q", kind, text)}}, nil
}

// Link adds a directed related/prerequisite edge. The target need not be
// tracked; when it is, its stored casing is used.
func (d *Document) Link(name, related string, now time.Time) (*Change, error) {
	key, c, err := d.Concept(name)
	if err != nil {
		return nil, err
	}
	related = strings.TrimSpace(related)
	if related == "" {
		return nil, fmt.Errorf("%w: related concept name is empty", ErrValidation)
	}

	target := related
	var warnings []string
	if relKey, ok := d.FindConcept(related); ok {
		target = relKey
	} else {
		warnings = append(warnings, fmt.Sprintf("%q not tracked yet; link created anyway", related))
	}
	if strings.EqualFold(target, key) {
		return nil, fmt.Errorf("%w: cannot link %q to itself", ErrValidation, key)
	}
	if containsFold(c.RelatedConcepts, target) {
		return noop(key, "already linked"), nil
	}

	c.RelatedConcepts = append(c.RelatedConcepts, target)
	c.touch(now, "related_concepts")
	return &Change{
		Concept:  key,
		Summary:  []string{fmt.Sprintf("linked %q → %q", key, target)},
		Warnings: warnings,
	}, nil
}

// Unlink removes a related edge, matching case-insensitively.
func (d *Document) Unlink(name, related string, now time.Time) (*Change, error) {
	key, c, err := d.Concept(name)
	if err != nil {
		return nil, err
	}
	idx := -1
	for i, r := range c.RelatedConcepts {
		if strings.EqualFold(r, related) {
			idx = i
			break
		}
	}
	if idx < 0 {
		return noop(key, fmt.Sprintf("no link found between %q and %q", key, related)), nil
	}
	removed := c.RelatedConcepts[idx]
	c.RelatedConcepts = append(c.RelatedConcepts[:idx], c.RelatedConcepts[idx+1:]...)
	c.touch(now, "related_concepts")
	return &Change{Concept: key, Summary: []string{fmt.Sprintf("unlinked %q ✗ %q", key, removed)}}, nil
}

// Related resolves each related_concepts entry of a concept.
func (d *Document) Related(name string) (string, []RelatedConcept, error) {
	key, c, err := d.Concept(name)
	if err != nil {
		return "", nil, err
	}
	out := lo.Map(c.RelatedConcepts, func(rel string, _ int) RelatedConcept {
		rc := RelatedConcept{Name: rel}
		if relKey, ok := d.FindConcept(rel); ok {
			target := d.Concepts[relKey]
			rc.Tracked = true
			rc.Mastery = target.Mastery
			rc.Confidence = target.Confidence
			rc.LastReviewed = target.LastReviewed
			rc.Low = target.Mastery < LowMasteryThreshold
		}
		return rc
	})
	return key, out, nil
}

func containsFold(list []string, s string) bool {
	return lo.ContainsBy(list, func(item string) bool { return strings.EqualFold(item, s) })
}

func displayConfidence(c Confidence) string {
	if c == "" {
		return "unknown"
	}
	return string(c)
}
