package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"reflect"
	"sort"

	"github.com/samber/lo"
)

// Decoding is lenient below the required keys. A member that is unknown, or
// whose value does not fit its field, is kept verbatim in the owner's Extra
// map and written back on save. A kept member replaces its field on output
// only while the field still encodes as an empty value.

var documentKeys = map[string]bool{
	"schema_version": true,
	"metadata":       true,
	"concepts":       true,
	"misconceptions": true,
	"sessions":       true,
}

// Opaque holds entries that are not JSON objects. Operations never see them;
// they are written back unchanged.
type Opaque struct {
	Concepts       map[string]json.RawMessage
	Misconceptions []json.RawMessage
}

func (m *Metadata) fields() map[string]interface{} {
	return map[string]interface{}{
		"created":         &m.Created,
		"last_updated":    &m.LastUpdated,
		"student_profile": &m.StudentProfile,
	}
}

func (c *Concept) fields() map[string]interface{} {
	return map[string]interface{}{
		"mastery":           &c.Mastery,
		"confidence":        &c.Confidence,
		"first_encountered": &c.FirstEncountered,
		"last_reviewed":     &c.LastReviewed,
		"struggles":         &c.Struggles,
		"breakthroughs":     &c.Breakthroughs,
		"related_concepts":  &c.RelatedConcepts,
	}
}

func (m *Misconception) fields() map[string]interface{} {
	return map[string]interface{}{
		"id":              &m.ID,
		"concept":         &m.Concept,
		"belief":          &m.Belief,
		"correction":      &m.Correction,
		"date_identified": &m.DateIdentified,
		"resolved":        &m.Resolved,
		"date_resolved":   &m.DateResolved,
	}
}

func (d *Document) UnmarshalJSON(b []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}

	var (
		meta     map[string]json.RawMessage
		concepts map[string]json.RawMessage
		miscs    []json.RawMessage
	)
	*d = Document{}
	d.Extra = decodeMembers(raw, map[string]interface{}{
		"schema_version": &d.SchemaVersion,
		"metadata":       &meta,
		"concepts":       &concepts,
		"misconceptions": &miscs,
		"sessions":       &d.Sessions,
	})

	if meta != nil {
		d.Metadata.Extra = decodeMembers(meta, d.Metadata.fields())
	}
	if _, ok := raw["concepts"]; ok {
		d.Concepts = make(map[string]*Concept, len(concepts))
	}
	if _, ok := raw["sessions"]; ok && d.Sessions == nil {
		d.Sessions = []json.RawMessage{}
	}

	for name, val := range concepts {
		members, ok := object(val)
		if !ok {
			if d.Opaque.Concepts == nil {
				d.Opaque.Concepts = map[string]json.RawMessage{}
			}
			d.Opaque.Concepts[name] = val
			continue
		}
		c := &Concept{}
		c.Extra = decodeMembers(members, c.fields())
		d.Concepts[name] = c
	}
	for _, val := range miscs {
		members, ok := object(val)
		if !ok {
			d.Opaque.Misconceptions = append(d.Opaque.Misconceptions, val)
			continue
		}
		m := &Misconception{}
		m.Extra = decodeMembers(members, m.fields())
		d.Misconceptions = append(d.Misconceptions, m)
	}
	return nil
}

func (d Document) MarshalJSON() ([]byte, error) {
	meta, err := encodeMembers(d.Metadata, d.Metadata.Extra)
	if err != nil {
		return nil, fmt.Errorf("metadata: %w", err)
	}

	concepts := make(map[string]json.RawMessage, len(d.Concepts)+len(d.Opaque.Concepts))
	for name, val := range d.Opaque.Concepts {
		concepts[name] = val
	}
	for name, c := range d.Concepts {
		if c == nil {
			concepts[name] = json.RawMessage("null")
			continue
		}
		b, err := encodeMembers(c, c.Extra)
		if err != nil {
			return nil, fmt.Errorf("concept %q: %w", name, err)
		}
		concepts[name] = b
	}

	miscs := make([]json.RawMessage, 0, len(d.Misconceptions)+len(d.Opaque.Misconceptions))
	for _, m := range d.Misconceptions {
		b, err := encodeMembers(m, m.Extra)
		if err != nil {
			return nil, fmt.Errorf("misconception: %w", err)
		}
		miscs = append(miscs, b)
	}
	miscs = append(miscs, d.Opaque.Misconceptions...)

	return encodeMembers(struct {
		SchemaVersion  string                     `json:"schema_version"`
		Metadata       json.RawMessage            `json:"metadata"`
		Concepts       map[string]json.RawMessage `json:"concepts"`
		Misconceptions []json.RawMessage          `json:"misconceptions"`
		Sessions       []json.RawMessage          `json:"sessions"`
	}{d.SchemaVersion, meta, concepts, miscs, d.Sessions}, d.Extra)
}

// Malformed lists known members that were kept verbatim because their value
// did not fit, e.g. concepts["Sets"].mastery. Entries that are not objects
// are listed too.
func (d *Document) Malformed() []string {
	var out []string
	report := func(prefix string, fields map[string]interface{}, extra map[string]json.RawMessage) {
		for key := range extra {
			if _, ok := fields[key]; ok {
				out = append(out, prefix+key)
			}
		}
	}

	for key := range d.Extra {
		if documentKeys[key] {
			out = append(out, key)
		}
	}
	report("metadata.", d.Metadata.fields(), d.Metadata.Extra)
	for name, c := range d.Concepts {
		if c != nil {
			report(fmt.Sprintf("concepts[%q].", name), c.fields(), c.Extra)
		}
	}
	for name := range d.Opaque.Concepts {
		out = append(out, fmt.Sprintf("concepts[%q]", name))
	}
	for i, m := range d.Misconceptions {
		report(fmt.Sprintf("misconceptions[%d].", i), m.fields(), m.Extra)
	}
	if n := len(d.Opaque.Misconceptions); n > 0 {
		out = append(out, fmt.Sprintf("misconceptions (%d non-object entries)", n))
	}
	sort.Strings(out)
	return out
}

// decodeMembers decodes each member of raw into its destination in fields
// and returns the members that were not consumed.
func decodeMembers(raw map[string]json.RawMessage, fields map[string]interface{}) map[string]json.RawMessage {
	var extra map[string]json.RawMessage
	keep := func(key string, val json.RawMessage) {
		if extra == nil {
			extra = map[string]json.RawMessage{}
		}
		extra[key] = val
	}

	for key, val := range raw {
		dst, ok := fields[key]
		if !ok {
			keep(key, val)
			continue
		}
		if err := json.Unmarshal(val, dst); err != nil {
			reset(dst)
			keep(key, val)
			continue
		}
		// null leaves the field at its zero value; keep it when that zero
		// would not encode back as null.
		if isNull(val) {
			if enc, err := json.Marshal(dst); err == nil && !isNull(enc) {
				keep(key, val)
			}
		}
	}
	return extra
}

// encodeMembers encodes v as an object and merges extra into it.
func encodeMembers(v interface{}, extra map[string]json.RawMessage) (json.RawMessage, error) {
	b, err := marshal(v)
	if err != nil || len(extra) == 0 {
		return b, err
	}

	var out map[string]json.RawMessage
	if err := json.Unmarshal(b, &out); err != nil {
		return nil, err
	}
	for key, val := range extra {
		if cur, ok := out[key]; ok && !isEmpty(cur) {
			continue
		}
		out[key] = val
	}
	return marshal(out)
}

func marshal(v interface{}) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

func object(val json.RawMessage) (map[string]json.RawMessage, bool) {
	var members map[string]json.RawMessage
	if err := json.Unmarshal(val, &members); err != nil || members == nil {
		return nil, false
	}
	return members, true
}

func reset(dst interface{}) {
	v := reflect.ValueOf(dst).Elem()
	v.Set(reflect.Zero(v.Type()))
}

var emptyValues = []string{"null", "0", `""`, "[]", "{}", "false"}

func isEmpty(val json.RawMessage) bool {
	return lo.Contains(emptyValues, string(bytes.TrimSpace(val)))
}

func isNull(val []byte) bool {
	return string(bytes.TrimSpace(val)) == "null"
}
