package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeDoc(t *testing.T, src string) *Document {
	t.Helper()
	var d Document
	require.NoError(t, json.Unmarshal([]byte(src), &d))
	d.Normalize()
	return &d
}

// encodeGeneric encodes d and decodes it again without any typing.
func encodeGeneric(t *testing.T, d *Document) map[string]interface{} {
	t.Helper()
	b, err := json.Marshal(d)
	require.NoError(t, err)
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(b, &out))
	return out
}

func member(t *testing.T, v interface{}, path ...string) interface{} {
	t.Helper()
	for _, p := range path {
		obj, ok := v.(map[string]interface{})
		require.True(t, ok, "%v is not an object at %q", v, p)
		v, ok = obj[p]
		require.True(t, ok, "missing member %q", p)
	}
	return v
}

const docHead = `"metadata": {"created": "2024-01-01T10:00:00", "last_updated": "2024-01-01T10:00:00"}, "sessions": []`

func TestUnknownMembersSurvive(t *testing.T) {
	d := decodeDoc(t, `{
		"metadata": {"created": "2024-01-01T10:00:00", "last_updated": "2024-01-01T10:00:00", "timezone": "UTC"},
		"concepts": {"Sets": {"mastery": 70, "confidence": "high", "notes": ["review on Friday"]}},
		"misconceptions": [{"concept": "Sets", "belief": "ordered", "correction": "unordered", "resolved": false, "tags": ["exam"]}],
		"sessions": [],
		"goals": {"target": "finals"}
	}`)
	assert.Empty(t, d.Malformed(), "unknown members are not malformed")
	assert.Equal(t, 70, d.Concepts["Sets"].Mastery)

	out := encodeGeneric(t, d)
	assert.Equal(t, "finals", member(t, out, "goals", "target"))
	assert.Equal(t, "UTC", member(t, out, "metadata", "timezone"))
	assert.Equal(t, []interface{}{"review on Friday"}, member(t, out, "concepts", "Sets", "notes"))
	miscs := member(t, out, "misconceptions").([]interface{})
	require.Len(t, miscs, 1)
	assert.Equal(t, []interface{}{"exam"}, member(t, miscs[0], "tags"))
}

func TestWrongTypeMemberIsKept(t *testing.T) {
	d := decodeDoc(t, `{`+docHead+`, "concepts": {
		"Sets": {"mastery": "80", "confidence": "high", "struggles": "not a list"},
		"Maps": {"mastery": 55, "confidence": "low", "related_concepts": null}
	}}`)
	require.Len(t, d.Concepts, 2, "one bad member does not cost the other concepts")
	sets := d.Concepts["Sets"]
	assert.Equal(t, 0, sets.Mastery)
	assert.Equal(t, ConfidenceHigh, sets.Confidence)
	assert.Empty(t, sets.Struggles)
	assert.Equal(t, []string{`concepts["Sets"].mastery`, `concepts["Sets"].struggles`}, d.Malformed())

	out := encodeGeneric(t, d)
	assert.Equal(t, "80", member(t, out, "concepts", "Sets", "mastery"), "written back verbatim")
	assert.Equal(t, "not a list", member(t, out, "concepts", "Sets", "struggles"))
	assert.Equal(t, float64(55), member(t, out, "concepts", "Maps", "mastery"))

	_, err := d.UpdateConcept(UpdateParams{Name: "sets", Mastery: intPtr(0)}, t0)
	require.NoError(t, err)
	_, err = d.LogStruggle("Sets", "subset vs element", t0)
	require.NoError(t, err)
	assert.Empty(t, d.Malformed())

	out = encodeGeneric(t, d)
	assert.Equal(t, float64(0), member(t, out, "concepts", "Sets", "mastery"), "a written value replaces the kept one")
	assert.Equal(t, []interface{}{"subset vs element"}, member(t, out, "concepts", "Sets", "struggles"))
}

func TestNullForNonNullableMemberIsKept(t *testing.T) {
	d := decodeDoc(t, `{`+docHead+`, "concepts": {"Sets": {"mastery": null, "last_reviewed": null}}}`)
	assert.Equal(t, []string{`concepts["Sets"].mastery`}, d.Malformed())

	out := encodeGeneric(t, d)
	assert.Nil(t, member(t, out, "concepts", "Sets", "mastery"))
	assert.Nil(t, member(t, out, "concepts", "Sets", "last_reviewed"))
}

func TestNonObjectEntriesAreOpaque(t *testing.T) {
	d := decodeDoc(t, `{`+docHead+`, "concepts": {"Ghost": 5, "Sets": {"mastery": 40}}, "misconceptions": ["scribble", {"concept": "Sets", "belief": "b", "correction": "c"}]}`)

	_, ok := d.FindConcept("ghost")
	assert.False(t, ok, "non-object concepts are not visible to lookups")
	require.Len(t, d.Misconceptions, 1)
	assert.Equal(t, "Sets", d.Misconceptions[0].Concept)
	assert.Equal(t, []string{`concepts["Ghost"]`, "misconceptions (1 non-object entries)"}, d.Malformed())

	out := encodeGeneric(t, d)
	assert.Equal(t, float64(5), member(t, out, "concepts", "Ghost"))
	miscs := member(t, out, "misconceptions").([]interface{})
	require.Len(t, miscs, 2)
	assert.Contains(t, miscs, "scribble")

	mustAdd(t, d, AddParams{Name: "Ghost", Mastery: 10, Confidence: "low"})
	out = encodeGeneric(t, d)
	assert.Equal(t, float64(10), member(t, out, "concepts", "Ghost", "mastery"), "a new concept replaces the opaque entry")
}

func TestUnparsedMetadataDateStillCounts(t *testing.T) {
	d := decodeDoc(t, `{"metadata": {"created": "", "last_updated": "sometime"}, "concepts": {}, "sessions": []}`)
	require.NoError(t, d.Validate())
	assert.Equal(t, []string{"metadata.created", "metadata.last_updated"}, d.Malformed())

	out := encodeGeneric(t, d)
	assert.Equal(t, "", member(t, out, "metadata", "created"))
	assert.Equal(t, "sometime", member(t, out, "metadata", "last_updated"))
}

func TestWrongTypeTopLevelMembers(t *testing.T) {
	d := decodeDoc(t, `{"metadata": {"created": "2024-01-01", "last_updated": "2024-01-01"}, "concepts": [], "sessions": {}, "schema_version": 2}`)
	require.NoError(t, d.Validate())
	assert.Empty(t, d.Concepts)
	assert.Equal(t, []string{"concepts", "schema_version", "sessions"}, d.Malformed())

	out := encodeGeneric(t, d)
	assert.Equal(t, []interface{}{}, member(t, out, "concepts"))
	assert.Equal(t, map[string]interface{}{}, member(t, out, "sessions"))
	assert.Equal(t, float64(2), member(t, out, "schema_version"))
}
