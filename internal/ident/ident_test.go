package ident

import (
	"encoding/json"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type hexWrapper struct{ hex string }

func (h hexWrapper) Hex() string { return h.hex }

type stringerID string

func (s stringerID) String() string { return string(s) }

type opaqueRef struct {
	ID any
}

func (opaqueRef) String() string { return objectObject }

func indexed(b []byte) map[string]any {
	m := make(map[string]any, len(b))
	for i, c := range b {
		m[strconv.Itoa(i)] = float64(c)
	}
	return m
}

func TestNormalize_ObjectIDRepresentations(t *testing.T) {
	oid := primitive.NewObjectID()
	want := oid.Hex()
	raw := oid[:]

	data := make([]any, len(raw))
	for i, c := range raw {
		data[i] = float64(c)
	}

	cases := map[string]any{
		"hex string":        want,
		"padded string":     "  " + want + "\n",
		"object id":         oid,
		"object id pointer": &oid,
		"raw bytes":         raw,
		"bson binary":       primitive.Binary{Subtype: 0x00, Data: raw},
		"upper hex wrapper": hexWrapper{hex: upper(want)},
		"stringer":          stringerID(want),
		"id field":          map[string]any{"id": want},
		"_id field":         map[string]any{"_id": oid},
		"extended json":     map[string]any{"$oid": want},
		"nested id":         map[string]any{"id": map[string]any{"_id": want}},
		"indexed bytes":     indexed(raw),
		"buffer wrapper":    map[string]any{"buffer": indexed(raw)},
		"node buffer":       map[string]any{"type": "Buffer", "data": data},
		"object object":     opaqueRef{ID: want},
		"struct with id":    struct{ ID primitive.ObjectID }{ID: oid},
		"typed string map":  map[string]string{"id": want},
		"byte array":        [12]byte(oid),
	}

	for name, v := range cases {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, want, Normalize(v))
			assert.True(t, Equal(v, oid))
		})
	}
}

func TestNormalize_Numbers(t *testing.T) {
	assert.Equal(t, "12", Normalize(12))
	assert.Equal(t, "12", Normalize(int64(12)))
	assert.Equal(t, "12", Normalize(float64(12)))
	assert.Equal(t, "12", Normalize(json.Number("12")))
	assert.Equal(t, "12", Normalize(json.Number("12.0")))
	assert.Equal(t, "12.5", Normalize(12.5))
	assert.True(t, Equal("12", 12))
	assert.False(t, Equal("012", 12))
}

func TestNormalize_Empty(t *testing.T) {
	var p *primitive.ObjectID

	assert.Equal(t, "", Normalize(nil))
	assert.Equal(t, "", Normalize("   "))
	assert.Equal(t, "", Normalize(p))
}

func TestNormalize_UnrecognizedFallsBackToSprint(t *testing.T) {
	assert.Equal(t, "true", Normalize(true))
	assert.Equal(t, "map[foo:bar]", Normalize(map[string]any{"foo": "bar"}))
}

func TestNormalize_IndexedMapRejectsGaps(t *testing.T) {
	m := map[string]any{"0": float64(1), "2": float64(3)}
	assert.NotEqual(t, "0103", Normalize(m))

	overflow := map[string]any{"0": float64(256)}
	assert.Equal(t, "map[0:256]", Normalize(overflow))
}

func TestNormalizeAll_DedupesAndDropsEmpty(t *testing.T) {
	got := NormalizeAll([]any{"a", nil, " a ", map[string]any{"id": "b"}, "", 3})
	assert.Equal(t, []string{"a", "b", "3"}, got)
}

func upper(s string) string {
	b := []byte(s)
	for i, c := range b {
		if c >= 'a' && c <= 'z' {
			b[i] = c - 'a' + 'A'
		}
	}
	return string(b)
}
