package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type optionalPayload struct {
	Name  Optional[string] `json:"name"`
	Beds  Optional[int]    `json:"beds"`
	Notes Optional[string] `json:"notes"`
}

func TestOptional_UnmarshalThreeStates(t *testing.T) {
	var p optionalPayload
	err := json.Unmarshal([]byte(`{"name":"Loft","notes":null}`), &p)
	require.NoError(t, err)

	name, ok := p.Name.Value()
	assert.True(t, ok)
	assert.Equal(t, "Loft", name)

	assert.True(t, p.Beds.IsAbsent())
	assert.False(t, p.Beds.IsNull())
	assert.False(t, p.Beds.HasValue())

	assert.True(t, p.Notes.IsNull())
	assert.False(t, p.Notes.IsAbsent())
	assert.False(t, p.Notes.HasValue())
}

func TestOptional_EmptyStringIsAValue(t *testing.T) {
	var p optionalPayload
	require.NoError(t, json.Unmarshal([]byte(`{"name":""}`), &p))

	name, ok := p.Name.Value()
	assert.True(t, ok)
	assert.Equal(t, "", name)
}

func TestOptional_TypeMismatch(t *testing.T) {
	var p optionalPayload
	err := json.Unmarshal([]byte(`{"beds":"three"}`), &p)
	assert.Error(t, err)
}

func TestOptional_Constructors(t *testing.T) {
	some := Some(3)
	v, ok := some.Value()
	assert.True(t, ok)
	assert.Equal(t, 3, v)

	null := Null[int]()
	assert.True(t, null.IsNull())

	var absent Optional[int]
	assert.True(t, absent.IsAbsent())

	b, err := json.Marshal(optionalPayload{Name: Some("x"), Beds: Null[int]()})
	require.NoError(t, err)
	assert.JSONEq(t, `{"name":"x","beds":null,"notes":null}`, string(b))
}

func TestNewPage(t *testing.T) {
	page := NewPage([]int{1, 2}, 5, 0, 2)
	assert.Equal(t, 3, page.TotalPages)
	assert.Equal(t, int64(5), page.Total)

	empty := NewPage[int](nil, 0, 0, 20)
	assert.NotNil(t, empty.Items)
	assert.Equal(t, 0, empty.TotalPages)
}
