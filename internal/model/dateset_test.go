package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDateSet_Add_Idempotent(t *testing.T) {
	set := DateSet{}
	set = set.Add("2026-08-30")
	set = set.Add("2026-08-30")

	assert.Len(t, set, 1)
	assert.True(t, set.Contains("2026-08-30"))
}

func TestDateSet_Add_DistinctDates(t *testing.T) {
	set := DateSet{"2026-08-01"}
	set = set.Add("2026-08-29")
	set = set.Add("2026-08-30")

	assert.Equal(t, DateSet{"2026-08-01", "2026-08-29", "2026-08-30"}, set)
}

func TestDateSet_Contains(t *testing.T) {
	set := DateSet{"2026-08-29", "2026-08-30"}

	assert.True(t, set.Contains("2026-08-29"))
	assert.False(t, set.Contains("2026-08-28"))
	assert.False(t, DateSet{}.Contains("2026-08-29"))
}

func TestDecodeDateSet(t *testing.T) {
	set := DecodeDateSet(`["2026-08-29","2026-08-30"]`)
	assert.Equal(t, DateSet{"2026-08-29", "2026-08-30"}, set)
}

func TestDecodeDateSet_MalformedBlobIsEmpty(t *testing.T) {
	assert.Empty(t, DecodeDateSet("not json at all"))
	assert.Empty(t, DecodeDateSet(`{"oops": true}`))
	assert.Empty(t, DecodeDateSet(""))
}

func TestDecodeDateSet_DropsDuplicates(t *testing.T) {
	set := DecodeDateSet(`["2026-08-30","2026-08-30","2026-08-29"]`)
	assert.Equal(t, DateSet{"2026-08-30", "2026-08-29"}, set)
}

func TestDateSet_Encode(t *testing.T) {
	blob, err := DateSet{"2026-08-29", "2026-08-30"}.Encode()
	assert.NoError(t, err)
	assert.JSONEq(t, `["2026-08-29","2026-08-30"]`, blob)
}

func TestDateSet_Encode_EmptyAndNil(t *testing.T) {
	blob, err := DateSet{}.Encode()
	assert.NoError(t, err)
	assert.Equal(t, "[]", blob)

	blob, err = DateSet(nil).Encode()
	assert.NoError(t, err)
	assert.Equal(t, "[]", blob)
}

func TestDateSet_EncodeDecodeRoundTrip(t *testing.T) {
	original := DateSet{"2026-08-01", "2026-08-15", "2026-08-30"}
	blob, err := original.Encode()
	assert.NoError(t, err)
	assert.Equal(t, original, DecodeDateSet(blob))
}
