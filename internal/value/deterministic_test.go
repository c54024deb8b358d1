package value

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshalSortsObjectKeys(t *testing.T) {
	obj := Object{
		"zebra": Number(1),
		"apple": Number(2),
	}

	data, err := Marshal(obj)
	require.NoError(t, err)
	assert.Equal(t, `{"apple":2,"zebra":1}`, string(data))
}

func TestMarshalDeterministic(t *testing.T) {
	obj := Object{
		"b": Array{Number(1), String("x"), Null{}},
		"a": Object{"nested": Bool(true)},
	}

	first, err := Marshal(obj)
	require.NoError(t, err)

	// Same tree always serializes to the same bytes.
	for i := 0; i < 10; i++ {
		again, err := Marshal(obj)
		require.NoError(t, err)
		assert.Equal(t, string(first), string(again))
	}
}

func TestMarshalNull(t *testing.T) {
	data, err := Marshal(Null{})
	require.NoError(t, err)
	assert.Equal(t, "null", string(data))

	data, err = Marshal(nil)
	require.NoError(t, err)
	assert.Equal(t, "null", string(data))
}

func TestMarshalNumbers(t *testing.T) {
	tests := []struct {
		name string
		in   float64
		want string
	}{
		{"integral", 42, "42"},
		{"negative integral", -7, "-7"},
		{"zero", 0, "0"},
		{"fractional", 2.5, "2.5"},
		{"shortest form", 0.1, "0.1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := Marshal(Number(tt.in))
			require.NoError(t, err)
			assert.Equal(t, tt.want, string(data))
		})
	}
}

func TestMarshalNoHTMLEscaping(t *testing.T) {
	data, err := Marshal(String("<a> & </a>"))
	require.NoError(t, err)
	assert.Equal(t, `"<a> & </a>"`, string(data))
}

func TestMarshalPreservesNonNFCStrings(t *testing.T) {
	// Decomposed e + combining acute survives byte-for-byte: the marshal
	// path never rewrites strings.
	decomposed := String("cafe\u0301")

	data, err := Marshal(decomposed)
	require.NoError(t, err)
	assert.Equal(t, "\"cafe\u0301\"", string(data))

	back, err := Unmarshal(data)
	require.NoError(t, err)
	assert.True(t, Equal(decomposed, back))
}

func TestNormalizeNFC(t *testing.T) {
	decomposed := "cafe\u0301"
	composed := "caf\u00e9"

	assert.Equal(t, String(composed), NormalizeNFC(String(decomposed)))

	// Recurses through composites, keys included.
	v := NormalizeNFC(Object{
		decomposed: Array{String(decomposed), Number(1)},
	})
	obj, ok := v.(Object)
	require.True(t, ok)
	assert.Equal(t, Array{String(composed), Number(1)}, obj[composed])

	// Non-string variants pass through untouched.
	assert.Equal(t, Null{}, NormalizeNFC(Null{}))
	assert.Equal(t, Bool(true), NormalizeNFC(Bool(true)))
}

func TestMarshalTime(t *testing.T) {
	ts := time.Date(2024, 3, 1, 12, 30, 0, 0, time.UTC)
	data, err := Marshal(Time(ts))
	require.NoError(t, err)
	assert.Equal(t, `"2024-03-01T12:30:00Z"`, string(data))
}

func TestMarshalUnmarshalRoundTrip(t *testing.T) {
	original := Object{
		"name":  String("Ana"),
		"count": Number(3),
		"flag":  Bool(false),
		"tags":  Array{String("x"), Number(1), Null{}},
		"meta":  Object{"inner": String("v")},
	}

	data, err := Marshal(original)
	require.NoError(t, err)

	back, err := Unmarshal(data)
	require.NoError(t, err)

	assert.True(t, Equal(original, back))
}
