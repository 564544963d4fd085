package router

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInteriorURL(t *testing.T) {
	assert.Equal(t, "/splat.html?id=casa4", InteriorURL("casa4"))
	assert.Equal(t, "/splat.html?id=casa+de+la+esquina%26x", InteriorURL("casa de la esquina&x"))
	assert.Equal(t, "/splat.html", Interior("").String())
	assert.Equal(t, "/", Map().String())
}

func TestParse(t *testing.T) {
	tests := []struct {
		raw  string
		want Route
	}{
		{"/", Map()},
		{"", Map()},
		{"/index.html", Map()},
		{"/splat.html?id=casa3", Interior("casa3")},
		{"http://localhost:5173/splat.html?id=casa%207", Interior("casa 7")},
		{"/splat.html", Interior("")},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, err := Parse(tt.raw)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := Parse("/admin")
	assert.ErrorIs(t, err, ErrUnknownRoute)
}

func TestRoundTrip(t *testing.T) {
	r := Interior("casa/5?")
	got, err := Parse(r.String())
	require.NoError(t, err)
	assert.Equal(t, r, got)
}
