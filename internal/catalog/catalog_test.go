package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultTable(t *testing.T) {
	c := Default()
	houses := c.Houses()
	require.Len(t, houses, 7)
	for i, h := range houses {
		assert.Equal(t, i+1, h.Number)
	}
	h, ok := c.Lookup("casa4")
	require.True(t, ok)
	assert.Equal(t, "Patio Malicia", h.Name)
	assert.Equal(t, "/splats/gs_Ventana_0.ply", h.Splat)
}

func TestResolveFallsBack(t *testing.T) {
	c := Default()
	for _, id := range []string{"", "casa99", "nope"} {
		h, fell := c.Resolve(id)
		assert.True(t, fell, id)
		assert.Equal(t, "casa1", h.ID)
		assert.Equal(t, "/splats/gs_Anahuac_0.ply", h.Splat)
	}
	h, fell := c.Resolve("casa6")
	assert.False(t, fell)
	assert.Equal(t, "/splats/gs_Casa6_0.ply", h.Splat)
}

func TestDisplayPlaceholder(t *testing.T) {
	c := Default()
	assert.Equal(t, "Casa Sabino", c.Display("casa7").DisplayTitle())

	p := c.Display("casa12")
	assert.Equal(t, 12, p.Number)
	assert.Equal(t, "Casa 12", p.DisplayTitle())
	assert.NotEmpty(t, p.Attribution)

	assert.Equal(t, "Casa sin nombre", c.Display("quinta").Name)
}

func TestLoadOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
fallback: casa8
houses:
  - id: casa2
    number: 2
    name: Gerencia
    splat: /splats/etica_v2.ply
    attribution: Ayuntamiento de Puebla
  - id: casa8
    number: 8
    name: Casa de los Muñecos
    splat: /splats/munecos.ply
`), 0644))

	c, err := Load(path)
	require.NoError(t, err)
	assert.Len(t, c.Houses(), 8)
	assert.Equal(t, "casa8", c.Fallback)

	h, _ := c.Lookup("casa2")
	assert.Equal(t, "/splats/etica_v2.ply", h.Splat)
	assert.Equal(t, "Ayuntamiento de Puebla", h.Attribution)

	h, fell := c.Resolve("")
	assert.True(t, fell)
	assert.Equal(t, "casa8", h.ID)
}

func TestLoadErrors(t *testing.T) {
	c, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Len(t, c.Houses(), 7)

	dir := t.TempDir()
	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("houses:\n  - number: 3\n"), 0644))
	_, err = Load(bad)
	assert.ErrorContains(t, err, "has no id")

	fb := filepath.Join(dir, "fb.yaml")
	require.NoError(t, os.WriteFile(fb, []byte("fallback: casa42\n"), 0644))
	_, err = Load(fb)
	assert.ErrorContains(t, err, "casa42")
}

func TestMarshalRoundTrip(t *testing.T) {
	data, err := Default().Marshal()
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "c.yaml")
	require.NoError(t, os.WriteFile(path, data, 0644))
	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, Default().Houses(), c.Houses())
}
