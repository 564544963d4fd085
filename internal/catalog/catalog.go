// Package catalog is the static table of houses: the splat capture for each house id
// and the display metadata shown on markers and in the interior view.
package catalog

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// FallbackID is the house shown when an interior is opened without a usable id.
const FallbackID = "casa1"

// House describes one visitable courtyard.
type House struct {
	ID          string `yaml:"id"`
	Number      int    `yaml:"number"`
	Name        string `yaml:"name"`
	Splat       string `yaml:"splat"`
	Title       string `yaml:"title,omitempty"`
	Attribution string `yaml:"attribution,omitempty"`
}

// DisplayTitle returns Title, or Name when no title is set.
func (h House) DisplayTitle() string {
	if h.Title != "" {
		return h.Title
	}
	return h.Name
}

// Catalog maps house ids to houses.
type Catalog struct {
	Fallback string
	houses   map[string]House
}

// File is the YAML layout of a catalog override.
type File struct {
	Fallback string  `yaml:"fallback,omitempty"`
	Houses   []House `yaml:"houses"`
}

// Default returns the built-in table of the seven houses of the historic centre.
func Default() *Catalog {
	c := &Catalog{Fallback: FallbackID, houses: make(map[string]House)}
	for _, h := range []House{
		{ID: "casa1", Number: 1, Name: "Casa Presno", Splat: "/splats/gs_Anahuac_0.ply"},
		{ID: "casa2", Number: 2, Name: "Gerencia del Centro Histórico", Splat: "/splats/gs_Etica_0.ply"},
		{ID: "casa3", Number: 3, Name: "Casa Sacristía", Splat: "/splats/gs_Millar_0.ply"},
		{ID: "casa4", Number: 4, Name: "Patio Malicia", Splat: "/splats/gs_Ventana_0.ply"},
		{ID: "casa5", Number: 5, Name: "Patio Anónimo", Splat: "/splats/gs_Casa5_0.ply"},
		{ID: "casa6", Number: 6, Name: "Patio Mucho Bueno", Splat: "/splats/gs_Casa6_0.ply"},
		{ID: "casa7", Number: 7, Name: "Casa Sabino", Splat: "/splats/gs_Casa7_0.ply"},
	} {
		c.houses[h.ID] = h
	}
	return c
}

// Load reads a YAML override and merges it over the defaults: houses with a known id
// replace the built-in entry, new ids are added. A missing file yields the defaults.
func Load(path string) (*Catalog, error) {
	c := Default()
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return c, nil
	}
	if err != nil {
		return c, fmt.Errorf("catalog: %w", err)
	}
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return c, fmt.Errorf("catalog: %s: %w", path, err)
	}
	for i, h := range f.Houses {
		h.ID = strings.TrimSpace(h.ID)
		if h.ID == "" {
			return c, fmt.Errorf("catalog: %s: house %d has no id", path, i)
		}
		c.houses[h.ID] = h
	}
	if f.Fallback != "" {
		if _, ok := c.houses[f.Fallback]; !ok {
			return c, fmt.Errorf("catalog: %s: fallback %q is not a house", path, f.Fallback)
		}
		c.Fallback = f.Fallback
	}
	return c, nil
}

// Lookup returns the house for id.
func (c *Catalog) Lookup(id string) (House, bool) {
	h, ok := c.houses[id]
	return h, ok
}

// Resolve returns the house to open for id. An empty or unknown id resolves to the
// fallback house and usedFallback is true.
func (c *Catalog) Resolve(id string) (h House, usedFallback bool) {
	if h, ok := c.houses[id]; ok && h.Splat != "" {
		return h, false
	}
	return c.houses[c.Fallback], true
}

// Display returns the display metadata for id, with placeholders for unknown ids.
func (c *Catalog) Display(id string) House {
	if h, ok := c.houses[id]; ok {
		return h
	}
	return Placeholder(id)
}

// Placeholder builds display metadata for an id the catalog does not know.
func Placeholder(id string) House {
	h := House{ID: id, Name: "Casa sin nombre", Attribution: "Sin atribución"}
	if n, err := strconv.Atoi(strings.TrimPrefix(id, "casa")); err == nil && strings.HasPrefix(id, "casa") {
		h.Number = n
		h.Name = fmt.Sprintf("Casa %d", n)
	}
	return h
}

// Houses returns every house ordered by number, then id.
func (c *Catalog) Houses() []House {
	out := make([]House, 0, len(c.houses))
	for _, h := range c.houses {
		out = append(out, h)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Number != out[j].Number {
			return out[i].Number < out[j].Number
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// Marshal renders the catalog in the override file format.
func (c *Catalog) Marshal() ([]byte, error) {
	return yaml.Marshal(File{Fallback: c.Fallback, Houses: c.Houses()})
}
