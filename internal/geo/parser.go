package geo

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"
)

// Load reads a geometry file and returns the geometry named identifier, or the
// first one when identifier is empty.
func Load(path, identifier string) (*Geometry, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("geo: read %s: %w", path, err)
	}

	geos, err := Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("geo: parse %s: %w", path, err)
	}

	if identifier == "" {
		return &geos[0], nil
	}
	for i := range geos {
		if geos[i].Description.Identifier == identifier {
			return &geos[i], nil
		}
	}
	return nil, fmt.Errorf("geo: %s: no geometry %q", path, identifier)
}

// Parse decodes every geometry in data. It accepts the 1.12+ file layout
// ("minecraft:geometry" array), the legacy layout ("geometry.<name>" keys) and
// a bare geometry object.
func Parse(data []byte) ([]Geometry, error) {
	var top map[string]json.RawMessage
	if err := json.Unmarshal(data, &top); err != nil {
		return nil, err
	}

	var geos []Geometry

	if raw, ok := top["minecraft:geometry"]; ok {
		if err := json.Unmarshal(raw, &geos); err != nil {
			return nil, fmt.Errorf("minecraft:geometry: %w", err)
		}
	} else if _, ok := top["bones"]; ok {
		var g Geometry
		if err := json.Unmarshal(data, &g); err != nil {
			return nil, err
		}
		geos = append(geos, g)
	} else {
		legacy, err := parseLegacy(top)
		if err != nil {
			return nil, err
		}
		geos = legacy
	}

	if len(geos) == 0 {
		return nil, fmt.Errorf("no geometry found")
	}
	for i := range geos {
		geos[i].normalize()
	}
	return geos, nil
}

// legacyGeometry is the pre-1.12 schema keyed by "geometry.<name>[:parent]".
type legacyGeometry struct {
	TextureWidth  int    `json:"texturewidth"`
	TextureHeight int    `json:"textureheight"`
	Bones         []Bone `json:"bones"`
}

func parseLegacy(top map[string]json.RawMessage) ([]Geometry, error) {
	keys := make([]string, 0, len(top))
	for k := range top {
		if strings.HasPrefix(k, "geometry.") {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	geos := make([]Geometry, 0, len(keys))
	for _, k := range keys {
		var lg legacyGeometry
		if err := json.Unmarshal(top[k], &lg); err != nil {
			return nil, fmt.Errorf("%s: %w", k, err)
		}
		id, _, _ := strings.Cut(k, ":")
		geos = append(geos, Geometry{
			Description: Description{
				Identifier:    id,
				TextureWidth:  lg.TextureWidth,
				TextureHeight: lg.TextureHeight,
			},
			Bones: lg.Bones,
		})
	}
	return geos, nil
}

func (g *Geometry) normalize() {
	if g.Description.TextureWidth <= 0 {
		g.Description.TextureWidth = 64
	}
	if g.Description.TextureHeight <= 0 {
		g.Description.TextureHeight = 64
	}
}

// UnmarshalJSON accepts `[u, v]` for box UV or an object of per-face rectangles.
func (uv *UV) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}

	if data[0] == '[' {
		var box [2]float64
		if err := json.Unmarshal(data, &box); err != nil {
			return fmt.Errorf("box uv: %w", err)
		}
		uv.Box = &box
		return nil
	}

	var faces map[Direction]FaceUV
	if err := json.Unmarshal(data, &faces); err != nil {
		return fmt.Errorf("face uv: %w", err)
	}
	uv.Faces = faces
	return nil
}

// MarshalJSON mirrors UnmarshalJSON.
func (uv UV) MarshalJSON() ([]byte, error) {
	if uv.Box != nil {
		return json.Marshal(uv.Box)
	}
	if uv.Faces != nil {
		return json.Marshal(uv.Faces)
	}
	return []byte("null"), nil
}

// BoneIndex returns the index of the named bone, or -1.
func (g *Geometry) BoneIndex(name string) int {
	for i := range g.Bones {
		if strings.EqualFold(g.Bones[i].Name, name) {
			return i
		}
	}
	return -1
}
