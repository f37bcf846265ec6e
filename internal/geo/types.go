package geo

import "model-asset-preview/internal/mathutil"

// Geometry is one Bedrock model: texture metadata plus a bone hierarchy.
type Geometry struct {
	Description Description `json:"description"`
	Bones       []Bone      `json:"bones"`
}

// Description holds the geometry identifier and texture dimensions in pixels.
type Description struct {
	Identifier          string     `json:"identifier"`
	TextureWidth        int        `json:"texture_width"`
	TextureHeight       int        `json:"texture_height"`
	VisibleBoundsWidth  float64    `json:"visible_bounds_width"`
	VisibleBoundsHeight float64    `json:"visible_bounds_height"`
	VisibleBoundsOffset [3]float64 `json:"visible_bounds_offset"`
}

// Bone is a named pivot in the hierarchy. Rotation is Euler degrees.
type Bone struct {
	Name     string     `json:"name"`
	Parent   string     `json:"parent"`
	Pivot    [3]float64 `json:"pivot"`
	Rotation [3]float64 `json:"rotation"`
	Mirror   bool       `json:"mirror"`
	Inflate  float64    `json:"inflate"`
	Cubes    []Cube     `json:"cubes"`
}

// Cube is an axis-aligned box in model space, optionally rotated about Pivot.
// Inflate and Mirror fall back to the owning bone when unset.
type Cube struct {
	Origin   [3]float64  `json:"origin"`
	Size     [3]float64  `json:"size"`
	UV       UV          `json:"uv"`
	Inflate  *float64    `json:"inflate,omitempty"`
	Mirror   *bool       `json:"mirror,omitempty"`
	Pivot    *[3]float64 `json:"pivot,omitempty"`
	Rotation [3]float64  `json:"rotation"`
}

// Direction names a cube face.
type Direction string

const (
	North Direction = "north"
	East  Direction = "east"
	South Direction = "south"
	West  Direction = "west"
	Up    Direction = "up"
	Down  Direction = "down"
)

// Directions lists faces in emission order.
var Directions = [6]Direction{North, East, South, West, Up, Down}

// UV is either a box-UV origin or a per-face mapping.
type UV struct {
	Box   *[2]float64
	Faces map[Direction]FaceUV
}

// FaceUV is a rectangle in texture pixels. Negative sizes flip the face.
type FaceUV struct {
	UV       [2]float64 `json:"uv"`
	Size     [2]float64 `json:"uv_size"`
	Material string     `json:"material_instance,omitempty"`
}

// Quad is one textured cube face. Pos runs top-left, top-right,
// bottom-right, bottom-left as seen from outside the cube; UV is normalized
// to [0,1] texture space with v pointing down.
type Quad struct {
	Dir Direction
	Pos [4]mathutil.Vec3
	UV  [4][2]float64
}

// Part is the geometry a single cube contributes, expressed in model space
// before any bone transform.
type Part struct {
	Bone  int
	Quads []Quad
}
