package raster

import (
	"math"

	"model-asset-preview/internal/mathutil"
)

// Shading selects the lighting model.
type Shading int

const (
	// ShadingAmbient is a single white ambient light: texels are drawn at
	// Ambient intensity with no directional falloff.
	ShadingAmbient Shading = iota
	// ShadingStudio adds hemisphere, key, rim and specular terms with ACES
	// tone mapping.
	ShadingStudio
)

// ParseShading maps a config name to a Shading. Unknown names are ambient.
func ParseShading(name string) Shading {
	if name == "studio" {
		return ShadingStudio
	}
	return ShadingAmbient
}

// LightConfig is a three-point rig in the Y-up world. Directions point from
// the surface toward the light.
type LightConfig struct {
	Key  mathutil.Vec3
	Rim  mathutil.Vec3
	Half mathutil.Vec3 // Blinn-Phong half vector of Key and the viewer

	Ambient  float64
	Sky      float64 // hemisphere fill, strongest on upward faces
	KeyPower float64
	RimPower float64
	Specular float64
	Shine    float64
	Exposure float64
}

// DefaultLightConfig returns the studio rig, keyed for a camera on the
// (1, 1, 1) diagonal as placed by the viewer's framing.
func DefaultLightConfig() LightConfig {
	key := mathutil.Vec3{0.6, 1, 0.35}.Normalize()
	toViewer := mathutil.Vec3{1, 1, 1}.Normalize()
	return LightConfig{
		Key:      key,
		Rim:      mathutil.Vec3{-0.7, 0.4, -0.6}.Normalize(),
		Half:     key.Add(toViewer).Normalize(),
		Ambient:  0.45,
		Sky:      0.35,
		KeyPower: 0.9,
		RimPower: 0.35,
		Specular: 0.25,
		Shine:    16,
		Exposure: 1.0,
	}
}

// ComputeShade returns the light intensity for a world-space face normal.
// Faces are lit from both sides.
func (lc *LightConfig) ComputeShade(n mathutil.Vec3) float64 {
	sky := lc.Sky * (0.5 + 0.5*n[1])
	if n[1] < 0 {
		sky = lc.Sky * 0.5 * (1 + n[1]*0.5)
	}
	key := math.Abs(n.Dot(lc.Key)) * lc.KeyPower
	rim := math.Abs(n.Dot(lc.Rim)) * lc.RimPower
	hl := 0.0
	if d := n.Dot(lc.Half); d > 0 {
		hl = math.Pow(d, lc.Shine) * lc.Specular
	}
	return lc.Ambient + sky + key + rim + hl
}

// toLinear decodes 8-bit sRGB (gamma 2.2).
var toLinear [256]float64

func init() {
	for i := range toLinear {
		toLinear[i] = math.Pow(float64(i)/255, 2.2)
	}
}

// toneMap lights one sRGB channel by k in linear space, compresses it with
// the ACES filmic curve and re-encodes it to [0, 255].
func toneMap(c uint8, k float64) float64 {
	x := toLinear[c] * k
	x = (x * (2.51*x + 0.03)) / (x*(2.43*x+0.59) + 0.14)
	return math.Pow(x, 1/2.2) * 255
}
