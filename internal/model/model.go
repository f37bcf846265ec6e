// Package model turns parsed geometry, a texture and optional animations into
// a posable object: world-space faces, bounds and an animation tick.
package model

import (
	"fmt"
	"image"
	"time"

	"model-asset-preview/internal/anim"
	"model-asset-preview/internal/geo"
	"model-asset-preview/internal/mathutil"
	"model-asset-preview/internal/skeleton"
	"model-asset-preview/internal/texture"
)

// maxTickStep caps the time one Tick may advance, so a model resumed after
// a long idle period does not jump.
const maxTickStep = 250 * time.Millisecond

// Model is a textured, posable geometry. It is not safe for concurrent use.
type Model struct {
	geo     *geo.Geometry
	parts   []geo.Part
	texture *image.NRGBA

	player   *anim.Player
	anims    anim.Set
	clock    func() time.Time
	lastTick time.Time

	// Position is the object translation applied after rotation.
	Position mathutil.Vec3
	rotation mathutil.Mat3

	posed []geo.Quad // bone-posed quads, nil when stale
}

// Option configures a Model.
type Option func(*Model)

// WithAnimations makes the animations in set playable.
func WithAnimations(set anim.Set) Option {
	return func(m *Model) { m.anims = set }
}

// WithClock replaces time.Now for animation timing.
func WithClock(clock func() time.Time) Option {
	return func(m *Model) { m.clock = clock }
}

// New builds a model from geometry and an already decoded texture. A nil
// texture renders faces in a neutral color.
func New(g *geo.Geometry, tex *image.NRGBA, opts ...Option) *Model {
	m := &Model{
		geo:      g,
		parts:    geo.Build(g),
		texture:  tex,
		clock:    time.Now,
		rotation: mathutil.Mat3Identity(),
	}
	for _, o := range opts {
		o(m)
	}
	m.player = anim.NewPlayer(m.anims)
	return m
}

// Load builds a model whose texture is read through res.
func Load(g *geo.Geometry, texturePath string, res texture.Resolver, opts ...Option) (*Model, error) {
	var tex *image.NRGBA
	if texturePath != "" {
		img, err := res.Resolve(texturePath)
		if err != nil {
			return nil, fmt.Errorf("model: texture %s: %w", texturePath, err)
		}
		tex = img
	}
	return New(g, tex, opts...), nil
}

// Geometry returns the source geometry.
func (m *Model) Geometry() *geo.Geometry { return m.geo }

// Texture returns the model texture, possibly nil.
func (m *Model) Texture() *image.NRGBA { return m.texture }

// Rotation returns the object orientation.
func (m *Model) Rotation() mathutil.Mat3 { return m.rotation }

// SetRotation sets the orientation from Euler angles in radians, XYZ order.
func (m *Model) SetRotation(x, y, z float64) {
	m.rotation = mathutil.EulerXYZ(x, y, z)
}

// RotateY turns the object about its own Y axis.
func (m *Model) RotateY(angle float64) {
	m.rotation = mathutil.Mat3Mul(m.rotation, mathutil.RotY(angle))
}

// Faces returns the current quads in world space.
func (m *Model) Faces() []geo.Quad {
	posed := m.posedQuads()
	out := make([]geo.Quad, len(posed))
	xf := mathutil.FromMat3Translation(m.rotation, m.Position)
	for i, q := range posed {
		for k := range q.Pos {
			q.Pos[k] = xf.MulPoint(q.Pos[k])
		}
		out[i] = q
	}
	return out
}

// BoundingBox returns the world-space box around every face corner.
func (m *Model) BoundingBox() mathutil.Box3 {
	box := mathutil.EmptyBox()
	for _, q := range m.Faces() {
		for _, p := range q.Pos {
			box = box.Expand(p)
		}
	}
	return box
}

func (m *Model) posedQuads() []geo.Quad {
	if m.posed == nil {
		worlds := skeleton.BuildWorldMatrices(m.geo, m.player.Poses(m.geo))
		m.posed = skeleton.ApplyTransforms(m.parts, worlds)
	}
	return m.posed
}

// Animations lists the playable animation names.
func (m *Model) Animations() []string {
	return m.anims.Names()
}

// Play starts the named animation.
func (m *Model) Play(name string) error {
	if err := m.player.Play(name); err != nil {
		return err
	}
	m.lastTick = m.clock()
	m.posed = nil
	return nil
}

// Stop halts the named animation and returns to the rest pose.
func (m *Model) Stop(name string) {
	m.player.Stop(name)
	m.posed = nil
}

// ShouldTick reports whether the model needs further animation frames.
func (m *Model) ShouldTick() bool {
	return m.player.Playing()
}

// Tick advances animations by the wall time since the previous tick.
func (m *Model) Tick() {
	now := m.clock()
	dt := now.Sub(m.lastTick)
	if dt > maxTickStep {
		dt = maxTickStep
	}
	if dt < 0 {
		dt = 0
	}
	m.lastTick = now
	m.player.Advance(dt.Seconds())
	m.posed = nil
}
