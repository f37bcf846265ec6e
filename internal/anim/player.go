package anim

import (
	"fmt"
	"math"
	"strings"

	"model-asset-preview/internal/geo"
	"model-asset-preview/internal/mathutil"
	"model-asset-preview/internal/skeleton"
)

// Player advances a set of running animations.
type Player struct {
	set    Set
	active []*clip
}

type clip struct {
	anim *Animation
	time float64
	done bool
}

// NewPlayer returns a player over set. A nil set is valid and never plays.
func NewPlayer(set Set) *Player {
	return &Player{set: set}
}

// Play starts the named animation from the beginning.
func (p *Player) Play(name string) error {
	a, ok := p.set[name]
	if !ok {
		return fmt.Errorf("anim: unknown animation %q", name)
	}
	p.Stop(name)
	p.active = append(p.active, &clip{anim: a})
	return nil
}

// Stop removes the named animation.
func (p *Player) Stop(name string) {
	kept := p.active[:0]
	for _, c := range p.active {
		if c.anim.Name != name {
			kept = append(kept, c)
		}
	}
	p.active = kept
}

// Playing reports whether any animation still needs frames.
func (p *Player) Playing() bool {
	for _, c := range p.active {
		if !c.done {
			return true
		}
	}
	return false
}

// Advance moves every running animation forward by dt seconds. Finished
// one-shot clips are dropped; held clips stay on their last frame.
func (p *Player) Advance(dt float64) {
	kept := p.active[:0]
	for _, c := range p.active {
		if c.done {
			kept = append(kept, c)
			continue
		}
		c.time += dt
		length := c.anim.Length
		switch {
		case length <= 0:
			c.done = true
		case c.anim.Loop:
			c.time = math.Mod(c.time, length)
		case c.time >= length:
			c.time = length
			c.done = true
			if !c.anim.Hold {
				continue
			}
		}
		kept = append(kept, c)
	}
	p.active = kept
}

// Poses samples every active animation and sums the offsets per bone.
func (p *Player) Poses(g *geo.Geometry) map[int]skeleton.Pose {
	if len(p.active) == 0 {
		return nil
	}

	index := make(map[string]int, len(g.Bones))
	for i := range g.Bones {
		index[strings.ToLower(g.Bones[i].Name)] = i
	}

	poses := make(map[int]skeleton.Pose)
	for _, c := range p.active {
		for name, tr := range c.anim.Bones {
			bi, ok := index[name]
			if !ok {
				continue
			}
			pose := poses[bi]
			if v, ok := tr.Rotation.Sample(c.time); ok {
				pose.Rotation = pose.Rotation.Add(v)
			}
			if v, ok := tr.Position.Sample(c.time); ok {
				pose.Position = pose.Position.Add(v)
			}
			if v, ok := tr.Scale.Sample(c.time); ok {
				if pose.Scale == (mathutil.Vec3{}) {
					pose.Scale = v
				} else {
					pose.Scale = pose.Scale.Mul(v)
				}
			}
			poses[bi] = pose
		}
	}
	return poses
}
