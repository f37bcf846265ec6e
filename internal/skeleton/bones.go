package skeleton

import (
	"model-asset-preview/internal/geo"
	"model-asset-preview/internal/mathutil"
)

// Pose is an animation offset for one bone. Rotation is in degrees and
// added to the authored rotation; Scale of zero on an axis means 1.
type Pose struct {
	Rotation mathutil.Vec3
	Position mathutil.Vec3
	Scale    mathutil.Vec3
}

// BuildWorldMatrices computes the world transform for each bone, with
// optional per-bone poses keyed by bone index. Parents are resolved by name
// and may appear in any order; unknown or cyclic parents are treated as root.
func BuildWorldMatrices(g *geo.Geometry, poses map[int]Pose) []mathutil.Mat4 {
	n := len(g.Bones)
	worlds := make([]mathutil.Mat4, n)
	state := make([]uint8, n) // 0 pending, 1 visiting, 2 done

	parents := make([]int, n)
	for i := range g.Bones {
		parents[i] = -1
		if p := g.Bones[i].Parent; p != "" {
			parents[i] = g.BoneIndex(p)
		}
	}

	var resolve func(i int) mathutil.Mat4
	resolve = func(i int) mathutil.Mat4 {
		switch state[i] {
		case 2:
			return worlds[i]
		case 1:
			return mathutil.Mat4Identity()
		}
		state[i] = 1

		local := localMatrix(&g.Bones[i], poses[i])
		if p := parents[i]; p >= 0 && p != i {
			local = mathutil.Mat4Mul(resolve(p), local)
		}

		worlds[i] = local
		state[i] = 2
		return local
	}

	for i := range g.Bones {
		resolve(i)
	}
	return worlds
}

func localMatrix(b *geo.Bone, pose Pose) mathutil.Mat4 {
	rot := mathutil.Vec3(b.Rotation).Add(pose.Rotation)
	lin := geo.Rotation(rot)

	if pose.Scale != (mathutil.Vec3{}) {
		s := pose.Scale
		for k := range s {
			if s[k] == 0 {
				s[k] = 1
			}
		}
		lin = mathutil.Mat3Mul(lin, mathutil.Mat3Diag(s[0], s[1], s[2]))
	}

	m := mathutil.AroundPivot(lin, mathutil.Vec3(b.Pivot))
	if pose.Position != (mathutil.Vec3{}) {
		m = mathutil.Mat4Mul(mathutil.Translate(pose.Position), m)
	}
	return m
}

// ApplyTransforms returns the quads of parts moved into world space by the
// matrix of their owning bone. Parts referencing a missing bone are kept as is.
func ApplyTransforms(parts []geo.Part, worlds []mathutil.Mat4) []geo.Quad {
	total := 0
	for _, p := range parts {
		total += len(p.Quads)
	}
	out := make([]geo.Quad, 0, total)

	for _, p := range parts {
		if p.Bone < 0 || p.Bone >= len(worlds) || worlds[p.Bone].IsIdentity() {
			out = append(out, p.Quads...)
			continue
		}
		w := worlds[p.Bone]
		for _, q := range p.Quads {
			for i := range q.Pos {
				q.Pos[i] = w.MulPoint(q.Pos[i])
			}
			out = append(out, q)
		}
	}
	return out
}
