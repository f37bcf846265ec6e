package main

import (
	"flag"
	"fmt"
	"math"
	"os"

	"model-asset-preview/internal/anim"
	"model-asset-preview/internal/geo"
	"model-asset-preview/internal/mathutil"
	"model-asset-preview/internal/skeleton"
)

func main() {
	animPath := flag.String("anim", "", "Also list the animations in this file")
	scale := flag.Float64("scale", 1.5, "Field of view scale for the fit estimate")
	flag.Parse()
	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: inspect [-anim file] geometry.json")
		os.Exit(2)
	}

	path := flag.Arg(0)
	raw, err := os.ReadFile(path)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
	geos, err := geo.Parse(raw)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Geometries: %d\n", len(geos))
	for gi := range geos {
		inspect(&geos[gi], *scale)
	}

	if *animPath != "" {
		set, err := anim.Load(*animPath)
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Animations: %d\n", len(set))
		for _, name := range set.Names() {
			a := set[name]
			fmt.Printf("  %s: length=%.2fs loop=%v hold=%v bones=%d\n", name, a.Length, a.Loop, a.Hold, len(a.Bones))
		}
	}
}

func inspect(g *geo.Geometry, scale float64) {
	d := g.Description
	fmt.Printf("%s: texture %dx%d, bones=%d\n", d.Identifier, d.TextureWidth, d.TextureHeight, len(g.Bones))

	parts := geo.Build(g)
	quads := skeleton.ApplyTransforms(parts, skeleton.BuildWorldMatrices(g, nil))

	perBone := make([]int, len(g.Bones))
	for _, p := range parts {
		perBone[p.Bone] += len(p.Quads)
	}
	for i, b := range g.Bones {
		parent := b.Parent
		if parent == "" {
			parent = "-"
		}
		fmt.Printf("  Bone[%d] %s: parent=%s, pivot=(%.2f, %.2f, %.2f), rot=(%.1f, %.1f, %.1f), cubes=%d, quads=%d\n",
			i, b.Name, parent, b.Pivot[0], b.Pivot[1], b.Pivot[2],
			b.Rotation[0], b.Rotation[1], b.Rotation[2], len(b.Cubes), perBone[i])
	}

	box := mathutil.EmptyBox()
	areaByDir := map[geo.Direction]float64{}
	for _, q := range quads {
		for _, p := range q.Pos {
			box = box.Expand(p)
		}
		// Rotated cubes make the quad a parallelogram; the cross product
		// of two edges is its area.
		areaByDir[q.Dir] += q.Pos[1].Sub(q.Pos[0]).Cross(q.Pos[3].Sub(q.Pos[0])).Len()
	}
	if box.IsEmpty() {
		fmt.Println("  (no faces)")
		return
	}

	size := box.Size()
	fmt.Printf("  BBox: X[%.2f, %.2f] Y[%.2f, %.2f] Z[%.2f, %.2f]\n",
		box.Min[0], box.Max[0], box.Min[1], box.Max[1], box.Min[2], box.Max[2])
	fmt.Printf("  Size: %.2f x %.2f x %.2f\n", size[0], size[1], size[2])

	fmt.Println("  --- Surface area by direction ---")
	for _, dir := range geo.Directions {
		fmt.Printf("  %-5s: %.1f sq units\n", dir, areaByDir[dir])
	}

	s := box.BoundingSphere()
	dist := s.Radius / math.Tan(70*math.Pi/180*scale/2)
	fmt.Printf("  Sphere: center=(%.2f, %.2f, %.2f) r=%.2f, camera distance at scale %.2f: %.2f\n",
		s.Center[0], s.Center[1], s.Center[2], s.Radius, scale, dist)
}
