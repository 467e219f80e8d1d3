package main

import (
	"math"
	"strings"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/ikemen-engine/ikemen-ragdoll/ragdoll"
	"github.com/ikemen-engine/ikemen-ragdoll/rigfile"
	"github.com/ikemen-engine/ikemen-ragdoll/skin"
)

func loadLayout(name string) (ragdoll.Layout, error) {
	if strings.EqualFold(name, "humanoid") || name == "" {
		return ragdoll.HumanoidLayout(), nil
	}
	return rigfile.Load(name)
}

// loadBoneTable reads the model's skin, or without a model stands the layout
// up as a mesh of its own: each bone sits along its joint axis, one shape
// length past its parent.
func loadBoneTable(model string, layout ragdoll.Layout) (ragdoll.BoneTable, error) {
	if model != "" {
		return skin.Load(model)
	}
	pos := make([]mgl32.Vec3, len(layout.Bones))
	placed := make([]bool, len(layout.Bones))
	pos[0] = mgl32.Vec3{0, 1.5, 0}
	placed[0] = true
	// Joints may list children before parents.
	for again := true; again; {
		again = false
		for _, j := range layout.Joints {
			a, _ := layout.BoneIndex(j.BoneA)
			b, _ := layout.BoneIndex(j.BoneB)
			if placed[a] && !placed[b] {
				pos[b] = pos[a].Add(j.Axis.Mul(shapeLength(layout.Bones[a].Shape)))
				placed[b] = true
				again = true
			}
		}
	}
	table := make(ragdoll.StaticBoneTable, len(layout.Bones))
	for i, b := range layout.Bones {
		table[i] = ragdoll.MeshBone{Name: b.Name, Offset: mgl32.Translate3D(pos[i][0], pos[i][1], pos[i][2])}
	}
	return table, nil
}

func shapeLength(sh ragdoll.Shape) float32 {
	switch s := sh.(type) {
	case ragdoll.Capsule:
		return s.Height + 2*s.Radius
	case ragdoll.Sphere:
		return 2 * s.Radius
	}
	return 0
}

// idlePose sways the whole body gently about Z.
func idlePose(n int, frame int32, step float32) []mgl32.Mat4 {
	t := float64(frame) * float64(step)
	sway := mgl32.HomogRotate3DZ(float32(0.05 * math.Sin(2*math.Pi*0.5*t)))
	pose := make([]mgl32.Mat4, n)
	for i := range pose {
		pose[i] = sway
	}
	return pose
}
