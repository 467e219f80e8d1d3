package ragdoll

import (
	"github.com/go-gl/mathgl/mgl32"
)

// MeshBone is one entry of a skinned mesh's bone table. Offset is the bone's
// bind pose, taking bone space to model space.
type MeshBone struct {
	Name   string
	Index  int
	Offset mgl32.Mat4
}

// BoneTable is what the ragdoll needs from a skinned mesh. Lookups are by
// exact name.
type BoneTable interface {
	BoneCount() int
	FindBone(name string) (MeshBone, bool)
}

// StaticBoneTable is a BoneTable kept in memory, indexed by position.
type StaticBoneTable []MeshBone

func (t StaticBoneTable) BoneCount() int {
	return len(t)
}

func (t StaticBoneTable) FindBone(name string) (MeshBone, bool) {
	for i, b := range t {
		if b.Name == name {
			b.Index = i
			return b, true
		}
	}
	return MeshBone{}, false
}
