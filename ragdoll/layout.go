package ragdoll

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"
	"golang.org/x/exp/slices"
)

// BoneID is the position of a bone in its skeleton, in insertion order.
// Index 0 is always the root.
type BoneID int

// Shape is the collision shape of a ragdoll bone: Capsule or Sphere.
type Shape interface {
	shape()
}

// Capsule is a cylinder of the given height capped by two hemispheres.
type Capsule struct {
	Height float32
	Radius float32
}

// Sphere is a ball of the given radius.
type Sphere struct {
	Radius float32
}

func (Capsule) shape() {}
func (Sphere) shape() {}

// localPose lifts the shape so that it starts at the bone origin and extends
// along +Y.
func localPose(sh Shape) Pose {
	p := PoseIdent()
	switch s := sh.(type) {
	case Capsule:
		p.Pos = mgl32.Vec3{0, s.Radius + 0.5*s.Height, 0}
	case Sphere:
		p.Pos = mgl32.Vec3{0, s.Radius, 0}
	}
	return p
}

// BoneLayout describes one rigid body of the ragdoll. Name must match a bone
// of the skinned mesh.
type BoneLayout struct {
	Name  string
	Shape Shape
}

type JointKind int32

const (
	JK_spherical JointKind = iota
	JK_revolute
)

func (k JointKind) String() string {
	switch k {
	case JK_spherical:
		return "spherical"
	case JK_revolute:
		return "revolute"
	}
	return "unknown"
}

// AnchorBone selects whose world position seeds the joint anchor.
type AnchorBone int32

const (
	Anchor_boneA AnchorBone = iota
	Anchor_boneB
)

// JointLayout connects two bones of a skeleton by id. Axis is a unit vector
// in world space at the time the joint is created.
type JointLayout struct {
	Kind   JointKind
	BoneA  BoneID
	BoneB  BoneID
	Anchor AnchorBone
	Axis   mgl32.Vec3
}

// JointRef is the authored form of a joint, naming its bones.
type JointRef struct {
	Kind   JointKind
	BoneA  string
	BoneB  string
	Anchor AnchorBone
	Axis   mgl32.Vec3
}

// Layout is a complete ragdoll description, as authored inline or loaded
// from a file. It is never mutated by the skeleton that is built from it.
type Layout struct {
	Name   string
	Bones  []BoneLayout
	Joints []JointRef
}

// BoneIndex returns the id the named bone will get once the layout is built.
func (l *Layout) BoneIndex(name string) (BoneID, bool) {
	i := slices.IndexFunc(l.Bones, func(b BoneLayout) bool { return b.Name == name })
	return BoneID(i), i >= 0
}

// Validate checks the topology: unique bone names, known joint ends, and a
// tree of n bones connected by n-1 joints.
func (l *Layout) Validate() error {
	for i, b := range l.Bones {
		if b.Name == "" {
			return errors.Errorf("bone %d has no name", i)
		}
		if b.Shape == nil {
			return errors.Errorf("bone %q has no shape", b.Name)
		}
		if j, _ := l.BoneIndex(b.Name); int(j) != i {
			return errors.Errorf("duplicate bone %q", b.Name)
		}
	}
	if len(l.Bones) != len(l.Joints)+1 {
		return errors.Wrapf(ErrTopologyMismatch, "%d bones, %d joints", len(l.Bones), len(l.Joints))
	}
	for i, j := range l.Joints {
		for _, name := range []string{j.BoneA, j.BoneB} {
			if _, ok := l.BoneIndex(name); !ok {
				return errors.Wrapf(ErrUnknownBone, "joint %d: %q", i, name)
			}
		}
		if j.BoneA == j.BoneB {
			return errors.Errorf("joint %d connects %q to itself", i, j.BoneA)
		}
	}
	return nil
}

// HumanoidLayout is the 11 bone zombie ragdoll. Spine0 is the root; every
// joint is spherical and anchored at its child bone.
func HumanoidLayout() Layout {
	capsule := func(name string, h, r float32) BoneLayout {
		return BoneLayout{Name: name, Shape: Capsule{Height: h, Radius: r}}
	}
	joint := func(a, b string, x, y, z float32) JointRef {
		return JointRef{Kind: JK_spherical, BoneA: a, BoneB: b, Anchor: Anchor_boneB, Axis: mgl32.Vec3{x, y, z}}
	}
	return Layout{
		Name: "humanoid",
		Bones: []BoneLayout{
			capsule("Spine0", 0.15, 0.2),
			capsule("Spine1", 0.025, 0.45),
			{Name: "Head", Shape: Sphere{Radius: 0.65}},
			capsule("RightUpperArm", 0.35, 0.15),
			capsule("RightLowerArm", 0.35, 0.15),
			capsule("LeftUpperArm", 0.35, 0.15),
			capsule("LeftLowerArm", 0.35, 0.15),
			capsule("RightUpperLeg", 0.3, 0.2),
			capsule("RightLowerLeg", 0.5, 0.2),
			capsule("LeftUpperLeg", 0.3, 0.2),
			capsule("LeftLowerLeg", 0.5, 0.2),
		},
		// The axes are world space directions from parent to child in the
		// bind pose of the zombie mesh.
		Joints: []JointRef{
			joint("Spine0", "Spine1", 0, 1, 0),
			joint("Spine1", "Head", 0, 1, 0),
			joint("Spine1", "RightUpperArm", -0.32197, -0.946653, 0),
			joint("RightUpperArm", "RightLowerArm", -0.32197, -0.946653, 0),
			joint("Spine1", "LeftUpperArm", 0.285960, -0.9582864, 0),
			joint("LeftUpperArm", "LeftLowerArm", 0.285960, -0.9582864, 0),
			joint("Spine0", "RightUpperLeg", 0, -1, 0),
			joint("RightUpperLeg", "RightLowerLeg", 0, -1, 0),
			joint("Spine0", "LeftUpperLeg", 0, -1, 0),
			joint("LeftUpperLeg", "LeftLowerLeg", 0, -1, 0),
		},
	}
}
