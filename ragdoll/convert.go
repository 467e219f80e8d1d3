package ragdoll

import (
	"github.com/go-gl/mathgl/mgl32"
)

// Converter moves transforms between the matrix form used by animation and
// the pose form used by the physics engine.
type Converter interface {
	ToPose(m mgl32.Mat4) Pose
	ToMatrix(p Pose) mgl32.Mat4
}

// RigidConverter assumes rotation plus translation only. Scale in the matrix
// is not representable as a Pose and is lost.
type RigidConverter struct{}

func (RigidConverter) ToPose(m mgl32.Mat4) Pose {
	return Pose{
		Pos: m.Col(3).Vec3(),
		Rot: mgl32.Mat4ToQuat(m).Normalize(),
	}
}

func (RigidConverter) ToMatrix(p Pose) mgl32.Mat4 {
	return mgl32.Translate3D(p.Pos[0], p.Pos[1], p.Pos[2]).Mul4(p.Rot.Mat4())
}

// AxisCorrection turns the authoring convention (a capsule at rest points
// along +X) into the physics one (a capsule at rest points along +Y).
func AxisCorrection() mgl32.Mat4 {
	return mgl32.HomogRotate3DZ(mgl32.DegToRad(-90))
}
