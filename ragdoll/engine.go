package ragdoll

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Pose is a rigid transform: a rotation followed by a translation.
type Pose struct {
	Pos mgl32.Vec3
	Rot mgl32.Quat
}

func PoseIdent() Pose {
	return Pose{Rot: mgl32.QuatIdent()}
}

type ActorFlag uint32

const (
	AF_kinematic ActorFlag = 1 << iota
	AF_nocollision
	AF_frozenpos_x
	AF_frozenpos_y
	AF_frozenpos_z
	AF_frozenrot_x
	AF_frozenrot_y
	AF_frozenrot_z
)

// CollisionGroup is passed through to the engine untouched.
type CollisionGroup uint16

// ActorDesc is everything the engine needs to create one ragdoll body.
type ActorDesc struct {
	Shape          Shape
	LocalPose      Pose // shape pose relative to the actor
	Pose           Pose // actor global pose
	Group          CollisionGroup
	Density        float32
	AngularDamping float32
	LinearVelocity mgl32.Vec3
	UserData       interface{}
}

// JointLimit is one angular limit of a joint, in radians.
type JointLimit struct {
	Value       float32
	Hardness    float32
	Restitution float32
}

type Spring struct {
	Spring float32
	Damper float32
}

type ProjectionMode int32

const (
	Projection_none ProjectionMode = iota
	Projection_pointmindist
)

// JointParams is SphericalParams or RevoluteParams.
type JointParams interface {
	Kind() JointKind
}

// SphericalParams is a ball joint with a twist limit around the joint axis
// and a swing cone around it.
type SphericalParams struct {
	TwistLow           JointLimit
	TwistHigh          JointLimit
	Swing              JointLimit
	TwistSpring        Spring
	SwingSpring        Spring
	Projection         ProjectionMode
	ProjectionDistance float32
}

// RevoluteParams is an unlimited hinge around the joint axis.
type RevoluteParams struct{}

func (SphericalParams) Kind() JointKind { return JK_spherical }
func (RevoluteParams) Kind() JointKind { return JK_revolute }

// DefaultSphericalParams models a loosely limited human joint: ±4.5° of
// twist, a 45° swing cone, light springs on both.
func DefaultSphericalParams() SphericalParams {
	limit := func(v float32) JointLimit {
		return JointLimit{Value: v, Hardness: 0.5, Restitution: 0.5}
	}
	return SphericalParams{
		TwistLow:           limit(-0.025 * math.Pi),
		TwistHigh:          limit(0.025 * math.Pi),
		Swing:              limit(0.25 * math.Pi),
		TwistSpring:        Spring{Spring: 0.5, Damper: 1},
		SwingSpring:        Spring{Spring: 0.5, Damper: 1},
		Projection:         Projection_pointmindist,
		ProjectionDistance: 0.15,
	}
}

// JointDesc connects two actors at a global anchor around a global axis.
type JointDesc struct {
	A, B   Actor
	Anchor mgl32.Vec3
	Axis   mgl32.Vec3
	Params JointParams
}

// Scene is the part of a physics engine the ragdoll drives.
type Scene interface {
	CreateActor(desc ActorDesc) (Actor, error)
	ReleaseActor(a Actor)
	CreateJoint(desc JointDesc) (Joint, error)
	ReleaseJoint(j Joint)
}

// Actor is one rigid body owned by a Bone. The actor is the only place its
// flags are stored.
type Actor interface {
	GlobalPose() Pose
	SetGlobalPose(p Pose)
	GlobalPosition() mgl32.Vec3
	LinearVelocity() mgl32.Vec3
	SetLinearVelocity(v mgl32.Vec3)
	RaiseFlag(f ActorFlag)
	ClearFlag(f ActorFlag)
	HasFlag(f ActorFlag) bool
}

type Joint interface {
	Kind() JointKind
}
