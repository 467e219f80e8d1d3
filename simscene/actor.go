package simscene

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/ikemen-engine/ikemen-ragdoll/ragdoll"
)

// maxAngStep is the largest rotation a body may take in one step.
const maxAngStep = math.Pi / 4

// frame is a pose with point transforms.
type frame ragdoll.Pose

func (f frame) toWorld(v mgl32.Vec3) mgl32.Vec3 {
	return f.Rot.Rotate(v).Add(f.Pos)
}

func (f frame) toLocal(v mgl32.Vec3) mgl32.Vec3 {
	return f.Rot.Inverse().Rotate(v.Sub(f.Pos))
}

type Actor struct {
	scene  *Scene
	desc   ragdoll.ActorDesc
	pose   frame
	linVel mgl32.Vec3
	angVel mgl32.Vec3
	mass   float32
	flags  ragdoll.ActorFlag
}

func (a *Actor) GlobalPose() ragdoll.Pose { return ragdoll.Pose(a.pose) }

func (a *Actor) SetGlobalPose(p ragdoll.Pose) { a.pose = frame(p) }

func (a *Actor) GlobalPosition() mgl32.Vec3 { return a.pose.Pos }

func (a *Actor) LinearVelocity() mgl32.Vec3 { return a.linVel }

func (a *Actor) SetLinearVelocity(v mgl32.Vec3) { a.linVel = v }

func (a *Actor) AngularVelocity() mgl32.Vec3 { return a.angVel }

func (a *Actor) SetAngularVelocity(v mgl32.Vec3) { a.angVel = v }

func (a *Actor) RaiseFlag(f ragdoll.ActorFlag) { a.flags |= f }

func (a *Actor) ClearFlag(f ragdoll.ActorFlag) { a.flags &^= f }

func (a *Actor) HasFlag(f ragdoll.ActorFlag) bool { return a.flags&f == f }

// Desc is the descriptor the actor was created from.
func (a *Actor) Desc() ragdoll.ActorDesc { return a.desc }

func (a *Actor) Mass() float32 { return a.mass }

// UserData is the owner set at creation, a *ragdoll.Bone for ragdoll bodies.
func (a *Actor) UserData() interface{} { return a.desc.UserData }

func (a *Actor) dynamic() bool { return !a.HasFlag(ragdoll.AF_kinematic) }

func (a *Actor) invMass() float32 {
	switch {
	case !a.dynamic():
		return 0
	case a.mass <= 0:
		return 1
	}
	return 1 / a.mass
}

var (
	posLocks = [3]ragdoll.ActorFlag{ragdoll.AF_frozenpos_x, ragdoll.AF_frozenpos_y, ragdoll.AF_frozenpos_z}
	rotLocks = [3]ragdoll.ActorFlag{ragdoll.AF_frozenrot_x, ragdoll.AF_frozenrot_y, ragdoll.AF_frozenrot_z}
)

// lockPos zeroes the components of v along frozen translation axes.
func (a *Actor) lockPos(v mgl32.Vec3) mgl32.Vec3 {
	for i, f := range posLocks {
		if a.flags&f != 0 {
			v[i] = 0
		}
	}
	return v
}

func (a *Actor) integrate(gravity mgl32.Vec3, dt float32) {
	a.linVel = a.lockPos(a.linVel.Add(gravity.Mul(dt)))
	a.angVel = a.angVel.Mul(1 / (1 + dt*a.desc.AngularDamping))
	for i, f := range rotLocks {
		if a.flags&f != 0 {
			a.angVel[i] = 0
		}
	}
	a.pose.Pos = a.pose.Pos.Add(a.linVel.Mul(dt))
	a.stepRotation(dt)
}

// stepRotation turns the body by its angular velocity, at most maxAngStep.
func (a *Actor) stepRotation(dt float32) {
	speed := a.angVel.Len()
	if speed < 1e-6 {
		return
	}
	angle := speed * dt
	if angle > maxAngStep {
		angle = maxAngStep
	}
	dq := mgl32.QuatRotate(angle, a.angVel.Mul(1/speed))
	a.pose.Rot = dq.Mul(a.pose.Rot).Normalize()
}

// restOn pushes the body out of the ground plane and bleeds off its motion.
func (a *Actor) restOn(ground float32) {
	var half, radius float32
	switch s := a.desc.Shape.(type) {
	case ragdoll.Capsule:
		half, radius = 0.5*s.Height, s.Radius
	case ragdoll.Sphere:
		radius = s.Radius
	}
	center := a.pose.toWorld(a.desc.LocalPose.Pos)
	up := a.pose.Rot.Mul(a.desc.LocalPose.Rot).Rotate(mgl32.Vec3{0, 1, 0})
	lowest := center.Y() - float32(math.Abs(float64(up.Y()*half))) - radius
	if lowest >= ground {
		return
	}
	a.pose.Pos = a.pose.Pos.Add(a.lockPos(mgl32.Vec3{0, ground - lowest, 0}))
	if a.linVel[1] < 0 {
		a.linVel[1] = 0
	}
	a.linVel[0] *= 0.8
	a.linVel[2] *= 0.8
	a.angVel = a.angVel.Mul(0.8)
}
