// Package simscene is a small rigid-body world the ragdoll can run in
// without an external physics engine. Bodies integrate gravity and damping,
// joints hold their anchors together by projection, and collidable bodies
// rest on an optional ground plane. Bodies never collide with each other.
package simscene

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"
	"golang.org/x/exp/slices"

	"github.com/ikemen-engine/ikemen-ragdoll/ragdoll"
)

// Stats counts handle creation and release over the life of a scene.
type Stats struct {
	ActorsCreated  int
	ActorsReleased int
	JointsCreated  int
	JointsReleased int
}

type Scene struct {
	Gravity mgl32.Vec3
	// Ground is the height of the ground plane, used when HasGround is set.
	Ground    float32
	HasGround bool
	// Iterations of the joint projection per step.
	Iterations int

	actors []*Actor
	joints []*Joint
	stats  Stats
}

func New(gravity mgl32.Vec3) *Scene {
	return &Scene{Gravity: gravity, Iterations: 4}
}

func (s *Scene) CreateActor(desc ragdoll.ActorDesc) (ragdoll.Actor, error) {
	if desc.Shape == nil {
		return nil, errors.New("actor has no shape")
	}
	if desc.Pose.Rot == (mgl32.Quat{}) {
		desc.Pose.Rot = mgl32.QuatIdent()
	}
	if desc.LocalPose.Rot == (mgl32.Quat{}) {
		desc.LocalPose.Rot = mgl32.QuatIdent()
	}
	a := &Actor{
		scene:  s,
		desc:   desc,
		pose:   frame(desc.Pose),
		linVel: desc.LinearVelocity,
		mass:   desc.Density * volume(desc.Shape),
	}
	s.actors = append(s.actors, a)
	s.stats.ActorsCreated++
	return a, nil
}

func (s *Scene) ReleaseActor(ra ragdoll.Actor) {
	a, ok := ra.(*Actor)
	if !ok || a.scene != s {
		return
	}
	if i := slices.Index(s.actors, a); i >= 0 {
		s.actors = slices.Delete(s.actors, i, i+1)
		s.stats.ActorsReleased++
	}
	// Joints do not outlive their bodies.
	for i := len(s.joints) - 1; i >= 0; i-- {
		if j := s.joints[i]; j.a == a || j.b == a {
			s.ReleaseJoint(j)
		}
	}
}

func (s *Scene) CreateJoint(desc ragdoll.JointDesc) (ragdoll.Joint, error) {
	a, okA := desc.A.(*Actor)
	b, okB := desc.B.(*Actor)
	if !okA || !okB || !s.owns(a) || !s.owns(b) {
		return nil, errors.New("joint actors do not belong to this scene")
	}
	if a == b {
		return nil, errors.New("joint connects an actor to itself")
	}
	if desc.Params == nil {
		return nil, errors.New("joint has no parameters")
	}
	j := &Joint{
		desc:   desc,
		a:      a,
		b:      b,
		localA: a.pose.toLocal(desc.Anchor),
		localB: b.pose.toLocal(desc.Anchor),
	}
	s.joints = append(s.joints, j)
	s.stats.JointsCreated++
	return j, nil
}

func (s *Scene) ReleaseJoint(rj ragdoll.Joint) {
	j, ok := rj.(*Joint)
	if !ok {
		return
	}
	if i := slices.Index(s.joints, j); i >= 0 {
		s.joints = slices.Delete(s.joints, i, i+1)
		s.stats.JointsReleased++
	}
}

func (s *Scene) owns(a *Actor) bool {
	return a.scene == s && slices.Contains(s.actors, a)
}

func (s *Scene) Actors() []*Actor { return s.actors }
func (s *Scene) Joints() []*Joint { return s.joints }
func (s *Scene) Stats() Stats { return s.stats }

// Step advances the world by dt seconds.
func (s *Scene) Step(dt float32) {
	if dt <= 0 {
		return
	}
	for _, a := range s.actors {
		if a.dynamic() {
			a.integrate(s.Gravity, dt)
		}
	}
	for it := 0; it < s.Iterations; it++ {
		for _, j := range s.joints {
			j.project()
		}
	}
	if s.HasGround {
		for _, a := range s.actors {
			if a.dynamic() && !a.HasFlag(ragdoll.AF_nocollision) {
				a.restOn(s.Ground)
			}
		}
	}
}

func volume(sh ragdoll.Shape) float32 {
	ball := func(r float32) float32 { return 4.0 / 3.0 * math.Pi * r * r * r }
	switch s := sh.(type) {
	case ragdoll.Capsule:
		return math.Pi*s.Radius*s.Radius*s.Height + ball(s.Radius)
	case ragdoll.Sphere:
		return ball(s.Radius)
	}
	return 0
}
