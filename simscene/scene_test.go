package simscene

import (
	"io"
	"log"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ikemen-engine/ikemen-ragdoll/ragdoll"
)

func ball(t *testing.T, s *Scene, pos mgl32.Vec3) *Actor {
	t.Helper()
	a, err := s.CreateActor(ragdoll.ActorDesc{
		Shape:   ragdoll.Sphere{Radius: 0.5},
		Pose:    ragdoll.Pose{Pos: pos, Rot: mgl32.QuatIdent()},
		Density: 10,
	})
	require.NoError(t, err)
	return a.(*Actor)
}

func TestFall(t *testing.T) {
	s := New(mgl32.Vec3{0, -10, 0})
	a := ball(t, s, mgl32.Vec3{})
	k := ball(t, s, mgl32.Vec3{3, 0, 0})
	k.RaiseFlag(ragdoll.AF_kinematic)

	for i := 0; i < 10; i++ {
		s.Step(0.1)
	}
	assert.InDelta(t, -5.5, a.GlobalPosition().Y(), 1e-4)
	assert.InDelta(t, -10, a.LinearVelocity().Y(), 1e-4)
	assert.Equal(t, mgl32.Vec3{3, 0, 0}, k.GlobalPosition())
}

func TestFrozenAxes(t *testing.T) {
	s := New(mgl32.Vec3{1, 1, -10})
	a := ball(t, s, mgl32.Vec3{0, 0, 2})
	a.RaiseFlag(ragdoll.AF_frozenpos_z | ragdoll.AF_frozenrot_x)
	a.SetAngularVelocity(mgl32.Vec3{5, 0, 0})

	s.Step(0.5)
	assert.Equal(t, float32(2), a.GlobalPosition().Z())
	assert.Zero(t, a.LinearVelocity().Z())
	assert.Greater(t, a.GlobalPosition().X(), float32(0))
	assert.Equal(t, mgl32.QuatIdent(), a.GlobalPose().Rot)
}

func TestAngularDamping(t *testing.T) {
	s := New(mgl32.Vec3{})
	a, err := s.CreateActor(ragdoll.ActorDesc{Shape: ragdoll.Sphere{Radius: 1}, AngularDamping: 0.75})
	require.NoError(t, err)
	act := a.(*Actor)
	act.SetAngularVelocity(mgl32.Vec3{0, 2, 0})
	s.Step(0.1)
	assert.InDelta(t, 2/(1+0.075), act.AngularVelocity().Y(), 1e-5)
	assert.NotEqual(t, mgl32.QuatIdent(), act.GlobalPose().Rot)
	assert.InDelta(t, 1, act.GlobalPose().Rot.Len(), 1e-5)
}

func TestGround(t *testing.T) {
	s := New(mgl32.Vec3{0, -10, 0})
	s.HasGround = true
	a := ball(t, s, mgl32.Vec3{0, 2, 0})
	ghost := ball(t, s, mgl32.Vec3{2, 2, 0})
	ghost.RaiseFlag(ragdoll.AF_nocollision)

	for i := 0; i < 60; i++ {
		s.Step(1.0 / 60)
	}
	assert.InDelta(t, 0.5, a.GlobalPosition().Y(), 1e-4)
	assert.Zero(t, a.LinearVelocity().Y())
	assert.Less(t, ghost.GlobalPosition().Y(), float32(0))
}

func TestJointProjection(t *testing.T) {
	s := New(mgl32.Vec3{})
	a := ball(t, s, mgl32.Vec3{0, 0, 0})
	b := ball(t, s, mgl32.Vec3{0, 1, 0})
	c := ball(t, s, mgl32.Vec3{0, 2, 0})
	hinge, err := s.CreateJoint(ragdoll.JointDesc{A: a, B: b, Anchor: mgl32.Vec3{0, 0.5, 0}, Axis: mgl32.Vec3{1, 0, 0}, Params: ragdoll.RevoluteParams{}})
	require.NoError(t, err)
	ball2, err := s.CreateJoint(ragdoll.JointDesc{A: b, B: c, Anchor: mgl32.Vec3{0, 1.5, 0}, Axis: mgl32.Vec3{0, 1, 0}, Params: ragdoll.DefaultSphericalParams()})
	require.NoError(t, err)
	assert.Equal(t, ragdoll.JK_revolute, hinge.Kind())
	assert.Equal(t, ragdoll.JK_spherical, ball2.Kind())

	c.SetGlobalPose(ragdoll.Pose{Pos: mgl32.Vec3{0, 4, 0}, Rot: mgl32.QuatIdent()})
	b.SetGlobalPose(ragdoll.Pose{Pos: mgl32.Vec3{2, 1, 0}, Rot: mgl32.QuatIdent()})
	s.Iterations = 50
	s.Step(0.01)

	pa, pb := hinge.(*Joint).Anchors()
	assert.Less(t, pa.Sub(pb).Len(), float32(0.01))
	pa, pb = ball2.(*Joint).Anchors()
	assert.Less(t, pa.Sub(pb).Len(), float32(0.15+0.01))
}

func TestJointOnKinematicBody(t *testing.T) {
	s := New(mgl32.Vec3{})
	a := ball(t, s, mgl32.Vec3{})
	b := ball(t, s, mgl32.Vec3{0, 1, 0})
	a.RaiseFlag(ragdoll.AF_kinematic)
	_, err := s.CreateJoint(ragdoll.JointDesc{A: a, B: b, Anchor: mgl32.Vec3{0, 0.5, 0}, Params: ragdoll.RevoluteParams{}})
	require.NoError(t, err)

	b.SetGlobalPose(ragdoll.Pose{Pos: mgl32.Vec3{0, 3, 0}, Rot: mgl32.QuatIdent()})
	s.Step(0.01)
	assert.Equal(t, mgl32.Vec3{}, a.GlobalPosition())
	assert.InDelta(t, 1, b.GlobalPosition().Y(), 1e-4)
}

func TestHandles(t *testing.T) {
	s := New(mgl32.Vec3{})
	other := New(mgl32.Vec3{})
	a := ball(t, s, mgl32.Vec3{})
	b := ball(t, s, mgl32.Vec3{0, 1, 0})
	foreign := ball(t, other, mgl32.Vec3{})

	_, err := s.CreateJoint(ragdoll.JointDesc{A: a, B: foreign, Params: ragdoll.RevoluteParams{}})
	assert.Error(t, err)
	_, err = s.CreateJoint(ragdoll.JointDesc{A: a, B: a, Params: ragdoll.RevoluteParams{}})
	assert.Error(t, err)
	_, err = s.CreateJoint(ragdoll.JointDesc{A: a, B: b})
	assert.Error(t, err)
	_, err = s.CreateActor(ragdoll.ActorDesc{})
	assert.Error(t, err)

	j, err := s.CreateJoint(ragdoll.JointDesc{A: a, B: b, Params: ragdoll.RevoluteParams{}})
	require.NoError(t, err)
	s.ReleaseActor(a)
	assert.Empty(t, s.Joints())
	s.ReleaseJoint(j)
	s.ReleaseActor(a)
	s.ReleaseActor(foreign)

	assert.Equal(t, Stats{ActorsCreated: 2, ActorsReleased: 1, JointsCreated: 1, JointsReleased: 1}, s.Stats())
	assert.Equal(t, []*Actor{b}, s.Actors())
}

func TestRagdollFalls(t *testing.T) {
	table := ragdoll.StaticBoneTable{
		{Name: "Hips", Offset: mgl32.Translate3D(0, 1, 0)},
		{Name: "Chest", Offset: mgl32.Translate3D(0, 1.5, 0)},
		{Name: "Head", Offset: mgl32.Translate3D(0, 2, 0)},
	}
	layout := ragdoll.Layout{
		Name: "stack",
		Bones: []ragdoll.BoneLayout{
			{Name: "Hips", Shape: ragdoll.Capsule{Height: 0.2, Radius: 0.1}},
			{Name: "Chest", Shape: ragdoll.Capsule{Height: 0.2, Radius: 0.1}},
			{Name: "Head", Shape: ragdoll.Sphere{Radius: 0.15}},
		},
		Joints: []ragdoll.JointRef{
			{Kind: ragdoll.JK_spherical, BoneA: "Hips", BoneB: "Chest", Anchor: ragdoll.Anchor_boneB, Axis: mgl32.Vec3{0, 1, 0}},
			{Kind: ragdoll.JK_spherical, BoneA: "Chest", BoneB: "Head", Anchor: ragdoll.Anchor_boneB, Axis: mgl32.Vec3{0, 1, 0}},
		},
	}
	s := New(mgl32.Vec3{0, -9.8, -3})
	an := ragdoll.NewAnimator(s, table, ragdoll.Options{Logger: log.New(io.Discard, "", 0)})
	require.NoError(t, an.BuildSkeleton(layout))
	an.UpdateAnimationDrive()
	start := an.RootPosition()

	// Kinematic bodies ignore gravity.
	s.Step(0.1)
	assert.Equal(t, start, an.RootPosition())
	assert.False(t, an.IsMoving(0))

	an.SetMode(ragdoll.PhysicsDrives)
	for i := 0; i < 10; i++ {
		s.Step(0.1)
	}
	an.UpdatePhysicsDrive()
	assert.Less(t, an.RootPosition().Y(), start.Y())
	assert.Equal(t, start.Z(), an.RootPosition().Z())
	assert.True(t, an.IsMoving(0))

	out := an.PhysicsBoneTransforms()
	require.Len(t, out, 3)
	assert.Less(t, out[0].Col(3).Y(), float32(0))
}
