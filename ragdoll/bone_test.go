package ragdoll

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const eps = 1e-4

func assertMat(t *testing.T, want, got mgl32.Mat4) {
	t.Helper()
	assert.True(t, want.ApproxEqualThreshold(got, eps), "want\n%v\ngot\n%v", want, got)
}

func initBone(t *testing.T, scene *recScene, name string) *Bone {
	t.Helper()
	b := NewBone(scene, BoneLayout{Name: name, Shape: Capsule{Height: 0.4, Radius: 0.1}}, quietOptions())
	require.NoError(t, b.Initialize(chainTable(), 3))
	return b
}

func TestBoneInitialize(t *testing.T) {
	scene := &recScene{}
	b := initBone(t, scene, "Mid")

	require.Len(t, scene.actors, 1)
	a := scene.actors[0]
	assert.Same(t, a, b.Actor())
	assert.Equal(t, 2, b.Index())
	assert.True(t, a.HasFlag(AF_kinematic|AF_nocollision))
	assert.Equal(t, CollisionGroup(3), a.desc.Group)
	assert.Equal(t, float32(DefaultDensity), a.desc.Density)
	assert.Equal(t, float32(DefaultAngularDamping), a.desc.AngularDamping)
	assert.Equal(t, mgl32.Vec3{}, a.desc.LinearVelocity)
	assert.InDelta(t, 0.3, a.desc.LocalPose.Pos.Y(), eps)
	assert.Same(t, b, a.desc.UserData)

	want := chainTable()[2].Offset.Mul4(AxisCorrection())
	assertMat(t, want, b.TotalOffset())
	assertMat(t, want, RigidConverter{}.ToMatrix(a.desc.Pose))
}

func TestBoneDampingOptions(t *testing.T) {
	for _, tt := range []struct {
		set, want float32
	}{
		{0, DefaultAngularDamping},
		{NoAngularDamping, 0},
		{0.2, 0.2},
	} {
		scene := &recScene{}
		opts := quietOptions()
		opts.AngularDamping = tt.set
		b := NewBone(scene, BoneLayout{Name: "Root", Shape: Sphere{Radius: 1}}, opts)
		require.NoError(t, b.Initialize(chainTable(), 0))
		assert.Equal(t, tt.want, scene.actors[0].desc.AngularDamping, "set %v", tt.set)
	}
}

func TestBoneNotInMesh(t *testing.T) {
	scene := &recScene{}
	b := NewBone(scene, BoneLayout{Name: "Tail", Shape: Sphere{Radius: 1}}, quietOptions())
	err := b.Initialize(chainTable(), 0)
	assert.True(t, errors.Is(err, ErrBoneNotFound), "got %v", err)
	assert.Zero(t, scene.created)
	assert.Nil(t, b.Actor())
}

func TestBoneIdentityDrive(t *testing.T) {
	scene := &recScene{}
	for _, name := range []string{"Root", "Mid", "Tip"} {
		b := initBone(t, scene, name)
		b.UpdateAnimationDrive(mgl32.Ident4())
		got := RigidConverter{}.ToMatrix(b.Actor().GlobalPose())
		assertMat(t, b.TotalOffset(), got)
	}
}

func TestBoneRoundTrip(t *testing.T) {
	worlds := []mgl32.Mat4{
		mgl32.Ident4(),
		rigid(3, -2, 1, 0.7, mgl32.Vec3{0, 1, 0}),
		rigid(-10, 4, 0, 2.5, mgl32.Vec3{1, 1, 0}),
	}
	anims := []mgl32.Mat4{
		mgl32.Ident4(),
		rigid(0, 0.2, 0, 0.4, mgl32.Vec3{0, 0, 1}),
		rigid(1, 2, 3, -1.2, mgl32.Vec3{1, 2, 3}),
	}
	scene := &recScene{}
	for _, name := range []string{"Root", "Mid", "Tip"} {
		b := initBone(t, scene, name)
		for _, w := range worlds {
			for _, anim := range anims {
				b.SetModelWorldTransform(w)
				b.UpdateAnimationDrive(anim)
				b.UpdatePhysicsDrive()
				assertMat(t, anim, b.ActorToModel())
			}
		}
	}
}

func TestBoneFlagsPassThrough(t *testing.T) {
	scene := &recScene{}
	b := initBone(t, scene, "Root")
	a := scene.actors[0]

	b.SetDynamic()
	b.SetCollidable()
	assert.False(t, a.HasFlag(AF_kinematic))
	assert.False(t, a.HasFlag(AF_nocollision))

	b.SetKinematic()
	b.SetNonColliding()
	assert.True(t, a.HasFlag(AF_kinematic))
	assert.True(t, a.HasFlag(AF_nocollision))
}

func TestBoneReleaseOnce(t *testing.T) {
	scene := &recScene{}
	b := initBone(t, scene, "Tip")
	b.Release()
	b.Release()
	assert.Equal(t, 1, scene.released)
	assert.Nil(t, b.Actor())

	// Without an actor every call is a no-op.
	b.UpdateAnimationDrive(mgl32.Ident4())
	b.UpdatePhysicsDrive()
	b.SetDynamic()
}

func TestShapeLocalPose(t *testing.T) {
	assert.InDelta(t, 0.45, localPose(Capsule{Height: 0.5, Radius: 0.2}).Pos.Y(), eps)
	assert.Equal(t, mgl32.Vec3{0, 0.65, 0}, localPose(Sphere{Radius: 0.65}).Pos)
	assert.Equal(t, mgl32.QuatIdent(), localPose(Sphere{Radius: 1}).Rot)
}

func TestAxisCorrection(t *testing.T) {
	// A capsule along +Y in actor space lies along +X in bone space.
	v := AxisCorrection().Mul4x1(mgl32.Vec4{0, 1, 0, 0})
	assert.InDelta(t, 1, v[0], eps)
	assert.InDelta(t, 0, v[1], eps)
}

func TestRigidConverter(t *testing.T) {
	m := rigid(1, -2, 3, 1.1, mgl32.Vec3{0.3, 1, -0.2})
	c := RigidConverter{}
	p := c.ToPose(m)
	assert.Equal(t, mgl32.Vec3{1, -2, 3}, p.Pos)
	assertMat(t, m, c.ToMatrix(p))
}
