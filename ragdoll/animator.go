package ragdoll

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"
)

// Animator drives one character's ragdoll. It owns at most one skeleton
// and switches authority between the animation and the simulation.
//
// A character without a built skeleton is valid: every per-frame call is then
// a no-op.
type Animator struct {
	scene Scene
	table BoneTable
	opts  Options

	skeleton *Skeleton
	mode     Mode

	original []mgl32.Mat4
	world    mgl32.Mat4
}

func NewAnimator(scene Scene, table BoneTable, opts Options) *Animator {
	a := &Animator{
		scene: scene,
		table: table,
		opts:  opts.normalize(),
		mode:  AnimationDrives,
		world: mgl32.Ident4(),
	}
	if table != nil {
		a.original = identities(table.BoneCount())
	}
	return a
}

// BuildSkeleton replaces the current skeleton with one built from layout and
// creates its joints. On failure the animator is left without a skeleton.
func (a *Animator) BuildSkeleton(layout Layout) error {
	if err := a.buildSkeleton(layout); err != nil {
		a.opts.Logger.Printf("ragdoll %q not built: %v", layout.Name, err)
		return err
	}
	return nil
}

func (a *Animator) buildSkeleton(layout Layout) error {
	a.Release()
	if err := layout.Validate(); err != nil {
		return err
	}
	if a.scene == nil {
		return ErrNoScene
	}
	if a.table == nil {
		return ErrNoMesh
	}
	s := NewSkeleton(a.scene, a.opts)
	for _, b := range layout.Bones {
		s.AddBone(b)
	}
	for _, j := range layout.Joints {
		ja, _ := layout.BoneIndex(j.BoneA)
		jb, _ := layout.BoneIndex(j.BoneB)
		s.AddJoint(JointLayout{Kind: j.Kind, BoneA: ja, BoneB: jb, Anchor: j.Anchor, Axis: j.Axis})
	}
	s.SetWorldTransform(a.world)
	if err := s.initialize(a.table); err != nil {
		return err
	}
	s.FeedBoneTransforms(a.original)
	if !a.opts.ReleaseJointsWhileAnimating || a.mode == PhysicsDrives {
		if err := s.CreateJoints(); err != nil {
			s.Release()
			return err
		}
	}
	a.skeleton = s
	if a.mode == PhysicsDrives {
		a.setDynamic()
	}
	return nil
}

// SetMode switches drive mode. Setting the current mode again does nothing.
func (a *Animator) SetMode(m Mode) {
	if !m.valid() || m == a.mode {
		return
	}
	a.mode = m
	if a.skeleton == nil {
		return
	}
	switch m {
	case AnimationDrives:
		a.enterAnimation()
	case PhysicsDrives:
		a.enterPhysics()
	}
}

func (a *Animator) enterAnimation() {
	for _, b := range a.skeleton.Bones() {
		b.SetKinematic()
		b.SetNonColliding()
	}
	if a.opts.ReleaseJointsWhileAnimating {
		a.skeleton.ReleaseJoints()
	}
}

func (a *Animator) enterPhysics() {
	if a.opts.ReleaseJointsWhileAnimating {
		// Anchored while the bodies still hold the animated pose.
		if err := a.skeleton.CreateJoints(); err != nil {
			a.opts.Logger.Printf("ragdoll joints not created: %v", err)
		}
	}
	a.setDynamic()
}

func (a *Animator) setDynamic() {
	for _, b := range a.skeleton.Bones() {
		b.SetDynamic()
		b.SetCollidable()
	}
}

func (a *Animator) CurrentMode() Mode { return a.mode }

// UpdateAnimationDrive moves the bodies to the fed animation pose. It does
// nothing outside AnimationDrives.
func (a *Animator) UpdateAnimationDrive() {
	if a.skeleton == nil || a.mode != AnimationDrives {
		return
	}
	a.skeleton.SetWorldTransform(a.world)
	a.skeleton.FeedBoneTransforms(a.original)
	a.skeleton.UpdateAnimationDrive()
}

// UpdatePhysicsDrive reads the simulated bodies back into model space. It
// does nothing outside PhysicsDrives.
func (a *Animator) UpdatePhysicsDrive() {
	if a.skeleton == nil || a.mode != PhysicsDrives {
		return
	}
	a.skeleton.SetWorldTransform(a.world)
	a.skeleton.FeedBoneTransforms(a.original)
	a.skeleton.UpdatePhysicsDrive()
}

// FeedBoneTransforms copies the animation transforms, indexed like the mesh
// bone table. Bones past the end of ts keep their previous transform and
// extra entries are ignored.
func (a *Animator) FeedBoneTransforms(ts []mgl32.Mat4) {
	copy(a.original, ts)
}

// PhysicsBoneTransforms returns the model space transforms written by the
// last UpdatePhysicsDrive, or nil without a skeleton.
func (a *Animator) PhysicsBoneTransforms() []mgl32.Mat4 {
	if a.skeleton == nil {
		return nil
	}
	return a.skeleton.PhysicsBoneTransforms()
}

func (a *Animator) SetWorldTransform(m mgl32.Mat4) {
	a.world = m
	if a.skeleton != nil {
		a.skeleton.SetWorldTransform(m)
	}
}

func (a *Animator) Skeleton() *Skeleton { return a.skeleton }

// CreateJoints rebuilds the joint graph of the current skeleton.
func (a *Animator) CreateJoints() error {
	if a.skeleton == nil {
		return ErrNoSkeleton
	}
	return a.skeleton.CreateJoints()
}

func (a *Animator) ReleaseJoints() {
	if a.skeleton != nil {
		a.skeleton.ReleaseJoints()
	}
}

// IsMoving reports whether any body moves faster than threshold along any
// axis. A threshold of zero or less uses DefaultMovingThreshold.
func (a *Animator) IsMoving(threshold float32) bool {
	if a.skeleton == nil {
		return false
	}
	if threshold <= 0 {
		threshold = DefaultMovingThreshold
	}
	for _, actor := range a.skeleton.Actors() {
		v := actor.LinearVelocity()
		for _, c := range v {
			if float32(math.Abs(float64(c))) > threshold {
				return true
			}
		}
	}
	return false
}

// RootPosition is the world position of the root body.
func (a *Animator) RootPosition() mgl32.Vec3 {
	if a.skeleton == nil || a.skeleton.RootActor() == nil {
		return mgl32.Vec3{}
	}
	return a.skeleton.RootActor().GlobalPosition()
}

// Release destroys the skeleton. The mode is kept.
func (a *Animator) Release() {
	if a.skeleton != nil {
		a.skeleton.Release()
		a.skeleton = nil
	}
}

func (a *Animator) mustSkeleton() (*Skeleton, error) {
	if a.skeleton == nil {
		return nil, errors.WithStack(ErrNoSkeleton)
	}
	return a.skeleton, nil
}
