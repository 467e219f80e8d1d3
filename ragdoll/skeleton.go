package ragdoll

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"
)

// rootLock keeps the whole ragdoll from drifting out of the play plane.
const rootLock = AF_frozenpos_z

// Skeleton is an ordered set of bones connected by joints. Bones live in an
// arena indexed by BoneID; joint layouts refer to bones only by id.
//
// The joint handles have their own lifecycle: ReleaseJoints and CreateJoints
// rebuild the joint graph without touching the bones.
type Skeleton struct {
	scene Scene
	opts  Options

	bones  []*Bone
	joints []JointLayout

	spherical []Joint
	revolute  []Joint

	// Indexed by mesh bone index.
	original []mgl32.Mat4
	physics  []mgl32.Mat4
	world    mgl32.Mat4

	initialized bool
}

func NewSkeleton(scene Scene, opts Options) *Skeleton {
	return &Skeleton{
		scene: scene,
		opts:  opts.normalize(),
		world: mgl32.Ident4(),
	}
}

// AddBone appends a bone. The first bone added is the root.
func (s *Skeleton) AddBone(layout BoneLayout) BoneID {
	id := BoneID(len(s.bones))
	s.bones = append(s.bones, newBone(s.scene, id, layout, s.opts))
	return id
}

// AddJoint stores a joint layout; the joint itself is made by CreateJoints.
func (s *Skeleton) AddJoint(layout JointLayout) {
	s.joints = append(s.joints, layout)
}

// Initialize maps every bone onto the mesh and creates the actors in bone
// order. Nothing is created unless the whole skeleton is valid: a tree of n
// bones and n-1 joints, every bone present in the mesh.
func (s *Skeleton) Initialize(table BoneTable) error {
	if err := s.initialize(table); err != nil {
		s.opts.Logger.Printf("can not build ragdoll skeleton: %v", err)
		return err
	}
	return nil
}

func (s *Skeleton) initialize(table BoneTable) error {
	if s.initialized {
		return ErrInitialized
	}
	if s.scene == nil {
		return ErrNoScene
	}
	if table == nil {
		return ErrNoMesh
	}
	if len(s.bones) != len(s.joints)+1 {
		return errors.Wrapf(ErrTopologyMismatch, "%d bones, %d joints", len(s.bones), len(s.joints))
	}
	for i, j := range s.joints {
		if !s.validID(j.BoneA) || !s.validID(j.BoneB) {
			return errors.Wrapf(ErrUnknownBone, "joint %d connects %d and %d", i, j.BoneA, j.BoneB)
		}
		if j.BoneA == j.BoneB {
			return errors.Errorf("joint %d connects bone %d to itself", i, j.BoneA)
		}
	}

	for _, b := range s.bones {
		b.SetModelWorldTransform(s.world)
		if err := b.mapToMesh(table); err != nil {
			return err
		}
	}
	for i, b := range s.bones {
		if err := b.createActor(s.opts.Group); err != nil {
			for _, created := range s.bones[:i] {
				created.Release()
			}
			return err
		}
	}
	s.bones[0].RaiseFlag(rootLock)

	n := table.BoneCount()
	if len(s.original) != n {
		s.original = identities(n)
	}
	s.physics = identities(n)
	s.initialized = true
	return nil
}

func (s *Skeleton) validID(id BoneID) bool {
	return id >= 0 && int(id) < len(s.bones)
}

func identities(n int) []mgl32.Mat4 {
	ms := make([]mgl32.Mat4, n)
	for i := range ms {
		ms[i] = mgl32.Ident4()
	}
	return ms
}

// CreateJoints builds a joint for every joint layout, anchored at the
// current world position of the layout's anchor bone. Existing joints are
// released first.
func (s *Skeleton) CreateJoints() error {
	if !s.initialized {
		return ErrNoSkeleton
	}
	s.ReleaseJoints()
	for i, j := range s.joints {
		a, b := s.bones[j.BoneA], s.bones[j.BoneB]
		anchor := a
		if j.Anchor == Anchor_boneB {
			anchor = b
		}
		desc := JointDesc{
			A:      a.Actor(),
			B:      b.Actor(),
			Anchor: anchor.Actor().GlobalPosition(),
			Axis:   j.Axis,
		}
		switch j.Kind {
		case JK_spherical:
			desc.Params = DefaultSphericalParams()
		case JK_revolute:
			desc.Params = RevoluteParams{}
		default:
			s.ReleaseJoints()
			return errors.Errorf("joint %d has unknown kind %d", i, j.Kind)
		}
		joint, err := s.scene.CreateJoint(desc)
		if err != nil {
			s.ReleaseJoints()
			return errors.Wrapf(err, "creating %v joint %d", j.Kind, i)
		}
		if j.Kind == JK_spherical {
			s.spherical = append(s.spherical, joint)
		} else {
			s.revolute = append(s.revolute, joint)
		}
	}
	return nil
}

// ReleaseJoints destroys every joint handle. The joint layouts stay, so
// CreateJoints can rebuild the same graph.
func (s *Skeleton) ReleaseJoints() {
	for _, j := range s.spherical {
		if j != nil {
			s.scene.ReleaseJoint(j)
		}
	}
	for _, j := range s.revolute {
		if j != nil {
			s.scene.ReleaseJoint(j)
		}
	}
	s.spherical = s.spherical[:0]
	s.revolute = s.revolute[:0]
}

// Release destroys the joints and then every bone's actor.
func (s *Skeleton) Release() {
	s.ReleaseJoints()
	for _, b := range s.bones {
		b.Release()
	}
	s.initialized = false
}

// UpdateAnimationDrive pushes the fed animation transforms into the actors.
func (s *Skeleton) UpdateAnimationDrive() {
	for _, b := range s.bones {
		b.SetModelWorldTransform(s.world)
		if i := b.Index(); i >= 0 && i < len(s.original) {
			b.UpdateAnimationDrive(s.original[i])
		}
	}
}

// UpdatePhysicsDrive reads the actors back into the physics transforms.
// Mesh bones without a ragdoll bone keep their animation transform.
func (s *Skeleton) UpdatePhysicsDrive() {
	copy(s.physics, s.original)
	for _, b := range s.bones {
		b.SetModelWorldTransform(s.world)
		b.UpdatePhysicsDrive()
		if i := b.Index(); i >= 0 && i < len(s.physics) {
			s.physics[i] = b.ActorToModel()
		}
	}
}

// FeedBoneTransforms sets the animation transforms, indexed like the mesh
// bone table. It only takes effect once the skeleton is initialized; bones
// past the end of ts keep their previous transform.
func (s *Skeleton) FeedBoneTransforms(ts []mgl32.Mat4) {
	copy(s.original, ts)
}

// PhysicsBoneTransforms is the output of the last UpdatePhysicsDrive. The
// slice is reused by the next update.
func (s *Skeleton) PhysicsBoneTransforms() []mgl32.Mat4 {
	return s.physics
}

func (s *Skeleton) SetWorldTransform(m mgl32.Mat4) { s.world = m }

func (s *Skeleton) Bones() []*Bone { return s.bones }

func (s *Skeleton) Bone(id BoneID) *Bone {
	if !s.validID(id) {
		return nil
	}
	return s.bones[id]
}

func (s *Skeleton) BoneID(name string) (BoneID, bool) {
	for _, b := range s.bones {
		if b.layout.Name == name {
			return b.id, true
		}
	}
	return -1, false
}

// BoneByLayout finds the bone built from a layout with the same name.
func (s *Skeleton) BoneByLayout(layout BoneLayout) *Bone {
	if id, ok := s.BoneID(layout.Name); ok {
		return s.bones[id]
	}
	return nil
}

func (s *Skeleton) JointLayouts() []JointLayout { return s.joints }

func (s *Skeleton) SphericalJoints() []Joint { return s.spherical }
func (s *Skeleton) RevoluteJoints() []Joint { return s.revolute }

// Actors lists every bone's actor in bone order.
func (s *Skeleton) Actors() []Actor {
	actors := make([]Actor, 0, len(s.bones))
	for _, b := range s.bones {
		if b.Actor() != nil {
			actors = append(actors, b.Actor())
		}
	}
	return actors
}

// RootActor is the actor of bone 0, or nil before Initialize.
func (s *Skeleton) RootActor() Actor {
	if len(s.bones) == 0 {
		return nil
	}
	return s.bones[0].Actor()
}

func (s *Skeleton) Initialized() bool { return s.initialized }
