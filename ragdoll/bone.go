package ragdoll

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"
)

// Bone owns the rigid body standing in for one bone of the skinned mesh.
//
// All matrices are column-major and compose right to left. Every transform
// passed in must be rigid and invertible; degenerate scale gives undefined
// results and is not checked.
type Bone struct {
	id     BoneID
	layout BoneLayout
	scene  Scene
	conv   Converter
	opts   Options

	index       int        // index into the mesh bone table
	totalOffset mgl32.Mat4 // bind offset * axis correction, fixed once mapped

	modelWorld   mgl32.Mat4
	actorWorld   mgl32.Mat4
	actorToModel mgl32.Mat4

	actor Actor
}

func newBone(scene Scene, id BoneID, layout BoneLayout, opts Options) *Bone {
	return &Bone{
		id:           id,
		layout:       layout,
		scene:        scene,
		conv:         opts.Converter,
		opts:         opts,
		index:        -1,
		totalOffset:  mgl32.Ident4(),
		modelWorld:   mgl32.Ident4(),
		actorWorld:   mgl32.Ident4(),
		actorToModel: mgl32.Ident4(),
	}
}

// NewBone returns an unmapped bone with no actor.
func NewBone(scene Scene, layout BoneLayout, opts Options) *Bone {
	return newBone(scene, 0, layout, opts.normalize())
}

// Initialize maps the bone onto the mesh and creates its actor, kinematic
// and non-colliding, at the bind pose.
func (b *Bone) Initialize(table BoneTable, group CollisionGroup) error {
	if err := b.mapToMesh(table); err != nil {
		return err
	}
	return b.createActor(group)
}

func (b *Bone) mapToMesh(table BoneTable) error {
	if table == nil {
		return ErrNoMesh
	}
	mb, ok := table.FindBone(b.layout.Name)
	if !ok {
		return errors.Wrapf(ErrBoneNotFound, "%q", b.layout.Name)
	}
	b.index = mb.Index
	b.totalOffset = mb.Offset.Mul4(AxisCorrection())
	b.actorWorld = b.modelWorld.Mul4(b.totalOffset)
	return nil
}

func (b *Bone) createActor(group CollisionGroup) error {
	if b.actor != nil {
		return errors.Wrapf(ErrInitialized, "bone %q", b.layout.Name)
	}
	if b.scene == nil {
		return ErrNoScene
	}
	actor, err := b.scene.CreateActor(ActorDesc{
		Shape:          b.layout.Shape,
		LocalPose:      localPose(b.layout.Shape),
		Pose:           b.conv.ToPose(b.actorWorld),
		Group:          group,
		Density:        b.opts.Density,
		AngularDamping: b.opts.angularDamping(),
		UserData:       b,
	})
	if err != nil {
		return errors.Wrapf(err, "creating actor for bone %q", b.layout.Name)
	}
	b.actor = actor
	b.actor.RaiseFlag(AF_kinematic)
	b.actor.RaiseFlag(AF_nocollision)
	return nil
}

// UpdateAnimationDrive places the actor at the animated pose:
// modelWorld * animation * totalOffset.
func (b *Bone) UpdateAnimationDrive(animation mgl32.Mat4) {
	if b.actor == nil {
		return
	}
	b.actorWorld = b.modelWorld.Mul4(animation).Mul4(b.totalOffset)
	b.actor.SetGlobalPose(b.conv.ToPose(b.actorWorld))
}

// UpdatePhysicsDrive reads the simulated pose back into model space:
// inverse(modelWorld) * actorWorld * inverse(totalOffset).
func (b *Bone) UpdatePhysicsDrive() {
	if b.actor == nil {
		return
	}
	b.actorWorld = b.conv.ToMatrix(b.actor.GlobalPose())
	b.actorToModel = b.modelWorld.Inv().Mul4(b.actorWorld).Mul4(b.totalOffset.Inv())
}

// Release destroys the actor. Later calls do nothing.
func (b *Bone) Release() {
	if b.actor != nil && b.scene != nil {
		b.scene.ReleaseActor(b.actor)
	}
	b.actor = nil
}

func (b *Bone) SetModelWorldTransform(m mgl32.Mat4) { b.modelWorld = m }

func (b *Bone) RaiseFlag(f ActorFlag) {
	if b.actor != nil {
		b.actor.RaiseFlag(f)
	}
}

func (b *Bone) ClearFlag(f ActorFlag) {
	if b.actor != nil {
		b.actor.ClearFlag(f)
	}
}

func (b *Bone) SetKinematic() { b.RaiseFlag(AF_kinematic) }
func (b *Bone) SetDynamic() { b.ClearFlag(AF_kinematic) }
func (b *Bone) SetNonColliding() { b.RaiseFlag(AF_nocollision) }
func (b *Bone) SetCollidable() { b.ClearFlag(AF_nocollision) }

func (b *Bone) ID() BoneID { return b.id }
func (b *Bone) Layout() BoneLayout { return b.layout }
func (b *Bone) Actor() Actor { return b.actor }
func (b *Bone) Index() int { return b.index }
func (b *Bone) TotalOffset() mgl32.Mat4 { return b.totalOffset }
func (b *Bone) ModelWorldTransform() mgl32.Mat4 { return b.modelWorld }
func (b *Bone) ActorWorld() mgl32.Mat4 { return b.actorWorld }
func (b *Bone) ActorToModel() mgl32.Mat4 { return b.actorToModel }
