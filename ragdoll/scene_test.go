package ragdoll

import (
	"io"
	"log"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"
)

// recScene records every call the ragdoll makes into the engine.
type recScene struct {
	actors       []*recActor
	joints       []*recJoint
	created      int
	released     int
	jointsMade   int
	jointsFreed  int
	failActorAt  int // creation number that fails, 0 for never
	failJointAt  int
	lastJointDsc JointDesc
}

type recActor struct {
	desc     ActorDesc
	pose     Pose
	vel      mgl32.Vec3
	flags    ActorFlag
	raised   map[ActorFlag]int
	cleared  map[ActorFlag]int
	poseSets int
	released bool
}

type recJoint struct {
	desc JointDesc
}

func (j *recJoint) Kind() JointKind { return j.desc.Params.Kind() }

func (s *recScene) CreateActor(desc ActorDesc) (Actor, error) {
	s.created++
	if s.failActorAt == s.created {
		return nil, errors.New("out of actors")
	}
	a := &recActor{
		desc:    desc,
		pose:    desc.Pose,
		vel:     desc.LinearVelocity,
		raised:  map[ActorFlag]int{},
		cleared: map[ActorFlag]int{},
	}
	s.actors = append(s.actors, a)
	return a, nil
}

func (s *recScene) ReleaseActor(a Actor) {
	s.released++
	a.(*recActor).released = true
}

func (s *recScene) CreateJoint(desc JointDesc) (Joint, error) {
	s.jointsMade++
	if s.failJointAt == s.jointsMade {
		return nil, errors.New("out of joints")
	}
	s.lastJointDsc = desc
	j := &recJoint{desc: desc}
	s.joints = append(s.joints, j)
	return j, nil
}

func (s *recScene) ReleaseJoint(j Joint) {
	s.jointsFreed++
	for i, rj := range s.joints {
		if rj == j {
			s.joints = append(s.joints[:i], s.joints[i+1:]...)
			break
		}
	}
}

func (s *recScene) liveActors() int {
	n := 0
	for _, a := range s.actors {
		if !a.released {
			n++
		}
	}
	return n
}

func (a *recActor) GlobalPose() Pose { return a.pose }
func (a *recActor) SetGlobalPose(p Pose) {
	a.poseSets++
	a.pose = p
}
func (a *recActor) GlobalPosition() mgl32.Vec3 { return a.pose.Pos }
func (a *recActor) LinearVelocity() mgl32.Vec3 { return a.vel }
func (a *recActor) SetLinearVelocity(v mgl32.Vec3) { a.vel = v }
func (a *recActor) RaiseFlag(f ActorFlag) {
	a.raised[f]++
	a.flags |= f
}
func (a *recActor) ClearFlag(f ActorFlag) {
	a.cleared[f]++
	a.flags &^= f
}
func (a *recActor) HasFlag(f ActorFlag) bool { return a.flags&f == f }

func (a *recActor) flagWrites() int {
	n := 0
	for _, c := range a.raised {
		n += c
	}
	for _, c := range a.cleared {
		n += c
	}
	return n
}

// chainTable is a mesh with a bone the ragdoll does not use at index 1.
func chainTable() StaticBoneTable {
	return StaticBoneTable{
		{Name: "Root", Offset: mgl32.Translate3D(0, 1, 0)},
		{Name: "Cloth", Offset: mgl32.Translate3D(5, 0, 0)},
		{Name: "Mid", Offset: mgl32.Translate3D(0, 2, 0).Mul4(mgl32.HomogRotate3DZ(mgl32.DegToRad(90)))},
		{Name: "Tip", Offset: mgl32.Translate3D(0, 3, 0.5).Mul4(mgl32.HomogRotate3DX(0.3))},
	}
}

func chainLayout() Layout {
	return Layout{
		Name: "chain",
		Bones: []BoneLayout{
			{Name: "Root", Shape: Capsule{Height: 0.5, Radius: 0.2}},
			{Name: "Mid", Shape: Capsule{Height: 0.4, Radius: 0.1}},
			{Name: "Tip", Shape: Sphere{Radius: 0.1}},
		},
		Joints: []JointRef{
			{Kind: JK_spherical, BoneA: "Root", BoneB: "Mid", Anchor: Anchor_boneB, Axis: mgl32.Vec3{0, 1, 0}},
			{Kind: JK_spherical, BoneA: "Mid", BoneB: "Tip", Anchor: Anchor_boneB, Axis: mgl32.Vec3{0, 1, 0}},
		},
	}
}

func chainSkeleton(scene Scene) *Skeleton {
	s := NewSkeleton(scene, quietOptions())
	root := s.AddBone(BoneLayout{Name: "Root", Shape: Capsule{Height: 0.5, Radius: 0.2}})
	mid := s.AddBone(BoneLayout{Name: "Mid", Shape: Capsule{Height: 0.4, Radius: 0.1}})
	tip := s.AddBone(BoneLayout{Name: "Tip", Shape: Sphere{Radius: 0.1}})
	s.AddJoint(JointLayout{Kind: JK_spherical, BoneA: root, BoneB: mid, Anchor: Anchor_boneB, Axis: mgl32.Vec3{0, 1, 0}})
	s.AddJoint(JointLayout{Kind: JK_spherical, BoneA: mid, BoneB: tip, Anchor: Anchor_boneB, Axis: mgl32.Vec3{0, 1, 0}})
	return s
}

func rigid(x, y, z, angle float32, axis mgl32.Vec3) mgl32.Mat4 {
	return mgl32.Translate3D(x, y, z).Mul4(mgl32.HomogRotate3D(angle, axis.Normalize()))
}

func quietOptions() Options {
	return Options{Logger: log.New(io.Discard, "", 0)}
}
