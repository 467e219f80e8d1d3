package ragdoll

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"
)

// ActorState is what a save file keeps of one body.
type ActorState struct {
	Pose           Pose
	LinearVelocity mgl32.Vec3
}

// Snapshot records which side was authoritative and, in PhysicsDrives, the
// state of every body in bone order. Animation driven bodies are fully
// determined by the animation, so their state is not kept.
type Snapshot struct {
	Mode   Mode
	Actors []ActorState
}

func (a *Animator) Capture() Snapshot {
	snap := Snapshot{Mode: a.mode}
	if a.skeleton == nil || a.mode != PhysicsDrives {
		return snap
	}
	for _, actor := range a.skeleton.Actors() {
		snap.Actors = append(snap.Actors, ActorState{
			Pose:           actor.GlobalPose(),
			LinearVelocity: actor.LinearVelocity(),
		})
	}
	return snap
}

// Restore switches to the snapshot's mode and, for a PhysicsDrives snapshot,
// puts every body back where it was.
func (a *Animator) Restore(snap Snapshot) error {
	s, err := a.mustSkeleton()
	if err != nil {
		return err
	}
	if !snap.Mode.valid() {
		return errors.Wrapf(ErrSnapshotMismatch, "mode %d", snap.Mode)
	}
	actors := s.Actors()
	if snap.Mode == PhysicsDrives && len(snap.Actors) != len(actors) {
		return errors.Wrapf(ErrSnapshotMismatch, "%d actor states for %d bodies", len(snap.Actors), len(actors))
	}
	a.SetMode(snap.Mode)
	if snap.Mode != PhysicsDrives {
		return nil
	}
	for i, st := range snap.Actors {
		actors[i].SetGlobalPose(st.Pose)
		actors[i].SetLinearVelocity(st.LinearVelocity)
	}
	return nil
}
