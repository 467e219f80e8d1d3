package main

import (
	"fmt"
	"os"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	"github.com/ikemen-engine/ikemen-ragdoll/ragdoll"
)

// saveSnapshot writes the ragdoll state, one record per body, in the form
//
//	{"mode": "physics", "actors": [{"pos": [x,y,z], "rot": [w,x,y,z], "vel": [x,y,z]}]}
func saveSnapshot(path string, snap ragdoll.Snapshot) error {
	data := []byte(`{"actors":[]}`)
	data, _ = sjson.SetBytes(data, "mode", snap.Mode.String())
	for i, a := range snap.Actors {
		base := fmt.Sprintf("actors.%d.", i)
		q := a.Pose.Rot
		data, _ = sjson.SetBytes(data, base+"pos", a.Pose.Pos[:])
		data, _ = sjson.SetBytes(data, base+"rot", []float32{q.W, q.V[0], q.V[1], q.V[2]})
		data, _ = sjson.SetBytes(data, base+"vel", a.LinearVelocity[:])
	}
	return os.WriteFile(path, data, 0o644)
}

func loadSnapshot(path string) (ragdoll.Snapshot, error) {
	var snap ragdoll.Snapshot
	data, err := os.ReadFile(path)
	if err != nil {
		return snap, err
	}
	if !gjson.ValidBytes(data) {
		return snap, fmt.Errorf("failed to parse snapshot %s: invalid json", path)
	}
	if snap.Mode, err = ragdoll.ParseMode(gjson.GetBytes(data, "mode").String()); err != nil {
		return snap, fmt.Errorf("failed to parse snapshot %s: %w", path, err)
	}
	vec := func(r gjson.Result) (v mgl32.Vec3) {
		for i, c := range r.Array() {
			if i < 3 {
				v[i] = float32(c.Float())
			}
		}
		return
	}
	gjson.GetBytes(data, "actors").ForEach(func(_, a gjson.Result) bool {
		rot := a.Get("rot").Array()
		q := mgl32.QuatIdent()
		if len(rot) == 4 {
			q = mgl32.Quat{W: float32(rot[0].Float()), V: mgl32.Vec3{float32(rot[1].Float()), float32(rot[2].Float()), float32(rot[3].Float())}}
		}
		snap.Actors = append(snap.Actors, ragdoll.ActorState{
			Pose:           ragdoll.Pose{Pos: vec(a.Get("pos")), Rot: q},
			LinearVelocity: vec(a.Get("vel")),
		})
		return true
	})
	return snap, nil
}
