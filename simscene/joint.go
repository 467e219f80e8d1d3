package simscene

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/ikemen-engine/ikemen-ragdoll/ragdoll"
)

// Joint holds the anchor fixed in both bodies. Only the positional part is
// simulated: angular limits and springs are kept in the descriptor.
type Joint struct {
	desc           ragdoll.JointDesc
	a, b           *Actor
	localA, localB mgl32.Vec3
}

func (j *Joint) Kind() ragdoll.JointKind { return j.desc.Params.Kind() }

func (j *Joint) Desc() ragdoll.JointDesc { return j.desc }

// Anchors returns the joint anchor as seen from each body.
func (j *Joint) Anchors() (a, b mgl32.Vec3) {
	return j.a.pose.toWorld(j.localA), j.b.pose.toWorld(j.localB)
}

// slack is how far apart the anchors may drift before projection.
func (j *Joint) slack() (float32, bool) {
	switch p := j.desc.Params.(type) {
	case ragdoll.SphericalParams:
		if p.Projection == ragdoll.Projection_pointmindist {
			return p.ProjectionDistance, true
		}
		return 0, false
	case ragdoll.RevoluteParams:
		return 0, true
	}
	return 0, false
}

// project moves the bodies, weighted by inverse mass, until the anchors are
// within the joint's slack.
func (j *Joint) project() {
	limit, ok := j.slack()
	if !ok {
		return
	}
	pa, pb := j.Anchors()
	d := pa.Sub(pb)
	dist := d.Len()
	if dist <= limit || dist == 0 {
		return
	}
	wa, wb := j.a.invMass(), j.b.invMass()
	if wa+wb == 0 {
		return
	}
	corr := d.Mul((dist - limit) / dist / (wa + wb))
	j.a.pose.Pos = j.a.pose.Pos.Sub(j.a.lockPos(corr.Mul(wa)))
	j.b.pose.Pos = j.b.pose.Pos.Add(j.b.lockPos(corr.Mul(wb)))
}
