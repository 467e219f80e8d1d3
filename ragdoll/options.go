package ragdoll

import (
	"log"
	"os"
)

const (
	DefaultDensity         = 10
	DefaultAngularDamping  = 0.75
	DefaultMovingThreshold = 4

	// NoAngularDamping turns angular damping off; a zero AngularDamping
	// takes the default.
	NoAngularDamping = -1
)

// Options configures how a ragdoll creates its bodies. Zero fields take the
// defaults above.
type Options struct {
	Group          CollisionGroup
	Density        float32
	AngularDamping float32
	Logger         *log.Logger
	Converter      Converter
	// ReleaseJointsWhileAnimating destroys the joint graph when entering
	// AnimationDrives and rebuilds it when entering PhysicsDrives.
	ReleaseJointsWhileAnimating bool
}

func (o Options) normalize() Options {
	if o.Density <= 0 {
		o.Density = DefaultDensity
	}
	if o.AngularDamping == 0 {
		o.AngularDamping = DefaultAngularDamping
	}
	if o.Logger == nil {
		o.Logger = log.New(os.Stderr, "ragdoll: ", log.LstdFlags)
	}
	if o.Converter == nil {
		o.Converter = RigidConverter{}
	}
	return o
}

func (o Options) angularDamping() float32 {
	if o.AngularDamping < 0 {
		return 0
	}
	return o.AngularDamping
}
