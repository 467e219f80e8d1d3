package ragdoll

import (
	"strings"

	"github.com/pkg/errors"
)

// Mode selects which side is authoritative for the bone transforms.
type Mode int32

const (
	// AnimationDrives writes the animated pose into the rigid bodies, which
	// stay kinematic and non-colliding.
	AnimationDrives Mode = iota
	// PhysicsDrives lets the simulation move the bodies and reads their
	// poses back into model space.
	PhysicsDrives
)

func (m Mode) String() string {
	switch m {
	case AnimationDrives:
		return "animation"
	case PhysicsDrives:
		return "physics"
	}
	return "unknown"
}

func (m Mode) valid() bool {
	return m == AnimationDrives || m == PhysicsDrives
}

// ParseMode accepts the mode names used in config files and scripts.
// "leech" and "seed" are the historical names of the two modes.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "animation", "leech":
		return AnimationDrives, nil
	case "physics", "seed":
		return PhysicsDrives, nil
	}
	return AnimationDrives, errors.Errorf("unknown ragdoll mode %q", s)
}
