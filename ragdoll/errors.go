package ragdoll

import (
	"github.com/pkg/errors"
)

// Construction errors. They point at ragdoll data that does not match the
// mesh it is built for.
var (
	ErrBoneNotFound     = errors.New("ragdoll bone not found in mesh")
	ErrTopologyMismatch = errors.New("ragdoll needs exactly one joint less than bones")
	ErrUnknownBone      = errors.New("joint references an unknown bone")
	ErrInitialized      = errors.New("skeleton already initialized")
	ErrNoScene          = errors.New("no physics scene")
	ErrNoMesh           = errors.New("no mesh bone table")
	ErrNoSkeleton       = errors.New("no ragdoll skeleton built")
	ErrSnapshotMismatch = errors.New("snapshot does not match the ragdoll")
)
