// Package rigfile reads and writes ragdoll layouts. A layout is stored either
// as an INI file, one section per bone and per joint, or as JSON.
package rigfile

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"

	"github.com/ikemen-engine/ikemen-ragdoll/ragdoll"
)

// Load reads the layout at path, choosing the format from the extension.
func Load(path string) (ragdoll.Layout, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return ragdoll.Layout{}, errors.Wrap(err, "failed to read ragdoll layout")
	}
	var l ragdoll.Layout
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".ini", ".rag":
		l, err = ParseINI(data)
	case ".json":
		l, err = ParseJSON(data)
	default:
		return ragdoll.Layout{}, errors.Errorf("%s: unknown ragdoll layout format %q", path, ext)
	}
	if err != nil {
		return ragdoll.Layout{}, errors.Wrapf(err, "%s", path)
	}
	if l.Name == "" {
		l.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return l, nil
}

func parseShape(kind string, height, radius float32) (ragdoll.Shape, error) {
	switch strings.ToLower(kind) {
	case "capsule":
		if height < 0 || radius <= 0 {
			return nil, errors.Errorf("bad capsule size %v x %v", height, radius)
		}
		return ragdoll.Capsule{Height: height, Radius: radius}, nil
	case "sphere":
		if radius <= 0 {
			return nil, errors.Errorf("bad sphere radius %v", radius)
		}
		return ragdoll.Sphere{Radius: radius}, nil
	}
	return nil, errors.Errorf("unknown shape %q", kind)
}

// shapeFields is the inverse of parseShape.
func shapeFields(sh ragdoll.Shape) (kind string, height, radius float32) {
	switch s := sh.(type) {
	case ragdoll.Capsule:
		return "capsule", s.Height, s.Radius
	case ragdoll.Sphere:
		return "sphere", 0, s.Radius
	}
	return "", 0, 0
}

func parseJointKind(s string) (ragdoll.JointKind, error) {
	switch strings.ToLower(s) {
	case "spherical":
		return ragdoll.JK_spherical, nil
	case "revolute":
		return ragdoll.JK_revolute, nil
	}
	return 0, errors.Errorf("unknown joint type %q", s)
}

// parseAnchor defaults to the second bone, where authored files put the
// anchor unless told otherwise.
func parseAnchor(s string) (ragdoll.AnchorBone, error) {
	switch strings.ToLower(s) {
	case "", "bone2":
		return ragdoll.Anchor_boneB, nil
	case "bone1":
		return ragdoll.Anchor_boneA, nil
	}
	return 0, errors.Errorf("unknown joint anchor %q", s)
}

func anchorName(a ragdoll.AnchorBone) string {
	if a == ragdoll.Anchor_boneA {
		return "bone1"
	}
	return "bone2"
}

func parseAxis(v []float64) (mgl32.Vec3, error) {
	if len(v) != 3 {
		return mgl32.Vec3{}, errors.Errorf("axis needs 3 components, got %d", len(v))
	}
	axis := mgl32.Vec3{float32(v[0]), float32(v[1]), float32(v[2])}
	if axis.Len() == 0 {
		return mgl32.Vec3{}, errors.New("zero joint axis")
	}
	return axis.Normalize(), nil
}
