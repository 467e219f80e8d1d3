package rigfile

import (
	"fmt"
	"io"
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/ini.v1"

	"github.com/ikemen-engine/ikemen-ragdoll/ragdoll"
)

const (
	bonePrefix  = "Bone "
	jointPrefix = "Joint "
)

// Repeated sections are kept apart so that a bone listed twice fails
// validation instead of merging.
var loadOptions = ini.LoadOptions{
	SkipUnrecognizableLines: true,
	AllowShadows:            false,
	AllowNonUniqueSections:  true,
}

// ParseINI reads a layout like
//
//	[Ragdoll]
//	name = zombie
//
//	[Bone Spine0]
//	shape  = capsule
//	height = 0.15
//	radius = 0.2
//
//	[Joint 1]
//	type   = spherical
//	bone1  = Spine0
//	bone2  = Spine1
//	anchor = bone2
//	axis   = 0, 1, 0
//
// Bones are taken in file order; the first one is the root.
func ParseINI(data []byte) (ragdoll.Layout, error) {
	f, err := ini.LoadSources(loadOptions, data)
	if err != nil {
		return ragdoll.Layout{}, errors.Wrap(err, "failed to parse ini")
	}
	var l ragdoll.Layout
	l.Name = f.Section("Ragdoll").Key("name").String()
	for _, sec := range f.Sections() {
		name := sec.Name()
		switch {
		case strings.HasPrefix(name, bonePrefix):
			b, err := iniBone(sec, strings.TrimSpace(strings.TrimPrefix(name, bonePrefix)))
			if err != nil {
				return ragdoll.Layout{}, errors.Wrapf(err, "[%s]", name)
			}
			l.Bones = append(l.Bones, b)
		case strings.HasPrefix(name, jointPrefix):
			j, err := iniJoint(sec)
			if err != nil {
				return ragdoll.Layout{}, errors.Wrapf(err, "[%s]", name)
			}
			l.Joints = append(l.Joints, j)
		}
	}
	if err := l.Validate(); err != nil {
		return ragdoll.Layout{}, err
	}
	return l, nil
}

func iniBone(sec *ini.Section, name string) (ragdoll.BoneLayout, error) {
	height, err := sec.Key("height").Float64()
	if err != nil && sec.HasKey("height") {
		return ragdoll.BoneLayout{}, errors.Wrap(err, "height")
	}
	radius, err := sec.Key("radius").Float64()
	if err != nil {
		return ragdoll.BoneLayout{}, errors.Wrap(err, "radius")
	}
	sh, err := parseShape(sec.Key("shape").String(), float32(height), float32(radius))
	if err != nil {
		return ragdoll.BoneLayout{}, err
	}
	return ragdoll.BoneLayout{Name: name, Shape: sh}, nil
}

func iniJoint(sec *ini.Section) (ragdoll.JointRef, error) {
	var j ragdoll.JointRef
	var err error
	if j.Kind, err = parseJointKind(sec.Key("type").String()); err != nil {
		return j, err
	}
	if j.Anchor, err = parseAnchor(sec.Key("anchor").String()); err != nil {
		return j, err
	}
	j.BoneA = sec.Key("bone1").String()
	j.BoneB = sec.Key("bone2").String()
	axis, err := sec.Key("axis").StrictFloat64s(",")
	if err != nil {
		return j, errors.Wrap(err, "axis")
	}
	j.Axis, err = parseAxis(axis)
	return j, err
}

// EncodeINI writes l in the format read by ParseINI.
func EncodeINI(w io.Writer, l ragdoll.Layout) error {
	f := ini.Empty(loadOptions)
	f.Section("Ragdoll").Key("name").SetValue(l.Name)
	for _, b := range l.Bones {
		sec := f.Section(bonePrefix + b.Name)
		kind, height, radius := shapeFields(b.Shape)
		sec.Key("shape").SetValue(kind)
		if kind == "capsule" {
			sec.Key("height").SetValue(fmt.Sprint(height))
		}
		sec.Key("radius").SetValue(fmt.Sprint(radius))
	}
	for i, j := range l.Joints {
		sec := f.Section(fmt.Sprintf("%s%d", jointPrefix, i+1))
		sec.Key("type").SetValue(j.Kind.String())
		sec.Key("bone1").SetValue(j.BoneA)
		sec.Key("bone2").SetValue(j.BoneB)
		sec.Key("anchor").SetValue(anchorName(j.Anchor))
		sec.Key("axis").SetValue(fmt.Sprintf("%v, %v, %v", j.Axis[0], j.Axis[1], j.Axis[2]))
	}
	_, err := f.WriteTo(w)
	return errors.Wrap(err, "failed to write ini")
}
