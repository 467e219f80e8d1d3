package rigfile

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	"github.com/ikemen-engine/ikemen-ragdoll/ragdoll"
)

// ParseJSON reads a layout like
//
//	{"name": "zombie",
//	 "bones": [{"name": "Spine0", "shape": "capsule", "height": 0.15, "radius": 0.2}],
//	 "joints": [{"type": "spherical", "bone1": "Spine0", "bone2": "Spine1",
//	             "anchor": "bone2", "axis": [0, 1, 0]}]}
func ParseJSON(data []byte) (ragdoll.Layout, error) {
	if !gjson.ValidBytes(data) {
		return ragdoll.Layout{}, errors.New("invalid json")
	}
	var l ragdoll.Layout
	var err error
	l.Name = gjson.GetBytes(data, "name").String()

	gjson.GetBytes(data, "bones").ForEach(func(_, b gjson.Result) bool {
		var sh ragdoll.Shape
		sh, err = parseShape(b.Get("shape").String(), float32(b.Get("height").Float()), float32(b.Get("radius").Float()))
		if err != nil {
			err = errors.Wrapf(err, "bone %q", b.Get("name").String())
			return false
		}
		l.Bones = append(l.Bones, ragdoll.BoneLayout{Name: b.Get("name").String(), Shape: sh})
		return true
	})
	if err != nil {
		return ragdoll.Layout{}, err
	}

	gjson.GetBytes(data, "joints").ForEach(func(k, j gjson.Result) bool {
		var ref ragdoll.JointRef
		if ref, err = jsonJoint(j); err != nil {
			err = errors.Wrapf(err, "joint %v", k.Int())
			return false
		}
		l.Joints = append(l.Joints, ref)
		return true
	})
	if err != nil {
		return ragdoll.Layout{}, err
	}
	if err := l.Validate(); err != nil {
		return ragdoll.Layout{}, err
	}
	return l, nil
}

func jsonJoint(j gjson.Result) (ragdoll.JointRef, error) {
	ref := ragdoll.JointRef{
		BoneA: j.Get("bone1").String(),
		BoneB: j.Get("bone2").String(),
	}
	var err error
	if ref.Kind, err = parseJointKind(j.Get("type").String()); err != nil {
		return ref, err
	}
	if ref.Anchor, err = parseAnchor(j.Get("anchor").String()); err != nil {
		return ref, err
	}
	var axis []float64
	for _, c := range j.Get("axis").Array() {
		axis = append(axis, c.Float())
	}
	ref.Axis, err = parseAxis(axis)
	return ref, err
}

// EncodeJSON writes l in the format read by ParseJSON.
func EncodeJSON(l ragdoll.Layout) ([]byte, error) {
	data := []byte(`{"bones":[],"joints":[]}`)
	set := func(path string, v interface{}) (err error) {
		data, err = sjson.SetBytes(data, path, v)
		return
	}
	if err := set("name", l.Name); err != nil {
		return nil, err
	}
	for i, b := range l.Bones {
		kind, height, radius := shapeFields(b.Shape)
		p := fmt.Sprintf("bones.%d.", i)
		for _, kv := range []struct {
			k string
			v interface{}
		}{{"name", b.Name}, {"shape", kind}, {"height", height}, {"radius", radius}} {
			if kind == "sphere" && kv.k == "height" {
				continue
			}
			if err := set(p+kv.k, kv.v); err != nil {
				return nil, errors.Wrapf(err, "bone %q", b.Name)
			}
		}
	}
	for i, j := range l.Joints {
		p := fmt.Sprintf("joints.%d.", i)
		for _, kv := range []struct {
			k string
			v interface{}
		}{
			{"type", j.Kind.String()},
			{"bone1", j.BoneA},
			{"bone2", j.BoneB},
			{"anchor", anchorName(j.Anchor)},
			{"axis", []float32{j.Axis[0], j.Axis[1], j.Axis[2]}},
		} {
			if err := set(p+kv.k, kv.v); err != nil {
				return nil, errors.Wrapf(err, "joint %d", i)
			}
		}
	}
	return data, nil
}
