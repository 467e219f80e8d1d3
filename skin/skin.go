// Package skin reads the bone table of a skinned glTF model.
package skin

import (
	"os"
	"path/filepath"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"
	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"

	"github.com/ikemen-engine/ikemen-ragdoll/ragdoll"
)

// Table is the bone table of one glTF skin, in joint order.
type Table struct {
	Name   string
	bones  []ragdoll.MeshBone
	byName map[string]int
}

// Load decodes a .gltf or .glb file and returns the table of its first skin.
// External buffers are resolved relative to the file.
func Load(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open model")
	}
	defer f.Close()

	doc := new(gltf.Document)
	if err := gltf.NewDecoderFS(f, os.DirFS(filepath.Dir(path))).Decode(doc); err != nil {
		return nil, errors.Wrapf(err, "failed to decode gltf from file '%s'", path)
	}
	return FromDocument(doc, 0)
}

// FromDocument builds the table of doc.Skins[skin]. Each bone's offset is its
// bind pose, the inverse of the skin's inverse bind matrix.
func FromDocument(doc *gltf.Document, skin int) (*Table, error) {
	if skin < 0 || skin >= len(doc.Skins) {
		return nil, errors.Errorf("model has no skin %d", skin)
	}
	s := doc.Skins[skin]

	var inverseBind [][4][4]float32
	if s.InverseBindMatrices != nil {
		var matrixBuffer [][4][4]float32
		matrices, err := modeler.ReadAccessor(doc, doc.Accessors[*s.InverseBindMatrices], matrixBuffer)
		if err != nil {
			return nil, errors.Wrap(err, "failed to read inverse bind matrices")
		}
		inverseBind = matrices.([][4][4]float32)
		if len(inverseBind) < len(s.Joints) {
			return nil, errors.Errorf("skin %d has %d joints but %d inverse bind matrices", skin, len(s.Joints), len(inverseBind))
		}
	}

	t := &Table{Name: s.Name, byName: make(map[string]int, len(s.Joints))}
	for i, j := range s.Joints {
		if int(j) >= len(doc.Nodes) {
			return nil, errors.Errorf("skin %d joint %d points at missing node %d", skin, i, j)
		}
		name := doc.Nodes[j].Name
		offset := mgl32.Ident4()
		if inverseBind != nil {
			offset = toMat4(inverseBind[i]).Inv()
		}
		t.bones = append(t.bones, ragdoll.MeshBone{Name: name, Index: i, Offset: offset})
		if _, ok := t.byName[name]; !ok {
			t.byName[name] = i
		}
	}
	return t, nil
}

// toMat4 takes glTF's column-major layout, which mgl32 shares.
func toMat4(m [4][4]float32) mgl32.Mat4 {
	var out mgl32.Mat4
	for c := 0; c < 4; c++ {
		copy(out[c*4:c*4+4], m[c][:])
	}
	return out
}

func (t *Table) BoneCount() int { return len(t.bones) }

// FindBone returns the first joint with the given node name.
func (t *Table) FindBone(name string) (ragdoll.MeshBone, bool) {
	i, ok := t.byName[name]
	if !ok {
		return ragdoll.MeshBone{}, false
	}
	return t.bones[i], true
}

func (t *Table) Bones() []ragdoll.MeshBone { return t.bones }
