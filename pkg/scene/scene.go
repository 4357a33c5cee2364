package scene

import (
	"fmt"
	"regexp"

	"github.com/chazu/collider/pkg/geom"
	"github.com/chazu/collider/pkg/kernel"
)

// Mode is the interaction mode that decides which vertices of the active
// object feed a proxy.
type Mode int

const (
	ObjectMode Mode = iota // every vertex of the object
	EditMode               // only the selected vertices
)

func (m Mode) String() string {
	switch m {
	case ObjectMode:
		return "object"
	case EditMode:
		return "edit"
	}
	return fmt.Sprintf("Mode(%d)", int(m))
}

// Object is a named mesh entity placed in the world.
type Object struct {
	Name      string             `json:"name"`
	Mesh      *kernel.Descriptor `json:"mesh"`
	Transform geom.Transform     `json:"transform"`
	Selected  []int              `json:"selected,omitempty"` // vertex indices selected in edit mode
	Collider  bool               `json:"collider,omitempty"` // created by the proxy generator
}

// Scene is an ordered collection of uniquely named objects. Object order is
// insertion order and is the order used for block renumbering.
//
// A Scene is not safe for concurrent use; the App serializes access.
type Scene struct {
	Mode Mode `json:"mode"`

	objects  []*Object
	index    map[string]*Object
	active   string
	selected map[string]bool
}

// New creates an empty scene in object mode.
func New() *Scene {
	return &Scene{
		index:    make(map[string]*Object),
		selected: make(map[string]bool),
	}
}

// Len returns the number of objects.
func (s *Scene) Len() int {
	return len(s.objects)
}

// Objects returns the objects in scene order.
func (s *Scene) Objects() []*Object {
	return append([]*Object(nil), s.objects...)
}

// Names returns every object name in scene order.
func (s *Scene) Names() []string {
	names := make([]string, len(s.objects))
	for i, o := range s.objects {
		names[i] = o.Name
	}
	return names
}

// Lookup returns the object with the given name, or nil.
func (s *Scene) Lookup(name string) *Object {
	return s.index[name]
}

// Add inserts o, renaming it with a numeric suffix if its name is taken,
// and returns the name it was stored under. Faces are checked first, and
// collider meshes must also be closed and free of loose vertices. On error the scene
// is left unchanged.
func (s *Scene) Add(o *Object) (string, error) {
	if o == nil || o.Mesh == nil {
		return "", fmt.Errorf("scene: object has no mesh")
	}
	if o.Name == "" {
		return "", fmt.Errorf("scene: object has no name")
	}
	check := o.Mesh.CheckFaces
	if o.Collider {
		check = o.Mesh.Validate
	}
	if err := check(); err != nil {
		return "", fmt.Errorf("scene: add %q: %w", o.Name, err)
	}
	if o.Collider && !o.Mesh.IsClosed() {
		return "", fmt.Errorf("scene: add %q: collider surface is not closed", o.Name)
	}
	for _, vi := range o.Selected {
		if vi < 0 || vi >= o.Mesh.VertexCount() {
			return "", fmt.Errorf("scene: add %q: selected vertex %d out of range", o.Name, vi)
		}
	}
	o.Name = s.UniqueName(o.Name)
	s.objects = append(s.objects, o)
	s.index[o.Name] = o
	return o.Name, nil
}

// Remove deletes the named object. It reports whether it existed.
func (s *Scene) Remove(name string) bool {
	o, ok := s.index[name]
	if !ok {
		return false
	}
	delete(s.index, name)
	delete(s.selected, name)
	if s.active == name {
		s.active = ""
	}
	for i, cand := range s.objects {
		if cand == o {
			s.objects = append(s.objects[:i], s.objects[i+1:]...)
			break
		}
	}
	return true
}

// Rename changes an object's name, resolving clashes with a numeric
// suffix, and returns the name actually used.
func (s *Scene) Rename(old, name string) (string, error) {
	o, ok := s.index[old]
	if !ok {
		return "", fmt.Errorf("scene: no object named %q", old)
	}
	if name == old {
		return old, nil
	}
	delete(s.index, old)
	name = s.UniqueName(name)
	s.relabel(o, old, name)
	return name, nil
}

// relabel moves o from old to name in the index, active and selection.
func (s *Scene) relabel(o *Object, old, name string) {
	o.Name = name
	s.index[name] = o
	if s.active == old {
		s.active = name
	}
	if s.selected[old] {
		delete(s.selected, old)
		s.selected[name] = true
	}
}

// suffixPattern matches a trailing ".NNN" uniqueness suffix.
var suffixPattern = regexp.MustCompile(`\.\d{3}$`)

// UniqueName returns name if it is free, otherwise the first free
// "<base>.001", "<base>.002", ... where base drops any existing suffix.
func (s *Scene) UniqueName(name string) string {
	if _, taken := s.index[name]; !taken {
		return name
	}
	base := suffixPattern.ReplaceAllString(name, "")
	for i := 1; ; i++ {
		cand := fmt.Sprintf("%s.%03d", base, i)
		if _, taken := s.index[cand]; !taken {
			return cand
		}
	}
}

// Active returns the active object, or nil.
func (s *Scene) Active() *Object {
	return s.index[s.active]
}

// SetActive makes the named object active. An empty name clears it.
func (s *Scene) SetActive(name string) error {
	if name != "" && s.index[name] == nil {
		return fmt.Errorf("scene: no object named %q", name)
	}
	s.active = name
	return nil
}

// Select replaces the selection with the named objects.
func (s *Scene) Select(names ...string) error {
	for _, n := range names {
		if s.index[n] == nil {
			return fmt.Errorf("scene: no object named %q", n)
		}
	}
	s.selected = make(map[string]bool, len(names))
	for _, n := range names {
		s.selected[n] = true
	}
	return nil
}

// Selected returns the selected object names in scene order.
func (s *Scene) Selected() []string {
	var names []string
	for _, o := range s.objects {
		if s.selected[o.Name] {
			names = append(names, o.Name)
		}
	}
	return names
}

// IsSelected reports whether the named object is selected.
func (s *Scene) IsSelected(name string) bool {
	return s.selected[name]
}
