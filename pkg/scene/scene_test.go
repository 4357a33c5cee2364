package scene

import (
	"reflect"
	"strings"
	"testing"

	"github.com/chazu/collider/pkg/geom"
	"github.com/chazu/collider/pkg/kernel"
)

// tetra returns a small closed mesh.
func tetra() *kernel.Descriptor {
	return &kernel.Descriptor{
		Vertices: []geom.Point{{}, {X: 1}, {Y: 1}, {Z: 1}},
		Faces:    [][]int{{0, 2, 1}, {0, 1, 3}, {0, 3, 2}, {1, 2, 3}},
	}
}

// mustAdd adds an object named name and fails the test on error.
func mustAdd(t *testing.T, s *Scene, name string) string {
	t.Helper()
	got, err := s.Add(&Object{Name: name, Mesh: tetra()})
	if err != nil {
		t.Fatalf("Add(%q): %v", name, err)
	}
	return got
}

func TestNewScene(t *testing.T) {
	s := New()
	if s.Len() != 0 {
		t.Errorf("empty scene should have 0 objects, got %d", s.Len())
	}
	if s.Active() != nil {
		t.Error("empty scene should have no active object")
	}
	if s.Mode != ObjectMode {
		t.Errorf("mode = %s, want object", s.Mode)
	}
}

func TestAddAndLookup(t *testing.T) {
	s := New()
	name := mustAdd(t, s, "crate")
	if name != "crate" {
		t.Errorf("name = %q, want %q", name, "crate")
	}
	if o := s.Lookup("crate"); o == nil || o.Name != "crate" {
		t.Fatalf("Lookup(crate) = %v", o)
	}
	if s.Lookup("missing") != nil {
		t.Error("Lookup of a missing name should return nil")
	}
}

func TestAddDuplicateNames(t *testing.T) {
	s := New()
	got := []string{
		mustAdd(t, s, "CollisionBlock"),
		mustAdd(t, s, "CollisionBlock"),
		mustAdd(t, s, "CollisionBlock"),
		mustAdd(t, s, "CollisionBlock.001"),
	}
	want := []string{"CollisionBlock", "CollisionBlock.001", "CollisionBlock.002", "CollisionBlock.003"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("names = %v, want %v", got, want)
	}
}

func TestAddIsAtomic(t *testing.T) {
	s := New()
	mustAdd(t, s, "crate")

	tests := []struct {
		name string
		obj  *Object
	}{
		{"nil object", nil},
		{"no mesh", &Object{Name: "a"}},
		{"no name", &Object{Mesh: tetra()}},
		{"bad face", &Object{Name: "b", Mesh: &kernel.Descriptor{
			Vertices: []geom.Point{{}, {X: 1}, {Y: 1}},
			Faces:    [][]int{{0, 1, 7}},
		}}},
		{"bad selection", &Object{Name: "c", Mesh: tetra(), Selected: []int{9}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := s.Add(tt.obj); err == nil {
				t.Fatal("expected error")
			}
			if s.Len() != 1 {
				t.Fatalf("scene changed on failed add: %v", s.Names())
			}
		})
	}
}

func TestRemove(t *testing.T) {
	s := New()
	mustAdd(t, s, "a")
	mustAdd(t, s, "b")
	if err := s.SetActive("a"); err != nil {
		t.Fatal(err)
	}
	if err := s.Select("a", "b"); err != nil {
		t.Fatal(err)
	}

	if !s.Remove("a") {
		t.Fatal("Remove(a) should report true")
	}
	if s.Remove("a") {
		t.Fatal("second Remove(a) should report false")
	}
	if s.Active() != nil {
		t.Error("removing the active object should clear it")
	}
	if got := s.Selected(); !reflect.DeepEqual(got, []string{"b"}) {
		t.Errorf("selection = %v, want [b]", got)
	}
}

func TestRenameCarriesFlags(t *testing.T) {
	s := New()
	mustAdd(t, s, "a")
	mustAdd(t, s, "b")
	_ = s.SetActive("a")
	_ = s.Select("a")

	got, err := s.Rename("a", "b")
	if err != nil {
		t.Fatal(err)
	}
	if got != "b.001" {
		t.Errorf("rename = %q, want %q", got, "b.001")
	}
	if s.Active().Name != "b.001" {
		t.Errorf("active = %q, want b.001", s.Active().Name)
	}
	if !s.IsSelected("b.001") || s.IsSelected("a") {
		t.Errorf("selection = %v", s.Selected())
	}
	if _, err := s.Rename("nope", "x"); err == nil {
		t.Error("expected error renaming a missing object")
	}
}

func TestActiveAndSelection(t *testing.T) {
	s := New()
	mustAdd(t, s, "a")
	mustAdd(t, s, "b")

	if err := s.SetActive("zzz"); err == nil {
		t.Error("expected error activating a missing object")
	}
	if err := s.Select("a", "zzz"); err == nil {
		t.Error("expected error selecting a missing object")
	}
	if err := s.Select("b", "a"); err != nil {
		t.Fatal(err)
	}
	if got := s.Selected(); !reflect.DeepEqual(got, []string{"a", "b"}) {
		t.Errorf("selection = %v, want scene order [a b]", got)
	}
	if err := s.SetActive(""); err != nil {
		t.Errorf("clearing active: %v", err)
	}
}

func TestNamingNext(t *testing.T) {
	tests := []struct {
		name     string
		naming   Naming
		existing []string
		source   string
		want     string
	}{
		{
			name:   "first block",
			naming: DefaultNaming(),
			source: "Cube",
			want:   "UCX_Cube_01",
		},
		{
			name:     "counts every prefixed name",
			naming:   DefaultNaming(),
			existing: []string{"Cube", "UCX_Cube_01", "UCX_Other_01", "Light"},
			source:   "Cube",
			want:     "UCX_Cube_03",
		},
		{
			name:     "custom prefix",
			naming:   Naming{Prefix: "COL_", UseActive: true},
			existing: []string{"UCX_Cube_01", "COL_Cube_01"},
			source:   "Cube",
			want:     "COL_Cube_02",
		},
		{
			name:     "custom name",
			naming:   Naming{Prefix: "UCX_", Custom: "CollisionBlock"},
			existing: []string{"CollisionBlock"},
			source:   "Cube",
			want:     "CollisionBlock",
		},
		{
			name:     "number past nine",
			naming:   DefaultNaming(),
			existing: strings.Fields("UCX_1 UCX_2 UCX_3 UCX_4 UCX_5 UCX_6 UCX_7 UCX_8 UCX_9 UCX_10"),
			source:   "Rock",
			want:     "UCX_Rock_11",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.naming.Next(tt.existing, tt.source); got != tt.want {
				t.Errorf("Next = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestNextNameThenAdd(t *testing.T) {
	s := New()
	mustAdd(t, s, "Cube")
	n := Naming{Custom: "CollisionBlock"}

	first := mustAdd(t, s, s.NextName(n, "Cube"))
	second := mustAdd(t, s, s.NextName(n, "Cube"))
	if first != "CollisionBlock" || second != "CollisionBlock.001" {
		t.Errorf("custom blocks = %q, %q", first, second)
	}

	d := DefaultNaming()
	if got := mustAdd(t, s, s.NextName(d, "Cube")); got != "UCX_Cube_01" {
		t.Errorf("block = %q, want UCX_Cube_01", got)
	}
	if got := mustAdd(t, s, s.NextName(d, "Cube")); got != "UCX_Cube_02" {
		t.Errorf("block = %q, want UCX_Cube_02", got)
	}
}

func TestRefresh(t *testing.T) {
	s := New()
	for _, n := range []string{"UCX_Old_07", "Cube", "UCX_Cube_01", "UCX_Thing_02"} {
		mustAdd(t, s, n)
	}
	_ = s.SetActive("UCX_Old_07")
	_ = s.Select("UCX_Thing_02", "Cube")

	n, err := s.Refresh("UCX_", "Cube")
	if err != nil {
		t.Fatal(err)
	}
	if n != 3 {
		t.Errorf("renamed %d objects, want 3", n)
	}
	want := []string{"UCX_Cube_01", "Cube", "UCX_Cube_02", "UCX_Cube_03"}
	if got := s.Names(); !reflect.DeepEqual(got, want) {
		t.Errorf("names = %v, want %v", got, want)
	}
	for _, name := range want {
		if o := s.Lookup(name); o == nil || o.Name != name {
			t.Errorf("index out of sync for %q", name)
		}
	}
	if s.Active().Name != "UCX_Cube_01" {
		t.Errorf("active = %q, want UCX_Cube_01", s.Active().Name)
	}
	if got := s.Selected(); !reflect.DeepEqual(got, []string{"Cube", "UCX_Cube_03"}) {
		t.Errorf("selection = %v", got)
	}
}

func TestRefreshEmptyPrefix(t *testing.T) {
	s := New()
	mustAdd(t, s, "Cube")
	if _, err := s.Refresh("", "Cube"); err == nil {
		t.Fatal("expected error for empty prefix")
	}
	if s.Lookup("Cube") == nil {
		t.Error("scene changed on failed refresh")
	}
}

func TestModeString(t *testing.T) {
	if EditMode.String() != "edit" || ObjectMode.String() != "object" {
		t.Errorf("mode strings = %s, %s", EditMode, ObjectMode)
	}
}

func TestAddChecksCollidersStrictly(t *testing.T) {
	s := New()
	cloud := &kernel.Descriptor{Vertices: []geom.Point{{}, {X: 1}, {Y: 1}}}
	if _, err := s.Add(&Object{Name: "scan", Mesh: cloud}); err != nil {
		t.Fatalf("point cloud source should be accepted: %v", err)
	}
	if _, err := s.Add(&Object{Name: "UCX_scan_01", Mesh: cloud, Collider: true}); err == nil {
		t.Fatal("collider with loose vertices should be rejected")
	}
}

func TestAddRejectsOpenColliders(t *testing.T) {
	s := New()
	open := tetra()
	open.Faces = open.Faces[:3]
	if _, err := s.Add(&Object{Name: "shell", Mesh: open}); err != nil {
		t.Fatalf("open source mesh should be accepted: %v", err)
	}
	if _, err := s.Add(&Object{Name: "UCX_shell_01", Mesh: open, Collider: true}); err == nil {
		t.Fatal("open collider should be rejected")
	}
	if _, err := s.Add(&Object{Name: "UCX_shell_01", Mesh: tetra(), Collider: true}); err != nil {
		t.Fatalf("closed collider should be accepted: %v", err)
	}
	if got := s.Names(); len(got) != 2 {
		t.Errorf("names = %v, want shell and one collider", got)
	}
}
