package main

import (
	"math"
	"os"
	"testing"

	"github.com/chazu/collider/pkg/collision"
	"github.com/chazu/collider/pkg/geom"
	"github.com/chazu/collider/pkg/source"
)

// newCrateApp returns an App whose scene holds examples/crate.obj as the
// active object "crate".
func newCrateApp(t *testing.T) *App {
	t.Helper()
	mesh, err := source.ReadFile("examples/crate.obj")
	if err != nil {
		t.Fatalf("failed to read crate.obj: %v", err)
	}
	app := NewApp(nil)
	if _, err := app.AddSource("crate", mesh, geom.Identity()); err != nil {
		t.Fatalf("AddSource failed: %v", err)
	}
	return app
}

func near(a, b geom.Point) bool {
	return geom.ApproxEqual(a, b, 1e-9)
}

// TestE2ECrateExample exercises the full pipeline: script -> engine ->
// requests -> collision proxies -> scene -> tessellated meshes.
func TestE2ECrateExample(t *testing.T) {
	app := newCrateApp(t)

	script, err := os.ReadFile("examples/crate.collider")
	if err != nil {
		t.Fatalf("failed to read crate.collider: %v", err)
	}

	result := app.Evaluate(string(script))

	// No errors expected.
	if len(result.Errors) > 0 {
		for _, e := range result.Errors {
			t.Errorf("eval error (line %d): %s", e.Line, e.Message)
		}
		t.FailNow()
	}

	if len(result.Blocks) != 3 {
		t.Fatalf("expected 3 blocks, got %d", len(result.Blocks))
	}

	wantNames := []string{"UCX_crate_01", "UCX_crate_02", "UCX_crate_03"}
	wantMethods := []collision.Method{collision.MethodBox, collision.MethodConvex, collision.MethodBox}
	wantAt := []geom.Point{{Z: 0.5}, {Z: 1.26}, {X: 3, Y: 0.5, Z: 0.5}}
	for i, b := range result.Blocks {
		if b.Name != wantNames[i] {
			t.Errorf("block %d: name = %q, want %q", i, b.Name, wantNames[i])
		}
		if b.Method != wantMethods[i] {
			t.Errorf("block %d: method = %q, want %q", i, b.Method, wantMethods[i])
		}
		if !near(b.Transform.Translation, wantAt[i]) {
			t.Errorf("block %d: translation = %v, want %v", i, b.Transform.Translation, wantAt[i])
		}
		if b.Transform.Rotation != (geom.Point{}) {
			t.Errorf("block %d: rotation should be baked, got %v", i, b.Transform.Rotation)
		}
	}

	body := result.Blocks[0]
	if !near(body.Min, geom.Point{X: -1, Y: -1}) || !near(body.Max, geom.Point{X: 1, Y: 1, Z: 1}) {
		t.Errorf("body extent = %v..%v", body.Min, body.Max)
	}
	if handle := result.Blocks[1]; handle.Vertices != 8 || handle.Faces != 6 {
		t.Errorf("handle hull = %d vertices, %d faces, want 8 and 6", handle.Vertices, handle.Faces)
	}

	// The last block auto-focuses.
	if result.Active != "UCX_crate_03" {
		t.Errorf("active = %q, want UCX_crate_03", result.Active)
	}
	if len(result.Selected) != 1 || result.Selected[0] != "UCX_crate_03" {
		t.Errorf("selected = %v, want [UCX_crate_03]", result.Selected)
	}

	// One mesh for the crate and one per block.
	if len(result.Meshes) != 4 {
		t.Fatalf("expected 4 meshes, got %d", len(result.Meshes))
	}
	for _, m := range result.Meshes {
		if len(m.Vertices) == 0 || len(m.Normals) == 0 || len(m.Indices) == 0 {
			t.Errorf("part %q: empty geometry", m.PartName)
		}
		want := colliderColor
		if m.PartName == "crate" {
			want = colorPalette[0]
		}
		if m.Color != want {
			t.Errorf("part %q: color = %s, want %s", m.PartName, m.Color, want)
		}
	}
}

// TestE2EEmptySource ensures the pipeline handles empty input gracefully.
func TestE2EEmptySource(t *testing.T) {
	app := NewApp(nil)
	result := app.Evaluate("")

	if len(result.Errors) > 0 {
		t.Errorf("unexpected errors for empty source: %v", result.Errors)
	}
	if len(result.Meshes) != 0 {
		t.Errorf("expected 0 meshes for empty source, got %d", len(result.Meshes))
	}
}

// TestE2ESyntaxError ensures eval errors are reported, not fatal errors.
func TestE2ESyntaxError(t *testing.T) {
	app := NewApp(nil)
	result := app.Evaluate(`(collider :source "crate"`)

	if len(result.Errors) == 0 {
		t.Fatal("expected eval errors for syntax error")
	}
	if len(result.Blocks) != 0 {
		t.Errorf("expected 0 blocks on error, got %d", len(result.Blocks))
	}
}

// TestE2ESingleBlock ensures a minimal explicit-points script renders one
// block.
func TestE2ESingleBlock(t *testing.T) {
	app := NewApp(nil)
	source := `(collider :source "rock" :method :box
	                     :points (points (vec3 0 0 0) (vec3 2 0 0) (vec3 0 2 0) (vec3 0 0 2)))`
	result := app.Evaluate(source)

	if len(result.Errors) > 0 {
		for _, e := range result.Errors {
			t.Errorf("eval error: %s", e.Message)
		}
		t.FailNow()
	}
	if len(result.Meshes) != 1 {
		t.Fatalf("expected 1 mesh, got %d", len(result.Meshes))
	}
	if result.Meshes[0].PartName != "UCX_rock_01" {
		t.Errorf("expected part name 'UCX_rock_01', got %q", result.Meshes[0].PartName)
	}
	if got := result.Blocks[0].Transform.Translation; got != (geom.Point{X: 1, Y: 1, Z: 1}) {
		t.Errorf("expected block at (1,1,1), got %v", got)
	}
	if n := len(result.Meshes[0].Indices) / 3; n != 12 {
		t.Errorf("expected 12 triangles, got %d", n)
	}
}

// TestE2ERotatedBlockKeepsFootprint checks that a baked rotation shows up
// in the vertices rather than the transform.
func TestE2ERotatedBlockKeepsFootprint(t *testing.T) {
	app := NewApp(nil)
	source := `(collider :method :box :rotation (vec3 0 0 (deg 90))
	                     :points (points (vec3 0 0 0) (vec3 4 2 1)))`
	result := app.Evaluate(source)
	if len(result.Errors) > 0 {
		t.Fatalf("unexpected errors: %v", result.Errors)
	}

	mesh := result.Blocks[0].Mesh
	size := mesh.Bounds().Size()
	if math.Abs(size.X-2) > 1e-9 || math.Abs(size.Y-4) > 1e-9 || math.Abs(size.Z-1) > 1e-9 {
		t.Errorf("rotated size = %v, want (2, 4, 1)", size)
	}
	if result.Blocks[0].Name != "UCX_Points_01" {
		t.Errorf("name = %q, want UCX_Points_01", result.Blocks[0].Name)
	}
}
