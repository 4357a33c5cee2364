package main

import (
	"errors"
	"fmt"
	"log"
	"path/filepath"
	"sync"

	"github.com/chazu/collider/pkg/collision"
	"github.com/chazu/collider/pkg/config"
	"github.com/chazu/collider/pkg/engine"
	"github.com/chazu/collider/pkg/geom"
	"github.com/chazu/collider/pkg/kernel"
	"github.com/chazu/collider/pkg/kernel/sdfx"
	"github.com/chazu/collider/pkg/scene"
	"github.com/chazu/collider/pkg/source"
	"github.com/chazu/collider/pkg/tessellate"
)

// colliderColor is the light green used for every collision block.
const colliderColor = "#0CFF00"

// colorPalette is a default palette used to assign distinct colors to
// source objects.
var colorPalette = []string{
	"#4A90D9", "#E67E22", "#2ECC71", "#9B59B6",
	"#E74C3C", "#1ABC9C", "#F39C12", "#3498DB",
}

// App owns the scene and runs collider scripts against it.
type App struct {
	mu     sync.Mutex
	cfg    *config.Config
	engine *engine.Engine
	scene  *scene.Scene
}

// MeshData is the JSON-serializable mesh format sent to viewers.
type MeshData struct {
	Vertices []float32 `json:"vertices"`
	Normals  []float32 `json:"normals"`
	Indices  []uint32  `json:"indices"`
	PartName string    `json:"partName"`
	Color    string    `json:"color"`
}

// EvalErrorData is a JSON-serializable eval error.
type EvalErrorData struct {
	Line    int    `json:"line"`
	Col     int    `json:"col"`
	Message string `json:"message"`
}

// BlockData describes one generated collision block.
type BlockData struct {
	Name      string             `json:"name"`
	Source    string             `json:"source"`
	Method    collision.Method   `json:"method"`
	Transform geom.Transform     `json:"transform"`
	Vertices  int                `json:"vertices"`
	Faces     int                `json:"faces"`
	Min       geom.Point         `json:"min"`
	Max       geom.Point         `json:"max"`
	Mesh      *kernel.Descriptor `json:"-"`
}

// EvalResult is the full result of one evaluation.
type EvalResult struct {
	Blocks   []BlockData     `json:"blocks"`
	Meshes   []MeshData      `json:"meshes"`
	Errors   []EvalErrorData `json:"errors"`
	Renamed  int             `json:"renamed"`
	Active   string          `json:"active"`
	Selected []string        `json:"selected"`
}

// NewApp creates an App with an empty scene. A nil cfg uses the defaults.
func NewApp(cfg *config.Config) *App {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	return &App{
		cfg:    cfg,
		engine: engine.NewEngine(),
		scene:  scene.New(),
	}
}

// Scene returns the scene the App inserts blocks into.
func (a *App) Scene() *scene.Scene {
	return a.scene
}

// AddSource inserts a mesh object, makes it active and selects it, like
// picking the object before running the generator.
func (a *App) AddSource(name string, mesh *kernel.Descriptor, t geom.Transform) (string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	got, err := a.scene.Add(&scene.Object{Name: name, Mesh: mesh, Transform: t})
	if err != nil {
		return "", err
	}
	if err := a.scene.SetActive(got); err != nil {
		return "", err
	}
	return got, a.scene.Select(got)
}

// Evaluate runs a collider script and returns the generated blocks and
// the meshes of every object in the scene. A failing request is reported
// as an error and inserts nothing; the remaining requests still run.
func (a *App) Evaluate(script string) EvalResult {
	result := newResult()

	// Step 1: Evaluate the script into a batch of requests.
	b, evalErrs, err := a.engine.Evaluate(script)
	if err != nil {
		// Fatal error (panic, timeout, etc.)
		if errors.Is(err, engine.ErrSuperseded) {
			log.Printf("Evaluate dropped: %v", err)
		} else {
			log.Printf("Evaluate fatal error: %v", err)
		}
		result.Errors = append(result.Errors, EvalErrorData{Message: err.Error()})
		return result
	}

	// Step 2: Convert eval errors to the output format.
	if len(evalErrs) > 0 {
		for _, e := range evalErrs {
			result.Errors = append(result.Errors, EvalErrorData{
				Line:    e.Line,
				Col:     e.Col,
				Message: e.Message,
			})
		}
		return result
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	// Step 3: Generate and insert one block per request.
	a.runBatch(b, &result)

	// Step 4: Tessellate the scene for display.
	a.fillMeshes(&result)
	return result
}

// Generate builds one block from explicit points, bypassing the script
// engine, using the App's configured naming.
func (a *App) Generate(req engine.Request) (BlockData, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.generate(req, a.cfg.Naming())
}

// GenerateFromConfig builds one block from the named source object with
// the configured method, offset and rotation.
func (a *App) GenerateFromConfig(src string) (BlockData, error) {
	p, err := a.cfg.Params()
	if err != nil {
		return BlockData{}, err
	}
	return a.Generate(engine.Request{
		Source:    src,
		Params:    p,
		AutoFocus: a.cfg.AutoFocus,
	})
}

// RefreshNames renumbers every block that carries the configured prefix
// after the active object.
func (a *App) RefreshNames() (int, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	act := a.scene.Active()
	if act == nil {
		return 0, fmt.Errorf("refresh names: no active object")
	}
	return a.refresh(a.cfg.Prefix, act.Name)
}

// ExportSTL writes each named object to "<dir>/<name>.stl" and returns
// the written paths.
func (a *App) ExportSTL(dir string, names ...string) ([]string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	var paths []string
	for _, name := range names {
		o := a.scene.Lookup(name)
		if o == nil {
			return paths, fmt.Errorf("export: no object named %q", name)
		}
		mesh, err := tessellate.Triangulate(o.Mesh, o.Transform)
		if err != nil {
			return paths, fmt.Errorf("export %s: %w", name, err)
		}
		path := filepath.Join(dir, name+".stl")
		if err := sdfx.SaveSTL(path, mesh); err != nil {
			return paths, err
		}
		log.Printf("wrote %s (%d triangles)", path, mesh.TriangleCount())
		paths = append(paths, path)
	}
	return paths, nil
}

func newResult() EvalResult {
	return EvalResult{
		Blocks:   []BlockData{},
		Meshes:   []MeshData{},
		Errors:   []EvalErrorData{},
		Selected: []string{},
	}
}

// runBatch generates every request in b. Callers hold a.mu.
func (a *App) runBatch(b *engine.Batch, result *EvalResult) {
	for i, req := range b.Requests {
		block, err := a.generate(req, b.Naming)
		if err != nil {
			log.Printf("collider %d: %v", i+1, err)
			result.Errors = append(result.Errors, EvalErrorData{
				Message: fmt.Sprintf("collider %d: %v", i+1, err),
			})
			continue
		}
		result.Blocks = append(result.Blocks, block)
	}

	if b.Refresh {
		n, err := a.refresh(b.Naming.Prefix, a.refreshTarget(b))
		if err != nil {
			result.Errors = append(result.Errors, EvalErrorData{Message: err.Error()})
		}
		result.Renamed = n
		// Block names reported above may have changed.
		for i := range result.Blocks {
			for _, o := range a.scene.Objects() {
				if o.Mesh == result.Blocks[i].Mesh {
					result.Blocks[i].Name = o.Name
				}
			}
		}
	}

	if act := a.scene.Active(); act != nil {
		result.Active = act.Name
	}
	result.Selected = append(result.Selected, a.scene.Selected()...)
}

// generate extracts the points for req, builds the proxy, names it and
// inserts it. Nothing is inserted on error. Callers hold a.mu.
func (a *App) generate(req engine.Request, naming scene.Naming) (BlockData, error) {
	ps, srcName, err := a.points(req)
	if err != nil {
		return BlockData{}, err
	}

	res, err := collision.Generate(ps, req.Params)
	if err != nil {
		return BlockData{}, err
	}

	name := req.Name
	if name == "" {
		name = a.scene.NextName(naming, srcName)
	}
	name, err = a.scene.Add(&scene.Object{
		Name:      name,
		Mesh:      res.Mesh,
		Transform: res.Transform,
		Collider:  true,
	})
	if err != nil {
		return BlockData{}, err
	}

	// The block stays inserted even if focus cannot move.
	if err := a.focus(name, req); err != nil {
		log.Printf("focus after %s: %v", name, err)
	}

	log.Printf("generated %s from %s: %s, %d vertices, %d faces",
		name, srcName, res.Method, res.Mesh.VertexCount(), res.Mesh.FaceCount())

	return BlockData{
		Name:      name,
		Source:    srcName,
		Method:    res.Method,
		Transform: res.Transform,
		Vertices:  res.Mesh.VertexCount(),
		Faces:     res.Mesh.FaceCount(),
		Min:       res.Min,
		Max:       res.Max,
		Mesh:      res.Mesh,
	}, nil
}

// focus makes block active and solely selected when req asks for it, and
// otherwise returns activity to the source object with the previous
// selection left alone. Callers hold a.mu.
func (a *App) focus(block string, req engine.Request) error {
	if req.AutoFocus {
		if err := a.scene.SetActive(block); err != nil {
			return err
		}
		return a.scene.Select(block)
	}
	if req.Source != "" && a.scene.Lookup(req.Source) != nil {
		return a.scene.SetActive(req.Source)
	}
	return nil
}

// points resolves the input points of req and the name blocks are named
// after. Explicit points win; otherwise the source object (or the active
// object when no source is named) supplies its selection in edit mode or
// all of its vertices in object mode.
func (a *App) points(req engine.Request) (geom.PointSet, string, error) {
	if len(req.Points) > 0 {
		name := req.Source
		if name == "" {
			name = "Points"
		}
		return req.Points, name, nil
	}

	o := a.scene.Active()
	if req.Source != "" {
		o = a.scene.Lookup(req.Source)
	}
	if o == nil {
		if req.Source == "" {
			return nil, "", fmt.Errorf("no active object")
		}
		return nil, "", fmt.Errorf("no object named %q", req.Source)
	}

	mode := a.scene.Mode
	if len(req.Select) > 0 {
		sel := *o
		sel.Selected = req.Select
		o, mode = &sel, scene.EditMode
	}
	ps, err := source.Extract(o, mode)
	if err != nil {
		return nil, "", err
	}
	return ps, o.Name, nil
}

// refreshTarget picks the object name a script refresh numbers blocks
// after: the active object, unless focus moved to a block, in which case
// the source of the last request. Callers hold a.mu.
func (a *App) refreshTarget(b *engine.Batch) string {
	act := a.scene.Active()
	if act != nil && !act.Collider {
		return act.Name
	}
	for i := len(b.Requests) - 1; i >= 0; i-- {
		if src := b.Requests[i].Source; src != "" {
			return src
		}
	}
	if act != nil {
		return act.Name
	}
	return ""
}

// refresh renames blocks starting with prefix after target. Callers hold
// a.mu.
func (a *App) refresh(prefix, target string) (int, error) {
	if target == "" {
		return 0, fmt.Errorf("refresh names: no active object")
	}
	n, err := a.scene.Refresh(prefix, target)
	if err != nil {
		return 0, err
	}
	log.Printf("refreshed %d names with prefix %s", n, prefix)
	return n, nil
}

// fillMeshes tessellates every object in the scene. Callers hold a.mu.
func (a *App) fillMeshes(result *EvalResult) {
	var parts []tessellate.Part
	colors := map[string]string{}
	srcIndex := 0
	for _, o := range a.scene.Objects() {
		parts = append(parts, tessellate.Part{Name: o.Name, Mesh: o.Mesh, Transform: o.Transform})
		if o.Collider {
			colors[o.Name] = colliderColor
		} else {
			colors[o.Name] = colorPalette[srcIndex%len(colorPalette)]
			srcIndex++
		}
	}

	meshes, err := tessellate.Tessellate(parts)
	if err != nil {
		log.Printf("Tessellate error: %v", err)
		result.Errors = append(result.Errors, EvalErrorData{
			Message: "tessellation failed: " + err.Error(),
		})
		return
	}

	for _, m := range meshes {
		result.Meshes = append(result.Meshes, MeshData{
			Vertices: m.Vertices,
			Normals:  m.Normals,
			Indices:  m.Indices,
			PartName: m.PartName,
			Color:    colors[m.PartName],
		})
	}
}
