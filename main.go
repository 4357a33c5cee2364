package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"

	"github.com/chazu/collider/pkg/config"
	"github.com/chazu/collider/pkg/geom"
	"github.com/chazu/collider/pkg/scene"
	"github.com/chazu/collider/pkg/source"
)

// vecFlag parses "x,y,z" into a point.
type vecFlag struct{ p *geom.Point }

func (v vecFlag) String() string {
	if v.p == nil {
		return "0,0,0"
	}
	return fmt.Sprintf("%g,%g,%g", v.p.X, v.p.Y, v.p.Z)
}

func (v vecFlag) Set(s string) error {
	parts := strings.Split(s, ",")
	if len(parts) != 3 {
		return fmt.Errorf("want x,y,z, got %q", s)
	}
	var c [3]float64
	for i, part := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil {
			return fmt.Errorf("component %d: %w", i, err)
		}
		c[i] = f
	}
	*v.p = geom.Point{X: c[0], Y: c[1], Z: c[2]}
	return nil
}

// indexFlag parses "0,3,5" into vertex indices.
type indexFlag []int

func (f *indexFlag) String() string {
	parts := make([]string, len(*f))
	for i, n := range *f {
		parts[i] = strconv.Itoa(n)
	}
	return strings.Join(parts, ",")
}

func (f *indexFlag) Set(s string) error {
	for _, part := range strings.Split(s, ",") {
		n, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil || n < 0 {
			return fmt.Errorf("bad vertex index %q", part)
		}
		*f = append(*f, n)
	}
	return nil
}

func main() {
	cfg := config.DefaultConfig()

	var (
		configPath = flag.String("config", "", "JSON config file")
		scriptPath = flag.String("script", "", "collider script to run")
		input      = flag.String("input", "", "mesh or point file, local path or go-getter URL")
		srcName    = flag.String("source", "", "object name for -input (default: file name)")
		cacheDir   = flag.String("cache", filepath.Join(os.TempDir(), "collider"), "download directory for remote inputs")
		asJSON     = flag.Bool("json", false, "print the result as JSON")
		selected   indexFlag
	)
	flag.StringVar(&cfg.OutputDir, "out", cfg.OutputDir, "output directory for STL files")
	flag.StringVar(&cfg.Method, "method", cfg.Method, "proxy method: convex or box")
	flag.StringVar(&cfg.Prefix, "prefix", cfg.Prefix, "block name prefix")
	flag.StringVar(&cfg.CustomName, "name", cfg.CustomName, "custom block name")
	flag.BoolVar(&cfg.UseActiveName, "use-active-name", cfg.UseActiveName, "name blocks after the source object")
	flag.BoolVar(&cfg.Oriented, "oriented", cfg.Oriented, "align boxes to the principal axes")
	flag.Float64Var(&cfg.Epsilon, "epsilon", cfg.Epsilon, "relative hull tolerance")
	flag.Var(vecFlag{&cfg.Offset}, "offset", "offset x,y,z added before baking")
	flag.Var(vecFlag{&cfg.Rotation}, "rotation", "rotation x,y,z in radians")
	flag.BoolVar(&cfg.ExportSTL, "stl", cfg.ExportSTL, "write each new block as STL")
	flag.BoolVar(&cfg.AutoFocus, "auto-focus", cfg.AutoFocus, "select the new block")
	flag.Var(&selected, "select", "vertex indices of -input to use, e.g. 0,1,2")
	flag.Parse()

	if *configPath != "" {
		explicit := map[string]bool{}
		flag.Visit(func(f *flag.Flag) { explicit[f.Name] = true })
		fromFile, err := config.Load(*configPath)
		if err != nil {
			log.Fatalf("load config: %v", err)
		}
		config.Merge(cfg, fromFile, explicit)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("config: %v", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	app := NewApp(cfg)

	if *input != "" {
		mesh, err := source.Load(ctx, *input, *cacheDir)
		if err != nil {
			log.Fatalf("load input: %v", err)
		}
		name := *srcName
		if name == "" {
			base := filepath.Base(*input)
			name = strings.TrimSuffix(base, filepath.Ext(base))
		}
		if name, err = app.AddSource(name, mesh, geom.Identity()); err != nil {
			log.Fatalf("add %s: %v", *input, err)
		}
		if len(selected) > 0 {
			app.Scene().Lookup(name).Selected = selected
			app.Scene().Mode = scene.EditMode
		}
		log.Printf("loaded %s as %s (%d vertices)", *input, name, mesh.VertexCount())
	}

	var result EvalResult
	switch {
	case *scriptPath != "":
		script, err := os.ReadFile(*scriptPath)
		if err != nil {
			log.Fatalf("read script: %v", err)
		}
		result = app.Evaluate(string(script))
	case *input != "":
		result = newResult()
		block, err := app.GenerateFromConfig("")
		if err != nil {
			result.Errors = append(result.Errors, EvalErrorData{Message: err.Error()})
		} else {
			result.Blocks = append(result.Blocks, block)
		}
	default:
		fmt.Fprintln(os.Stderr, "collider: need -script or -input")
		flag.Usage()
		os.Exit(2)
	}

	if cfg.ExportSTL && len(result.Blocks) > 0 {
		names := make([]string, len(result.Blocks))
		for i, b := range result.Blocks {
			names[i] = b.Name
		}
		if _, err := app.ExportSTL(cfg.OutputDir, names...); err != nil {
			result.Errors = append(result.Errors, EvalErrorData{Message: err.Error()})
		}
	}

	if *asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(result); err != nil {
			log.Fatalf("encode result: %v", err)
		}
	} else {
		for _, b := range result.Blocks {
			fmt.Printf("%s\t%s\t%d vertices\t%d faces\tat %g,%g,%g\n",
				b.Name, b.Method, b.Vertices, b.Faces,
				b.Transform.Translation.X, b.Transform.Translation.Y, b.Transform.Translation.Z)
		}
	}

	for _, e := range result.Errors {
		if e.Line > 0 {
			log.Printf("line %d: %s", e.Line, e.Message)
		} else {
			log.Print(e.Message)
		}
	}
	if len(result.Errors) > 0 {
		os.Exit(1)
	}
}
