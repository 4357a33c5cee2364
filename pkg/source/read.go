package source

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/chazu/collider/pkg/geom"
	"github.com/chazu/collider/pkg/kernel"
)

// Format is a supported input file format.
type Format int

const (
	FormatXYZ Format = iota // one "x y z" point per line
	FormatOBJ               // Wavefront OBJ, "v" and "f" records
)

func (f Format) String() string {
	switch f {
	case FormatXYZ:
		return "xyz"
	case FormatOBJ:
		return "obj"
	}
	return fmt.Sprintf("Format(%d)", int(f))
}

// DetectFormat picks the format from the file extension. Anything that is
// not ".obj" is read as a point list.
func DetectFormat(path string) Format {
	if strings.EqualFold(filepath.Ext(path), ".obj") {
		return FormatOBJ
	}
	return FormatXYZ
}

// ReadMesh reads r in the given format. Point lists produce a descriptor
// with vertices only.
func ReadMesh(r io.Reader, f Format) (*kernel.Descriptor, error) {
	switch f {
	case FormatXYZ:
		ps, err := ReadXYZ(r)
		if err != nil {
			return nil, err
		}
		return &kernel.Descriptor{Vertices: ps}, nil
	case FormatOBJ:
		return ReadOBJ(r)
	}
	return nil, fmt.Errorf("source: unsupported format %s", f)
}

// ReadFile reads the mesh stored at path.
func ReadFile(path string) (*kernel.Descriptor, error) {
	fh, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("source: %w", err)
	}
	defer fh.Close()

	d, err := ReadMesh(fh, DetectFormat(path))
	if err != nil {
		return nil, fmt.Errorf("%w (in %s)", err, path)
	}
	return d, nil
}

// ReadXYZ parses one point per line. Coordinates are separated by spaces,
// tabs or commas; blank lines and lines starting with '#' are skipped.
// Extra columns after z (normals, colors) are ignored.
func ReadXYZ(r io.Reader) (geom.PointSet, error) {
	var ps geom.PointSet
	sc := bufio.NewScanner(r)
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" || text[0] == '#' {
			continue
		}
		fields := strings.FieldsFunc(text, func(c rune) bool {
			return c == ' ' || c == '\t' || c == ','
		})
		p, err := parsePoint(fields)
		if err != nil {
			return nil, fmt.Errorf("source: line %d: %w", line, err)
		}
		ps = append(ps, p)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("source: %w", err)
	}
	return ps, nil
}

// ReadOBJ parses the vertex and face records of a Wavefront OBJ stream.
// Face entries may carry texture and normal indices ("3/1/2") and may be
// negative, counting back from the latest vertex. Other records are
// ignored.
func ReadOBJ(r io.Reader) (*kernel.Descriptor, error) {
	d := &kernel.Descriptor{}
	sc := bufio.NewScanner(r)
	line := 0
	for sc.Scan() {
		line++
		fields := strings.Fields(sc.Text())
		if len(fields) == 0 {
			continue
		}
		switch fields[0] {
		case "v":
			p, err := parsePoint(fields[1:])
			if err != nil {
				return nil, fmt.Errorf("source: line %d: %w", line, err)
			}
			d.Vertices = append(d.Vertices, p)
		case "f":
			face := make([]int, 0, len(fields)-1)
			for _, ref := range fields[1:] {
				idx, err := objIndex(ref, len(d.Vertices))
				if err != nil {
					return nil, fmt.Errorf("source: line %d: %w", line, err)
				}
				face = append(face, idx)
			}
			d.Faces = append(d.Faces, face)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("source: %w", err)
	}
	if err := d.CheckFaces(); err != nil {
		return nil, fmt.Errorf("source: %w", err)
	}
	return d, nil
}

func parsePoint(fields []string) (geom.Point, error) {
	if len(fields) < 3 {
		return geom.Point{}, fmt.Errorf("need 3 coordinates, got %d", len(fields))
	}
	var c [3]float64
	for i := range c {
		v, err := strconv.ParseFloat(fields[i], 64)
		if err != nil {
			return geom.Point{}, fmt.Errorf("coordinate %d: %w", i, err)
		}
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return geom.Point{}, fmt.Errorf("coordinate %d: %q is not a finite number", i, fields[i])
		}
		c[i] = v
	}
	return geom.Point{X: c[0], Y: c[1], Z: c[2]}, nil
}

// objIndex converts a 1-based (or negative, relative) OBJ vertex reference
// to a 0-based index.
func objIndex(ref string, count int) (int, error) {
	if i := strings.IndexByte(ref, '/'); i >= 0 {
		ref = ref[:i]
	}
	n, err := strconv.Atoi(ref)
	if err != nil {
		return 0, fmt.Errorf("bad face index %q", ref)
	}
	switch {
	case n > 0:
		return n - 1, nil
	case n < 0:
		return count + n, nil
	}
	return 0, fmt.Errorf("face index 0 is not valid")
}
