// Package collision builds simplified collision proxies from point clouds:
// convex hulls, axis-aligned boxes and principal-axis boxes, each returned
// with its origin at the center of its bounds.
//
// Every function here is pure. Inputs are never modified and a failed call
// returns no partial result.
package collision

import (
	"errors"
	"fmt"
	"strings"

	"github.com/chazu/collider/pkg/geom"
	"github.com/chazu/collider/pkg/kernel"
)

// Method selects the proxy shape.
type Method string

const (
	MethodConvex Method = "convex" // convex hull of the points
	MethodBox    Method = "box"    // box covering the points
)

// ParseMethod converts a selector such as "convex" or "box" to a Method.
func ParseMethod(s string) (Method, error) {
	switch m := Method(strings.ToLower(strings.TrimSpace(s))); m {
	case MethodConvex, MethodBox:
		return m, nil
	}
	return "", &InvalidMethodError{Method: s}
}

// Params configures a single Generate call.
type Params struct {
	Method   Method     `json:"method"`
	Offset   geom.Point `json:"offset"`   // added to the object location before baking
	Rotation geom.Point `json:"rotation"` // XYZ Euler angles in radians
	Oriented bool       `json:"oriented"` // box only: align the box to the principal axes
	Epsilon  float64    `json:"epsilon"`  // relative hull tolerance, 0 for DefaultEpsilon
}

// Result is a generated proxy ready for insertion into a scene.
type Result struct {
	Method    Method
	Mesh      *kernel.Descriptor // vertices relative to the origin
	Transform geom.Transform     // places Mesh in the world
	Basis     geom.Basis         // principal axes used, identity when none
	Min, Max  geom.Point         // box extent in the Basis frame; hull bounds otherwise
}

// Generate builds the proxy selected by p.Method from ps and normalizes its
// placement.
func Generate(ps geom.PointSet, p Params) (*Result, error) {
	if len(ps) == 0 {
		return nil, ErrEmptyInput
	}
	switch p.Method {
	case MethodConvex:
		return generateConvex(ps, p)
	case MethodBox:
		return generateBox(ps, p)
	}
	return nil, &InvalidMethodError{Method: string(p.Method)}
}

func generateConvex(ps geom.PointSet, p Params) (*Result, error) {
	basis, err := Estimate(ps)
	if err != nil {
		return nil, fmt.Errorf("collision: convex: %w", err)
	}
	hull, err := BuildHull(ps, p.Epsilon)
	if err != nil {
		return nil, fmt.Errorf("collision: convex: %w", err)
	}
	bb := hull.Bounds()

	mesh, t := Normalize(hull, geom.Identity(), p.Offset, p.Rotation)
	return &Result{
		Method:    MethodConvex,
		Mesh:      mesh,
		Transform: t,
		Basis:     basis,
		Min:       bb.Min,
		Max:       bb.Max,
	}, nil
}

func generateBox(ps geom.PointSet, p Params) (*Result, error) {
	basis := geom.IdentityBasis()
	if p.Oriented {
		b, err := Estimate(ps)
		switch {
		case err == nil:
			basis = b.Handed()
		case errors.Is(err, ErrDegenerateInput):
			// Flat or thin selections keep the world axes.
		default:
			return nil, fmt.Errorf("collision: box: %w", err)
		}
	}

	local := make(geom.PointSet, len(ps))
	for i, pt := range ps {
		local[i] = basis.ToLocal(pt)
	}
	box, min, max, err := BuildBox(local)
	if err != nil {
		return nil, fmt.Errorf("collision: box: %w", err)
	}

	// The box is placed like a freshly added cube: geometry around its own
	// center, object location at that center.
	center := min.Add(max).MulScalar(0.5)
	box.Translate(center.MulScalar(-1))
	box.Map(basis.ToWorld)
	current := geom.Transform{Translation: basis.ToWorld(center)}

	mesh, t := Normalize(box, current, p.Offset, p.Rotation)
	return &Result{
		Method:    MethodBox,
		Mesh:      mesh,
		Transform: t,
		Basis:     basis,
		Min:       min,
		Max:       max,
	}, nil
}
