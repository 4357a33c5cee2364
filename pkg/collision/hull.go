package collision

import (
	"fmt"
	"math"

	"github.com/chazu/collider/pkg/geom"
	"github.com/chazu/collider/pkg/kernel"
)

// DefaultEpsilon is the relative tolerance used for coincidence,
// collinearity and coplanarity tests. Hull construction scales it by the
// bounding box diagonal of the input.
const DefaultEpsilon = 1e-6

// hullFace is a triangle of the hull under construction, wound
// counter-clockwise when seen from outside.
type hullFace struct {
	v       [3]int
	normal  geom.Point // outward unit normal
	offset  float64    // normal · v[0]
	outside []int      // points above the face, not on the hull yet
	visible bool
	dead    bool
}

// distance is the signed distance of p above the face plane.
func (f *hullFace) distance(p geom.Point) float64 {
	return f.normal.Dot(p) - f.offset
}

type edgeKey struct{ from, to int }

// hull is the state of a quickhull run.
type hull struct {
	pts    geom.PointSet
	tol    float64 // coincidence and planarity tolerance
	absorb float64 // points no farther than this above every face are dropped
	faces  []*hullFace
	owner  map[edgeKey]*hullFace // directed edge -> face containing it
	queue  []*hullFace           // faces that may hold outside points
}

// BuildHull returns the convex hull of ps as a closed, outward-wound mesh in
// the same frame as the input. Coplanar triangles are merged into convex
// polygons and the result references only corner vertices. Interior points,
// and points within tolerance of the hull surface, are absorbed.
//
// eps is relative to the bounding box diagonal; eps <= 0 selects
// DefaultEpsilon. Inputs that do not span three dimensions, or that hold
// non-finite coordinates, yield a *DegenerateInputError.
func BuildHull(ps geom.PointSet, eps float64) (*kernel.Descriptor, error) {
	if len(ps) == 0 {
		return nil, ErrEmptyInput
	}
	for i, p := range ps {
		if !finite(p) {
			return nil, degenerate("hull", "point %d is not finite", i)
		}
	}
	if eps <= 0 {
		eps = DefaultEpsilon
	}
	diag := ps.Diagonal()
	if diag == 0 {
		return nil, degenerate("hull", "all %d points coincide", len(ps))
	}
	if len(ps) < 4 {
		return nil, degenerate("hull", "need at least 4 points, got %d", len(ps))
	}

	h := &hull{
		pts:    ps,
		tol:    eps * diag,
		absorb: eps * diag / 4,
		owner:  make(map[edgeKey]*hullFace),
	}
	seed, err := h.seed()
	if err != nil {
		return nil, err
	}
	a, b, c, d := seed[0], seed[1], seed[2], seed[3]
	h.addFace(a, b, c)
	h.addFace(a, c, d)
	h.addFace(a, d, b)
	h.addFace(c, b, d)

	rest := make([]int, 0, len(ps)-4)
	for i := range ps {
		if i != a && i != b && i != c && i != d {
			rest = append(rest, i)
		}
	}
	h.assign(rest, h.faces)

	for {
		if err := h.grow(); err != nil {
			return nil, err
		}
		if !h.recheck() {
			break
		}
	}
	return h.descriptor()
}

// seed picks four affinely independent points and orders them so that the
// triangle (a, b, c) faces away from d.
func (h *hull) seed() ([4]int, error) {
	pts := h.pts

	var ext [6]int
	for i, p := range pts {
		for axis := 0; axis < 3; axis++ {
			v := geom.Component(p, axis)
			if v < geom.Component(pts[ext[2*axis]], axis) {
				ext[2*axis] = i
			}
			if v > geom.Component(pts[ext[2*axis+1]], axis) {
				ext[2*axis+1] = i
			}
		}
	}

	// Farthest pair among the axis extremes.
	a, b, best := ext[0], ext[1], -1.0
	for i := 0; i < len(ext); i++ {
		for j := i + 1; j < len(ext); j++ {
			if dist := pts[ext[i]].Sub(pts[ext[j]]).Length(); dist > best {
				a, b, best = ext[i], ext[j], dist
			}
		}
	}
	if best <= h.tol {
		return [4]int{}, degenerate("hull", "all points coincide")
	}

	// Farthest point from line ab.
	pa := pts[a]
	ab := pts[b].Sub(pa)
	abLen := ab.Length()
	c, best := -1, h.tol
	for i, p := range pts {
		if dist := p.Sub(pa).Cross(ab).Length() / abLen; dist > best {
			c, best = i, dist
		}
	}
	if c < 0 {
		return [4]int{}, degenerate("hull", "points are collinear")
	}

	// Farthest point from plane abc.
	n := ab.Cross(pts[c].Sub(pa))
	n = n.MulScalar(1 / n.Length())
	d, best, side := -1, h.tol, 0.0
	for i, p := range pts {
		s := n.Dot(p.Sub(pa))
		if dist := math.Abs(s); dist > best {
			d, best, side = i, dist, s
		}
	}
	if d < 0 {
		return [4]int{}, degenerate("hull", "points are coplanar")
	}

	if side > 0 {
		b, c = c, b
	}
	return [4]int{a, b, c, d}, nil
}

func (h *hull) addFace(a, b, c int) *hullFace {
	pa := h.pts[a]
	n := h.pts[b].Sub(pa).Cross(h.pts[c].Sub(pa))
	if l := n.Length(); l > 0 {
		n = n.MulScalar(1 / l)
	}
	f := &hullFace{v: [3]int{a, b, c}, normal: n, offset: n.Dot(pa)}
	h.faces = append(h.faces, f)
	for i := 0; i < 3; i++ {
		h.owner[edgeKey{f.v[i], f.v[(i+1)%3]}] = f
	}
	return f
}

func (h *hull) removeFace(f *hullFace) {
	f.dead = true
	for i := 0; i < 3; i++ {
		k := edgeKey{f.v[i], f.v[(i+1)%3]}
		if h.owner[k] == f {
			delete(h.owner, k)
		}
	}
}

// neighbor returns the face across edge j of f.
func (h *hull) neighbor(f *hullFace, j int) *hullFace {
	return h.owner[edgeKey{f.v[(j+1)%3], f.v[j]}]
}

// sees reports whether p lies strictly above the plane of f. The test is
// exact, so the faces that see a point always form one connected cap.
func (h *hull) sees(f *hullFace, p geom.Point) bool {
	return orientation(h.pts[f.v[0]], h.pts[f.v[1]], h.pts[f.v[2]], p) > 0
}

// above reports whether p is far enough above f to grow the hull.
func (h *hull) above(f *hullFace, p geom.Point) bool {
	return f.distance(p) > h.absorb && h.sees(f, p)
}

// assign puts each point in the outside set of the first face it lies
// above. Points above none of the faces are dropped.
func (h *hull) assign(points []int, faces []*hullFace) {
	for _, i := range points {
		p := h.pts[i]
		for _, f := range faces {
			if !f.dead && h.above(f, p) {
				h.push(f, i)
				break
			}
		}
	}
}

func (h *hull) push(f *hullFace, i int) {
	if len(f.outside) == 0 {
		h.queue = append(h.queue, f)
	}
	f.outside = append(f.outside, i)
}

// grow adds outside points until every outside set is empty, always taking
// the point farthest above its face.
func (h *hull) grow() error {
	for len(h.queue) > 0 {
		f := h.queue[len(h.queue)-1]
		h.queue = h.queue[:len(h.queue)-1]
		if f.dead || len(f.outside) == 0 {
			continue
		}

		eye, far := -1, math.Inf(-1)
		for _, i := range f.outside {
			if d := f.distance(h.pts[i]); d > far {
				eye, far = i, d
			}
		}
		if err := h.add(f, eye); err != nil {
			return err
		}
	}
	return nil
}

// add replaces the faces that see point eye, starting from start, with a
// cone from their boundary to eye.
func (h *hull) add(start *hullFace, eye int) error {
	p := h.pts[eye]

	// Flood the visible cap from the start face.
	start.visible = true
	visible := []*hullFace{start}
	for k := 0; k < len(visible); k++ {
		for j := 0; j < 3; j++ {
			n := h.neighbor(visible[k], j)
			if n != nil && !n.visible && h.sees(n, p) {
				n.visible = true
				visible = append(visible, n)
			}
		}
	}

	// The horizon is the boundary of the cap and must be one simple loop.
	next := make(map[int]int)
	var horizon []edgeKey
	for _, f := range visible {
		for j := 0; j < 3; j++ {
			if n := h.neighbor(f, j); n != nil && n.visible {
				continue
			}
			e := edgeKey{f.v[j], f.v[(j+1)%3]}
			if _, dup := next[e.from]; dup {
				return fmt.Errorf("collision: hull: horizon of point %d touches vertex %d twice", eye, e.from)
			}
			next[e.from] = e.to
			horizon = append(horizon, e)
		}
	}
	if len(horizon) == 0 || !singleLoop(next, horizon[0].from, len(horizon)) {
		return fmt.Errorf("collision: hull: horizon of point %d is not a single loop", eye)
	}

	var orphans []int
	for _, f := range visible {
		for _, i := range f.outside {
			if i != eye {
				orphans = append(orphans, i)
			}
		}
		f.outside = nil
		h.removeFace(f)
	}
	cone := make([]*hullFace, 0, len(horizon))
	for _, e := range horizon {
		cone = append(cone, h.addFace(e.from, e.to, eye))
	}
	h.assign(orphans, cone)

	alive := h.faces[:0]
	for _, f := range h.faces {
		if !f.dead {
			alive = append(alive, f)
		}
	}
	h.faces = alive
	return nil
}

// singleLoop reports whether following next from start visits n edges and
// returns to start.
func singleLoop(next map[int]int, start, n int) bool {
	v, steps := start, 0
	for {
		to, ok := next[v]
		if !ok {
			return false
		}
		v = to
		steps++
		if v == start {
			return steps == n
		}
		if steps > n {
			return false
		}
	}
}

// recheck queues every input point that still lies above a face and
// reports whether there were any. Orphans are only tested against the cone
// that replaced their face, so a point can slip past an older face.
func (h *hull) recheck() bool {
	found := false
	for i, p := range h.pts {
		for _, f := range h.faces {
			if h.above(f, p) {
				h.push(f, i)
				found = true
				break
			}
		}
	}
	return found
}

// descriptor converts the finished hull into a polygon mesh and verifies
// that it is closed and convex.
func (h *hull) descriptor() (*kernel.Descriptor, error) {
	tris := make([][3]int, len(h.faces))
	normals := make([]geom.Point, len(h.faces))
	for i, f := range h.faces {
		tris[i] = f.v
		normals[i] = f.normal
	}

	planar := h.tol / 8
	faces := mergeCoplanar(h.pts, tris, normals, planar)
	faces = dropEdgeVertices(h.pts, faces, planar)

	out := &kernel.Descriptor{Vertices: h.pts.Clone(), Faces: faces}
	out.Compact()
	if !out.IsClosed() {
		return nil, fmt.Errorf("collision: hull: surface is not closed")
	}
	if err := checkConvex(out, h.tol); err != nil {
		return nil, err
	}
	return out, nil
}

// checkConvex verifies that no vertex of d lies more than tol above the
// plane of any face.
func checkConvex(d *kernel.Descriptor, tol float64) error {
	for i, f := range d.Faces {
		n := d.FaceNormal(i)
		l := n.Length()
		if l == 0 {
			return fmt.Errorf("collision: hull: face %d has zero area", i)
		}
		n = n.MulScalar(1 / l)

		var c geom.Point
		for _, vi := range f {
			c = c.Add(d.Vertices[vi])
		}
		c = c.MulScalar(1 / float64(len(f)))

		for vi, v := range d.Vertices {
			if dist := n.Dot(v.Sub(c)); dist > tol {
				return fmt.Errorf("collision: hull: vertex %d lies %g above face %d", vi, dist, i)
			}
		}
	}
	return nil
}
