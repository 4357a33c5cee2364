package collision

import (
	"math"
	"sort"

	"github.com/chazu/collider/pkg/geom"
)

// mergeCoplanar groups adjacent triangles whose vertices lie within tol of
// a common plane and returns one convex polygon per group, wound like the
// triangles. Groups grow from the largest triangle first, and every member
// is measured against that first triangle's plane, so flatness does not
// drift across a group. A group whose boundary is not one simple loop is
// returned as its triangles.
func mergeCoplanar(pts geom.PointSet, tris [][3]int, normals []geom.Point, tol float64) [][]int {
	owner := make(map[edgeKey]int, 3*len(tris))
	for ti, t := range tris {
		for j := 0; j < 3; j++ {
			owner[edgeKey{t[j], t[(j+1)%3]}] = ti
		}
	}

	area := make([]float64, len(tris))
	order := make([]int, len(tris))
	for ti, t := range tris {
		a := pts[t[0]]
		area[ti] = pts[t[1]].Sub(a).Cross(pts[t[2]].Sub(a)).Length()
		order[ti] = ti
	}
	sort.SliceStable(order, func(i, j int) bool { return area[order[i]] > area[order[j]] })

	group := make([]int, len(tris))
	for i := range group {
		group[i] = -1
	}
	var groups [][]int
	for _, seed := range order {
		if group[seed] >= 0 {
			continue
		}
		g := len(groups)
		group[seed] = g
		n := normals[seed]
		off := n.Dot(pts[tris[seed][0]])

		members := []int{seed}
		for k := 0; k < len(members); k++ {
			t := tris[members[k]]
			for j := 0; j < 3; j++ {
				nb, ok := owner[edgeKey{t[(j+1)%3], t[j]}]
				if !ok || group[nb] >= 0 || normals[nb].Dot(n) <= 0 {
					continue
				}
				flat := true
				for _, vi := range tris[nb] {
					if math.Abs(n.Dot(pts[vi])-off) > tol {
						flat = false
						break
					}
				}
				if flat {
					group[nb] = g
					members = append(members, nb)
				}
			}
		}
		groups = append(groups, members)
	}

	var faces [][]int
	for g, members := range groups {
		if len(members) > 1 {
			if loop, ok := boundaryLoop(tris, members, group, g, owner); ok {
				faces = append(faces, loop)
				continue
			}
		}
		for _, ti := range members {
			t := tris[ti]
			faces = append(faces, []int{t[0], t[1], t[2]})
		}
	}
	return faces
}

// boundaryLoop returns the outline of group g as one vertex loop.
func boundaryLoop(tris [][3]int, members, group []int, g int, owner map[edgeKey]int) ([]int, bool) {
	next := make(map[int]int)
	start := -1
	for _, ti := range members {
		t := tris[ti]
		for j := 0; j < 3; j++ {
			a, b := t[j], t[(j+1)%3]
			if nb, ok := owner[edgeKey{b, a}]; ok && group[nb] == g {
				continue
			}
			if _, dup := next[a]; dup {
				return nil, false
			}
			next[a] = b
			if start < 0 {
				start = a
			}
		}
	}
	if start < 0 || !singleLoop(next, start, len(next)) {
		return nil, false
	}

	loop := make([]int, 0, len(next))
	for v := start; ; {
		loop = append(loop, v)
		v = next[v]
		if v == start {
			break
		}
	}
	return loop, true
}

// dropEdgeVertices removes vertices that sit on a straight edge between
// exactly two polygons, from both polygons at once so the surface stays
// closed.
func dropEdgeVertices(pts geom.PointSet, faces [][]int, tol float64) [][]int {
	uses := make(map[int][]int)
	for fi, f := range faces {
		for _, v := range f {
			uses[v] = append(uses[v], fi)
		}
	}

	for changed := true; changed; {
		changed = false
		for fi := range faces {
			for k := 0; k < len(faces[fi]) && len(faces[fi]) > 3; k++ {
				f := faces[fi]
				v := f[k]
				if len(uses[v]) != 2 {
					continue
				}
				u, w := f[(k+len(f)-1)%len(f)], f[(k+1)%len(f)]
				if !onSegment(pts[u], pts[v], pts[w], tol) {
					continue
				}

				gi := uses[v][0]
				if gi == fi {
					gi = uses[v][1]
				}
				g := faces[gi]
				m := indexOf(g, v)
				if m < 0 || len(g) <= 3 ||
					g[(m+len(g)-1)%len(g)] != w || g[(m+1)%len(g)] != u {
					continue
				}

				faces[gi] = append(g[:m], g[m+1:]...)
				faces[fi] = append(f[:k], f[k+1:]...)
				delete(uses, v)
				changed = true
				k--
			}
		}
	}
	return faces
}

// onSegment reports whether v lies strictly between u and w, within tol of
// the segment.
func onSegment(u, v, w geom.Point, tol float64) bool {
	d := w.Sub(u)
	l2 := d.Dot(d)
	if l2 == 0 {
		return false
	}
	uv := v.Sub(u)
	if t := uv.Dot(d) / l2; t <= 0 || t >= 1 {
		return false
	}
	return uv.Cross(d).Length()/math.Sqrt(l2) <= tol
}

func indexOf(s []int, v int) int {
	for i, x := range s {
		if x == v {
			return i
		}
	}
	return -1
}
