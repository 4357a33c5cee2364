// Package geom holds the small geometric vocabulary shared by the collider
// packages: points and point sets, orthonormal bases, and placement
// transforms. Positions use the sdfx vector type so that bounds and
// placement matrices come straight from sdfx; bases use mgl64 matrices.
package geom
