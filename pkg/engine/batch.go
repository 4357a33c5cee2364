package engine

import (
	"github.com/chazu/collider/pkg/collision"
	"github.com/chazu/collider/pkg/geom"
	"github.com/chazu/collider/pkg/scene"
)

// Request is one collision block to generate, as described by a
// (collider ...) form.
type Request struct {
	Name      string           // explicit block name; empty derives one from the batch naming
	Source    string           // scene object the points are read from
	Points    geom.PointSet    // explicit world-space points, used instead of Source vertices
	Select    []int            // vertex subset of Source, read as an edit-mode selection
	Params    collision.Params // method, offset, rotation
	AutoFocus bool             // make the new block active and selected
}

// Batch is the output of evaluating a script: the naming in force and the
// requests in source order.
type Batch struct {
	Naming   scene.Naming
	Requests []Request
	Refresh  bool // renumber existing blocks after the requests run
}

// NewBatch returns an empty batch with the default naming.
func NewBatch() *Batch {
	return &Batch{Naming: scene.DefaultNaming()}
}

// Len returns the number of requests.
func (b *Batch) Len() int {
	return len(b.Requests)
}
