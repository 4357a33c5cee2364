package scene

import (
	"fmt"
	"strings"
)

// Default naming values for new collision blocks.
const (
	DefaultPrefix     = "UCX_"
	DefaultCustomName = "CollisionBlock"
)

// Naming decides what a new collision block is called.
type Naming struct {
	Prefix    string `json:"prefix"`
	Custom    string `json:"custom_name"`
	UseActive bool   `json:"use_active_name"` // name after the source object instead of Custom
}

// DefaultNaming names blocks "UCX_<source>_NN".
func DefaultNaming() Naming {
	return Naming{
		Prefix:    DefaultPrefix,
		Custom:    DefaultCustomName,
		UseActive: true,
	}
}

// BlockName formats "<prefix><source>_<NN>", with NN zero padded to two
// digits.
func BlockName(prefix, source string, number int) string {
	return fmt.Sprintf("%s%s_%02d", prefix, source, number)
}

// Next returns the name for a new block built from the source object.
// The number is one more than the count of existing names that start with
// the prefix (or with the custom name in custom mode). In custom mode the
// custom name is returned as is and Scene.Add resolves any clash.
func (n Naming) Next(existing []string, source string) string {
	key := n.Prefix
	if !n.UseActive {
		key = n.Custom
	}
	count := 0
	for _, name := range existing {
		if strings.HasPrefix(name, key) {
			count++
		}
	}
	if !n.UseActive {
		return n.Custom
	}
	return BlockName(n.Prefix, source, count+1)
}

// NextName is Next over the names currently in the scene.
func (s *Scene) NextName(n Naming, source string) string {
	return n.Next(s.Names(), source)
}

// Refresh renames every object whose name starts with prefix to
// "<prefix><source>_NN", numbering from 01 in scene order, and returns how
// many objects it renamed. All new names share the prefix, so applying
// them together cannot collide with an untouched object.
func (s *Scene) Refresh(prefix, source string) (int, error) {
	if prefix == "" {
		return 0, fmt.Errorf("scene: refresh needs a non-empty prefix")
	}

	type rename struct {
		o        *Object
		old, new string
	}
	var plan []rename
	for _, o := range s.objects {
		if strings.HasPrefix(o.Name, prefix) {
			plan = append(plan, rename{o: o, old: o.Name, new: BlockName(prefix, source, len(plan)+1)})
		}
	}

	for _, r := range plan {
		delete(s.index, r.old)
	}
	// Selection and active flags are carried over by old name, so collect
	// them before any relabel overwrites an entry.
	wasActive := ""
	wasSelected := make(map[string]bool)
	for _, r := range plan {
		if s.active == r.old {
			wasActive = r.new
		}
		if s.selected[r.old] {
			wasSelected[r.new] = true
			delete(s.selected, r.old)
		}
	}
	for _, r := range plan {
		r.o.Name = r.new
		s.index[r.new] = r.o
	}
	if wasActive != "" {
		s.active = wasActive
	}
	for name := range wasSelected {
		s.selected[name] = true
	}
	return len(plan), nil
}
