package engine

import (
	"fmt"
	"math"
	"strings"

	"github.com/chazu/collider/pkg/collision"
	"github.com/chazu/collider/pkg/geom"
	zygo "github.com/glycerine/zygomys/zygo"
)

// ---------------------------------------------------------------------------
// Source preprocessing
// ---------------------------------------------------------------------------

// preprocessSource transforms collider script source before passing it to
// zygomys. It performs two transformations:
//
//  1. Keyword conversion: :keyword -> "__kw_keyword" (string literal)
//     This avoids the need to register keyword symbols as globals, which
//     would conflict with user-defined variables of the same name.
//
//  2. Kebab-case to underscore: load-points -> load_points
//     zygomys does not allow hyphens in identifiers (it interprets them
//     as the subtraction operator). This converts kebab-case identifiers
//     to underscore form outside of strings and comments.
//
// Both transformations respect string literal boundaries and line comments.
func preprocessSource(source string) string {
	result := make([]byte, 0, len(source)+len(source)/4)
	b := []byte(source)
	i := 0
	for i < len(b) {
		// Skip double-quoted string literals.
		if b[i] == '"' {
			result = append(result, b[i])
			i++
			for i < len(b) && b[i] != '"' {
				if b[i] == '\\' && i+1 < len(b) {
					result = append(result, b[i], b[i+1])
					i += 2
					continue
				}
				result = append(result, b[i])
				i++
			}
			if i < len(b) {
				result = append(result, b[i])
				i++
			}
			continue
		}
		// Skip backtick-quoted string literals.
		if b[i] == '`' {
			result = append(result, b[i])
			i++
			for i < len(b) && b[i] != '`' {
				result = append(result, b[i])
				i++
			}
			if i < len(b) {
				result = append(result, b[i])
				i++
			}
			continue
		}
		// Convert ; line comments to // comments for zygomys.
		// zygomys uses // for line comments, not the traditional Lisp ;.
		if b[i] == ';' {
			result = append(result, '/', '/')
			i++
			// Skip additional ; characters (;; style).
			for i < len(b) && b[i] == ';' {
				i++
			}
			for i < len(b) && b[i] != '\n' {
				result = append(result, b[i])
				i++
			}
			continue
		}
		// Transform :keyword to "__kw_keyword".
		if b[i] == ':' && i+1 < len(b) {
			// Preserve := (assignment operator).
			if b[i+1] == '=' {
				result = append(result, b[i], b[i+1])
				i += 2
				continue
			}
			// Check for keyword: colon followed by a letter.
			if isLetter(b[i+1]) {
				j := i + 1
				for j < len(b) && isKWChar(b[j]) {
					j++
				}
				kwName := string(b[i+1 : j])
				result = append(result, '"')
				result = append(result, []byte(kwPrefix)...)
				result = append(result, []byte(kwName)...)
				result = append(result, '"')
				i = j
				continue
			}
		}
		// Transform kebab-case identifiers: alpha-alpha -> alpha_alpha.
		// Only when hyphen sits between identifier characters (not a minus operator).
		if b[i] == '-' && i > 0 && i+1 < len(b) &&
			isIdentChar(b[i-1]) && isIdentStartChar(b[i+1]) {
			result = append(result, '_')
			i++
			continue
		}
		result = append(result, b[i])
		i++
	}
	return string(result)
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isKWChar(c byte) bool {
	return isLetter(c) || (c >= '0' && c <= '9') || c == '-' || c == '_'
}

func isIdentChar(c byte) bool {
	return isLetter(c) || (c >= '0' && c <= '9') || c == '_'
}

func isIdentStartChar(c byte) bool {
	return isLetter(c)
}

// ---------------------------------------------------------------------------
// Custom Sexp types for passing Go values through the zygomys environment
// ---------------------------------------------------------------------------

// sexpVec3 wraps a geom.Point.
type sexpVec3 struct {
	vec geom.Point
}

func (v *sexpVec3) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(vec3 %g %g %g)", v.vec.X, v.vec.Y, v.vec.Z)
}
func (v *sexpVec3) Type() *zygo.RegisteredType { return nil }

// sexpPoints wraps a point set built by `points`.
type sexpPoints struct {
	ps geom.PointSet
}

func (p *sexpPoints) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(points <%d>)", len(p.ps))
}
func (p *sexpPoints) Type() *zygo.RegisteredType { return nil }

// sexpRequest refers to a request recorded by `collider`.
type sexpRequest struct {
	index int
	req   Request
}

func (r *sexpRequest) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(collider #%d %s)", r.index, r.req.Params.Method)
}
func (r *sexpRequest) Type() *zygo.RegisteredType { return nil }

// ---------------------------------------------------------------------------
// Keyword argument parsing
// ---------------------------------------------------------------------------

// kwPrefix is the marker prepended to keyword names by preprocessSource.
const kwPrefix = "__kw_"

// isKW checks if a Sexp is a preprocessed keyword string.
// Returns the keyword name (without prefix) and true if it is.
func isKW(s zygo.Sexp) (string, bool) {
	str, ok := s.(*zygo.SexpStr)
	if !ok {
		return "", false
	}
	if strings.HasPrefix(str.S, kwPrefix) {
		return str.S[len(kwPrefix):], true
	}
	return "", false
}

// kwArgs holds the result of parsing a mixed positional+keyword argument list.
type kwArgs struct {
	kw         map[string]zygo.Sexp
	positional []zygo.Sexp
}

// parseArgs separates args into keyword and positional arguments.
// Keywords are identified by the __kw_ prefix added during preprocessing.
func parseArgs(args []zygo.Sexp) kwArgs {
	result := kwArgs{kw: make(map[string]zygo.Sexp)}
	i := 0
	for i < len(args) {
		name, ok := isKW(args[i])
		if ok {
			if i+1 < len(args) {
				result.kw[name] = args[i+1]
				i += 2
			} else {
				// Keyword at end with no value: treat as flag with nil.
				result.kw[name] = zygo.SexpNull
				i++
			}
		} else {
			result.positional = append(result.positional, args[i])
			i++
		}
	}
	return result
}

// ---------------------------------------------------------------------------
// Value extraction helpers
// ---------------------------------------------------------------------------

// toFloat64 extracts a float64 from a Sexp (SexpInt or SexpFloat).
func toFloat64(s zygo.Sexp) (float64, error) {
	switch v := s.(type) {
	case *zygo.SexpInt:
		return float64(v.Val), nil
	case *zygo.SexpFloat:
		return v.Val, nil
	}
	return 0, fmt.Errorf("expected number, got %T (%s)", s, s.SexpString(nil))
}

// toString extracts a string from a Sexp.
func toString(s zygo.Sexp) (string, error) {
	if str, ok := s.(*zygo.SexpStr); ok {
		return str.S, nil
	}
	return "", fmt.Errorf("expected string, got %T (%s)", s, s.SexpString(nil))
}

// toKeywordString extracts a keyword name or plain string from a Sexp.
// Handles both preprocessed keywords (__kw_z) and plain strings ("z").
func toKeywordString(s zygo.Sexp) (string, error) {
	str, ok := s.(*zygo.SexpStr)
	if !ok {
		return "", fmt.Errorf("expected keyword or string, got %T (%s)", s, s.SexpString(nil))
	}
	if strings.HasPrefix(str.S, kwPrefix) {
		return str.S[len(kwPrefix):], nil
	}
	return str.S, nil
}

// sexpListToSlice converts a SexpPair (Lisp list) or SexpArray to a Go slice.
func sexpListToSlice(s zygo.Sexp) ([]zygo.Sexp, error) {
	switch v := s.(type) {
	case *zygo.SexpPair:
		return zygo.ListToArray(v)
	case *zygo.SexpArray:
		return v.Val, nil
	case *zygo.SexpSentinel:
		if v == zygo.SexpNull {
			return nil, nil
		}
	}
	return nil, fmt.Errorf("expected list or array, got %T", s)
}

// toBool extracts a boolean from a Sexp.
func toBool(s zygo.Sexp) (bool, error) {
	if b, ok := s.(*zygo.SexpBool); ok {
		return b.Val, nil
	}
	return false, fmt.Errorf("expected true or false, got %T (%s)", s, s.SexpString(nil))
}

// toInt extracts an integer from a Sexp.
func toInt(s zygo.Sexp) (int, error) {
	if v, ok := s.(*zygo.SexpInt); ok {
		return int(v.Val), nil
	}
	return 0, fmt.Errorf("expected integer, got %T (%s)", s, s.SexpString(nil))
}

// toVec3 extracts a point from a sexpVec3.
func toVec3(s zygo.Sexp) (geom.Point, error) {
	if v, ok := s.(*sexpVec3); ok {
		return v.vec, nil
	}
	return geom.Point{}, fmt.Errorf("expected vec3, got %T (%s)", s, s.SexpString(nil))
}

// toMethod converts a keyword or string such as :box to a collision.Method.
func toMethod(s zygo.Sexp) (collision.Method, error) {
	name, err := toKeywordString(s)
	if err != nil {
		return "", err
	}
	return collision.ParseMethod(name)
}

// toPoints flattens vec3 values, point sets, and lists or arrays of either
// into one point set.
func toPoints(s zygo.Sexp) (geom.PointSet, error) {
	switch v := s.(type) {
	case *sexpPoints:
		return v.ps, nil
	case *sexpVec3:
		return geom.PointSet{v.vec}, nil
	}
	items, err := sexpListToSlice(s)
	if err != nil {
		return nil, fmt.Errorf("expected points, vec3 or a list of them: %w", err)
	}
	var ps geom.PointSet
	for i, item := range items {
		sub, err := toPoints(item)
		if err != nil {
			return nil, fmt.Errorf("entry %d: %w", i, err)
		}
		ps = append(ps, sub...)
	}
	return ps, nil
}

// toIndices converts a list or array of integers.
func toIndices(s zygo.Sexp) ([]int, error) {
	items, err := sexpListToSlice(s)
	if err != nil {
		return nil, err
	}
	out := make([]int, 0, len(items))
	for i, item := range items {
		n, err := toInt(item)
		if err != nil {
			return nil, fmt.Errorf("entry %d: %w", i, err)
		}
		if n < 0 {
			return nil, fmt.Errorf("entry %d: negative vertex index %d", i, n)
		}
		out = append(out, n)
	}
	return out, nil
}

// ---------------------------------------------------------------------------
// Builtin registration
// ---------------------------------------------------------------------------

// registerBuiltins installs the collider script builtins into a zygomys
// environment. The builtins record their effects in b during evaluation.
//
// Source code must be preprocessed with preprocessSource() before evaluation so
// that :keyword tokens are converted to recognizable string literals.
func registerBuiltins(env *zygo.Zlisp, b *Batch) {

	// -----------------------------------------------------------------------
	// (vec3 1 2 3)
	// -----------------------------------------------------------------------
	env.AddFunction("vec3", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 3 {
			return zygo.SexpNull, fmt.Errorf("vec3 requires exactly 3 arguments, got %d", len(args))
		}

		x, err := toFloat64(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("vec3: x: %w", err)
		}
		y, err := toFloat64(args[1])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("vec3: y: %w", err)
		}
		z, err := toFloat64(args[2])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("vec3: z: %w", err)
		}

		return &sexpVec3{vec: geom.Point{X: x, Y: y, Z: z}}, nil
	})

	// -----------------------------------------------------------------------
	// (deg 90) => 1.5707963...
	// -----------------------------------------------------------------------
	env.AddFunction("deg", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 1 {
			return zygo.SexpNull, fmt.Errorf("deg requires exactly 1 argument, got %d", len(args))
		}
		d, err := toFloat64(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("deg: %w", err)
		}
		return &zygo.SexpFloat{Val: d * math.Pi / 180}, nil
	})

	// -----------------------------------------------------------------------
	// (points (vec3 0 0 0) (vec3 1 0 0) other-points ...)
	// -----------------------------------------------------------------------
	env.AddFunction("points", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		var ps geom.PointSet
		for i, a := range args {
			sub, err := toPoints(a)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("points: argument %d: %w", i, err)
			}
			ps = append(ps, sub...)
		}
		return &sexpPoints{ps: ps}, nil
	})

	// -----------------------------------------------------------------------
	// (naming :prefix "UCX_" :custom "CollisionBlock" :use-active true)
	//
	// Applies to every collider form that follows it.
	// -----------------------------------------------------------------------
	env.AddFunction("naming", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		n := b.Naming

		if v, ok := pa.kw["prefix"]; ok {
			s, err := toString(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("naming: prefix: %w", err)
			}
			n.Prefix = s
		}
		if v, ok := pa.kw["custom"]; ok {
			s, err := toString(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("naming: custom: %w", err)
			}
			n.Custom = s
		}
		if v, ok := pa.kw["use-active"]; ok {
			u, err := toBool(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("naming: use-active: %w", err)
			}
			n.UseActive = u
		}

		if n.UseActive && n.Prefix == "" {
			return zygo.SexpNull, fmt.Errorf("naming: prefix must not be empty when naming after the source")
		}
		if !n.UseActive && n.Custom == "" {
			return zygo.SexpNull, fmt.Errorf("naming: custom name must not be empty")
		}
		b.Naming = n
		return zygo.SexpNull, nil
	})

	// -----------------------------------------------------------------------
	// (collider :source "crate" :method :box :points pts :select (list 0 1 2)
	//           :offset (vec3 0 0 1) :rotation (vec3 0 0 (deg 45))
	//           :oriented true :epsilon 1e-6 :auto-focus true :name "UCX_lid")
	// -----------------------------------------------------------------------
	env.AddFunction("collider", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		if len(pa.positional) > 0 {
			return zygo.SexpNull, fmt.Errorf("collider takes keyword arguments only, got %s", pa.positional[0].SexpString(nil))
		}
		req := Request{Params: collision.Params{Method: collision.MethodConvex}}

		if v, ok := pa.kw["source"]; ok {
			s, err := toString(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("collider: source: %w", err)
			}
			req.Source = s
		}
		if v, ok := pa.kw["name"]; ok {
			s, err := toString(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("collider: name: %w", err)
			}
			req.Name = s
		}
		if v, ok := pa.kw["method"]; ok {
			m, err := toMethod(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("collider: method: %w", err)
			}
			req.Params.Method = m
		}
		if v, ok := pa.kw["points"]; ok {
			ps, err := toPoints(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("collider: points: %w", err)
			}
			req.Points = ps
		}
		if v, ok := pa.kw["select"]; ok {
			idx, err := toIndices(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("collider: select: %w", err)
			}
			req.Select = idx
		}
		if v, ok := pa.kw["offset"]; ok {
			vec, err := toVec3(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("collider: offset: %w", err)
			}
			req.Params.Offset = vec
		}
		if v, ok := pa.kw["rotation"]; ok {
			vec, err := toVec3(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("collider: rotation: %w", err)
			}
			req.Params.Rotation = vec
		}
		if v, ok := pa.kw["oriented"]; ok {
			o, err := toBool(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("collider: oriented: %w", err)
			}
			req.Params.Oriented = o
		}
		if v, ok := pa.kw["epsilon"]; ok {
			f, err := toFloat64(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("collider: epsilon: %w", err)
			}
			if f < 0 {
				return zygo.SexpNull, fmt.Errorf("collider: epsilon must not be negative, got %g", f)
			}
			req.Params.Epsilon = f
		}
		if v, ok := pa.kw["auto-focus"]; ok {
			a, err := toBool(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("collider: auto-focus: %w", err)
			}
			req.AutoFocus = a
		}

		if req.Source == "" && len(req.Points) == 0 {
			return zygo.SexpNull, fmt.Errorf("collider: needs :source or :points")
		}
		if len(req.Select) > 0 && req.Source == "" {
			return zygo.SexpNull, fmt.Errorf("collider: :select needs :source")
		}

		b.Requests = append(b.Requests, req)
		return &sexpRequest{index: len(b.Requests) - 1, req: req}, nil
	})

	// -----------------------------------------------------------------------
	// (refresh-names)
	//
	// Registered as "refresh_names"; the preprocessor rewrites the hyphen.
	// -----------------------------------------------------------------------
	env.AddFunction("refresh_names", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 0 {
			return zygo.SexpNull, fmt.Errorf("refresh-names takes no arguments, got %d", len(args))
		}
		b.Refresh = true
		return zygo.SexpNull, nil
	})
}
