// Package patch implements the patch algebra of the model pipeline: the
// small set of generic operators (VecPatch, VecDeepPatch, HashMapPatch,
// HashMapDeepPatch, NestedMap) that every composable collection in the
// descriptor model is expressed through.
package patch

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/dofigen/dofigen-go/internal/dofigenerr"
)

// VecPatch is a sequence patch over base-relative indices. Exactly one of
// two modes applies at Apply time: either ReplaceAll is set (the whole
// sequence form, including the bare scalar/list shortcuts and the "_" key)
// and every other field is ignored, or ReplaceAll is nil and the
// insert/replace/append buckets are applied positionally.
type VecPatch[T any] struct {
	ReplaceAll   []T
	hasReplace   bool
	ReplaceAt    map[uint16][]T
	InsertBefore map[uint16][]T
	InsertAfter  map[uint16][]T
	Append       []T
}

// IsReplaceAll reports whether this patch fully replaces the base sequence.
func (p VecPatch[T]) IsReplaceAll() bool { return p.hasReplace }

// ReplaceAllVec builds a VecPatch that wholesale-replaces a base sequence
// with values, the patch-space equivalent of the "_" reset key. Used to
// fold an already-resolved value back into patch form, e.g. when
// combining several already-loaded "extend" sources before the final
// patch is applied.
func ReplaceAllVec[T any](values []T) VecPatch[T] {
	cp := make([]T, len(values))
	copy(cp, values)
	return VecPatch[T]{ReplaceAll: cp, hasReplace: true}
}

// Apply folds the patch into base, returning a new slice. base is never
// mutated.
func (p VecPatch[T]) Apply(base []T) ([]T, error) {
	if p.hasReplace {
		out := make([]T, len(p.ReplaceAll))
		copy(out, p.ReplaceAll)
		return out, nil
	}

	n := uint16(len(base))
	for idx := range p.ReplaceAt {
		if idx >= n {
			return nil, fmt.Errorf("patch: replace index %d out of bounds (len %d)", idx, n)
		}
	}
	for idx := range p.InsertBefore {
		if idx > n {
			return nil, fmt.Errorf("patch: insert-before index %d out of bounds (len %d)", idx, n)
		}
	}
	for idx := range p.InsertAfter {
		if idx >= n {
			return nil, fmt.Errorf("patch: insert-after index %d out of bounds (len %d)", idx, n)
		}
	}

	out := make([]T, 0, len(base)+len(p.Append))
	for i := uint16(0); i < n; i++ {
		if before, ok := p.InsertBefore[i]; ok {
			out = append(out, before...)
		}
		if replacement, ok := p.ReplaceAt[i]; ok {
			out = append(out, replacement...)
		} else {
			out = append(out, base[i])
		}
		if after, ok := p.InsertAfter[i]; ok {
			out = append(out, after...)
		}
	}
	// insert-before targeting exactly len(base) (append position)
	if before, ok := p.InsertBefore[n]; ok {
		out = append(out, before...)
	}
	out = append(out, p.Append...)
	return out, nil
}

// ApplyElements resolves vp's sequence-patch operations against base, the
// already-resolved element slice, converting every patch element P that
// the operations introduce (replace/insert/append/replace-all) into the
// resolved type T via applyFn. applyFn's T argument is T's zero value,
// since these are brand-new elements rather than merges into an existing
// one; elements base itself already holds pass through untouched.
//
// Used wherever a VecPatch field holds patch-form elements (e.g.
// VecPatch[PortPatch] backing a resolved []Port), and by VecDeepPatch.Apply
// once it has folded its own per-index deep merges into base.
func ApplyElements[T any, P any](vp VecPatch[P], base []T, applyFn func(T, P) (T, error)) ([]T, error) {
	resolve := func(values []P) ([]T, error) {
		out := make([]T, len(values))
		var zero T
		for i, v := range values {
			resolved, err := applyFn(zero, v)
			if err != nil {
				return nil, err
			}
			out[i] = resolved
		}
		return out, nil
	}

	if vp.IsReplaceAll() {
		return resolve(vp.ReplaceAll)
	}

	n := uint16(len(base))
	for idx := range vp.ReplaceAt {
		if idx >= n {
			return nil, fmt.Errorf("patch: replace index %d out of bounds (len %d)", idx, n)
		}
	}
	for idx := range vp.InsertBefore {
		if idx > n {
			return nil, fmt.Errorf("patch: insert-before index %d out of bounds (len %d)", idx, n)
		}
	}
	for idx := range vp.InsertAfter {
		if idx >= n {
			return nil, fmt.Errorf("patch: insert-after index %d out of bounds (len %d)", idx, n)
		}
	}

	out := make([]T, 0, len(base)+len(vp.Append))
	for i := uint16(0); i < n; i++ {
		if before, ok := vp.InsertBefore[i]; ok {
			resolved, err := resolve(before)
			if err != nil {
				return nil, err
			}
			out = append(out, resolved...)
		}
		if replacement, ok := vp.ReplaceAt[i]; ok {
			resolved, err := resolve(replacement)
			if err != nil {
				return nil, err
			}
			out = append(out, resolved...)
		} else {
			out = append(out, base[i])
		}
		if after, ok := vp.InsertAfter[i]; ok {
			resolved, err := resolve(after)
			if err != nil {
				return nil, err
			}
			out = append(out, resolved...)
		}
	}
	if before, ok := vp.InsertBefore[n]; ok {
		resolved, err := resolve(before)
		if err != nil {
			return nil, err
		}
		out = append(out, resolved...)
	}
	tail, err := resolve(vp.Append)
	if err != nil {
		return nil, err
	}
	return append(out, tail...), nil
}

// UnmarshalYAML implements the relaxed VecPatch grammar (bare list,
// "_"/"+"/"N"/"+N"/"N+" keyed ops, or a single replace-all list).
func (p *VecPatch[T]) UnmarshalYAML(node *yaml.Node) error {
	ops, replace, err := decodeVecOps[T](node)
	if err != nil {
		return err
	}
	if replace != nil {
		p.ReplaceAll = *replace
		p.hasReplace = true
		return nil
	}
	p.ReplaceAt = ops.replaceAt
	p.InsertBefore = ops.insertBefore
	p.InsertAfter = ops.insertAfter
	p.Append = ops.appendTail
	return nil
}

type vecOps[T any] struct {
	replaceAt    map[uint16][]T
	insertBefore map[uint16][]T
	insertAfter  map[uint16][]T
	appendTail   []T
}

// decodeVecOps decodes the common sequence-patch grammar shared by VecPatch
// and VecDeepPatch (minus the "N<" deep-merge key, which the caller handles).
// It returns either a whole-sequence replacement or a populated op set.
func decodeVecOps[T any](node *yaml.Node) (*vecOps[T], *[]T, error) {
	switch node.Kind {
	case yaml.SequenceNode:
		var list []T
		if err := node.Decode(&list); err != nil {
			return nil, nil, err
		}
		return nil, &list, nil
	case yaml.ScalarNode:
		if StrictMode {
			return nil, nil, dofigenerr.InvalidShortcut(nil, "a bare scalar in place of a list is disabled in strict mode")
		}
		var single T
		if err := node.Decode(&single); err != nil {
			return nil, nil, err
		}
		list := []T{single}
		return nil, &list, nil
	case yaml.MappingNode:
		ops := &vecOps[T]{
			replaceAt:    map[uint16][]T{},
			insertBefore: map[uint16][]T{},
			insertAfter:  map[uint16][]T{},
		}
		sawReset := false
		sawOther := false
		var reset []T
		for i := 0; i+1 < len(node.Content); i += 2 {
			keyNode := node.Content[i]
			valNode := node.Content[i+1]
			key := keyNode.Value

			values, err := decodeOneOrMany[T](valNode)
			if err != nil {
				return nil, nil, fmt.Errorf("patch key %q: %w", key, err)
			}

			switch {
			case key == "_":
				sawReset = true
				reset = values
			case key == "+":
				sawOther = true
				ops.appendTail = append(ops.appendTail, values...)
			case strings.HasPrefix(key, "+"):
				sawOther = true
				pos, err := parseIndex(key[1:])
				if err != nil {
					return nil, nil, fmt.Errorf("patch key %q: %w", key, err)
				}
				ops.insertBefore[pos] = append(ops.insertBefore[pos], values...)
			case strings.HasSuffix(key, "+"):
				sawOther = true
				pos, err := parseIndex(key[:len(key)-1])
				if err != nil {
					return nil, nil, fmt.Errorf("patch key %q: %w", key, err)
				}
				ops.insertAfter[pos] = append(ops.insertAfter[pos], values...)
			default:
				sawOther = true
				pos, err := parseIndex(key)
				if err != nil {
					return nil, nil, fmt.Errorf("patch key %q: unrecognized vec-patch operator", key)
				}
				ops.replaceAt[pos] = append(ops.replaceAt[pos], values...)
			}
		}
		if sawReset {
			if err := checkResetCombination(sawOther); err != nil {
				return nil, nil, err
			}
			return nil, &reset, nil
		}
		return ops, nil, nil
	default:
		return nil, nil, fmt.Errorf("patch: expected a sequence or mapping, got %v", node.Kind)
	}
}

func checkResetCombination(sawOther bool) error {
	if sawOther {
		return fmt.Errorf("patch: the \"_\" key must not be combined with any other key")
	}
	return nil
}

func decodeOneOrMany[T any](node *yaml.Node) ([]T, error) {
	if node.Kind == yaml.SequenceNode {
		var list []T
		if err := node.Decode(&list); err != nil {
			return nil, err
		}
		return list, nil
	}
	var single T
	if err := node.Decode(&single); err != nil {
		return nil, err
	}
	return []T{single}, nil
}

func parseIndex(s string) (uint16, error) {
	n, err := strconv.ParseUint(s, 10, 16)
	if err != nil {
		return 0, fmt.Errorf("not a valid index: %q", s)
	}
	return uint16(n), nil
}

// sortedKeys returns the keys of m in ascending order, for deterministic
// iteration where map order would otherwise be unstable.
func sortedKeys[V any](m map[uint16]V) []uint16 {
	keys := make([]uint16, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}
