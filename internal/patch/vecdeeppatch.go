package patch

import (
	"fmt"
	"strconv"

	"gopkg.in/yaml.v3"
)

// VecDeepPatch is a VecPatch plus the "N<" deep-merge operator: the element
// at base-relative index N is not replaced, its fields are patched in place
// using a caller-supplied merge function. T is the resolved element type, P
// its patch type; the embedded VecPatch holds elements in patch form P, the
// same as every other sequence operation (replace/insert/append), so a
// brand-new element goes through the same permissive shortcut decoding as
// one reached via "N<".
type VecDeepPatch[T any, P any] struct {
	VecPatch[P]
	DeepMerge map[uint16]P
}

// Apply folds the patch into base. mergeFn merges a patch P into a resolved
// element T (as produced by applying patch algebra recursively to T's
// fields); it is supplied by the descriptor package, which alone knows how
// to merge a given T/P pair. New elements introduced by replace/insert/
// append/replace-all are resolved the same way, against T's zero value.
func (p VecDeepPatch[T, P]) Apply(base []T, mergeFn func(T, P) (T, error)) ([]T, error) {
	n := uint16(len(base))
	for idx := range p.DeepMerge {
		if idx >= n {
			return nil, fmt.Errorf("patch: deep-merge index %d out of bounds (len %d)", idx, n)
		}
	}

	merged := make([]T, len(base))
	copy(merged, base)
	for _, idx := range sortedKeys(p.DeepMerge) {
		v, err := mergeFn(merged[idx], p.DeepMerge[idx])
		if err != nil {
			return nil, err
		}
		merged[idx] = v
	}

	return ApplyElements(p.VecPatch, merged, mergeFn)
}

// UnmarshalYAML decodes the VecDeepPatch grammar: everything VecPatch
// accepts, plus "N<" keys carrying a partial patch for element N.
func (p *VecDeepPatch[T, P]) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.SequenceNode, yaml.ScalarNode:
		return p.VecPatch.UnmarshalYAML(node)
	case yaml.MappingNode:
		plain := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
		deep := map[uint16]P{}
		for i := 0; i+1 < len(node.Content); i += 2 {
			keyNode := node.Content[i]
			valNode := node.Content[i+1]
			key := keyNode.Value
			if len(key) > 1 && key[len(key)-1] == '<' {
				pos, err := strconv.ParseUint(key[:len(key)-1], 10, 16)
				if err != nil {
					return fmt.Errorf("patch key %q: not a valid deep-merge index", key)
				}
				var pv P
				if err := valNode.Decode(&pv); err != nil {
					return fmt.Errorf("patch key %q: %w", key, err)
				}
				deep[uint16(pos)] = pv
				continue
			}
			plain.Content = append(plain.Content, keyNode, valNode)
		}
		if len(plain.Content) > 0 || len(deep) == 0 {
			if err := p.VecPatch.UnmarshalYAML(plain); err != nil {
				return err
			}
		}
		p.DeepMerge = deep
		return nil
	default:
		return fmt.Errorf("patch: expected a sequence or mapping, got %v", node.Kind)
	}
}
