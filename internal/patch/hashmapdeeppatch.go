package patch

import "gopkg.in/yaml.v3"

// HashMapDeepPatch is like HashMapPatch, but present values are patched
// into (not replacing) the corresponding base value.
type HashMapDeepPatch[K comparable, V any, P any] struct {
	Set    map[K]P
	Remove map[K]bool
}

// Apply folds the patch into base. mergeFn patches a P into the current V
// for a key (the zero value of V when the key is absent from base).
func (p HashMapDeepPatch[K, V, P]) Apply(base map[K]V, mergeFn func(V, P) (V, error)) (map[K]V, error) {
	out := make(map[K]V, len(base)+len(p.Set))
	for k, v := range base {
		out[k] = v
	}
	for k := range p.Remove {
		delete(out, k)
	}
	for k, pv := range p.Set {
		merged, err := mergeFn(out[k], pv)
		if err != nil {
			return nil, err
		}
		out[k] = merged
	}
	return out, nil
}

// UnmarshalYAML decodes a mapping node; explicit YAML nulls remove the key.
func (p *HashMapDeepPatch[K, V, P]) UnmarshalYAML(node *yaml.Node) error {
	set, remove, err := decodeMapOps[K, P](node)
	if err != nil {
		return err
	}
	p.Set = set
	p.Remove = remove
	return nil
}
