package patch

import "gopkg.in/yaml.v3"

// HashMapPatch represents a patch over a map[K]V: a present non-null value
// sets/overrides the key, a present null value removes it, an absent key
// leaves the base untouched.
type HashMapPatch[K comparable, V any] struct {
	Set    map[K]V
	Remove map[K]bool
}

// Apply folds the patch into base, returning a new map.
func (p HashMapPatch[K, V]) Apply(base map[K]V) map[K]V {
	out := make(map[K]V, len(base)+len(p.Set))
	for k, v := range base {
		out[k] = v
	}
	for k := range p.Remove {
		delete(out, k)
	}
	for k, v := range p.Set {
		out[k] = v
	}
	return out
}

// UnmarshalYAML decodes a mapping node, treating explicit YAML nulls as key
// removal.
func (p *HashMapPatch[K, V]) UnmarshalYAML(node *yaml.Node) error {
	set, remove, err := decodeMapOps[K, V](node)
	if err != nil {
		return err
	}
	p.Set = set
	p.Remove = remove
	return nil
}

func decodeMapOps[K comparable, V any](node *yaml.Node) (map[K]V, map[K]bool, error) {
	if node.Kind != yaml.MappingNode {
		return nil, nil, &yaml.TypeError{Errors: []string{"hashmap patch: expected a mapping"}}
	}
	set := map[K]V{}
	remove := map[K]bool{}
	for i := 0; i+1 < len(node.Content); i += 2 {
		keyNode := node.Content[i]
		valNode := node.Content[i+1]

		var key K
		if err := keyNode.Decode(&key); err != nil {
			return nil, nil, err
		}

		if valNode.Tag == "!!null" {
			remove[key] = true
			continue
		}
		var val V
		if err := valNode.Decode(&val); err != nil {
			return nil, nil, err
		}
		set[key] = val
	}
	return set, remove, nil
}
