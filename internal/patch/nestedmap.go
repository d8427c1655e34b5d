package patch

import "gopkg.in/yaml.v3"

// NestedMap is a tree of maps whose leaves are scalar strings or deeper
// maps. It backs the LABEL field: a value like
//
//	label:
//	  org.opencontainers:
//	    title: my-app
//	    version: "1.0"
//
// flattens to two labels, "org.opencontainers.title" and
// "org.opencontainers.version", joining keys with ".". Merging is
// recursive; an explicit null at any level removes that subtree.
type NestedMap struct {
	Leaf     *string
	Children map[string]*NestedMap
	isNull   bool
}

// UnmarshalYAML decodes either a scalar leaf or a nested mapping.
func (n *NestedMap) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		if node.Tag == "!!null" {
			n.isNull = true
			return nil
		}
		var s string
		if err := node.Decode(&s); err != nil {
			return err
		}
		n.Leaf = &s
		return nil
	case yaml.MappingNode:
		children := map[string]*NestedMap{}
		for i := 0; i+1 < len(node.Content); i += 2 {
			key := node.Content[i].Value
			child := &NestedMap{}
			if err := node.Content[i+1].Decode(child); err != nil {
				return err
			}
			children[key] = child
		}
		n.Children = children
		return nil
	default:
		return &yaml.TypeError{Errors: []string{"nested map: expected a scalar or mapping"}}
	}
}

// Merge recursively folds patch into base. Nil receiver/arg handled as
// empty maps. A null subtree in patch removes the corresponding base
// subtree.
func Merge(base, patch *NestedMap) *NestedMap {
	if patch == nil {
		return base
	}
	if patch.isNull {
		return nil
	}
	if patch.Leaf != nil || base == nil {
		return patch
	}
	if base.Leaf != nil {
		return patch
	}
	merged := &NestedMap{Children: map[string]*NestedMap{}}
	for k, v := range base.Children {
		merged.Children[k] = v
	}
	for k, v := range patch.Children {
		result := Merge(merged.Children[k], v)
		if result == nil {
			delete(merged.Children, k)
		} else {
			merged.Children[k] = result
		}
	}
	return merged
}

// Flatten renders the tree into a map of dotted-key/value pairs; callers
// sort its keys for deterministic LABEL emission.
func Flatten(n *NestedMap) map[string]string {
	out := map[string]string{}
	flattenInto(n, "", out)
	return out
}

func flattenInto(n *NestedMap, prefix string, out map[string]string) {
	if n == nil {
		return
	}
	if n.Leaf != nil {
		if prefix != "" {
			out[prefix] = *n.Leaf
		}
		return
	}
	for k, child := range n.Children {
		key := k
		if prefix != "" {
			key = prefix + "." + k
		}
		flattenInto(child, key, out)
	}
}
