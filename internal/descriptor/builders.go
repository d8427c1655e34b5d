package descriptor

import "gopkg.in/yaml.v3"

// NamedStage pairs a builder's declared name with its resolved stage. The
// builders list preserves declaration order, since that order determines
// the stage index BuildKit assigns and therefore what a bare numeric
// "--from=N" would mean to a hand-written Dockerfile reader.
type NamedStage struct {
	Name  string
	Stage Stage
}

// Builders is the resolved, order-preserving form of the top-level
// "builders" mapping.
type Builders []NamedStage

// ByName returns the stage registered under name and whether it exists.
func (b Builders) ByName(name string) (Stage, bool) {
	for _, ns := range b {
		if ns.Name == name {
			return ns.Stage, true
		}
	}
	return Stage{}, false
}

// NamedStagePatch pairs a builder name with its patch.
type NamedStagePatch struct {
	Name  string
	Stage StagePatch
}

// BuildersPatch is the patch form of Builders: an ordered list of named
// stage patches, decoded from a YAML mapping whose key order is
// preserved by yaml.v3.
type BuildersPatch []NamedStagePatch

// Apply merges each named patch into the matching base entry (by name),
// preserving the base's declaration order, then appends any new names in
// the order they first appear in the patch.
func (p BuildersPatch) Apply(base Builders) (Builders, error) {
	out := make(Builders, 0, len(base))
	seen := map[string]bool{}
	patches := map[string]StagePatch{}
	var newNames []string
	for _, np := range p {
		if _, ok := base.ByName(np.Name); !ok {
			if !seen[np.Name] {
				newNames = append(newNames, np.Name)
			}
		}
		patches[np.Name] = np.Stage
		seen[np.Name] = true
	}

	for _, ns := range base {
		stage := ns.Stage
		if sp, ok := patches[ns.Name]; ok {
			merged, err := sp.Apply(stage)
			if err != nil {
				return nil, err
			}
			stage = merged
		}
		out = append(out, NamedStage{Name: ns.Name, Stage: stage})
	}
	for _, name := range newNames {
		merged, err := patches[name].Apply(Stage{})
		if err != nil {
			return nil, err
		}
		out = append(out, NamedStage{Name: name, Stage: merged})
	}
	return out, nil
}

// UnmarshalYAML decodes a mapping of builder name to stage patch,
// preserving key order.
func (p *BuildersPatch) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return &yaml.TypeError{Errors: []string{"builders: expected a mapping of name to stage"}}
	}
	var out BuildersPatch
	for i := 0; i+1 < len(node.Content); i += 2 {
		name := node.Content[i].Value
		var sp StagePatch
		if err := node.Content[i+1].Decode(&sp); err != nil {
			return err
		}
		out = append(out, NamedStagePatch{Name: name, Stage: sp})
	}
	*p = out
	return nil
}
