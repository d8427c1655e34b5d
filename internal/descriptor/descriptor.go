package descriptor

import (
	"gopkg.in/yaml.v3"

	"github.com/dofigen/dofigen-go/internal/patch"
)

// Descriptor is the fully-resolved root document: the final image stage
// plus the builders it may draw from and the document-level fields that
// apply to the whole build (context paths, ignore patterns, and ARGs
// declared before the first FROM).
type Descriptor struct {
	Stage
	Context   []string
	Ignore    []string
	Builders  Builders
	GlobalArg map[string]string
}

// DescriptorPatch is the patch form of Descriptor, and also the shape
// every raw YAML/JSON document (and every extended resource) decodes
// into before being folded onto its base.
type DescriptorPatch struct {
	StagePatch `yaml:",inline"`
	Context    patch.VecPatch[string]             `yaml:"context"`
	Ignore     patch.VecPatch[string]              `yaml:"ignore"`
	Builders   BuildersPatch                       `yaml:"builders"`
	GlobalArg  patch.HashMapPatch[string, string]   `yaml:"globalArg"`
	Extend     []string                             `yaml:"extend"`
}

// Apply folds the patch into base. GlobalArg (ARGs declared before the
// first FROM) comes from the root document's "globalArg" key; the root
// stage's own ARGs come from its "arg" key.
func (p DescriptorPatch) Apply(base Descriptor) (Descriptor, error) {
	stage, err := p.StagePatch.Apply(base.Stage)
	if err != nil {
		return Descriptor{}, err
	}
	out := Descriptor{Stage: stage, GlobalArg: p.GlobalArg.Apply(base.GlobalArg)}
	if out.Context, err = p.Context.Apply(base.Context); err != nil {
		return out, err
	}
	if out.Ignore, err = p.Ignore.Apply(base.Ignore); err != nil {
		return out, err
	}
	if out.Builders, err = p.Builders.Apply(base.Builders); err != nil {
		return out, err
	}
	return out, nil
}

// UnmarshalYAML decodes a root document. Extend is read out separately
// by internal/extend before the remaining fields are folded, since
// resolving "extend" requires fetching and recursively parsing other
// resources first.
func (p *DescriptorPatch) UnmarshalYAML(node *yaml.Node) error {
	type raw DescriptorPatch
	var r raw
	if err := node.Decode(&r); err != nil {
		return err
	}
	*p = DescriptorPatch(r)
	return nil
}
