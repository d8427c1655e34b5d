package descriptor

import "gopkg.in/yaml.v3"

// FromKind discriminates what a stage's FROM, or a COPY/Cache/Bind's
// --from, draws from: nothing explicit (COPY's implicit default build
// context, the zero value), a pullable image, another builder stage in
// the same descriptor, or a named external build context supplied at
// build time (BuildKit's --build-context).
type FromKind int

const (
	FromDefaultContext FromKind = iota
	FromImage
	FromBuilder
	FromNamedContext
)

// FromContext is the resolved form of a FROM source: exactly one of
// Image, BuilderName or ContextName is meaningful, selected by Kind.
type FromContext struct {
	Kind        FromKind
	Image       ImageName
	BuilderName string
	ContextName string
}

// FromContextPatch is the patch form. Decoding sets exactly one of the
// three optional fields; Apply replaces the resolved value wholesale
// because a FROM source is not itself deep-mergeable: "from" behaves like
// a scalar field even though it has struct shortcuts.
type FromContextPatch struct {
	Image       *ImageNamePatch
	BuilderName *string
	ContextName *string
}

// Apply returns the patched FromContext, replacing base entirely when any
// field is set.
func (p FromContextPatch) Apply(base FromContext) (FromContext, error) {
	switch {
	case p.BuilderName != nil:
		return FromContext{Kind: FromBuilder, BuilderName: *p.BuilderName}, nil
	case p.ContextName != nil:
		return FromContext{Kind: FromNamedContext, ContextName: *p.ContextName}, nil
	case p.Image != nil:
		img, err := p.Image.Apply(ImageName{})
		if err != nil {
			return FromContext{}, err
		}
		return FromContext{Kind: FromImage, Image: img}, nil
	default:
		return base, nil
	}
}

// UnmarshalYAML accepts:
//   - a bare scalar image reference shortcut ("node:20")
//   - {builder: name} referring to another stage in the same document
//   - {context: name} referring to a named external build context
//   - the full ImageName struct form
func (p *FromContextPatch) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		if strictMode {
			return rejectShortcut("from")
		}
		var img ImageNamePatch
		if err := node.Decode(&img); err != nil {
			return err
		}
		p.Image = &img
		return nil
	}
	type raw struct {
		Builder *string `yaml:"builder"`
		Context *string `yaml:"context"`
	}
	var r raw
	if err := node.Decode(&r); err != nil {
		return err
	}
	if r.Builder != nil {
		p.BuilderName = r.Builder
		return nil
	}
	if r.Context != nil {
		p.ContextName = r.Context
		return nil
	}
	var img ImageNamePatch
	if err := node.Decode(&img); err != nil {
		return err
	}
	p.Image = &img
	return nil
}
