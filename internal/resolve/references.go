package resolve

import (
	"github.com/dofigen/dofigen-go/internal/descriptor"
	"github.com/dofigen/dofigen-go/internal/dofigenerr"
)

// builderRefs returns the names of every builder s references, via its
// own FROM, a Cache/Bind mount's FROM, or a Copy entry's FROM.
func builderRefs(s descriptor.Stage) []string {
	var refs []string
	add := func(fc descriptor.FromContext) {
		if fc.Kind == descriptor.FromBuilder {
			refs = append(refs, fc.BuilderName)
		}
	}
	add(s.From)
	for _, c := range s.Run.Cache {
		if c.From != nil {
			add(*c.From)
		}
	}
	for _, b := range s.Run.Bind {
		add(b.From)
	}
	for _, cr := range s.Copy {
		if cr.Kind == descriptor.CopyKindCopy && cr.Copy != nil {
			add(cr.Copy.From)
		}
	}
	return refs
}

// validateReferences checks that every fromBuilder reference names a
// builder declared earlier in insertion order (root stage may reference
// any builder, since it is always emitted last).
func validateReferences(d descriptor.Descriptor) error {
	declaredBefore := map[string]bool{}
	for _, ns := range d.Builders {
		for _, ref := range builderRefs(ns.Stage) {
			if !declaredBefore[ref] {
				return dofigenerr.UnknownReference(nil, "builder \""+ns.Name+"\" references \""+ref+"\", which is not declared earlier")
			}
		}
		declaredBefore[ns.Name] = true
	}
	for _, ref := range builderRefs(d.Stage) {
		if !declaredBefore[ref] {
			return dofigenerr.UnknownReference(nil, "the root stage references \""+ref+"\", which is not a declared builder")
		}
	}
	return nil
}
