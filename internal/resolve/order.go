package resolve

import (
	"github.com/dofigen/dofigen-go/internal/descriptor"
	"github.com/dofigen/dofigen-go/internal/dofigenerr"
)

type color int

const (
	white color = iota
	gray
	black
)

// topologicalOrder orders builders so that every builder appears before
// any stage referencing it through fromBuilder, using a DFS with a
// visiting set (gray) to detect cycles.
func topologicalOrder(builders descriptor.Builders) (descriptor.Builders, error) {
	byName := map[string]descriptor.Stage{}
	for _, ns := range builders {
		byName[ns.Name] = ns.Stage
	}

	colors := map[string]color{}
	var out descriptor.Builders
	var chain []string

	var visit func(name string) error
	visit = func(name string) error {
		switch colors[name] {
		case black:
			return nil
		case gray:
			return dofigenerr.StageCycle(append(append([]string{}, chain...), name))
		}
		colors[name] = gray
		chain = append(chain, name)
		stage := byName[name]
		for _, dep := range builderRefs(stage) {
			if _, ok := byName[dep]; !ok {
				continue // unresolvable reference already reported by validateReferences
			}
			if err := visit(dep); err != nil {
				return err
			}
		}
		chain = chain[:len(chain)-1]
		colors[name] = black
		out = append(out, descriptor.NamedStage{Name: name, Stage: stage})
		return nil
	}

	for _, ns := range builders {
		if err := visit(ns.Name); err != nil {
			return nil, err
		}
	}
	return out, nil
}
