// Package resolve takes the fully-folded descriptor produced by
// internal/extend and internal/patch and turns it into a resolved IR
// ready for internal/emit: validating invariants, ordering stages
// topologically, applying defaults, pinning images through the lock
// store, and computing the global ARG table and ignore set.
package resolve

import (
	"context"
	"regexp"

	"github.com/dofigen/dofigen-go/internal/descriptor"
	"github.com/dofigen/dofigen-go/internal/dofigenerr"
	"github.com/dofigen/dofigen-go/internal/lockstore"
)

// IR is the canonical, fully-resolved intermediate representation the
// emitter consumes.
type IR struct {
	Stages      []descriptor.NamedStage // builders in topological order
	Root        descriptor.Stage
	Context     []string
	Ignore      []string
	GlobalArgs  map[string]string
}

var nameRE = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_-]*$`)

// Resolve validates d and produces its canonical IR, pinning images
// through store.
func Resolve(ctx context.Context, d descriptor.Descriptor, store *lockstore.Store) (*IR, error) {
	if err := validateNames(d.Builders); err != nil {
		return nil, err
	}
	if err := validateReferences(d); err != nil {
		return nil, err
	}

	ordered, err := topologicalOrder(d.Builders)
	if err != nil {
		return nil, err
	}

	for i := range ordered {
		ordered[i].Stage = applyStageDefaults(ordered[i].Stage)
		if store != nil {
			if ordered[i].Stage, err = pinStageImages(ctx, ordered[i].Stage, store); err != nil {
				return nil, err
			}
		}
	}
	root := applyStageDefaults(d.Stage)
	if store != nil {
		if root, err = pinStageImages(ctx, root, store); err != nil {
			return nil, err
		}
	}

	globalArgs := computeGlobalArgs(d, ordered, root)

	return &IR{
		Stages:     ordered,
		Root:       root,
		Context:    d.Context,
		Ignore:     d.Ignore,
		GlobalArgs: globalArgs,
	}, nil
}

func validateNames(builders descriptor.Builders) error {
	seen := map[string]bool{}
	for _, ns := range builders {
		if !nameRE.MatchString(ns.Name) {
			return dofigenerr.SchemaViolation(nil, "builder name \""+ns.Name+"\" must match [A-Za-z_][A-Za-z0-9_-]*")
		}
		if seen[ns.Name] {
			return dofigenerr.SchemaViolation(nil, "duplicate builder name \""+ns.Name+"\"")
		}
		seen[ns.Name] = true
	}
	return nil
}
