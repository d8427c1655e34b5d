// Package extend resolves a descriptor's "extend" chains: loading each
// referenced resource (local file or HTTP(S) URL), recursively resolving
// its own extends, and folding the results together with the loading
// resource's own content applied last.
package extend

import (
	"context"
	"fmt"

	"github.com/dofigen/dofigen-go/internal/descriptor"
	"github.com/dofigen/dofigen-go/internal/dofigenerr"
	"github.com/dofigen/dofigen-go/internal/iofacade"
	"github.com/dofigen/dofigen-go/internal/parse"
)

// maxLoadStackSize bounds the extend chain depth, a guard against
// runaway or accidentally-cyclic chains that cycle detection alone
// wouldn't catch quickly (e.g. a very long diamond of distinct
// resources).
const maxLoadStackSize = 10

// Loader resolves descriptor documents and their extend chains.
type Loader struct {
	Fetcher iofacade.Fetcher
	// Mode selects the parser grammar every resource in the chain is
	// decoded with. Zero value is parse.Permissive.
	Mode  parse.Mode
	cache map[string]string
}

// NewLoader returns a permissive-mode Loader backed by fetcher.
func NewLoader(fetcher iofacade.Fetcher) *Loader {
	return &Loader{Fetcher: fetcher, cache: map[string]string{}}
}

// Load reads resource, resolves its extend chain, and returns the final
// merged Descriptor.
func (l *Loader) Load(ctx context.Context, resource Resource) (descriptor.Descriptor, error) {
	return l.resolve(ctx, resource, nil)
}

func (l *Loader) resolve(ctx context.Context, resource Resource, stack []Resource) (descriptor.Descriptor, error) {
	for _, seen := range stack {
		if seen.Key() == resource.Key() {
			return descriptor.Descriptor{}, dofigenerr.ExtendCycle(chainStrings(append(stack, resource)))
		}
	}
	stack = append(stack, resource)
	if len(stack) > maxLoadStackSize {
		return descriptor.Descriptor{}, dofigenerr.ExtendCycle(chainStrings(stack))
	}

	content, err := l.fetch(ctx, resource)
	if err != nil {
		return descriptor.Descriptor{}, dofigenerr.Resource(nil, fmt.Sprintf("loading %s", resourceLabel(resource)), err)
	}

	raw, err := parse.New(l.Mode).Parse([]byte(content))
	if err != nil {
		return descriptor.Descriptor{}, err
	}

	acc := descriptor.Descriptor{}
	for _, locator := range raw.Extend {
		child, err := ResolveRelative(resource, locator)
		if err != nil {
			return descriptor.Descriptor{}, err
		}
		childDescriptor, err := l.resolve(ctx, child, stack)
		if err != nil {
			return descriptor.Descriptor{}, err
		}
		merged, err := childDescriptor.ToPatch().Apply(acc)
		if err != nil {
			return descriptor.Descriptor{}, err
		}
		acc = merged
	}

	raw.Extend = nil
	final, err := raw.Apply(acc)
	if err != nil {
		return descriptor.Descriptor{}, dofigenerr.SchemaViolation(nil, fmt.Sprintf("applying %s: %v", resourceLabel(resource), err))
	}
	return final, nil
}

func (l *Loader) fetch(ctx context.Context, r Resource) (string, error) {
	if cached, ok := l.cache[r.Key()]; ok {
		return cached, nil
	}
	var content string
	var err error
	switch r.Kind {
	case ResourceURL:
		content, err = l.Fetcher.FetchURL(ctx, r.URL)
	default:
		content, err = l.Fetcher.FetchFile(r.Path)
	}
	if err != nil {
		return "", err
	}
	l.cache[r.Key()] = content
	return content, nil
}

func resourceLabel(r Resource) string {
	if r.Kind == ResourceURL {
		return r.URL
	}
	return r.Path
}

func chainStrings(stack []Resource) []string {
	out := make([]string, len(stack))
	for i, r := range stack {
		out[i] = resourceLabel(r)
	}
	return out
}
