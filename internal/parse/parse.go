// Package parse decodes a raw YAML or JSON document into a
// descriptor.DescriptorPatch, in either of two modes: Permissive (the
// default), which accepts the relaxed shortcut forms documented on each
// descriptor patch type, or Strict, which requires every field to be
// spelled out in its full struct form.
package parse

import (
	"errors"

	"gopkg.in/yaml.v3"

	"github.com/dofigen/dofigen-go/internal/descriptor"
	"github.com/dofigen/dofigen-go/internal/dofigenerr"
	"github.com/dofigen/dofigen-go/internal/patch"
)

// Mode selects which grammar a Parser accepts.
type Mode int

const (
	// Permissive accepts every relaxed shortcut form (the default).
	Permissive Mode = iota
	// Strict requires the full struct form everywhere; a document that
	// uses a shortcut fails with InvalidShortcut.
	Strict
)

// Parser decodes documents in a fixed mode. JSON is accepted without a
// separate code path, since JSON is a syntactic subset of YAML 1.2 and
// gopkg.in/yaml.v3 decodes it directly.
type Parser struct {
	mode Mode
}

// New returns a Parser fixed to mode.
func New(mode Mode) *Parser {
	return &Parser{mode: mode}
}

// Parse decodes data into a DescriptorPatch under the parser's mode.
func (p *Parser) Parse(data []byte) (descriptor.DescriptorPatch, error) {
	strict := p.mode == Strict
	descriptor.SetStrict(strict)
	patch.SetStrict(strict)
	defer func() {
		descriptor.SetStrict(false)
		patch.SetStrict(false)
	}()

	var out descriptor.DescriptorPatch
	if err := yaml.Unmarshal(data, &out); err != nil {
		var derr *dofigenerr.Error
		if errors.As(err, &derr) && derr.Kind == dofigenerr.KindInvalidShortcut {
			return descriptor.DescriptorPatch{}, derr
		}
		return descriptor.DescriptorPatch{}, dofigenerr.Parse(nil, "decoding descriptor document", err)
	}
	return out, nil
}
