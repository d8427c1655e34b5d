package parse

import (
	"errors"
	"testing"

	"github.com/dofigen/dofigen-go/internal/dofigenerr"
)

func TestParse_PermissiveAcceptsShortcuts(t *testing.T) {
	doc := []byte(`
from: alpine
user: 1000:1000
expose: 8080
`)
	p := New(Permissive)
	patch, err := p.Parse(doc)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if patch.From == nil || patch.From.Image == nil {
		t.Fatalf("expected from image shortcut to decode, got %+v", patch.From)
	}
}

func TestParse_StrictRejectsImageShortcut(t *testing.T) {
	doc := []byte(`from: alpine`)
	p := New(Strict)
	_, err := p.Parse(doc)
	if err == nil {
		t.Fatalf("expected an error in strict mode")
	}
	var derr *dofigenerr.Error
	if !errors.As(err, &derr) || derr.Kind != dofigenerr.KindInvalidShortcut {
		t.Fatalf("expected InvalidShortcut, got %v", err)
	}
}

func TestParse_StrictAcceptsFullForm(t *testing.T) {
	doc := []byte(`
from:
  path: alpine
`)
	p := New(Strict)
	patch, err := p.Parse(doc)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if patch.From == nil || patch.From.Image == nil || patch.From.Image.Path == nil || *patch.From.Image.Path != "alpine" {
		t.Fatalf("expected struct-form from to decode, got %+v", patch.From)
	}
}

func TestParse_ModeDoesNotLeakAcrossCalls(t *testing.T) {
	strictDoc := []byte(`from: alpine`)
	if _, err := New(Strict).Parse(strictDoc); err == nil {
		t.Fatalf("expected strict parse to fail")
	}
	if _, err := New(Permissive).Parse(strictDoc); err != nil {
		t.Fatalf("permissive parse after a strict parse should still succeed: %v", err)
	}
}
