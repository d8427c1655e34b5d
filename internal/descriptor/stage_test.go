package descriptor

import (
	"testing"

	"gopkg.in/yaml.v3"
)

func decodeStagePatch(t *testing.T, doc string) StagePatch {
	t.Helper()
	var node yaml.Node
	if err := yaml.Unmarshal([]byte(doc), &node); err != nil {
		t.Fatalf("unmarshal yaml: %v", err)
	}
	var p StagePatch
	if err := node.Content[0].Decode(&p); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return p
}

func TestStagePatch_ExposeScalarShortcut(t *testing.T) {
	p := decodeStagePatch(t, "expose: 8080\n")
	resolved, err := p.Apply(Stage{})
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if len(resolved.Expose) != 1 || resolved.Expose[0].Port != 8080 {
		t.Fatalf("unexpected expose: %+v", resolved.Expose)
	}
}

func TestStagePatch_CacheScalarShortcut(t *testing.T) {
	p := decodeStagePatch(t, "cache: /root/.npm\n")
	resolved, err := p.Apply(Stage{})
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if len(resolved.Run.Cache) != 1 || resolved.Run.Cache[0].Target != "/root/.npm" {
		t.Fatalf("unexpected cache: %+v", resolved.Run.Cache)
	}
}

func TestStagePatch_CopyFromBuilder(t *testing.T) {
	doc := `
copy:
  - from:
      builder: b
    paths:
      - /out
    target: /app
`
	p := decodeStagePatch(t, doc)
	resolved, err := p.Apply(Stage{})
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if len(resolved.Copy) != 1 {
		t.Fatalf("expected one copy resource, got %d", len(resolved.Copy))
	}
	cr := resolved.Copy[0]
	if cr.Kind != CopyKindCopy || cr.Copy == nil {
		t.Fatalf("unexpected copy resource: %+v", cr)
	}
	if cr.Copy.From.Kind != FromBuilder || cr.Copy.From.BuilderName != "b" {
		t.Fatalf("unexpected from: %+v", cr.Copy.From)
	}
	if len(cr.Copy.Paths) != 1 || cr.Copy.Paths[0] != "/out" {
		t.Fatalf("unexpected paths: %+v", cr.Copy.Paths)
	}
	if cr.Copy.Target != "/app" {
		t.Fatalf("unexpected target: %q", cr.Copy.Target)
	}
}
