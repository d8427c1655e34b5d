package patch

import (
	"reflect"
	"testing"

	"gopkg.in/yaml.v3"
)

func decodeVecPatch(t *testing.T, src string) VecPatch[string] {
	t.Helper()
	var node yaml.Node
	if err := yaml.Unmarshal([]byte(src), &node); err != nil {
		t.Fatalf("unmarshal yaml: %v", err)
	}
	var p VecPatch[string]
	if err := node.Content[0].Decode(&p); err != nil {
		t.Fatalf("decode patch: %v", err)
	}
	return p
}

// base [a,b,c], overlay {"1": "B", "+": ["d"]} -> [a,B,c,d]
func TestVecPatch_DeepPatchScenario(t *testing.T) {
	p := decodeVecPatch(t, `{"1": "B", "+": ["d"]}`)
	got, err := p.Apply([]string{"a", "b", "c"})
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	want := []string{"a", "B", "c", "d"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestVecPatch_ReplaceWholeSequence(t *testing.T) {
	p := decodeVecPatch(t, `[x, y]`)
	got, err := p.Apply([]string{"a", "b", "c"})
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if !reflect.DeepEqual(got, []string{"x", "y"}) {
		t.Fatalf("got %v", got)
	}
}

func TestVecPatch_BareScalarIsOneElementList(t *testing.T) {
	p := decodeVecPatch(t, `solo`)
	got, err := p.Apply([]string{"a", "b"})
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if !reflect.DeepEqual(got, []string{"solo"}) {
		t.Fatalf("got %v", got)
	}
}

func TestVecPatch_UnderscoreResets(t *testing.T) {
	p := decodeVecPatch(t, `{"_": ["z"]}`)
	got, err := p.Apply([]string{"a", "b"})
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if !reflect.DeepEqual(got, []string{"z"}) {
		t.Fatalf("got %v", got)
	}
}

func TestVecPatch_UnderscoreCombinedWithOtherKeyFails(t *testing.T) {
	var node yaml.Node
	if err := yaml.Unmarshal([]byte(`{"_": ["z"], "+": ["y"]}`), &node); err != nil {
		t.Fatalf("unmarshal yaml: %v", err)
	}
	var p VecPatch[string]
	if err := node.Content[0].Decode(&p); err == nil {
		t.Fatal("expected error combining \"_\" with another key")
	}
}

func TestVecPatch_InsertBeforeAndAfter(t *testing.T) {
	p := decodeVecPatch(t, `{"+1": ["before-b"], "1+": ["after-b"]}`)
	got, err := p.Apply([]string{"a", "b", "c"})
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	want := []string{"a", "before-b", "b", "after-b", "c"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestVecPatch_AppendOnly(t *testing.T) {
	p := decodeVecPatch(t, `{"+": ["d", "e"]}`)
	got, err := p.Apply([]string{"a"})
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if !reflect.DeepEqual(got, []string{"a", "d", "e"}) {
		t.Fatalf("got %v", got)
	}
}

func TestVecPatch_OutOfBoundsReplaceErrors(t *testing.T) {
	p := decodeVecPatch(t, `{"5": ["z"]}`)
	if _, err := p.Apply([]string{"a"}); err == nil {
		t.Fatal("expected out-of-bounds error")
	}
}
