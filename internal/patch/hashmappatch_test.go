package patch

import (
	"reflect"
	"testing"

	"gopkg.in/yaml.v3"
)

func TestHashMapPatch_SetAndRemove(t *testing.T) {
	var node yaml.Node
	if err := yaml.Unmarshal([]byte(`{"A": "1", "B": null}`), &node); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	var p HashMapPatch[string, string]
	if err := node.Content[0].Decode(&p); err != nil {
		t.Fatalf("decode: %v", err)
	}
	base := map[string]string{"B": "old", "C": "keep"}
	got := p.Apply(base)
	want := map[string]string{"A": "1", "C": "keep"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestHashMapDeepPatch_MergesIntoExisting(t *testing.T) {
	var node yaml.Node
	if err := yaml.Unmarshal([]byte(`{"A": {"extra": "x"}}`), &node); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	var p HashMapDeepPatch[string, map[string]string, map[string]string]
	if err := node.Content[0].Decode(&p); err != nil {
		t.Fatalf("decode: %v", err)
	}
	base := map[string]map[string]string{"A": {"keep": "y"}}
	got, err := p.Apply(base, func(v map[string]string, pv map[string]string) (map[string]string, error) {
		out := map[string]string{}
		for k, val := range v {
			out[k] = val
		}
		for k, val := range pv {
			out[k] = val
		}
		return out, nil
	})
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	want := map[string]map[string]string{"A": {"keep": "y", "extra": "x"}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}
