package patch

import (
	"reflect"
	"testing"

	"gopkg.in/yaml.v3"
)

func decodeNestedMap(t *testing.T, src string) *NestedMap {
	t.Helper()
	var n NestedMap
	if err := yaml.Unmarshal([]byte(src), &n); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	return &n
}

func TestNestedMap_FlattenJoinsWithDot(t *testing.T) {
	n := decodeNestedMap(t, `
org.opencontainers:
  title: my-app
  version: "1.0"
`)
	got := Flatten(n)
	want := map[string]string{
		"org.opencontainers.title":   "my-app",
		"org.opencontainers.version": "1.0",
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestNestedMap_MergeRemovesNullSubtree(t *testing.T) {
	base := decodeNestedMap(t, `
a:
  x: "1"
  y: "2"
b: "keep"
`)
	patch := decodeNestedMap(t, `
a:
  y: null
`)
	merged := Merge(base, patch)
	got := Flatten(merged)
	want := map[string]string{"a.x": "1", "b": "keep"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}
