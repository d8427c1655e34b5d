package extend

import (
	"context"
	"testing"
)

type fakeFetcher struct {
	files map[string]string
	urls  map[string]string
}

func (f *fakeFetcher) FetchFile(path string) (string, error) {
	if c, ok := f.files[path]; ok {
		return c, nil
	}
	return "", &notFoundError{path}
}

func (f *fakeFetcher) FetchURL(ctx context.Context, url string) (string, error) {
	if c, ok := f.urls[url]; ok {
		return c, nil
	}
	return "", &notFoundError{url}
}

type notFoundError struct{ name string }

func (e *notFoundError) Error() string { return "not found: " + e.name }

// a.yml extends b.yml which extends a.yml: loader returns ExtendCycle.
func TestLoader_DetectsCycle(t *testing.T) {
	fetcher := &fakeFetcher{files: map[string]string{
		"a.yml": "extend: [b.yml]\nfrom: alpine\n",
		"b.yml": "extend: [a.yml]\n",
	}}
	l := NewLoader(fetcher)
	_, err := l.Load(context.Background(), NewResource("a.yml"))
	if err == nil {
		t.Fatal("expected a cycle error")
	}
}

func TestLoader_ResolvesRelativeExtend(t *testing.T) {
	fetcher := &fakeFetcher{files: map[string]string{
		"dir/a.yml": "extend: [base.yml]\n",
		"dir/base.yml": "from: alpine\n",
	}}
	l := NewLoader(fetcher)
	d, err := l.Load(context.Background(), NewResource("dir/a.yml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if d.Stage.From.Image.Path != "alpine" {
		t.Errorf("expected alpine, got %+v", d.Stage.From.Image)
	}
}

func TestLoader_OwnContentAppliesLast(t *testing.T) {
	fetcher := &fakeFetcher{files: map[string]string{
		"a.yml":    "extend: [base.yml]\nfrom: node\n",
		"base.yml": "from: alpine\n",
	}}
	l := NewLoader(fetcher)
	d, err := l.Load(context.Background(), NewResource("a.yml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if d.Stage.From.Image.Path != "node" {
		t.Errorf("expected a.yml's own fromImage to win, got %+v", d.Stage.From.Image)
	}
}

func TestLoader_MaxStackSizeExceeded(t *testing.T) {
	files := map[string]string{}
	for i := 0; i < 12; i++ {
		name := indexedName(i)
		next := indexedName(i + 1)
		files[name] = "extend: [" + next + "]\n"
	}
	fetcher := &fakeFetcher{files: files}
	l := NewLoader(fetcher)
	_, err := l.Load(context.Background(), NewResource(indexedName(0)))
	if err == nil {
		t.Fatal("expected a max-depth error")
	}
}

func indexedName(i int) string {
	return string(rune('a'+i%26)) + ".yml"
}
