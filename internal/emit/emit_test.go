package emit

import (
	"context"
	"strings"
	"testing"

	"github.com/dofigen/dofigen-go/internal/descriptor"
	"github.com/dofigen/dofigen-go/internal/patch"
	"github.com/dofigen/dofigen-go/internal/resolve"
)

func mustResolve(t *testing.T, d descriptor.Descriptor) *resolve.IR {
	t.Helper()
	ir, err := resolve.Resolve(context.Background(), d, nil)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	return ir
}

// a bare fromImage produces a single stage: FROM then USER 1000, no
// .dockerignore.
func TestGenerateMinimalImage(t *testing.T) {
	img, err := descriptor.ParseImageName("alpine")
	if err != nil {
		t.Fatalf("parse image: %v", err)
	}
	d := descriptor.Descriptor{
		Stage: descriptor.Stage{From: descriptor.FromContext{Kind: descriptor.FromImage, Image: img}},
	}
	ir := mustResolve(t, d)

	res, err := Generate(ir)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	out := string(res.Dockerfile)
	if !strings.Contains(out, syntaxDirective) {
		t.Errorf("missing syntax directive:\n%s", out)
	}
	if !strings.Contains(out, "FROM alpine\n") {
		t.Errorf("missing FROM alpine:\n%s", out)
	}
	if !strings.Contains(out, "USER 1000\n") {
		t.Errorf("missing USER 1000:\n%s", out)
	}
	if res.Dockerignore != nil {
		t.Errorf("expected no dockerignore, got %q", res.Dockerignore)
	}
}

// a single-command run with one cache mount emits exactly one RUN
// line with the mount flag, no heredoc.
func TestGenerateSingleCacheMount(t *testing.T) {
	img, err := descriptor.ParseImageName("node")
	if err != nil {
		t.Fatalf("parse image: %v", err)
	}
	d := descriptor.Descriptor{
		Stage: descriptor.Stage{
			From: descriptor.FromContext{Kind: descriptor.FromImage, Image: img},
			Run: descriptor.Run{
				Commands: []string{"npm ci"},
				Cache:    []descriptor.Cache{{Target: "/root/.npm"}},
			},
		},
	}
	ir := mustResolve(t, d)

	res, err := Generate(ir)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	out := string(res.Dockerfile)
	want := "RUN --mount=type=cache,target=/root/.npm npm ci\n"
	if !strings.Contains(out, want) {
		t.Errorf("expected single-line RUN with cache mount, got:\n%s", out)
	}
	if strings.Contains(out, "<<EOF") {
		t.Errorf("did not expect heredoc for a single command:\n%s", out)
	}
}

func TestGenerateMultiCommandRunUsesHeredoc(t *testing.T) {
	img, err := descriptor.ParseImageName("alpine")
	if err != nil {
		t.Fatalf("parse image: %v", err)
	}
	d := descriptor.Descriptor{
		Stage: descriptor.Stage{
			From: descriptor.FromContext{Kind: descriptor.FromImage, Image: img},
			Run: descriptor.Run{Commands: []string{"echo a", "echo b"}},
		},
	}
	ir := mustResolve(t, d)

	res, err := Generate(ir)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	out := string(res.Dockerfile)
	if !strings.Contains(out, "RUN <<EOF\necho a\necho b\nEOF\n") {
		t.Errorf("expected heredoc RUN block, got:\n%s", out)
	}
}

func TestGenerateLabelFlattening(t *testing.T) {
	img, err := descriptor.ParseImageName("alpine")
	if err != nil {
		t.Fatalf("parse image: %v", err)
	}
	title := "my-app"
	version := "1.0"
	label := &patch.NestedMap{Children: map[string]*patch.NestedMap{
		"org.opencontainers": {Children: map[string]*patch.NestedMap{
			"title":   {Leaf: &title},
			"version": {Leaf: &version},
		}},
	}}
	d := descriptor.Descriptor{
		Stage: descriptor.Stage{
			From:  descriptor.FromContext{Kind: descriptor.FromImage, Image: img},
			Label: label,
		},
	}
	ir := mustResolve(t, d)

	res, err := Generate(ir)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	out := string(res.Dockerfile)
	if !strings.Contains(out, `LABEL org.opencontainers.title=my-app`) {
		t.Errorf("missing flattened title label:\n%s", out)
	}
	if !strings.Contains(out, `LABEL org.opencontainers.version=1.0`) {
		t.Errorf("missing flattened version label:\n%s", out)
	}
}

func TestRenderDockerignoreContextAllowlist(t *testing.T) {
	got := renderDockerignore([]string{"src", "go.mod"}, nil)
	want := "**\n!src\n!go.mod\n"
	if got != want {
		t.Errorf("renderDockerignore(context) = %q, want %q", got, want)
	}
}

func TestRenderDockerignoreIgnoreOnly(t *testing.T) {
	got := renderDockerignore(nil, []string{"*.log", "tmp/"})
	want := "*.log\ntmp/\n"
	if got != want {
		t.Errorf("renderDockerignore(ignore) = %q, want %q", got, want)
	}
}

func TestRenderDockerignoreEmpty(t *testing.T) {
	if got := renderDockerignore(nil, nil); got != "" {
		t.Errorf("renderDockerignore(empty) = %q, want empty", got)
	}
}
