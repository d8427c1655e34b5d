package descriptor

import (
	"testing"

	"gopkg.in/yaml.v3"
)

func decodeCopyResourcePatch(t *testing.T, doc string) CopyResourcePatch {
	t.Helper()
	var node yaml.Node
	if err := yaml.Unmarshal([]byte(doc), &node); err != nil {
		t.Fatalf("unmarshal yaml: %v", err)
	}
	var p CopyResourcePatch
	if err := node.Content[0].Decode(&p); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return p
}

func TestCopyResourcePatch_BarePathIsCopy(t *testing.T) {
	p := decodeCopyResourcePatch(t, `src/`)
	if p.Kind != CopyKindCopy {
		t.Fatalf("kind = %v, want CopyKindCopy", p.Kind)
	}
	if p.Copy == nil || p.Copy.Paths == nil || (*p.Copy.Paths)[0] != "src/" {
		t.Errorf("unexpected copy patch: %+v", p.Copy)
	}
}

func TestCopyResourcePatch_URLIsAdd(t *testing.T) {
	p := decodeCopyResourcePatch(t, `https://example.com/archive.tar.gz`)
	if p.Kind != CopyKindAdd {
		t.Fatalf("kind = %v, want CopyKindAdd", p.Kind)
	}
	if p.Add == nil || p.Add.Sources == nil || (*p.Add.Sources)[0] != "https://example.com/archive.tar.gz" {
		t.Errorf("unexpected add patch: %+v", p.Add)
	}
}

func TestCopyResourcePatch_GitSuffixIsAddGitRepo(t *testing.T) {
	p := decodeCopyResourcePatch(t, `https://example.com/repo.git`)
	if p.Kind != CopyKindAddGitRepo {
		t.Fatalf("kind = %v, want CopyKindAddGitRepo", p.Kind)
	}
	if p.AddGitRepo == nil || p.AddGitRepo.Repo == nil || *p.AddGitRepo.Repo != "https://example.com/repo.git" {
		t.Errorf("unexpected addGitRepo patch: %+v", p.AddGitRepo)
	}
}

func TestCopyResourcePatch_GitSSHIsAddGitRepo(t *testing.T) {
	p := decodeCopyResourcePatch(t, `git@github.com:org/repo`)
	if p.Kind != CopyKindAddGitRepo {
		t.Fatalf("kind = %v, want CopyKindAddGitRepo", p.Kind)
	}
}

func TestCopyResourcePatch_ContentMapping(t *testing.T) {
	p := decodeCopyResourcePatch(t, "content: hello\ntarget: /etc/motd\n")
	if p.Kind != CopyKindCopyContent {
		t.Fatalf("kind = %v, want CopyKindCopyContent", p.Kind)
	}
	if p.CopyContent == nil || p.CopyContent.Content == nil || *p.CopyContent.Content != "hello" {
		t.Errorf("unexpected copyContent patch: %+v", p.CopyContent)
	}
}

func TestCopyResourcePatch_RepoMapping(t *testing.T) {
	p := decodeCopyResourcePatch(t, "repo: https://example.com/x.git\nref: main\n")
	if p.Kind != CopyKindAddGitRepo {
		t.Fatalf("kind = %v, want CopyKindAddGitRepo", p.Kind)
	}
}

func TestCopyResourcePatch_ChecksumMapping(t *testing.T) {
	p := decodeCopyResourcePatch(t, "sources: https://example.com/x.tar.gz\nchecksum: sha256:abc\n")
	if p.Kind != CopyKindAdd {
		t.Fatalf("kind = %v, want CopyKindAdd", p.Kind)
	}
}

func TestLooksLikeGitRepo(t *testing.T) {
	for _, s := range []string{"git@github.com:org/repo", "git://host/repo", "https://host/repo.git"} {
		if !LooksLikeGitRepo(s) {
			t.Errorf("LooksLikeGitRepo(%q) = false, want true", s)
		}
	}
	if LooksLikeGitRepo("src/") {
		t.Error("LooksLikeGitRepo(\"src/\") = true, want false")
	}
}

func TestCopyResourceApplyRoundTrip(t *testing.T) {
	p := decodeCopyResourcePatch(t, `README.md`)
	resolved, err := p.Apply(CopyResource{})
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if resolved.Kind != CopyKindCopy || resolved.Copy == nil || resolved.Copy.Paths[0] != "README.md" {
		t.Errorf("unexpected resolved copy resource: %+v", resolved)
	}
}
