package descriptor

import (
	"strings"

	"gopkg.in/yaml.v3"
)

// CopyKind discriminates the four shapes a COPY-like resource can take.
type CopyKind int

const (
	CopyKindCopy CopyKind = iota
	CopyKindCopyContent
	CopyKindAddGitRepo
	CopyKindAdd
)

// CopyCommon holds the fields shared by every copy-resource variant.
type CopyCommon struct {
	Target string
	Link   bool
	Chown  *User
	Chmod  string
}

// Copy copies files from the build context or another stage.
type Copy struct {
	CopyCommon
	Paths           []string
	From            FromContext
	ExcludePatterns []string
	ParentPath      bool // copy the parent directory structure alongside each match
}

// CopyContent writes literal inline content to a file, used for generated
// config snippets that don't warrant their own context file.
type CopyContent struct {
	CopyCommon
	Content string
}

// AddGitRepo clones a git repository into the image at build time.
type AddGitRepo struct {
	CopyCommon
	Repo       string
	Ref        string
	KeepGitDir bool
}

// Add fetches one or more remote resources (HTTP(S) URLs or local
// archives) and extracts or places them in the image, mirroring
// Dockerfile's ADD semantics for URLs and tarballs.
type Add struct {
	CopyCommon
	Sources  []string
	Checksum string
}

// CopyResource is the resolved, tagged-union form of one copy-like entry.
// Exactly one of Copy, CopyContent, AddGitRepo, Add is populated,
// selected by Kind.
type CopyResource struct {
	Kind        CopyKind
	Copy        *Copy
	CopyContent *CopyContent
	AddGitRepo  *AddGitRepo
	Add         *Add
}

// Common returns the shared fields of whichever variant is populated.
func (r CopyResource) Common() CopyCommon {
	switch r.Kind {
	case CopyKindCopy:
		return r.Copy.CopyCommon
	case CopyKindCopyContent:
		return r.CopyContent.CopyCommon
	case CopyKindAddGitRepo:
		return r.AddGitRepo.CopyCommon
	case CopyKindAdd:
		return r.Add.CopyCommon
	default:
		return CopyCommon{}
	}
}

// CopyCommonPatch is the patch form of CopyCommon.
type CopyCommonPatch struct {
	Target *string
	Link   *bool
	Chown  *UserPatch
	Chmod  *string
}

func (p CopyCommonPatch) apply(base CopyCommon) (CopyCommon, error) {
	out := base
	if p.Target != nil {
		out.Target = *p.Target
	}
	if p.Link != nil {
		out.Link = *p.Link
	}
	if p.Chmod != nil {
		out.Chmod = *p.Chmod
	}
	if p.Chown != nil {
		var u User
		if base.Chown != nil {
			u = *base.Chown
		}
		resolved := p.Chown.Apply(u)
		out.Chown = &resolved
	}
	return out, nil
}

// CopyPatch is the patch form of Copy.
type CopyPatch struct {
	CopyCommonPatch  `yaml:",inline"`
	Paths            *[]string
	From             *FromContextPatch
	ExcludePatterns  *[]string `yaml:"exclude"`
	ParentPath       *bool     `yaml:"parents"`
}

// Apply folds the patch into base.
func (p CopyPatch) Apply(base Copy) (Copy, error) {
	common, err := p.CopyCommonPatch.apply(base.CopyCommon)
	if err != nil {
		return Copy{}, err
	}
	out := Copy{CopyCommon: common, Paths: base.Paths, From: base.From, ExcludePatterns: base.ExcludePatterns, ParentPath: base.ParentPath}
	if p.Paths != nil {
		out.Paths = *p.Paths
	}
	if p.ExcludePatterns != nil {
		out.ExcludePatterns = *p.ExcludePatterns
	}
	if p.ParentPath != nil {
		out.ParentPath = *p.ParentPath
	}
	if p.From != nil {
		resolved, err := p.From.Apply(base.From)
		if err != nil {
			return out, err
		}
		out.From = resolved
	}
	return out, nil
}

// CopyContentPatch is the patch form of CopyContent.
type CopyContentPatch struct {
	CopyCommonPatch `yaml:",inline"`
	Content         *string
}

// Apply folds the patch into base.
func (p CopyContentPatch) Apply(base CopyContent) (CopyContent, error) {
	common, err := p.CopyCommonPatch.apply(base.CopyCommon)
	if err != nil {
		return CopyContent{}, err
	}
	out := CopyContent{CopyCommon: common, Content: base.Content}
	if p.Content != nil {
		out.Content = *p.Content
	}
	return out, nil
}

// AddGitRepoPatch is the patch form of AddGitRepo.
type AddGitRepoPatch struct {
	CopyCommonPatch `yaml:",inline"`
	Repo            *string
	Ref             *string
	KeepGitDir      *bool `yaml:"keepGitDir"`
}

// Apply folds the patch into base.
func (p AddGitRepoPatch) Apply(base AddGitRepo) (AddGitRepo, error) {
	common, err := p.CopyCommonPatch.apply(base.CopyCommon)
	if err != nil {
		return AddGitRepo{}, err
	}
	out := AddGitRepo{CopyCommon: common, Repo: base.Repo, Ref: base.Ref, KeepGitDir: base.KeepGitDir}
	if p.Repo != nil {
		out.Repo = *p.Repo
	}
	if p.Ref != nil {
		out.Ref = *p.Ref
	}
	if p.KeepGitDir != nil {
		out.KeepGitDir = *p.KeepGitDir
	}
	return out, nil
}

// AddPatch is the patch form of Add.
type AddPatch struct {
	CopyCommonPatch `yaml:",inline"`
	Sources         *[]string
	Checksum        *string
}

// Apply folds the patch into base.
func (p AddPatch) Apply(base Add) (Add, error) {
	common, err := p.CopyCommonPatch.apply(base.CopyCommon)
	if err != nil {
		return Add{}, err
	}
	out := Add{CopyCommon: common, Sources: base.Sources, Checksum: base.Checksum}
	if p.Sources != nil {
		out.Sources = *p.Sources
	}
	if p.Checksum != nil {
		out.Checksum = *p.Checksum
	}
	return out, nil
}

// CopyResourcePatch is the patch form of CopyResource. Decoding dispatches
// on shape: a bare scalar or sequence-of-scalars is a path/URL shortcut
// resolved by LooksLikeGitRepo/LooksLikeURL; a mapping is dispatched by
// which variant-specific key it carries (repo -> AddGitRepo, content ->
// CopyContent, checksum or sources -> Add, else Copy). Inside a mapping, a
// bare scalar under "paths" or "sources" becomes a one-element list.
type CopyResourcePatch struct {
	Kind        CopyKind
	Copy        *CopyPatch
	CopyContent *CopyContentPatch
	AddGitRepo  *AddGitRepoPatch
	Add         *AddPatch
}

// Apply folds the patch into base, instantiating the zero value of the
// selected variant when base does not already hold that variant.
func (p CopyResourcePatch) Apply(base CopyResource) (CopyResource, error) {
	switch p.Kind {
	case CopyKindCopyContent:
		var b CopyContent
		if base.Kind == CopyKindCopyContent && base.CopyContent != nil {
			b = *base.CopyContent
		}
		resolved, err := p.CopyContent.Apply(b)
		if err != nil {
			return CopyResource{}, err
		}
		return CopyResource{Kind: CopyKindCopyContent, CopyContent: &resolved}, nil
	case CopyKindAddGitRepo:
		var b AddGitRepo
		if base.Kind == CopyKindAddGitRepo && base.AddGitRepo != nil {
			b = *base.AddGitRepo
		}
		resolved, err := p.AddGitRepo.Apply(b)
		if err != nil {
			return CopyResource{}, err
		}
		return CopyResource{Kind: CopyKindAddGitRepo, AddGitRepo: &resolved}, nil
	case CopyKindAdd:
		var b Add
		if base.Kind == CopyKindAdd && base.Add != nil {
			b = *base.Add
		}
		resolved, err := p.Add.Apply(b)
		if err != nil {
			return CopyResource{}, err
		}
		return CopyResource{Kind: CopyKindAdd, Add: &resolved}, nil
	default:
		var b Copy
		if base.Kind == CopyKindCopy && base.Copy != nil {
			b = *base.Copy
		}
		resolved, err := p.Copy.Apply(b)
		if err != nil {
			return CopyResource{}, err
		}
		return CopyResource{Kind: CopyKindCopy, Copy: &resolved}, nil
	}
}

// UnmarshalYAML implements the shortcut grammar described on
// CopyResourcePatch.
func (p *CopyResourcePatch) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode || node.Kind == yaml.SequenceNode {
		if strictMode {
			return rejectShortcut("copy/add")
		}
		paths, err := decodeOneOrManyStrings(node)
		if err != nil {
			return err
		}
		if len(paths) == 1 {
			switch {
			case LooksLikeGitRepo(paths[0]):
				p.Kind = CopyKindAddGitRepo
				p.AddGitRepo = &AddGitRepoPatch{Repo: strPtr(paths[0])}
				return nil
			case LooksLikeURL(paths[0]):
				p.Kind = CopyKindAdd
				p.Add = &AddPatch{Sources: &paths}
				return nil
			}
		}
		allURLs := true
		for _, s := range paths {
			if !LooksLikeURL(s) {
				allURLs = false
				break
			}
		}
		if allURLs && len(paths) > 0 {
			p.Kind = CopyKindAdd
			p.Add = &AddPatch{Sources: &paths}
			return nil
		}
		p.Kind = CopyKindCopy
		p.Copy = &CopyPatch{Paths: &paths}
		return nil
	}

	coerced := *node
	coerced.Content = append([]*yaml.Node(nil), node.Content...)
	for i := 0; i+1 < len(coerced.Content); i += 2 {
		if k := coerced.Content[i].Value; (k == "paths" || k == "sources") && coerced.Content[i+1].Kind == yaml.ScalarNode {
			if strictMode {
				return rejectShortcut(k)
			}
			coerced.Content[i+1] = &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq", Content: []*yaml.Node{coerced.Content[i+1]}}
		}
	}
	node = &coerced

	type probe struct {
		Repo     *string   `yaml:"repo"`
		Content  *string   `yaml:"content"`
		Checksum *string   `yaml:"checksum"`
		Source   *string   `yaml:"source"`
		Sources  *[]string `yaml:"sources"`
	}
	var pr probe
	if err := node.Decode(&pr); err != nil {
		return err
	}
	switch {
	case pr.Repo != nil:
		p.Kind = CopyKindAddGitRepo
		var v AddGitRepoPatch
		if err := node.Decode(&v); err != nil {
			return err
		}
		p.AddGitRepo = &v
	case pr.Content != nil:
		p.Kind = CopyKindCopyContent
		var v CopyContentPatch
		if err := node.Decode(&v); err != nil {
			return err
		}
		p.CopyContent = &v
	case pr.Checksum != nil || pr.Sources != nil:
		p.Kind = CopyKindAdd
		var v AddPatch
		if err := node.Decode(&v); err != nil {
			return err
		}
		p.Add = &v
	default:
		p.Kind = CopyKindCopy
		var v CopyPatch
		if err := node.Decode(&v); err != nil {
			return err
		}
		p.Copy = &v
	}
	return nil
}

// LooksLikeGitRepo reports whether s is shaped like a git remote:
// git@host:path, *.git, or a git:// scheme.
func LooksLikeGitRepo(s string) bool {
	return strings.HasPrefix(s, "git@") ||
		strings.HasPrefix(s, "git://") ||
		strings.HasSuffix(s, ".git")
}

// LooksLikeURL reports whether s carries an http(s):// scheme.
func LooksLikeURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}

func decodeOneOrManyStrings(node *yaml.Node) ([]string, error) {
	if node.Kind == yaml.ScalarNode {
		var s string
		if err := node.Decode(&s); err != nil {
			return nil, err
		}
		return []string{s}, nil
	}
	var out []string
	if err := node.Decode(&out); err != nil {
		return nil, err
	}
	return out, nil
}
