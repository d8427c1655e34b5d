package descriptor

import (
	"gopkg.in/yaml.v3"

	"github.com/dofigen/dofigen-go/internal/patch"
)

// Run is the resolved form of a stage's run block: the shell command
// lines plus the BuildKit mount set and execution options that apply to
// them.
type Run struct {
	Commands []string
	Cache    []Cache
	Bind     []Bind
	TmpFs    []TmpFs
	Secret   []Secret
	Ssh      []Ssh
	Network  string // "default", "none", "host"
	Security string // "sandbox" (default), "insecure"
	Shell    []string
}

// RunPatch is the patch form of Run.
type RunPatch struct {
	Commands patch.VecPatch[string]
	Cache    patch.VecPatch[CachePatch]
	Bind     patch.VecPatch[BindPatch]
	TmpFs    patch.VecPatch[TmpFsPatch]
	Secret   patch.VecPatch[SecretPatch]
	Ssh      patch.VecPatch[SshPatch]
	Network  *string
	Security *string
	Shell    patch.VecPatch[string]
}

// Apply folds the patch into base.
func (p RunPatch) Apply(base Run) (Run, error) {
	out := base
	var err error
	if out.Commands, err = p.Commands.Apply(base.Commands); err != nil {
		return out, err
	}
	if out.Cache, err = patch.ApplyElements(p.Cache, base.Cache, func(c Cache, cp CachePatch) (Cache, error) {
		return cp.Apply(c)
	}); err != nil {
		return out, err
	}
	if out.Bind, err = patch.ApplyElements(p.Bind, base.Bind, func(b Bind, bp BindPatch) (Bind, error) {
		return bp.Apply(b)
	}); err != nil {
		return out, err
	}
	if out.TmpFs, err = patch.ApplyElements(p.TmpFs, base.TmpFs, func(t TmpFs, tp TmpFsPatch) (TmpFs, error) {
		return tp.Apply(t), nil
	}); err != nil {
		return out, err
	}
	if out.Secret, err = patch.ApplyElements(p.Secret, base.Secret, func(s Secret, sp SecretPatch) (Secret, error) {
		return sp.Apply(s), nil
	}); err != nil {
		return out, err
	}
	if out.Ssh, err = patch.ApplyElements(p.Ssh, base.Ssh, func(s Ssh, sp SshPatch) (Ssh, error) {
		return sp.Apply(s), nil
	}); err != nil {
		return out, err
	}
	if out.Shell, err = p.Shell.Apply(base.Shell); err != nil {
		return out, err
	}
	if p.Network != nil {
		out.Network = *p.Network
	}
	if p.Security != nil {
		out.Security = *p.Security
	}
	return out, nil
}

// Stage-level YAML carries run, cache, bind, tmpfs, secret, ssh, network,
// security and shell as sibling keys rather than nested under a "run"
// object, so StagePatch decodes them directly and assembles a RunPatch
// itself for the stage's non-root run block.
//
// The root-user run block ("root:") is nested, so it decodes through
// RunPatch's own UnmarshalYAML below: a bare scalar/list shortcut sets
// just the commands, a mapping sets the full field set.
func (p *RunPatch) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		return p.Commands.UnmarshalYAML(node)
	}
	if node.Kind == yaml.SequenceNode {
		allScalar := true
		for _, c := range node.Content {
			if c.Kind != yaml.ScalarNode {
				allScalar = false
				break
			}
		}
		if allScalar {
			if strictMode {
				return rejectShortcut("root run")
			}
			return p.Commands.UnmarshalYAML(node)
		}
	}
	type raw struct {
		Run      patch.VecPatch[string]      `yaml:"run"`
		Cache    patch.VecPatch[CachePatch]  `yaml:"cache"`
		Bind     patch.VecPatch[BindPatch]   `yaml:"bind"`
		TmpFs    patch.VecPatch[TmpFsPatch]  `yaml:"tmpfs"`
		Secret   patch.VecPatch[SecretPatch] `yaml:"secret"`
		Ssh      patch.VecPatch[SshPatch]    `yaml:"ssh"`
		Network  *string                     `yaml:"network"`
		Security *string                     `yaml:"security"`
		Shell    patch.VecPatch[string]      `yaml:"shell"`
	}
	var r raw
	if err := node.Decode(&r); err != nil {
		return err
	}
	p.Commands = r.Run
	p.Cache, p.Bind, p.TmpFs, p.Secret, p.Ssh = r.Cache, r.Bind, r.TmpFs, r.Secret, r.Ssh
	p.Network, p.Security, p.Shell = r.Network, r.Security, r.Shell
	return nil
}

