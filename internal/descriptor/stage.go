package descriptor

import (
	"gopkg.in/yaml.v3"

	"github.com/dofigen/dofigen-go/internal/patch"
)

// Stage is the resolved form of one builder (or the final root stage): a
// FROM source plus the instructions emitted into its Dockerfile block.
type Stage struct {
	From        FromContext
	User        *User
	Workdir     string
	Arg         map[string]string
	Env         map[string]string
	Label       *patch.NestedMap
	Copy        []CopyResource
	Root        *Run
	Run         Run
	Entrypoint  []string
	Cmd         []string
	Volume      []string
	Expose      []Port
	Healthcheck *Healthcheck
}

// StagePatch is the patch form of Stage.
type StagePatch struct {
	From        *FromContextPatch
	User        *UserPatch
	Workdir     *string
	Arg         patch.HashMapPatch[string, string]
	Env         patch.HashMapPatch[string, string]
	Label       *patch.NestedMap
	Copy        patch.VecDeepPatch[CopyResource, CopyResourcePatch]
	Root        *RunPatch
	Commands    patch.VecPatch[string]
	Cache       patch.VecPatch[CachePatch]
	Bind        patch.VecPatch[BindPatch]
	TmpFs       patch.VecPatch[TmpFsPatch]
	Secret      patch.VecPatch[SecretPatch]
	Ssh         patch.VecPatch[SshPatch]
	Network     *string
	Security    *string
	Shell       patch.VecPatch[string]
	Entrypoint  patch.VecPatch[string]
	Cmd         patch.VecPatch[string]
	Volume      patch.VecPatch[string]
	Expose      patch.VecPatch[PortPatch]
	Healthcheck *HealthcheckPatch
}

// Apply folds the patch into base.
func (p StagePatch) Apply(base Stage) (Stage, error) {
	out := base
	var err error

	if p.From != nil {
		if out.From, err = p.From.Apply(base.From); err != nil {
			return out, err
		}
	}
	if p.User != nil {
		var u User
		if base.User != nil {
			u = *base.User
		}
		resolved := p.User.Apply(u)
		out.User = &resolved
	}
	if p.Workdir != nil {
		out.Workdir = *p.Workdir
	}
	out.Arg = p.Arg.Apply(base.Arg)
	out.Env = p.Env.Apply(base.Env)
	out.Label = patch.Merge(base.Label, p.Label)

	if out.Copy, err = p.Copy.Apply(base.Copy, func(c CopyResource, cp CopyResourcePatch) (CopyResource, error) {
		return cp.Apply(c)
	}); err != nil {
		return out, err
	}

	if p.Root != nil {
		var root Run
		if base.Root != nil {
			root = *base.Root
		}
		resolved, err := p.Root.Apply(root)
		if err != nil {
			return out, err
		}
		out.Root = &resolved
	}

	run := base.Run
	runPatch := RunPatch{
		Commands: p.Commands,
		Cache:    p.Cache,
		Bind:     p.Bind,
		TmpFs:    p.TmpFs,
		Secret:   p.Secret,
		Ssh:      p.Ssh,
		Network:  p.Network,
		Security: p.Security,
		Shell:    p.Shell,
	}
	if out.Run, err = runPatch.Apply(run); err != nil {
		return out, err
	}

	if out.Entrypoint, err = p.Entrypoint.Apply(base.Entrypoint); err != nil {
		return out, err
	}
	if out.Cmd, err = p.Cmd.Apply(base.Cmd); err != nil {
		return out, err
	}
	if out.Volume, err = p.Volume.Apply(base.Volume); err != nil {
		return out, err
	}
	if out.Expose, err = patch.ApplyElements(p.Expose, base.Expose, func(port Port, pp PortPatch) (Port, error) {
		return pp.Apply(port), nil
	}); err != nil {
		return out, err
	}
	if p.Healthcheck != nil {
		var hc Healthcheck
		if base.Healthcheck != nil {
			hc = *base.Healthcheck
		}
		resolved := p.Healthcheck.Apply(hc)
		out.Healthcheck = &resolved
	}
	return out, nil
}

// UnmarshalYAML decodes a stage mapping. All fields are sibling keys;
// there is no nested "run" object.
func (p *StagePatch) UnmarshalYAML(node *yaml.Node) error {
	type raw struct {
		From        *FromContextPatch                                   `yaml:"from"`
		User        *UserPatch                                          `yaml:"user"`
		Workdir     *string                                             `yaml:"workdir"`
		Arg         patch.HashMapPatch[string, string]                  `yaml:"arg"`
		Env         patch.HashMapPatch[string, string]                  `yaml:"env"`
		Label       *patch.NestedMap                                    `yaml:"label"`
		Copy        patch.VecDeepPatch[CopyResource, CopyResourcePatch] `yaml:"copy"`
		Root        *RunPatch                                           `yaml:"root"`
		Run         patch.VecPatch[string]                              `yaml:"run"`
		Cache       patch.VecPatch[CachePatch]                          `yaml:"cache"`
		Bind        patch.VecPatch[BindPatch]                           `yaml:"bind"`
		TmpFs       patch.VecPatch[TmpFsPatch]                          `yaml:"tmpfs"`
		Secret      patch.VecPatch[SecretPatch]                         `yaml:"secret"`
		Ssh         patch.VecPatch[SshPatch]                            `yaml:"ssh"`
		Network     *string                                             `yaml:"network"`
		Security    *string                                             `yaml:"security"`
		Shell       patch.VecPatch[string]                              `yaml:"shell"`
		Entrypoint  patch.VecPatch[string]                              `yaml:"entrypoint"`
		Cmd         patch.VecPatch[string]                              `yaml:"cmd"`
		Volume      patch.VecPatch[string]                              `yaml:"volume"`
		Expose      patch.VecPatch[PortPatch]                           `yaml:"expose"`
		Healthcheck *HealthcheckPatch                                   `yaml:"healthcheck"`
	}
	var r raw
	if err := node.Decode(&r); err != nil {
		return err
	}
	p.From, p.User, p.Workdir = r.From, r.User, r.Workdir
	p.Arg, p.Env, p.Label = r.Arg, r.Env, r.Label
	p.Copy, p.Root, p.Commands = r.Copy, r.Root, r.Run
	p.Cache, p.Bind, p.TmpFs, p.Secret, p.Ssh = r.Cache, r.Bind, r.TmpFs, r.Secret, r.Ssh
	p.Network, p.Security, p.Shell = r.Network, r.Security, r.Shell
	p.Entrypoint, p.Cmd, p.Volume, p.Expose = r.Entrypoint, r.Cmd, r.Volume, r.Expose
	p.Healthcheck = r.Healthcheck
	return nil
}
