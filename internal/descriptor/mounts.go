package descriptor

import "gopkg.in/yaml.v3"

// Cache is a --mount=type=cache entry attached to a RUN instruction.
type Cache struct {
	Target   string
	ID       string
	Sharing  string // "shared" (default), "private", "locked"
	ReadOnly bool
	From     *FromContext
	Source   string
	Chown    *User
	Chmod    string
}

// CachePatch is the patch form of Cache.
type CachePatch struct {
	Target   *string
	ID       *string
	Sharing  *string
	ReadOnly *bool
	From     *FromContextPatch
	Source   *string
	Chown    *UserPatch
	Chmod    *string
}

// Apply folds the patch into base.
func (p CachePatch) Apply(base Cache) (Cache, error) {
	out := base
	if p.Target != nil {
		out.Target = *p.Target
	}
	if p.ID != nil {
		out.ID = *p.ID
	}
	if p.Sharing != nil {
		out.Sharing = *p.Sharing
	}
	if p.ReadOnly != nil {
		out.ReadOnly = *p.ReadOnly
	}
	if p.Source != nil {
		out.Source = *p.Source
	}
	if p.Chmod != nil {
		out.Chmod = *p.Chmod
	}
	if p.From != nil {
		var fc FromContext
		if base.From != nil {
			fc = *base.From
		}
		resolved, err := p.From.Apply(fc)
		if err != nil {
			return out, err
		}
		out.From = &resolved
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

// UnmarshalYAML accepts the bare target-path shortcut "/path/to/cache" or
// the full struct form.
func (p *CachePatch) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		if strictMode {
			return rejectShortcut("cache")
		}
		p.Target = strPtr(node.Value)
		return nil
	}
	type raw struct {
		Target   *string           `yaml:"target"`
		ID       *string           `yaml:"id"`
		Sharing  *string           `yaml:"sharing"`
		ReadOnly *bool             `yaml:"readonly"`
		From     *FromContextPatch `yaml:"from"`
		Source   *string           `yaml:"source"`
		Chown    *UserPatch        `yaml:"chown"`
		Chmod    *string           `yaml:"chmod"`
	}
	var r raw
	if err := node.Decode(&r); err != nil {
		return err
	}
	p.Target, p.ID, p.Sharing, p.ReadOnly = r.Target, r.ID, r.Sharing, r.ReadOnly
	p.From, p.Source, p.Chown, p.Chmod = r.From, r.Source, r.Chown, r.Chmod
	return nil
}

// Bind is a --mount=type=bind entry attached to a RUN instruction,
// sourcing a file or directory from another stage or build context
// without copying it into a layer.
type Bind struct {
	Target    string
	From      FromContext
	Source    string
	ReadWrite bool
}

// BindPatch is the patch form of Bind.
type BindPatch struct {
	Target    *string
	From      *FromContextPatch
	Source    *string
	ReadWrite *bool
}

// Apply folds the patch into base.
func (p BindPatch) Apply(base Bind) (Bind, error) {
	out := base
	if p.Target != nil {
		out.Target = *p.Target
	}
	if p.Source != nil {
		out.Source = *p.Source
	}
	if p.ReadWrite != nil {
		out.ReadWrite = *p.ReadWrite
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

// UnmarshalYAML accepts the bare target-path shortcut or the full struct
// form.
func (p *BindPatch) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		if strictMode {
			return rejectShortcut("bind")
		}
		p.Target = strPtr(node.Value)
		return nil
	}
	type raw struct {
		Target    *string           `yaml:"target"`
		From      *FromContextPatch `yaml:"from"`
		Source    *string           `yaml:"source"`
		ReadWrite *bool             `yaml:"readwrite"`
	}
	var r raw
	if err := node.Decode(&r); err != nil {
		return err
	}
	p.Target, p.From, p.Source, p.ReadWrite = r.Target, r.From, r.Source, r.ReadWrite
	return nil
}

// TmpFs is a --mount=type=tmpfs entry.
type TmpFs struct {
	Target string
	Size   int // bytes, 0 means unset
}

// TmpFsPatch is the patch form of TmpFs.
type TmpFsPatch struct {
	Target *string
	Size   *int
}

// Apply folds the patch into base.
func (p TmpFsPatch) Apply(base TmpFs) TmpFs {
	out := base
	if p.Target != nil {
		out.Target = *p.Target
	}
	if p.Size != nil {
		out.Size = *p.Size
	}
	return out
}

// UnmarshalYAML accepts the bare target-path shortcut or the full struct
// form.
func (p *TmpFsPatch) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		if strictMode {
			return rejectShortcut("tmpfs")
		}
		p.Target = strPtr(node.Value)
		return nil
	}
	type raw struct {
		Target *string `yaml:"target"`
		Size   *int    `yaml:"size"`
	}
	var r raw
	if err := node.Decode(&r); err != nil {
		return err
	}
	p.Target, p.Size = r.Target, r.Size
	return nil
}

// Secret is a --mount=type=secret entry.
type Secret struct {
	ID       string
	Target   string
	Required bool
	Mode     string // octal file mode, e.g. "0400"
}

// SecretPatch is the patch form of Secret.
type SecretPatch struct {
	ID       *string
	Target   *string
	Required *bool
	Mode     *string
}

// Apply folds the patch into base.
func (p SecretPatch) Apply(base Secret) Secret {
	out := base
	if p.ID != nil {
		out.ID = *p.ID
	}
	if p.Target != nil {
		out.Target = *p.Target
	}
	if p.Required != nil {
		out.Required = *p.Required
	}
	if p.Mode != nil {
		out.Mode = *p.Mode
	}
	return out
}

// UnmarshalYAML accepts the bare id shortcut or the full struct form.
func (p *SecretPatch) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		if strictMode {
			return rejectShortcut("secret")
		}
		p.ID = strPtr(node.Value)
		return nil
	}
	type raw struct {
		ID       *string `yaml:"id"`
		Target   *string `yaml:"target"`
		Required *bool   `yaml:"required"`
		Mode     *string `yaml:"mode"`
	}
	var r raw
	if err := node.Decode(&r); err != nil {
		return err
	}
	p.ID, p.Target, p.Required, p.Mode = r.ID, r.Target, r.Required, r.Mode
	return nil
}

// Ssh is a --mount=type=ssh entry.
type Ssh struct {
	ID       string
	Target   string
	Required bool
	Mode     string
}

// SshPatch is the patch form of Ssh.
type SshPatch struct {
	ID       *string
	Target   *string
	Required *bool
	Mode     *string
}

// Apply folds the patch into base.
func (p SshPatch) Apply(base Ssh) Ssh {
	out := base
	if p.ID != nil {
		out.ID = *p.ID
	}
	if p.Target != nil {
		out.Target = *p.Target
	}
	if p.Required != nil {
		out.Required = *p.Required
	}
	if p.Mode != nil {
		out.Mode = *p.Mode
	}
	return out
}

// UnmarshalYAML accepts the bare id shortcut or the full struct form.
func (p *SshPatch) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		if strictMode {
			return rejectShortcut("ssh")
		}
		p.ID = strPtr(node.Value)
		return nil
	}
	type raw struct {
		ID       *string `yaml:"id"`
		Target   *string `yaml:"target"`
		Required *bool   `yaml:"required"`
		Mode     *string `yaml:"mode"`
	}
	var r raw
	if err := node.Decode(&r); err != nil {
		return err
	}
	p.ID, p.Target, p.Required, p.Mode = r.ID, r.Target, r.Required, r.Mode
	return nil
}
