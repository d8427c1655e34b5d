package descriptor

import "github.com/dofigen/dofigen-go/internal/patch"

// ToPatch converts a fully resolved Descriptor into the patch that would
// replace an empty Descriptor wholesale with it. internal/extend uses
// this to fold several already-resolved "extend" sources together before
// applying the resource's own patch last, so that an earlier extend's
// content always loses to a later one field-by-field rather than being
// silently discarded.
func (d Descriptor) ToPatch() DescriptorPatch {
	return DescriptorPatch{
		StagePatch: d.Stage.ToPatch(),
		Context:    patch.ReplaceAllVec(d.Context),
		Ignore:     patch.ReplaceAllVec(d.Ignore),
		Builders:   buildersToPatch(d.Builders),
		GlobalArg:  patch.HashMapPatch[string, string]{Set: d.GlobalArg},
	}
}

func buildersToPatch(b Builders) BuildersPatch {
	out := make(BuildersPatch, 0, len(b))
	for _, ns := range b {
		out = append(out, NamedStagePatch{Name: ns.Name, Stage: ns.Stage.ToPatch()})
	}
	return out
}

// ToPatch converts a resolved Stage into a replace-all StagePatch.
func (s Stage) ToPatch() StagePatch {
	fromPatch := s.From.toPatch()
	var userPatch *UserPatch
	if s.User != nil {
		up := s.User.toPatch()
		userPatch = &up
	}
	var hcPatch *HealthcheckPatch
	if s.Healthcheck != nil {
		hp := s.Healthcheck.toPatch()
		hcPatch = &hp
	}
	var rootPatch *RunPatch
	if s.Root != nil {
		rp := runToPatch(*s.Root)
		rootPatch = &rp
	}
	return StagePatch{
		From:        &fromPatch,
		User:        userPatch,
		Workdir:     strPtrAlways(s.Workdir),
		Arg:         patch.HashMapPatch[string, string]{Set: s.Arg},
		Env:         patch.HashMapPatch[string, string]{Set: s.Env},
		Label:       s.Label,
		Copy:        patch.VecDeepPatch[CopyResource, CopyResourcePatch]{VecPatch: patch.ReplaceAllVec(mapToPatch(s.Copy, CopyResource.toPatch))},
		Root:        rootPatch,
		Commands:    patch.ReplaceAllVec(s.Run.Commands),
		Cache:       patch.ReplaceAllVec(mapToPatch(s.Run.Cache, Cache.toPatch)),
		Bind:        patch.ReplaceAllVec(mapToPatch(s.Run.Bind, Bind.toPatch)),
		TmpFs:       patch.ReplaceAllVec(mapToPatch(s.Run.TmpFs, TmpFs.toPatch)),
		Secret:      patch.ReplaceAllVec(mapToPatch(s.Run.Secret, Secret.toPatch)),
		Ssh:         patch.ReplaceAllVec(mapToPatch(s.Run.Ssh, Ssh.toPatch)),
		Network:     strPtrAlways(s.Run.Network),
		Security:    strPtrAlways(s.Run.Security),
		Shell:       patch.ReplaceAllVec(s.Run.Shell),
		Entrypoint:  patch.ReplaceAllVec(s.Entrypoint),
		Cmd:         patch.ReplaceAllVec(s.Cmd),
		Volume:      patch.ReplaceAllVec(s.Volume),
		Expose:      patch.ReplaceAllVec(mapToPatch(s.Expose, Port.toPatch)),
		Healthcheck: hcPatch,
	}
}

func runToPatch(r Run) RunPatch {
	return RunPatch{
		Commands: patch.ReplaceAllVec(r.Commands),
		Cache:    patch.ReplaceAllVec(mapToPatch(r.Cache, Cache.toPatch)),
		Bind:     patch.ReplaceAllVec(mapToPatch(r.Bind, Bind.toPatch)),
		TmpFs:    patch.ReplaceAllVec(mapToPatch(r.TmpFs, TmpFs.toPatch)),
		Secret:   patch.ReplaceAllVec(mapToPatch(r.Secret, Secret.toPatch)),
		Ssh:      patch.ReplaceAllVec(mapToPatch(r.Ssh, Ssh.toPatch)),
		Network:  strPtrAlways(r.Network),
		Security: strPtrAlways(r.Security),
		Shell:    patch.ReplaceAllVec(r.Shell),
	}
}

// mapToPatch converts a slice of resolved elements into their patch form,
// used wherever ReplaceAllVec needs patch-element input.
func mapToPatch[T any, P any](items []T, toPatch func(T) P) []P {
	out := make([]P, len(items))
	for i, v := range items {
		out[i] = toPatch(v)
	}
	return out
}

func (f FromContext) toPatch() FromContextPatch {
	switch f.Kind {
	case FromDefaultContext:
		return FromContextPatch{}
	case FromBuilder:
		return FromContextPatch{BuilderName: strPtrAlways(f.BuilderName)}
	case FromNamedContext:
		return FromContextPatch{ContextName: strPtrAlways(f.ContextName)}
	default:
		img := f.Image.toPatch()
		return FromContextPatch{Image: &img}
	}
}

func (n ImageName) toPatch() ImageNamePatch {
	var platform *string
	if n.Platform != nil {
		s := n.Platform.OS + "/" + n.Platform.Architecture
		if n.Platform.Variant != "" {
			s += "/" + n.Platform.Variant
		}
		platform = &s
	}
	return ImageNamePatch{
		Host:     strPtrAlways(n.Host),
		Port:     intPtrAlways(n.Port),
		Path:     strPtrAlways(n.Path),
		Tag:      strPtrAlways(n.Tag),
		Digest:   strPtrAlways(n.Digest),
		Platform: platform,
	}
}

func (u User) toPatch() UserPatch {
	return UserPatch{User: strPtrAlways(u.User), Group: strPtrAlways(u.Group)}
}

func (h Healthcheck) toPatch() HealthcheckPatch {
	return HealthcheckPatch{
		Cmd:         strPtrAlways(h.Cmd),
		Interval:    strPtrAlways(h.Interval),
		Timeout:     strPtrAlways(h.Timeout),
		StartPeriod: strPtrAlways(h.StartPeriod),
		Retries:     intPtrAlways(h.Retries),
	}
}

func (c CopyCommon) toPatch() CopyCommonPatch {
	return CopyCommonPatch{
		Target: strPtrAlways(c.Target),
		Link:   boolPtrAlways(c.Link),
		Chown:  chownPatch(c.Chown),
		Chmod:  strPtrAlways(c.Chmod),
	}
}

func chownPatch(u *User) *UserPatch {
	if u == nil {
		return nil
	}
	p := u.toPatch()
	return &p
}

func (r CopyResource) toPatch() CopyResourcePatch {
	switch r.Kind {
	case CopyKindCopyContent:
		return CopyResourcePatch{Kind: CopyKindCopyContent, CopyContent: &CopyContentPatch{
			CopyCommonPatch: r.CopyContent.CopyCommon.toPatch(),
			Content:         strPtrAlways(r.CopyContent.Content),
		}}
	case CopyKindAddGitRepo:
		return CopyResourcePatch{Kind: CopyKindAddGitRepo, AddGitRepo: &AddGitRepoPatch{
			CopyCommonPatch: r.AddGitRepo.CopyCommon.toPatch(),
			Repo:            strPtrAlways(r.AddGitRepo.Repo),
			Ref:             strPtrAlways(r.AddGitRepo.Ref),
			KeepGitDir:      boolPtrAlways(r.AddGitRepo.KeepGitDir),
		}}
	case CopyKindAdd:
		srcs := r.Add.Sources
		return CopyResourcePatch{Kind: CopyKindAdd, Add: &AddPatch{
			CopyCommonPatch: r.Add.CopyCommon.toPatch(),
			Sources:         &srcs,
			Checksum:        strPtrAlways(r.Add.Checksum),
		}}
	default:
		fromPatch := r.Copy.From.toPatch()
		paths := r.Copy.Paths
		excl := r.Copy.ExcludePatterns
		return CopyResourcePatch{Kind: CopyKindCopy, Copy: &CopyPatch{
			CopyCommonPatch: r.Copy.CopyCommon.toPatch(),
			Paths:           &paths,
			From:            &fromPatch,
			ExcludePatterns: &excl,
			ParentPath:      boolPtrAlways(r.Copy.ParentPath),
		}}
	}
}

func (p Port) toPatch() PortPatch {
	return PortPatch{Port: &p.Port, Protocol: strPtrAlways(p.Protocol)}
}

func (c Cache) toPatch() CachePatch {
	return CachePatch{
		Target:   strPtrAlways(c.Target),
		ID:       strPtrAlways(c.ID),
		Sharing:  strPtrAlways(c.Sharing),
		ReadOnly: boolPtrAlways(c.ReadOnly),
		From:     fromContextPtrPatch(c.From),
		Source:   strPtrAlways(c.Source),
		Chown:    chownPatch(c.Chown),
		Chmod:    strPtrAlways(c.Chmod),
	}
}

func (b Bind) toPatch() BindPatch {
	fromPatch := b.From.toPatch()
	return BindPatch{
		Target:    strPtrAlways(b.Target),
		From:      &fromPatch,
		Source:    strPtrAlways(b.Source),
		ReadWrite: boolPtrAlways(b.ReadWrite),
	}
}

func (t TmpFs) toPatch() TmpFsPatch {
	return TmpFsPatch{Target: strPtrAlways(t.Target), Size: intPtrAlways(t.Size)}
}

func (s Secret) toPatch() SecretPatch {
	return SecretPatch{
		ID:       strPtrAlways(s.ID),
		Target:   strPtrAlways(s.Target),
		Required: boolPtrAlways(s.Required),
		Mode:     strPtrAlways(s.Mode),
	}
}

func (s Ssh) toPatch() SshPatch {
	return SshPatch{
		ID:       strPtrAlways(s.ID),
		Target:   strPtrAlways(s.Target),
		Required: boolPtrAlways(s.Required),
		Mode:     strPtrAlways(s.Mode),
	}
}

func fromContextPtrPatch(f *FromContext) *FromContextPatch {
	if f == nil {
		return nil
	}
	p := f.toPatch()
	return &p
}

func strPtrAlways(s string) *string { return &s }
func intPtrAlways(i int) *int       { return &i }
func boolPtrAlways(b bool) *bool    { return &b }
