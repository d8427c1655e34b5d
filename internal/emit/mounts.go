package emit

import (
	"fmt"
	"strings"

	"github.com/dofigen/dofigen-go/internal/descriptor"
)

// mountFlags renders a RUN instruction's --mount flags in the fixed order
// cache, bind, tmpfs, secret, ssh, so the same Run always emits the same
// RUN line byte for byte.
func mountFlags(r descriptor.Run) []string {
	var flags []string
	for _, c := range r.Cache {
		flags = append(flags, cacheFlag(c))
	}
	for _, b := range r.Bind {
		flags = append(flags, bindFlag(b))
	}
	for _, t := range r.TmpFs {
		flags = append(flags, tmpfsFlag(t))
	}
	for _, s := range r.Secret {
		flags = append(flags, secretFlag(s))
	}
	for _, s := range r.Ssh {
		flags = append(flags, sshFlag(s))
	}
	return flags
}

func cacheFlag(c descriptor.Cache) string {
	parts := []string{"type=cache", "target=" + c.Target}
	if c.ID != "" {
		parts = append(parts, "id="+c.ID)
	}
	if c.Sharing != "" {
		parts = append(parts, "sharing="+c.Sharing)
	}
	if c.ReadOnly {
		parts = append(parts, "readonly")
	}
	if c.From != nil {
		if ref := fromContextRef(*c.From); ref != "" {
			parts = append(parts, "from="+ref)
		}
	}
	if c.Source != "" {
		parts = append(parts, "source="+c.Source)
	}
	if c.Chown != nil {
		parts = append(parts, "uid="+c.Chown.User)
		if c.Chown.Group != "" {
			parts = append(parts, "gid="+c.Chown.Group)
		}
	}
	if c.Chmod != "" {
		parts = append(parts, "mode="+c.Chmod)
	}
	return "--mount=" + strings.Join(parts, ",")
}

func bindFlag(b descriptor.Bind) string {
	parts := []string{"type=bind", "target=" + b.Target}
	if ref := fromContextRef(b.From); ref != "" {
		parts = append(parts, "from="+ref)
	}
	if b.Source != "" {
		parts = append(parts, "source="+b.Source)
	}
	if !b.ReadWrite {
		parts = append(parts, "readonly")
	}
	return "--mount=" + strings.Join(parts, ",")
}

func tmpfsFlag(t descriptor.TmpFs) string {
	parts := []string{"type=tmpfs", "target=" + t.Target}
	if t.Size != 0 {
		parts = append(parts, fmt.Sprintf("size=%d", t.Size))
	}
	return "--mount=" + strings.Join(parts, ",")
}

func secretFlag(s descriptor.Secret) string {
	parts := []string{"type=secret", "id=" + s.ID}
	if s.Target != "" {
		parts = append(parts, "target="+s.Target)
	}
	if s.Required {
		parts = append(parts, "required")
	}
	if s.Mode != "" {
		parts = append(parts, "mode="+s.Mode)
	}
	return "--mount=" + strings.Join(parts, ",")
}

func sshFlag(s descriptor.Ssh) string {
	parts := []string{"type=ssh"}
	if s.ID != "" {
		parts = append(parts, "id="+s.ID)
	}
	if s.Target != "" {
		parts = append(parts, "target="+s.Target)
	}
	if s.Required {
		parts = append(parts, "required")
	}
	if s.Mode != "" {
		parts = append(parts, "mode="+s.Mode)
	}
	return "--mount=" + strings.Join(parts, ",")
}

// fromContextRef renders a --from=... value for a mount, empty when fc
// names no source (the default build context needs no flag at all).
func fromContextRef(fc descriptor.FromContext) string {
	switch fc.Kind {
	case descriptor.FromImage:
		return fc.Image.String()
	case descriptor.FromBuilder:
		return fc.BuilderName
	case descriptor.FromNamedContext:
		return fc.ContextName
	default:
		return ""
	}
}

// emitRun renders one collapsed RUN instruction: its mount flags, its
// network/security options, then its commands. Multiple commands go into
// a heredoc body rather than a chain of "&&" continuations.
func emitRun(b *strings.Builder, r descriptor.Run) {
	if len(r.Commands) == 0 {
		return
	}
	b.WriteString("RUN")
	if r.Network != "" {
		fmt.Fprintf(b, " --network=%s", r.Network)
	}
	if r.Security != "" {
		fmt.Fprintf(b, " --security=%s", r.Security)
	}
	for _, m := range mountFlags(r) {
		b.WriteString(" ")
		b.WriteString(m)
	}

	if len(r.Commands) == 1 {
		fmt.Fprintf(b, " %s\n", r.Commands[0])
		return
	}

	shell := "/bin/sh"
	if len(r.Shell) > 0 {
		shell = strings.Join(r.Shell, " ")
	}
	fmt.Fprintf(b, " <<EOF\n")
	_ = shell // the shebang form is only needed when Shell deviates from the image default
	if len(r.Shell) > 0 {
		fmt.Fprintf(b, "#!%s\n", shell)
	}
	for _, cmd := range r.Commands {
		b.WriteString(cmd)
		b.WriteString("\n")
	}
	b.WriteString("EOF\n")
}
