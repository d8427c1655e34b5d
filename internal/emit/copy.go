package emit

import (
	"fmt"
	"strings"

	"github.com/dofigen/dofigen-go/internal/descriptor"
	"github.com/dofigen/dofigen-go/internal/dofigenerr"
)

// emitCopyResource renders one copy-like stage entry: COPY, ADD, a
// heredoc COPY for inline content, or ADD for a git checkout.
func emitCopyResource(b *strings.Builder, r descriptor.CopyResource) error {
	switch r.Kind {
	case descriptor.CopyKindCopy:
		return emitCopy(b, *r.Copy)
	case descriptor.CopyKindCopyContent:
		return emitCopyContent(b, *r.CopyContent)
	case descriptor.CopyKindAddGitRepo:
		return emitAddGitRepo(b, *r.AddGitRepo)
	case descriptor.CopyKindAdd:
		return emitAdd(b, *r.Add)
	default:
		return dofigenerr.Emit("copy resource has no recognized kind")
	}
}

func commonFlags(c descriptor.CopyCommon) []string {
	var flags []string
	if c.Chown != nil {
		flags = append(flags, "--chown="+c.Chown.String())
	}
	if c.Chmod != "" {
		flags = append(flags, "--chmod="+c.Chmod)
	}
	if c.Link {
		flags = append(flags, "--link")
	}
	return flags
}

func emitCopy(b *strings.Builder, c descriptor.Copy) error {
	flags := commonFlags(c.CopyCommon)
	if ref := fromContextRef(c.From); ref != "" {
		flags = append(flags, "--from="+ref)
	}
	if len(c.ExcludePatterns) > 0 {
		for _, e := range c.ExcludePatterns {
			flags = append(flags, "--exclude="+e)
		}
	}
	if c.ParentPath {
		flags = append(flags, "--parents")
	}
	if len(c.Paths) == 0 {
		return dofigenerr.Emit("copy target \"" + c.Target + "\" has no source paths")
	}
	target := c.Target
	if target == "" {
		target = "./"
	}
	writeInstruction(b, "COPY", flags, append(append([]string{}, c.Paths...), target))
	return nil
}

func emitCopyContent(b *strings.Builder, c descriptor.CopyContent) error {
	flags := commonFlags(c.CopyCommon)
	b.WriteString("COPY")
	for _, f := range flags {
		b.WriteString(" ")
		b.WriteString(f)
	}
	fmt.Fprintf(b, " <<EOF %s\n", c.Target)
	b.WriteString(c.Content)
	if !strings.HasSuffix(c.Content, "\n") {
		b.WriteString("\n")
	}
	b.WriteString("EOF\n")
	return nil
}

func emitAddGitRepo(b *strings.Builder, g descriptor.AddGitRepo) error {
	flags := commonFlags(g.CopyCommon)
	if g.KeepGitDir {
		flags = append(flags, "--keep-git-dir")
	}
	ref := g.Repo
	if g.Ref != "" {
		ref += "#" + g.Ref
	}
	writeInstruction(b, "ADD", flags, []string{ref, g.Target})
	return nil
}

func emitAdd(b *strings.Builder, a descriptor.Add) error {
	flags := commonFlags(a.CopyCommon)
	if a.Checksum != "" {
		flags = append(flags, "--checksum="+a.Checksum)
	}
	if len(a.Sources) == 0 {
		return dofigenerr.Emit("add target \"" + a.Target + "\" has no sources")
	}
	writeInstruction(b, "ADD", flags, append(append([]string{}, a.Sources...), a.Target))
	return nil
}

func writeInstruction(b *strings.Builder, verb string, flags, args []string) {
	b.WriteString(verb)
	for _, f := range flags {
		b.WriteString(" ")
		b.WriteString(f)
	}
	for _, a := range args {
		b.WriteString(" ")
		b.WriteString(a)
	}
	b.WriteString("\n")
}
