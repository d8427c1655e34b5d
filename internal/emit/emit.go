// Package emit renders a resolved build IR into a canonical BuildKit
// Dockerfile and an optional .dockerignore, in a single fixed,
// deterministic order. The terse, string-building-over-templating style
// of the instruction writers (writeInstruction, emitFrom,
// emitHealthcheck) follows the same approach as the Dockerfile line
// scanner this project grew out of.
package emit

import (
	"fmt"
	"sort"
	"strings"

	"github.com/dofigen/dofigen-go/internal/descriptor"
	"github.com/dofigen/dofigen-go/internal/dofigenerr"
	"github.com/dofigen/dofigen-go/internal/patch"
	"github.com/dofigen/dofigen-go/internal/resolve"
)

const syntaxDirective = "# syntax=docker/dockerfile:1.11"

// ToolName and ToolVersion are stamped into the header comment; the
// generate command sets ToolVersion from internal/version's Version.
var (
	ToolName    = "dofigen"
	ToolVersion = "dev"
)

// Result is the pair of files a successful Generate produces.
type Result struct {
	Dockerfile    []byte
	Dockerignore  []byte // nil when no ignore rules apply
}

// Generate renders ir into a Dockerfile and, when applicable, a
// .dockerignore.
func Generate(ir *resolve.IR) (*Result, error) {
	var b strings.Builder

	b.WriteString(syntaxDirective)
	b.WriteString("\n")
	fmt.Fprintf(&b, "# generated by %s %s\n\n", ToolName, ToolVersion)

	for _, name := range sortedStringKeys(ir.GlobalArgs) {
		if v := ir.GlobalArgs[name]; v != "" {
			fmt.Fprintf(&b, "ARG %s=%s\n", name, v)
		} else {
			fmt.Fprintf(&b, "ARG %s\n", name)
		}
	}
	if len(ir.GlobalArgs) > 0 {
		b.WriteString("\n")
	}

	for _, ns := range ir.Stages {
		if err := emitStage(&b, ns.Name, ns.Stage, false); err != nil {
			return nil, err
		}
	}
	if err := emitStage(&b, "", ir.Root, true); err != nil {
		return nil, err
	}

	result := &Result{Dockerfile: []byte(b.String())}
	if ignore := renderDockerignore(ir.Context, ir.Ignore); ignore != "" {
		result.Dockerignore = []byte(ignore)
	}
	return result, nil
}

func emitStage(b *strings.Builder, name string, s descriptor.Stage, isRoot bool) error {
	label := name
	if label == "" {
		label = "(root)"
	}
	fmt.Fprintf(b, "# stage: %s\n", label)

	if err := emitFrom(b, name, s.From); err != nil {
		return err
	}

	for _, k := range sortedStringKeys(s.Arg) {
		if v := s.Arg[k]; v != "" {
			fmt.Fprintf(b, "ARG %s=%s\n", k, v)
		} else {
			fmt.Fprintf(b, "ARG %s\n", k)
		}
	}
	for _, k := range sortedStringKeys(s.Env) {
		fmt.Fprintf(b, "ENV %s=%s\n", k, shellQuote(s.Env[k]))
	}
	if s.Label != nil {
		labels := patch.Flatten(s.Label)
		for _, k := range sortedStringKeys(labels) {
			fmt.Fprintf(b, "LABEL %s=%s\n", k, shellQuote(labels[k]))
		}
	}
	if s.Workdir != "" {
		fmt.Fprintf(b, "WORKDIR %s\n", s.Workdir)
	}
	if s.User != nil {
		fmt.Fprintf(b, "USER %s\n", s.User.String())
	}

	for _, cr := range s.Copy {
		if err := emitCopyResource(b, cr); err != nil {
			return err
		}
	}

	if s.Root != nil && len(s.Root.Commands) > 0 {
		b.WriteString("USER 0\n")
		emitRun(b, *s.Root)
		if s.User != nil {
			fmt.Fprintf(b, "USER %s\n", s.User.String())
		} else {
			fmt.Fprintf(b, "USER %s\n", defaultUserFallback)
		}
	}
	if len(s.Run.Commands) > 0 {
		emitRun(b, s.Run)
	}

	if isRoot {
		for _, p := range s.Expose {
			fmt.Fprintf(b, "EXPOSE %s\n", p.String())
		}
		for _, v := range s.Volume {
			fmt.Fprintf(b, "VOLUME %s\n", v)
		}
		if s.Healthcheck != nil {
			emitHealthcheck(b, *s.Healthcheck)
		}
		if len(s.Entrypoint) > 0 {
			fmt.Fprintf(b, "ENTRYPOINT %s\n", jsonArray(s.Entrypoint))
		}
		if len(s.Cmd) > 0 {
			fmt.Fprintf(b, "CMD %s\n", jsonArray(s.Cmd))
		}
	}

	b.WriteString("\n")
	return nil
}

const defaultUserFallback = "1000"

func emitFrom(b *strings.Builder, name string, fc descriptor.FromContext) error {
	var ref string
	switch fc.Kind {
	case descriptor.FromImage:
		ref = fc.Image.String()
		if fc.Image.Platform != nil {
			ref = "--platform=$TARGETPLATFORM " + ref
		}
	case descriptor.FromBuilder:
		ref = fc.BuilderName
	case descriptor.FromNamedContext:
		ref = fc.ContextName
	default:
		return dofigenerr.Emit("stage \"" + name + "\" has no FROM source")
	}
	if name != "" {
		fmt.Fprintf(b, "FROM %s AS %s\n", ref, name)
	} else {
		fmt.Fprintf(b, "FROM %s\n", ref)
	}
	return nil
}

func emitHealthcheck(b *strings.Builder, h descriptor.Healthcheck) {
	fmt.Fprintf(b, "HEALTHCHECK --interval=%s --timeout=%s --start-period=%s --retries=%d CMD %s\n",
		h.Interval, h.Timeout, h.StartPeriod, h.Retries, h.Cmd)
}

func jsonArray(items []string) string {
	quoted := make([]string, len(items))
	for i, s := range items {
		quoted[i] = fmt.Sprintf("%q", s)
	}
	return "[" + strings.Join(quoted, ", ") + "]"
}

func shellQuote(s string) string {
	if s == "" {
		return `""`
	}
	if strings.ContainsAny(s, " \t\"'$") {
		return fmt.Sprintf("%q", s)
	}
	return s
}

func sortedStringKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func renderDockerignore(context, ignore []string) string {
	if len(context) > 0 {
		var b strings.Builder
		b.WriteString("**\n")
		for _, c := range context {
			fmt.Fprintf(&b, "!%s\n", c)
		}
		return b.String()
	}
	if len(ignore) > 0 {
		var b strings.Builder
		for _, i := range ignore {
			fmt.Fprintf(&b, "%s\n", i)
		}
		return b.String()
	}
	return ""
}
