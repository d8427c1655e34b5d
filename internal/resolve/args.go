package resolve

import (
	"regexp"

	"github.com/dofigen/dofigen-go/internal/descriptor"
)

var argRefRE = regexp.MustCompile(`\$\{?([A-Z_][A-Z0-9_]*)\}?`)

// computeGlobalArgs unions the descriptor's declared globalArg with any
// ARG referenced in a RUN command before it is declared by the
// referencing stage itself — most commonly BuildKit's own
// TARGETPLATFORM, which scripts often read without anyone declaring it.
func computeGlobalArgs(d descriptor.Descriptor, builders []descriptor.NamedStage, root descriptor.Stage) map[string]string {
	out := make(map[string]string, len(d.GlobalArg))
	for k, v := range d.GlobalArg {
		out[k] = v
	}

	stages := make([]descriptor.Stage, 0, len(builders)+1)
	for _, ns := range builders {
		stages = append(stages, ns.Stage)
	}
	stages = append(stages, root)

	for _, s := range stages {
		referenced := map[string]bool{}
		for _, cmd := range s.Run.Commands {
			for _, m := range argRefRE.FindAllStringSubmatch(cmd, -1) {
				referenced[m[1]] = true
			}
		}
		for name := range referenced {
			if _, declared := s.Arg[name]; declared {
				continue
			}
			if _, global := out[name]; global {
				continue
			}
			out[name] = ""
		}
	}
	return out
}
