package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "dofigen",
	Short: "Compile a declarative build descriptor into a Dockerfile",
	Long: `dofigen compiles a YAML or JSON build descriptor into a canonical
BuildKit Dockerfile and .dockerignore, pinning image references through a
lock file for reproducible builds.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command and returns the process exit code.
func Execute() int {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return exitCodeFor(err)
	}
	return exitOK
}

// resolveDescriptorFile implements the -f/--file resolution order: an
// explicit flag wins; otherwise the first of dofigen.{yml,yaml,json} that
// exists in the working directory; "-" means read from stdin.
func resolveDescriptorFile(explicit string) (string, error) {
	if explicit != "" {
		return explicit, nil
	}
	for _, candidate := range []string{"dofigen.yml", "dofigen.yaml", "dofigen.json"} {
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("no descriptor file found (looked for dofigen.yml, dofigen.yaml, dofigen.json); pass -f explicitly")
}
