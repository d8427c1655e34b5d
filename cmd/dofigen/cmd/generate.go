package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dofigen/dofigen-go/internal/emit"
	"github.com/dofigen/dofigen-go/internal/iofacade"
	"github.com/dofigen/dofigen-go/internal/version"
)

var (
	genFile     string
	genOut      string
	genLocked   bool
	genOffline  bool
	genNoIgnore bool
	genStrict   bool
)

var generateCmd = &cobra.Command{
	Use:     "generate",
	Aliases: []string{"gen"},
	Short:   "Write a Dockerfile and .dockerignore from a descriptor",
	RunE:    runGenerate,
}

func init() {
	generateCmd.Flags().StringVarP(&genFile, "file", "f", "", "descriptor file (default: first of dofigen.{yml,yaml,json}; - for stdin)")
	generateCmd.Flags().StringVarP(&genOut, "output", "o", "Dockerfile", "output Dockerfile path (- for stdout)")
	generateCmd.Flags().BoolVarP(&genLocked, "locked", "l", false, "fail if an image isn't already pinned in the lock file (extend resources are not checked against it)")
	generateCmd.Flags().BoolVar(&genOffline, "offline", false, "never query the image registry; every image must already be pinned in the lock file (URL extend resources are still fetched)")
	generateCmd.Flags().BoolVar(&genNoIgnore, "no-ignore", false, "skip writing .dockerignore")
	generateCmd.Flags().BoolVar(&genStrict, "strict", false, "reject permissive shortcut forms in the descriptor")
	rootCmd.AddCommand(generateCmd)
}

func runGenerate(cmd *cobra.Command, args []string) error {
	file, err := resolveDescriptorFile(genFile)
	if err != nil {
		return err
	}

	ctx := context.Background()
	fetcher := iofacade.NewHTTPFetcher()
	d, err := loadDescriptor(ctx, fetcher, file, parseMode(genStrict))
	if err != nil {
		return err
	}

	policy := resolvePolicy(genLocked, genOffline)
	store, err := openLockStore(policy)
	if err != nil {
		return err
	}

	ir, err := resolveDescriptor(ctx, d, store)
	if err != nil {
		return err
	}

	emit.ToolVersion = version.Version
	result, err := emit.Generate(ir)
	if err != nil {
		return err
	}

	if err := writeOutput(genOut, result.Dockerfile); err != nil {
		return err
	}
	if !genNoIgnore && result.Dockerignore != nil {
		if err := writeAtomic(dockerignorePath(genOut), result.Dockerignore); err != nil {
			return fmt.Errorf("writing .dockerignore: %w", err)
		}
	}

	return store.Save()
}

func writeOutput(path string, data []byte) error {
	if path == "-" {
		_, err := os.Stdout.Write(data)
		return err
	}
	return writeAtomic(path, data)
}

func dockerignorePath(dockerfilePath string) string {
	if dockerfilePath == "-" {
		return ".dockerignore"
	}
	dir := "."
	if idx := lastSlash(dockerfilePath); idx >= 0 {
		dir = dockerfilePath[:idx]
	}
	return dir + "/.dockerignore"
}

func lastSlash(s string) int {
	for i := len(s) - 1; i >= 0; i-- {
		if s[i] == '/' {
			return i
		}
	}
	return -1
}

// writeAtomic writes data to path via a temp file in the same directory
// then a rename, so a crash mid-write never leaves a truncated output
// file promoted to the final name.
func writeAtomic(path string, data []byte) error {
	dir := "."
	if idx := lastSlash(path); idx >= 0 {
		dir = path[:idx]
	}
	tmp, err := os.CreateTemp(dir, ".dofigen-out-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp output file: %w", err)
	}
	tmpPath := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("write temp output file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("close temp output file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("rename temp output file into place: %w", err)
	}
	return nil
}
