package cmd

import (
	"context"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/dofigen/dofigen-go/internal/descriptor"
	"github.com/dofigen/dofigen-go/internal/iofacade"
	"github.com/dofigen/dofigen-go/internal/lockstore"
)

var (
	updFile   string
	updStrict bool
)

var updateCmd = &cobra.Command{
	Use:   "update",
	Short: "Refresh every lock entry against the network",
	RunE:  runUpdate,
}

func init() {
	updateCmd.Flags().StringVarP(&updFile, "file", "f", "", "descriptor file (default: first of dofigen.{yml,yaml,json})")
	updateCmd.Flags().BoolVar(&updStrict, "strict", false, "reject permissive shortcut forms in the descriptor")
	rootCmd.AddCommand(updateCmd)
}

// updateFanOutLimit bounds how many re-pin network calls run concurrently,
// the one place this otherwise-synchronous tool fans work out.
const updateFanOutLimit = 8

func runUpdate(cmd *cobra.Command, args []string) error {
	file, err := resolveDescriptorFile(updFile)
	if err != nil {
		return err
	}

	ctx := context.Background()
	fetcher := iofacade.NewHTTPFetcher()
	d, err := loadDescriptor(ctx, fetcher, file, parseMode(updStrict))
	if err != nil {
		return err
	}

	store, err := openLockStore(lockstore.Unlocked)
	if err != nil {
		return err
	}

	images := collectImages(d)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(updateFanOutLimit)
	for _, img := range images {
		img := img
		g.Go(func() error {
			_, err := store.PinDigest(gctx, img)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	return store.Save()
}

// collectImages walks every stage (builders and root) and gathers the
// distinct fromImage references that need re-pinning.
func collectImages(d descriptor.Descriptor) []descriptor.ImageName {
	var out []descriptor.ImageName
	seen := map[string]bool{}
	add := func(fc descriptor.FromContext) {
		if fc.Kind != descriptor.FromImage {
			return
		}
		key := fc.Image.String()
		if seen[key] {
			return
		}
		seen[key] = true
		out = append(out, fc.Image)
	}
	collectStage := func(s descriptor.Stage) {
		add(s.From)
		for _, c := range s.Run.Cache {
			if c.From != nil {
				add(*c.From)
			}
		}
		for _, b := range s.Run.Bind {
			add(b.From)
		}
	}
	for _, ns := range d.Builders {
		collectStage(ns.Stage)
	}
	collectStage(d.Stage)
	return out
}
