package cmd

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/dofigen/dofigen-go/internal/descriptor"
	"github.com/dofigen/dofigen-go/internal/extend"
	"github.com/dofigen/dofigen-go/internal/iofacade"
	"github.com/dofigen/dofigen-go/internal/lockstore"
	"github.com/dofigen/dofigen-go/internal/parse"
	"github.com/dofigen/dofigen-go/internal/resolve"
)

const lockFileName = "dofigen.lock"

// loadDescriptor parses file into a fully extend-resolved Descriptor under
// the given grammar mode. "-" reads from stdin; a document read from
// stdin is decoded and applied on its own, and any "extend" entries it
// lists (relative, absolute or URL) are ignored.
func loadDescriptor(ctx context.Context, fetcher iofacade.Fetcher, file string, mode parse.Mode) (descriptor.Descriptor, error) {
	if file == "-" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return descriptor.Descriptor{}, fmt.Errorf("reading stdin: %w", err)
		}
		patch, err := parse.New(mode).Parse(data)
		if err != nil {
			return descriptor.Descriptor{}, err
		}
		return patch.Apply(descriptor.Descriptor{})
	}
	loader := extend.NewLoader(fetcher)
	loader.Mode = mode
	return loader.Load(ctx, extend.NewResource(file))
}

func openLockStore(policy lockstore.Policy) (*lockstore.Store, error) {
	var registry iofacade.RegistryClient
	if policy != lockstore.Offline {
		registry = iofacade.GGCRRegistryClient{}
	}
	return lockstore.Load(lockFileName, policy, registry)
}

func parseMode(strict bool) parse.Mode {
	if strict {
		return parse.Strict
	}
	return parse.Permissive
}

func resolvePolicy(locked, offline bool) lockstore.Policy {
	switch {
	case offline:
		return lockstore.Offline
	case locked:
		return lockstore.Locked
	default:
		return lockstore.Unlocked
	}
}

func resolveDescriptor(ctx context.Context, d descriptor.Descriptor, store *lockstore.Store) (*resolve.IR, error) {
	return resolve.Resolve(ctx, d, store)
}
