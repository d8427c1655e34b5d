package resolve

import (
	"context"

	"github.com/dofigen/dofigen-go/internal/descriptor"
	"github.com/dofigen/dofigen-go/internal/lockstore"
)

// pinStageImages resolves the digest for every fromImage reference
// reachable from s (the stage's own FROM, and any Cache/Bind mount's
// FROM), preserving the declared tag alongside the resolved digest for
// human readability.
func pinStageImages(ctx context.Context, s descriptor.Stage, store *lockstore.Store) (descriptor.Stage, error) {
	out := s
	pinned, err := pinFromContext(ctx, out.From, store)
	if err != nil {
		return out, err
	}
	out.From = pinned

	if len(out.Run.Cache) > 0 {
		caches := make([]descriptor.Cache, len(out.Run.Cache))
		for i, c := range out.Run.Cache {
			if c.From != nil {
				p, err := pinFromContext(ctx, *c.From, store)
				if err != nil {
					return out, err
				}
				c.From = &p
			}
			caches[i] = c
		}
		out.Run.Cache = caches
	}
	if len(out.Run.Bind) > 0 {
		binds := make([]descriptor.Bind, len(out.Run.Bind))
		for i, b := range out.Run.Bind {
			p, err := pinFromContext(ctx, b.From, store)
			if err != nil {
				return out, err
			}
			b.From = p
			binds[i] = b
		}
		out.Run.Bind = binds
	}
	return out, nil
}

func pinFromContext(ctx context.Context, fc descriptor.FromContext, store *lockstore.Store) (descriptor.FromContext, error) {
	if fc.Kind != descriptor.FromImage {
		return fc, nil
	}
	img := fc.Image
	if img.Tag == "" && img.Digest == "" {
		img.Tag = "latest"
	}
	digest, err := store.PinDigest(ctx, img)
	if err != nil {
		return fc, err
	}
	img.Digest = digest
	fc.Image = img
	return fc, nil
}
