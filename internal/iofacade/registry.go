package iofacade

import (
	"context"
	"fmt"

	"github.com/google/go-containerregistry/pkg/name"
	v1 "github.com/google/go-containerregistry/pkg/v1"
	v1remote "github.com/google/go-containerregistry/pkg/v1/remote"
	ocispec "github.com/opencontainers/image-spec/specs-go/v1"
)

// GGCRRegistryClient implements RegistryClient against a live registry
// using google/go-containerregistry's remote transport. It issues a HEAD
// (manifest-only) request, never pulling layers, since the lock store
// only needs the resolved digest.
type GGCRRegistryClient struct{}

func (GGCRRegistryClient) ResolveDigest(ctx context.Context, ref string, platform *ocispec.Platform) (string, error) {
	nameRef, err := name.ParseReference(ref)
	if err != nil {
		return "", fmt.Errorf("parse image reference %q: %w", ref, err)
	}
	opts := []v1remote.Option{v1remote.WithContext(ctx)}
	if platform != nil {
		opts = append(opts, v1remote.WithPlatform(v1.Platform{
			OS:           platform.OS,
			Architecture: platform.Architecture,
			Variant:      platform.Variant,
		}))
	}
	desc, err := v1remote.Head(nameRef, opts...)
	if err != nil {
		return "", fmt.Errorf("resolve digest for %q: %w", ref, err)
	}
	return desc.Digest.String(), nil
}
