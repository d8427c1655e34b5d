// Package iofacade defines the capability interfaces the rest of the
// module uses instead of touching the filesystem or network directly,
// so that the core packages stay deterministic and unit-testable.
package iofacade

import (
	"context"
	"io/fs"

	ocispec "github.com/opencontainers/image-spec/specs-go/v1"
)

// Filesystem is the subset of local filesystem access the tool needs:
// reading descriptor files and writing the generated Dockerfile and
// .dockerignore.
type Filesystem interface {
	ReadFile(path string) ([]byte, error)
	WriteFile(path string, data []byte, perm fs.FileMode) error
	Abs(path string) (string, error)
	Stat(path string) (fs.FileInfo, error)
}

// Fetcher retrieves the content of an extended resource, whether it's a
// local file or an HTTP(S) URL.
type Fetcher interface {
	FetchFile(path string) (string, error)
	FetchURL(ctx context.Context, url string) (string, error)
}

// RegistryClient resolves the current digest of a tagged image
// reference, consulted by the lock store when (re-)pinning images.
// Production implementations back this with
// github.com/google/go-containerregistry's remote.Head so that the rest
// of the module never imports registry transport code directly.
type RegistryClient interface {
	ResolveDigest(ctx context.Context, ref string, platform *ocispec.Platform) (digest string, err error)
}
