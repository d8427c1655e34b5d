// Package lockstore implements the content-addressed lock file: a record
// of the exact image digests and extended-resource hashes a descriptor
// resolved to, so that repeated builds are reproducible until the user
// explicitly asks to re-pin. Keyed more simply than a nested nested-map
// shape would be: one string key per fully-qualified image reference,
// which is easier to diff in source control.
package lockstore

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	digest "github.com/opencontainers/go-digest"
	"gopkg.in/yaml.v3"

	"github.com/dofigen/dofigen-go/internal/descriptor"
	"github.com/dofigen/dofigen-go/internal/dofigenerr"
	"github.com/dofigen/dofigen-go/internal/iofacade"
)

// Policy controls how the store behaves when a pin is requested but not
// already recorded.
type Policy int

const (
	// Unlocked resolves missing pins over the network and records them.
	Unlocked Policy = iota
	// Locked requires every pin to already be recorded; missing entries
	// are an error. Used for CI builds that must reproduce exactly.
	Locked
	// Offline behaves like Locked: PinDigest never calls the registry,
	// and the CLI opens an Offline store with no registry client at all.
	Offline
)

const (
	defaultRegistryHost = "registry-1.docker.io"
	defaultNamespace    = "library"
	defaultTag          = "latest"
)

// File is the on-disk lock file shape.
type File struct {
	// Images maps a canonicalized image reference (with its tag, without a
	// digest; see imageKey) to the digest it was last resolved to,
	// e.g. "registry-1.docker.io/library/golang:1.22" -> "sha256:...".
	Images map[string]string `yaml:"images"`
	// Resources maps an extend resource's identity (its resolved URL or
	// path) to a content digest, so that a later build can detect the
	// remote content changed out from under it.
	Resources map[string]string `yaml:"resources"`
}

// Store loads, queries and persists a lock File. Safe for concurrent use
// by PinDigest/RecordResourceHash, since `dofigen update` re-pins many
// images through a single Store from a bounded worker pool.
type Store struct {
	mu       sync.Mutex
	path     string
	file     File
	policy   Policy
	registry iofacade.RegistryClient
	dirty    bool
}

// Load reads the lock file at path, or starts an empty one if it doesn't
// exist yet.
func Load(path string, policy Policy, registry iofacade.RegistryClient) (*Store, error) {
	s := &Store{
		path:     path,
		policy:   policy,
		registry: registry,
		file:     File{Images: map[string]string{}, Resources: map[string]string{}},
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return nil, fmt.Errorf("read lock file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &s.file); err != nil {
		return nil, fmt.Errorf("parse lock file %s: %w", path, err)
	}
	if s.file.Images == nil {
		s.file.Images = map[string]string{}
	}
	if s.file.Resources == nil {
		s.file.Resources = map[string]string{}
	}
	return s, nil
}

// Save writes the lock file back to disk atomically (write to a temp
// file in the same directory, then rename), so a crash mid-write never
// leaves a truncated lock file behind.
func (s *Store) Save() error {
	s.mu.Lock()
	if !s.dirty {
		s.mu.Unlock()
		return nil
	}
	data, err := yaml.Marshal(s.file)
	s.mu.Unlock()
	if err != nil {
		return fmt.Errorf("marshal lock file: %w", err)
	}
	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, ".dofigen-lock-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp lock file: %w", err)
	}
	tmpPath := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("write temp lock file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("close temp lock file: %w", err)
	}
	if err := os.Rename(tmpPath, s.path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("rename temp lock file into place: %w", err)
	}
	return nil
}

// imageKey canonicalizes the host/port/path/tag portion of an image
// reference (everything but a digest, which is the thing being resolved)
// into the lock file's map key, filling in the registry defaults the way
// Docker Hub references normally do.
func imageKey(n descriptor.ImageName) string {
	host := n.Host
	if host == "" {
		host = defaultRegistryHost
	}
	path := n.Path
	if host == defaultRegistryHost && !containsSlash(path) {
		path = defaultNamespace + "/" + path
	}
	tag := n.Tag
	if tag == "" {
		tag = defaultTag
	}
	if n.Port != 0 {
		return fmt.Sprintf("%s:%d/%s:%s", host, n.Port, path, tag)
	}
	return fmt.Sprintf("%s/%s:%s", host, path, tag)
}

func containsSlash(s string) bool {
	for _, r := range s {
		if r == '/' {
			return true
		}
	}
	return false
}

// PinDigest resolves the digest for n, consulting or updating the lock
// file according to the store's policy. If n is already digest-pinned it
// is returned unchanged without touching the lock file at all.
func (s *Store) PinDigest(ctx context.Context, n descriptor.ImageName) (string, error) {
	if n.Digest != "" {
		return n.Digest, nil
	}
	key := imageKey(n)

	s.mu.Lock()
	existing, ok := s.file.Images[key]
	policy := s.policy
	registry := s.registry
	s.mu.Unlock()

	switch policy {
	case Locked, Offline:
		if !ok {
			return "", dofigenerr.LockMissing(key)
		}
		return existing, nil
	default: // Unlocked
		if registry == nil {
			if ok {
				return existing, nil
			}
			return "", dofigenerr.LockMissing(key)
		}
		// Network call happens outside the lock so concurrent PinDigest
		// calls for different images can resolve in parallel.
		resolved, err := registry.ResolveDigest(ctx, n.String(), n.Platform)
		if err != nil {
			if ok {
				return existing, nil
			}
			return "", dofigenerr.Resource(nil, fmt.Sprintf("resolving digest for %s", key), err)
		}
		s.mu.Lock()
		s.file.Images[key] = resolved
		s.dirty = true
		s.mu.Unlock()
		return resolved, nil
	}
}

// RecordResourceHash stores (or, in Unlocked mode, refreshes) the content
// digest for an extend resource, and in Locked/Offline mode verifies the
// freshly fetched content still matches what was previously recorded.
func (s *Store) RecordResourceHash(resourceKey, content string) error {
	sum := digest.FromString(content).String()

	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.file.Resources[resourceKey]
	if ok && existing != sum && s.policy != Unlocked {
		return dofigenerr.LockMismatch(resourceKey)
	}
	if !ok || s.policy == Unlocked {
		s.file.Resources[resourceKey] = sum
		s.dirty = true
	}
	return nil
}
