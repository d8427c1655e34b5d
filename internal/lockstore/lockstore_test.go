package lockstore

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	ocispec "github.com/opencontainers/image-spec/specs-go/v1"

	"github.com/dofigen/dofigen-go/internal/descriptor"
	"github.com/dofigen/dofigen-go/internal/dofigenerr"
)

type fakeRegistry struct {
	digest string
	err    error
	calls  int
}

func (f *fakeRegistry) ResolveDigest(ctx context.Context, ref string, platform *ocispec.Platform) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return f.digest, nil
}

func TestPinDigest_UnlockedFetchesAndRecords(t *testing.T) {
	reg := &fakeRegistry{digest: "sha256:abc"}
	s, err := Load(filepath.Join(t.TempDir(), "dofigen.lock"), Unlocked, reg)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	img, _ := descriptor.ParseImageName("alpine:3.19")
	got, err := s.PinDigest(context.Background(), img)
	if err != nil {
		t.Fatalf("pin: %v", err)
	}
	if got != "sha256:abc" {
		t.Errorf("digest = %q, want sha256:abc", got)
	}
	if reg.calls != 1 {
		t.Errorf("registry called %d times, want 1", reg.calls)
	}
	if !s.dirty {
		t.Error("expected store to be marked dirty after recording a new pin")
	}
}

func TestPinDigest_LockedMissingErrors(t *testing.T) {
	s, err := Load(filepath.Join(t.TempDir(), "dofigen.lock"), Locked, nil)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	img, _ := descriptor.ParseImageName("alpine:3.19")
	_, err = s.PinDigest(context.Background(), img)
	var derr *dofigenerr.Error
	if !errors.As(err, &derr) || derr.Kind != dofigenerr.KindLockMissing {
		t.Fatalf("expected LockMissing, got %v", err)
	}
}

func TestPinDigest_LockedReturnsRecorded(t *testing.T) {
	s, err := Load(filepath.Join(t.TempDir(), "dofigen.lock"), Locked, nil)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	img, _ := descriptor.ParseImageName("alpine:3.19")
	s.file.Images[imageKey(img)] = "sha256:recorded"
	got, err := s.PinDigest(context.Background(), img)
	if err != nil {
		t.Fatalf("pin: %v", err)
	}
	if got != "sha256:recorded" {
		t.Errorf("digest = %q, want sha256:recorded", got)
	}
}

func TestPinDigest_OfflineNeverCallsRegistry(t *testing.T) {
	reg := &fakeRegistry{digest: "sha256:shouldnotbecalled"}
	s, err := Load(filepath.Join(t.TempDir(), "dofigen.lock"), Offline, reg)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	img, _ := descriptor.ParseImageName("alpine:3.19")
	_, err = s.PinDigest(context.Background(), img)
	if err == nil {
		t.Fatal("expected an error for an unrecorded pin in offline mode")
	}
	if reg.calls != 0 {
		t.Errorf("registry called %d times in offline mode, want 0", reg.calls)
	}
}

func TestPinDigest_AlreadyPinnedSkipsLock(t *testing.T) {
	s, err := Load(filepath.Join(t.TempDir(), "dofigen.lock"), Locked, nil)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	img := descriptor.ImageName{Path: "alpine", Digest: "sha256:already"}
	got, err := s.PinDigest(context.Background(), img)
	if err != nil {
		t.Fatalf("pin: %v", err)
	}
	if got != "sha256:already" {
		t.Errorf("digest = %q, want sha256:already", got)
	}
}

// tampering with served bytes while locked produces LockMismatch.
func TestRecordResourceHash_MismatchInLockedMode(t *testing.T) {
	s, err := Load(filepath.Join(t.TempDir(), "dofigen.lock"), Unlocked, nil)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	const key = "https://x/base.yml"
	if err := s.RecordResourceHash(key, "original content"); err != nil {
		t.Fatalf("initial record: %v", err)
	}

	locked, err := Load(filepath.Join(t.TempDir(), "dofigen.lock"), Locked, nil)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	locked.file.Resources[key] = s.file.Resources[key]

	err = locked.RecordResourceHash(key, "tampered content")
	var derr *dofigenerr.Error
	if !errors.As(err, &derr) || derr.Kind != dofigenerr.KindLockMismatch {
		t.Fatalf("expected LockMismatch, got %v", err)
	}
}

func TestRecordResourceHash_UnlockedRefreshes(t *testing.T) {
	s, err := Load(filepath.Join(t.TempDir(), "dofigen.lock"), Unlocked, nil)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	const key = "https://x/base.yml"
	if err := s.RecordResourceHash(key, "v1"); err != nil {
		t.Fatalf("record v1: %v", err)
	}
	if err := s.RecordResourceHash(key, "v2"); err != nil {
		t.Fatalf("record v2 should not error in unlocked mode: %v", err)
	}
}

func TestSaveWritesAtomically(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "dofigen.lock")
	s, err := Load(path, Unlocked, nil)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if err := s.RecordResourceHash("k", "v"); err != nil {
		t.Fatalf("record: %v", err)
	}
	if err := s.Save(); err != nil {
		t.Fatalf("save: %v", err)
	}

	reloaded, err := Load(path, Locked, nil)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if _, ok := reloaded.file.Resources["k"]; !ok {
		t.Error("expected saved resource hash to survive reload")
	}
}
