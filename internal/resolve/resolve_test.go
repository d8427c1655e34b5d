package resolve

import (
	"context"
	"testing"

	"github.com/dofigen/dofigen-go/internal/descriptor"
)

func TestApplyStageDefaults_SetsDefaultUser(t *testing.T) {
	img, _ := descriptor.ParseImageName("alpine")
	s := applyStageDefaults(descriptor.Stage{From: descriptor.FromContext{Kind: descriptor.FromImage, Image: img}})
	if s.User == nil || s.User.User != defaultUser {
		t.Errorf("expected default user %q, got %+v", defaultUser, s.User)
	}
}

func TestApplyStageDefaults_ScratchHasNoUser(t *testing.T) {
	scratch, _ := descriptor.ParseImageName("scratch")
	s := applyStageDefaults(descriptor.Stage{From: descriptor.FromContext{Kind: descriptor.FromImage, Image: scratch}})
	if s.User != nil {
		t.Errorf("expected no default user for scratch, got %+v", s.User)
	}
}

func TestApplyStageDefaults_HealthcheckTiming(t *testing.T) {
	s := descriptor.Stage{Healthcheck: &descriptor.Healthcheck{Cmd: "curl -f http://localhost/"}}
	out := applyStageDefaults(s)
	if out.Healthcheck.Interval != defaultHealthInterval {
		t.Errorf("interval = %q, want %q", out.Healthcheck.Interval, defaultHealthInterval)
	}
	if out.Healthcheck.Retries != defaultHealthRetries {
		t.Errorf("retries = %d, want %d", out.Healthcheck.Retries, defaultHealthRetries)
	}
}

func TestResolve_BuildersBeforeRoot(t *testing.T) {
	rustImg, _ := descriptor.ParseImageName("rust:1.80")
	debianImg, _ := descriptor.ParseImageName("debian:bookworm-slim")
	d := descriptor.Descriptor{
		Builders: descriptor.Builders{
			{Name: "b", Stage: descriptor.Stage{From: descriptor.FromContext{Kind: descriptor.FromImage, Image: rustImg}}},
		},
		Stage: descriptor.Stage{
			From: descriptor.FromContext{Kind: descriptor.FromImage, Image: debianImg},
			Copy: []descriptor.CopyResource{{Kind: descriptor.CopyKindCopy, Copy: &descriptor.Copy{
				From:  descriptor.FromContext{Kind: descriptor.FromBuilder, BuilderName: "b"},
				Paths: []string{"/src/target/release/app"},
				CopyCommon: descriptor.CopyCommon{Target: "/bin/app"},
			}}},
		},
	}
	ir, err := Resolve(context.Background(), d, nil)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if len(ir.Stages) != 1 || ir.Stages[0].Name != "b" {
		t.Fatalf("unexpected stages: %+v", ir.Stages)
	}
	if ir.Root.From.Image.Path != "debian" {
		t.Errorf("unexpected root from: %+v", ir.Root.From)
	}
}

func TestResolve_DuplicateBuilderNameFails(t *testing.T) {
	d := descriptor.Descriptor{
		Builders: descriptor.Builders{
			{Name: "dup", Stage: descriptor.Stage{}},
			{Name: "dup", Stage: descriptor.Stage{}},
		},
	}
	if _, err := Resolve(context.Background(), d, nil); err == nil {
		t.Fatal("expected an error for duplicate builder names")
	}
}

func TestComputeGlobalArgs_CapturesImplicitRunArgs(t *testing.T) {
	s := descriptor.Stage{Run: descriptor.Run{Commands: []string{"echo $TARGETPLATFORM"}}}
	got := computeGlobalArgs(descriptor.Descriptor{}, nil, s)
	if _, ok := got["TARGETPLATFORM"]; !ok {
		t.Errorf("expected TARGETPLATFORM captured, got %v", got)
	}
}
