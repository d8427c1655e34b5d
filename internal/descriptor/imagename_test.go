package descriptor

import (
	"strings"
	"testing"
)

func TestParseImageName(t *testing.T) {
	cases := []struct {
		in   string
		want ImageName
	}{
		{"alpine", ImageName{Path: "alpine"}},
		{"library/alpine", ImageName{Path: "library/alpine"}},
		{"alpine:3.19", ImageName{Path: "alpine", Tag: "3.19"}},
		{"registry.example.com/app:v1", ImageName{Host: "registry.example.com", Path: "app", Tag: "v1"}},
		{"localhost:5000/app", ImageName{Host: "localhost", Port: 5000, Path: "app"}},
		{"alpine@sha256:" + strings.Repeat("a", 64), ImageName{Path: "alpine", Digest: "sha256:" + strings.Repeat("a", 64)}},
	}
	for _, c := range cases {
		got, err := ParseImageName(c.in)
		if err != nil {
			t.Errorf("ParseImageName(%q): %v", c.in, err)
			continue
		}
		if got != c.want {
			t.Errorf("ParseImageName(%q) = %+v, want %+v", c.in, got, c.want)
		}
	}
}

func TestParseImageNameEmpty(t *testing.T) {
	if _, err := ParseImageName(""); err == nil {
		t.Error("expected error for empty image name")
	}
}

func TestImageNameString(t *testing.T) {
	n := ImageName{Host: "registry.example.com", Port: 5000, Path: "app", Tag: "v1"}
	want := "registry.example.com:5000/app:v1"
	if got := n.String(); got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}

func TestImageNameHasPin(t *testing.T) {
	if (ImageName{Path: "alpine"}).HasPin() {
		t.Error("bare image should not be pinned")
	}
	if !(ImageName{Path: "alpine", Tag: "3.19"}).HasPin() {
		t.Error("tagged image should be pinned")
	}
}
