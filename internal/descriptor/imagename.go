package descriptor

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/distribution/reference"
	ocispec "github.com/opencontainers/image-spec/specs-go/v1"
	"gopkg.in/yaml.v3"
)

// ImageName is the resolved form of a container image reference:
// [host[:port]/]path[:tag|@digest][ platform].
type ImageName struct {
	Host     string
	Port     int
	Path     string
	Tag      string
	Digest   string
	Platform *ocispec.Platform
}

// String renders the canonical textual form path[:tag][@digest], qualified
// with host/port when present. It does not include the platform, which the
// emitter renders separately as a --platform flag.
func (n ImageName) String() string {
	var b strings.Builder
	if n.Host != "" {
		b.WriteString(n.Host)
		if n.Port != 0 {
			b.WriteString(":")
			b.WriteString(strconv.Itoa(n.Port))
		}
		b.WriteString("/")
	}
	b.WriteString(n.Path)
	if n.Tag != "" {
		b.WriteString(":")
		b.WriteString(n.Tag)
	}
	if n.Digest != "" {
		b.WriteString("@")
		b.WriteString(n.Digest)
	}
	return b.String()
}

// HasPin reports whether the reference names a specific tag or digest.
// The resolver still consults the lock store for a tag-only reference, to
// pin it to a digest.
func (n ImageName) HasPin() bool {
	return n.Tag != "" || n.Digest != ""
}

// ImageNamePatch is the patch form of ImageName: every field optional.
type ImageNamePatch struct {
	Host     *string
	Port     *int
	Path     *string
	Tag      *string
	Digest   *string
	Platform *string
}

// Apply folds the patch into base.
func (p ImageNamePatch) Apply(base ImageName) (ImageName, error) {
	out := base
	if p.Host != nil {
		out.Host = *p.Host
	}
	if p.Port != nil {
		out.Port = *p.Port
	}
	if p.Path != nil {
		out.Path = *p.Path
	}
	if p.Tag != nil {
		out.Tag = *p.Tag
		out.Digest = ""
	}
	if p.Digest != nil {
		out.Digest = *p.Digest
		out.Tag = ""
	}
	if p.Platform != nil {
		plat, err := ParsePlatform(*p.Platform)
		if err != nil {
			return out, err
		}
		out.Platform = plat
	}
	return out, nil
}

// UnmarshalYAML accepts either the bare textual shortcut
// "[host[:port]/]path[:tag|@digest]" or the full struct form
// {host,port,path,tag,digest,platform}.
func (p *ImageNamePatch) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		if strictMode {
			return rejectShortcut("image reference")
		}
		parsed, err := ParseImageName(node.Value)
		if err != nil {
			return err
		}
		p.Host = strPtr(parsed.Host)
		if parsed.Port != 0 {
			p.Port = intPtr(parsed.Port)
		}
		p.Path = strPtr(parsed.Path)
		if parsed.Tag != "" {
			p.Tag = strPtr(parsed.Tag)
		}
		if parsed.Digest != "" {
			p.Digest = strPtr(parsed.Digest)
		}
		return nil
	}
	type raw struct {
		Host     *string `yaml:"host"`
		Port     *int    `yaml:"port"`
		Path     *string `yaml:"path"`
		Tag      *string `yaml:"tag"`
		Digest   *string `yaml:"digest"`
		Platform *string `yaml:"platform"`
	}
	var r raw
	if err := node.Decode(&r); err != nil {
		return err
	}
	p.Host, p.Port, p.Path, p.Tag, p.Digest, p.Platform = r.Host, r.Port, r.Path, r.Tag, r.Digest, r.Platform
	return nil
}

// ParseImageName parses the textual grammar
// "[host[:port]/]path[:tag|@digest]" via the reference grammar, without
// applying its docker.io/library normalization: a bare "alpine" stays
// host-less rather than becoming "docker.io/library/alpine:latest", since
// the resolver (not the parser) decides what an unqualified reference
// defaults to.
func ParseImageName(s string) (ImageName, error) {
	if s == "" {
		return ImageName{}, fmt.Errorf("image name: empty string")
	}

	ref, err := reference.Parse(s)
	if err != nil {
		return ImageName{}, fmt.Errorf("image name %q: %w", s, err)
	}
	named, ok := ref.(reference.Named)
	if !ok {
		return ImageName{}, fmt.Errorf("image name %q: missing path", s)
	}

	host := reference.Domain(named)
	path := reference.Path(named)
	// The reference grammar reads any first component as a domain; only
	// one that looks like a host (contains "." or ":", or is "localhost")
	// is kept as Host, otherwise it stays part of the path.
	if host != "" && host != "localhost" && !strings.ContainsAny(host, ".:") {
		path = host + "/" + path
		host = ""
	}
	port := 0
	if c := strings.LastIndex(host, ":"); c >= 0 {
		p, err := strconv.Atoi(host[c+1:])
		if err != nil {
			return ImageName{}, fmt.Errorf("image name %q: invalid port: %w", s, err)
		}
		port = p
		host = host[:c]
	}

	var tag, digest string
	if tagged, ok := ref.(reference.Tagged); ok {
		tag = tagged.Tag()
	}
	if digested, ok := ref.(reference.Digested); ok {
		digest = digested.Digest().String()
	}

	return ImageName{Host: host, Port: port, Path: path, Tag: tag, Digest: digest}, nil
}

// ParsePlatform parses a "os/arch[/variant]" platform string.
func ParsePlatform(s string) (*ocispec.Platform, error) {
	parts := strings.Split(s, "/")
	if len(parts) < 2 || len(parts) > 3 {
		return nil, fmt.Errorf("platform %q: expected os/arch[/variant]", s)
	}
	p := &ocispec.Platform{OS: parts[0], Architecture: parts[1]}
	if len(parts) == 3 {
		p.Variant = parts[2]
	}
	return p, nil
}

func strPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func intPtr(i int) *int {
	if i == 0 {
		return nil
	}
	return &i
}
