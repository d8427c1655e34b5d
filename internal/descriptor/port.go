package descriptor

import (
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Port is a resolved EXPOSE entry: a port number and its protocol, which
// defaults to tcp when not given.
type Port struct {
	Port     uint16
	Protocol string
}

// String renders "port/protocol".
func (p Port) String() string {
	proto := p.Protocol
	if proto == "" {
		proto = "tcp"
	}
	return fmt.Sprintf("%d/%s", p.Port, proto)
}

// PortPatch is the patch form of Port.
type PortPatch struct {
	Port     *uint16
	Protocol *string
}

// Apply folds the patch into base.
func (p PortPatch) Apply(base Port) Port {
	out := base
	if p.Port != nil {
		out.Port = *p.Port
	}
	if p.Protocol != nil {
		out.Protocol = *p.Protocol
	}
	return out
}

// UnmarshalYAML accepts the bare "8080", "8080/udp" scalar shortcut, an
// integer scalar, or the full struct form {port, protocol}.
func (p *PortPatch) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		if strictMode {
			return rejectShortcut("port")
		}
		port, protocol, err := ParsePort(node.Value)
		if err != nil {
			return err
		}
		p.Port = &port
		if protocol != "" {
			p.Protocol = &protocol
		}
		return nil
	}
	type raw struct {
		Port     *uint16 `yaml:"port"`
		Protocol *string `yaml:"protocol"`
	}
	var r raw
	if err := node.Decode(&r); err != nil {
		return err
	}
	p.Port, p.Protocol = r.Port, r.Protocol
	return nil
}

// ParsePort parses "port[/protocol]".
func ParsePort(s string) (port uint16, protocol string, err error) {
	numeric := s
	if idx := strings.Index(s, "/"); idx >= 0 {
		numeric = s[:idx]
		protocol = s[idx+1:]
	}
	n, err := strconv.ParseUint(numeric, 10, 16)
	if err != nil {
		return 0, "", fmt.Errorf("port %q: %w", s, err)
	}
	return uint16(n), protocol, nil
}
