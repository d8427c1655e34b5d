package descriptor

import (
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// User is the resolved form of a USER directive: a user, optionally
// qualified by a group, either of which may be a name or a numeric id.
type User struct {
	User  string
	Group string
}

// String renders "user" or "user:group".
func (u User) String() string {
	if u.Group == "" {
		return u.User
	}
	return u.User + ":" + u.Group
}

// UserPatch is the patch form of User.
type UserPatch struct {
	User  *string
	Group *string
}

// Apply folds the patch into base.
func (p UserPatch) Apply(base User) User {
	out := base
	if p.User != nil {
		out.User = *p.User
	}
	if p.Group != nil {
		out.Group = *p.Group
	}
	return out
}

// UnmarshalYAML accepts the bare "user" or "user:group" shortcut as well as
// the full struct form {user, group}.
func (p *UserPatch) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		if strictMode {
			return rejectShortcut("user")
		}
		user, group := ParseUser(node.Value)
		p.User = &user
		if group != "" {
			p.Group = &group
		}
		return nil
	}
	type raw struct {
		User  *string `yaml:"user"`
		Group *string `yaml:"group"`
	}
	var r raw
	if err := node.Decode(&r); err != nil {
		return err
	}
	p.User, p.Group = r.User, r.Group
	return nil
}

// ParseUser splits "user[:group]".
func ParseUser(s string) (user, group string) {
	if idx := strings.Index(s, ":"); idx >= 0 {
		return s[:idx], s[idx+1:]
	}
	return s, ""
}

// IsNumeric reports whether s is entirely decimal digits, used by the
// emitter and validator to decide whether a USER value needs no further
// existence checks against an /etc/passwd the builder can't see anyway.
func IsNumeric(s string) bool {
	if s == "" {
		return false
	}
	_, err := strconv.Atoi(s)
	return err == nil
}
