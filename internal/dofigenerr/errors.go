// Package dofigenerr implements the error taxonomy shared by every stage of
// the model pipeline: parser, patch algebra, extend loader, lock store,
// resolver and emitter all return *Error so a caller can inspect Kind,
// locate the offending source, and print a remediation hint.
package dofigenerr

import "fmt"

// Kind identifies which part of the taxonomy an Error belongs to.
type Kind string

const (
	KindParse           Kind = "ParseError"
	KindInvalidShortcut  Kind = "InvalidShortcut"
	KindSchemaViolation  Kind = "SchemaViolation"
	KindExtendCycle      Kind = "ExtendCycle"
	KindStageCycle       Kind = "StageCycle"
	KindUnknownReference Kind = "UnknownReference"
	KindResource         Kind = "ResourceError"
	KindLockMissing      Kind = "LockMissing"
	KindLockMismatch     Kind = "LockMismatch"
	KindEmit             Kind = "EmitError"
)

// Location pinpoints where an error occurred, when that information is
// available. File is a path or URL; Line/Col are 1-based, 0 when unknown.
type Location struct {
	File string
	Line int
	Col  int
}

func (l *Location) String() string {
	if l == nil || l.File == "" {
		return ""
	}
	if l.Line == 0 {
		return l.File
	}
	if l.Col == 0 {
		return fmt.Sprintf("%s:%d", l.File, l.Line)
	}
	return fmt.Sprintf("%s:%d:%d", l.File, l.Line, l.Col)
}

// Error is the concrete type returned by every component in the pipeline.
type Error struct {
	Kind        Kind
	Location    *Location
	Remediation string
	Message     string
	Cause       error
}

func (e *Error) Error() string {
	loc := e.Location.String()
	msg := e.Message
	if e.Cause != nil {
		if msg == "" {
			msg = e.Cause.Error()
		} else {
			msg = fmt.Sprintf("%s: %s", msg, e.Cause.Error())
		}
	}
	s := string(e.Kind)
	if loc != "" {
		s = fmt.Sprintf("%s at %s", s, loc)
	}
	if msg != "" {
		s = fmt.Sprintf("%s: %s", s, msg)
	}
	if e.Remediation != "" {
		s = fmt.Sprintf("%s (%s)", s, e.Remediation)
	}
	return s
}

func (e *Error) Unwrap() error { return e.Cause }

func newErr(kind Kind, loc *Location, remediation, msg string, cause error) *Error {
	return &Error{Kind: kind, Location: loc, Remediation: remediation, Message: msg, Cause: cause}
}

func Parse(loc *Location, msg string, cause error) *Error {
	return newErr(KindParse, loc, "fix the YAML/JSON syntax", msg, cause)
}

func InvalidShortcut(loc *Location, msg string) *Error {
	return newErr(KindInvalidShortcut, loc, "spell out the full struct form instead of the shortcut", msg, nil)
}

func SchemaViolation(loc *Location, msg string) *Error {
	return newErr(KindSchemaViolation, loc, "check required fields and invariants", msg, nil)
}

func ExtendCycle(chain []string) *Error {
	return newErr(KindExtendCycle, nil, "remove the cyclic extend reference",
		fmt.Sprintf("cycle detected: %s", joinArrow(chain)), nil)
}

func StageCycle(chain []string) *Error {
	return newErr(KindStageCycle, nil, "remove the cyclic fromBuilder reference",
		fmt.Sprintf("cycle detected: %s", joinArrow(chain)), nil)
}

func UnknownReference(loc *Location, msg string) *Error {
	return newErr(KindUnknownReference, loc, "reference a builder declared earlier", msg, nil)
}

func Resource(loc *Location, msg string, cause error) *Error {
	return newErr(KindResource, loc, "check network connectivity and the resource path/URL", msg, cause)
}

func LockMissing(key string) *Error {
	return newErr(KindLockMissing, nil, "run `dofigen update` or drop --locked", fmt.Sprintf("no lock entry for %q", key), nil)
}

func LockMismatch(key string) *Error {
	return newErr(KindLockMismatch, nil, "the pinned content changed upstream; run `dofigen update` to re-pin intentionally", fmt.Sprintf("hash mismatch for %q", key), nil)
}

func Emit(msg string) *Error {
	return newErr(KindEmit, nil, "this should never happen; please file a bug", msg, nil)
}

func joinArrow(chain []string) string {
	s := ""
	for i, c := range chain {
		if i > 0 {
			s += " -> "
		}
		s += c
	}
	return s
}
