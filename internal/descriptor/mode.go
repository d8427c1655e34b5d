package descriptor

import "github.com/dofigen/dofigen-go/internal/dofigenerr"

// strictMode gates whether the permissive shortcut forms documented on
// each *Patch type's UnmarshalYAML are accepted. Set by internal/parse
// before decoding a document and left at its default (permissive)
// otherwise; a single descriptor decode runs to completion before any
// concurrent work starts, so this is not meant to be toggled from
// multiple goroutines at once.
var strictMode bool

// SetStrict turns permissive shortcut forms on or off for subsequent
// UnmarshalYAML calls in this package. internal/parse is the only
// intended caller.
func SetStrict(strict bool) {
	strictMode = strict
}

func rejectShortcut(what string) error {
	return dofigenerr.InvalidShortcut(nil, what+" shortcut form is disabled in strict mode")
}
