package patch

// StrictMode gates whether the single-scalar-becomes-one-element-list
// shortcut is accepted when decoding a VecPatch/VecDeepPatch. Set by
// internal/parse before decoding a document.
var StrictMode bool

// SetStrict turns the shortcut on or off for subsequent UnmarshalYAML
// calls in this package.
func SetStrict(strict bool) {
	StrictMode = strict
}
