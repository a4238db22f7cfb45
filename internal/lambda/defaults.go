// Package lambda provides the build-configuration defaults for targeting the
// AWS Lambda Node runtime from an esbuild library build.
package lambda

// Format identifies an output module format (e.g. "es", "cjs").
type Format string

const (
	FormatES     Format = "es"
	FormatESM    Format = "esm"
	FormatModule Format = "module"
	FormatCJS    Format = "cjs"
)

// IsModule reports whether the format produces an ECMAScript module.
func (f Format) IsModule() bool {
	return f == FormatES || f == FormatESM || f == FormatModule
}

// FileNamer maps an output format and entry base name to an output filename.
type FileNamer func(format Format, base string) string

// ExternalPredicate classifies a module specifier as external (left for the
// runtime to resolve) or internal (bundled).
type ExternalPredicate func(specifier string) bool

// LibrarySpec describes a library build: its entry points, target module
// formats, output filename rule, and external-module classification.
// Zero-value fields are filled in by ApplyDefaults.
type LibrarySpec struct {
	// Entry is the list of entry point paths. Must be non-empty before the
	// spec is handed to the bundler; ApplyDefaults does not validate it.
	Entry []string

	// Formats lists the output module formats. Defaults to ["es"].
	Formats []Format

	// FileName generates the output filename for a (format, base) pair.
	// Defaults to DefaultFileName.
	FileName FileNamer

	// External classifies module specifiers as external. Defaults to an
	// exact-match lookup against the Node built-in module registry.
	External ExternalPredicate
}

// ApplyDefaults returns a copy of spec with every unset field replaced by its
// Lambda-friendly default. Fields the caller set are preserved verbatim; the
// merge is shallow per field, so a caller-provided Formats slice is never
// modified or extended. The input spec is not mutated.
func ApplyDefaults(spec LibrarySpec) LibrarySpec {
	out := spec
	if out.Formats == nil {
		out.Formats = []Format{FormatES}
	}
	if out.FileName == nil {
		out.FileName = DefaultFileName
	}
	if out.External == nil {
		out.External = NodeBuiltinExternal(Builtins())
	}
	return out
}

// DefaultFileName appends ".mjs" for ECMAScript module formats and ".js" for
// everything else.
func DefaultFileName(format Format, base string) string {
	if format.IsModule() {
		return base + ".mjs"
	}
	return base + ".js"
}

// NodeBuiltinExternal returns a predicate that classifies a specifier as
// external when it is an exact member of table. No prefix or fuzzy matching
// is applied.
func NodeBuiltinExternal(table map[string]struct{}) ExternalPredicate {
	return func(specifier string) bool {
		_, ok := table[specifier]
		return ok
	}
}
