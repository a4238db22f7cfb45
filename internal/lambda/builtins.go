package lambda

// nodeBuiltins lists the bare names of the Node runtime's built-in modules,
// including the subpath modules Node exposes (fs/promises etc.). The registry
// returned by Builtins also contains the "node:"-prefixed form of each name.
var nodeBuiltins = []string{
	"assert",
	"assert/strict",
	"async_hooks",
	"buffer",
	"child_process",
	"cluster",
	"console",
	"constants",
	"crypto",
	"dgram",
	"diagnostics_channel",
	"dns",
	"dns/promises",
	"domain",
	"events",
	"fs",
	"fs/promises",
	"http",
	"http2",
	"https",
	"inspector",
	"inspector/promises",
	"module",
	"net",
	"os",
	"path",
	"path/posix",
	"path/win32",
	"perf_hooks",
	"process",
	"punycode",
	"querystring",
	"readline",
	"readline/promises",
	"repl",
	"stream",
	"stream/consumers",
	"stream/promises",
	"stream/web",
	"string_decoder",
	"sys",
	"timers",
	"timers/promises",
	"tls",
	"trace_events",
	"tty",
	"url",
	"util",
	"util/types",
	"v8",
	"vm",
	"wasi",
	"worker_threads",
	"zlib",
}

// Builtins returns the default Node built-in module registry: a set keyed by
// exact module specifier, covering both the bare name ("fs") and the
// protocol-prefixed name ("node:fs"). Callers may substitute their own table
// to target a different runtime.
func Builtins() map[string]struct{} {
	table := make(map[string]struct{}, 2*len(nodeBuiltins))
	for _, name := range nodeBuiltins {
		table[name] = struct{}{}
		table["node:"+name] = struct{}{}
	}
	return table
}
