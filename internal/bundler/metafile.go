package bundler

// Metafile mirrors the esbuild metafile JSON structure.
type Metafile struct {
	Inputs  map[string]MetafileInput  `json:"inputs"`
	Outputs map[string]MetafileOutput `json:"outputs"`
}

// MetafileInput describes one input file seen by the bundler.
type MetafileInput struct {
	Bytes   int              `json:"bytes"`
	Imports []MetafileImport `json:"imports"`
	Format  string           `json:"format,omitempty"`
}

// MetafileImport describes one import edge in the module graph.
type MetafileImport struct {
	Path     string `json:"path"`
	Kind     string `json:"kind"`
	External bool   `json:"external,omitempty"`
	Original string `json:"original,omitempty"`
}

// MetafileOutput describes one output file and the inputs that contributed
// to it.
type MetafileOutput struct {
	Bytes      int                     `json:"bytes"`
	Inputs     map[string]InputContrib `json:"inputs"`
	Imports    []MetafileImport        `json:"imports"`
	Exports    []string                `json:"exports"`
	EntryPoint string                  `json:"entryPoint,omitempty"`
}

// InputContrib is the byte contribution of an input to an output.
type InputContrib struct {
	BytesInOutput int `json:"bytesInOutput"`
}

// AnalysisResult summarizes a bundle: its total size, the inputs that make it
// up, and the imports left external for the runtime.
type AnalysisResult struct {
	TotalBytes      int
	InputFiles      []FileAnalysis
	ExternalImports []string
}

// FileAnalysis summarizes one input file's contribution to the bundle.
type FileAnalysis struct {
	Path          string
	Bytes         int
	BytesInOutput int
	Percentage    float64
	ImportCount   int
}
