package bundler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleMetafile = `{
  "inputs": {
    "src/index.ts": {
      "bytes": 400,
      "imports": [
        {"path": "src/util.ts", "kind": "import-statement"},
        {"path": "node:crypto", "kind": "import-statement", "external": true}
      ]
    },
    "src/util.ts": {
      "bytes": 100,
      "imports": []
    }
  },
  "outputs": {
    "dist/index.mjs": {
      "bytes": 500,
      "inputs": {
        "src/index.ts": {"bytesInOutput": 350},
        "src/util.ts": {"bytesInOutput": 150}
      },
      "imports": [
        {"path": "node:crypto", "kind": "import-statement", "external": true}
      ],
      "exports": ["handler"],
      "entryPoint": "src/index.ts"
    }
  }
}`

func TestAnalyze(t *testing.T) {
	result, err := Analyze(sampleMetafile, "")
	require.NoError(t, err)

	assert.Equal(t, 500, result.TotalBytes)
	require.Len(t, result.InputFiles, 2)

	// Largest contributor first.
	assert.Equal(t, "src/index.ts", result.InputFiles[0].Path)
	assert.Equal(t, 350, result.InputFiles[0].BytesInOutput)
	assert.InDelta(t, 70.0, result.InputFiles[0].Percentage, 0.01)
	assert.Equal(t, 2, result.InputFiles[0].ImportCount)

	assert.Equal(t, "src/util.ts", result.InputFiles[1].Path)
	assert.Equal(t, 150, result.InputFiles[1].BytesInOutput)

	assert.Equal(t, []string{"node:crypto"}, result.ExternalImports)
}

func TestAnalyzeStripsBaseDir(t *testing.T) {
	meta := `{
  "inputs": {"/work/src/index.ts": {"bytes": 10, "imports": []}},
  "outputs": {"/work/dist/index.mjs": {"bytes": 10, "inputs": {"/work/src/index.ts": {"bytesInOutput": 10}}, "imports": [], "exports": []}}
}`
	result, err := Analyze(meta, "/work")
	require.NoError(t, err)
	require.Len(t, result.InputFiles, 1)
	assert.Equal(t, "src/index.ts", result.InputFiles[0].Path)
}

func TestAnalyzeInvalidJSON(t *testing.T) {
	_, err := Analyze("{not json", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse metafile")
}
