package bundler

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
)

// Analyze parses an esbuild metafile and summarizes the bundle contents.
// baseDir, when non-empty, is stripped from input paths for display.
func Analyze(metafile string, baseDir string) (*AnalysisResult, error) {
	var meta Metafile
	if err := json.Unmarshal([]byte(metafile), &meta); err != nil {
		return nil, fmt.Errorf("parse metafile: %w", err)
	}

	result := &AnalysisResult{}
	seenExternal := make(map[string]struct{})
	contribs := make(map[string]int)

	for _, output := range meta.Outputs {
		result.TotalBytes += output.Bytes

		for _, imp := range output.Imports {
			if imp.External {
				seenExternal[imp.Path] = struct{}{}
			}
		}
		for inputPath, contrib := range output.Inputs {
			contribs[inputPath] += contrib.BytesInOutput
		}
	}

	for inputPath, bytesInOutput := range contribs {
		info, ok := meta.Inputs[inputPath]
		if !ok {
			continue
		}
		percentage := 0.0
		if result.TotalBytes > 0 {
			percentage = float64(bytesInOutput) / float64(result.TotalBytes) * 100
		}
		result.InputFiles = append(result.InputFiles, FileAnalysis{
			Path:          displayPath(inputPath, baseDir),
			Bytes:         info.Bytes,
			BytesInOutput: bytesInOutput,
			Percentage:    percentage,
			ImportCount:   len(info.Imports),
		})
	}

	// Largest contributors first; ties broken by path for stable output.
	sort.Slice(result.InputFiles, func(i, j int) bool {
		if result.InputFiles[i].BytesInOutput != result.InputFiles[j].BytesInOutput {
			return result.InputFiles[i].BytesInOutput > result.InputFiles[j].BytesInOutput
		}
		return result.InputFiles[i].Path < result.InputFiles[j].Path
	})

	for path := range seenExternal {
		result.ExternalImports = append(result.ExternalImports, path)
	}
	sort.Strings(result.ExternalImports)

	return result, nil
}

func displayPath(inputPath, baseDir string) string {
	if baseDir == "" {
		return inputPath
	}
	base := filepath.ToSlash(baseDir)
	p := strings.TrimPrefix(filepath.ToSlash(inputPath), base)
	return strings.TrimPrefix(p, "/")
}
