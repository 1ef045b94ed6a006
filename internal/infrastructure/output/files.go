package output

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"NewsBriefing/internal/domain"
	"NewsBriefing/internal/ports"
)

// Format selects which artifacts FileWriter produces.
type Format string

const (
	FormatMarkdown Format = "markdown"
	FormatJSON     Format = "json"
	FormatBoth     Format = "both"
)

// ParseFormat validates a format name; empty means both.
func ParseFormat(s string) (Format, error) {
	switch f := Format(s); f {
	case "":
		return FormatBoth, nil
	case FormatMarkdown, FormatJSON, FormatBoth:
		return f, nil
	default:
		return "", fmt.Errorf("unknown output format %q", s)
	}
}

// FileWriter stores <dir>/<date>.md and <dir>/runs/<date>.json.
type FileWriter struct {
	dir    string
	format Format
}

var _ ports.ArtifactWriter = (*FileWriter)(nil)

// NewFileWriter returns a writer rooted at dir.
func NewFileWriter(dir string, format Format) *FileWriter {
	if format == "" {
		format = FormatBoth
	}
	return &FileWriter{dir: dir, format: format}
}

// Write persists the artifacts. Paths of skipped formats are empty.
func (w *FileWriter) Write(ctx context.Context, brief domain.DailyBrief, text string) (string, string, error) {
	if err := ctx.Err(); err != nil {
		return "", "", err
	}

	var textPath, jsonPath string
	if w.format != FormatJSON {
		textPath = filepath.Join(w.dir, brief.ReportDate+".md")
		if err := writeFile(textPath, []byte(text)); err != nil {
			return "", "", fmt.Errorf("write markdown: %w", err)
		}
	}
	if w.format != FormatMarkdown {
		raw, err := json.MarshalIndent(brief, "", "  ")
		if err != nil {
			return "", "", fmt.Errorf("encode brief: %w", err)
		}
		jsonPath = filepath.Join(w.dir, "runs", brief.ReportDate+".json")
		if err := writeFile(jsonPath, raw); err != nil {
			return "", "", fmt.Errorf("write json: %w", err)
		}
	}
	return textPath, jsonPath, nil
}

// writeFile replaces path through a sibling temp file.
func writeFile(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), path)
}
