package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	deperrors "github.com/matzehuels/deptree/pkg/errors"
	"github.com/matzehuels/deptree/pkg/io"
	"github.com/matzehuels/deptree/pkg/render/nodelink"
)

// Output formats, selected by file extension.
const (
	FormatDOT  = "dot"
	FormatSVG  = "svg"
	FormatPNG  = "png"
	FormatJSON = "json"
)

// FormatForPath returns the output format implied by path's extension.
func FormatForPath(path string) (string, error) {
	if err := deperrors.ValidateOutputPath(path); err != nil {
		return "", err
	}
	return strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), "."), nil
}

// Render produces the artifact for format: DOT source, a Graphviz
// rendering, or the JSON report.
func Render(ctx context.Context, a *Analysis, format string) ([]byte, error) {
	if format == FormatJSON {
		var buf bytes.Buffer
		if err := io.WriteReport(a.Report(), &buf); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	}

	dot := nodelink.ToDOT(a.Result, nodelink.Options{
		EdgeSpecs: a.Options.Mode() == ModeRegistry,
	})
	switch format {
	case FormatDOT:
		return []byte(dot), nil
	case FormatSVG:
		return nodelink.RenderSVG(ctx, dot)
	case FormatPNG:
		return nodelink.RenderPNG(ctx, dot)
	default:
		return nil, deperrors.New(deperrors.ErrCodeInvalidFormat, "unsupported output format: %s", format)
	}
}

// WriteOutput renders a in the format implied by path and writes the file.
func WriteOutput(ctx context.Context, a *Analysis, path string) error {
	format, err := FormatForPath(path)
	if err != nil {
		return err
	}
	data, err := Render(ctx, a, format)
	if err != nil {
		return fmt.Errorf("render %s: %w", format, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return deperrors.Wrap(deperrors.ErrCodeInvalidPath, err, "write %s", path)
	}
	return nil
}
