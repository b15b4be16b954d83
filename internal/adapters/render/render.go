// Package render writes resolved packages to an output stream.
package render

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/obraunsdorf/cargo-downgrade/internal/core/domain"
	"github.com/obraunsdorf/cargo-downgrade/internal/core/ports"
	"go.trai.ch/zerr"
	"gopkg.in/yaml.v3"
)

// Format names an output format.
type Format string

const (
	// FormatLock prints one `name = "version"` line per package.
	FormatLock Format = "lock"
	// FormatPin prints one `name = "=version"` line per package.
	FormatPin Format = "pin"
	// FormatJSON prints a JSON array of {name, version} objects.
	FormatJSON Format = "json"
	// FormatYAML prints a YAML sequence of {name, version} mappings.
	FormatYAML Format = "yaml"
)

// Formats lists the supported output formats.
func Formats() []Format {
	return []Format{FormatLock, FormatPin, FormatJSON, FormatYAML}
}

// New returns the renderer for the named format.
func New(format string) (ports.Renderer, error) {
	switch Format(format) {
	case FormatLock:
		return LineRenderer{Line: domain.ResolvedPackage.String}, nil
	case FormatPin:
		return LineRenderer{Line: domain.ResolvedPackage.Pin}, nil
	case FormatJSON:
		return JSONRenderer{}, nil
	case FormatYAML:
		return YAMLRenderer{}, nil
	default:
		return nil, zerr.With(domain.ErrUnknownOutputFormat, "format", format)
	}
}

// LineRenderer prints one line per package.
type LineRenderer struct {
	Line func(domain.ResolvedPackage) string
}

// Render implements ports.Renderer.
func (r LineRenderer) Render(w io.Writer, pkgs []domain.ResolvedPackage) error {
	for _, pkg := range pkgs {
		if _, err := fmt.Fprintln(w, r.Line(pkg)); err != nil {
			return zerr.Wrap(err, "failed to write output")
		}
	}
	return nil
}

// JSONRenderer prints an indented JSON array.
type JSONRenderer struct{}

// Render implements ports.Renderer.
func (JSONRenderer) Render(w io.Writer, pkgs []domain.ResolvedPackage) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(nonNil(pkgs)); err != nil {
		return zerr.Wrap(err, "failed to encode json output")
	}
	return nil
}

// YAMLRenderer prints a YAML sequence.
type YAMLRenderer struct{}

// Render implements ports.Renderer.
func (YAMLRenderer) Render(w io.Writer, pkgs []domain.ResolvedPackage) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(nonNil(pkgs)); err != nil {
		return zerr.Wrap(err, "failed to encode yaml output")
	}
	if err := enc.Close(); err != nil {
		return zerr.Wrap(err, "failed to encode yaml output")
	}
	return nil
}

func nonNil(pkgs []domain.ResolvedPackage) []domain.ResolvedPackage {
	if pkgs == nil {
		return []domain.ResolvedPackage{}
	}
	return pkgs
}
