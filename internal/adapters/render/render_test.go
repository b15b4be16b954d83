package render_test

import (
	"bytes"
	"errors"
	"testing"

	"github.com/obraunsdorf/cargo-downgrade/internal/adapters/render"
	"github.com/obraunsdorf/cargo-downgrade/internal/core/domain"
	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixture = []domain.ResolvedPackage{
	{Name: "proc-macro2", Version: "1.0.24"},
	{Name: "serde", Version: "1.0.123"},
	{Name: "syn", Version: "1.0.60"},
}

func TestRender_Golden(t *testing.T) {
	tests := []struct {
		format     render.Format
		pkgs       []domain.ResolvedPackage
		goldenName string
	}{
		{format: render.FormatLock, pkgs: fixture, goldenName: "lock"},
		{format: render.FormatPin, pkgs: fixture, goldenName: "pin"},
		{format: render.FormatJSON, pkgs: fixture, goldenName: "json"},
		{format: render.FormatYAML, pkgs: fixture, goldenName: "yaml"},
		{format: render.FormatJSON, pkgs: nil, goldenName: "json_empty"},
		{format: render.FormatYAML, pkgs: nil, goldenName: "yaml_empty"},
	}

	for _, tt := range tests {
		t.Run(tt.goldenName, func(t *testing.T) {
			r, err := render.New(string(tt.format))
			require.NoError(t, err)

			var buf bytes.Buffer
			require.NoError(t, r.Render(&buf, tt.pkgs))

			g := goldie.New(t)
			g.Assert(t, tt.goldenName, buf.Bytes())
		})
	}
}

func TestRender_LinesEmpty(t *testing.T) {
	for _, format := range []render.Format{render.FormatLock, render.FormatPin} {
		r, err := render.New(string(format))
		require.NoError(t, err)

		var buf bytes.Buffer
		require.NoError(t, r.Render(&buf, nil))
		assert.Empty(t, buf.String())
	}
}

func TestNew_UnknownFormat(t *testing.T) {
	r, err := render.New("toml")
	require.Error(t, err)
	assert.Nil(t, r)
	assert.ErrorContains(t, err, domain.ErrUnknownOutputFormat.Error())
}

func TestFormats(t *testing.T) {
	for _, format := range render.Formats() {
		_, err := render.New(string(format))
		assert.NoError(t, err, format)
	}
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) {
	return 0, errors.New("disk full")
}

func TestRender_WriteError(t *testing.T) {
	for _, format := range render.Formats() {
		t.Run(string(format), func(t *testing.T) {
			r, err := render.New(string(format))
			require.NoError(t, err)

			err = r.Render(failingWriter{}, fixture)
			require.Error(t, err)
			assert.ErrorContains(t, err, "disk full")
		})
	}
}
