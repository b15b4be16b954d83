package ports

import (
	"io"

	"github.com/obraunsdorf/cargo-downgrade/internal/core/domain"
)

// Renderer writes resolved packages in a particular output format.
//
//go:generate go run go.uber.org/mock/mockgen -source=renderer.go -destination=mocks/mock_renderer.go -package=mocks
type Renderer interface {
	Render(w io.Writer, pkgs []domain.ResolvedPackage) error
}
