// Package app implements the application layer for cargo-downgrade.
package app

import (
	"context"
	"io"
	"net/mail"
	"os"
	"strings"
	"time"

	"github.com/obraunsdorf/cargo-downgrade/internal/adapters/render"
	"github.com/obraunsdorf/cargo-downgrade/internal/adapters/telemetry"
	"github.com/obraunsdorf/cargo-downgrade/internal/core/domain"
	"github.com/obraunsdorf/cargo-downgrade/internal/core/ports"
	"github.com/obraunsdorf/cargo-downgrade/internal/engine/downgrader"
	"github.com/obraunsdorf/cargo-downgrade/internal/engine/selector"
	"go.opentelemetry.io/otel"
	"go.trai.ch/zerr"
)

// RegistryConfig carries the registry settings taken from the command line.
type RegistryConfig struct {
	BaseURL  string
	Interval time.Duration
	Timeout  time.Duration
}

// RegistryFactory builds the registry client once its settings are known.
type RegistryFactory func(cfg RegistryConfig) (ports.Registry, error)

// Options configures a single Downgrade run.
type Options struct {
	// LockfilePath is the Cargo.lock to read. Empty means Cargo.lock in the working directory.
	LockfilePath string
	// Date is the RFC 2822 cutoff date.
	Date string
	// Level restricts the selection to one dependency level. NoLevelBound selects all.
	Level domain.Level
	// Crates, when non-nil, replaces the lockfile selection with an explicit list.
	Crates []string
	// Format is the output format name.
	Format string
	// Pin switches the lock format to exact requirements.
	Pin bool
	Registry RegistryConfig
	// Trace logs the duration of every registry request.
	Trace bool
}

// RendererFactory returns the renderer for an output format name.
type RendererFactory func(format string) (ports.Renderer, error)

// App represents the main application logic.
type App struct {
	loader   ports.LockfileLoader
	registry RegistryFactory
	tracer   ports.Tracer
	logger   ports.Logger
	render   RendererFactory
	out      io.Writer
	workDir  string
}

// New creates a new App instance.
func New(loader ports.LockfileLoader, registry RegistryFactory, tracer ports.Tracer, log ports.Logger) *App {
	return &App{
		loader:   loader,
		registry: registry,
		tracer:   tracer,
		logger:   log,
		render:   render.New,
		out:      os.Stdout,
	}
}

// WithOutput redirects the rendered result, which goes to stdout by default.
func (a *App) WithOutput(w io.Writer) *App {
	a.out = w
	return a
}

// WithRenderers replaces the renderer lookup, which defaults to render.New.
func (a *App) WithRenderers(factory RendererFactory) *App {
	a.render = factory
	return a
}

// WithWorkDir sets the directory searched for Cargo.lock when no lockfile path
// is given. It defaults to the process working directory.
func (a *App) WithWorkDir(dir string) *App {
	a.workDir = dir
	return a
}

// Downgrade selects crates, resolves the newest version of each published
// before the cutoff date and renders the result.
func (a *App) Downgrade(ctx context.Context, opts Options) error {
	// 1. Validate input
	cutoff, err := ParseDate(opts.Date)
	if err != nil {
		return err
	}

	format := opts.Format
	if format == "" {
		format = string(render.FormatLock)
	}
	if opts.Pin && format == string(render.FormatLock) {
		format = string(render.FormatPin)
	}
	renderer, err := a.render(format)
	if err != nil {
		return err
	}

	// 2. Select crates
	names, err := a.selectCrates(opts)
	if err != nil {
		return err
	}

	// 3. Resolve versions
	registry, err := a.registry(opts.Registry)
	if err != nil {
		return err
	}

	tracer := a.tracer
	if opts.Trace {
		provider := telemetry.NewProvider(telemetry.NewBridge(a.logger))
		otel.SetTracerProvider(provider)
		defer func() {
			_ = provider.Shutdown(ctx)
		}()
		tracer = telemetry.NewOTelTracer(provider)
	}

	pkgs, err := downgrader.New(registry, tracer, a.logger).Downgrade(ctx, names, cutoff)
	if err != nil {
		return err
	}

	// 4. Render
	return renderer.Render(a.out, pkgs)
}

// selectCrates returns the sorted crate names to downgrade.
func (a *App) selectCrates(opts Options) ([]string, error) {
	if opts.Crates != nil {
		return ParseCrateList(opts.Crates)
	}

	path := opts.LockfilePath
	if path == "" {
		dir := a.workDir
		if dir == "" {
			cwd, err := os.Getwd()
			if err != nil {
				return nil, zerr.Wrap(err, domain.ErrLockfileRead.Error())
			}
			dir = cwd
		}
		path = domain.DefaultLockfilePath(dir)
	}

	graph, err := a.loader.Load(path)
	if err != nil {
		return nil, err
	}

	selection := selector.New(a.logger).Select(graph, opts.Level)
	return selection.Names.Sorted(), nil
}

// ParseDate parses an RFC 2822 date such as "22 Feb 2021 23:16:09 GMT".
// The weekday prefix is optional.
func ParseDate(raw string) (time.Time, error) {
	t, err := mail.ParseDate(strings.TrimSpace(raw))
	if err != nil {
		return time.Time{}, zerr.With(zerr.Wrap(err, domain.ErrInvalidDate.Error()), "date", raw)
	}
	return t, nil
}

// ParseCrateList trims, deduplicates and sorts explicitly named crates.
// Entries may themselves be comma-separated lists.
func ParseCrateList(entries []string) ([]string, error) {
	set := domain.NewCrateSet()
	for _, entry := range entries {
		for name := range strings.SplitSeq(entry, ",") {
			if name = strings.TrimSpace(name); name != "" {
				set.Add(name)
			}
		}
	}

	if set.Len() == 0 {
		return nil, domain.ErrNoCratesSelected
	}
	return set.Sorted(), nil
}
