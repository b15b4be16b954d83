// Package downgrader resolves crates to the newest version published before a cutoff date.
package downgrader

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/obraunsdorf/cargo-downgrade/internal/core/domain"
	"github.com/obraunsdorf/cargo-downgrade/internal/core/ports"
	"go.trai.ch/zerr"
)

// Downgrader queries the registry for each crate and picks its pre-cutoff version.
type Downgrader struct {
	registry ports.Registry
	tracer   ports.Tracer
	logger   ports.Logger
}

// New creates a new Downgrader.
func New(registry ports.Registry, tracer ports.Tracer, logger ports.Logger) *Downgrader {
	return &Downgrader{
		registry: registry,
		tracer:   tracer,
		logger:   logger,
	}
}

// Downgrade resolves every name to the newest unyanked version published strictly
// before cutoff, returning the packages in input order.
//
// Names are processed one at a time because the registry enforces a minimum
// spacing between requests. The first failure aborts the whole run and no partial
// result is returned.
func (d *Downgrader) Downgrade(ctx context.Context, names []string, cutoff time.Time) ([]domain.ResolvedPackage, error) {
	resolved := make([]domain.ResolvedPackage, 0, len(names))
	for _, name := range names {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		pkg, err := d.resolve(ctx, name, cutoff)
		if err != nil {
			return nil, err
		}
		resolved = append(resolved, pkg)
	}
	return resolved, nil
}

func (d *Downgrader) resolve(ctx context.Context, name string, cutoff time.Time) (domain.ResolvedPackage, error) {
	ctx, span := d.tracer.Start(ctx, "fetch "+name)
	defer span.End()
	span.SetAttribute("crate", name)

	d.logger.Info(fmt.Sprintf("fetching versions of crate %s", name))
	history, err := d.registry.Versions(ctx, name)
	if err != nil {
		span.RecordError(err)
		return domain.ResolvedPackage{}, err
	}
	span.SetAttribute("versions", len(history))

	version, ok := SelectVersion(history, cutoff)
	if !ok {
		notFound := zerr.With(domain.Kind(domain.ErrVersionNotFound, nil), "crate", name)
		notFound = zerr.With(notFound, "oldest_unyanked", OldestUnyanked(history))
		span.RecordError(notFound)
		return domain.ResolvedPackage{}, notFound
	}
	span.SetAttribute("selected", version.Num)

	return domain.ResolvedPackage{Name: name, Version: version.Num}, nil
}

// SelectVersion returns the newest unyanked record published strictly before cutoff.
// The history does not need to be sorted and is not modified.
func SelectVersion(history []domain.VersionRecord, cutoff time.Time) (domain.VersionRecord, bool) {
	sorted := sortByPublishTime(history)
	for i := len(sorted) - 1; i >= 0; i-- {
		v := sorted[i]
		if v.PublishedAt.Before(cutoff) && !v.Yanked {
			return v, true
		}
	}
	return domain.VersionRecord{}, false
}

// OldestUnyanked describes the oldest unyanked record of the history as "num (YYYY-MM-DD)",
// or domain.NoKnownVersions if every record is yanked.
func OldestUnyanked(history []domain.VersionRecord) string {
	for _, v := range sortByPublishTime(history) {
		if !v.Yanked {
			return fmt.Sprintf("%s (%s)", v.Num, v.PublishedAt.UTC().Format(domain.DiagnosticDateLayout))
		}
	}
	return domain.NoKnownVersions
}

func sortByPublishTime(history []domain.VersionRecord) []domain.VersionRecord {
	sorted := slices.Clone(history)
	slices.SortStableFunc(sorted, func(a, b domain.VersionRecord) int {
		return a.PublishedAt.Compare(b.PublishedAt)
	})
	return sorted
}
