package dataprocessing

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"runtime"

	"golang.org/x/sync/errgroup"

	"salespulse/internal/infrastructure"
	"salespulse/pkg/contracts/domain"
)

// Upload is one uploaded workbook.
type Upload struct {
	Name string
	Data []byte
}

// Loader turns an upload set into a combined dataset.
type Loader struct {
	logger      *slog.Logger
	parallelism int
}

// NewLoader creates a loader that parses up to GOMAXPROCS files at once.
func NewLoader(logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{
		logger:      infrastructure.WithComponent(logger, "loader"),
		parallelism: runtime.GOMAXPROCS(0),
	}
}

// Load splits off the plans file, parses the sales exports in parallel and
// concatenates their rows in upload order. A plans file that fails to parse
// is logged and yields no plans.
func (l *Loader) Load(ctx context.Context, uploads []Upload) (*domain.Dataset, error) {
	var data []Upload
	var plans domain.Plans

	for _, u := range uploads {
		if !IsPlansFile(u.Name) {
			data = append(data, u)
			continue
		}
		parsed, err := ParsePlans(ctx, u.Name, bytes.NewReader(u.Data))
		if err != nil {
			l.logger.ErrorContext(ctx, "failed to parse plans file",
				slog.String("file", u.Name),
				slog.String("error", err.Error()))
			plans = nil
			continue
		}
		plans = parsed
		l.logger.InfoContext(ctx, "plans file loaded",
			slog.String("file", u.Name),
			slog.Int("plans", len(parsed)))
	}

	parts := make([]*domain.Dataset, len(data))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(l.parallelism)
	for i, u := range data {
		g.Go(func() error {
			ds, err := ParseWorkbook(gctx, u.Name, bytes.NewReader(u.Data))
			if err != nil {
				return fmt.Errorf("%s: %w", u.Name, err)
			}
			parts[i] = ds
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	combined := &domain.Dataset{Plans: plans}
	total := 0
	for _, p := range parts {
		total += len(p.Rows)
	}
	combined.Rows = make([]domain.RawTransaction, 0, total)
	for _, p := range parts {
		combined.Files = append(combined.Files, p.Files...)
		combined.Columns = combined.Columns.Merge(p.Columns)
		combined.Rows = append(combined.Rows, p.Rows...)
	}

	l.logger.InfoContext(ctx, "dataset loaded",
		slog.Int("files", len(combined.Files)),
		slog.Int("rows", len(combined.Rows)),
		slog.Int("plans", len(combined.Plans)))

	return combined, nil
}
