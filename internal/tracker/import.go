package tracker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/smartspend-dev/smartspend/internal/importer"
	"github.com/smartspend-dev/smartspend/internal/importlog"
	"github.com/smartspend-dev/smartspend/internal/ledger"
	"github.com/smartspend-dev/smartspend/internal/model"
)

// maxParallelParse bounds how many import files are parsed at once.
const maxParallelParse = 4

// Rejection is a statement that could not be recorded.
type Rejection struct {
	File string
	Line int
	Text string
	Err  error
}

// ImportResult reports what an import recorded.
type ImportResult struct {
	Saved    []model.Record
	Rejected []Rejection
	// Files lists the files that were fully imported.
	Files []string
}

// Import records statements in order. Statements that carry no usable
// amount are rejected and the import continues; any other failure stops
// it and is returned with the partial result.
func (s *Service) Import(ctx context.Context, userID, file string, stmts []importer.Statement) (ImportResult, error) {
	var res ImportResult
	err := s.importInto(ctx, &res, userID, file, stmts)
	return res, err
}

func (s *Service) importInto(ctx context.Context, res *ImportResult, userID, file string, stmts []importer.Statement) error {
	for _, st := range stmts {
		rec, err := s.AddTransaction(ctx, userID, st.Text, st.Amount)
		switch {
		case err == nil:
			res.Saved = append(res.Saved, rec)
		case errors.Is(err, ledger.ErrInvalidAmount), errors.Is(err, ErrEmptyStatement):
			res.Rejected = append(res.Rejected, Rejection{File: file, Line: st.Line, Text: st.Text, Err: err})
		default:
			return fmt.Errorf("%s line %d: %w", file, st.Line, err)
		}
	}
	return nil
}

// ImportDir imports every parseable file in <dataDir>/import and moves
// each one to import/processed once all its statements are handled. Files
// are parsed concurrently and recorded one after another in name order.
// Every processed file is appended to the import history.
func (s *Service) ImportDir(ctx context.Context, userID, dataDir string, registry *importer.Registry) (ImportResult, error) {
	if err := ledger.ValidateUserID(userID); err != nil {
		return ImportResult{}, err
	}

	files, err := importer.Scan(dataDir, registry)
	if err != nil {
		return ImportResult{}, err
	}

	parsed := make([][]importer.Statement, len(files))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxParallelParse)
	for i, f := range files {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			stmts, err := registry.ParseFile(f.Path)
			if err != nil {
				return err
			}
			parsed[i] = stmts
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return ImportResult{}, err
	}

	var res ImportResult
	for i, f := range files {
		saved, rejected := len(res.Saved), len(res.Rejected)
		if err := s.importInto(ctx, &res, userID, f.Name, parsed[i]); err != nil {
			return res, err
		}
		if err := importer.MarkProcessed(dataDir, f.Name); err != nil {
			return res, err
		}
		res.Files = append(res.Files, f.Name)

		entry := importlog.Entry{
			Timestamp: time.Now(),
			User:      userID,
			File:      f.Name,
			Format:    registry.ForFile(f.Name).Format(),
			Saved:     len(res.Saved) - saved,
			Skipped:   len(res.Rejected) - rejected,
		}
		if err := importlog.Append(dataDir, []importlog.Entry{entry}); err != nil {
			s.log.Warn().Err(err).Str("file", f.Name).Msg("recording import history")
		}
		s.log.Info().Str("file", f.Name).Int("saved", entry.Saved).Int("skipped", entry.Skipped).Msg("import file processed")
	}
	return res, nil
}

// ImportHistory lists the files previously imported for a user, oldest first.
func (s *Service) ImportHistory(userID, dataDir string) ([]importlog.Entry, error) {
	if err := ledger.ValidateUserID(userID); err != nil {
		return nil, err
	}
	entries, err := importlog.Read(dataDir)
	if err != nil {
		return nil, err
	}
	return importlog.ForUser(entries, userID), nil
}
