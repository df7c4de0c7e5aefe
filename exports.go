package sightline

import (
	"context"
	"fmt"

	"github.com/jward/sightline/internal/exportdb"
)

// DBFetcher adapts a SQLite export store to the ExportFetcher capability.
// A module with no row yields (nil, nil): a miss, not an error. Database
// failures surface as errors and are absorbed by the resolver's fail-soft
// path.
func DBFetcher(s *exportdb.Store) ExportFetcher {
	return func(ctx context.Context, mod ModuleRef) (*ExportTable, error) {
		m, err := s.ModuleByRef(ctx, mod.Unit, mod.Name)
		if err != nil {
			return nil, fmt.Errorf("export fetch: %w", err)
		}
		if m == nil {
			return nil, nil
		}
		rows, err := s.ExportsByModule(ctx, m.ID)
		if err != nil {
			return nil, fmt.Errorf("export fetch: %w", err)
		}

		table := &ExportTable{File: m.InterfacePath}
		for _, e := range rows {
			table.Entries = append(table.Entries, ExportEntry{
				Name:   e.Name,
				Module: ModuleRef{Unit: m.Unit, Name: m.Name},
				Loc: Location{
					File: e.File,
					Range: Range{
						Start: Position{Line: e.StartLine, Col: e.StartCol},
						End:   Position{Line: e.EndLine, Col: e.EndCol},
					},
				},
			})
		}
		return table, nil
	}
}
