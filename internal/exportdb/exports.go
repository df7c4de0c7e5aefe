package exportdb

import (
	"context"
	"database/sql"
	"fmt"
)

// Module is one row of the modules table.
type Module struct {
	ID            int64
	Unit          string
	Name          string
	InterfacePath string
}

// Export is one exported declaration of a module.
type Export struct {
	ID        int64
	ModuleID  int64
	Name      string
	File      string
	StartLine int
	StartCol  int
	EndLine   int
	EndCol    int
}

// --- Module operations ---

func (s *Store) InsertModule(ctx context.Context, m *Module) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		"INSERT INTO modules (unit, name, interface_path) VALUES (?, ?, ?)",
		m.Unit, m.Name, m.InterfacePath,
	)
	if err != nil {
		return 0, fmt.Errorf("insert module: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("last insert id: %w", err)
	}
	m.ID = id
	return id, nil
}

// ModuleByRef looks up a module by (unit, name). Returns nil with no error
// when the module is not in the index.
func (s *Store) ModuleByRef(ctx context.Context, unit, name string) (*Module, error) {
	m := &Module{}
	err := s.db.QueryRowContext(ctx,
		"SELECT id, unit, name, interface_path FROM modules WHERE unit = ? AND name = ?",
		unit, name,
	).Scan(&m.ID, &m.Unit, &m.Name, &m.InterfacePath)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("module by ref: %w", err)
	}
	return m, nil
}

// Modules returns all indexed modules ordered by (unit, name).
func (s *Store) Modules(ctx context.Context) ([]*Module, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, unit, name, interface_path FROM modules ORDER BY unit, name",
	)
	if err != nil {
		return nil, fmt.Errorf("modules: %w", err)
	}
	defer rows.Close()
	var modules []*Module
	for rows.Next() {
		m := &Module{}
		if err := rows.Scan(&m.ID, &m.Unit, &m.Name, &m.InterfacePath); err != nil {
			return nil, fmt.Errorf("scan module: %w", err)
		}
		modules = append(modules, m)
	}
	return modules, rows.Err()
}

// --- Export operations ---

func (s *Store) InsertExport(ctx context.Context, e *Export) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO exports (module_id, name, file, start_line, start_col, end_line, end_col)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		e.ModuleID, e.Name, e.File, e.StartLine, e.StartCol, e.EndLine, e.EndCol,
	)
	if err != nil {
		return 0, fmt.Errorf("insert export: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("last insert id: %w", err)
	}
	e.ID = id
	return id, nil
}

// ExportsByModule returns a module's exports in insertion order.
func (s *Store) ExportsByModule(ctx context.Context, moduleID int64) ([]*Export, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, module_id, name, file, start_line, start_col, end_line, end_col
		 FROM exports WHERE module_id = ? ORDER BY id`,
		moduleID,
	)
	if err != nil {
		return nil, fmt.Errorf("exports by module: %w", err)
	}
	defer rows.Close()
	var exports []*Export
	for rows.Next() {
		e := &Export{}
		if err := rows.Scan(&e.ID, &e.ModuleID, &e.Name, &e.File,
			&e.StartLine, &e.StartCol, &e.EndLine, &e.EndCol); err != nil {
			return nil, fmt.Errorf("scan export: %w", err)
		}
		exports = append(exports, e)
	}
	return exports, rows.Err()
}

// ReplaceModule transactionally replaces a module row and all of its
// exports. Used by the loader so a reloaded export dump never leaves
// stale entries behind.
func (s *Store) ReplaceModule(ctx context.Context, m *Module, exports []*Export) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	var oldID int64
	err = tx.QueryRowContext(ctx,
		"SELECT id FROM modules WHERE unit = ? AND name = ?", m.Unit, m.Name,
	).Scan(&oldID)
	switch {
	case err == sql.ErrNoRows:
		// First load of this module.
	case err != nil:
		return fmt.Errorf("lookup module: %w", err)
	default:
		if _, err := tx.ExecContext(ctx, "DELETE FROM exports WHERE module_id = ?", oldID); err != nil {
			return fmt.Errorf("delete exports: %w", err)
		}
		if _, err := tx.ExecContext(ctx, "DELETE FROM modules WHERE id = ?", oldID); err != nil {
			return fmt.Errorf("delete module: %w", err)
		}
	}

	res, err := tx.ExecContext(ctx,
		"INSERT INTO modules (unit, name, interface_path) VALUES (?, ?, ?)",
		m.Unit, m.Name, m.InterfacePath,
	)
	if err != nil {
		return fmt.Errorf("insert module: %w", err)
	}
	moduleID, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("last insert id: %w", err)
	}
	m.ID = moduleID

	for _, e := range exports {
		e.ModuleID = moduleID
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO exports (module_id, name, file, start_line, start_col, end_line, end_col)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`,
			e.ModuleID, e.Name, e.File, e.StartLine, e.StartCol, e.EndLine, e.EndCol,
		); err != nil {
			return fmt.Errorf("insert export %q: %w", e.Name, err)
		}
	}

	return tx.Commit()
}
