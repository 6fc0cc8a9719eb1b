// Package store persists analysis reports to a SQLite database so they can
// be queried with ordinary SQL after a run.
package store

import (
	"fmt"
	"os"

	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"

	"github.com/morozRed/moveprobe/internal/report"
)

const schema = `
CREATE TABLE analyses (
    id INTEGER PRIMARY KEY,
    query TEXT NOT NULL,
    contract TEXT NOT NULL,
    function TEXT NOT NULL,
    source TEXT NOT NULL,
    file TEXT NOT NULL,
    start_line INTEGER NOT NULL,
    end_line INTEGER NOT NULL
);

CREATE TABLE parameters (
    analysis_id INTEGER NOT NULL REFERENCES analyses(id),
    position INTEGER NOT NULL,
    name TEXT NOT NULL,
    type TEXT NOT NULL
);

CREATE TABLE calls (
    analysis_id INTEGER NOT NULL REFERENCES analyses(id),
    position INTEGER NOT NULL,
    file TEXT NOT NULL,
    function TEXT NOT NULL,
    module TEXT NOT NULL
);

CREATE INDEX idx_parameters_analysis ON parameters(analysis_id);
CREATE INDEX idx_calls_analysis ON calls(analysis_id);
CREATE INDEX idx_calls_module ON calls(module);
`

// Save writes analyses for query to a fresh database at path, replacing any
// existing file.
func Save(path, query string, analyses []report.FunctionAnalysis) (err error) {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove existing database: %w", err)
	}

	conn, err := sqlite.OpenConn(path, sqlite.OpenCreate, sqlite.OpenReadWrite)
	if err != nil {
		return fmt.Errorf("open sqlite: %w", err)
	}
	defer func() { _ = conn.Close() }()

	if err := sqlitex.ExecuteScript(conn, schema, nil); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}

	endFn, err := sqlitex.ImmediateTransaction(conn)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer endFn(&err)

	return insertAnalyses(conn, query, analyses)
}

func insertAnalyses(conn *sqlite.Conn, query string, analyses []report.FunctionAnalysis) error {
	analysisStmt, err := conn.Prepare(`INSERT INTO analyses (id, query, contract, function, source, file, start_line, end_line) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare analyses insert: %w", err)
	}
	defer func() { _ = analysisStmt.Finalize() }()

	paramStmt, err := conn.Prepare(`INSERT INTO parameters (analysis_id, position, name, type) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare parameters insert: %w", err)
	}
	defer func() { _ = paramStmt.Finalize() }()

	callStmt, err := conn.Prepare(`INSERT INTO calls (analysis_id, position, file, function, module) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare calls insert: %w", err)
	}
	defer func() { _ = callStmt.Finalize() }()

	for i, a := range analyses {
		id := int64(i + 1)
		analysisStmt.BindInt64(1, id)
		analysisStmt.BindText(2, query)
		analysisStmt.BindText(3, a.Contract)
		analysisStmt.BindText(4, a.Function)
		analysisStmt.BindText(5, a.Source)
		analysisStmt.BindText(6, a.Location.File)
		analysisStmt.BindInt64(7, int64(a.Location.StartLine))
		analysisStmt.BindInt64(8, int64(a.Location.EndLine))
		if _, err := analysisStmt.Step(); err != nil {
			return fmt.Errorf("insert analysis %s: %w", a.Contract, err)
		}
		if err := analysisStmt.Reset(); err != nil {
			return err
		}

		for pos, p := range a.Parameters {
			paramStmt.BindInt64(1, id)
			paramStmt.BindInt64(2, int64(pos))
			paramStmt.BindText(3, p.Name)
			paramStmt.BindText(4, p.Type)
			if _, err := paramStmt.Step(); err != nil {
				return fmt.Errorf("insert parameter %s: %w", p.Name, err)
			}
			if err := paramStmt.Reset(); err != nil {
				return err
			}
		}

		for pos, c := range a.Calls {
			callStmt.BindInt64(1, id)
			callStmt.BindInt64(2, int64(pos))
			callStmt.BindText(3, c.File)
			callStmt.BindText(4, c.Function)
			callStmt.BindText(5, c.Module)
			if _, err := callStmt.Step(); err != nil {
				return fmt.Errorf("insert call %s: %w", c.Function, err)
			}
			if err := callStmt.Reset(); err != nil {
				return err
			}
		}
	}
	return nil
}

// Load reads back every analysis stored at path, in save order, along with
// the query that produced them.
func Load(path string) (string, []report.FunctionAnalysis, error) {
	conn, err := sqlite.OpenConn(path, sqlite.OpenReadOnly)
	if err != nil {
		return "", nil, fmt.Errorf("open sqlite: %w", err)
	}
	defer func() { _ = conn.Close() }()

	var (
		query    string
		ids      []int64
		analyses []report.FunctionAnalysis
	)
	byID := make(map[int64]int)

	err = sqlitex.ExecuteTransient(conn,
		`SELECT id, query, contract, function, source, file, start_line, end_line FROM analyses ORDER BY id`,
		&sqlitex.ExecOptions{
			ResultFunc: func(stmt *sqlite.Stmt) error {
				id := stmt.ColumnInt64(0)
				query = stmt.ColumnText(1)
				byID[id] = len(analyses)
				ids = append(ids, id)
				analyses = append(analyses, report.FunctionAnalysis{
					Contract: stmt.ColumnText(2),
					Function: stmt.ColumnText(3),
					Source:   stmt.ColumnText(4),
					Location: report.Location{
						File:      stmt.ColumnText(5),
						StartLine: int(stmt.ColumnInt64(6)),
						EndLine:   int(stmt.ColumnInt64(7)),
					},
					Parameters: []report.Parameter{},
					Calls:      []report.FunctionCall{},
				})
				return nil
			},
		})
	if err != nil {
		return "", nil, fmt.Errorf("read analyses: %w", err)
	}

	err = sqlitex.ExecuteTransient(conn,
		`SELECT analysis_id, name, type FROM parameters ORDER BY analysis_id, position`,
		&sqlitex.ExecOptions{
			ResultFunc: func(stmt *sqlite.Stmt) error {
				i, ok := byID[stmt.ColumnInt64(0)]
				if !ok {
					return fmt.Errorf("parameter references unknown analysis %d", stmt.ColumnInt64(0))
				}
				analyses[i].Parameters = append(analyses[i].Parameters, report.Parameter{
					Name: stmt.ColumnText(1),
					Type: stmt.ColumnText(2),
				})
				return nil
			},
		})
	if err != nil {
		return "", nil, fmt.Errorf("read parameters: %w", err)
	}

	err = sqlitex.ExecuteTransient(conn,
		`SELECT analysis_id, file, function, module FROM calls ORDER BY analysis_id, position`,
		&sqlitex.ExecOptions{
			ResultFunc: func(stmt *sqlite.Stmt) error {
				i, ok := byID[stmt.ColumnInt64(0)]
				if !ok {
					return fmt.Errorf("call references unknown analysis %d", stmt.ColumnInt64(0))
				}
				analyses[i].Calls = append(analyses[i].Calls, report.FunctionCall{
					File:     stmt.ColumnText(1),
					Function: stmt.ColumnText(2),
					Module:   stmt.ColumnText(3),
				})
				return nil
			},
		})
	if err != nil {
		return "", nil, fmt.Errorf("read calls: %w", err)
	}

	if analyses == nil {
		analyses = []report.FunctionAnalysis{}
	}
	return query, analyses, nil
}

// CallersOf lists the contracts whose stored analyses call into module.
func CallersOf(path, module string) ([]string, error) {
	conn, err := sqlite.OpenConn(path, sqlite.OpenReadOnly)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	defer func() { _ = conn.Close() }()

	var callers []string
	err = sqlitex.Execute(conn,
		`SELECT DISTINCT a.contract FROM calls c JOIN analyses a ON a.id = c.analysis_id WHERE c.module = ? ORDER BY a.contract`,
		&sqlitex.ExecOptions{
			Args: []any{module},
			ResultFunc: func(stmt *sqlite.Stmt) error {
				callers = append(callers, stmt.ColumnText(0))
				return nil
			},
		})
	if err != nil {
		return nil, fmt.Errorf("query callers: %w", err)
	}
	return callers, nil
}
