package biblio

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"

	_ "github.com/mattn/go-sqlite3"
)

//go:embed schema.sql
var schemaSQL string

// Schema version tracking:
// 1 - Initial schema (runs, namespaces, entries)
const currentSchemaVersion = 1

// Store persists registry snapshots in SQLite so later passes (effect
// propagation, inline cross-link scanning, external tooling) can read
// the bibliography without recompiling the document.
type Store struct {
	db *sql.DB
}

// OpenStore creates or opens a snapshot database at path.
//
// The database is configured with:
//   - WAL mode for concurrent reads during writes
//   - NORMAL synchronous mode
//   - 5-second busy timeout for lock contention
//   - Foreign key enforcement
//
// Safe to call repeatedly on the same path.
func OpenStore(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// SQLite supports a single writer; a one-connection pool avoids
	// SQLITE_BUSY under concurrent saves.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply pragmas: %w", err)
	}
	if err := applySchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA foreign_keys=ON",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return fmt.Errorf("%s: %w", p, err)
		}
	}
	return nil
}

func applySchema(db *sql.DB) error {
	if _, err := db.Exec(schemaSQL); err != nil {
		return err
	}
	var version int
	err := db.QueryRow("SELECT version FROM schema_version LIMIT 1").Scan(&version)
	switch {
	case err == sql.ErrNoRows:
		_, err = db.Exec("INSERT INTO schema_version (version) VALUES (?)", currentSchemaVersion)
		return err
	case err != nil:
		return err
	case version > currentSchemaVersion:
		return fmt.Errorf("database schema version %d is newer than supported %d", version, currentSchemaVersion)
	}
	return nil
}

// SaveSnapshot writes a complete registry snapshot for one compile run
// in a single transaction. runID should be unique per run (the compiler
// uses a uuid); createdSeq is a logical clock, not wall time.
func (s *Store) SaveSnapshot(ctx context.Context, runID, shortname string, createdSeq int64, reg *Registry) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin snapshot: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		"INSERT INTO runs (id, shortname, created_seq) VALUES (?, ?, ?)",
		runID, shortname, createdSeq); err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	for nsSeq, name := range reg.Namespaces() {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO namespaces (run_id, name, parent, seq) VALUES (?, ?, ?, ?)",
			runID, name, reg.Parent(name), nsSeq); err != nil {
			return fmt.Errorf("insert namespace %q: %w", name, err)
		}
		for seq, e := range reg.Entries(name) {
			sig := ""
			if e.Signature != nil {
				data, err := json.Marshal(e.Signature)
				if err != nil {
					return fmt.Errorf("marshal signature for %q: %w", e.Key(), err)
				}
				sig = string(data)
			}
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO entries (
					run_id, namespace, seq, kind, key, aoid, ref_id, title,
					number, op_kind, signature_json, effects, skip_global, skip_return
				) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
				runID, name, seq, string(e.Kind), e.Key(), e.Aoid, e.RefID,
				e.Title, e.Number, string(e.OpKind), sig,
				strings.Join(e.Effects, ","), boolInt(e.SkipGlobalChecks), boolInt(e.SkipReturnChecks),
			); err != nil {
				return fmt.Errorf("insert entry %q: %w", e.Key(), err)
			}
		}
	}
	return tx.Commit()
}

// NextRunSeq returns the next value of the logical run clock: one past
// the highest created_seq saved so far, starting at 1 for an empty
// store.
func (s *Store) NextRunSeq(ctx context.Context) (int64, error) {
	var seq int64
	err := s.db.QueryRowContext(ctx,
		"SELECT COALESCE(MAX(created_seq), 0) + 1 FROM runs").Scan(&seq)
	if err != nil {
		return 0, fmt.Errorf("next run seq: %w", err)
	}
	return seq, nil
}

// StoredEntry is one persisted entry row.
type StoredEntry struct {
	RunID     string
	Namespace string
	Entry     Entry
}

// ListEntries returns persisted entries in namespace creation order,
// then insertion seq. Empty filters match everything.
func (s *Store) ListEntries(ctx context.Context, runID, namespace string) ([]StoredEntry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT e.run_id, e.namespace, e.kind, e.key, e.aoid, e.ref_id, e.title, e.number,
		       e.op_kind, e.signature_json, e.effects, e.skip_global, e.skip_return
		FROM entries e
		JOIN namespaces n ON n.run_id = e.run_id AND n.name = e.namespace
		WHERE (? = '' OR e.run_id = ?) AND (? = '' OR e.namespace = ?)
		ORDER BY e.run_id, n.seq, e.seq ASC`,
		runID, runID, namespace, namespace)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []StoredEntry
	for rows.Next() {
		var (
			se                     StoredEntry
			kind, key, sig, effect string
			skipGlobal, skipRet    int
		)
		if err := rows.Scan(&se.RunID, &se.Namespace, &kind, &key,
			&se.Entry.Aoid, &se.Entry.RefID, &se.Entry.Title, &se.Entry.Number,
			&se.Entry.OpKind, &sig, &effect, &skipGlobal, &skipRet); err != nil {
			return nil, err
		}
		se.Entry.Kind = EntryKind(kind)
		if se.Entry.Kind == EntryClause {
			se.Entry.ID = key
		}
		if sig != "" {
			se.Entry.Signature = &Signature{}
			if err := json.Unmarshal([]byte(sig), se.Entry.Signature); err != nil {
				return nil, fmt.Errorf("unmarshal signature for %q: %w", key, err)
			}
		}
		if effect != "" {
			se.Entry.Effects = strings.Split(effect, ",")
		}
		se.Entry.SkipGlobalChecks = skipGlobal != 0
		se.Entry.SkipReturnChecks = skipRet != 0
		out = append(out, se)
	}
	return out, rows.Err()
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
