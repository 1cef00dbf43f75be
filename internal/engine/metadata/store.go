package metadata

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"gibridge/internal/core/errors"
	"gibridge/internal/shared/observability"

	_ "modernc.org/sqlite"
)

const sqliteDriverName = "sqlite"

// Store is a Provider backed by a SQLite index of namespace documents.
type Store struct {
	db           *sql.DB
	versionsStmt *sql.Stmt
	symbolsStmt  *sql.Stmt

	mu    sync.RWMutex
	pins  map[string]string
	cache map[cacheKey]loadResult
}

func OpenStore(path string) (*Store, error) {
	cleanPath := strings.TrimSpace(path)
	if cleanPath == "" {
		return nil, errors.New(errors.CodeValidationError, "metadata store path must not be empty")
	}
	if info, err := os.Stat(cleanPath); err == nil && info.IsDir() {
		return nil, errors.AddContext(errors.New(errors.CodeValidationError, "metadata store path is a directory, expected file"), errors.CtxPath, cleanPath)
	}

	dir := filepath.Dir(cleanPath)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create metadata store directory %q: %w", dir, err)
		}
	}

	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=foreign_keys(ON)", cleanPath)
	db, err := sql.Open(sqliteDriverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("open metadata store %q: %w", cleanPath, err)
	}
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(2)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping metadata store %q: %w", cleanPath, err)
	}
	if err := migrateStoreSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}

	versionsStmt, err := db.Prepare(`SELECT version FROM namespaces WHERE namespace = ?`)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("prepare versions stmt: %w", err)
	}
	symbolsStmt, err := db.Prepare(`SELECT name, payload FROM symbols WHERE namespace = ? AND version = ? ORDER BY name`)
	if err != nil {
		_ = versionsStmt.Close()
		_ = db.Close()
		return nil, fmt.Errorf("prepare symbols stmt: %w", err)
	}

	return &Store{
		db:           db,
		versionsStmt: versionsStmt,
		symbolsStmt:  symbolsStmt,
		pins:         make(map[string]string),
		cache:        make(map[cacheKey]loadResult),
	}, nil
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	_ = s.versionsStmt.Close()
	_ = s.symbolsStmt.Close()
	return s.db.Close()
}

// Import replaces the stored copy of one namespace version.
func (s *Store) Import(ctx context.Context, doc *Document) error {
	if err := doc.Validate(); err != nil {
		return err
	}
	deps, err := json.Marshal(doc.Dependencies)
	if err != nil {
		return fmt.Errorf("encode dependencies of %s: %w", doc.Namespace, err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin import: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM symbols WHERE namespace = ? AND version = ?`, doc.Namespace, doc.Version); err != nil {
		return fmt.Errorf("delete symbols of %s: %w", doc.Namespace, err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM namespaces WHERE namespace = ? AND version = ?`, doc.Namespace, doc.Version); err != nil {
		return fmt.Errorf("delete namespace %s: %w", doc.Namespace, err)
	}
	if _, err := tx.ExecContext(ctx, `INSERT INTO namespaces(namespace, version, format, dependencies) VALUES (?, ?, ?, ?)`,
		doc.Namespace, doc.Version, doc.Format, string(deps)); err != nil {
		return fmt.Errorf("insert namespace %s: %w", doc.Namespace, err)
	}

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO symbols(namespace, version, name, kind, payload) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare symbol insert: %w", err)
	}
	defer stmt.Close()

	for _, sym := range doc.Symbols {
		payload, err := json.Marshal(sym)
		if err != nil {
			return fmt.Errorf("encode symbol %s.%s: %w", doc.Namespace, sym.Name, err)
		}
		if _, err := stmt.ExecContext(ctx, doc.Namespace, doc.Version, sym.Name, string(sym.Kind), payload); err != nil {
			return fmt.Errorf("insert symbol %s.%s: %w", doc.Namespace, sym.Name, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit import of %s: %w", doc.Namespace, err)
	}

	s.mu.Lock()
	for key := range s.cache {
		if key.namespace == doc.Namespace {
			delete(s.cache, key)
		}
	}
	s.mu.Unlock()
	slog.Debug("namespace imported", "namespace", doc.Namespace, "version", doc.Version, "symbols", len(doc.Symbols))
	return nil
}

// ImportDir imports every namespace document of dir and returns how many
// were stored. It stops at the first invalid document.
func (s *Store) ImportDir(ctx context.Context, dir string) (int, error) {
	files, err := DocumentFiles(dir)
	if err != nil {
		return 0, err
	}
	count := 0
	for _, file := range files {
		if err := ctx.Err(); err != nil {
			return count, err
		}
		doc, err := ReadDocumentFile(file)
		if err != nil {
			return count, errors.AddContext(err, errors.CtxPath, file)
		}
		if err := s.Import(ctx, doc); err != nil {
			return count, errors.AddContext(err, errors.CtxPath, file)
		}
		count++
	}
	return count, nil
}

func (s *Store) Namespaces() []string {
	rows, err := s.db.Query(`SELECT DISTINCT namespace FROM namespaces ORDER BY namespace`)
	if err != nil {
		slog.Debug("list namespaces failed", "error", err)
		return nil
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var ns string
		if err := rows.Scan(&ns); err != nil {
			slog.Debug("scan namespace failed", "error", err)
			return out
		}
		out = append(out, ns)
	}
	return out
}

func (s *Store) Require(namespace, version string) error {
	if version == "" {
		s.mu.Lock()
		delete(s.pins, namespace)
		s.mu.Unlock()
		return nil
	}
	versions, err := s.versions(namespace)
	if err != nil {
		return err
	}
	if _, ok := pickVersion(versions, version); !ok {
		err := errors.Newf(errors.CodeNotFound, "namespace %s has no version %q", namespace, version)
		return errors.AddContext(err, errors.CtxNamespace, namespace)
	}
	s.mu.Lock()
	s.pins[namespace] = version
	s.mu.Unlock()
	return nil
}

func (s *Store) IsLoaded(namespace string) bool {
	_, ok := s.selected(namespace)
	return ok
}

func (s *Store) Symbols(namespace string) (map[string]Symbol, error) {
	version, ok := s.selected(namespace)
	if !ok {
		return nil, errors.AddContext(errors.New(errors.CodeNotFound, "namespace not loaded"), errors.CtxNamespace, namespace)
	}
	key := cacheKey{namespace: namespace, version: version}

	s.mu.RLock()
	res, hit := s.cache[key]
	s.mu.RUnlock()
	if hit {
		return res.symbols, res.err
	}

	res = s.load(namespace, version)
	s.mu.Lock()
	s.cache[key] = res
	size := len(s.cache)
	s.mu.Unlock()
	observability.MetadataCacheSize.WithLabelValues("sqlite").Set(float64(size))
	return res.symbols, res.err
}

// Dependencies lists what the selected version of namespace was built
// against.
func (s *Store) Dependencies(namespace string) []string {
	version, ok := s.selected(namespace)
	if !ok {
		return nil
	}
	var raw string
	err := s.db.QueryRow(`SELECT dependencies FROM namespaces WHERE namespace = ? AND version = ?`, namespace, version).Scan(&raw)
	if err != nil {
		slog.Debug("read dependencies failed", "namespace", namespace, "error", err)
		return nil
	}
	var deps []string
	if err := json.Unmarshal([]byte(raw), &deps); err != nil {
		slog.Debug("decode dependencies failed", "namespace", namespace, "error", err)
		return nil
	}
	return deps
}

func (s *Store) selected(namespace string) (string, bool) {
	versions, err := s.versions(namespace)
	if err != nil {
		slog.Debug("list versions failed", "namespace", namespace, "error", err)
		return "", false
	}
	s.mu.RLock()
	pin := s.pins[namespace]
	s.mu.RUnlock()
	return pickVersion(versions, pin)
}

func (s *Store) versions(namespace string) ([]string, error) {
	rows, err := s.versionsStmt.Query(namespace)
	if err != nil {
		return nil, fmt.Errorf("query versions of %s: %w", namespace, err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, fmt.Errorf("scan version of %s: %w", namespace, err)
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

func (s *Store) load(namespace, version string) loadResult {
	syms, err := s.readSymbols(namespace, version)
	if err != nil {
		observability.MetadataLoadsTotal.WithLabelValues("sqlite", "malformed").Inc()
		return loadResult{err: errors.AddContext(err, errors.CtxNamespace, namespace)}
	}
	observability.MetadataLoadsTotal.WithLabelValues("sqlite", "ok").Inc()
	return loadResult{symbols: syms}
}

func (s *Store) readSymbols(namespace, version string) (map[string]Symbol, error) {
	rows, err := s.symbolsStmt.Query(namespace, version)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeInternal, "query symbols")
	}
	defer rows.Close()

	out := make(map[string]Symbol)
	for rows.Next() {
		var (
			name    string
			payload []byte
		)
		if err := rows.Scan(&name, &payload); err != nil {
			return nil, errors.Wrap(err, errors.CodeInternal, "scan symbol")
		}
		var sym Symbol
		if err := json.Unmarshal(payload, &sym); err != nil {
			return nil, errors.AddContext(errors.Wrap(err, errors.CodeMalformedMetadata, "decode stored symbol"), errors.CtxSymbol, name)
		}
		if sym.Name != name || !sym.Kind.valid() {
			return nil, errors.AddContext(errors.New(errors.CodeMalformedMetadata, "stored symbol does not match its row"), errors.CtxSymbol, name)
		}
		out[name] = sym
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, errors.CodeInternal, "iterate symbols")
	}
	return out, nil
}
