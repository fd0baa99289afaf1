// Package sqlite stores event streams in a SQLite database.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/codewandler/userstore-go/core/es"
)

const (
	defaultTable    = "events"
	timestampLayout = "2006-01-02T15:04:05.000000000Z07:00"
)

var tableName = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

type Config struct {
	// Path of the database file; ":memory:" for a private in-memory database.
	Path     string
	Table    string       // Table name, default "events"
	Log      *slog.Logger // Log for diagnostics (optional)
	Registry es.Decoder   // Registry decodes payloads in ReadStream; without it payloads stay raw
}

// EventStore appends each batch in one transaction. Records are kept as
// encoded rows ordered by (stream_id, position).
type EventStore struct {
	db       *sql.DB
	log      *slog.Logger
	table    string
	registry es.Decoder
}

func dsn(path string) string {
	if path == ":memory:" {
		return "file::memory:"
	}
	return "file:" + path + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_txlock=immediate"
}

func NewEventStore(ctx context.Context, cfg Config) (*EventStore, error) {
	if cfg.Path == "" {
		return nil, errors.New("sqlite: path is required")
	}
	table := cfg.Table
	if table == "" {
		table = defaultTable
	}
	if !tableName.MatchString(table) {
		return nil, fmt.Errorf("sqlite: invalid table name %q", table)
	}

	db, err := sql.Open("sqlite", dsn(cfg.Path))
	if err != nil {
		return nil, fmt.Errorf("sqlite: open %s: %w", cfg.Path, err)
	}
	// one writer at a time; an in-memory database also lives on a single connection
	db.SetMaxOpenConns(1)

	log := cfg.Log
	if log == nil {
		log = slog.Default()
	}

	s := &EventStore{
		db:       db,
		log:      log.With(slog.String("store", "sqlite"), slog.String("table", table)),
		table:    table,
		registry: cfg.Registry,
	}
	if err := s.migrate(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *EventStore) migrate(ctx context.Context) error {
	stmts := []string{
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
			stream_id TEXT    NOT NULL,
			position  INTEGER NOT NULL,
			id        TEXT    NOT NULL UNIQUE,
			type      TEXT    NOT NULL,
			timestamp TEXT    NOT NULL,
			version   INTEGER NOT NULL,
			record    BLOB    NOT NULL,
			PRIMARY KEY (stream_id, position)
		)`, s.table),
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS %s_type ON %s (type)`, s.table, s.table),
	}
	for _, stmt := range stmts {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("sqlite: migrate: %w", err)
		}
	}
	return nil
}

func (s *EventStore) SetDecoder(d es.Decoder) { s.registry = d }

func (s *EventStore) Close() error { return s.db.Close() }

func (s *EventStore) AppendToStream(ctx context.Context, streamID string, records []es.EventRecord) error {
	if err := es.ValidateRecords(records); err != nil {
		return err
	}

	encoded := make([][]byte, len(records))
	for i, r := range records {
		b, err := es.MarshalRecord(r)
		if err != nil {
			return err
		}
		encoded[i] = b
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite: begin: %w", err)
	}
	defer tx.Rollback()

	var pos int64
	err = tx.QueryRowContext(
		ctx,
		fmt.Sprintf(`SELECT COALESCE(MAX(position), 0) FROM %s WHERE stream_id = ?`, s.table),
		streamID,
	).Scan(&pos)
	if err != nil {
		return fmt.Errorf("sqlite: stream %s position: %w", streamID, err)
	}

	placeholders := make([]string, len(records))
	args := make([]any, 0, len(records)*7)
	for i, r := range records {
		placeholders[i] = "(?, ?, ?, ?, ?, ?, ?)"
		args = append(args,
			streamID, pos+int64(i)+1, r.ID, r.Type,
			r.Timestamp.UTC().Format(timestampLayout), r.Version.Int(), encoded[i],
		)
	}
	_, err = tx.ExecContext(
		ctx,
		fmt.Sprintf(
			`INSERT INTO %s (stream_id, position, id, type, timestamp, version, record) VALUES %s`,
			s.table,
			strings.Join(placeholders, ","),
		),
		args...,
	)
	if err != nil {
		return fmt.Errorf("sqlite: insert into %s: %w", streamID, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlite: commit %s: %w", streamID, err)
	}

	s.log.Debug(
		"append",
		slog.String("stream_id", streamID),
		slog.Int64("last_position", pos+int64(len(records))),
		slog.Int("num_events", len(records)),
	)
	return nil
}

func (s *EventStore) ReadStream(ctx context.Context, streamID string) ([]es.EventRecord, error) {
	rows, err := s.db.QueryContext(
		ctx,
		fmt.Sprintf(`SELECT record FROM %s WHERE stream_id = ? ORDER BY position`, s.table),
		streamID,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: read %s: %w", streamID, err)
	}
	defer rows.Close()

	var out []es.EventRecord
	for rows.Next() {
		var b []byte
		if err := rows.Scan(&b); err != nil {
			return nil, fmt.Errorf("sqlite: scan %s: %w", streamID, err)
		}
		r, err := es.UnmarshalRecord(b, s.registry)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: read %s: %w", streamID, err)
	}
	if len(out) == 0 {
		return nil, es.ErrStreamNotFound
	}
	return out, nil
}

// StreamLen returns the number of records in a stream.
func (s *EventStore) StreamLen(ctx context.Context, streamID string) (n int, err error) {
	err = s.db.QueryRowContext(
		ctx,
		fmt.Sprintf(`SELECT COUNT(*) FROM %s WHERE stream_id = ?`, s.table),
		streamID,
	).Scan(&n)
	return
}

var _ es.EventStoreReader = (*EventStore)(nil)
