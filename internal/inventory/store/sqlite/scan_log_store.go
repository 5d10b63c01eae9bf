package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	dbpkg "github.com/rajsexperiments/scanner-final/internal/db"
	"github.com/rajsexperiments/scanner-final/internal/inventory/store"
	"github.com/rajsexperiments/scanner-final/internal/inventory/types"
)

type ScanLogStore struct {
	db     *sql.DB
	writer *dbpkg.Worker
}

func NewScanLogStore(db *sql.DB, writer *dbpkg.Worker) *ScanLogStore {
	return &ScanLogStore{db: db, writer: writer}
}

// AppendScan stores e. A missing timestamp is filled with the current
// time; scanned_at_ms mirrors the timestamp for ordering and pruning.
func (s *ScanLogStore) AppendScan(ctx context.Context, e types.ScanLog) (types.ScanLog, error) {
	now := time.Now().UTC()
	if e.Timestamp == "" {
		e.Timestamp = now.Format(time.RFC3339Nano)
	}
	at, ok := store.ScanTime(e)
	if !ok {
		at = now
	}

	var clientID any
	if e.ClientID != "" {
		clientID = e.ClientID
	}

	err := s.writer.Do(ctx, func(ctx context.Context, tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `
INSERT INTO scan_logs(serial_number, scan_event, location, client_id, timestamp, scanned_at_ms)
VALUES (?, ?, ?, ?, ?, ?);`,
			e.SerialNumber, string(e.ScanEvent), e.Location, clientID, e.Timestamp, at.UTC().UnixMilli(),
		); err != nil {
			return fmt.Errorf("AppendScan insert: %w", err)
		}
		return nil
	})
	if err != nil {
		return types.ScanLog{}, err
	}
	return e, nil
}

func (s *ScanLogStore) ListScans(ctx context.Context) ([]types.ScanLog, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT serial_number, scan_event, location, client_id, timestamp
FROM scan_logs
ORDER BY scanned_at_ms DESC, id DESC;`)
	if err != nil {
		return nil, fmt.Errorf("ListScans: %w", err)
	}
	defer rows.Close()

	out := []types.ScanLog{}
	for rows.Next() {
		var (
			e        types.ScanLog
			event    string
			clientID sql.NullString
		)
		if err := rows.Scan(&e.SerialNumber, &event, &e.Location, &clientID, &e.Timestamp); err != nil {
			return nil, fmt.Errorf("ListScans scan: %w", err)
		}
		e.ScanEvent = types.ScanEvent(event)
		e.ClientID = clientID.String
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ListScans rows: %w", err)
	}
	return out, nil
}

func (s *ScanLogStore) ClearScans(ctx context.Context) (int64, error) {
	return s.deleteWhere(ctx, "ClearScans", `DELETE FROM scan_logs;`)
}

func (s *ScanLogStore) PruneOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	return s.deleteWhere(ctx, "PruneOlderThan", `DELETE FROM scan_logs WHERE scanned_at_ms < ?;`, cutoff.UTC().UnixMilli())
}

func (s *ScanLogStore) deleteWhere(ctx context.Context, op, query string, args ...any) (int64, error) {
	var deleted int64
	err := s.writer.Do(ctx, func(ctx context.Context, tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, query, args...)
		if err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
		deleted, err = res.RowsAffected()
		return err
	})
	if err != nil {
		return 0, err
	}
	return deleted, nil
}

var _ store.ScanLogStore = (*ScanLogStore)(nil)
