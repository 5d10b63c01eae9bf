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

type DirectoryStore struct {
	db     *sql.DB
	writer *dbpkg.Worker
}

func NewDirectoryStore(db *sql.DB, writer *dbpkg.Worker) *DirectoryStore {
	return &DirectoryStore{db: db, writer: writer}
}

func (s *DirectoryStore) ListUsers(ctx context.Context) ([]types.User, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT email, name, role, location, password FROM users ORDER BY email;`)
	if err != nil {
		return nil, fmt.Errorf("ListUsers: %w", err)
	}
	defer rows.Close()

	out := []types.User{}
	for rows.Next() {
		var (
			u    types.User
			role string
		)
		if err := rows.Scan(&u.Email, &u.Name, &role, &u.Location, &u.Password); err != nil {
			return nil, fmt.Errorf("ListUsers scan: %w", err)
		}
		u.Role = types.Role(role)
		out = append(out, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ListUsers rows: %w", err)
	}
	return out, nil
}

func (s *DirectoryStore) UpsertUser(ctx context.Context, u types.User) error {
	nowMs := time.Now().UTC().UnixMilli()
	return s.writer.Do(ctx, func(ctx context.Context, tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `
INSERT INTO users(email, name, role, location, password, updated_at_ms)
VALUES (?, ?, ?, ?, ?, ?)
ON CONFLICT(email) DO UPDATE SET
  name = excluded.name,
  role = excluded.role,
  location = excluded.location,
  password = excluded.password,
  updated_at_ms = excluded.updated_at_ms;`,
			u.Email, u.Name, string(u.Role), u.Location, u.Password, nowMs,
		); err != nil {
			return fmt.Errorf("UpsertUser: %w", err)
		}
		return nil
	})
}

func (s *DirectoryStore) ListClients(ctx context.Context) ([]types.B2BClient, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT client_id, client_name, contact_person, address FROM b2b_clients ORDER BY client_id;`)
	if err != nil {
		return nil, fmt.Errorf("ListClients: %w", err)
	}
	defer rows.Close()

	out := []types.B2BClient{}
	for rows.Next() {
		var c types.B2BClient
		if err := rows.Scan(&c.ClientID, &c.ClientName, &c.ContactPerson, &c.Address); err != nil {
			return nil, fmt.Errorf("ListClients scan: %w", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ListClients rows: %w", err)
	}
	return out, nil
}

func (s *DirectoryStore) UpsertClient(ctx context.Context, c types.B2BClient) error {
	nowMs := time.Now().UTC().UnixMilli()
	return s.writer.Do(ctx, func(ctx context.Context, tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `
INSERT INTO b2b_clients(client_id, client_name, contact_person, address, updated_at_ms)
VALUES (?, ?, ?, ?, ?)
ON CONFLICT(client_id) DO UPDATE SET
  client_name = excluded.client_name,
  contact_person = excluded.contact_person,
  address = excluded.address,
  updated_at_ms = excluded.updated_at_ms;`,
			c.ClientID, c.ClientName, c.ContactPerson, c.Address, nowMs,
		); err != nil {
			return fmt.Errorf("UpsertClient: %w", err)
		}
		return nil
	})
}

var _ store.DirectoryStore = (*DirectoryStore)(nil)
