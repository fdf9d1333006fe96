package database

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"greenledger/backend/models"
)

var (
	// ErrDuplicate is returned when an insert violates a unique constraint.
	ErrDuplicate = errors.New("duplicate record")
	// ErrNotConfigured is returned by every operation when no database is configured.
	ErrNotConfigured = errors.New("database is not configured")
)

// uniqueViolation is the Postgres SQLSTATE for unique_violation.
const uniqueViolation = "23505"

// Store is the persistence gateway used by the intake and admin handlers.
// Every insert is a single statement; a failed call leaves no row behind.
type Store interface {
	InsertWaitlistEntry(ctx context.Context, e models.WaitlistEntry) (models.WaitlistEntry, error)
	ListWaitlistEntries(ctx context.Context) ([]models.WaitlistEntry, error)
	InsertCloudConnection(ctx context.Context, c models.CloudConnection) (models.CloudConnection, error)
	// ListCloudConnections returns connections newest first, filtered by email when non-empty.
	ListCloudConnections(ctx context.Context, userEmail string) ([]models.CloudConnection, error)
}

type PgStore struct {
	pool *pgxpool.Pool
}

func NewPgStore(pool *pgxpool.Pool) *PgStore {
	return &PgStore{pool: pool}
}

func (s *PgStore) InsertWaitlistEntry(ctx context.Context, e models.WaitlistEntry) (models.WaitlistEntry, error) {
	err := s.pool.QueryRow(ctx, `INSERT INTO waitlist(name, email, company, role, cloud_provider, monthly_spend)
VALUES($1,$2,$3,$4,$5,$6)
RETURNING id::text, created_at`, e.Name, e.Email, e.Company, e.Role, e.CloudProvider, e.MonthlySpend).Scan(&e.ID, &e.CreatedAt)
	if err != nil {
		return models.WaitlistEntry{}, translate("insert waitlist entry", err)
	}
	return e, nil
}

func (s *PgStore) ListWaitlistEntries(ctx context.Context) ([]models.WaitlistEntry, error) {
	rows, err := s.pool.Query(ctx, `
        SELECT id::text, name, email, company, role, cloud_provider, monthly_spend, created_at
        FROM waitlist ORDER BY created_at DESC`)
	if err != nil {
		return nil, translate("list waitlist entries", err)
	}
	defer rows.Close()
	out := []models.WaitlistEntry{}
	for rows.Next() {
		var e models.WaitlistEntry
		if err := rows.Scan(&e.ID, &e.Name, &e.Email, &e.Company, &e.Role, &e.CloudProvider, &e.MonthlySpend, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan waitlist entry: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (s *PgStore) InsertCloudConnection(ctx context.Context, c models.CloudConnection) (models.CloudConnection, error) {
	meta := c.Metadata
	if meta == nil {
		meta = map[string]string{}
	}
	mb, err := json.Marshal(meta)
	if err != nil {
		return models.CloudConnection{}, fmt.Errorf("encode metadata: %w", err)
	}
	err = s.pool.QueryRow(ctx, `INSERT INTO cloud_connections(user_email, provider, connection_name, status, encrypted_credentials, metadata)
VALUES($1,$2,$3,$4,$5,$6::jsonb)
RETURNING id::text, created_at, updated_at`,
		c.UserEmail, string(c.Provider), c.ConnectionName, string(c.Status), c.EncryptedCredentials, string(mb),
	).Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return models.CloudConnection{}, translate("insert cloud connection", err)
	}
	c.Metadata = meta
	return c, nil
}

func (s *PgStore) ListCloudConnections(ctx context.Context, userEmail string) ([]models.CloudConnection, error) {
	rows, err := s.pool.Query(ctx, `
        SELECT id::text, user_email, provider, connection_name, status, metadata::text, last_sync_at, created_at, updated_at
        FROM cloud_connections
        WHERE ($1 = '' OR user_email = $1)
        ORDER BY created_at DESC`, userEmail)
	if err != nil {
		return nil, translate("list cloud connections", err)
	}
	defer rows.Close()
	out := []models.CloudConnection{}
	for rows.Next() {
		var (
			c            models.CloudConnection
			provider     string
			status       string
			metadataText string
		)
		if err := rows.Scan(&c.ID, &c.UserEmail, &provider, &c.ConnectionName, &status, &metadataText, &c.LastSyncAt, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan cloud connection: %w", err)
		}
		c.Provider = models.Provider(provider)
		c.Status = models.ConnectionStatus(status)
		if err := json.Unmarshal([]byte(metadataText), &c.Metadata); err != nil {
			return nil, fmt.Errorf("decode metadata for %s: %w", c.ID, err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func translate(op string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return fmt.Errorf("%s: %w", op, ErrDuplicate)
	}
	return fmt.Errorf("%s: %w", op, err)
}

// Unconfigured is the Store used when no database URL is set.
type Unconfigured struct{}

func (Unconfigured) InsertWaitlistEntry(context.Context, models.WaitlistEntry) (models.WaitlistEntry, error) {
	return models.WaitlistEntry{}, ErrNotConfigured
}

func (Unconfigured) ListWaitlistEntries(context.Context) ([]models.WaitlistEntry, error) {
	return nil, ErrNotConfigured
}

func (Unconfigured) InsertCloudConnection(context.Context, models.CloudConnection) (models.CloudConnection, error) {
	return models.CloudConnection{}, ErrNotConfigured
}

func (Unconfigured) ListCloudConnections(context.Context, string) ([]models.CloudConnection, error) {
	return nil, ErrNotConfigured
}
