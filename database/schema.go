package database

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

var schemaStatements = []string{
	`CREATE EXTENSION IF NOT EXISTS pgcrypto`,
	`CREATE TABLE IF NOT EXISTS waitlist (
        id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
        name TEXT NOT NULL,
        email TEXT NOT NULL UNIQUE,
        company TEXT NOT NULL,
        role TEXT,
        cloud_provider TEXT,
        monthly_spend TEXT,
        created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
        updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
    )`,
	`CREATE INDEX IF NOT EXISTS waitlist_created_at_idx ON waitlist(created_at DESC)`,
	`CREATE TABLE IF NOT EXISTS cloud_connections (
        id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
        user_email TEXT NOT NULL,
        provider TEXT NOT NULL CHECK (provider IN ('aws','gcp','azure')),
        connection_name TEXT NOT NULL,
        status TEXT NOT NULL DEFAULT 'pending' CHECK (status IN ('pending','connected','failed','disconnected')),
        encrypted_credentials TEXT NOT NULL,
        metadata JSONB NOT NULL DEFAULT '{}'::jsonb,
        last_sync_at TIMESTAMPTZ,
        created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
        updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
    )`,
	`CREATE INDEX IF NOT EXISTS cloud_connections_user_email_idx ON cloud_connections(user_email, created_at DESC)`,
}

// EnsureSchema creates required extensions and tables if they do not exist.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	if pool == nil {
		return ErrNotConfigured
	}
	for _, s := range schemaStatements {
		if _, err := pool.Exec(ctx, s); err != nil {
			return fmt.Errorf("schema ensure: %w in stmt: %s", err, s)
		}
	}
	return nil
}
