package models

import "time"

type ConnectionStatus string

const (
	StatusPending      ConnectionStatus = "pending"
	StatusConnected    ConnectionStatus = "connected"
	StatusFailed       ConnectionStatus = "failed"
	StatusDisconnected ConnectionStatus = "disconnected"
)

// CloudConnection is a persisted cloud_connections row. New rows are always pending;
// the reconciliation job that consumes connection checks owns every later status.
type CloudConnection struct {
	ID                   string            `json:"id"`
	UserEmail            string            `json:"user_email"`
	Provider             Provider          `json:"provider"`
	ConnectionName       string            `json:"connection_name"`
	Status               ConnectionStatus  `json:"status"`
	EncryptedCredentials string            `json:"-"`
	Metadata             map[string]string `json:"metadata"`
	LastSyncAt           *time.Time        `json:"last_sync_at"`
	CreatedAt            time.Time         `json:"created_at"`
	UpdatedAt            time.Time         `json:"updated_at"`
}

// ConnectionReceipt is the "connection" object returned after a successful submission.
type ConnectionReceipt struct {
	ID        string           `json:"id"`
	Provider  Provider         `json:"provider"`
	Status    ConnectionStatus `json:"status"`
	CreatedAt time.Time        `json:"created_at"`
}
