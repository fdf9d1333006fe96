package controllers

import (
	"context"
	"time"

	"greenledger/backend/database"
	"greenledger/backend/jobs"
	"greenledger/backend/logger"
	"greenledger/backend/observability"
)

// FollowupScheduler queues a connection check without blocking the request.
type FollowupScheduler interface {
	Schedule(check jobs.ConnectionCheck)
}

// Encryptor seals a credential blob into an "ivHex:cipherHex" envelope.
type Encryptor interface {
	Encrypt(plaintext string) (string, error)
}

// Env carries the collaborators shared by every handler.
type Env struct {
	Store     database.Store
	Encryptor Encryptor
	Followups FollowupScheduler
	Log       logger.Logger
	Metrics   *observability.Metrics
	DBTimeout time.Duration

	JWTSecret     string
	AdminPassword string
}

func (e Env) dbContext(parent context.Context) (context.Context, context.CancelFunc) {
	d := e.DBTimeout
	if d <= 0 {
		d = 5 * time.Second
	}
	return context.WithTimeout(parent, d)
}
