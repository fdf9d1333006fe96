package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
	"greenledger/backend/database"
	"greenledger/backend/jobs"
	"greenledger/backend/logger"
	"greenledger/backend/models"
	"greenledger/backend/observability"
	"greenledger/backend/utils"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// =============================================================================
// Test Setup
// =============================================================================

type recordingFollowups struct {
	mu     sync.Mutex
	checks []jobs.ConnectionCheck
}

func (r *recordingFollowups) Schedule(check jobs.ConnectionCheck) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.checks = append(r.checks, check)
}

func (r *recordingFollowups) scheduled() []jobs.ConnectionCheck {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]jobs.ConnectionCheck(nil), r.checks...)
}

// capturingStore wraps MemoryStore and keeps the last connection handed to it.
type capturingStore struct {
	*database.MemoryStore
	mu   sync.Mutex
	last models.CloudConnection
}

func (s *capturingStore) InsertCloudConnection(ctx context.Context, c models.CloudConnection) (models.CloudConnection, error) {
	out, err := s.MemoryStore.InsertCloudConnection(ctx, c)
	s.mu.Lock()
	s.last = out
	s.mu.Unlock()
	return out, err
}

type failingStore struct {
	database.Unconfigured
	err error
}

func (f failingStore) InsertWaitlistEntry(context.Context, models.WaitlistEntry) (models.WaitlistEntry, error) {
	return models.WaitlistEntry{}, f.err
}

func (f failingStore) InsertCloudConnection(context.Context, models.CloudConnection) (models.CloudConnection, error) {
	return models.CloudConnection{}, f.err
}

func (f failingStore) ListWaitlistEntries(context.Context) ([]models.WaitlistEntry, error) {
	return nil, f.err
}

type failingEncryptor struct{}

func (failingEncryptor) Encrypt(string) (string, error) { return "", errors.New("entropy exhausted") }

type harness struct {
	env       Env
	store     *capturingStore
	followups *recordingFollowups
	enc       *utils.CredentialEncryptor
	router    *gin.Engine
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	enc, err := utils.NewCredentialEncryptor("controllers-test-secret")
	require.NoError(t, err)
	h := &harness{
		store:     &capturingStore{MemoryStore: database.NewMemoryStore()},
		followups: &recordingFollowups{},
		enc:       enc,
	}
	h.env = Env{
		Store:         h.store,
		Encryptor:     enc,
		Followups:     h.followups,
		Log:           logger.Test(t),
		Metrics:       observability.NewMetrics(prometheus.NewRegistry()),
		DBTimeout:     time.Second,
		JWTSecret:     "jwt-secret",
		AdminPassword: "letmein",
	}
	h.router = newRouter(h.env)
	return h
}

func newRouter(env Env) *gin.Engine {
	r := gin.New()
	r.HandleMethodNotAllowed = true
	r.NoMethod(MethodNotAllowed())
	r.POST("/api/waitlist", JoinWaitlist(env))
	r.POST("/api/cloud-connection", CreateCloudConnection(env))
	r.POST("/api/admin/login", AdminLogin(env))
	r.GET("/api/admin/waitlist", ListWaitlist(env))
	r.GET("/api/admin/connections", ListConnections(env))
	r.GET("/health", Health())
	return r
}

func do(t *testing.T, r http.Handler, method, path string, body any) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	var buf bytes.Buffer
	switch b := body.(type) {
	case nil:
	case string:
		buf.WriteString(b)
	default:
		require.NoError(t, json.NewEncoder(&buf).Encode(b))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	out := map[string]any{}
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	}
	return w, out
}
