package controllers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"greenledger/backend/models"
)

// =============================================================================
// CreateCloudConnection Tests
// =============================================================================

func gcpPayload() map[string]any {
	return map[string]any{
		"provider": "gcp",
		"credentials": map[string]string{
			"projectId":         "carbon-prod",
			"serviceAccountKey": `{"type":"service_account","private_key":"-----BEGIN-----"}`,
		},
		"userEmail":      "ops@acme.io",
		"connectionName": "Prod GCP",
	}
}

func TestCreateCloudConnection_GCPPending(t *testing.T) {
	h := newHarness(t)
	payload := gcpPayload()

	w, body := do(t, h.router, "POST", "/api/cloud-connection", payload)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, msgConnectionCreated, body["message"])
	conn := body["connection"].(map[string]any)
	assert.Equal(t, "pending", conn["status"])
	assert.Equal(t, "gcp", conn["provider"])
	assert.NotEmpty(t, conn["id"])
	assert.NotEmpty(t, conn["created_at"])
	assert.NotContains(t, w.Body.String(), "carbon-prod")

	stored := h.store.last
	assert.Equal(t, models.StatusPending, stored.Status)
	assert.Equal(t, "Prod GCP", stored.ConnectionName)
	assert.Equal(t, map[string]string{"project_id": "carbon-prod"}, stored.Metadata)

	plaintext, err := json.Marshal(payload["credentials"])
	require.NoError(t, err)
	assert.NotEqual(t, string(plaintext), stored.EncryptedCredentials)
	assert.NotContains(t, stored.EncryptedCredentials, "service_account")

	opened, err := h.enc.Decrypt(stored.EncryptedCredentials)
	require.NoError(t, err)
	var creds models.GCPCredentials
	require.NoError(t, json.Unmarshal([]byte(opened), &creds))
	assert.Equal(t, "carbon-prod", creds.ProjectID)

	checks := h.followups.scheduled()
	require.Len(t, checks, 1)
	assert.Equal(t, stored.ID, checks[0].ConnectionID)
	assert.Equal(t, models.ProviderGCP, checks[0].Provider)
}

func TestCreateCloudConnection_IdenticalCredentialsGetDistinctEnvelopes(t *testing.T) {
	h := newHarness(t)

	w, _ := do(t, h.router, "POST", "/api/cloud-connection", gcpPayload())
	require.Equal(t, http.StatusOK, w.Code)
	first := h.store.last.EncryptedCredentials

	w, _ = do(t, h.router, "POST", "/api/cloud-connection", gcpPayload())
	require.Equal(t, http.StatusOK, w.Code)

	assert.NotEqual(t, first, h.store.last.EncryptedCredentials)
}

func TestCreateCloudConnection_MetadataPerProvider(t *testing.T) {
	tests := []struct {
		provider string
		creds    map[string]string
		want     map[string]string
	}{
		{"aws", map[string]string{"accessKey": "AKIA", "secretKey": "s", "region": "eu-north-1"}, map[string]string{"region": "eu-north-1"}},
		{"azure", map[string]string{"subscriptionId": "sub-1", "tenantId": "t", "clientId": "c", "clientSecret": "s"}, map[string]string{"subscription_id": "sub-1"}},
	}
	for _, tt := range tests {
		t.Run(tt.provider, func(t *testing.T) {
			h := newHarness(t)

			w, _ := do(t, h.router, "POST", "/api/cloud-connection", map[string]any{
				"provider": tt.provider, "credentials": tt.creds, "userEmail": "ops@acme.io",
			})

			require.Equal(t, http.StatusOK, w.Code)
			assert.Equal(t, tt.want, h.store.last.Metadata)
			assert.Equal(t, models.Provider(tt.provider).DefaultConnectionName(), h.store.last.ConnectionName)
		})
	}
}

func TestCreateCloudConnection_AWSMissingSecretKey(t *testing.T) {
	h := newHarness(t)

	w, body := do(t, h.router, "POST", "/api/cloud-connection", map[string]any{
		"provider":    "aws",
		"credentials": map[string]string{"accessKey": "AKIA", "region": "us-east-1"},
		"userEmail":   "ops@acme.io",
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, msgInvalidCredentials, body["message"])
	conns, _ := h.store.ListCloudConnections(context.Background(), "")
	assert.Empty(t, conns)
	assert.Empty(t, h.followups.scheduled())
}

func TestCreateCloudConnection_ValidationErrors(t *testing.T) {
	creds := map[string]string{"accessKey": "AKIA", "secretKey": "s", "region": "r"}
	tests := []struct {
		name    string
		payload map[string]any
		message string
	}{
		{"missing provider", map[string]any{"credentials": creds, "userEmail": "a@b.co"}, msgMissingFields},
		{"missing credentials", map[string]any{"provider": "aws", "userEmail": "a@b.co"}, msgMissingFields},
		{"null credentials", map[string]any{"provider": "aws", "credentials": nil, "userEmail": "a@b.co"}, msgMissingFields},
		{"missing email", map[string]any{"provider": "aws", "credentials": creds}, msgMissingFields},
		{"zero credentials", map[string]any{"provider": "aws", "credentials": 0, "userEmail": "a@b.co"}, msgMissingFields},
		{"unknown provider", map[string]any{"provider": "oracle", "credentials": creds, "userEmail": "a@b.co"}, msgInvalidProvider},
		{"upper-case provider", map[string]any{"provider": "AWS", "credentials": creds, "userEmail": "a@b.co"}, msgInvalidProvider},
		{"padded provider", map[string]any{"provider": " aws ", "credentials": creds, "userEmail": "a@b.co"}, msgInvalidProvider},
		{"mixed-case provider", map[string]any{"provider": "Gcp", "credentials": creds, "userEmail": "a@b.co"}, msgInvalidProvider},
		{"credentials not an object", map[string]any{"provider": "aws", "credentials": "AKIA", "userEmail": "a@b.co"}, msgInvalidCredentials},
		{"wrong provider fields", map[string]any{"provider": "gcp", "credentials": creds, "userEmail": "a@b.co"}, msgInvalidCredentials},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t)

			w, body := do(t, h.router, "POST", "/api/cloud-connection", tt.payload)

			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Equal(t, tt.message, body["message"])
			conns, _ := h.store.ListCloudConnections(context.Background(), "")
			assert.Empty(t, conns)
		})
	}
}

func TestCreateCloudConnection_InternalErrors(t *testing.T) {
	t.Run("encryption", func(t *testing.T) {
		h := newHarness(t)
		h.env.Encryptor = failingEncryptor{}

		w, body := do(t, newRouter(h.env), "POST", "/api/cloud-connection", gcpPayload())

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.Equal(t, msgInternal, body["message"])
		assert.Empty(t, h.followups.scheduled())
	})
	t.Run("persistence", func(t *testing.T) {
		h := newHarness(t)
		h.env.Store = failingStore{err: errors.New("deadline exceeded")}

		w, body := do(t, newRouter(h.env), "POST", "/api/cloud-connection", gcpPayload())

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.Equal(t, msgInternal, body["message"])
		assert.Empty(t, h.followups.scheduled())
	})
}

func TestCreateCloudConnection_MethodNotAllowed(t *testing.T) {
	h := newHarness(t)

	for _, method := range []string{"GET", "PUT", "DELETE"} {
		w, body := do(t, h.router, method, "/api/cloud-connection", nil)
		assert.Equal(t, http.StatusMethodNotAllowed, w.Code, method)
		assert.Equal(t, "Method not allowed", body["message"])
	}
}
