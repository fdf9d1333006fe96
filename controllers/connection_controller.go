package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"greenledger/backend/jobs"
	"greenledger/backend/models"
)

const (
	msgMissingFields      = "Missing required fields"
	msgInvalidProvider    = "Invalid provider"
	msgInvalidCredentials = "Invalid credentials format"
	msgConnectionCreated  = "Cloud connection created successfully"
	msgInternal           = "Internal server error"
)

// CreateCloudConnection handles POST /api/cloud-connection. The connection is stored
// as pending and a connection check is queued after the response is decided.
func CreateCloudConnection(env Env) gin.HandlerFunc {
	lggr := env.Log.Named("cloud_connection")
	return func(c *gin.Context) {
		var req models.CloudConnectionRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			env.Metrics.ObserveIntake("cloud_connection", models.KindValidation.String())
			c.JSON(http.StatusBadRequest, gin.H{"message": "invalid body"})
			return
		}

		conn, err := createConnection(c.Request.Context(), env, req)
		if err != nil {
			ie := models.AsIntakeError(err, msgInternal)
			env.Metrics.ObserveIntake("cloud_connection", ie.Kind.String())
			if ie.Status() >= 500 {
				lggr.Errorw("cloud connection failed", "kind", ie.Kind.String(), "err", ie.Err, "request_id", c.GetString("request_id"))
			}
			c.JSON(ie.Status(), gin.H{"message": ie.Message})
			return
		}

		env.Followups.Schedule(jobs.NewConnectionCheck(conn))
		env.Metrics.ObserveIntake("cloud_connection", "created")
		lggr.Infow("cloud connection created", "id", conn.ID, "provider", conn.Provider)
		c.JSON(http.StatusOK, gin.H{
			"message": msgConnectionCreated,
			"connection": gin.H{
				"id":         conn.ID,
				"provider":   conn.Provider,
				"status":     conn.Status,
				"created_at": conn.CreatedAt,
			},
		})
	}
}

func createConnection(ctx context.Context, env Env, req models.CloudConnectionRequest) (models.CloudConnection, error) {
	email := strings.TrimSpace(req.UserEmail)
	if strings.TrimSpace(req.Provider) == "" || isAbsent(req.Credentials) || email == "" {
		return models.CloudConnection{}, models.ValidationError(msgMissingFields)
	}
	provider, ok := models.ParseProvider(req.Provider)
	if !ok {
		return models.CloudConnection{}, models.ValidationError(msgInvalidProvider)
	}
	creds, err := models.DecodeCredentials(provider, req.Credentials)
	if err != nil {
		return models.CloudConnection{}, &models.IntakeError{Kind: models.KindValidation, Message: msgInvalidCredentials, Err: err}
	}

	plaintext, err := json.Marshal(creds)
	if err != nil {
		return models.CloudConnection{}, models.UnknownError(msgInternal, err)
	}
	sealed, err := env.Encryptor.Encrypt(string(plaintext))
	if err != nil {
		return models.CloudConnection{}, models.UnknownError(msgInternal, err)
	}

	name := strings.TrimSpace(req.ConnectionName)
	if name == "" {
		name = provider.DefaultConnectionName()
	}
	conn := models.CloudConnection{
		UserEmail:            email,
		Provider:             provider,
		ConnectionName:       name,
		Status:               models.StatusPending,
		EncryptedCredentials: sealed,
		Metadata:             creds.Metadata(),
	}

	ctx, cancel := env.dbContext(ctx)
	defer cancel()
	started := time.Now()
	out, err := env.Store.InsertCloudConnection(ctx, conn)
	env.Metrics.ObserveStore("insert_cloud_connection", started, err)
	if err != nil {
		return models.CloudConnection{}, models.UnknownError(msgInternal, err)
	}
	return out, nil
}

func isAbsent(raw json.RawMessage) bool {
	s := strings.TrimSpace(string(raw))
	return s == "" || s == "null" || s == `""` || s == "false" || s == "0"
}

// MethodNotAllowed answers any unsupported method on a known route.
func MethodNotAllowed() gin.HandlerFunc {
	return func(c *gin.Context) {
		ie := models.MethodNotAllowedError()
		c.JSON(ie.Status(), gin.H{"message": ie.Message})
	}
}
