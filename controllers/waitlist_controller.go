package controllers

import (
	"context"
	"errors"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"greenledger/backend/database"
	"greenledger/backend/models"
)

var emailRe = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

const (
	msgWaitlistMissing  = "Missing required fields: name, email, and company are required"
	msgInvalidEmail     = "Invalid email format"
	msgWaitlistJoined   = "Successfully added to waitlist!"
	msgAlreadyOnList    = "This email is already on our waitlist! We'll be in touch soon."
	msgDBNotConfigured  = "Database is not configured yet. Please set up your Supabase credentials."
	msgWaitlistFallback = "Something went wrong. Please try again later."
)

// JoinWaitlist handles POST /api/waitlist.
func JoinWaitlist(env Env) gin.HandlerFunc {
	lggr := env.Log.Named("waitlist")
	return func(c *gin.Context) {
		var req models.WaitlistRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			env.Metrics.ObserveIntake("waitlist", models.KindValidation.String())
			c.JSON(http.StatusBadRequest, gin.H{"message": "invalid body"})
			return
		}

		entry, err := addToWaitlist(c.Request.Context(), env, req)
		if err != nil {
			ie := models.AsIntakeError(err, msgWaitlistFallback)
			env.Metrics.ObserveIntake("waitlist", ie.Kind.String())
			if ie.Status() >= 500 {
				lggr.Errorw("waitlist insert failed", "kind", ie.Kind.String(), "err", ie.Err, "request_id", c.GetString("request_id"))
			}
			// validation errors use "message", everything else "error"
			key := "error"
			if ie.Kind == models.KindValidation {
				key = "message"
			}
			c.JSON(ie.Status(), gin.H{key: ie.Message})
			return
		}

		env.Metrics.ObserveIntake("waitlist", "created")
		lggr.Infow("waitlist entry created", "id", entry.ID)
		c.JSON(http.StatusCreated, gin.H{
			"message": msgWaitlistJoined,
			"data": gin.H{
				"id":      entry.ID,
				"name":    entry.Name,
				"email":   entry.Email,
				"company": entry.Company,
			},
		})
	}
}

func addToWaitlist(ctx context.Context, env Env, req models.WaitlistRequest) (models.WaitlistEntry, error) {
	entry := models.WaitlistEntry{
		Name:          strings.TrimSpace(req.Name),
		Email:         strings.ToLower(strings.TrimSpace(req.Email)),
		Company:       strings.TrimSpace(req.Company),
		Role:          optional(req.Role),
		CloudProvider: nullable(req.CloudProvider),
		MonthlySpend:  nullable(req.MonthlySpend),
	}
	if entry.Name == "" || entry.Email == "" || entry.Company == "" {
		return models.WaitlistEntry{}, models.ValidationError(msgWaitlistMissing)
	}
	if !emailRe.MatchString(entry.Email) {
		return models.WaitlistEntry{}, models.ValidationError(msgInvalidEmail)
	}

	ctx, cancel := env.dbContext(ctx)
	defer cancel()
	started := time.Now()
	out, err := env.Store.InsertWaitlistEntry(ctx, entry)
	env.Metrics.ObserveStore("insert_waitlist", started, err)
	switch {
	case err == nil:
		return out, nil
	case errors.Is(err, database.ErrDuplicate):
		return models.WaitlistEntry{}, models.ConflictError(msgAlreadyOnList, err)
	case errors.Is(err, database.ErrNotConfigured):
		return models.WaitlistEntry{}, models.ConfigurationError(msgDBNotConfigured, err)
	default:
		return models.WaitlistEntry{}, models.UnknownError(msgWaitlistFallback, err)
	}
}

// nullable keeps s as sent and maps only the empty string to NULL.
func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
