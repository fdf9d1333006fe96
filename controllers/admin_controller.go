package controllers

import (
	"crypto/subtle"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"greenledger/backend/database"
	"greenledger/backend/models"
	"greenledger/backend/utils"
)

const adminTokenTTL = 12 * time.Hour

func AdminLogin(env Env) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.AdminLoginRequest
		if err := c.ShouldBindJSON(&req); err != nil || req.Password == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
			return
		}
		if subtle.ConstantTimeCompare([]byte(req.Password), []byte(env.AdminPassword)) != 1 {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
			return
		}
		token, err := utils.GenerateJWT(env.JWTSecret, utils.RoleAdmin, adminTokenTTL)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "token error"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"token": token})
	}
}

// ListWaitlist returns every waitlist entry, newest first.
func ListWaitlist(env Env) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := env.dbContext(c.Request.Context())
		defer cancel()
		started := time.Now()
		entries, err := env.Store.ListWaitlistEntries(ctx)
		env.Metrics.ObserveStore("list_waitlist", started, err)
		if err != nil {
			respondListError(c, env, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"items": entries, "count": len(entries)})
	}
}

// ListConnections returns cloud connections newest first, optionally for one ?email=.
// Encrypted credentials are never part of the response.
func ListConnections(env Env) gin.HandlerFunc {
	return func(c *gin.Context) {
		email := strings.TrimSpace(c.Query("email"))
		ctx, cancel := env.dbContext(c.Request.Context())
		defer cancel()
		started := time.Now()
		conns, err := env.Store.ListCloudConnections(ctx, email)
		env.Metrics.ObserveStore("list_cloud_connections", started, err)
		if err != nil {
			respondListError(c, env, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"items": conns, "count": len(conns)})
	}
}

func respondListError(c *gin.Context, env Env, err error) {
	if errors.Is(err, database.ErrNotConfigured) {
		c.JSON(http.StatusInternalServerError, gin.H{"error": msgDBNotConfigured})
		return
	}
	env.Log.Errorw("admin list failed", "path", c.FullPath(), "err", err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
}

func Health() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}
