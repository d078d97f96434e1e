// Package api wires the HTTP surface: middleware, route registration and
// handler construction.
package api

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/expenseshare/server/internal/cache"
	"github.com/expenseshare/server/internal/config"
	"github.com/expenseshare/server/internal/http/api/handlers"
	"github.com/expenseshare/server/internal/ledger"
	"github.com/expenseshare/server/internal/metrics"
	"github.com/expenseshare/server/internal/models"
	"github.com/expenseshare/server/internal/security"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// RequestLogger tags each request with an ID and logs its outcome.
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := uuid.NewString()
		c.Set("requestID", requestID)
		c.Header("X-Request-ID", requestID)

		start := time.Now()
		c.Next()

		entry := log.WithFields(log.Fields{
			"request_id": requestID,
			"method":     c.Request.Method,
			"path":       c.Request.URL.Path,
			"status":     c.Writer.Status(),
			"duration":   time.Since(start).String(),
		})
		if c.Writer.Status() >= http.StatusInternalServerError {
			entry.Error("request failed")
		} else {
			entry.Debug("request handled")
		}
	}
}

// UserAuth validates the Bearer token and loads the account behind it.
// The user ID is placed in the context for handlers.
func UserAuth(db *gorm.DB, jwtCfg config.JWTConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing authorization header"})
			return
		}
		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid authorization header"})
			return
		}

		claims, errParse := security.ParseToken(jwtCfg.Secret, strings.TrimSpace(parts[1]))
		if errParse != nil {
			if errors.Is(errParse, security.ErrExpiredToken) {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "token expired"})
				return
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		var user models.User
		if errFind := db.WithContext(c.Request.Context()).First(&user, claims.UserID).Error; errFind != nil {
			if errors.Is(errFind, gorm.ErrRecordNotFound) {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "account no longer exists"})
				return
			}
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
			return
		}

		c.Set("userID", user.ID)
		c.Set("userName", user.Name)
		c.Next()
	}
}

// RegisterRoutes mounts all endpoints on the engine.
func RegisterRoutes(engine *gin.Engine, db *gorm.DB, jwtCfg config.JWTConfig, details cache.GroupDetails) {
	groupSvc := ledger.NewGroupService(db)
	memberSvc := ledger.NewMemberService(db)
	expenseSvc := ledger.NewExpenseService(db)
	splitSvc := ledger.NewSplitService(db)

	authHandler := handlers.NewAuthHandler(db, jwtCfg)
	userHandler := handlers.NewUserHandler(db)
	groupHandler := handlers.NewGroupHandler(groupSvc, details)
	memberHandler := handlers.NewMemberHandler(memberSvc, details)
	expenseHandler := handlers.NewExpenseHandler(expenseSvc, details)
	splitHandler := handlers.NewSplitHandler(splitSvc)

	engine.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	engine.GET("/metrics", gin.WrapH(metrics.Handler()))

	engine.POST("/api/auth/register", authHandler.Register)
	engine.POST("/api/auth/login", authHandler.Login)

	authed := engine.Group("/api")
	authed.Use(UserAuth(db, jwtCfg))
	{
		users := authed.Group("/users")
		users.GET("", userHandler.List)
		users.GET("/:id", userHandler.Get)
		users.PUT("/:id", userHandler.Update)
		users.GET("/:id/groups", groupHandler.ListByAdmin)
		users.GET("/:id/memberships", memberHandler.ListByUser)

		groups := authed.Group("/groups")
		groups.POST("", groupHandler.Create)
		groups.GET("", groupHandler.List)
		groups.GET("/:id", groupHandler.Get)
		groups.GET("/:id/details", groupHandler.Details)
		groups.PUT("/:id", groupHandler.Update)
		groups.DELETE("/:id", groupHandler.Delete)
		groups.GET("/:id/members", memberHandler.ListByGroup)
		groups.GET("/:id/expenses", expenseHandler.ListByGroup)

		members := authed.Group("/members")
		members.POST("", memberHandler.Add)
		members.GET("/:id", memberHandler.Get)

		expenses := authed.Group("/expenses")
		expenses.POST("", expenseHandler.Create)
		expenses.GET("/:id", expenseHandler.Get)
		expenses.PUT("/:id", expenseHandler.Update)
		expenses.PUT("/:id/settle", expenseHandler.Settle)
		expenses.DELETE("/:id", expenseHandler.Delete)
		expenses.GET("/:id/splits", splitHandler.ListByExpense)

		splits := authed.Group("/splits")
		splits.PUT("/:id", splitHandler.Update)
		splits.DELETE("/:id", splitHandler.Delete)
	}
}
