package dashboard

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/lfdantoni/dashboard-ai/internal/logger"
	"github.com/lfdantoni/dashboard-ai/internal/middleware"
	"github.com/lfdantoni/dashboard-ai/internal/user"
)

const serviceName = "dashboard-backend"

type Handler struct {
	users user.Store
}

func NewHandler(users user.Store) *Handler {
	return &Handler{users: users}
}

// Info returns the dashboard payload for the authenticated user. The
// project and task counters are sample figures; the user counts come from
// the store and degrade to zero when it is unreachable.
func (h *Handler) Info(c *gin.Context) {
	identity, ok := middleware.IdentityFromContext(c.Request.Context())
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
		return
	}

	totalUsers, err := h.users.CountUsers(c.Request.Context())
	if err != nil {
		logger.Warn("dashboard user count unavailable", zap.Error(err))
		totalUsers = 0
	}

	activeUsers := 0
	if active, err := h.users.FindAllActive(c.Request.Context()); err != nil {
		logger.Warn("dashboard active users unavailable", zap.Error(err))
	} else {
		activeUsers = len(active)
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Dashboard data for authenticated user",
		"user": gin.H{
			"email":   identity.Email,
			"name":    identity.Name,
			"picture": identity.Picture,
			"sub":     identity.GoogleID,
		},
		"stats": gin.H{
			"totalUsers":     totalUsers,
			"activeUsers":    activeUsers,
			"activeProjects": 42,
			"pendingTasks":   15,
		},
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// Health is the unauthenticated liveness endpoint.
func Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "ok",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"service":   serviceName,
	})
}

// Hello is the root welcome route.
func Hello(c *gin.Context) {
	c.String(http.StatusOK, "Dashboard AI API")
}
