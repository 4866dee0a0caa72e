package handler

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/pesio-ai/be-procurement-settlement/internal/repository"
	"github.com/pesio-ai/be-procurement-settlement/pkg/errors"
	"github.com/pesio-ai/be-procurement-settlement/pkg/logger"
	"github.com/pesio-ai/be-procurement-settlement/pkg/metrics"
)

const (
	HeaderRequestID = "X-Request-ID"
	HeaderUserID    = "X-User-ID"
	HeaderUserRole  = "X-User-Role"
	HeaderCompanyID = "X-Company-ID"

	ctxRequestID = "request_id"
	ctxIdentity  = "identity"
)

// Identity is the caller as asserted by the upstream gateway.
type Identity struct {
	UserID    string
	Role      repository.Role
	CompanyID string
}

// RequestID propagates or assigns X-Request-ID.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(HeaderRequestID)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(ctxRequestID, id)
		c.Header(HeaderRequestID, id)
		c.Next()
	}
}

// AccessLog logs one line per request.
func AccessLog(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		event := log.Info()
		if status >= http.StatusInternalServerError {
			event = log.Error()
		} else if status >= http.StatusBadRequest {
			event = log.Warn()
		}
		event.
			Str("request_id", c.GetString(ctxRequestID)).
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", status).
			Dur("latency", time.Since(start)).
			Str("user_id", c.GetHeader(HeaderUserID)).
			Msg("HTTP request")
	}
}

// Metrics records request counts and latency per route.
func Metrics(m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.Requests.WithLabelValues(route, strconv.Itoa(c.Writer.Status())).Inc()
		m.LatencyMS.WithLabelValues(route).Observe(float64(time.Since(start).Microseconds()) / 1000)
	}
}

// Recovery turns a panic into a 500 and logs it.
func Recovery(log *logger.Logger) gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		log.Error().
			Str("request_id", c.GetString(ctxRequestID)).
			Interface("panic", recovered).
			Msg("Panic recovered")
		c.AbortWithStatusJSON(http.StatusInternalServerError, errorResponse{Error: errorBody{
			Code:    string(errors.ErrCodeInternal),
			Message: "internal server error",
		}})
	})
}

// Authenticate reads the caller identity headers. Requests without a user id
// are rejected.
func Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := strings.TrimSpace(c.GetHeader(HeaderUserID))
		if userID == "" {
			writeError(c, errors.New(errors.ErrCodeUnauthorized, HeaderUserID+" header is required"))
			c.Abort()
			return
		}

		role := repository.Role(strings.ToUpper(strings.TrimSpace(c.GetHeader(HeaderUserRole))))
		switch role {
		case repository.RoleUser, repository.RoleAdmin, repository.RoleSuperAdmin:
		case "":
			role = repository.RoleUser
		default:
			writeError(c, errors.InvalidInput("role", "unknown role '"+string(role)+"'"))
			c.Abort()
			return
		}

		c.Set(ctxIdentity, Identity{
			UserID:    userID,
			Role:      role,
			CompanyID: strings.TrimSpace(c.GetHeader(HeaderCompanyID)),
		})
		c.Next()
	}
}

func identity(c *gin.Context) Identity {
	id, _ := c.Get(ctxIdentity)
	ident, _ := id.(Identity)
	return ident
}

// writeError renders err as {"error": {...}} with the status of its code.
func writeError(c *gin.Context, err error) {
	code := errors.CodeOf(err)
	body := errorBody{Code: string(code), Message: "internal server error"}

	var appErr *errors.AppError
	if errors.As(err, &appErr) && code != errors.ErrCodeInternal {
		body.Message = appErr.Message
		body.Field = appErr.Field
	}
	c.JSON(errors.HTTPStatus(code), errorResponse{Error: body})
}
