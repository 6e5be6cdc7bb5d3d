package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"fleetdesk/backend/internal/service"
	"fleetdesk/backend/pkg/jwt"
	"fleetdesk/backend/pkg/response"
)

// Context keys written by middleware.JWTAuth.
const (
	ctxUserID    = "user_id"
	ctxRole      = "role"
	ctxStationID = "station_id"
	ctxDriverID  = "driver_id"
	ctxClaims    = "claims"
)

// MustGetCaller builds the service caller from the verified token.
// It writes a 401 and returns false when the JWT middleware did not run;
// callers return immediately in that case.
func MustGetCaller(c *gin.Context) (service.Caller, bool) {
	userID := c.GetString(ctxUserID)
	role := c.GetString(ctxRole)
	if userID == "" || role == "" {
		response.Unauthorized(c, response.CodeUnauthorized, "not authenticated")
		return service.Caller{}, false
	}
	return service.Caller{
		UserID:    userID,
		Role:      role,
		StationID: c.GetString(ctxStationID),
		DriverID:  c.GetString(ctxDriverID),
	}, true
}

// MustGetClaims returns the access token claims, needed to revoke the token.
func MustGetClaims(c *gin.Context) (*jwt.Claims, bool) {
	v, exists := c.Get(ctxClaims)
	if !exists {
		response.Unauthorized(c, response.CodeUnauthorized, "not authenticated")
		return nil, false
	}
	claims, ok := v.(*jwt.Claims)
	if !ok || claims == nil {
		response.Unauthorized(c, response.CodeUnauthorized, "not authenticated")
		return nil, false
	}
	return claims, true
}

func bindFailed(c *gin.Context, err error) {
	response.ErrorWithDetails(c, http.StatusBadRequest, response.CodeBadRequest, "invalid request parameters", err.Error())
}
