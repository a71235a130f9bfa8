package handlers

import (
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/linkuphq/backend/internal/models"
)

// getClaimsFromContext returns the JWT claims stored by the auth
// middleware, or nil on an unauthenticated request.
func getClaimsFromContext(c echo.Context) *models.JwtCustomClaims {
	claims, _ := c.Get("user").(*models.JwtCustomClaims)
	return claims
}

// getUserIDFromContext extracts the authenticated user's ID from the
// request context. Returns 0 when the request carries no valid claims.
func getUserIDFromContext(c echo.Context) uint {
	if claims := getClaimsFromContext(c); claims != nil {
		return claims.UserID
	}
	return 0
}

// clampPagination reads the page and page_size query parameters,
// clamping out-of-range values instead of rejecting the request.
func clampPagination(c echo.Context) (page, pageSize int) {
	page, _ = strconv.Atoi(c.QueryParam("page"))
	pageSize, _ = strconv.Atoi(c.QueryParam("page_size"))
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 50 {
		pageSize = 20
	}
	return page, pageSize
}
