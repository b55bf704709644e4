package utils

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

const (
	UserIDKey    = "userID"
	UserRoleKey  = "userRole"
	UserPhoneKey = "userPhone"
)

// ExtractUserInfo returns the authenticated user's id and role, set by the JWT middleware.
func ExtractUserInfo(c echo.Context) (string, string, error) {
	userID, ok := c.Get(UserIDKey).(string)
	if !ok || userID == "" {
		return "", "", echo.NewHTTPError(http.StatusUnauthorized, "Authentication required")
	}
	role, _ := c.Get(UserRoleKey).(string)
	return userID, role, nil
}

// OptionalUserID returns the authenticated user's id, or "" for guests.
func OptionalUserID(c echo.Context) string {
	userID, _ := c.Get(UserIDKey).(string)
	return userID
}
