package utils

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// ExtractUserInfo reads the authenticated user's id and role that the JWT
// middleware stored on the context. An empty id means the route was not
// guarded; the returned HTTPError lets echo write the 401.
func ExtractUserInfo(c echo.Context) (userID, role string, err error) {
	userID, _ = c.Get("userID").(string)
	role, _ = c.Get("userRole").(string)
	if userID == "" {
		return "", "", echo.NewHTTPError(http.StatusUnauthorized, "Missing authentication")
	}
	return userID, role, nil
}
