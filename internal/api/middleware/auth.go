package middleware

import (
	"errors"
	"net/http"

	"homechef-delivery/internal/models"
	"homechef-delivery/pkg/utils"

	"github.com/golang-jwt/jwt/v5"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
)

// JWTMAuth configures and returns Echo's JWT middleware. Requests without a
// valid bearer token are answered 401.
func JWTMAuth(jwtSecretKey string) echo.MiddlewareFunc {
	return echojwt.WithConfig(jwtConfig(jwtSecretKey, nil))
}

// OptionalJWTAuth authenticates the request when it carries an Authorization
// header and lets it through as a guest otherwise. A token that is present but
// invalid is still rejected.
func OptionalJWTAuth(jwtSecretKey string) echo.MiddlewareFunc {
	return echojwt.WithConfig(jwtConfig(jwtSecretKey, func(c echo.Context) bool {
		return c.Request().Header.Get(echo.HeaderAuthorization) == ""
	}))
}

func jwtConfig(jwtSecretKey string, skipper func(echo.Context) bool) echojwt.Config {
	return echojwt.Config{
		Skipper: skipper,
		// The middleware parses into our claims type.
		NewClaimsFunc: func(c echo.Context) jwt.Claims {
			return new(models.JwtCustomClaims)
		},
		SigningKey: []byte(jwtSecretKey),

		// Copy the claims the handlers read into the context.
		SuccessHandler: func(c echo.Context) {
			// "user" is the default context key used by echo-jwt
			userToken := c.Get("user").(*jwt.Token)
			claims := userToken.Claims.(*models.JwtCustomClaims)

			c.Set(utils.UserIDKey, claims.UserID)
			c.Set(utils.UserRoleKey, claims.Role)
			c.Set(utils.UserPhoneKey, claims.Phone)
		},

		ErrorHandler: func(c echo.Context, err error) error {
			c.Logger().Debugf("JWT error: %v", err)

			msg := "Invalid or expired JWT"
			switch {
			case errors.Is(err, echojwt.ErrJWTMissing):
				msg = "Missing or malformed JWT"
			case errors.Is(err, jwt.ErrTokenMalformed):
				msg = "Token is malformed"
			case errors.Is(err, jwt.ErrTokenExpired):
				msg = "Token has expired"
			case errors.Is(err, jwt.ErrTokenSignatureInvalid):
				msg = "Invalid token signature"
			}
			return c.JSON(http.StatusUnauthorized, models.ErrorResponse{Message: msg})
		},
	}
}

// AdminRequired must run after JWTMAuth.
func AdminRequired() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if role, _ := c.Get(utils.UserRoleKey).(string); role != models.RoleAdmin {
				return c.JSON(http.StatusForbidden, models.ErrorResponse{Message: models.ErrForbidden.Error()})
			}
			return next(c)
		}
	}
}
