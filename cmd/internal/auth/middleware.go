package auth

import (
	"errors"
	"strings"

	"atendimentos/cmd/internal/utils/apierror"

	"github.com/labstack/echo/v4"
)

const tokenDataKey = "tokenData"

type TokenParser interface {
	Parse(raw string) (*TokenData, error)
}

// Middleware rejects requests without a valid bearer token: 401 when the
// header is missing or malformed, 403 when the token does not verify.
func Middleware(parser TokenParser) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := strings.TrimSpace(c.Request().Header.Get(echo.HeaderAuthorization))
			scheme, raw, ok := strings.Cut(header, " ")
			if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(raw) == "" {
				return c.JSON(apierror.MissingAuthTokenError.Code(), apierror.MissingAuthTokenError)
			}

			data, err := parser.Parse(strings.TrimSpace(raw))
			if err != nil {
				return c.JSON(apierror.InvalidAuthTokenError.Code(), apierror.InvalidAuthTokenError)
			}

			c.Set(tokenDataKey, data)
			return next(c)
		}
	}
}

// TokenDataCtx returns the token data stored by Middleware.
func TokenDataCtx(c echo.Context) (*TokenData, error) {
	data, ok := c.Get(tokenDataKey).(*TokenData)
	if !ok || data == nil {
		return nil, errors.New("no token data in context")
	}
	return data, nil
}
