package routes

import (
	"atendimentos/cmd/internal/auth"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"
)

// RequestLogger writes one line per request. Authenticated requests carry
// the token subject.
func RequestLogger() echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:   true,
		LogURI:      true,
		LogStatus:   true,
		LogLatency:  true,
		LogRemoteIP: true,
		HandleError: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			sub := "-"
			if data, err := auth.TokenDataCtx(c); err == nil {
				sub = data.Sub
			}
			log.Infof("%s %s %d %s %s sub=%s", v.Method, v.URI, v.Status, v.Latency, v.RemoteIP, sub)
			return nil
		},
	})
}
