package routes

import (
	"errors"
	"net/http"

	"atendimentos/cmd/internal/utils/apierror"

	"github.com/labstack/echo/v4"
	"github.com/labstack/gommon/log"
)

type Handlers struct {
	Appointments *DefaultAppointmentRoute
	Statistics   *DefaultStatisticsRoute
	Auth         *DefaultAuthRoute
	Health       *DefaultHealthRoute

	// Authenticate guards every route except login and wake-up.
	Authenticate echo.MiddlewareFunc
}

// Register mounts the public and the protected routes on e.
func Register(e *echo.Echo, h Handlers) {
	e.POST("/login", h.Auth.CreateLogin)
	e.GET("/wake-up", h.Health.WakeUp)

	// Per route instead of a group so unmatched paths still get a 404.
	protected := h.Authenticate

	// Appointments
	e.GET("/atendimentos", h.Appointments.GetAppointments, protected)
	e.GET("/atendimentos/:id", h.Appointments.GetAppointment, protected)
	e.POST("/atendimentos", h.Appointments.CreateAppointment, protected)
	e.PUT("/atendimentos/:id", h.Appointments.UpdateAppointment, protected)
	e.DELETE("/atendimentos/:id", h.Appointments.DeleteAppointment, protected)
	e.DELETE("/atendimentos/recurrence/:recurrenceId/from/:id", h.Appointments.DeleteSeriesFrom, protected)

	e.GET("/estatisticas", h.Statistics.GetStatistics, protected)
}

// ErrorHandler replaces echo's default handler so every error body has the
// same {message} shape.
func ErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	var he *echo.HTTPError
	if errors.As(err, &he) {
		if he.Internal != nil {
			log.Warnf("%s %s: %v", c.Request().Method, c.Request().URL.Path, he.Internal)
		}

		var apierr apierror.ErrorResponse
		switch {
		case he.Code == http.StatusNotFound:
			apierr = apierror.RouteNotFoundError
		case he.Code >= http.StatusInternalServerError:
			apierr = apierror.InternalServerError
		default:
			msg, ok := he.Message.(string)
			if !ok || msg == "" {
				msg = http.StatusText(he.Code)
			}
			apierr = apierror.NewSimple(he.Code, msg)
		}
		respond(c, apierr)
		return
	}

	log.Errorf("unhandled error on %s %s: %v", c.Request().Method, c.Request().URL.Path, err)
	respond(c, apierror.InternalServerError)
}

func respond(c echo.Context, apierr apierror.ErrorResponse) {
	var err error
	if c.Request().Method == http.MethodHead {
		err = c.NoContent(apierr.Code())
	} else {
		err = c.JSON(apierr.Code(), apierr)
	}
	if err != nil {
		log.Errorf("failed to write error response: %v", err)
	}
}
