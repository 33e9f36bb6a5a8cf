package routes

import (
	"context"
	"net/http"
	"strconv"

	"atendimentos/cmd/internal/service"
	"atendimentos/cmd/internal/utils/apierror"

	"github.com/labstack/echo/v4"
)

type AppointmentService interface {
	ListAppointments(ctx context.Context, q service.ListQuery) (*service.AppointmentPageResponse, apierror.ErrorResponse)
	GetAppointment(ctx context.Context, id int64) (*service.AppointmentResponse, apierror.ErrorResponse)
	CreateAppointment(ctx context.Context, req *service.AppointmentRequest) (*service.CreatedResponse, apierror.ErrorResponse)
	UpdateAppointment(ctx context.Context, id int64, req *service.UpdateAppointmentRequest) (*service.UpdatedResponse, apierror.ErrorResponse)
	DeleteAppointment(ctx context.Context, id int64) (*service.DeletedResponse, apierror.ErrorResponse)
	DeleteSeriesFrom(ctx context.Context, recurrenceID string, id int64) (*service.DeletedResponse, apierror.ErrorResponse)
}

type DefaultAppointmentRoute struct {
	AppointmentService AppointmentService
}

func NewAppointmentDefault(apptService AppointmentService) *DefaultAppointmentRoute {
	return &DefaultAppointmentRoute{AppointmentService: apptService}
}

func (a *DefaultAppointmentRoute) GetAppointments(c echo.Context) error {
	q := service.ListQuery{
		Page:      c.QueryParam("page"),
		Limit:     c.QueryParam("limit"),
		StartDate: c.QueryParam("start_date"),
		EndDate:   c.QueryParam("end_date"),
		Paid:      c.QueryParam("paid"),
	}

	page, apierr := a.AppointmentService.ListAppointments(c.Request().Context(), q)
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}
	return c.JSON(http.StatusOK, page)
}

func (a *DefaultAppointmentRoute) GetAppointment(c echo.Context) error {
	id, apierr := parseID(c.Param("id"))
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}

	appt, apierr := a.AppointmentService.GetAppointment(c.Request().Context(), id)
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}
	return c.JSON(http.StatusOK, appt)
}

func (a *DefaultAppointmentRoute) CreateAppointment(c echo.Context) error {
	var req service.AppointmentRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, apierror.MalformedBodyError)
	}

	created, apierr := a.AppointmentService.CreateAppointment(c.Request().Context(), &req)
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}
	return c.JSON(http.StatusCreated, created)
}

func (a *DefaultAppointmentRoute) UpdateAppointment(c echo.Context) error {
	id, apierr := parseID(c.Param("id"))
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}

	var req service.UpdateAppointmentRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, apierror.MalformedBodyError)
	}

	updated, apierr := a.AppointmentService.UpdateAppointment(c.Request().Context(), id, &req)
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}
	return c.JSON(http.StatusOK, updated)
}

func (a *DefaultAppointmentRoute) DeleteAppointment(c echo.Context) error {
	id, apierr := parseID(c.Param("id"))
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}

	deleted, apierr := a.AppointmentService.DeleteAppointment(c.Request().Context(), id)
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}
	return c.JSON(http.StatusOK, deleted)
}

func (a *DefaultAppointmentRoute) DeleteSeriesFrom(c echo.Context) error {
	id, apierr := parseID(c.Param("id"))
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}

	deleted, apierr := a.AppointmentService.DeleteSeriesFrom(c.Request().Context(), c.Param("recurrenceId"), id)
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}
	return c.JSON(http.StatusOK, deleted)
}

func parseID(raw string) (int64, apierror.ErrorResponse) {
	if raw == "" {
		return 0, apierror.NewMissingParamError("id")
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id < 1 {
		return 0, apierror.NewInvalidParamTypeError("id", "positive integer")
	}
	return id, nil
}
