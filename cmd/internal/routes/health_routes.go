package routes

import (
	"context"
	"net/http"

	"atendimentos/cmd/internal/service"
	"atendimentos/cmd/internal/utils/apierror"

	"github.com/labstack/echo/v4"
)

type HealthService interface {
	WakeUp(ctx context.Context) (*service.WakeUpResponse, error)
}

type StatisticsService interface {
	GetStatistics(ctx context.Context) (*service.StatisticsResponse, apierror.ErrorResponse)
}

type DefaultHealthRoute struct {
	HealthService HealthService
}

func NewHealthDefault(healthService HealthService) *DefaultHealthRoute {
	return &DefaultHealthRoute{HealthService: healthService}
}

func (h *DefaultHealthRoute) WakeUp(c echo.Context) error {
	resp, err := h.HealthService.WakeUp(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Database unavailable"})
	}
	return c.JSON(http.StatusOK, resp)
}

type DefaultStatisticsRoute struct {
	StatisticsService StatisticsService
}

func NewStatisticsDefault(statsService StatisticsService) *DefaultStatisticsRoute {
	return &DefaultStatisticsRoute{StatisticsService: statsService}
}

func (s *DefaultStatisticsRoute) GetStatistics(c echo.Context) error {
	stats, apierr := s.StatisticsService.GetStatistics(c.Request().Context())
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}
	return c.JSON(http.StatusOK, stats)
}
