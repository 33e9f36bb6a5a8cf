package service

import (
	"context"

	"atendimentos/cmd/internal/domain/database"
	"atendimentos/cmd/internal/utils"

	"github.com/labstack/gommon/log"
)

type PoolPinger func(ctx context.Context) (database.PoolStats, error)

type WakeUpResponse struct {
	Status    string `json:"status"`
	Time      string `json:"time"`
	PoolSize  int    `json:"poolSize"`
	IdleCount int    `json:"idleCount"`
}

type DefaultHealthService struct {
	Ping PoolPinger
}

func NewHealthService(ping PoolPinger) *DefaultHealthService {
	return &DefaultHealthService{Ping: ping}
}

// WakeUp pings the store and reports the connection pool occupancy.
func (h *DefaultHealthService) WakeUp(ctx context.Context) (*WakeUpResponse, error) {
	stats, err := h.Ping(ctx)
	if err != nil {
		log.Errorf("wake-up ping failed: %v", err)
		return nil, err
	}
	return &WakeUpResponse{
		Status:    "ok",
		Time:      utils.FormatTimestamp(utils.NowUTC()),
		PoolSize:  stats.Open,
		IdleCount: stats.Idle,
	}, nil
}
