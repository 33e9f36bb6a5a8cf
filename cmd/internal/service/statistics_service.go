package service

import (
	"context"
	"encoding/json"
	"math"
	"time"

	"atendimentos/cmd/internal/utils"
	"atendimentos/cmd/internal/utils/apierror"

	"github.com/labstack/gommon/log"
)

// StatisticsWindow is how far back the statistics look.
const StatisticsWindow = 30 * 24 * time.Hour

type StatsCache interface {
	Get(ctx context.Context) ([]byte, bool, error)
	Set(ctx context.Context, payload []byte) error
	Invalidate(ctx context.Context) error
}

// NopStatsCache is used when no cache server is configured.
type NopStatsCache struct{}

func (NopStatsCache) Get(context.Context) ([]byte, bool, error) { return nil, false, nil }
func (NopStatsCache) Set(context.Context, []byte) error         { return nil }
func (NopStatsCache) Invalidate(context.Context) error          { return nil }

type StatisticsResponse struct {
	From                   string  `json:"from"`
	To                     string  `json:"to"`
	Total                  int64   `json:"total"`
	Paid                   int64   `json:"paid"`
	Unpaid                 int64   `json:"unpaid"`
	Recurring              int64   `json:"recurring"`
	Standalone             int64   `json:"standalone"`
	PaidRate               float64 `json:"paidRate"`
	AveragePerDay          float64 `json:"averagePerDay"`
	AverageDurationMinutes float64 `json:"averageDurationMinutes"`
}

type StatisticsService struct {
	AppointmentRepo AppointmentRepository
	Cache           StatsCache
	Now             func() time.Time
}

func NewStatisticsService(apptRepo AppointmentRepository, cache StatsCache) *StatisticsService {
	if cache == nil {
		cache = NopStatsCache{}
	}
	return &StatisticsService{AppointmentRepo: apptRepo, Cache: cache, Now: utils.NowUTC}
}

// GetStatistics aggregates the appointments of the trailing window, served
// from the cache while it holds a value.
func (s *StatisticsService) GetStatistics(ctx context.Context) (*StatisticsResponse, apierror.ErrorResponse) {
	if cached, ok := s.fromCache(ctx); ok {
		return cached, nil
	}

	to := s.Now().UTC()
	from := to.Add(-StatisticsWindow)

	stats, err := s.AppointmentRepo.Stats(ctx, from, to)
	if err != nil {
		log.Errorf("failed to aggregate statistics [%s - %s]: %v", from.Format(time.RFC3339), to.Format(time.RFC3339), err)
		return nil, apierror.InternalServerError
	}

	resp := &StatisticsResponse{
		From:                   utils.FormatTimestamp(from),
		To:                     utils.FormatTimestamp(to),
		Total:                  stats.Total,
		Paid:                   stats.Paid,
		Unpaid:                 stats.Total - stats.Paid,
		Recurring:              stats.Recurring,
		Standalone:             stats.Total - stats.Recurring,
		AveragePerDay:          round2(float64(stats.Total) / (StatisticsWindow.Hours() / 24)),
		AverageDurationMinutes: round2(stats.AverageDuration.Minutes()),
	}
	if stats.Total > 0 {
		resp.PaidRate = round2(float64(stats.Paid) / float64(stats.Total))
	}

	s.toCache(ctx, resp)
	return resp, nil
}

// Invalidate drops the cached statistics after a write.
func (s *StatisticsService) Invalidate(ctx context.Context) {
	if s == nil {
		return
	}
	if err := s.Cache.Invalidate(ctx); err != nil {
		log.Warnf("failed to invalidate statistics cache: %v", err)
	}
}

func (s *StatisticsService) fromCache(ctx context.Context) (*StatisticsResponse, bool) {
	payload, ok, err := s.Cache.Get(ctx)
	if err != nil {
		log.Warnf("failed to read statistics cache: %v", err)
		return nil, false
	}
	if !ok {
		return nil, false
	}

	var resp StatisticsResponse
	if err := json.Unmarshal(payload, &resp); err != nil {
		log.Warnf("discarding unreadable statistics cache entry: %v", err)
		return nil, false
	}
	return &resp, true
}

func (s *StatisticsService) toCache(ctx context.Context, resp *StatisticsResponse) {
	payload, err := json.Marshal(resp)
	if err != nil {
		return
	}
	if err := s.Cache.Set(ctx, payload); err != nil {
		log.Warnf("failed to write statistics cache: %v", err)
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
