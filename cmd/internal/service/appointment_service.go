package service

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"atendimentos/cmd/internal/domain/database/repository"
	"atendimentos/cmd/internal/domain/entity"
	"atendimentos/cmd/internal/recurrence"
	"atendimentos/cmd/internal/utils"
	"atendimentos/cmd/internal/utils/apierror"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/labstack/gommon/log"
)

type AppointmentRepository interface {
	FindByID(ctx context.Context, id int64) (*entity.Appointment, error)
	List(ctx context.Context, f repository.ListFilter) ([]*entity.Appointment, int64, error)
	Create(ctx context.Context, appt *entity.Appointment) error
	CreateSeries(ctx context.Context, series []entity.Appointment) error
	Update(ctx context.Context, id int64, changes repository.AppointmentChanges) (int64, error)
	Delete(ctx context.Context, id int64) (int64, error)
	DeleteSeriesFrom(ctx context.Context, recurrenceID string, id int64) (int64, error)
	Stats(ctx context.Context, from, to time.Time) (*repository.Stats, error)
}

type AppointmentRequest struct {
	Title  string  `json:"title" validate:"required,max=255"`
	Start  string  `json:"start" validate:"required,iso8601"`
	End    *string `json:"end" validate:"omitempty,iso8601"`
	Repeat string  `json:"repeat" validate:"omitempty,recurrence"`
	Times  int     `json:"times" validate:"omitempty,max=366"`
	Paid   bool    `json:"paid"`
}

type UpdateAppointmentRequest struct {
	Title string  `json:"title" validate:"required,max=255"`
	Start string  `json:"start" validate:"required,iso8601"`
	End   *string `json:"end" validate:"omitempty,iso8601"`
	Paid  bool    `json:"paid"`
}

// ListQuery carries the raw list query parameters. Values that do not
// parse are ignored.
type ListQuery struct {
	Page      string
	Limit     string
	StartDate string
	EndDate   string
	Paid      string
}

type AppointmentResponse struct {
	ID           int64   `json:"id"`
	Title        string  `json:"title"`
	Start        string  `json:"start"`
	End          *string `json:"end"`
	RecurrenceID *string `json:"recurrenceId"`
	Paid         bool    `json:"paid"`
	CreatedAt    string  `json:"createdAt"`
	UpdatedAt    string  `json:"updatedAt"`
}

type PaginationResponse struct {
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
	Total int64 `json:"total"`
	Pages int64 `json:"pages"`
}

type AppointmentPageResponse struct {
	Data       []*AppointmentResponse `json:"data"`
	Pagination PaginationResponse     `json:"pagination"`
}

// CreatedResponse carries the new id for a single appointment, or the
// recurrence id and occurrence count for a series.
type CreatedResponse struct {
	ID           int64  `json:"id,omitempty"`
	RecurrenceID string `json:"recurrenceId,omitempty"`
	Count        int    `json:"count,omitempty"`
}

type UpdatedResponse struct {
	Updated int64 `json:"updated"`
}

type DeletedResponse struct {
	Deleted int64 `json:"deleted"`
}

type DefaultAppointmentService struct {
	AppointmentRepo AppointmentRepository
	Validate        *validator.Validate
	Stats           *StatisticsService
	NewSeriesID     func() string
}

func NewAppointmentService(apptRepo AppointmentRepository, validate *validator.Validate, stats *StatisticsService) *DefaultAppointmentService {
	return &DefaultAppointmentService{
		AppointmentRepo: apptRepo,
		Validate:        validate,
		Stats:           stats,
		NewSeriesID:     uuid.NewString,
	}
}

func (a *DefaultAppointmentService) ListAppointments(ctx context.Context, q ListQuery) (*AppointmentPageResponse, apierror.ErrorResponse) {
	filter := toListFilter(q).Normalize()

	appts, total, err := a.AppointmentRepo.List(ctx, filter)
	if err != nil {
		log.Errorf("failed to list appointments (page %d, limit %d): %v", filter.Page, filter.Limit, err)
		return nil, apierror.InternalServerError
	}

	data := make([]*AppointmentResponse, len(appts))
	for i, appt := range appts {
		data[i] = toAppointmentResponse(appt)
	}
	return &AppointmentPageResponse{
		Data: data,
		Pagination: PaginationResponse{
			Page:  filter.Page,
			Limit: filter.Limit,
			Total: total,
			Pages: filter.Pages(total),
		},
	}, nil
}

func (a *DefaultAppointmentService) GetAppointment(ctx context.Context, id int64) (*AppointmentResponse, apierror.ErrorResponse) {
	appt, err := a.AppointmentRepo.FindByID(ctx, id)
	if err != nil {
		log.Errorf("failed to fetch appointment by id %d: %v", id, err)
		return nil, apierror.InternalServerError
	}
	if appt == nil {
		return nil, apierror.NotFoundError
	}
	return toAppointmentResponse(appt), nil
}

// CreateAppointment stores a single appointment, or a whole series when
// the request repeats more than once.
func (a *DefaultAppointmentService) CreateAppointment(ctx context.Context, req *AppointmentRequest) (*CreatedResponse, apierror.ErrorResponse) {
	utils.Sanitize(req)
	req.End = blankToNil(req.End)
	if valerr := a.Validate.Struct(req); valerr != nil {
		return nil, apierror.FromValidationError(valerr)
	}

	template, apierr := toAppointment(req.Title, req.Start, req.End, req.Paid)
	if apierr != nil {
		return nil, apierr
	}

	policy, err := recurrence.ParsePolicy(req.Repeat)
	if err != nil {
		return nil, apierror.NewSimple(http.StatusBadRequest, err.Error())
	}

	if !recurrence.Repeats(policy, req.Times) {
		if err := a.AppointmentRepo.Create(ctx, template); err != nil {
			log.Errorf("failed to create appointment: %v", err)
			return nil, apierror.InternalServerError
		}
		a.Stats.Invalidate(ctx)
		return &CreatedResponse{ID: template.ID}, nil
	}

	series, err := recurrence.Expand(*template, policy, req.Times, a.NewSeriesID)
	if err != nil {
		return nil, apierror.NewSimple(http.StatusBadRequest, err.Error())
	}

	if err := a.AppointmentRepo.CreateSeries(ctx, series); err != nil {
		log.Errorf("failed to create %s series of %d appointments: %v", policy, len(series), err)
		return nil, apierror.InternalServerError
	}
	a.Stats.Invalidate(ctx)
	return &CreatedResponse{RecurrenceID: *series[0].RecurrenceID, Count: len(series)}, nil
}

func (a *DefaultAppointmentService) UpdateAppointment(ctx context.Context, id int64, req *UpdateAppointmentRequest) (*UpdatedResponse, apierror.ErrorResponse) {
	utils.Sanitize(req)
	req.End = blankToNil(req.End)
	if valerr := a.Validate.Struct(req); valerr != nil {
		return nil, apierror.FromValidationError(valerr)
	}

	appt, apierr := toAppointment(req.Title, req.Start, req.End, req.Paid)
	if apierr != nil {
		return nil, apierr
	}

	updated, err := a.AppointmentRepo.Update(ctx, id, repository.AppointmentChanges{
		Title: appt.Title,
		Start: appt.Start,
		End:   appt.End,
		Paid:  appt.Paid,
	})
	if err != nil {
		log.Errorf("failed to update appointment %d: %v", id, err)
		return nil, apierror.InternalServerError
	}
	if updated == 0 {
		return nil, apierror.NotFoundError
	}
	a.Stats.Invalidate(ctx)
	return &UpdatedResponse{Updated: updated}, nil
}

func (a *DefaultAppointmentService) DeleteAppointment(ctx context.Context, id int64) (*DeletedResponse, apierror.ErrorResponse) {
	deleted, err := a.AppointmentRepo.Delete(ctx, id)
	if err != nil {
		log.Errorf("failed to delete appointment %d: %v", id, err)
		return nil, apierror.InternalServerError
	}
	if deleted == 0 {
		return nil, apierror.NotFoundError
	}
	a.Stats.Invalidate(ctx)
	return &DeletedResponse{Deleted: deleted}, nil
}

// DeleteSeriesFrom removes the occurrence id and every later occurrence of
// the series.
func (a *DefaultAppointmentService) DeleteSeriesFrom(ctx context.Context, recurrenceID string, id int64) (*DeletedResponse, apierror.ErrorResponse) {
	recurrenceID = strings.TrimSpace(recurrenceID)
	if recurrenceID == "" {
		return nil, apierror.NewMissingParamError("recurrenceId")
	}

	deleted, err := a.AppointmentRepo.DeleteSeriesFrom(ctx, recurrenceID, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apierror.NotFoundError
	}
	if err != nil {
		log.Errorf("failed to delete series %s from appointment %d: %v", recurrenceID, id, err)
		return nil, apierror.InternalServerError
	}
	a.Stats.Invalidate(ctx)
	return &DeletedResponse{Deleted: deleted}, nil
}

func toAppointment(title, rawStart string, rawEnd *string, paid bool) (*entity.Appointment, apierror.ErrorResponse) {
	start, err := utils.ParseTimestamp(rawStart)
	if err != nil {
		return nil, apierror.InvalidTimestampError
	}

	appt := &entity.Appointment{Title: title, Start: start, Paid: paid}
	if rawEnd != nil {
		end, err := utils.ParseTimestamp(*rawEnd)
		if err != nil {
			return nil, apierror.InvalidTimestampError
		}
		appt.End = &end
	}
	return appt, nil
}

func toListFilter(q ListQuery) repository.ListFilter {
	var f repository.ListFilter
	if page, err := strconv.Atoi(strings.TrimSpace(q.Page)); err == nil {
		f.Page = page
	}
	if limit, err := strconv.Atoi(strings.TrimSpace(q.Limit)); err == nil {
		f.Limit = limit
	}
	if from, ok := utils.ParseDateBound(q.StartDate, false); ok {
		f.From = &from
	}
	if to, ok := utils.ParseDateBound(q.EndDate, true); ok {
		f.To = &to
	}
	if paid, err := strconv.ParseBool(strings.TrimSpace(q.Paid)); err == nil {
		f.Paid = &paid
	}
	return f
}

func blankToNil(s *string) *string {
	if s == nil || *s == "" {
		return nil
	}
	return s
}

func toAppointmentResponse(appt *entity.Appointment) *AppointmentResponse {
	return &AppointmentResponse{
		ID:           appt.ID,
		Title:        appt.Title,
		Start:        utils.FormatTimestamp(appt.Start),
		End:          utils.FormatOptionalTimestamp(appt.End),
		RecurrenceID: appt.RecurrenceID,
		Paid:         appt.Paid,
		CreatedAt:    utils.FormatTimestamp(appt.CreatedAt),
		UpdatedAt:    utils.FormatTimestamp(appt.UpdatedAt),
	}
}
