package service

import (
	"context"
	"net/http"
	"testing"
	"time"

	"atendimentos/cmd/internal/domain/entity"
	"atendimentos/cmd/internal/utils/apierror"
	"atendimentos/cmd/internal/utils/validators"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAppointmentService(repo *fakeRepo, cache *fakeCache) *DefaultAppointmentService {
	svc := NewAppointmentService(repo, validators.New(), NewStatisticsService(repo, cache))
	svc.NewSeriesID = func() string { return "series-id" }
	return svc
}

func strPtr(s string) *string { return &s }

func TestCreateSingleAppointment(t *testing.T) {
	repo, cache := newFakeRepo(), &fakeCache{payload: []byte(`{}`)}
	svc := newAppointmentService(repo, cache)

	resp, apierr := svc.CreateAppointment(context.Background(), &AppointmentRequest{
		Title: "  Consult ",
		Start: "2024-01-01T10:00:00Z",
		End:   strPtr("2024-01-01T11:00:00Z"),
		Paid:  true,
	})
	require.Nil(t, apierr)
	assert.EqualValues(t, 1, resp.ID)
	assert.Empty(t, resp.RecurrenceID)

	require.Len(t, repo.created, 1)
	got := repo.created[0]
	assert.Equal(t, "Consult", got.Title)
	assert.Equal(t, time.Hour, got.Duration())
	assert.True(t, got.Paid)
	assert.Nil(t, got.RecurrenceID)
	assert.Equal(t, 1, cache.invalidated)
}

func TestCreateRecurringAppointment(t *testing.T) {
	repo := newFakeRepo()
	svc := newAppointmentService(repo, &fakeCache{})

	resp, apierr := svc.CreateAppointment(context.Background(), &AppointmentRequest{
		Title:  "Consult",
		Start:  "2024-01-01T10:00:00Z",
		End:    strPtr("2024-01-01T11:00:00Z"),
		Repeat: "weekly",
		Times:  3,
	})
	require.Nil(t, apierr)
	assert.Equal(t, "series-id", resp.RecurrenceID)
	assert.Equal(t, 3, resp.Count)

	require.Len(t, repo.created, 3)
	for i, occ := range repo.created {
		want := time.Date(2024, 1, 1+7*i, 10, 0, 0, 0, time.UTC)
		assert.Equal(t, want, occ.Start)
		assert.Equal(t, time.Hour, occ.Duration())
		assert.Equal(t, "series-id", *occ.RecurrenceID)
	}
}

func TestCreateFallsBackToSingle(t *testing.T) {
	for _, req := range []*AppointmentRequest{
		{Title: "a", Start: "2024-01-01T10:00:00Z", Repeat: "daily", Times: 1},
		{Title: "a", Start: "2024-01-01T10:00:00Z", Repeat: "none", Times: 5},
		{Title: "a", Start: "2024-01-01T10:00:00Z", Times: 5},
		{Title: "a", Start: "2024-01-01T10:00:00Z", Repeat: "daily", Times: -2},
	} {
		repo := newFakeRepo()
		resp, apierr := newAppointmentService(repo, &fakeCache{}).CreateAppointment(context.Background(), req)
		require.Nil(t, apierr)
		assert.NotZero(t, resp.ID)
		assert.Len(t, repo.created, 1)
	}
}

func TestCreateValidation(t *testing.T) {
	cases := map[string]*AppointmentRequest{
		"missing title":             {Start: "2024-01-01T10:00:00Z"},
		"blank title":               {Title: "   ", Start: "2024-01-01T10:00:00Z"},
		"missing start":             {Title: "a"},
		"bad start":                 {Title: "a", Start: "01/01/2024"},
		"bad end":                   {Title: "a", Start: "2024-01-01T10:00:00Z", End: strPtr("later")},
		"unknown repeat":            {Title: "a", Start: "2024-01-01T10:00:00Z", Repeat: "weekely", Times: 3},
		"too many times":            {Title: "a", Start: "2024-01-01T10:00:00Z", Repeat: "daily", Times: 1000},
		"unknown repeat once":       {Title: "a", Start: "2024-01-01T10:00:00Z", Repeat: "monthly", Times: 1},
		"too many times, no repeat": {Title: "a", Start: "2024-01-01T10:00:00Z", Repeat: "none", Times: 367},
	}
	for name, req := range cases {
		t.Run(name, func(t *testing.T) {
			repo := newFakeRepo()
			_, apierr := newAppointmentService(repo, &fakeCache{}).CreateAppointment(context.Background(), req)
			require.NotNil(t, apierr)
			assert.Equal(t, http.StatusBadRequest, apierr.Code())
			assert.Empty(t, repo.created)
		})
	}
}

func TestCreateTreatsEmptyEndAsMissing(t *testing.T) {
	repo := newFakeRepo()
	_, apierr := newAppointmentService(repo, &fakeCache{}).CreateAppointment(context.Background(), &AppointmentRequest{
		Title: "a", Start: "2024-01-01T10:00:00Z", End: strPtr(" "),
	})
	require.Nil(t, apierr)
	assert.Nil(t, repo.created[0].End)
}

func TestCreateStoreFailure(t *testing.T) {
	repo := newFakeRepo()
	repo.err = errStore
	_, apierr := newAppointmentService(repo, &fakeCache{}).CreateAppointment(context.Background(), &AppointmentRequest{
		Title: "a", Start: "2024-01-01T10:00:00Z", Repeat: "daily", Times: 2,
	})
	assert.Equal(t, apierror.InternalServerError, apierr)
}

func TestListAppointmentsParsesQuery(t *testing.T) {
	repo := newFakeRepo()
	repo.appts[1] = &entity.Appointment{ID: 1, Title: "a", Start: time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)}
	svc := newAppointmentService(repo, &fakeCache{})

	resp, apierr := svc.ListAppointments(context.Background(), ListQuery{
		Page:      "2",
		Limit:     "5",
		StartDate: "2024-01-01",
		EndDate:   "2024-01-31",
		Paid:      "false",
	})
	require.Nil(t, apierr)

	f := repo.lastFilter
	assert.Equal(t, 2, f.Page)
	assert.Equal(t, 5, f.Limit)
	require.NotNil(t, f.From)
	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), *f.From)
	require.NotNil(t, f.To)
	assert.Equal(t, 31, f.To.Day())
	assert.Equal(t, 23, f.To.Hour())
	require.NotNil(t, f.Paid)
	assert.False(t, *f.Paid)

	assert.Equal(t, PaginationResponse{Page: 2, Limit: 5, Total: 1, Pages: 1}, resp.Pagination)
	require.Len(t, resp.Data, 1)
	assert.Equal(t, "2024-01-01T10:00:00Z", resp.Data[0].Start)
	assert.Nil(t, resp.Data[0].End)
}

func TestListAppointmentsIgnoresMalformedQuery(t *testing.T) {
	repo := newFakeRepo()
	svc := newAppointmentService(repo, &fakeCache{})

	resp, apierr := svc.ListAppointments(context.Background(), ListQuery{
		Page:      "first",
		Limit:     "-3",
		StartDate: "yesterday",
		EndDate:   "2024-13-45",
		Paid:      "maybe",
	})
	require.Nil(t, apierr)

	f := repo.lastFilter
	assert.Equal(t, 1, f.Page)
	assert.Equal(t, 10, f.Limit)
	assert.Nil(t, f.From)
	assert.Nil(t, f.To)
	assert.Nil(t, f.Paid)
	assert.NotNil(t, resp.Data)
	assert.EqualValues(t, 0, resp.Pagination.Pages)
}

func TestGetAppointment(t *testing.T) {
	repo := newFakeRepo()
	repo.appts[7] = &entity.Appointment{ID: 7, Title: "found", Start: time.Now()}
	svc := newAppointmentService(repo, &fakeCache{})

	resp, apierr := svc.GetAppointment(context.Background(), 7)
	require.Nil(t, apierr)
	assert.Equal(t, "found", resp.Title)

	_, apierr = svc.GetAppointment(context.Background(), 8)
	assert.Equal(t, apierror.NotFoundError, apierr)
}

func TestUpdateAppointment(t *testing.T) {
	repo := newFakeRepo()
	start := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
	end := start.Add(time.Hour)
	repo.appts[1] = &entity.Appointment{ID: 1, Title: "old", Start: start, End: &end}
	cache := &fakeCache{}
	svc := newAppointmentService(repo, cache)

	resp, apierr := svc.UpdateAppointment(context.Background(), 1, &UpdateAppointmentRequest{
		Title: "new", Start: "2024-01-02T10:00:00Z", Paid: true,
	})
	require.Nil(t, apierr)
	assert.EqualValues(t, 1, resp.Updated)
	assert.Equal(t, "new", repo.appts[1].Title)
	assert.Nil(t, repo.appts[1].End)
	assert.True(t, repo.appts[1].Paid)
	assert.Equal(t, 1, cache.invalidated)
}

func TestUpdateMissingAppointment(t *testing.T) {
	repo := newFakeRepo()
	cache := &fakeCache{}
	_, apierr := newAppointmentService(repo, cache).UpdateAppointment(context.Background(), 42, &UpdateAppointmentRequest{
		Title: "ghost", Start: "2024-01-02T10:00:00Z",
	})
	assert.Equal(t, apierror.NotFoundError, apierr)
	assert.Zero(t, cache.invalidated)
}

func TestUpdateValidation(t *testing.T) {
	_, apierr := newAppointmentService(newFakeRepo(), &fakeCache{}).UpdateAppointment(context.Background(), 1, &UpdateAppointmentRequest{Title: "x"})
	require.NotNil(t, apierr)
	assert.Equal(t, http.StatusBadRequest, apierr.Code())
}

func TestDeleteAppointment(t *testing.T) {
	repo := newFakeRepo()
	repo.appts[1] = &entity.Appointment{ID: 1}
	svc := newAppointmentService(repo, &fakeCache{})

	resp, apierr := svc.DeleteAppointment(context.Background(), 1)
	require.Nil(t, apierr)
	assert.EqualValues(t, 1, resp.Deleted)

	_, apierr = svc.DeleteAppointment(context.Background(), 1)
	assert.Equal(t, apierror.NotFoundError, apierr)

	repo.err = errStore
	_, apierr = svc.DeleteAppointment(context.Background(), 1)
	assert.Equal(t, apierror.InternalServerError, apierr)
}

func TestDeleteSeriesFrom(t *testing.T) {
	repo := newFakeRepo()
	svc := newAppointmentService(repo, &fakeCache{})
	_, apierr := svc.CreateAppointment(context.Background(), &AppointmentRequest{
		Title: "s", Start: "2024-01-01T10:00:00Z", Repeat: "daily", Times: 4,
	})
	require.Nil(t, apierr)

	resp, apierr := svc.DeleteSeriesFrom(context.Background(), "series-id", 3)
	require.Nil(t, apierr)
	assert.EqualValues(t, 2, resp.Deleted)
	assert.Len(t, repo.appts, 2)

	_, apierr = svc.DeleteSeriesFrom(context.Background(), "series-id", 99)
	assert.Equal(t, apierror.NotFoundError, apierr)

	_, apierr = svc.DeleteSeriesFrom(context.Background(), " ", 1)
	require.NotNil(t, apierr)
	assert.Equal(t, http.StatusBadRequest, apierr.Code())
}
