package service

import (
	"context"
	"errors"
	"time"

	"atendimentos/cmd/internal/domain/database/repository"
	"atendimentos/cmd/internal/domain/entity"
)

var errStore = errors.New("connection refused")

type fakeRepo struct {
	appts  map[int64]*entity.Appointment
	nextID int64
	err    error

	lastFilter repository.ListFilter
	created    []entity.Appointment
	stats      *repository.Stats
	statsCalls int
	statsFrom  time.Time
	statsTo    time.Time
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{appts: map[int64]*entity.Appointment{}, nextID: 1}
}

func (f *fakeRepo) FindByID(_ context.Context, id int64) (*entity.Appointment, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.appts[id], nil
}

func (f *fakeRepo) List(_ context.Context, filter repository.ListFilter) ([]*entity.Appointment, int64, error) {
	f.lastFilter = filter
	if f.err != nil {
		return nil, 0, f.err
	}
	var out []*entity.Appointment
	for _, a := range f.appts {
		out = append(out, a)
	}
	return out, int64(len(out)), nil
}

func (f *fakeRepo) Create(_ context.Context, appt *entity.Appointment) error {
	if f.err != nil {
		return f.err
	}
	appt.ID = f.nextID
	f.nextID++
	f.appts[appt.ID] = appt
	f.created = append(f.created, *appt)
	return nil
}

func (f *fakeRepo) CreateSeries(ctx context.Context, series []entity.Appointment) error {
	if f.err != nil {
		return f.err
	}
	for i := range series {
		_ = f.Create(ctx, &series[i])
	}
	return nil
}

func (f *fakeRepo) Update(_ context.Context, id int64, changes repository.AppointmentChanges) (int64, error) {
	if f.err != nil {
		return 0, f.err
	}
	appt, ok := f.appts[id]
	if !ok {
		return 0, nil
	}
	appt.Title, appt.Start, appt.End, appt.Paid = changes.Title, changes.Start, changes.End, changes.Paid
	return 1, nil
}

func (f *fakeRepo) Delete(_ context.Context, id int64) (int64, error) {
	if f.err != nil {
		return 0, f.err
	}
	if _, ok := f.appts[id]; !ok {
		return 0, nil
	}
	delete(f.appts, id)
	return 1, nil
}

func (f *fakeRepo) DeleteSeriesFrom(_ context.Context, recurrenceID string, id int64) (int64, error) {
	if f.err != nil {
		return 0, f.err
	}
	from, ok := f.appts[id]
	if !ok {
		return 0, repository.ErrNotFound
	}
	var n int64
	for k, a := range f.appts {
		if a.RecurrenceID != nil && *a.RecurrenceID == recurrenceID && !a.Start.Before(from.Start) {
			delete(f.appts, k)
			n++
		}
	}
	return n, nil
}

func (f *fakeRepo) Stats(_ context.Context, from, to time.Time) (*repository.Stats, error) {
	f.statsCalls++
	f.statsFrom, f.statsTo = from, to
	if f.err != nil {
		return nil, f.err
	}
	if f.stats == nil {
		return &repository.Stats{}, nil
	}
	return f.stats, nil
}

type fakeCache struct {
	payload     []byte
	invalidated int
	err         error
}

func (c *fakeCache) Get(context.Context) ([]byte, bool, error) {
	if c.err != nil {
		return nil, false, c.err
	}
	return c.payload, c.payload != nil, nil
}

func (c *fakeCache) Set(_ context.Context, payload []byte) error {
	if c.err != nil {
		return c.err
	}
	c.payload = payload
	return nil
}

func (c *fakeCache) Invalidate(context.Context) error {
	c.invalidated++
	c.payload = nil
	return c.err
}
