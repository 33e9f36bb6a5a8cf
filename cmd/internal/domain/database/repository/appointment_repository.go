package repository

import (
	"context"
	"errors"
	"time"

	"atendimentos/cmd/internal/domain/entity"

	"gorm.io/gorm"
)

var ErrNotFound = errors.New("appointment not found")

const seriesBatchSize = 100

// AppointmentChanges are the mutable fields of an appointment.
type AppointmentChanges struct {
	Title string
	Start time.Time
	End   *time.Time
	Paid  bool
}

// Stats are aggregates over appointments starting inside a window.
type Stats struct {
	Total           int64
	Paid            int64
	Recurring       int64
	WithEnd         int64
	AverageDuration time.Duration
}

type DefaultAppointmentRepository struct {
	db      *gorm.DB
	timeout time.Duration
}

type RepositoryOption func(*DefaultAppointmentRepository)

// WithTimeout bounds every call, including the wait for a pooled
// connection. Zero leaves calls bounded by the caller's context only.
func WithTimeout(d time.Duration) RepositoryOption {
	return func(a *DefaultAppointmentRepository) { a.timeout = d }
}

func NewAppointmentRepository(db *gorm.DB, opts ...RepositoryOption) *DefaultAppointmentRepository {
	a := &DefaultAppointmentRepository{db: db}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

func (a *DefaultAppointmentRepository) conn(ctx context.Context) (*gorm.DB, context.CancelFunc) {
	if a.timeout <= 0 {
		return a.db.WithContext(ctx), func() {}
	}
	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	return a.db.WithContext(ctx), cancel
}

func (a *DefaultAppointmentRepository) FindByID(ctx context.Context, id int64) (*entity.Appointment, error) {
	db, cancel := a.conn(ctx)
	defer cancel()

	var appt entity.Appointment
	err := db.First(&appt, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &appt, nil
}

// List returns one page of appointments matching f, newest start first,
// together with the number of rows matching f overall.
func (a *DefaultAppointmentRepository) List(ctx context.Context, f ListFilter) ([]*entity.Appointment, int64, error) {
	f = f.Normalize()
	db, cancel := a.conn(ctx)
	defer cancel()

	filtered := db.
		Model(&entity.Appointment{}).
		Scopes(f.Where).
		Session(&gorm.Session{})

	var total int64
	if err := filtered.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	appts := make([]*entity.Appointment, 0, f.Limit)
	if int64(f.Offset()) >= total {
		return appts, total, nil
	}

	err := filtered.Scopes(f.Paginate).Find(&appts).Error
	if err != nil {
		return nil, 0, err
	}
	return appts, total, nil
}

func (a *DefaultAppointmentRepository) Create(ctx context.Context, appt *entity.Appointment) error {
	db, cancel := a.conn(ctx)
	defer cancel()
	return db.Transaction(func(tx *gorm.DB) error {
		return tx.Create(appt).Error
	})
}

// CreateSeries inserts every occurrence or none of them.
func (a *DefaultAppointmentRepository) CreateSeries(ctx context.Context, series []entity.Appointment) error {
	if len(series) == 0 {
		return nil
	}
	db, cancel := a.conn(ctx)
	defer cancel()
	return db.Transaction(func(tx *gorm.DB) error {
		return tx.CreateInBatches(&series, seriesBatchSize).Error
	})
}

// Update overwrites the mutable fields of appointment id and returns the
// number of rows changed; zero means the id does not exist.
func (a *DefaultAppointmentRepository) Update(ctx context.Context, id int64, changes AppointmentChanges) (int64, error) {
	db, cancel := a.conn(ctx)
	defer cancel()

	var affected int64
	err := db.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&entity.Appointment{}).
			Where("id = ?", id).
			Updates(map[string]any{
				"title": changes.Title,
				"start": changes.Start.UTC(),
				"end":   utcOrNil(changes.End),
				"paid":  changes.Paid,
			})
		affected = res.RowsAffected
		return res.Error
	})
	return affected, err
}

func (a *DefaultAppointmentRepository) Delete(ctx context.Context, id int64) (int64, error) {
	db, cancel := a.conn(ctx)
	defer cancel()

	var affected int64
	err := db.Transaction(func(tx *gorm.DB) error {
		res := tx.Delete(&entity.Appointment{}, id)
		affected = res.RowsAffected
		return res.Error
	})
	return affected, err
}

// DeleteSeriesFrom removes the occurrences of recurrenceID starting at or
// after the start of appointment id. ErrNotFound is returned when id does
// not exist.
func (a *DefaultAppointmentRepository) DeleteSeriesFrom(ctx context.Context, recurrenceID string, id int64) (int64, error) {
	db, cancel := a.conn(ctx)
	defer cancel()

	var affected int64
	err := db.Transaction(func(tx *gorm.DB) error {
		var from entity.Appointment
		err := tx.Select("id", "start").First(&from, id).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}

		res := tx.Where("recurrence_id = ?", recurrenceID).
			Where("start >= ?", from.Start).
			Delete(&entity.Appointment{})
		affected = res.RowsAffected
		return res.Error
	})
	return affected, err
}

// Stats aggregates the appointments with from <= start < to.
func (a *DefaultAppointmentRepository) Stats(ctx context.Context, from, to time.Time) (*Stats, error) {
	db, cancel := a.conn(ctx)
	defer cancel()

	window := db.
		Model(&entity.Appointment{}).
		Where("start >= ? AND start < ?", from.UTC(), to.UTC()).
		Session(&gorm.Session{})

	var counts struct {
		Total     int64
		Paid      int64
		Recurring int64
	}
	err := window.Select(
		"COUNT(*) AS total, " +
			"CAST(COALESCE(SUM(CASE WHEN paid THEN 1 ELSE 0 END), 0) AS BIGINT) AS paid, " +
			"COUNT(recurrence_id) AS recurring",
	).Scan(&counts).Error
	if err != nil {
		return nil, err
	}

	var spans []entity.Appointment
	err = window.Select("start", "end").Where(`"end" IS NOT NULL`).Find(&spans).Error
	if err != nil {
		return nil, err
	}

	stats := &Stats{
		Total:     counts.Total,
		Paid:      counts.Paid,
		Recurring: counts.Recurring,
		WithEnd:   int64(len(spans)),
	}
	if len(spans) > 0 {
		var sum time.Duration
		for i := range spans {
			sum += spans[i].Duration()
		}
		stats.AverageDuration = sum / time.Duration(len(spans))
	}
	return stats, nil
}

func utcOrNil(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}
