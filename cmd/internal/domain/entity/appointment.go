package entity

import "time"

// Appointment is one scheduled "atendimento". Rows sharing a RecurrenceID
// were created together by a single recurring request.
type Appointment struct {
	ID           int64      `gorm:"primaryKey"`
	Title        string     `gorm:"not null"`
	Start        time.Time  `gorm:"column:start;not null;index;index:idx_atendimentos_start_paid,priority:1"`
	End          *time.Time `gorm:"column:end"`
	RecurrenceID *string    `gorm:"size:36;index"`
	Paid         bool       `gorm:"not null;default:false;index;index:idx_atendimentos_start_paid,priority:2"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (Appointment) TableName() string {
	return "atendimentos"
}

// Duration is zero when the appointment has no end.
func (a *Appointment) Duration() time.Duration {
	if a.End == nil {
		return 0
	}
	return a.End.Sub(a.Start)
}
