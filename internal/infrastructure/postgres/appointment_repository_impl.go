package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/oksasatya/go-clinic-scheduler/internal/domain/entity"
)

var appointmentsTable = table[entity.Appointment]{
	name:    "appointments",
	columns: "id, patient_id, doctor_id, date, time, reason, status, created_at, cancelled_at, completed_at",
	upsert: `
		INSERT INTO appointments (id, patient_id, doctor_id, date, time, reason, status, created_at, cancelled_at, completed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (id) DO UPDATE SET
			patient_id = EXCLUDED.patient_id,
			doctor_id = EXCLUDED.doctor_id,
			date = EXCLUDED.date,
			time = EXCLUDED.time,
			reason = EXCLUDED.reason,
			status = EXCLUDED.status,
			created_at = EXCLUDED.created_at,
			cancelled_at = EXCLUDED.cancelled_at,
			completed_at = EXCLUDED.completed_at
	`,
	args: func(a entity.Appointment) []any {
		return []any{a.ID, a.PatientID, a.DoctorID, a.Date, a.Time, a.Reason, string(a.Status),
			a.CreatedAt, a.CancelledAt, a.CompletedAt}
	},
	id: func(a entity.Appointment) string { return a.ID },
	scan: func(rows pgx.Rows) (entity.Appointment, error) {
		var (
			a      entity.Appointment
			status string
		)
		err := rows.Scan(&a.ID, &a.PatientID, &a.DoctorID, &a.Date, &a.Time, &a.Reason, &status,
			&a.CreatedAt, &a.CancelledAt, &a.CompletedAt)
		a.Status = entity.Status(status)
		// pgx decodes timestamptz in time.Local
		a.CreatedAt = a.CreatedAt.UTC()
		for _, ts := range []*time.Time{a.CancelledAt, a.CompletedAt} {
			if ts != nil {
				*ts = ts.UTC()
			}
		}
		return a, err
	},
}

type AppointmentRepository struct {
	pool *pgxpool.Pool
}

func NewAppointmentRepository(pool *pgxpool.Pool) *AppointmentRepository {
	return &AppointmentRepository{pool: pool}
}

func (r *AppointmentRepository) LoadAll(ctx context.Context) ([]entity.Appointment, error) {
	return appointmentsTable.loadAll(ctx, r.pool)
}

func (r *AppointmentRepository) SaveAll(ctx context.Context, items []entity.Appointment) error {
	return appointmentsTable.saveAll(ctx, r.pool, items)
}
