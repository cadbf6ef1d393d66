package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/oksasatya/go-clinic-scheduler/internal/domain/entity"
)

var doctorsTable = table[entity.Doctor]{
	name:    "doctors",
	columns: "id, name, specialty, photo_url, work_start, work_end, available_days",
	upsert: `
		INSERT INTO doctors (id, name, specialty, photo_url, work_start, work_end, available_days)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			specialty = EXCLUDED.specialty,
			photo_url = EXCLUDED.photo_url,
			work_start = EXCLUDED.work_start,
			work_end = EXCLUDED.work_end,
			available_days = EXCLUDED.available_days
	`,
	args: func(d entity.Doctor) []any {
		days := make([]string, len(d.AvailableDays))
		for i, day := range d.AvailableDays {
			days[i] = string(day)
		}
		return []any{d.ID, d.Name, d.Specialty, d.PhotoURL, d.WorkStart, d.WorkEnd, days}
	},
	id: func(d entity.Doctor) string { return d.ID },
	scan: func(rows pgx.Rows) (entity.Doctor, error) {
		var (
			d    entity.Doctor
			days []string
		)
		if err := rows.Scan(&d.ID, &d.Name, &d.Specialty, &d.PhotoURL, &d.WorkStart, &d.WorkEnd, &days); err != nil {
			return d, err
		}
		d.AvailableDays = make([]entity.Weekday, len(days))
		for i, s := range days {
			d.AvailableDays[i] = entity.Weekday(s)
		}
		return d, nil
	},
}

type DoctorRepository struct {
	pool *pgxpool.Pool
}

func NewDoctorRepository(pool *pgxpool.Pool) *DoctorRepository {
	return &DoctorRepository{pool: pool}
}

func (r *DoctorRepository) LoadAll(ctx context.Context) ([]entity.Doctor, error) {
	return doctorsTable.loadAll(ctx, r.pool)
}

func (r *DoctorRepository) SaveAll(ctx context.Context, items []entity.Doctor) error {
	return doctorsTable.saveAll(ctx, r.pool, items)
}
