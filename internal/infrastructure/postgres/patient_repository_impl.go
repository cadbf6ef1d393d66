package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/oksasatya/go-clinic-scheduler/internal/domain/entity"
)

var patientsTable = table[entity.Patient]{
	name:    "patients",
	columns: "id, name, age, phone, email, registration_date",
	upsert: `
		INSERT INTO patients (id, name, age, phone, email, registration_date)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			age = EXCLUDED.age,
			phone = EXCLUDED.phone,
			email = EXCLUDED.email,
			registration_date = EXCLUDED.registration_date
	`,
	args: func(p entity.Patient) []any {
		return []any{p.ID, p.Name, p.Age, p.Phone, p.Email, p.RegistrationDate}
	},
	id: func(p entity.Patient) string { return p.ID },
	scan: func(rows pgx.Rows) (entity.Patient, error) {
		var p entity.Patient
		err := rows.Scan(&p.ID, &p.Name, &p.Age, &p.Phone, &p.Email, &p.RegistrationDate)
		return p, err
	},
}

type PatientRepository struct {
	pool *pgxpool.Pool
}

func NewPatientRepository(pool *pgxpool.Pool) *PatientRepository {
	return &PatientRepository{pool: pool}
}

func (r *PatientRepository) LoadAll(ctx context.Context) ([]entity.Patient, error) {
	return patientsTable.loadAll(ctx, r.pool)
}

func (r *PatientRepository) SaveAll(ctx context.Context, items []entity.Patient) error {
	return patientsTable.saveAll(ctx, r.pool, items)
}
