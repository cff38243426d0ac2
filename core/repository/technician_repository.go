package repository

import (
	"context"

	"github.com/SamShahinDev/dirtfree-crm-sub004/core/models"
)

// TechnicianRepository reads technician reference data for assignment
// targets and workload views.
type TechnicianRepository struct {
	db *DB
}

// NewTechnicianRepository creates a new technician repository
func NewTechnicianRepository(db *DB) *TechnicianRepository {
	return &TechnicianRepository{db: db}
}

// List returns technicians, optionally restricted to active ones.
func (r *TechnicianRepository) List(ctx context.Context, activeOnly bool) ([]models.Technician, error) {
	query := `SELECT id, name, phone, active FROM technicians`
	if activeOnly {
		query += ` WHERE active`
	}
	query += ` ORDER BY name, id`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var techs []models.Technician
	for rows.Next() {
		var t models.Technician
		if err := rows.Scan(&t.ID, &t.Name, &t.Phone, &t.Active); err != nil {
			return nil, err
		}
		techs = append(techs, t)
	}
	return techs, rows.Err()
}

// Get retrieves a technician by ID.
func (r *TechnicianRepository) Get(ctx context.Context, id string) (*models.Technician, error) {
	var t models.Technician
	err := r.db.QueryRowContext(ctx,
		`SELECT id, name, phone, active FROM technicians WHERE id = $1`, id,
	).Scan(&t.ID, &t.Name, &t.Phone, &t.Active)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
