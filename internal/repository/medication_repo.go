package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"meds_buddy/internal/model"

	"github.com/jackc/pgx/v5"
)

// MedicationRepository defines operations for medication data. Every lookup
// and mutation is scoped to the owning user: an id that exists under a
// different owner behaves exactly like a missing one.
type MedicationRepository interface {
	Create(ctx context.Context, med *model.Medication) error
	FindByUser(ctx context.Context, userID int) ([]model.Medication, error)
	FindByIDForUser(ctx context.Context, id int64, userID int) (*model.Medication, error)
	UpdateDetails(ctx context.Context, med *model.Medication) error
	UpdateTakenDates(ctx context.Context, id int64, userID int, ledger model.DateSet) error
	UpdateProofPath(ctx context.Context, id int64, userID int, proofPath string) error
	Delete(ctx context.Context, id int64, userID int) (int64, error)
}

type medicationRepository struct {
	db DB
}

// NewMedicationRepository creates a new MedicationRepository
func NewMedicationRepository(db DB) MedicationRepository {
	return &medicationRepository{db: db}
}

// Create inserts a new medication with an empty taken-date ledger
func (r *medicationRepository) Create(ctx context.Context, m *model.Medication) error {
	if m.TakenDates == nil {
		m.TakenDates = model.DateSet{}
	}
	blob, err := m.TakenDates.Encode()
	if err != nil {
		return fmt.Errorf("failed to encode taken dates: %w", err)
	}
	sql := `INSERT INTO medications (user_id, name, dosage, frequency, taken_dates, proof_photo, created_at, updated_at)
            VALUES ($1, $2, $3, $4, $5, $6, $7, $8) RETURNING id, created_at, updated_at`
	err = r.db.QueryRow(ctx, sql, m.UserID, m.Name, m.Dosage, m.Frequency, blob, m.ProofPhoto, m.CreatedAt, m.UpdatedAt).
		Scan(&m.ID, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create medication: %w", err)
	}
	return nil
}

// FindByUser retrieves all medications owned by a user, ledgers decoded
func (r *medicationRepository) FindByUser(ctx context.Context, userID int) ([]model.Medication, error) {
	sql := `SELECT id, user_id, name, dosage, frequency, taken_dates, proof_photo, created_at, updated_at
            FROM medications WHERE user_id = $1 ORDER BY created_at ASC, id ASC`
	rows, err := r.db.Query(ctx, sql, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query medications by user: %w", err)
	}
	defer rows.Close()

	var medications []model.Medication
	for rows.Next() {
		var m model.Medication
		var ledgerBlob string
		if err := rows.Scan(
			&m.ID, &m.UserID, &m.Name, &m.Dosage, &m.Frequency,
			&ledgerBlob, &m.ProofPhoto, &m.CreatedAt, &m.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan medication row: %w", err)
		}
		m.TakenDates = model.DecodeDateSet(ledgerBlob)
		medications = append(medications, m)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating medication rows: %w", err)
	}
	return medications, nil
}

// FindByIDForUser retrieves a medication by id, but only if it is owned by
// userID. Returns (nil, nil) both when the id is unknown and when it belongs
// to another user, so callers cannot distinguish the two cases.
func (r *medicationRepository) FindByIDForUser(ctx context.Context, id int64, userID int) (*model.Medication, error) {
	m := &model.Medication{}
	var ledgerBlob string
	sql := `SELECT id, user_id, name, dosage, frequency, taken_dates, proof_photo, created_at, updated_at
            FROM medications WHERE id = $1 AND user_id = $2`
	err := r.db.QueryRow(ctx, sql, id, userID).Scan(
		&m.ID, &m.UserID, &m.Name, &m.Dosage, &m.Frequency,
		&ledgerBlob, &m.ProofPhoto, &m.CreatedAt, &m.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil // Not found or not owned
		}
		return nil, fmt.Errorf("failed to find medication by ID: %w", err)
	}
	m.TakenDates = model.DecodeDateSet(ledgerBlob)
	return m, nil
}

// UpdateDetails replaces the descriptive fields of a medication. The
// taken_dates column is deliberately absent from the SET list: edits can
// never touch the ledger.
func (r *medicationRepository) UpdateDetails(ctx context.Context, m *model.Medication) error {
	sql := `UPDATE medications
            SET name = $1, dosage = $2, frequency = $3, updated_at = NOW()
            WHERE id = $4 AND user_id = $5 RETURNING updated_at`
	err := r.db.QueryRow(ctx, sql, m.Name, m.Dosage, m.Frequency, m.ID, m.UserID).Scan(&m.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("medication not found or not owned by user for update")
		}
		return fmt.Errorf("failed to update medication: %w", err)
	}
	return nil
}

// UpdateTakenDates writes back the full ledger for a medication
func (r *medicationRepository) UpdateTakenDates(ctx context.Context, id int64, userID int, ledger model.DateSet) error {
	blob, err := ledger.Encode()
	if err != nil {
		return fmt.Errorf("failed to encode taken dates: %w", err)
	}
	sql := `UPDATE medications SET taken_dates = $1, updated_at = NOW() WHERE id = $2 AND user_id = $3 RETURNING updated_at`
	var updatedAt time.Time
	err = r.db.QueryRow(ctx, sql, blob, id, userID).Scan(&updatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("medication not found for taken dates update")
		}
		return fmt.Errorf("failed to update taken dates: %w", err)
	}
	return nil
}

// UpdateProofPath overwrites the proof photo reference for a medication
func (r *medicationRepository) UpdateProofPath(ctx context.Context, id int64, userID int, proofPath string) error {
	sql := `UPDATE medications SET proof_photo = $1, updated_at = NOW() WHERE id = $2 AND user_id = $3 RETURNING updated_at`
	var updatedAt time.Time
	err := r.db.QueryRow(ctx, sql, proofPath, id, userID).Scan(&updatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("medication not found for proof photo update")
		}
		return fmt.Errorf("failed to update proof photo path: %w", err)
	}
	return nil
}

// Delete removes a medication owned by userID and reports how many rows were
// affected. Deleting a missing or foreign id affects zero rows and is not an
// error; the service layer reports it as an idempotent success.
func (r *medicationRepository) Delete(ctx context.Context, id int64, userID int) (int64, error) {
	sql := `DELETE FROM medications WHERE id = $1 AND user_id = $2`
	cmdTag, err := r.db.Exec(ctx, sql, id, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to delete medication: %w", err)
	}
	return cmdTag.RowsAffected(), nil
}
