package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"meds_buddy/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeMedicationRepo is an in-memory MedicationRepository. It is safe for
// concurrent use, but each repository call is an independent critical
// section, so read-modify-write sequences in the service interleave the same
// way they would against the real store.
type fakeMedicationRepo struct {
	mu     sync.Mutex
	nextID int64
	meds   map[int64]*model.Medication
}

func newFakeMedicationRepo() *fakeMedicationRepo {
	return &fakeMedicationRepo{meds: make(map[int64]*model.Medication)}
}

func copyMedication(m *model.Medication) *model.Medication {
	cp := *m
	cp.TakenDates = append(model.DateSet{}, m.TakenDates...)
	if m.ProofPhoto != nil {
		p := *m.ProofPhoto
		cp.ProofPhoto = &p
	}
	return &cp
}

func (f *fakeMedicationRepo) Create(_ context.Context, m *model.Medication) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	m.ID = f.nextID
	f.meds[m.ID] = copyMedication(m)
	return nil
}

func (f *fakeMedicationRepo) FindByUser(_ context.Context, userID int) ([]model.Medication, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.Medication
	for id := int64(1); id <= f.nextID; id++ {
		if m, ok := f.meds[id]; ok && m.UserID == userID {
			out = append(out, *copyMedication(m))
		}
	}
	return out, nil
}

func (f *fakeMedicationRepo) FindByIDForUser(_ context.Context, id int64, userID int) (*model.Medication, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	m, ok := f.meds[id]
	if !ok || m.UserID != userID {
		return nil, nil
	}
	return copyMedication(m), nil
}

func (f *fakeMedicationRepo) UpdateDetails(_ context.Context, m *model.Medication) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	stored, ok := f.meds[m.ID]
	if !ok || stored.UserID != m.UserID {
		return ErrMedicationNotFound
	}
	stored.Name = m.Name
	stored.Dosage = m.Dosage
	stored.Frequency = m.Frequency
	return nil
}

func (f *fakeMedicationRepo) UpdateTakenDates(_ context.Context, id int64, userID int, ledger model.DateSet) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	stored, ok := f.meds[id]
	if !ok || stored.UserID != userID {
		return ErrMedicationNotFound
	}
	stored.TakenDates = append(model.DateSet{}, ledger...)
	return nil
}

func (f *fakeMedicationRepo) UpdateProofPath(_ context.Context, id int64, userID int, proofPath string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	stored, ok := f.meds[id]
	if !ok || stored.UserID != userID {
		return ErrMedicationNotFound
	}
	stored.ProofPhoto = &proofPath
	return nil
}

func (f *fakeMedicationRepo) Delete(_ context.Context, id int64, userID int) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	stored, ok := f.meds[id]
	if !ok || stored.UserID != userID {
		return 0, nil
	}
	delete(f.meds, id)
	return 1, nil
}

func newTestService(repo *fakeMedicationRepo, now time.Time) *medicationService {
	return &medicationService{
		repo:       repo,
		uploadsDir: "uploads",
		now:        func() time.Time { return now },
	}
}

func createTestMedication(t *testing.T, svc MedicationService, userID int) *model.Medication {
	t.Helper()
	med, err := svc.CreateMedication(context.Background(), userID, model.CreateMedicationRequest{
		Name: "Aspirin", Dosage: "100mg", Frequency: "once daily",
	})
	require.NoError(t, err)
	require.Empty(t, med.TakenDates)
	return med
}

func TestMarkTaken_Idempotent(t *testing.T) {
	repo := newFakeMedicationRepo()
	svc := newTestService(repo, adherenceToday)
	med := createTestMedication(t, svc, 1)

	first, err := svc.MarkTaken(context.Background(), med.ID, 1, "2026-08-30")
	require.NoError(t, err)
	second, err := svc.MarkTaken(context.Background(), med.ID, 1, "2026-08-30")
	require.NoError(t, err)

	assert.Len(t, first.TakenDates, 1)
	assert.Len(t, second.TakenDates, 1)
	assert.Equal(t, model.DateSet{"2026-08-30"}, second.TakenDates)
}

func TestMarkTaken_TwoDistinctDates(t *testing.T) {
	repo := newFakeMedicationRepo()
	svc := newTestService(repo, adherenceToday)
	med := createTestMedication(t, svc, 1)

	_, err := svc.MarkTaken(context.Background(), med.ID, 1, "2026-08-29")
	require.NoError(t, err)
	updated, err := svc.MarkTaken(context.Background(), med.ID, 1, "2026-08-30")
	require.NoError(t, err)

	assert.Equal(t, model.DateSet{"2026-08-29", "2026-08-30"}, updated.TakenDates)
}

func TestMarkTaken_DefaultsToCurrentDay(t *testing.T) {
	repo := newFakeMedicationRepo()
	svc := newTestService(repo, adherenceToday)
	med := createTestMedication(t, svc, 1)

	updated, err := svc.MarkTaken(context.Background(), med.ID, 1, "")
	require.NoError(t, err)

	assert.Equal(t, model.DateSet{"2026-08-30"}, updated.TakenDates)
}

func TestMarkTaken_InvalidDate(t *testing.T) {
	repo := newFakeMedicationRepo()
	svc := newTestService(repo, adherenceToday)
	med := createTestMedication(t, svc, 1)

	_, err := svc.MarkTaken(context.Background(), med.ID, 1, "30/08/2026")
	assert.ErrorIs(t, err, ErrInvalidDate)
}

// A medication that exists but belongs to another user is indistinguishable
// from a missing one.
func TestMarkTaken_ForeignMedicationIsNotFound(t *testing.T) {
	repo := newFakeMedicationRepo()
	svc := newTestService(repo, adherenceToday)
	med := createTestMedication(t, svc, 1)

	_, err := svc.MarkTaken(context.Background(), med.ID, 2, "2026-08-30")
	assert.ErrorIs(t, err, ErrMedicationNotFound)

	_, err = svc.MarkTaken(context.Background(), med.ID+99, 1, "2026-08-30")
	assert.ErrorIs(t, err, ErrMedicationNotFound)
}

func TestConcurrentMarkTaken_NoDuplicateDates(t *testing.T) {
	repo := newFakeMedicationRepo()
	svc := newTestService(repo, adherenceToday)
	med := createTestMedication(t, svc, 1)

	const callers = 10
	var wg sync.WaitGroup
	wg.Add(callers)
	for i := 0; i < callers; i++ {
		go func() {
			defer wg.Done()
			_, err := svc.MarkTaken(context.Background(), med.ID, 1, "2026-08-30")
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	stored, err := repo.FindByIDForUser(context.Background(), med.ID, 1)
	require.NoError(t, err)
	require.NotNil(t, stored)
	count := 0
	for _, d := range stored.TakenDates {
		if d == "2026-08-30" {
			count++
		}
	}
	assert.Equal(t, 1, count)
}

func TestUpdateMedication_NeverTouchesLedger(t *testing.T) {
	repo := newFakeMedicationRepo()
	svc := newTestService(repo, adherenceToday)
	med := createTestMedication(t, svc, 1)

	_, err := svc.MarkTaken(context.Background(), med.ID, 1, "2026-08-29")
	require.NoError(t, err)

	updated, err := svc.UpdateMedication(context.Background(), med.ID, 1, model.UpdateMedicationRequest{
		Name: "Ibuprofen", Dosage: "200mg", Frequency: "twice daily",
	})
	require.NoError(t, err)
	assert.Equal(t, "Ibuprofen", updated.Name)
	assert.Equal(t, model.DateSet{"2026-08-29"}, updated.TakenDates)

	stored, err := repo.FindByIDForUser(context.Background(), med.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, model.DateSet{"2026-08-29"}, stored.TakenDates)
}

func TestUpdateMedication_NotFound(t *testing.T) {
	repo := newFakeMedicationRepo()
	svc := newTestService(repo, adherenceToday)

	_, err := svc.UpdateMedication(context.Background(), 42, 1, model.UpdateMedicationRequest{
		Name: "Ibuprofen", Dosage: "200mg", Frequency: "twice daily",
	})
	assert.ErrorIs(t, err, ErrMedicationNotFound)
}

func TestDeleteMedication_Idempotent(t *testing.T) {
	repo := newFakeMedicationRepo()
	svc := newTestService(repo, adherenceToday)
	mine := createTestMedication(t, svc, 1)
	theirs := createTestMedication(t, svc, 2)

	// Deleting a missing id succeeds without removing anything.
	deleted, err := svc.DeleteMedication(context.Background(), mine.ID+99, 1)
	require.NoError(t, err)
	assert.False(t, deleted)

	// Deleting someone else's medication is the same no-op.
	deleted, err = svc.DeleteMedication(context.Background(), theirs.ID, 1)
	require.NoError(t, err)
	assert.False(t, deleted)

	// Both records are still there.
	remaining, err := repo.FindByIDForUser(context.Background(), theirs.ID, 2)
	require.NoError(t, err)
	assert.NotNil(t, remaining)

	// Deleting our own record removes it.
	deleted, err = svc.DeleteMedication(context.Background(), mine.ID, 1)
	require.NoError(t, err)
	assert.True(t, deleted)

	gone, err := repo.FindByIDForUser(context.Background(), mine.ID, 1)
	require.NoError(t, err)
	assert.Nil(t, gone)
}

func TestGetAdherence_ThroughService(t *testing.T) {
	repo := newFakeMedicationRepo()
	svc := newTestService(repo, adherenceToday)

	// No medications yet.
	adherence, err := svc.GetAdherence(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, 0, adherence)

	med := createTestMedication(t, svc, 1)
	for _, d := range windowDates(adherenceToday) {
		_, err := svc.MarkTaken(context.Background(), med.ID, 1, d)
		require.NoError(t, err)
	}

	adherence, err = svc.GetAdherence(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, 100, adherence)

	// Another user's full ledger does not leak into this user's score.
	adherence, err = svc.GetAdherence(context.Background(), 2)
	require.NoError(t, err)
	assert.Equal(t, 0, adherence)
}
