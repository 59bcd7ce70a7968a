package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"meds_buddy/internal/model"
	"meds_buddy/internal/repository"
)

var (
	ErrMedicationNotFound = errors.New("medication not found")
	ErrInvalidDate        = errors.New("invalid date, use YYYY-MM-DD")
	ErrInvalidFileFormat  = errors.New("invalid file format. only .jpg, .jpeg, .png are allowed")
	ErrFileSizeExceeded   = errors.New("file size exceeds limit")
	ErrProofNotFound      = errors.New("proof photo not found for this medication")
)

const MaxProofFileSize = 5 * 1024 * 1024 // 5MB

// MedicationService defines operations for medications. All operations are
// scoped to the requesting user: acting on a medication that does not exist
// or belongs to someone else yields ErrMedicationNotFound either way.
type MedicationService interface {
	CreateMedication(ctx context.Context, userID int, req model.CreateMedicationRequest) (*model.Medication, error)
	GetUserMedications(ctx context.Context, userID int) ([]model.Medication, error)
	UpdateMedication(ctx context.Context, medicationID int64, userID int, req model.UpdateMedicationRequest) (*model.Medication, error)
	DeleteMedication(ctx context.Context, medicationID int64, userID int) (bool, error)
	MarkTaken(ctx context.Context, medicationID int64, userID int, date string) (*model.Medication, error)
	GetAdherence(ctx context.Context, userID int) (int, error)
	UploadProof(ctx context.Context, medicationID int64, userID int, file *multipart.FileHeader) (*model.Medication, error)
	GetProofPath(ctx context.Context, medicationID int64, userID int) (string, string, error) // returns path and filename
}

type medicationService struct {
	repo       repository.MedicationRepository
	uploadsDir string
	now        func() time.Time
}

// NewMedicationService creates a new MedicationService
func NewMedicationService(repo repository.MedicationRepository, uploadsDir string) MedicationService {
	return &medicationService{repo: repo, uploadsDir: uploadsDir, now: time.Now}
}

func (s *medicationService) CreateMedication(ctx context.Context, userID int, req model.CreateMedicationRequest) (*model.Medication, error) {
	medication := &model.Medication{
		UserID:     userID,
		Name:       req.Name,
		Dosage:     req.Dosage,
		Frequency:  req.Frequency,
		TakenDates: model.DateSet{},
		CreatedAt:  time.Now(),
		UpdatedAt:  time.Now(),
	}

	if err := s.repo.Create(ctx, medication); err != nil {
		return nil, fmt.Errorf("failed to create medication in repo: %w", err)
	}
	return medication, nil
}

func (s *medicationService) GetUserMedications(ctx context.Context, userID int) ([]model.Medication, error) {
	medications, err := s.repo.FindByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user medications from repo: %w", err)
	}
	return medications, nil
}

func (s *medicationService) UpdateMedication(ctx context.Context, medicationID int64, userID int, req model.UpdateMedicationRequest) (*model.Medication, error) {
	existing, err := s.repo.FindByIDForUser(ctx, medicationID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to find medication for update: %w", err)
	}
	if existing == nil {
		return nil, ErrMedicationNotFound
	}

	// Only the descriptive fields change; the ledger and proof photo are
	// untouched no matter what the request carries.
	existing.Name = req.Name
	existing.Dosage = req.Dosage
	existing.Frequency = req.Frequency

	if err := s.repo.UpdateDetails(ctx, existing); err != nil {
		return nil, fmt.Errorf("failed to update medication in repo: %w", err)
	}
	return existing, nil
}

// DeleteMedication removes a medication. Deleting an id that is missing or
// owned by another user is a successful no-op; the returned flag reports
// whether a row was actually removed.
func (s *medicationService) DeleteMedication(ctx context.Context, medicationID int64, userID int) (bool, error) {
	affected, err := s.repo.Delete(ctx, medicationID, userID)
	if err != nil {
		return false, fmt.Errorf("failed to delete medication in repo: %w", err)
	}
	return affected > 0, nil
}

// MarkTaken records a dose taken on the given calendar day, defaulting to
// the current UTC day when date is empty. Marking the same day twice is a
// no-op: the ledger holds each date at most once.
func (s *medicationService) MarkTaken(ctx context.Context, medicationID int64, userID int, date string) (*model.Medication, error) {
	if date == "" {
		date = s.now().UTC().Format(model.DateLayout)
	} else if _, err := time.Parse(model.DateLayout, date); err != nil {
		return nil, ErrInvalidDate
	}

	medication, err := s.repo.FindByIDForUser(ctx, medicationID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to find medication for marking taken: %w", err)
	}
	if medication == nil {
		return nil, ErrMedicationNotFound
	}

	medication.TakenDates = medication.TakenDates.Add(date)
	if err := s.repo.UpdateTakenDates(ctx, medicationID, userID, medication.TakenDates); err != nil {
		return nil, fmt.Errorf("failed to update taken dates in repo: %w", err)
	}
	return medication, nil
}

func (s *medicationService) GetAdherence(ctx context.Context, userID int) (int, error) {
	medications, err := s.repo.FindByUser(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to get medications for adherence: %w", err)
	}
	return ComputeAdherence(medications, s.now().UTC()), nil
}

// UploadProof saves the photo to disk and overwrites the medication's proof
// reference. One slot per medication, most recent upload wins.
func (s *medicationService) UploadProof(ctx context.Context, medicationID int64, userID int, fileHeader *multipart.FileHeader) (*model.Medication, error) {
	medication, err := s.repo.FindByIDForUser(ctx, medicationID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to find medication for proof upload: %w", err)
	}
	if medication == nil {
		return nil, ErrMedicationNotFound
	}

	// Validate file
	if fileHeader.Size > MaxProofFileSize {
		return nil, ErrFileSizeExceeded
	}
	ext := filepath.Ext(fileHeader.Filename)
	allowedExts := map[string]bool{".jpg": true, ".jpeg": true, ".png": true}
	if !allowedExts[strings.ToLower(ext)] {
		return nil, ErrInvalidFileFormat
	}

	medicationUploadsDir := filepath.Join(s.uploadsDir, "medications", strconv.FormatInt(medicationID, 10))
	if err := os.MkdirAll(medicationUploadsDir, os.ModePerm); err != nil {
		return nil, fmt.Errorf("failed to create upload directory: %w", err)
	}

	fileName := filepath.Base(fileHeader.Filename) // Basic sanitization
	filePath := filepath.Join(medicationUploadsDir, fileName)
	relativeFilePath := filepath.ToSlash(filePath) // Store with forward slashes for consistency

	// Save the file
	src, err := fileHeader.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open uploaded file: %w", err)
	}
	defer src.Close()

	dst, err := os.Create(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to create file on server: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return nil, fmt.Errorf("failed to save file: %w", err)
	}

	// Update medication with proof photo path
	if err := s.repo.UpdateProofPath(ctx, medicationID, userID, relativeFilePath); err != nil {
		os.Remove(filePath) // Attempt to clean up
		return nil, fmt.Errorf("failed to update medication with proof path: %w", err)
	}

	medication.ProofPhoto = &relativeFilePath // Update the model in memory
	return medication, nil
}

func (s *medicationService) GetProofPath(ctx context.Context, medicationID int64, userID int) (string, string, error) {
	medication, err := s.repo.FindByIDForUser(ctx, medicationID, userID)
	if err != nil {
		return "", "", fmt.Errorf("failed to find medication for proof retrieval: %w", err)
	}
	if medication == nil {
		return "", "", ErrMedicationNotFound
	}

	if medication.ProofPhoto == nil || *medication.ProofPhoto == "" {
		return "", "", ErrProofNotFound
	}

	fullPath := filepath.FromSlash(*medication.ProofPhoto)
	fileName := filepath.Base(fullPath)

	return fullPath, fileName, nil
}
