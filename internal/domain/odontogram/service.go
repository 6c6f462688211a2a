package odontogram

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// Service implements odontogram business logic.
type Service struct {
	repo Repository
}

// NewService creates an odontogram service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// RecordInput carries one tooth condition update.
type RecordInput struct {
	ToothNumber string    `json:"tooth_number"`
	Condition   Condition `json:"condition"`
	Notes       *string   `json:"notes,omitempty"`
}

// Record upserts the condition of one tooth.
func (s *Service) Record(ctx context.Context, patientID, recordedBy uuid.UUID, in RecordInput) (*ToothRecord, error) {
	if patientID == uuid.Nil {
		return nil, fmt.Errorf("odontogram: patient_id is required")
	}
	if !ValidFDI(in.ToothNumber) {
		return nil, fmt.Errorf("odontogram: %q is not a valid FDI tooth number", in.ToothNumber)
	}
	if !in.Condition.Valid() {
		return nil, fmt.Errorf("odontogram: unknown condition %q", in.Condition)
	}
	r := &ToothRecord{
		ID:          uuid.New(),
		PatientID:   patientID,
		ToothNumber: in.ToothNumber,
		Condition:   in.Condition,
		Notes:       in.Notes,
		RecordedBy:  recordedBy,
	}
	if err := s.repo.Upsert(ctx, r); err != nil {
		return nil, err
	}
	return r, nil
}

// Chart returns every recorded tooth for the patient.
func (s *Service) Chart(ctx context.Context, patientID uuid.UUID) ([]*ToothRecord, error) {
	if patientID == uuid.Nil {
		return nil, fmt.Errorf("odontogram: patient_id is required")
	}
	return s.repo.ListByPatient(ctx, patientID)
}

// Tooth returns the record for one tooth.
func (s *Service) Tooth(ctx context.Context, patientID uuid.UUID, tooth string) (*ToothRecord, error) {
	if !ValidFDI(tooth) {
		return nil, fmt.Errorf("odontogram: %q is not a valid FDI tooth number", tooth)
	}
	return s.repo.Get(ctx, patientID, tooth)
}
