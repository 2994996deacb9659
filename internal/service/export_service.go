package service

import (
	"context"
	"fmt"
	"io"

	"github.com/Eursukkul/race-registration/internal/export"
	"github.com/Eursukkul/race-registration/internal/models"
	"github.com/Eursukkul/race-registration/internal/repository"
)

type SheetsExporter interface {
	Export(ctx context.Context, regs []models.Registration) (int, error)
}

type ExportService interface {
	WriteCSV(ctx context.Context, w io.Writer, eventID *uint) (int, error)
	ExportSheets(ctx context.Context, eventID *uint) (int, error)
}

type exportService struct {
	regRepo repository.RegistrationRepository
	sheets  SheetsExporter
}

// NewExportService accepts a nil sheets exporter when Google Sheets is not configured.
func NewExportService(regRepo repository.RegistrationRepository, sheets SheetsExporter) ExportService {
	return &exportService{regRepo: regRepo, sheets: sheets}
}

func (s *exportService) WriteCSV(ctx context.Context, w io.Writer, eventID *uint) (int, error) {
	regs, err := s.regRepo.ListActiveForExport(ctx, eventID)
	if err != nil {
		return 0, persistence("list registrations for export", err)
	}
	n, err := export.WriteCSV(w, regs)
	if err != nil {
		return n, fmt.Errorf("write csv: %w", err)
	}
	return n, nil
}

func (s *exportService) ExportSheets(ctx context.Context, eventID *uint) (int, error) {
	if s.sheets == nil {
		return 0, fmt.Errorf("%w: google sheets export is not configured", ErrExternalService)
	}
	regs, err := s.regRepo.ListActiveForExport(ctx, eventID)
	if err != nil {
		return 0, persistence("list registrations for export", err)
	}
	n, err := s.sheets.Export(ctx, regs)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrExternalService, err)
	}
	return n, nil
}
