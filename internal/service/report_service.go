package service

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf"

	"lingotrail-backend/internal/repository"
)

// ReportService renders a user's trail progress as a downloadable PDF.
type ReportService interface {
	GenerateProgressReport(userID uint) ([]byte, error)
}

type reportService struct {
	progress    ProgressService
	contentRepo repository.ContentRepository
	userRepo    repository.UserRepository
}

func NewReportService(progress ProgressService, contentRepo repository.ContentRepository, userRepo repository.UserRepository) ReportService {
	return &reportService{
		progress:    progress,
		contentRepo: contentRepo,
		userRepo:    userRepo,
	}
}

func (s *reportService) GenerateProgressReport(userID uint) ([]byte, error) {
	user, err := s.userRepo.GetUserByID(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch user: %w", err)
	}
	overview, err := s.progress.Overview(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to compute overview: %w", err)
	}
	categories, err := s.contentRepo.GetCategories()
	if err != nil {
		return nil, fmt.Errorf("failed to fetch categories: %w", err)
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetFont("Arial", "B", 16)
	pdf.AddPage()
	pdf.Cell(40, 10, fmt.Sprintf("Learning Progress - %s", user.Username))
	pdf.Ln(14)

	pdf.SetFont("Arial", "", 11)
	pdf.Cell(0, 8, fmt.Sprintf("Steps attempted: %d   Completed: %d   Attempts: %d",
		overview.TotalSteps, overview.CompletedSteps, overview.TotalAttempts))
	pdf.Ln(8)
	pdf.Cell(0, 8, fmt.Sprintf("Average score: %.1f   Best score: %d",
		overview.AverageScore, overview.BestScore))
	pdf.Ln(12)

	for _, category := range categories {
		entries, err := s.progress.GetUserProgressByCategory(userID, category.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch category progress: %w", err)
		}
		if len(entries) == 0 {
			continue
		}

		pdf.SetFont("Arial", "B", 13)
		pdf.Cell(0, 9, fmt.Sprintf("%s (%s)", category.Name, category.Language))
		pdf.Ln(9)
		pdf.SetFont("Arial", "", 10)

		for _, entry := range entries {
			line := fmt.Sprintf("%d. %s [%s]", entry.Step.StepNumber, entry.Step.Name, entry.Step.Kind)
			if entry.Progress != nil {
				status := "not passed"
				if entry.Progress.Completed {
					status = "passed"
				}
				line += fmt.Sprintf(" - score %d, %d attempts, %s",
					entry.Progress.Score, entry.Progress.Attempts, status)
			} else {
				line += " - not attempted"
			}
			pdf.Cell(0, 6, line)
			pdf.Ln(6)
		}
		pdf.Ln(4)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to render PDF: %w", err)
	}
	return buf.Bytes(), nil
}
