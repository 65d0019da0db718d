package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"alfredoptarigan/resume-analyzer/internal/models"
)

// ReportRepository stores evaluation reports. Every read and delete is scoped
// to the owner that created the report.
type ReportRepository interface {
	Create(ctx context.Context, ownerID, jobDescription string, result *models.AnalysisResult) (*models.Report, error)
	ListByOwner(ctx context.Context, ownerID string) ([]models.Report, error)
	DeleteByOwnerAndID(ctx context.Context, ownerID, id string) error
}

type reportRepository struct {
	db  *gorm.DB
	now func() time.Time
}

func NewReportRepository(db *gorm.DB) ReportRepository {
	return &reportRepository{db: db, now: time.Now}
}

// Create implements ReportRepository.
func (r *reportRepository) Create(ctx context.Context, ownerID, jobDescription string, result *models.AnalysisResult) (*models.Report, error) {
	report := newReport(ownerID, jobDescription, result, r.now())

	if err := r.db.WithContext(ctx).Create(report).Error; err != nil {
		return nil, fmt.Errorf("failed to create report: %w", err)
	}

	return report, nil
}

// ListByOwner implements ReportRepository.
func (r *reportRepository) ListByOwner(ctx context.Context, ownerID string) ([]models.Report, error) {
	reports := make([]models.Report, 0)
	err := r.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("created_at DESC").
		Find(&reports).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list reports: %w", err)
	}

	for i := range reports {
		if reports[i].Skills == nil {
			reports[i].Skills = []string{}
		}
	}

	return reports, nil
}

// DeleteByOwnerAndID implements ReportRepository. A miss is not an error.
func (r *reportRepository) DeleteByOwnerAndID(ctx context.Context, ownerID, id string) error {
	reportID, err := uuid.Parse(id)
	if err != nil {
		// A malformed id cannot name any stored report.
		return nil
	}

	err = r.db.WithContext(ctx).
		Where("id = ? AND owner_id = ?", reportID, ownerID).
		Delete(&models.Report{}).Error
	if err != nil {
		return fmt.Errorf("failed to delete report: %w", err)
	}

	return nil
}

func newReport(ownerID, jobDescription string, result *models.AnalysisResult, createdAt time.Time) *models.Report {
	report := &models.Report{
		ID:             uuid.New(),
		OwnerID:        ownerID,
		JobDescription: jobDescription,
		Skills:         []string{},
		CreatedAt:      createdAt.UTC(),
	}

	if result != nil {
		report.MatchScore = result.MatchScore
		report.Feedback = result.Feedback
		if result.Skills != nil {
			report.Skills = append([]string(nil), result.Skills...)
		}
	}

	return report
}
