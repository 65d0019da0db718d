package repositories

import (
	"context"
	"sort"
	"sync"
	"time"

	"alfredoptarigan/resume-analyzer/internal/models"
)

// memoryReportRepository keeps reports in process memory. It backs local runs
// with DB_DRIVER=memory and shares ownership semantics with the gorm store.
type memoryReportRepository struct {
	mu      sync.RWMutex
	reports []models.Report
	now     func() time.Time
}

func NewMemoryReportRepository() ReportRepository {
	return &memoryReportRepository{now: time.Now}
}

// Create implements ReportRepository.
func (m *memoryReportRepository) Create(ctx context.Context, ownerID, jobDescription string, result *models.AnalysisResult) (*models.Report, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	report := newReport(ownerID, jobDescription, result, m.now())

	m.mu.Lock()
	m.reports = append(m.reports, cloneReport(*report))
	m.mu.Unlock()

	return report, nil
}

// ListByOwner implements ReportRepository.
func (m *memoryReportRepository) ListByOwner(ctx context.Context, ownerID string) ([]models.Report, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.RLock()
	out := make([]models.Report, 0)
	// Walk newest insertion first so equal timestamps keep creation order.
	for i := len(m.reports) - 1; i >= 0; i-- {
		if m.reports[i].OwnerID == ownerID {
			out = append(out, cloneReport(m.reports[i]))
		}
	}
	m.mu.RUnlock()

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})

	return out, nil
}

// DeleteByOwnerAndID implements ReportRepository.
func (m *memoryReportRepository) DeleteByOwnerAndID(ctx context.Context, ownerID, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	for i, report := range m.reports {
		if report.ID.String() == id && report.OwnerID == ownerID {
			m.reports = append(m.reports[:i], m.reports[i+1:]...)
			return nil
		}
	}

	return nil
}

func cloneReport(r models.Report) models.Report {
	r.Skills = append([]string{}, r.Skills...)
	return r
}
