package storage

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/eshaffer321/statement-reconciler/internal/domain/duplicates"
	"github.com/eshaffer321/statement-reconciler/internal/domain/report"
)

// MockRepository is an in-memory implementation of Repository for testing.
// It stores all data in maps, making tests fast and isolated.
type MockRepository struct {
	mu           sync.Mutex
	reports      map[string]*report.Report
	order        []string // insertion order of report IDs
	resolutions  map[string]map[string]bool
	suppressions map[duplicates.PairKey]Suppression

	// Hooks for test assertions
	SaveReportCalled      bool
	LastSavedReport       *report.Report
	MarkResolvedCalled    bool
	LastResolution        *Resolution
	SaveSuppressionCalled bool

	// Error injection for testing error paths
	SaveReportErr       error
	GetReportErr        error
	ListReportsErr      error
	MarkResolvedErr     error
	SaveSuppressionErr  error
	LoadSuppressionsErr error
}

// NewMockRepository creates a new mock repository for testing
func NewMockRepository() *MockRepository {
	return &MockRepository{
		reports:      make(map[string]*report.Report),
		resolutions:  make(map[string]map[string]bool),
		suppressions: make(map[duplicates.PairKey]Suppression),
	}
}

// Compile-time check that MockRepository implements Repository
var _ Repository = (*MockRepository)(nil)

// Close does nothing for mock
func (m *MockRepository) Close() error {
	return nil
}

// SaveReport stores the report under a new ID
func (m *MockRepository) SaveReport(_ context.Context, r *report.Report) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.SaveReportCalled = true
	m.LastSavedReport = r
	if m.SaveReportErr != nil {
		return "", m.SaveReportErr
	}

	id := uuid.NewString()
	m.reports[id] = r
	m.order = append(m.order, id)
	return id, nil
}

// AddReport stores a report under a caller-chosen ID
func (m *MockRepository) AddReport(id string, r *report.Report) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.reports[id]; !ok {
		m.order = append(m.order, id)
	}
	m.reports[id] = r
}

// GetReport returns a stored report or ErrNotFound
func (m *MockRepository) GetReport(_ context.Context, id string) (*StoredReport, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.GetReportErr != nil {
		return nil, m.GetReportErr
	}
	r, ok := m.reports[id]
	if !ok {
		return nil, fmt.Errorf("report %s: %w", id, ErrNotFound)
	}
	return &StoredReport{ID: id, Report: r, Resolved: m.resolvedCopy(id)}, nil
}

// ListReports filters stored reports, newest first
func (m *MockRepository) ListReports(_ context.Context, filters ReportFilters) ([]ReportSummaryRow, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.ListReportsErr != nil {
		return nil, m.ListReportsErr
	}

	rows := make([]ReportSummaryRow, 0, len(m.order))
	for _, id := range m.order {
		r := m.reports[id]
		meta, summary := r.Metadata(), r.Summary()
		if filters.StatementID != "" && meta.StatementID != filters.StatementID {
			continue
		}
		if filters.Status != "" && string(summary.Status) != filters.Status {
			continue
		}
		rows = append(rows, ReportSummaryRow{
			ID:              id,
			StatementID:     meta.StatementID,
			ProfileID:       meta.ProfileID,
			Bank:            meta.Bank,
			Currency:        meta.Currency,
			PeriodStart:     meta.PeriodStart,
			PeriodEnd:       meta.PeriodEnd,
			Status:          summary.Status,
			MatchPercentage: summary.MatchPercentage,
			Discrepancies:   summary.Discrepancies,
			ProcessedAt:     meta.ProcessedAt,
		})
	}

	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].ProcessedAt.After(rows[j].ProcessedAt)
	})

	start := filters.Offset
	if start > len(rows) {
		start = len(rows)
	}
	end := start + filters.limit()
	if end > len(rows) {
		end = len(rows)
	}
	return rows[start:end], nil
}

// MarkResolved records a resolution
func (m *MockRepository) MarkResolved(_ context.Context, res Resolution) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.MarkResolvedCalled = true
	copied := res
	m.LastResolution = &copied
	if m.MarkResolvedErr != nil {
		return m.MarkResolvedErr
	}
	if _, ok := m.reports[res.ReportID]; !ok {
		return fmt.Errorf("report %s: %w", res.ReportID, ErrNotFound)
	}

	if m.resolutions[res.ReportID] == nil {
		m.resolutions[res.ReportID] = make(map[string]bool)
	}
	m.resolutions[res.ReportID][ResultKey(res.ExternalID, res.InternalID)] = true
	return nil
}

// ListResolved returns the resolved keys for a report
func (m *MockRepository) ListResolved(_ context.Context, reportID string) (map[string]bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.resolvedCopy(reportID), nil
}

// SaveSuppression stores a marker
func (m *MockRepository) SaveSuppression(_ context.Context, s Suppression) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.SaveSuppressionCalled = true
	if m.SaveSuppressionErr != nil {
		return m.SaveSuppressionErr
	}
	if _, _, err := s.Key.IDs(); err != nil {
		return fmt.Errorf("save suppression: %w", err)
	}
	if s.CreatedAt.IsZero() {
		s.CreatedAt = time.Now().UTC()
	}
	m.suppressions[s.Key] = s
	return nil
}

// LoadSuppressions returns all markers as a set
func (m *MockRepository) LoadSuppressions(_ context.Context) (duplicates.SuppressionSet, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.LoadSuppressionsErr != nil {
		return nil, m.LoadSuppressionsErr
	}
	set := duplicates.NewSuppressionSet()
	for k := range m.suppressions {
		set[k] = struct{}{}
	}
	return set, nil
}

// ReportCount returns the number of stored reports
func (m *MockRepository) ReportCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.reports)
}

// Reset clears all stored data and hooks
func (m *MockRepository) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.reports = make(map[string]*report.Report)
	m.order = nil
	m.resolutions = make(map[string]map[string]bool)
	m.suppressions = make(map[duplicates.PairKey]Suppression)

	m.SaveReportCalled = false
	m.LastSavedReport = nil
	m.MarkResolvedCalled = false
	m.LastResolution = nil
	m.SaveSuppressionCalled = false

	m.SaveReportErr = nil
	m.GetReportErr = nil
	m.ListReportsErr = nil
	m.MarkResolvedErr = nil
	m.SaveSuppressionErr = nil
	m.LoadSuppressionsErr = nil
}

func (m *MockRepository) resolvedCopy(reportID string) map[string]bool {
	out := make(map[string]bool, len(m.resolutions[reportID]))
	for k, v := range m.resolutions[reportID] {
		out[k] = v
	}
	return out
}
