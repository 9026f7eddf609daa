package handlers_test

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/eshaffer321/statement-reconciler/internal/application/reconcile"
	"github.com/eshaffer321/statement-reconciler/internal/domain/duplicates"
	"github.com/eshaffer321/statement-reconciler/internal/infrastructure/storage"
)

// MockService is a testify mock of handlers.ReconcileService.
type MockService struct {
	mock.Mock
}

func (m *MockService) RunReconciliation(ctx context.Context, in reconcile.Input) (*reconcile.RunResult, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*reconcile.RunResult), args.Error(1)
}

func (m *MockService) GetReport(ctx context.Context, id string) (*storage.StoredReport, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*storage.StoredReport), args.Error(1)
}

func (m *MockService) ListReports(ctx context.Context, filters storage.ReportFilters) ([]storage.ReportSummaryRow, error) {
	args := m.Called(ctx, filters)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]storage.ReportSummaryRow), args.Error(1)
}

func (m *MockService) ResolveResult(ctx context.Context, reportID, externalID, internalID, note string) error {
	args := m.Called(ctx, reportID, externalID, internalID, note)
	return args.Error(0)
}

func (m *MockService) DetectDuplicates(ctx context.Context, req reconcile.DuplicateRequest) (*duplicates.Result, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*duplicates.Result), args.Error(1)
}

func (m *MockService) ConfirmNotDuplicate(ctx context.Context, firstID, secondID, note string) (duplicates.PairKey, error) {
	args := m.Called(ctx, firstID, secondID, note)
	return args.Get(0).(duplicates.PairKey), args.Error(1)
}
