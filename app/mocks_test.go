package app

import (
	"context"

	"github.com/stretchr/testify/mock"

	"datagent/adapters/llm"
	"datagent/domain/core"
	"datagent/domain/datareadiness/ingestion"
	"datagent/domain/dataset"
)

type mockRepo struct {
	mock.Mock
}

func (m *mockRepo) Create(ctx context.Context, ds *dataset.Dataset) error {
	return m.Called(ctx, ds).Error(0)
}

func (m *mockRepo) GetByID(ctx context.Context, id core.DatasetID) (*dataset.Dataset, error) {
	args := m.Called(ctx, id)
	ds, _ := args.Get(0).(*dataset.Dataset)
	return ds, args.Error(1)
}

func (m *mockRepo) LogQuery(ctx context.Context, q *dataset.QueryRecord) error {
	return m.Called(ctx, q).Error(0)
}

func (m *mockRepo) History(ctx context.Context, id core.DatasetID) ([]*dataset.QueryRecord, error) {
	args := m.Called(ctx, id)
	qs, _ := args.Get(0).([]*dataset.QueryRecord)
	return qs, args.Error(1)
}

func (m *mockRepo) RecentSuccessful(ctx context.Context, limit int) ([]*dataset.QueryRecord, error) {
	args := m.Called(ctx, limit)
	qs, _ := args.Get(0).([]*dataset.QueryRecord)
	return qs, args.Error(1)
}

func (m *mockRepo) ListQueries(ctx context.Context, id core.DatasetID) ([]*dataset.QueryRecord, error) {
	args := m.Called(ctx, id)
	qs, _ := args.Get(0).([]*dataset.QueryRecord)
	return qs, args.Error(1)
}

type mockIngester struct {
	mock.Mock
}

func (m *mockIngester) Process(ctx context.Context, path string) (*ingestion.IngestionReport, error) {
	args := m.Called(ctx, path)
	r, _ := args.Get(0).(*ingestion.IngestionReport)
	return r, args.Error(1)
}

type mockAgent struct {
	mock.Mock
}

func (m *mockAgent) Analyze(ctx context.Context, table *ingestion.CleanedTable, query string) (*llm.Analysis, error) {
	args := m.Called(ctx, table, query)
	a, _ := args.Get(0).(*llm.Analysis)
	return a, args.Error(1)
}
