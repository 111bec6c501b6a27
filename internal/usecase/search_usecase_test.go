package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"go-jobsearch-backend/internal/cache"
	"go-jobsearch-backend/internal/domain"
	"go-jobsearch-backend/internal/filter"
	"go-jobsearch-backend/internal/usecase"
	"go-jobsearch-backend/pkg/apperror"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// Mock collaborators

type MockSearchRepo struct {
	mock.Mock
}

func (m *MockSearchRepo) FindPage(ctx context.Context, pred domain.Predicate, sort domain.SortSpec, skip, limit int) ([]domain.Job, int64, error) {
	args := m.Called(ctx, pred, sort, skip, limit)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]domain.Job), args.Get(1).(int64), args.Error(2)
}

func (m *MockSearchRepo) Count(ctx context.Context, pred domain.Predicate) (int64, error) {
	args := m.Called(ctx, pred)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockSearchRepo) FindEnriched(ctx context.Context, pred domain.Predicate, max int) ([]domain.Job, int64, error) {
	args := m.Called(ctx, pred, max)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]domain.Job), args.Get(1).(int64), args.Error(2)
}

type MockSignals struct {
	mock.Mock
}

func (m *MockSignals) GetSignals(ctx context.Context, userID string) (*domain.UserSignal, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.UserSignal), args.Error(1)
}

type MockEvents struct {
	mock.Mock
}

func (m *MockEvents) Publish(eventName string, payload map[string]any) {
	m.Called(eventName, payload)
}

// memStore backs the cache policy in tests.
type memStore struct {
	entries map[string][]byte
}

func newMemStore() *memStore { return &memStore{entries: map[string][]byte{}} }

func (m *memStore) Get(_ context.Context, key string) ([]byte, error) {
	payload, ok := m.entries[key]
	if !ok {
		return nil, nil
	}
	return payload, nil
}

func (m *memStore) Set(_ context.Context, key string, value []byte, _ time.Duration) error {
	m.entries[key] = value
	return nil
}

func (m *memStore) Delete(_ context.Context, key string) error {
	delete(m.entries, key)
	return nil
}

func newUC(repo domain.SearchRepository, signals domain.SignalProvider, events domain.EventPublisher, store cache.Store) domain.SearchUsecase {
	normalizer := filter.NewNormalizer(validator.New(), "India")
	policy := cache.NewPolicy(store, 300*time.Second, 1800*time.Second, nil)
	return usecase.NewSearchUsecase(normalizer, repo, policy, signals, events, 3, 100)
}

func pagedJobs(n int) []domain.Job {
	jobs := make([]domain.Job, n)
	for idx := range jobs {
		jobs[idx] = domain.Job{ID: int64(idx + 1), Title: "Engineer", PostedAt: time.Now().Add(-time.Duration(idx) * time.Hour)}
	}
	return jobs
}

func deadline(d time.Duration) *time.Time {
	t := time.Now().Add(d)
	return &t
}

func TestSearchValidationFailsBeforeStorage(t *testing.T) {
	repo := new(MockSearchRepo)
	uc := newUC(repo, nil, nil, nil)

	bad := 100.0
	badder := 50.0
	_, err := uc.Search(context.Background(), domain.RawFilters{SalaryMin: &bad, SalaryMax: &badder}, domain.RawSort{}, "")

	require.Error(t, err)
	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, 400, appErr.Code)
	assert.NotEmpty(t, appErr.Violations)
	repo.AssertNotCalled(t, "FindPage")
}

func TestSearchStoreSortedPagination(t *testing.T) {
	repo := new(MockSearchRepo)
	uc := newUC(repo, nil, nil, nil)

	repo.On("FindPage", mock.Anything, mock.Anything, mock.Anything, 20, 20).
		Return(pagedJobs(20), int64(45), nil).Once()

	page, err := uc.Search(context.Background(), domain.RawFilters{Page: 2, Limit: 20}, domain.RawSort{Strategy: "date"}, "")
	require.NoError(t, err)

	assert.Equal(t, int64(45), page.Pagination.Total)
	assert.Equal(t, 3, page.Pagination.TotalPages, "totalPages == ceil(total/limit)")
	assert.True(t, page.Pagination.HasNext)
	assert.True(t, page.Pagination.HasPrev)
	assert.Equal(t, "date", page.SortMeta.Strategy)
	assert.False(t, page.SortMeta.Cached)
	repo.AssertExpectations(t)
}

func TestSearchZeroResultsIsNotAnError(t *testing.T) {
	repo := new(MockSearchRepo)
	uc := newUC(repo, nil, nil, nil)

	repo.On("FindPage", mock.Anything, mock.Anything, mock.Anything, 0, 20).
		Return([]domain.Job{}, int64(0), nil).Once()

	page, err := uc.Search(context.Background(), domain.RawFilters{}, domain.RawSort{Strategy: "date"}, "")
	require.NoError(t, err)

	assert.Empty(t, page.Items)
	assert.Equal(t, int64(0), page.Pagination.Total)
	assert.Equal(t, 0, page.Pagination.TotalPages)
	assert.False(t, page.Pagination.HasNext)
}

func TestSearchRetriesThenSucceeds(t *testing.T) {
	repo := new(MockSearchRepo)
	uc := newUC(repo, nil, nil, nil)

	repo.On("FindPage", mock.Anything, mock.Anything, mock.Anything, 0, 20).
		Return(nil, int64(0), errors.New("connection reset")).Twice()
	repo.On("FindPage", mock.Anything, mock.Anything, mock.Anything, 0, 20).
		Return(pagedJobs(1), int64(1), nil).Once()

	page, err := uc.Search(context.Background(), domain.RawFilters{}, domain.RawSort{Strategy: "date"}, "")
	require.NoError(t, err)
	assert.Len(t, page.Items, 1)
	repo.AssertExpectations(t)
}

func TestSearchExhaustedRetriesAreRetryable(t *testing.T) {
	repo := new(MockSearchRepo)
	uc := newUC(repo, nil, nil, nil)

	repo.On("FindPage", mock.Anything, mock.Anything, mock.Anything, 0, 20).
		Return(nil, int64(0), errors.New("connection reset")).Times(3)

	_, err := uc.Search(context.Background(), domain.RawFilters{}, domain.RawSort{Strategy: "date"}, "")
	require.Error(t, err)

	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, 503, appErr.Code)
	assert.True(t, appErr.Retryable, "an exhausted dependency is surfaced as retryable, never as an empty page")
	repo.AssertExpectations(t)
}

func TestSearchComputedStrategySortsAndExcludes(t *testing.T) {
	repo := new(MockSearchRepo)
	uc := newUC(repo, nil, nil, nil)

	jobs := []domain.Job{
		{ID: 1, PostedAt: time.Now(), ApplicationDeadline: deadline(-time.Hour)},       // past deadline: excluded
		{ID: 2, PostedAt: time.Now(), ApplicationDeadline: deadline(12 * time.Hour)},   // 100
		{ID: 3, PostedAt: time.Now(), ApplicationDeadline: deadline(48 * time.Hour)},   // 80
		{ID: 4, PostedAt: time.Now(), ApplicationDeadline: deadline(1000 * time.Hour)}, // 20
	}
	repo.On("FindEnriched", mock.Anything, mock.Anything, 1000).
		Return(jobs, int64(4), nil).Once()

	page, err := uc.Search(context.Background(), domain.RawFilters{}, domain.RawSort{Strategy: "urgency"}, "")
	require.NoError(t, err)

	require.Len(t, page.Items, 3, "past-deadline candidates leave urgency ranking entirely")
	assert.Equal(t, int64(3), page.Pagination.Total, "total reflects the post-exclusion count")
	assert.Equal(t, int64(2), page.Items[0].ID)
	assert.Equal(t, int64(3), page.Items[1].ID)
	assert.Equal(t, int64(4), page.Items[2].ID)
	assert.Equal(t, 100.0, page.Items[0].Score)
}

func TestSearchCustomStrategyUsesConfiguredCap(t *testing.T) {
	repo := new(MockSearchRepo)
	uc := newUC(repo, nil, nil, nil)

	repo.On("FindEnriched", mock.Anything, mock.Anything, 100).
		Return(pagedJobs(5), int64(5), nil).Once()

	_, err := uc.Search(context.Background(), domain.RawFilters{}, domain.RawSort{
		Strategy: "custom",
		Criteria: []domain.WeightedCriterion{{Field: "recency", Weight: 1}},
	}, "")
	require.NoError(t, err)
	repo.AssertExpectations(t)
}

func TestSearchCacheHitSkipsStorage(t *testing.T) {
	repo := new(MockSearchRepo)
	events := new(MockEvents)
	events.On("Publish", "job_search", mock.Anything).Return()
	store := newMemStore()
	uc := newUC(repo, nil, events, store)

	repo.On("FindPage", mock.Anything, mock.Anything, mock.Anything, 0, 20).
		Return(pagedJobs(2), int64(2), nil).Once()

	first, err := uc.Search(context.Background(), domain.RawFilters{}, domain.RawSort{Strategy: "date"}, "user-1")
	require.NoError(t, err)
	assert.False(t, first.SortMeta.Cached)

	second, err := uc.Search(context.Background(), domain.RawFilters{}, domain.RawSort{Strategy: "date"}, "user-1")
	require.NoError(t, err)
	assert.True(t, second.SortMeta.Cached)
	assert.Equal(t, first.Items, second.Items)

	repo.AssertNumberOfCalls(t, "FindPage", 1)
}

func TestSearchCacheIsPerIdentity(t *testing.T) {
	repo := new(MockSearchRepo)
	store := newMemStore()
	uc := newUC(repo, nil, nil, store)

	repo.On("FindPage", mock.Anything, mock.Anything, mock.Anything, 0, 20).
		Return(pagedJobs(1), int64(1), nil).Twice()

	_, err := uc.Search(context.Background(), domain.RawFilters{}, domain.RawSort{Strategy: "date"}, "user-1")
	require.NoError(t, err)
	_, err = uc.Search(context.Background(), domain.RawFilters{}, domain.RawSort{Strategy: "date"}, "user-2")
	require.NoError(t, err)

	repo.AssertNumberOfCalls(t, "FindPage", 2)
}

func TestSearchAnnotatesPersonalization(t *testing.T) {
	repo := new(MockSearchRepo)
	signals := new(MockSignals)
	uc := newUC(repo, signals, nil, nil)

	signal := &domain.UserSignal{TopSkills: []string{"go"}}
	signals.On("GetSignals", mock.Anything, "user-1").Return(signal, nil)

	jobs := []domain.Job{{ID: 1, Skills: []string{"Go"}, PostedAt: time.Now()}}

	t.Run("date-sorted pages carry the advisory blend", func(t *testing.T) {
		repo.On("FindPage", mock.Anything, mock.Anything, mock.Anything, 0, 20).
			Return(jobs, int64(1), nil).Once()

		page, err := uc.Search(context.Background(), domain.RawFilters{}, domain.RawSort{Strategy: "date"}, "user-1")
		require.NoError(t, err)
		require.NotNil(t, page.Items[0].Personalization)
		assert.Greater(t, page.Items[0].Personalization.Score, 50.0)
	})

	t.Run("explicitly ranked strategies stay unannotated", func(t *testing.T) {
		repo.On("FindEnriched", mock.Anything, mock.Anything, 1000).
			Return(jobs, int64(1), nil).Once()

		page, err := uc.Search(context.Background(), domain.RawFilters{}, domain.RawSort{
			Strategy:   "match-score",
			UserSkills: []string{"go"},
		}, "user-1")
		require.NoError(t, err)
		assert.Nil(t, page.Items[0].Personalization)
	})
}

func TestSearchSignalFailureIsAdvisory(t *testing.T) {
	repo := new(MockSearchRepo)
	signals := new(MockSignals)
	uc := newUC(repo, signals, nil, nil)

	signals.On("GetSignals", mock.Anything, "user-1").Return(nil, errors.New("profile service down"))
	repo.On("FindPage", mock.Anything, mock.Anything, mock.Anything, 0, 20).
		Return(pagedJobs(1), int64(1), nil).Once()

	page, err := uc.Search(context.Background(), domain.RawFilters{}, domain.RawSort{Strategy: "date"}, "user-1")
	require.NoError(t, err)
	assert.Nil(t, page.Items[0].Personalization)
}

func TestSearchPublishesAnalytics(t *testing.T) {
	repo := new(MockSearchRepo)
	events := new(MockEvents)
	uc := newUC(repo, nil, events, nil)

	repo.On("FindPage", mock.Anything, mock.Anything, mock.Anything, 0, 20).
		Return(pagedJobs(1), int64(1), nil).Once()
	events.On("Publish", "job_search", mock.MatchedBy(func(payload map[string]any) bool {
		return payload["strategy"] == "date" && payload["total"] == int64(1)
	})).Return().Once()

	_, err := uc.Search(context.Background(), domain.RawFilters{}, domain.RawSort{Strategy: "date"}, "")
	require.NoError(t, err)
	events.AssertExpectations(t)
}
