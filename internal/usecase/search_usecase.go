package usecase

import (
	"context"
	"math"
	"time"

	"go-jobsearch-backend/internal/cache"
	"go-jobsearch-backend/internal/domain"
	"go-jobsearch-backend/internal/filter"
	"go-jobsearch-backend/internal/personalize"
	"go-jobsearch-backend/internal/query"
	"go-jobsearch-backend/internal/scoring"
	"go-jobsearch-backend/pkg/apperror"
	"go-jobsearch-backend/pkg/logger"
)

// computedFetchCap bounds the enriched candidate pass for computed
// strategies other than custom, which carries its own configured cap.
const computedFetchCap = 1000

type searchUsecase struct {
	normalizer *filter.Normalizer
	repo       domain.SearchRepository
	cache      *cache.Policy
	signals    domain.SignalProvider
	events     domain.EventPublisher
	retries    int
	customCap  int
	now        func() time.Time
}

func NewSearchUsecase(
	normalizer *filter.Normalizer,
	repo domain.SearchRepository,
	cachePolicy *cache.Policy,
	signals domain.SignalProvider,
	events domain.EventPublisher,
	retries int,
	customCap int,
) domain.SearchUsecase {
	if retries < 1 {
		retries = 1
	}
	if customCap < 1 {
		customCap = 100
	}
	return &searchUsecase{
		normalizer: normalizer,
		repo:       repo,
		cache:      cachePolicy,
		signals:    signals,
		events:     events,
		retries:    retries,
		customCap:  customCap,
		now:        time.Now,
	}
}

func (u *searchUsecase) Search(ctx context.Context, rawFilters domain.RawFilters, rawSort domain.RawSort, identity string) (*domain.SearchPage, error) {
	criteria, err := u.normalizer.Normalize(rawFilters)
	if err != nil {
		return nil, err
	}
	spec, err := u.normalizer.NormalizeSort(rawSort)
	if err != nil {
		return nil, err
	}
	if identity == "" {
		identity = domain.AnonymousIdentity
	}

	signal := u.lookupSignals(ctx, identity)

	key := cache.Key(spec.Strategy, criteria, identity)
	if u.cache != nil {
		if page, ok := u.cache.Fetch(ctx, key); ok {
			u.publish(criteria, spec, identity, page)
			return page, nil
		}
	}

	now := u.now()
	var hint *query.Hint
	if signal != nil && len(signal.TopSkills) > 0 {
		hint = &query.Hint{PreferredSkills: signal.TopSkills}
	}
	pred := query.Compile(criteria, hint, now)

	var page *domain.SearchPage
	if scoring.IsComputed(spec.Strategy) {
		page, err = u.rankComputed(ctx, pred, criteria, spec, now)
	} else {
		page, err = u.rankStoreSorted(ctx, pred, criteria, spec)
	}
	if err != nil {
		return nil, err
	}

	u.annotate(page, spec, signal, now)

	if u.cache != nil {
		u.cache.Save(ctx, key, page)
	}
	u.publish(criteria, spec, identity, page)
	return page, nil
}

// rankStoreSorted delegates ordering to the storage collaborator: the page
// slice and total come back from one snapshot-consistent read.
func (u *searchUsecase) rankStoreSorted(ctx context.Context, pred domain.Predicate, criteria domain.FilterCriteria, spec domain.SortSpec) (*domain.SearchPage, error) {
	skip := (criteria.Page - 1) * criteria.Limit

	jobs, total, err := u.findPageRetry(ctx, pred, spec, skip, criteria.Limit)
	if err != nil {
		return nil, err
	}

	items := make([]domain.ScoredJob, 0, len(jobs))
	for _, job := range jobs {
		items = append(items, domain.ScoredJob{Job: job, Score: storeScore(job, spec.Strategy)})
	}

	return buildPage(items, total, criteria, spec), nil
}

// rankComputed pulls the enriched candidate set, scores it in-process,
// drops strategy-excluded candidates, sorts deterministically and slices
// the requested page. Total reflects the post-exclusion candidate count so
// pagination never points at excluded rows.
func (u *searchUsecase) rankComputed(ctx context.Context, pred domain.Predicate, criteria domain.FilterCriteria, spec domain.SortSpec, now time.Time) (*domain.SearchPage, error) {
	fetchCap := computedFetchCap
	if spec.Strategy == domain.SortCustom {
		fetchCap = u.customCap
	}

	jobs, _, err := u.findEnrichedRetry(ctx, pred, fetchCap)
	if err != nil {
		return nil, err
	}

	scored := make([]domain.ScoredJob, 0, len(jobs))
	for _, job := range jobs {
		score, err := scoring.Score(job, spec, now)
		if err != nil {
			// ComputationError path: the candidate leaves this strategy's
			// ranking, the page survives.
			continue
		}
		scored = append(scored, domain.ScoredJob{Job: job, Score: score})
	}

	scoring.SortScored(scored, spec.Ascending())

	total := int64(len(scored))
	skip := (criteria.Page - 1) * criteria.Limit
	if skip > len(scored) {
		skip = len(scored)
	}
	end := skip + criteria.Limit
	if end > len(scored) {
		end = len(scored)
	}

	return buildPage(scored[skip:end], total, criteria, spec), nil
}

func (u *searchUsecase) findPageRetry(ctx context.Context, pred domain.Predicate, spec domain.SortSpec, skip, limit int) ([]domain.Job, int64, error) {
	var lastErr error
	for attempt := 0; attempt < u.retries; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, 0, apperror.Unavailable("Job search was cancelled or timed out", err)
		}
		jobs, total, err := u.repo.FindPage(ctx, pred, spec, skip, limit)
		if err == nil {
			return jobs, total, nil
		}
		lastErr = err
	}
	return nil, 0, apperror.Unavailable("Job search is temporarily unavailable", lastErr)
}

func (u *searchUsecase) findEnrichedRetry(ctx context.Context, pred domain.Predicate, fetchCap int) ([]domain.Job, int64, error) {
	var lastErr error
	for attempt := 0; attempt < u.retries; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, 0, apperror.Unavailable("Job search was cancelled or timed out", err)
		}
		jobs, total, err := u.repo.FindEnriched(ctx, pred, fetchCap)
		if err == nil {
			return jobs, total, nil
		}
		lastErr = err
	}
	return nil, 0, apperror.Unavailable("Job search is temporarily unavailable", lastErr)
}

// annotate attaches the advisory personalization blend when the user has
// signals and the ordering is not already an explicit user-chosen ranking.
func (u *searchUsecase) annotate(page *domain.SearchPage, spec domain.SortSpec, signal *domain.UserSignal, now time.Time) {
	if signal == nil {
		return
	}
	if spec.Strategy != domain.SortRelevance && spec.Strategy != domain.SortDate {
		return
	}
	for i := range page.Items {
		fit := personalize.Blend(page.Items[i].Job, *signal, now)
		page.Items[i].Personalization = &fit
	}
}

func (u *searchUsecase) lookupSignals(ctx context.Context, identity string) *domain.UserSignal {
	if u.signals == nil || identity == domain.AnonymousIdentity {
		return nil
	}
	signal, err := u.signals.GetSignals(ctx, identity)
	if err != nil {
		// Signals are advisory; a profile-service hiccup must not fail search.
		if logger.Log != nil {
			logger.Log.Warn("signal lookup failed", "identity", identity, "error", err)
		}
		return nil
	}
	return signal
}

func (u *searchUsecase) publish(criteria domain.FilterCriteria, spec domain.SortSpec, identity string, page *domain.SearchPage) {
	if u.events == nil {
		return
	}
	u.events.Publish("job_search", map[string]any{
		"strategy": spec.Strategy,
		"order":    spec.Order,
		"identity": identity,
		"query":    criteria.Query,
		"page":     criteria.Page,
		"limit":    criteria.Limit,
		"total":    page.Pagination.Total,
		"cached":   page.SortMeta.Cached,
	})
}

func buildPage(items []domain.ScoredJob, total int64, criteria domain.FilterCriteria, spec domain.SortSpec) *domain.SearchPage {
	totalPages := int(math.Ceil(float64(total) / float64(criteria.Limit)))
	return &domain.SearchPage{
		Items: items,
		Pagination: domain.Pagination{
			Page:       criteria.Page,
			Limit:      criteria.Limit,
			Total:      total,
			TotalPages: totalPages,
			HasNext:    criteria.Page < totalPages,
			HasPrev:    criteria.Page > 1,
		},
		SortMeta: domain.SortMeta{
			Strategy: spec.Strategy,
			Order:    spec.Order,
			Cached:   false,
		},
	}
}

// storeScore surfaces the ordering key the store sorted by, so every item
// carries a meaningful score regardless of strategy.
func storeScore(job domain.Job, strategy string) float64 {
	switch strategy {
	case domain.SortRelevance:
		return job.RelevanceRank
	case domain.SortSalaryHigh:
		if job.Salary.Max != nil {
			return *job.Salary.Max
		}
	case domain.SortSalaryLow:
		if job.Salary.Min != nil {
			return *job.Salary.Min
		}
	case domain.SortCompanyRating:
		if job.Company.Rating != nil {
			return *job.Company.Rating
		}
	case domain.SortApplications:
		return float64(job.Applications)
	case domain.SortViews:
		return float64(job.Views)
	}
	return 0
}
