package postgres

import (
	"context"
	"fmt"
	"strings"

	"go-jobsearch-backend/internal/domain"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgxpool"
)

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

type jobSearchRepo struct {
	db *pgxpool.Pool
}

func NewJobSearchRepository(db *pgxpool.Pool) domain.SearchRepository {
	return &jobSearchRepo{db: db}
}

const jobColumns = `j.id, j.title, j.description,
	j.company_id, COALESCE(c.name, 'Unknown Company'), c.size, c.type, c.rating,
	j.city, j.state, j.country, j.lat, j.lng, j.remote, j.work_mode,
	j.salary_min, j.salary_max, j.currency, j.job_type, j.skills,
	j.experience_min, j.experience_max,
	j.posted_at, j.expires_at, j.application_deadline,
	j.applications, j.views, j.shares, j.featured, j.urgent,
	j.benefits, j.tags`

// whereClauses lowers the predicate's conjunction into SQL. Baseline
// clauses (active, not deleted) are hardcoded here so no caller can bypass
// them. BoostSkills is deliberately absent: it only feeds the rank
// expression.
func whereClauses(pred domain.Predicate) sq.And {
	and := sq.And{
		sq.Eq{"j.status": "active"},
		sq.Eq{"j.is_deleted": false},
	}

	if pred.ExpiresAfter != nil {
		and = append(and, sq.Or{
			sq.Eq{"j.expires_at": nil},
			sq.Gt{"j.expires_at": *pred.ExpiresAfter},
		})
	}
	if pred.Text != "" {
		pattern := "%" + pred.Text + "%"
		and = append(and, sq.Or{
			sq.ILike{"j.title": pattern},
			sq.ILike{"j.description": pattern},
			sq.ILike{"c.name": pattern},
			sq.Expr("array_to_string(j.skills, ' ') ILIKE ?", pattern),
		})
	}
	if len(pred.Cities) > 0 {
		and = append(and, sq.Expr("LOWER(j.city) = ANY(?)", pred.Cities))
	}
	if len(pred.States) > 0 {
		and = append(and, sq.Expr("LOWER(j.state) = ANY(?)", pred.States))
	}
	if len(pred.Countries) > 0 {
		and = append(and, sq.Expr("LOWER(j.country) = ANY(?)", pred.Countries))
	}
	if pred.Remote != nil {
		and = append(and, sq.Eq{"j.remote": *pred.Remote})
	}
	if len(pred.WorkModes) > 0 {
		and = append(and, sq.Expr("LOWER(j.work_mode) = ANY(?)", pred.WorkModes))
	}
	if pred.Geo != nil {
		// Planar approximation, mirrors the in-process distance scorer.
		and = append(and, sq.Expr(
			"j.lat IS NOT NULL AND j.lng IS NOT NULL AND "+
				"power((j.lat - ?) * 111, 2) + power((j.lng - ?) * 111 * cos(radians(?)), 2) <= power(?, 2)",
			pred.Geo.Lat, pred.Geo.Lng, pred.Geo.Lat, pred.Geo.RadiusKm,
		))
	}
	if pred.SalaryMin != nil {
		and = append(and, sq.Expr("(j.salary_max IS NULL OR j.salary_max >= ?)", *pred.SalaryMin))
	}
	if pred.SalaryMax != nil {
		and = append(and, sq.Expr("(j.salary_min IS NULL OR j.salary_min <= ?)", *pred.SalaryMax))
	}
	if pred.Currency != "" {
		and = append(and, sq.Eq{"j.currency": pred.Currency})
	}
	if len(pred.JobTypes) > 0 {
		and = append(and, sq.Expr("LOWER(j.job_type) = ANY(?)", pred.JobTypes))
	}
	if pred.ExperienceMin != nil {
		and = append(and, sq.Expr("(j.experience_max IS NULL OR j.experience_max >= ?)", *pred.ExperienceMin))
	}
	if pred.ExperienceMax != nil {
		and = append(and, sq.Expr("(j.experience_min IS NULL OR j.experience_min <= ?)", *pred.ExperienceMax))
	}
	if len(pred.Levels) > 0 {
		and = append(and, sq.Expr("LOWER(j.experience_level) = ANY(?)", pred.Levels))
	}
	if len(pred.CompanyIDs) > 0 {
		and = append(and, sq.Expr("j.company_id = ANY(?)", pred.CompanyIDs))
	}
	if len(pred.CompanySizes) > 0 {
		and = append(and, sq.Expr("LOWER(c.size) = ANY(?)", pred.CompanySizes))
	}
	if len(pred.CompanyTypes) > 0 {
		and = append(and, sq.Expr("LOWER(c.type) = ANY(?)", pred.CompanyTypes))
	}
	if pred.RatingMin != nil {
		and = append(and, sq.Expr("c.rating >= ?", *pred.RatingMin))
	}
	if len(pred.Skills) > 0 {
		// Skills are stored lowercased at ingest; require all selected.
		and = append(and, sq.Expr("j.skills @> ?", pred.Skills))
	}
	if pred.PostedAfter != nil {
		and = append(and, sq.GtOrEq{"j.posted_at": *pred.PostedAfter})
	}
	if len(pred.Benefits) > 0 {
		and = append(and, sq.Expr("j.benefits && ?", pred.Benefits))
	}
	if len(pred.Features) > 0 {
		and = append(and, sq.Expr("j.tags && ?", pred.Features))
	}
	if len(pred.DiversityTags) > 0 {
		and = append(and, sq.Expr("j.diversity_tags && ?", pred.DiversityTags))
	}

	return and
}

// rankExpr is the store-assigned text-match score: weighted field hits for
// the free-text query plus one point per boost-skill overlap. Zero when the
// query carries neither.
func rankExpr(pred domain.Predicate) sq.Sqlizer {
	if pred.Text == "" && len(pred.BoostSkills) == 0 {
		return sq.Expr("0::float8")
	}

	var parts string
	var args []any
	if pred.Text != "" {
		pattern := "%" + pred.Text + "%"
		parts = `(CASE WHEN j.title ILIKE ? THEN 5 ELSE 0 END
			+ CASE WHEN array_to_string(j.skills, ' ') ILIKE ? THEN 4 ELSE 0 END
			+ CASE WHEN c.name ILIKE ? THEN 3 ELSE 0 END
			+ CASE WHEN j.description ILIKE ? THEN 2 ELSE 0 END)`
		args = append(args, pattern, pattern, pattern, pattern)
	} else {
		parts = "0"
	}
	if len(pred.BoostSkills) > 0 {
		parts += " + (SELECT count(*) FROM unnest(j.skills) s WHERE LOWER(s) = ANY(?))"
		args = append(args, lowerAll(pred.BoostSkills))
	}
	return sq.Expr("("+parts+")::float8", args...)
}

// orderClause maps a store-sorted strategy to its ORDER BY. Missing salary
// and rating sort last regardless of direction; posting date breaks ties.
func orderClause(spec domain.SortSpec) string {
	dir := "DESC"
	if spec.Ascending() {
		dir = "ASC"
	}

	switch spec.Strategy {
	case domain.SortDate:
		return "j.posted_at " + dir
	case domain.SortSalaryHigh:
		return fmt.Sprintf("j.salary_max %s NULLS LAST, j.posted_at DESC", dir)
	case domain.SortSalaryLow:
		// salary-low surfaces the lowest minimums first by default.
		if spec.Order == "" || spec.Order == domain.OrderDesc {
			return "j.salary_min ASC NULLS LAST, j.posted_at DESC"
		}
		return "j.salary_min DESC NULLS LAST, j.posted_at DESC"
	case domain.SortCompanyRating:
		return fmt.Sprintf("c.rating %s NULLS LAST, j.posted_at DESC", dir)
	case domain.SortApplications:
		return fmt.Sprintf("j.applications %s, j.posted_at DESC", dir)
	case domain.SortViews:
		return fmt.Sprintf("j.views %s, j.posted_at DESC", dir)
	case domain.SortAlphabetical:
		if spec.Order == "" || spec.Order == domain.OrderDesc {
			return "LOWER(j.title) ASC, j.posted_at DESC"
		}
		return "LOWER(j.title) DESC, j.posted_at DESC"
	case domain.SortFeatured:
		return "j.featured DESC, j.posted_at DESC"
	default: // relevance
		return fmt.Sprintf("relevance_rank %s, j.posted_at DESC", dir)
	}
}

// FindPage returns one ordered page slice plus the total for the same
// predicate snapshot, via a single window-counted query.
func (r *jobSearchRepo) FindPage(ctx context.Context, pred domain.Predicate, sort domain.SortSpec, skip, limit int) ([]domain.Job, int64, error) {
	builder := psql.
		Select(jobColumns).
		Column(sq.Alias(rankExpr(pred), "relevance_rank")).
		Column("COUNT(*) OVER() AS total_count").
		From("jobs j").
		LeftJoin("companies c ON j.company_id = c.id").
		Where(whereClauses(pred)).
		OrderBy(orderClause(sort)).
		Offset(uint64(skip)).
		Limit(uint64(limit))

	return r.queryJobs(ctx, builder)
}

// FindEnriched returns up to max matching candidates with their derived
// fields populated for in-process scoring, newest first so a capped pull
// keeps the freshest postings, plus the same-snapshot total.
func (r *jobSearchRepo) FindEnriched(ctx context.Context, pred domain.Predicate, max int) ([]domain.Job, int64, error) {
	builder := psql.
		Select(jobColumns).
		Column(sq.Alias(rankExpr(pred), "relevance_rank")).
		Column("COUNT(*) OVER() AS total_count").
		From("jobs j").
		LeftJoin("companies c ON j.company_id = c.id").
		Where(whereClauses(pred)).
		OrderBy("j.posted_at DESC").
		Limit(uint64(max))

	return r.queryJobs(ctx, builder)
}

func (r *jobSearchRepo) Count(ctx context.Context, pred domain.Predicate) (int64, error) {
	sqlStr, args, err := psql.
		Select("COUNT(*)").
		From("jobs j").
		LeftJoin("companies c ON j.company_id = c.id").
		Where(whereClauses(pred)).
		ToSql()
	if err != nil {
		return 0, err
	}

	var total int64
	if err := r.db.QueryRow(ctx, sqlStr, args...).Scan(&total); err != nil {
		return 0, err
	}
	return total, nil
}

func (r *jobSearchRepo) queryJobs(ctx context.Context, builder sq.SelectBuilder) ([]domain.Job, int64, error) {
	sqlStr, args, err := builder.ToSql()
	if err != nil {
		return nil, 0, err
	}

	rows, err := r.db.Query(ctx, sqlStr, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var jobs []domain.Job
	var total int64
	for rows.Next() {
		var job domain.Job
		if err := rows.Scan(
			&job.ID, &job.Title, &job.Description,
			&job.Company.ID, &job.Company.Name, &job.Company.Size, &job.Company.Type, &job.Company.Rating,
			&job.Location.City, &job.Location.State, &job.Location.Country,
			&job.Location.Lat, &job.Location.Lng, &job.Location.Remote, &job.Location.WorkMode,
			&job.Salary.Min, &job.Salary.Max, &job.Salary.Currency, &job.JobType, &job.Skills,
			&job.ExperienceMin, &job.ExperienceMax,
			&job.PostedAt, &job.ExpiresAt, &job.ApplicationDeadline,
			&job.Applications, &job.Views, &job.Shares, &job.Featured, &job.Urgent,
			&job.Benefits, &job.Tags,
			&job.RelevanceRank, &total,
		); err != nil {
			return nil, 0, err
		}
		jobs = append(jobs, job)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	return jobs, total, nil
}

func lowerAll(values []string) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = strings.ToLower(v)
	}
	return out
}
