package postgres

import (
	"testing"
	"time"

	"go-jobsearch-backend/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func toSQL(t *testing.T, pred domain.Predicate) (string, []any) {
	t.Helper()
	sqlStr, args, err := psql.Select("1").From("jobs j").
		LeftJoin("companies c ON j.company_id = c.id").
		Where(whereClauses(pred)).ToSql()
	require.NoError(t, err)
	return sqlStr, args
}

func TestWhereClausesBaseline(t *testing.T) {
	sqlStr, args := toSQL(t, domain.Predicate{})

	assert.Contains(t, sqlStr, "j.status = $1")
	assert.Contains(t, sqlStr, "j.is_deleted = $2")
	assert.Equal(t, []any{"active", false}, args)
}

func TestWhereClausesFreeTextDisjunction(t *testing.T) {
	sqlStr, args := toSQL(t, domain.Predicate{Text: "backend"})

	assert.Contains(t, sqlStr, "j.title ILIKE")
	assert.Contains(t, sqlStr, "j.description ILIKE")
	assert.Contains(t, sqlStr, "c.name ILIKE")
	assert.Contains(t, sqlStr, "array_to_string(j.skills, ' ') ILIKE")
	assert.Contains(t, sqlStr, " OR ")
	assert.Contains(t, args, "%backend%")
}

func TestWhereClausesExpiryBound(t *testing.T) {
	now := time.Now()
	sqlStr, _ := toSQL(t, domain.Predicate{ExpiresAfter: &now})

	assert.Contains(t, sqlStr, "j.expires_at IS NULL")
	assert.Contains(t, sqlStr, "j.expires_at > ")
}

func TestWhereClausesGeoRadius(t *testing.T) {
	sqlStr, args := toSQL(t, domain.Predicate{
		Geo: &domain.GeoCircle{Lat: 12.97, Lng: 77.59, RadiusKm: 25},
	})

	assert.Contains(t, sqlStr, "power((j.lat - $3) * 111, 2)")
	assert.Contains(t, sqlStr, "cos(radians($5))")
	assert.Contains(t, args, 25.0)
}

func TestWhereClausesBoostSkillsNeverFilter(t *testing.T) {
	sqlStr, _ := toSQL(t, domain.Predicate{BoostSkills: []string{"go", "grpc"}})

	// Boost participates in ranking only; the WHERE stays baseline.
	assert.NotContains(t, sqlStr, "skills")
}

func TestRankExprShapes(t *testing.T) {
	t.Run("no text and no boost is constant zero", func(t *testing.T) {
		sqlStr, args, err := rankExpr(domain.Predicate{}).ToSql()
		require.NoError(t, err)
		assert.Equal(t, "0::float8", sqlStr)
		assert.Empty(t, args)
	})

	t.Run("text contributes weighted field hits", func(t *testing.T) {
		sqlStr, args, err := rankExpr(domain.Predicate{Text: "go"}).ToSql()
		require.NoError(t, err)
		assert.Contains(t, sqlStr, "j.title ILIKE ? THEN 5")
		assert.Contains(t, sqlStr, "j.description ILIKE ? THEN 2")
		assert.Len(t, args, 4)
	})

	t.Run("boost skills add overlap count", func(t *testing.T) {
		sqlStr, args, err := rankExpr(domain.Predicate{BoostSkills: []string{"Go"}}).ToSql()
		require.NoError(t, err)
		assert.Contains(t, sqlStr, "unnest(j.skills)")
		require.Len(t, args, 1)
		assert.Equal(t, []string{"go"}, args[0], "boost skills are matched lowercased")
	})
}

func TestOrderClause(t *testing.T) {
	cases := []struct {
		strategy string
		order    string
		want     string
	}{
		{domain.SortDate, "", "j.posted_at DESC"},
		{domain.SortDate, "asc", "j.posted_at ASC"},
		{domain.SortSalaryHigh, "", "j.salary_max DESC NULLS LAST, j.posted_at DESC"},
		{domain.SortSalaryLow, "", "j.salary_min ASC NULLS LAST, j.posted_at DESC"},
		{domain.SortCompanyRating, "", "c.rating DESC NULLS LAST, j.posted_at DESC"},
		{domain.SortApplications, "", "j.applications DESC, j.posted_at DESC"},
		{domain.SortAlphabetical, "", "LOWER(j.title) ASC, j.posted_at DESC"},
		{domain.SortFeatured, "", "j.featured DESC, j.posted_at DESC"},
		{domain.SortRelevance, "", "relevance_rank DESC, j.posted_at DESC"},
	}

	for _, tc := range cases {
		t.Run(tc.strategy, func(t *testing.T) {
			got := orderClause(domain.SortSpec{Strategy: tc.strategy, Order: tc.order})
			assert.Equal(t, tc.want, got)
		})
	}
}
