package project

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"github.com/untunglab/juragan/internal/hpp"
	"github.com/untunglab/juragan/internal/pricing"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)

	_, err = db.Exec(`
		CREATE TABLE businesses (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			active_project_id TEXT
		);
		CREATE TABLE projects (
			id TEXT PRIMARY KEY,
			business_id TEXT NOT NULL,
			name TEXT NOT NULL,
			costs_json TEXT NOT NULL,
			production_json TEXT NOT NULL,
			strategy TEXT NOT NULL,
			target_net REAL NOT NULL DEFAULT 0,
			competitor_price REAL NOT NULL DEFAULT 0,
			confidence TEXT NOT NULL,
			created_at TEXT NOT NULL,
			last_modified TEXT NOT NULL
		);
	`)
	require.NoError(t, err)

	t.Cleanup(func() { _ = db.Close() })
	return NewStore(db)
}

func createNamed(t *testing.T, s *Store, businessID, name string) Project {
	t.Helper()
	p := Default(businessID, name)
	require.NoError(t, s.Create(context.Background(), &p))
	return p
}

func TestCreateSeedsDefaultsAndActivatesFirstProject(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.EnsureBusiness(ctx, "warung-1", "Warung Bu Sri"))

	p := createNamed(t, s, "warung-1", "Es Kopi Susu")

	got, err := s.Get(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Es Kopi Susu", got.Name)
	assert.Equal(t, pricing.StrategyMarkup, got.Strategy)
	assert.Equal(t, hpp.PeriodMonthly, got.Production.Period)
	assert.NotEmpty(t, got.Costs)
	assert.False(t, got.LastModified.IsZero())

	active, ok, err := s.Active(ctx, "warung-1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, p.ID, active.ID)
}

func TestUpdateStampsLastModified(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.EnsureBusiness(ctx, "warung-1", "Warung Bu Sri"))

	p := createNamed(t, s, "warung-1", "Es Kopi Susu")
	created := p.LastModified

	p.TargetNet = 2500
	p.Strategy = pricing.StrategyCompetitor
	p.CompetitorPrice = 18000
	require.NoError(t, s.Update(ctx, &p))

	got, err := s.Get(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 2500.0, got.TargetNet)
	assert.Equal(t, pricing.StrategyCompetitor, got.Strategy)
	assert.False(t, got.LastModified.Before(created))
}

func TestUpdateMissingProjectReturnsNotFound(t *testing.T) {
	s := newTestStore(t)
	p := Default("warung-1", "Ghost")
	p.ID = "missing"

	err := s.Update(context.Background(), &p)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteActiveProjectRedirectsToFirstRemaining(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.EnsureBusiness(ctx, "warung-1", "Warung Bu Sri"))

	first := createNamed(t, s, "warung-1", "Es Kopi Susu")
	second := createNamed(t, s, "warung-1", "Roti Bakar")
	third := createNamed(t, s, "warung-1", "Nasi Goreng")

	// first is active; make it the one being deleted.
	require.NoError(t, s.Activate(ctx, "warung-1", first.ID))
	require.NoError(t, s.Delete(ctx, first.ID))

	active, ok, err := s.Active(ctx, "warung-1")
	require.NoError(t, err)
	require.True(t, ok, "a remaining project should have been selected")
	assert.Equal(t, second.ID, active.ID, "fallback must be the first remaining by list order")
	_ = third
}

func TestDeleteLastProjectClearsSelection(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.EnsureBusiness(ctx, "warung-1", "Warung Bu Sri"))

	only := createNamed(t, s, "warung-1", "Es Kopi Susu")
	require.NoError(t, s.Delete(ctx, only.ID))

	_, ok, err := s.Active(ctx, "warung-1")
	require.NoError(t, err)
	assert.False(t, ok, "selection must be cleared when no project remains")

	projects, err := s.List(ctx, "warung-1")
	require.NoError(t, err)
	assert.Empty(t, projects)
}

func TestDeleteInactiveProjectKeepsSelection(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.EnsureBusiness(ctx, "warung-1", "Warung Bu Sri"))

	first := createNamed(t, s, "warung-1", "Es Kopi Susu")
	second := createNamed(t, s, "warung-1", "Roti Bakar")

	require.NoError(t, s.Delete(ctx, second.ID))

	active, ok, err := s.Active(ctx, "warung-1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, first.ID, active.ID)
}

func TestDeleteScopesFallbackToSameBusiness(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.EnsureBusiness(ctx, "warung-1", "Warung Bu Sri"))
	require.NoError(t, s.EnsureBusiness(ctx, "warung-2", "Kedai Pak Budi"))

	mine := createNamed(t, s, "warung-1", "Es Kopi Susu")
	other := createNamed(t, s, "warung-2", "Bakso")

	require.NoError(t, s.Delete(ctx, mine.ID))

	_, ok, err := s.Active(ctx, "warung-1")
	require.NoError(t, err)
	assert.False(t, ok, "fallback must never cross business scope")

	active, ok, err := s.Active(ctx, "warung-2")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, other.ID, active.ID)
}

func TestFormatTimeOrdersLexicographically(t *testing.T) {
	// .5s vs .51s: a trailing-zero-trimming format would render these as
	// ".5Z" and ".51Z", putting the earlier one after the later one.
	earlier := time.Date(2026, 8, 30, 10, 0, 0, 500_000_000, time.UTC)
	later := time.Date(2026, 8, 30, 10, 0, 0, 510_000_000, time.UTC)

	assert.Less(t, formatTime(earlier), formatTime(later),
		"earlier timestamp must sort lexicographically before later one")
	assert.Equal(t, earlier, parseTime(formatTime(earlier)))
	assert.Equal(t, later, parseTime(formatTime(later)))
}

func TestDeleteFallbackHonorsSubSecondCreationOrder(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.EnsureBusiness(ctx, "warung-1", "Warung Bu Sri"))

	base := time.Date(2026, 8, 30, 10, 0, 0, 0, time.UTC)
	insertAt := func(id string, created time.Time) {
		p := Default("warung-1", id)
		p.ID = id
		costsJSON, productionJSON, err := marshalDerived(&p)
		require.NoError(t, err)
		_, err = s.db.ExecContext(ctx, `
			INSERT INTO projects (
				id, business_id, name, costs_json, production_json,
				strategy, target_net, competitor_price, confidence,
				created_at, last_modified
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`, p.ID, p.BusinessID, p.Name, costsJSON, productionJSON,
			string(p.Strategy), p.TargetNet, p.CompetitorPrice, string(p.Confidence),
			formatTime(created), formatTime(created))
		require.NoError(t, err)
	}

	insertAt("doomed", base.Add(400*time.Millisecond))
	insertAt("first", base.Add(500*time.Millisecond))
	insertAt("second", base.Add(510*time.Millisecond))

	require.NoError(t, s.Activate(ctx, "warung-1", "doomed"))
	require.NoError(t, s.Delete(ctx, "doomed"))

	active, ok, err := s.Active(ctx, "warung-1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "first", active.ID, "fallback must follow creation order even across sub-second gaps")
}

func TestActivateRejectsForeignProject(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.EnsureBusiness(ctx, "warung-1", "Warung Bu Sri"))
	require.NoError(t, s.EnsureBusiness(ctx, "warung-2", "Kedai Pak Budi"))

	foreign := createNamed(t, s, "warung-2", "Bakso")

	err := s.Activate(ctx, "warung-1", foreign.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListOrdersByCreation(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.EnsureBusiness(ctx, "warung-1", "Warung Bu Sri"))

	names := []string{"Es Kopi Susu", "Roti Bakar", "Nasi Goreng"}
	for _, n := range names {
		createNamed(t, s, "warung-1", n)
	}

	projects, err := s.List(ctx, "warung-1")
	require.NoError(t, err)
	require.Len(t, projects, 3)
	for i, n := range names {
		assert.Equal(t, n, projects[i].Name)
	}
}
