package main

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/untunglab/juragan/internal/hpp"
	"github.com/untunglab/juragan/internal/pricing"
	"github.com/untunglab/juragan/internal/project"
)

func createTestProject(t *testing.T, srv *server, h http.Handler, name string) project.Project {
	t.Helper()

	rec := doJSON(t, h, srv, http.MethodPost, "/api/projects", map[string]string{
		"businessId": testBusinessID,
		"name":       name,
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	var p project.Project
	decodeInto(t, rec, &p)
	require.NotEmpty(t, p.ID)
	return p
}

func TestProjectCreateFillsDefaults(t *testing.T) {
	srv, h := newTestServer(t)

	p := createTestProject(t, srv, h, "Es Kopi Susu")

	assert.Equal(t, pricing.StrategyMarkup, p.Strategy)
	assert.Equal(t, hpp.PeriodMonthly, p.Production.Period)
	assert.NotEmpty(t, p.Costs)
	assert.Equal(t, project.ConfidenceMedium, p.Confidence)
}

func TestProjectCreateValidatesBody(t *testing.T) {
	srv, h := newTestServer(t)

	rec := doJSON(t, h, srv, http.MethodPost, "/api/projects", map[string]string{"name": "Tanpa Usaha"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, h, srv, http.MethodPost, "/api/projects", map[string]string{"businessId": testBusinessID})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestProjectListRequiresBusinessID(t *testing.T) {
	srv, h := newTestServer(t)

	rec := doJSON(t, h, srv, http.MethodGet, "/api/projects", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestProjectLifecycleOverHTTP(t *testing.T) {
	srv, h := newTestServer(t)

	p := createTestProject(t, srv, h, "Es Kopi Susu")

	rec := doJSON(t, h, srv, http.MethodGet, "/api/projects/"+p.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	p.TargetNet = 5000
	p.Costs = []hpp.CostEntry{
		{ID: "kopi", Name: "Kopi", Amount: 4000, Allocation: hpp.AllocationUnit},
	}
	rec = doJSON(t, h, srv, http.MethodPut, "/api/projects/"+p.ID, p)
	require.Equal(t, http.StatusOK, rec.Code)

	var updated project.Project
	decodeInto(t, rec, &updated)
	assert.Equal(t, 5000.0, updated.TargetNet)
	assert.Equal(t, testBusinessID, updated.BusinessID, "update must not move a project between businesses")

	rec = doJSON(t, h, srv, http.MethodDelete, "/api/projects/"+p.ID, nil)
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = doJSON(t, h, srv, http.MethodGet, "/api/projects/"+p.ID, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestProjectActivateAndActiveEndpoint(t *testing.T) {
	srv, h := newTestServer(t)

	first := createTestProject(t, srv, h, "Es Kopi Susu")
	second := createTestProject(t, srv, h, "Roti Bakar")

	rec := doJSON(t, h, srv, http.MethodPost, "/api/projects/"+second.ID+"/activate", nil)
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = doJSON(t, h, srv, http.MethodGet, "/api/businesses/"+testBusinessID+"/active-project", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var active project.Project
	decodeInto(t, rec, &active)
	assert.Equal(t, second.ID, active.ID)
	_ = first
}

func TestProjectPricingEndpoint(t *testing.T) {
	srv, h := newTestServer(t)
	ctx := context.Background()

	require.NoError(t, srv.platforms.Create(ctx, pricing.PlatformConfig{
		Code: "gofood", Name: "GoFood", Commission: 0.2, Active: true,
	}))
	require.NoError(t, srv.platforms.Create(ctx, pricing.PlatformConfig{
		Code: "offline", Name: "Penjualan Langsung", Active: true,
	}))

	p := createTestProject(t, srv, h, "Es Kopi Susu")
	p.TargetNet = 5000
	p.Costs = []hpp.CostEntry{
		{ID: "bahan", Name: "Bahan", Amount: 10000, Allocation: hpp.AllocationUnit},
	}
	rec := doJSON(t, h, srv, http.MethodPut, "/api/projects/"+p.ID, p)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, h, srv, http.MethodPost, "/api/projects/"+p.ID+"/pricing", pricingRequest{})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp pricingResponse
	decodeInto(t, rec, &resp)
	assert.InDelta(t, 10000.0, resp.EffectiveCost, 1e-9)
	require.Len(t, resp.Results, 2)

	byCode := map[string]pricing.Result{}
	for _, r := range resp.Results {
		byCode[r.Platform] = r
	}
	// (10000 + 5000) / (1 - 0.2)
	assert.InDelta(t, 18750.0, byCode["gofood"].Recommended.Price, 1e-9)
	assert.InDelta(t, 5000.0, byCode["gofood"].Recommended.NetProfit, 1e-9)
	assert.InDelta(t, 15000.0, byCode["offline"].Recommended.Price, 1e-9)
}

func TestProjectPricingRejectsUnknownOverrideCode(t *testing.T) {
	srv, h := newTestServer(t)

	require.NoError(t, srv.platforms.Create(context.Background(), pricing.PlatformConfig{
		Code: "gofood", Name: "GoFood", Commission: 0.2, Active: true,
	}))

	p := createTestProject(t, srv, h, "Es Kopi Susu")

	commission := 0.25
	rec := doJSON(t, h, srv, http.MethodPost, "/api/projects/"+p.ID+"/pricing", pricingRequest{
		Overrides: map[string]pricing.Overrides{"grabfud": {Commission: &commission}},
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestProjectPricingValidatesRates(t *testing.T) {
	srv, h := newTestServer(t)
	p := createTestProject(t, srv, h, "Es Kopi Susu")

	rec := doJSON(t, h, srv, http.MethodPost, "/api/projects/"+p.ID+"/pricing", pricingRequest{PromoPercent: 120})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, h, srv, http.MethodPost, "/api/projects/"+p.ID+"/pricing", pricingRequest{TaxRate: 1})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestImportEndpointParsesRawJSON(t *testing.T) {
	srv, h := newTestServer(t)

	rec := doJSON(t, h, srv, http.MethodPost, "/api/import", importRequest{
		BusinessID: testBusinessID,
		Input: `{"name":"Keripik Singkong","costs":[{"name":"Singkong","amount":50000,"allocation":"bulk","batchYield":100,"bulkUnit":"units"}],` +
			`"productionConfig":{"period":"monthly","daysActive":26,"targetUnits":500}}`,
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	var p project.Project
	decodeInto(t, rec, &p)
	assert.Equal(t, "Keripik Singkong", p.Name)
	assert.NotEmpty(t, p.ID)
}

func TestImportEndpointRejectsGarbage(t *testing.T) {
	srv, h := newTestServer(t)

	rec := doJSON(t, h, srv, http.MethodPost, "/api/import", importRequest{
		BusinessID: testBusinessID,
		Input:      "jual gorengan enak pokoknya",
	})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}
