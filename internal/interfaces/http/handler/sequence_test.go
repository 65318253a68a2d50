package handler

import (
	"net/http"
	"testing"

	sequenceapp "github.com/erp/purchasing/internal/application/sequence"
	"github.com/erp/purchasing/internal/interfaces/http/dto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSequenceHandler_Next(t *testing.T) {
	api := newTestAPI(t)

	w := api.do(t, http.MethodPost, "/api/v1/sequences/pur/next", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, NextIDResponse{Prefix: "PUR", ID: "PUR-AAA0002"}, decode[NextIDResponse](t, w).Data)

	w = api.do(t, http.MethodPost, "/api/v1/sequences/PUR/next", nil)
	assert.Equal(t, "PUR-AAA0003", decode[NextIDResponse](t, w).Data.ID)
}

func TestSequenceHandler_Next_InvalidPrefix(t *testing.T) {
	api := newTestAPI(t)

	w := api.do(t, http.MethodPost, "/api/v1/sequences/bad-prefix/next", nil)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	resp := decode[any](t, w)
	require.NotNil(t, resp.Error)
	assert.Equal(t, dto.ErrCodeInvalidPrefix, resp.Error.Code)
	assert.Equal(t, "bad-prefix", resp.Error.Details["prefix"])
}

func TestSequenceHandler_Bulk(t *testing.T) {
	api := newTestAPI(t)

	w := api.do(t, http.MethodPost, "/api/v1/sequences/INV/bulk", map[string]int{"count": 3})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	resp := decode[sequenceapp.AllocationResponse](t, w)
	assert.Equal(t, "INV", resp.Data.Prefix)
	assert.Equal(t, []string{"INV-AAA0002", "INV-AAA0003", "INV-AAA0004"}, resp.Data.IDs)

	t.Run("missing count", func(t *testing.T) {
		w := api.do(t, http.MethodPost, "/api/v1/sequences/INV/bulk", map[string]int{})
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "count", decode[any](t, w).Error.Fields[0].Field)
	})

	t.Run("over the bulk limit", func(t *testing.T) {
		w := api.do(t, http.MethodPost, "/api/v1/sequences/INV/bulk", map[string]int{"count": sequenceapp.DefaultMaxBulk + 1})
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, dto.ErrCodeValidation, decode[any](t, w).Error.Code)
	})
}

func TestSequenceHandler_GetAndStats(t *testing.T) {
	api := newTestAPI(t)

	t.Run("unknown prefix", func(t *testing.T) {
		w := api.do(t, http.MethodGet, "/api/v1/sequences/PUR", nil)
		assert.Equal(t, http.StatusNotFound, w.Code)

		w = api.do(t, http.MethodGet, "/api/v1/sequences/PUR/stats", nil)
		require.Equal(t, http.StatusOK, w.Code)
		stats := decode[sequenceapp.StatsResponse](t, w).Data
		assert.False(t, stats.Exists)
		assert.Equal(t, "PUR", stats.Prefix)
	})

	api.do(t, http.MethodPost, "/api/v1/sequences/PUR/next", nil)

	t.Run("existing prefix", func(t *testing.T) {
		w := api.do(t, http.MethodGet, "/api/v1/sequences/PUR", nil)
		require.Equal(t, http.StatusOK, w.Code)
		seq := decode[sequenceapp.SequenceResponse](t, w).Data
		assert.Equal(t, "PUR-AAA0002", seq.LatestID)
		assert.True(t, seq.IsActive)

		w = api.do(t, http.MethodGet, "/api/v1/sequences/PUR/stats", nil)
		stats := decode[sequenceapp.StatsResponse](t, w).Data
		assert.True(t, stats.Exists)
		assert.Equal(t, "PUR-AAA0002", stats.LatestID)
		assert.NotNil(t, stats.CreatedAt)
	})
}

func TestSequenceHandler_Reset(t *testing.T) {
	api := newTestAPI(t)
	api.do(t, http.MethodPost, "/api/v1/sequences/PUR/bulk", map[string]int{"count": 5})

	t.Run("empty body restores the initial id", func(t *testing.T) {
		w := api.do(t, http.MethodPost, "/api/v1/sequences/PUR/reset", nil)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		assert.Equal(t, "PUR-AAA0001", decode[sequenceapp.SequenceResponse](t, w).Data.LatestID)

		w = api.do(t, http.MethodPost, "/api/v1/sequences/PUR/next", nil)
		assert.Equal(t, "PUR-AAA0002", decode[NextIDResponse](t, w).Data.ID)
	})

	t.Run("explicit value", func(t *testing.T) {
		w := api.do(t, http.MethodPost, "/api/v1/sequences/PUR/reset", map[string]string{"reset_to": "PUR-AAB0100"})
		require.Equal(t, http.StatusOK, w.Code)

		w = api.do(t, http.MethodPost, "/api/v1/sequences/PUR/next", nil)
		assert.Equal(t, "PUR-AAB0101", decode[NextIDResponse](t, w).Data.ID)
	})

	t.Run("value for another prefix", func(t *testing.T) {
		w := api.do(t, http.MethodPost, "/api/v1/sequences/PUR/reset", map[string]string{"reset_to": "INV-AAA0001"})
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "reset_to", decode[any](t, w).Error.Details["field"])
	})

	t.Run("unknown prefix", func(t *testing.T) {
		w := api.do(t, http.MethodPost, "/api/v1/sequences/NOPE/reset", nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestSequenceHandler_ActivateDeactivate(t *testing.T) {
	api := newTestAPI(t)
	api.do(t, http.MethodPost, "/api/v1/sequences/PUR/next", nil)

	w := api.do(t, http.MethodPost, "/api/v1/sequences/PUR/deactivate", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.False(t, decode[sequenceapp.SequenceResponse](t, w).Data.IsActive)

	w = api.do(t, http.MethodPost, "/api/v1/sequences/PUR/next", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, dto.ErrCodeInvalidState, decode[any](t, w).Error.Code)

	w = api.do(t, http.MethodPost, "/api/v1/sequences/PUR/activate", nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = api.do(t, http.MethodPost, "/api/v1/sequences/PUR/next", nil)
	assert.Equal(t, "PUR-AAA0003", decode[NextIDResponse](t, w).Data.ID)
}

func TestSequenceHandler_List(t *testing.T) {
	api := newTestAPI(t)
	for _, prefix := range []string{"PUR", "INV", "SO"} {
		api.do(t, http.MethodPost, "/api/v1/sequences/"+prefix+"/next", nil)
	}
	api.do(t, http.MethodPost, "/api/v1/sequences/SO/deactivate", nil)

	w := api.do(t, http.MethodGet, "/api/v1/sequences?page_size=2", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	resp := decode[[]sequenceapp.SequenceResponse](t, w)
	require.Len(t, resp.Data, 2)
	assert.Equal(t, "INV", resp.Data[0].Prefix)
	assert.Equal(t, "PUR", resp.Data[1].Prefix)
	require.NotNil(t, resp.Meta)
	assert.Equal(t, int64(3), resp.Meta.Total)
	assert.Equal(t, 2, resp.Meta.TotalPages)

	w = api.do(t, http.MethodGet, "/api/v1/sequences?active_only=true", nil)
	resp = decode[[]sequenceapp.SequenceResponse](t, w)
	assert.Len(t, resp.Data, 2)
	assert.Equal(t, int64(2), resp.Meta.Total)

	w = api.do(t, http.MethodGet, "/api/v1/sequences?page_size=500", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSequenceHandler_Health(t *testing.T) {
	api := newTestAPI(t)

	w := api.do(t, http.MethodGet, "/api/v1/sequences/health", nil)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	resp := decode[sequenceapp.HealthResponse](t, w)
	assert.True(t, resp.Success)
	assert.Equal(t, "healthy", resp.Data.Status)
	assert.Equal(t, sequenceapp.HealthCheckPrefix+"-AAA0002", resp.Data.TestIDGenerated)

	// the probe prefix stays inactive between probes
	w = api.do(t, http.MethodGet, "/api/v1/sequences/health", nil)
	assert.Equal(t, sequenceapp.HealthCheckPrefix+"-AAA0003", decode[sequenceapp.HealthResponse](t, w).Data.TestIDGenerated)
	assert.Equal(t, int64(0), decode[sequenceapp.HealthResponse](t, w).Data.PrefixCount)
}
