package handlers

import (
	"bytes"
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vmihailenco/msgpack/v5"
)

func setupRouter() chi.Router {
	handler := NewHandler(zerolog.New(nil).Level(zerolog.Disabled))
	router := chi.NewRouter()
	handler.RegisterRoutes(router)
	return router
}

func post(t *testing.T, router http.Handler, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	bodyBytes, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(bodyBytes))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeData(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var response map[string]interface{}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
	require.Contains(t, response, "metadata")
	return response["data"].(map[string]interface{})
}

func TestHandleMeasure(t *testing.T) {
	router := setupRouter()

	testCases := []struct {
		name   string
		high   int
		low    int
		status int
		value  float64
		state  string
	}{
		{"void", 0, 0, http.StatusOK, 0, "void"},
		{"matter", 0, 1, http.StatusOK, 1, "matter"},
		{"sovereign", 1, 0, http.StatusOK, 2, "sovereign"},
		{"forbidden", 1, 1, http.StatusConflict, 0, ""},
		{"not a bit", 2, 0, http.StatusBadRequest, 0, ""},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			w := post(t, router, "/trit/measure", map[string]interface{}{
				"bits": map[string]int{"high": tc.high, "low": tc.low},
			})
			require.Equal(t, tc.status, w.Code)
			if tc.status != http.StatusOK {
				return
			}
			data := decodeData(t, w)
			assert.Equal(t, tc.value, data["value"])
			assert.Equal(t, tc.state, data["state"])
		})
	}
}

func TestHandleMeasure_LeakMessage(t *testing.T) {
	w := post(t, setupRouter(), "/trit/measure", map[string]interface{}{
		"bits": map[string]int{"high": 1, "low": 1},
	})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "reality leak")
}

func TestHandleCycle(t *testing.T) {
	router := setupRouter()

	testCases := []struct {
		value, times int
		want         float64
	}{
		{0, 1, 1},
		{1, 1, 2},
		{2, 1, 0},
		{1, 3, 1},
		{0, 5, 2},
		{2, 0, 2},
	}

	for _, tc := range testCases {
		w := post(t, router, "/trit/cycle", map[string]int{"value": tc.value, "times": tc.times})
		require.Equal(t, http.StatusOK, w.Code)
		result := decodeData(t, w)["result"].(map[string]interface{})
		assert.Equal(t, tc.want, result["value"], "value=%d times=%d", tc.value, tc.times)
	}

	w := post(t, router, "/trit/cycle", map[string]int{"value": 3, "times": 1})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = post(t, router, "/trit/cycle", map[string]int{"value": 0, "times": -1})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandleSwap(t *testing.T) {
	router := setupRouter()

	testCases := []struct {
		value int
		gate  string
		want  float64
	}{
		{0, "01", 1},
		{1, "01", 0},
		{2, "01", 2},
		{1, "12", 2},
		{2, "12", 1},
		{0, "12", 0},
	}

	for _, tc := range testCases {
		w := post(t, router, "/trit/swap", map[string]interface{}{"value": tc.value, "gate": tc.gate})
		require.Equal(t, http.StatusOK, w.Code)
		result := decodeData(t, w)["result"].(map[string]interface{})
		assert.Equal(t, tc.want, result["value"], "value=%d gate=%s", tc.value, tc.gate)
	}

	w := post(t, router, "/trit/swap", map[string]interface{}{"value": 0, "gate": "02"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandleAdd(t *testing.T) {
	router := setupRouter()

	for a := 0; a < 3; a++ {
		for b := 0; b < 3; b++ {
			w := post(t, router, "/trit/add", map[string]int{"a": a, "b": b})
			require.Equal(t, http.StatusOK, w.Code)
			result := decodeData(t, w)["result"].(map[string]interface{})
			assert.Equal(t, float64((a+b)%3), result["value"])
		}
	}

	w := post(t, router, "/trit/add", map[string]int{"a": 0, "b": 7})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandleHybrid(t *testing.T) {
	router := setupRouter()

	w := post(t, router, "/trit/hybrid", map[string]interface{}{
		"control": 2,
		"target":  map[string]interface{}{"value": 0, "phase": 0},
	})
	require.Equal(t, http.StatusOK, w.Code)
	target := decodeData(t, w)["target"].(map[string]interface{})
	assert.Equal(t, 1.0, target["value"])
	assert.InDelta(t, math.Pi/2, target["phase"].(float64), 1e-12)

	w = post(t, router, "/trit/hybrid", map[string]interface{}{
		"control": 0,
		"target":  map[string]interface{}{"value": 1, "phase": 1.0},
	})
	require.Equal(t, http.StatusOK, w.Code)
	target = decodeData(t, w)["target"].(map[string]interface{})
	assert.Equal(t, 1.0, target["value"])
	assert.Equal(t, 1.0, target["phase"])

	w = post(t, router, "/trit/hybrid", map[string]interface{}{
		"control_bits": map[string]int{"high": 1, "low": 1},
		"target":       map[string]interface{}{"value": 0, "phase": 0},
	})
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestHandleRandom(t *testing.T) {
	router := setupRouter()

	req := httptest.NewRequest(http.MethodGet, "/trit/random?count=500&seed=42", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	data := decodeData(t, w)
	values := data["values"].([]interface{})
	require.Len(t, values, 500)
	for _, v := range values {
		assert.Contains(t, []float64{0, 1, 2}, v.(float64))
	}
	assert.Equal(t, 42.0, data["seed"])

	// Same seed, same sequence
	w2 := httptest.NewRecorder()
	router.ServeHTTP(w2, httptest.NewRequest(http.MethodGet, "/trit/random?count=500&seed=42", nil))
	assert.Equal(t, values, decodeData(t, w2)["values"])

	for _, q := range []string{"count=0", "count=abc", "count=20000", "seed=-1"} {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/trit/random?"+q, nil))
		assert.Equal(t, http.StatusBadRequest, w.Code, q)
	}
}

func TestHandleRandom_Msgpack(t *testing.T) {
	router := setupRouter()

	req := httptest.NewRequest(http.MethodGet, "/trit/random?count=3&seed=1", nil)
	req.Header.Set("Accept", "application/msgpack")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/msgpack", w.Header().Get("Content-Type"))

	var response struct {
		Data struct {
			Seed   uint64 `msgpack:"seed"`
			Count  int    `msgpack:"count"`
			Values []int  `msgpack:"values"`
		} `msgpack:"data"`
	}
	require.NoError(t, msgpack.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, uint64(1), response.Data.Seed)
	assert.Len(t, response.Data.Values, 3)
}

func TestRegisterRoutes(t *testing.T) {
	handler := NewHandler(zerolog.New(nil).Level(zerolog.Disabled))
	router := chi.NewRouter()

	assert.NotPanics(t, func() {
		handler.RegisterRoutes(router)
	})
}
