package respond

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vmihailenco/msgpack/v5"
)

type sample struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
}

func TestWantsMsgpack(t *testing.T) {
	testCases := []struct {
		accept string
		want   bool
	}{
		{"", false},
		{"application/json", false},
		{"application/msgpack", true},
		{"application/x-msgpack", true},
		{"text/html, application/msgpack;q=0.9", true},
		{"application/json, application/msgpack", false},
		{"*/*", false},
	}

	for _, tc := range testCases {
		t.Run(tc.accept, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/", nil)
			r.Header.Set("Accept", tc.accept)
			assert.Equal(t, tc.want, WantsMsgpack(r))
		})
	}
}

func TestData_JSON(t *testing.T) {
	log := zerolog.New(nil).Level(zerolog.Disabled)
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	w := httptest.NewRecorder()

	Data(w, r, sample{Name: "void", Value: 1.5}, log)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, ContentTypeJSON, w.Header().Get("Content-Type"))

	var response map[string]interface{}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
	assert.Contains(t, response, "metadata")
	data := response["data"].(map[string]interface{})
	assert.Equal(t, "void", data["name"])
	assert.Equal(t, 1.5, data["value"])
}

func TestData_Msgpack(t *testing.T) {
	log := zerolog.New(nil).Level(zerolog.Disabled)
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set("Accept", ContentTypeMsgpack)
	w := httptest.NewRecorder()

	Data(w, r, sample{Name: "matter", Value: 2}, log)

	assert.Equal(t, ContentTypeMsgpack, w.Header().Get("Content-Type"))

	var response struct {
		Data     sample                 `msgpack:"data"`
		Metadata map[string]interface{} `msgpack:"metadata"`
	}
	dec := msgpack.NewDecoder(w.Body)
	dec.SetCustomStructTag("json")
	require.NoError(t, dec.Decode(&response))
	assert.Equal(t, sample{Name: "matter", Value: 2}, response.Data)
	assert.Contains(t, response.Metadata, "timestamp")
}

func TestDecode(t *testing.T) {
	t.Run("json", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodPost, "/", bytes.NewBufferString(`{"name":"a","value":3}`))
		var got sample
		require.NoError(t, Decode(r, &got))
		assert.Equal(t, sample{Name: "a", Value: 3}, got)
	})

	t.Run("msgpack", func(t *testing.T) {
		var buf bytes.Buffer
		enc := msgpack.NewEncoder(&buf)
		enc.SetCustomStructTag("json")
		require.NoError(t, enc.Encode(sample{Name: "b", Value: 4}))

		r := httptest.NewRequest(http.MethodPost, "/", &buf)
		r.Header.Set("Content-Type", ContentTypeMsgpack)
		var got sample
		require.NoError(t, Decode(r, &got))
		assert.Equal(t, sample{Name: "b", Value: 4}, got)
	})

	t.Run("empty body", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodPost, "/", http.NoBody)
		got := sample{Name: "keep"}
		require.NoError(t, Decode(r, &got))
		assert.Equal(t, "keep", got.Name)
	})

	t.Run("malformed", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodPost, "/", bytes.NewBufferString(`{"name":`))
		var got sample
		assert.Error(t, Decode(r, &got))
	})
}
