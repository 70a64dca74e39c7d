package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePageDefaults(t *testing.T) {
	current, pageSize := parsePage(httptest.NewRequest(http.MethodGet, "/api/books", nil))
	assert.Equal(t, 1, current)
	assert.Equal(t, 10, pageSize)

	current, pageSize = parsePage(httptest.NewRequest(http.MethodGet, "/api/books?current=3&pageSize=25", nil))
	assert.Equal(t, 3, current)
	assert.Equal(t, 25, pageSize)

	// Garbage and non-positive values fall back to the defaults.
	current, pageSize = parsePage(httptest.NewRequest(http.MethodGet, "/api/books?current=-1&pageSize=abc", nil))
	assert.Equal(t, 1, current)
	assert.Equal(t, 10, pageSize)
}

func TestWritePagedMeta(t *testing.T) {
	rec := httptest.NewRecorder()
	writePaged(rec, []string{"a", "b"}, 2, 10, 25)

	var resp pagedResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 2, resp.Meta.Current)
	assert.Equal(t, 10, resp.Meta.PageSize)
	assert.Equal(t, 3, resp.Meta.Pages)
	assert.Equal(t, 25, resp.Meta.Total)
}
