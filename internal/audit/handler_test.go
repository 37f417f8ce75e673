package audit

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cradle/pkg/requestcontext"
)

func TestHandleListReturnsTenantEntries(t *testing.T) {
	store := NewInMemoryStore()
	recorder := NewRecorder(store, discardLogger())
	tenantID := uuid.New()

	recorder.Record(context.Background(), Entry{TenantID: tenantID, Action: ActionUserLogin, Success: true})
	recorder.Record(context.Background(), Entry{TenantID: uuid.New(), Action: ActionUserLogin, Success: true})

	r := chi.NewRouter()
	NewHandler(recorder, discardLogger()).Register(r)

	req := httptest.NewRequest(http.MethodGet, "/audit?limit=10", nil)
	req = req.WithContext(requestcontext.WithIdentity(req.Context(), requestcontext.Identity{
		UserID:   uuid.New(),
		TenantID: tenantID,
		Roles:    []string{"admin", "user"},
	}))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Entries []Entry `json:"entries"`
		Skip    int     `json:"skip"`
		Limit   int     `json:"limit"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Entries, 1)
	assert.Equal(t, tenantID, body.Entries[0].TenantID)
	assert.Equal(t, 10, body.Limit)
}

func TestHandleListClampsPageSize(t *testing.T) {
	recorder := NewRecorder(NewInMemoryStore(), discardLogger())
	r := chi.NewRouter()
	NewHandler(recorder, discardLogger()).Register(r)

	req := httptest.NewRequest(http.MethodGet, "/audit?limit=9999", nil)
	req = req.WithContext(requestcontext.WithIdentity(req.Context(), requestcontext.Identity{
		TenantID: uuid.New(),
	}))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Limit int `json:"limit"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, maxPageSize, body.Limit)
}
