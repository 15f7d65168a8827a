package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ignite/sender-hub/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromRequest(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/api/senders", nil)
	r.Header.Set(HeaderTenantID, "tenant-1")
	r.Header.Set(HeaderTier, "Creator")
	r.Header.Set(HeaderEmail, "ops@example.com")

	uc, err := FromRequest(r)
	require.NoError(t, err)
	assert.Equal(t, "tenant-1", uc.TenantID)
	assert.Equal(t, domain.TierCreator, uc.Tier)
	assert.Equal(t, "ops@example.com", uc.Email)
}

func TestFromRequestMissingTenant(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/api/senders", nil)
	_, err := FromRequest(r)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestMiddleware(t *testing.T) {
	var got UserContext
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		uc, ok := FromContext(r.Context())
		require.True(t, ok)
		got = uc
	})

	// Without tenant header: 401, handler never runs.
	rec := httptest.NewRecorder()
	Middleware(next).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// With tenant header: passes through with context attached.
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set(HeaderTenantID, "t1")
	rec = httptest.NewRecorder()
	Middleware(next).ServeHTTP(rec, r)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "t1", got.TenantID)
}
