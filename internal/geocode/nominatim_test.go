package geocode

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var kazan = Address{Street: "Baumana", HouseNumber: "12", City: "Kazan", PostalCode: "420111", Country: "Russia"}

func TestLookup_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/search", r.URL.Path)
		assert.Equal(t, "race-registration-test", r.Header.Get("User-Agent"))
		q := r.URL.Query()
		assert.Equal(t, "json", q.Get("format"))
		assert.Equal(t, "Baumana 12", q.Get("street"))
		assert.Equal(t, "Kazan", q.Get("city"))
		assert.Equal(t, "420111", q.Get("postalcode"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"lat":"55.7887","lon":"49.1221"},{"lat":"1","lon":"2"}]`))
	}))
	defer srv.Close()

	point, err := NewClient(srv.URL+"/", "race-registration-test", time.Second).Lookup(context.Background(), kazan)

	require.NoError(t, err)
	require.NotNil(t, point)
	assert.InDelta(t, 55.7887, point.Lat, 1e-9)
	assert.InDelta(t, 49.1221, point.Lon, 1e-9)
}

func TestLookup_NoResults(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	point, err := NewClient(srv.URL, "ua", time.Second).Lookup(context.Background(), kazan)

	require.NoError(t, err)
	assert.Nil(t, point)
}

func TestLookup_Failures(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{"server error", http.StatusInternalServerError, `oops`},
		{"rate limited", http.StatusTooManyRequests, ``},
		{"bad json", http.StatusOK, `{"lat":`},
		{"bad latitude", http.StatusOK, `[{"lat":"north","lon":"49.1"}]`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			point, err := NewClient(srv.URL, "ua", time.Second).Lookup(context.Background(), kazan)

			assert.Nil(t, point)
			assert.ErrorIs(t, err, ErrUnavailable)
		})
	}
}

func TestLookup_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		_, _ = w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL, "ua", 20*time.Millisecond).Lookup(context.Background(), kazan)

	assert.ErrorIs(t, err, ErrUnavailable)
}
