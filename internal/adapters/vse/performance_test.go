package vse

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adelgado/vsetrack/internal/domain"
)

func testClient(srv *httptest.Server) *Client {
	return NewClient(Config{
		APIBase:      srv.URL,
		SiteBase:     srv.URL,
		GameURI:      "test-competition",
		AuthCookie:   "session=abc",
		RequestDelay: time.Millisecond,
	})
}

func TestFetchPortfolio_LatestByTimestamp(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-competition", r.URL.Query().Get("gameUri"))
		assert.Equal(t, "p1", r.URL.Query().Get("publicId"))

		// Serie desordenada a propósito: el último punto del array NO es
		// el último cronológico.
		w.Write([]byte(`{"data":{"values":[
			{"w":110000,"p":10,"g":10000,"t":1751900000000},
			{"w":90000,"p":-10,"g":-10000,"t":1751700000000}
		]}}`))
	}))
	defer srv.Close()

	snap, err := testClient(srv).FetchPortfolio(context.Background(), "p1")
	require.NoError(t, err)

	assert.InDelta(t, 110000, snap.Value, 0.001)
	assert.InDelta(t, 10, snap.ReturnPercent, 0.001)
	assert.InDelta(t, 10000, snap.ReturnDollars, 0.001)
	assert.False(t, snap.Stale)
	assert.Equal(t, time.UnixMilli(1751900000000).UTC(), snap.ObservedAt)
}

func TestFetchPortfolio_EmptySeriesIsStale(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"data":{"values":[]}}`))
	}))
	defer srv.Close()

	snap, err := testClient(srv).FetchPortfolio(context.Background(), "p1")
	require.NoError(t, err)

	assert.True(t, snap.Stale)
	assert.Zero(t, snap.Value)
	assert.Equal(t, "p1", snap.PublicID)
}

func TestFetchPortfolio_AuthExpired(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	_, err := testClient(srv).FetchPortfolio(context.Background(), "p1")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrAuthExpired)
}

func TestFetchPortfolio_NotFoundIsUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := testClient(srv).FetchPortfolio(context.Background(), "p1")
	assert.ErrorIs(t, err, domain.ErrSourceUnavailable)
}

func TestFetchPortfolio_MalformedBodyIsParseError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`<html>not json</html>`))
	}))
	defer srv.Close()

	_, err := testClient(srv).FetchPortfolio(context.Background(), "p1")
	assert.ErrorIs(t, err, domain.ErrSourceParse)
}

func TestClient_SendsAuthCookie(t *testing.T) {
	var gotCookie string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotCookie = r.Header.Get("Cookie")
		w.Write([]byte(`{"data":{"values":[]}}`))
	}))
	defer srv.Close()

	_, err := testClient(srv).FetchPortfolio(context.Background(), "p1")
	require.NoError(t, err)
	assert.Equal(t, "session=abc", gotCookie)
}

func TestClient_EnforcesRequestDelay(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"data":{"values":[]}}`))
	}))
	defer srv.Close()

	c := NewClient(Config{
		APIBase:      srv.URL,
		SiteBase:     srv.URL,
		GameURI:      "g",
		RequestDelay: 50 * time.Millisecond,
	})

	start := time.Now()
	for i := 0; i < 3; i++ {
		_, err := c.FetchPortfolio(context.Background(), "p1")
		require.NoError(t, err)
	}
	// Tres requests con un delay mínimo de 50ms entre ellas
	assert.GreaterOrEqual(t, time.Since(start), 100*time.Millisecond)
}
