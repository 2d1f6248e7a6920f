package httpserver_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	httpserver "github.com/MatthewGuile/hellopeter-cli/internal/adapters/http_server"
	"github.com/MatthewGuile/hellopeter-cli/internal/app"
	"github.com/MatthewGuile/hellopeter-cli/internal/domain"
)

// readOnlyStore backs the HTTP surface with canned rows; write paths are
// never reached from the read API.
type readOnlyStore struct {
	businesses []domain.Business
	reviews    map[string][]domain.Review
	stats      map[string]domain.BusinessStats

	lastLimit int
}

func (s *readOnlyStore) GetBusiness(ctx context.Context, slug string) (domain.Business, error) {
	for _, b := range s.businesses {
		if b.Slug == slug {
			return b, nil
		}
	}
	return domain.Business{}, domain.ErrNotFound
}

func (s *readOnlyStore) ListBusinesses(ctx context.Context) ([]domain.Business, error) {
	return s.businesses, nil
}

func (s *readOnlyStore) ListReviews(ctx context.Context, slug string, limit int) ([]domain.Review, error) {
	s.lastLimit = limit
	return s.reviews[slug], nil
}

func (s *readOnlyStore) GetStats(ctx context.Context, slug string) (domain.BusinessStats, error) {
	st, ok := s.stats[slug]
	if !ok {
		return domain.BusinessStats{}, domain.ErrNotFound
	}
	return st, nil
}

func (s *readOnlyStore) GetOrCreateBusiness(context.Context, domain.BusinessInfo) (domain.Business, error) {
	panic("not used")
}
func (s *readOnlyStore) StoreReview(context.Context, domain.Review) (domain.Review, domain.StoreOutcome, error) {
	panic("not used")
}
func (s *readOnlyStore) StoreStats(context.Context, domain.BusinessStats) (domain.BusinessStats, error) {
	panic("not used")
}
func (s *readOnlyStore) SaveBusinessData(context.Context, domain.BusinessInfo, []domain.Review, *domain.BusinessStats) (int, error) {
	panic("not used")
}
func (s *readOnlyStore) ExistingReviewIDs(context.Context, string) (map[int64]struct{}, error) {
	panic("not used")
}
func (s *readOnlyStore) LatestReviewDate(context.Context, string) (*time.Time, error) {
	panic("not used")
}
func (s *readOnlyStore) Reset(context.Context) error { panic("not used") }

func newTestServer(store *readOnlyStore) *httptest.Server {
	srv := httpserver.New()
	srv.MountHandlers(&httpserver.Handlers{Q: app.NewQueryService(store)})
	return httptest.NewServer(srv.Mux())
}

func seededStore() *readOnlyStore {
	return &readOnlyStore{
		businesses: []domain.Business{{ID: 1, Slug: "acme-bank", Name: "Acme Bank"}},
		reviews: map[string][]domain.Review{
			"acme-bank": {{ID: 1, ReviewID: 101, BusinessID: 1, ReviewRating: 5}},
		},
		stats: map[string]domain.BusinessStats{
			"acme-bank": {BusinessID: 1, TotalReviews: 1, AverageRating: 5},
		},
	}
}

func getJSON(t *testing.T, url string, out any) int {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	if out != nil && resp.StatusCode == http.StatusOK {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

func TestHealthz(t *testing.T) {
	ts := newTestServer(seededStore())
	defer ts.Close()

	require.Equal(t, http.StatusOK, getJSON(t, ts.URL+"/healthz", nil))
}

func TestGetBusiness(t *testing.T) {
	ts := newTestServer(seededStore())
	defer ts.Close()

	var got domain.Business
	require.Equal(t, http.StatusOK, getJSON(t, ts.URL+"/v1/businesses/acme-bank", &got))
	require.Equal(t, "Acme Bank", got.Name)
}

func TestGetBusiness_NotFound(t *testing.T) {
	ts := newTestServer(seededStore())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/v1/businesses/ghost")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
	require.Equal(t, "application/problem+json", resp.Header.Get("Content-Type"))
}

func TestListBusinesses(t *testing.T) {
	ts := newTestServer(seededStore())
	defer ts.Close()

	var got struct {
		Items []domain.Business `json:"items"`
	}
	require.Equal(t, http.StatusOK, getJSON(t, ts.URL+"/v1/businesses", &got))
	require.Len(t, got.Items, 1)
	require.Equal(t, "acme-bank", got.Items[0].Slug)
}

func TestListReviews_LimitClamped(t *testing.T) {
	store := seededStore()
	ts := newTestServer(store)
	defer ts.Close()

	var got struct {
		Items []domain.Review `json:"items"`
	}
	require.Equal(t, http.StatusOK, getJSON(t, ts.URL+"/v1/businesses/acme-bank/reviews?limit=9999", &got))
	require.Len(t, got.Items, 1)
	require.Equal(t, 50, store.lastLimit)

	getJSON(t, ts.URL+"/v1/businesses/acme-bank/reviews?limit=25", nil)
	require.Equal(t, 25, store.lastLimit)
}

func TestGetStats_NotFound(t *testing.T) {
	ts := newTestServer(seededStore())
	defer ts.Close()

	require.Equal(t, http.StatusNotFound, getJSON(t, ts.URL+"/v1/businesses/ghost/stats", nil))
}
