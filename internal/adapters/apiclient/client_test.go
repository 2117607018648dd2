package apiclient_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"restaurant_booking/internal/adapters/apiclient"
	"restaurant_booking/internal/domain"
)

func id(b byte) domain.ID {
	var out domain.ID
	for i := range out {
		out[i] = b
	}
	return out
}

func TestClient_BookTable_RetriesThenSuccess(t *testing.T) {
	var hits int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch atomic.AddInt32(&hits, 1) {
		case 1, 2:
			// two transient failures
			w.WriteHeader(500)
		default:
			if got := r.Header.Get("X-User-Key"); got != id(1).String() {
				t.Errorf("caller header: %q", got)
			}
			w.WriteHeader(200)
			_ = json.NewEncoder(w).Encode(map[string]any{"visit_count": 4, "dish_counts": []uint64{2}})
		}
	}))
	defer ts.Close()

	cl := apiclient.New(ts.URL, 100) // high RPS for tests
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	res, err := cl.BookTable(ctx, id(1), id(2), []domain.ID{id(3)}, []domain.Key{{0xAB}})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if res.VisitCount != 4 || len(res.DishCounts) != 1 {
		t.Fatalf("unexpected payload: %+v", res)
	}
	if atomic.LoadInt32(&hits) < 3 {
		t.Fatalf("expected at least 3 calls due to retries, got %d", hits)
	}
}

func TestClient_InitUserStats_Conflict(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
	}))
	defer ts.Close()

	cl := apiclient.New(ts.URL, 100)
	err := cl.InitUserStats(context.Background(), id(1), id(2))
	if !errors.Is(err, apiclient.ErrConflict) {
		t.Fatalf("want ErrConflict, got %v", err)
	}
}

func TestClient_GetUserStats_404(t *testing.T) {
	ts := httptest.NewServer(http.NotFoundHandler())
	defer ts.Close()

	cl := apiclient.New(ts.URL, 100)
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	_, err := cl.GetUserStats(ctx, id(1), id(2))
	if !errors.Is(err, apiclient.ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
}
