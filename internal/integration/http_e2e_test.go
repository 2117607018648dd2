package integration

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"

	server "restaurant_booking/internal/adapters/http_server"
	redisad "restaurant_booking/internal/adapters/redis"
	"restaurant_booking/internal/app"
	"restaurant_booking/internal/domain"
	"restaurant_booking/internal/ledger"
	"restaurant_booking/internal/storage/kv"
)

// Full wiring minus the persistent backend: memory record store, miniredis
// cache, real router and handlers.
func newTestServer(t *testing.T, policy app.AuxRefPolicy) (*httptest.Server, *ledger.Store) {
	t.Helper()
	mr := miniredis.RunT(t)
	store := ledger.New(kv.NewMemStore())
	cache := redisad.New(mr.Addr(), "", 0)

	srv := server.New()
	srv.MountHandlers(&server.Handlers{
		B: app.NewBookingService(store, cache, policy),
		Q: app.NewQueryService(store, cache, time.Minute),
	})
	ts := httptest.NewServer(srv.Mux())
	t.Cleanup(ts.Close)
	return ts, store
}

func hexID(b byte) string {
	var id domain.ID
	for i := range id {
		id[i] = b
	}
	return id.String()
}

func doJSON(t *testing.T, ts *httptest.Server, method, path, user string, body any) (*http.Response, map[string]any) {
	t.Helper()
	var rdr *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		rdr = bytes.NewReader(b)
	} else {
		rdr = bytes.NewReader(nil)
	}
	req, err := http.NewRequest(method, ts.URL+path, rdr)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if user != "" {
		req.Header.Set("X-User-Key", user)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do: %v", err)
	}
	defer resp.Body.Close()
	var out map[string]any
	_ = json.NewDecoder(resp.Body).Decode(&out)
	return resp, out
}

func TestHTTP_EndToEnd_BookingFlow(t *testing.T) {
	ts, _ := newTestServer(t, app.AuxRefCompat)
	user, restaurant, dish := hexID(0xA1), hexID(0xB2), hexID(0xC3)

	// init user stats
	resp, body := doJSON(t, ts, "POST", "/v1/user-stats", user, map[string]any{"restaurant": restaurant})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("init user stats: %d %v", resp.StatusCode, body)
	}
	if body["visit_count"].(float64) != 0 {
		t.Fatalf("visit_count: %v", body["visit_count"])
	}

	// double init is a conflict
	resp, _ = doJSON(t, ts, "POST", "/v1/user-stats", user, map[string]any{"restaurant": restaurant})
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("second init: %d", resp.StatusCode)
	}

	// init dish stats
	resp, body = doJSON(t, ts, "POST", "/v1/dish-stats", user, map[string]any{"dish": dish, "name": "Carbonara"})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("init dish stats: %d %v", resp.StatusCode, body)
	}

	// book a table referencing the dish record
	ub, _ := domain.ParseID(user)
	db, _ := domain.ParseID(dish)
	ref := ledger.DishStatsKey(ub, db).String()

	resp, body = doJSON(t, ts, "POST", "/v1/bookings", user, map[string]any{
		"restaurant":   restaurant,
		"dish_ids":     []string{dish},
		"dish_updates": []map[string]string{{"stats": ref}},
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("booking: %d %v", resp.StatusCode, body)
	}
	if body["visit_count"].(float64) != 1 {
		t.Fatalf("visit_count after booking: %v", body["visit_count"])
	}

	// rating out of range rejected, no record created
	resp, _ = doJSON(t, ts, "POST", "/v1/reviews", user, map[string]any{
		"restaurant": restaurant, "rating": 6, "confidence_level": 8, "review": "!!",
	})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("invalid rating: %d", resp.StatusCode)
	}
	resp, _ = doJSON(t, ts, "GET", fmt.Sprintf("/v1/reviews/%s/%s", user, restaurant), "", nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("review record after failed validation: %d", resp.StatusCode)
	}

	// valid review
	resp, body = doJSON(t, ts, "POST", "/v1/reviews", user, map[string]any{
		"restaurant": restaurant, "rating": 4, "confidence_level": 8, "review": "ok",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("review: %d %v", resp.StatusCode, body)
	}

	// repeat review is a conflict
	resp, _ = doJSON(t, ts, "POST", "/v1/reviews", user, map[string]any{
		"restaurant": restaurant, "rating": 4, "confidence_level": 8, "review": "ok",
	})
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("second review: %d", resp.StatusCode)
	}

	// reads reflect committed state
	resp, body = doJSON(t, ts, "GET", fmt.Sprintf("/v1/user-stats/%s/%s", user, restaurant), "", nil)
	if resp.StatusCode != http.StatusOK || body["visit_count"].(float64) != 1 {
		t.Fatalf("user stats read: %d %v", resp.StatusCode, body)
	}
	resp, body = doJSON(t, ts, "GET", fmt.Sprintf("/v1/dish-stats/%s/%s", user, dish), "", nil)
	if resp.StatusCode != http.StatusOK || body["count"].(float64) != 1 || body["name"] != "Carbonara" {
		t.Fatalf("dish stats read: %d %v", resp.StatusCode, body)
	}
	resp, body = doJSON(t, ts, "GET", fmt.Sprintf("/v1/reviews/%s/%s", user, restaurant), "", nil)
	if resp.StatusCode != http.StatusOK || body["review"] != "ok" {
		t.Fatalf("review read: %d %v", resp.StatusCode, body)
	}
}

func TestHTTP_ETagShortCircuits(t *testing.T) {
	ts, _ := newTestServer(t, app.AuxRefCompat)
	user, restaurant := hexID(0x01), hexID(0x02)

	resp, _ := doJSON(t, ts, "POST", "/v1/user-stats", user, map[string]any{"restaurant": restaurant})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("init: %d", resp.StatusCode)
	}

	path := fmt.Sprintf("/v1/user-stats/%s/%s", user, restaurant)
	first, err := http.Get(ts.URL + path)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	first.Body.Close()
	etag := first.Header.Get("ETag")
	if etag == "" {
		t.Fatalf("missing ETag")
	}

	req, _ := http.NewRequest("GET", ts.URL+path, nil)
	req.Header.Set("If-None-Match", etag)
	second, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("conditional get: %v", err)
	}
	second.Body.Close()
	if second.StatusCode != http.StatusNotModified {
		t.Fatalf("want 304, got %d", second.StatusCode)
	}
}

func TestHTTP_MissingIdentityRejected(t *testing.T) {
	ts, _ := newTestServer(t, app.AuxRefCompat)
	resp, _ := doJSON(t, ts, "POST", "/v1/user-stats", "", map[string]any{"restaurant": hexID(2)})
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("want 401, got %d", resp.StatusCode)
	}
}
