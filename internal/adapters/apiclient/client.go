// Package apiclient is an outbound HTTP client for the booking API, used by
// the load generator. Client-side rate limiting plus retries on 429 and
// transient 5xx.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"strconv"
	"time"

	"golang.org/x/time/rate"

	"restaurant_booking/internal/adapters/observability"
	"restaurant_booking/internal/domain"
)

type Client struct {
	base string
	hc   *http.Client
	rl   *rate.Limiter
}

var (
	ErrConflict = errors.New("apiclient: conflict")
	ErrNotFound = errors.New("apiclient: not found")
	ErrRejected = errors.New("apiclient: rejected")
)

func New(base string, rps int) *Client {
	if rps <= 0 {
		rps = 10
	}
	return &Client{
		base: base,
		hc:   &http.Client{Timeout: 20 * time.Second},
		rl:   rate.NewLimiter(rate.Limit(rps), rps),
	}
}

// ---- Public API ----

func (c *Client) InitUserStats(ctx context.Context, user, restaurant domain.ID) error {
	body := map[string]any{"restaurant": restaurant.String()}
	return c.post(ctx, "/v1/user-stats", user, body, nil)
}

func (c *Client) InitDishStats(ctx context.Context, user, dish domain.ID, name string) error {
	body := map[string]any{"dish": dish.String(), "name": name}
	return c.post(ctx, "/v1/dish-stats", user, body, nil)
}

type BookingResult struct {
	VisitCount uint64   `json:"visit_count"`
	DishCounts []uint64 `json:"dish_counts"`
}

func (c *Client) BookTable(ctx context.Context, user, restaurant domain.ID, dishIDs []domain.ID, refs []domain.Key) (BookingResult, error) {
	ids := make([]string, 0, len(dishIDs))
	for _, id := range dishIDs {
		ids = append(ids, id.String())
	}
	updates := make([]map[string]string, 0, len(refs))
	for _, k := range refs {
		updates = append(updates, map[string]string{"stats": k.String()})
	}
	body := map[string]any{"restaurant": restaurant.String(), "dish_ids": ids, "dish_updates": updates}
	var out BookingResult
	return out, c.post(ctx, "/v1/bookings", user, body, &out)
}

func (c *Client) SubmitReview(ctx context.Context, user, restaurant domain.ID, rating, confidence uint8, text string) error {
	body := map[string]any{
		"restaurant":       restaurant.String(),
		"rating":           rating,
		"confidence_level": confidence,
		"review":           text,
	}
	return c.post(ctx, "/v1/reviews", user, body, nil)
}

func (c *Client) GetUserStats(ctx context.Context, user, restaurant domain.ID) (domain.UserStatsView, error) {
	var out domain.UserStatsView
	path := fmt.Sprintf("/v1/user-stats/%s/%s", user, restaurant)
	return out, c.do(ctx, http.MethodGet, path, domain.ID{}, nil, &out)
}

// ---- Internals ----

func (c *Client) post(ctx context.Context, path string, user domain.ID, body any, out any) error {
	return c.do(ctx, http.MethodPost, path, user, body, out)
}

// do performs a request with client-side rate limiting and retries, decoding
// the JSON response into out when provided. Retries on 429 and transient
// 5xx, honoring Retry-After when given.
func (c *Client) do(ctx context.Context, method, path string, user domain.ID, body, out any) error {
	if err := c.rl.Wait(ctx); err != nil {
		return err
	}

	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return err
		}
	}

	var lastErr error
	for i := 0; i < 4; i++ {
		var rdr io.Reader
		if payload != nil {
			rdr = bytes.NewReader(payload)
		}
		req, err := http.NewRequestWithContext(ctx, method, c.base+path, rdr)
		if err != nil {
			return err
		}
		if !user.IsZero() {
			req.Header.Set("X-User-Key", user.String())
		}
		if payload != nil {
			req.Header.Set("Content-Type", "application/json")
		}
		req.Header.Set("Accept", "application/json")
		req.Header.Set("User-Agent", "booking-loadgen/1.0")

		start := time.Now()
		resp, err := c.hc.Do(req)
		if err != nil {
			lastErr = err
			sleepBackoff(ctx, i, "")
			continue
		}

		observability.ObserveExternal("booking-api", path, resp.StatusCode, time.Since(start))

		switch {
		case resp.StatusCode >= 200 && resp.StatusCode < 300:
			defer resp.Body.Close()
			if out == nil {
				_, _ = io.Copy(io.Discard, resp.Body)
				return nil
			}
			return json.NewDecoder(resp.Body).Decode(out)
		case resp.StatusCode == http.StatusNotFound:
			drain(resp)
			return ErrNotFound
		case resp.StatusCode == http.StatusConflict:
			drain(resp)
			return ErrConflict
		case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
			ra := resp.Header.Get("Retry-After")
			drain(resp)
			lastErr = fmt.Errorf("status %d from %s", resp.StatusCode, path)
			sleepBackoff(ctx, i, ra)
			continue
		default:
			drain(resp)
			return fmt.Errorf("%w: status %d from %s", ErrRejected, resp.StatusCode, path)
		}
	}
	return lastErr
}

func drain(resp *http.Response) {
	_, _ = io.Copy(io.Discard, resp.Body)
	_ = resp.Body.Close()
}

// sleepBackoff waits before the next attempt: Retry-After when the server
// said so, else exponential with jitter.
func sleepBackoff(ctx context.Context, attempt int, retryAfter string) {
	d := time.Duration(1<<attempt) * 250 * time.Millisecond
	if retryAfter != "" {
		if secs, err := strconv.Atoi(retryAfter); err == nil && secs > 0 {
			d = time.Duration(secs) * time.Second
		}
	}
	d += time.Duration(rand.Intn(100)) * time.Millisecond
	select {
	case <-ctx.Done():
	case <-time.After(d):
	}
}
