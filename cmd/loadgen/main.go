package main

import (
	"context"
	crand "crypto/rand"
	"errors"
	"math/rand"
	"sync"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/semaphore"

	"restaurant_booking/internal/adapters/apiclient"
	"restaurant_booking/internal/adapters/observability"
	"restaurant_booking/internal/domain"
	"restaurant_booking/internal/ledger"
	"restaurant_booking/internal/shared"
)

func randomID() domain.ID {
	var id domain.ID
	if _, err := crand.Read(id[:]); err != nil {
		log.Fatal().Err(err).Msg("generate identity failed")
	}
	return id
}

var dishNames = []string{
	"Pad Thai", "Margherita", "Tonkotsu Ramen", "Ceviche", "Bibimbap",
	"Carbonara", "Shakshuka", "Pho Bo", "Moussaka", "Katsu Curry",
}

func main() {
	ctx := context.Background()
	cfg := shared.Load()

	log.Logger = observability.NewLogger(cfg.AppEnv)

	log.Info().
		Str("base", cfg.APIBase).
		Int("workers", cfg.Workers).
		Int("users", cfg.Users).
		Int("bookings", cfg.Bookings).
		Msg("loadgen starting")

	client := apiclient.New(cfg.APIBase, cfg.RPS)
	restaurant := randomID()

	// one identity plus a dish set per simulated user
	type actor struct {
		user   domain.ID
		dishes []domain.ID
		refs   []domain.Key
	}
	actors := make([]actor, cfg.Users)
	for i := range actors {
		a := actor{user: randomID()}
		for d := 0; d < cfg.Dishes; d++ {
			dish := randomID()
			a.dishes = append(a.dishes, dish)
			a.refs = append(a.refs, ledger.DishStatsKey(a.user, dish))
		}
		actors[i] = a
	}

	// init pass: user stats + dish stats, sequential per actor
	for _, a := range actors {
		if err := client.InitUserStats(ctx, a.user, restaurant); err != nil && !errors.Is(err, apiclient.ErrConflict) {
			log.Fatal().Err(err).Msg("init user stats failed")
		}
		for d, dish := range a.dishes {
			name := dishNames[d%len(dishNames)]
			if err := client.InitDishStats(ctx, a.user, dish, name); err != nil && !errors.Is(err, apiclient.ErrConflict) {
				log.Fatal().Err(err).Msg("init dish stats failed")
			}
		}
	}
	log.Info().Int("actors", len(actors)).Msg("init pass complete")

	// booking pass: bounded concurrency
	sem := semaphore.NewWeighted(int64(cfg.Workers))
	var wg sync.WaitGroup
	var mu sync.Mutex
	booked := 0

	for i := 0; i < cfg.Bookings; i++ {
		a := actors[rand.Intn(len(actors))]

		// acquire before launching the goroutine; release inside it
		if err := sem.Acquire(ctx, 1); err != nil {
			log.Fatal().Err(err).Msg("semaphore acquire failed")
		}

		wg.Add(1)
		go func(a actor) {
			defer wg.Done()
			defer sem.Release(1)

			// order a random prefix of the actor's dishes
			n := 1 + rand.Intn(len(a.dishes))
			res, err := client.BookTable(ctx, a.user, restaurant, a.dishes[:n], a.refs[:n])
			if err != nil {
				log.Warn().Err(err).Str("user", a.user.String()).Msg("booking failed")
				return
			}
			mu.Lock()
			booked++
			mu.Unlock()
			log.Debug().Uint64("visit_count", res.VisitCount).Msg("booking ok")
		}(a)
	}
	wg.Wait()
	log.Info().Int("booked", booked).Msg("booking pass complete")

	// review pass: one per actor; repeats are expected conflicts
	for _, a := range actors {
		rating := uint8(1 + rand.Intn(5))
		conf := uint8(1 + rand.Intn(10))
		err := client.SubmitReview(ctx, a.user, restaurant, rating, conf, "solid meal, would book again")
		if err != nil && !errors.Is(err, apiclient.ErrConflict) {
			log.Warn().Err(err).Str("user", a.user.String()).Msg("review failed")
		}
	}
	log.Info().Msg("loadgen completed")
}
