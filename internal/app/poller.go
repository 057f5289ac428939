package app

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/five82/rayvision/internal/rayvision"
	"github.com/five82/rayvision/internal/state"
)

const (
	defaultPollInterval = 5 * time.Second
	maxBackoff          = 30 * time.Second

	// The profile changes rarely; refresh it once every profileEvery polls.
	profileEvery = 12
)

// calculateBackoff doubles the interval per consecutive failure, capped at
// maxBackoff.
func calculateBackoff(failures int, interval time.Duration) time.Duration {
	if failures <= 0 {
		return interval
	}
	d := interval
	for range failures {
		d *= 2
		if d >= maxBackoff {
			return maxBackoff
		}
	}
	return d
}

type poller struct {
	store  *state.Store
	poster rayvision.Poster
	query  rayvision.TaskListQuery
	logger zerolog.Logger
	polls  int
}

// StartPoller launches a background goroutine that refreshes the store. It
// waits interval between polls, backing off while polls keep failing, and
// returns immediately.
func StartPoller(ctx context.Context, store *state.Store, p rayvision.Poster, query rayvision.TaskListQuery, interval time.Duration, logger zerolog.Logger) {
	if interval <= 0 {
		interval = defaultPollInterval
	}
	pl := &poller{store: store, poster: p, query: query, logger: logger}
	go func() {
		timer := time.NewTimer(interval)
		defer timer.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-timer.C:
			}
			pl.refresh(ctx)
			timer.Reset(calculateBackoff(store.Snapshot().ConsecutiveFailures, interval))
		}
	}()
}

// refresh fetches the task list, and the profile when it is due, then
// records the outcome in the store.
func (pl *poller) refresh(ctx context.Context) error {
	var profile *rayvision.UserProfile
	if pl.polls%profileEvery == 0 {
		p, err := rayvision.LoadProfile(ctx, pl.poster)
		if err != nil {
			pl.store.Update(nil, nil, err)
			pl.logger.Warn().Err(err).Msg("profile poll failed")
			return err
		}
		profile = &p
	}

	page, err := rayvision.TaskList(ctx, pl.poster, pl.query)
	if err != nil {
		pl.store.Update(nil, nil, err)
		pl.logger.Warn().Err(err).Msg("task list poll failed")
		return err
	}
	pl.polls++
	pl.store.Update(profile, &page, nil)
	return nil
}
