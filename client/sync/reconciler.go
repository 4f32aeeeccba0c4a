package sync

import (
	"context"
	"log/slog"
	"time"
)

type State string

const (
	StateOffline State = "offline"
	StateOnline  State = "online"
)

// Pinger probes server reachability.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Reconciler tracks connectivity as a two-state machine. The transition to
// Online triggers a queue flush; the transition to Offline only records the
// state — mutations keep landing in the cache and queue regardless.
//
// All methods are meant to be called from a single goroutine, matching the
// client's cooperative execution model.
type Reconciler struct {
	pinger   Pinger
	syncer   *Syncer
	interval time.Duration
	state    State
	log      *slog.Logger
}

func NewReconciler(pinger Pinger, syncer *Syncer, interval time.Duration, logger *slog.Logger) *Reconciler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Reconciler{
		pinger:   pinger,
		syncer:   syncer,
		interval: interval,
		state:    StateOffline,
		log:      logger,
	}
}

func (r *Reconciler) State() State {
	return r.state
}

// HandleConnectivity feeds a connectivity observation into the state
// machine. Returns the flush result when the Offline→Online edge fired.
func (r *Reconciler) HandleConnectivity(ctx context.Context, userID string, online bool) (FlushResult, bool) {
	if !online {
		if r.state != StateOffline {
			r.state = StateOffline
			r.log.Info("connectivity lost, staying local")
		}
		return FlushResult{}, false
	}

	if r.state == StateOnline {
		return FlushResult{}, false
	}

	r.state = StateOnline
	r.log.Info("connectivity restored, flushing queue")

	res, err := r.syncer.Flush(ctx, userID)
	if err != nil {
		// Queue untouched; the next transition retries.
		r.log.Warn("flush failed", "err", err)
		return res, true
	}

	r.log.Info("flush finished",
		"confirmed", res.Confirmed, "dropped", res.Dropped,
		"failed", res.Failed, "deferred", res.Deferred)
	return res, true
}

// Run probes the server on a ticker and drives the state machine until ctx
// is cancelled. While Online with a non-empty queue, each tick also retries
// the flush so backed-off entries eventually drain.
func (r *Reconciler) Run(ctx context.Context, userID string) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
			err := r.pinger.Ping(pingCtx)
			cancel()

			online := err == nil
			if _, fired := r.HandleConnectivity(ctx, userID, online); fired {
				continue
			}

			// Steady-state Online: drain entries whose backoff elapsed.
			if online {
				if n, err := r.syncer.queue.Len(userID); err == nil && n > 0 {
					if _, err := r.syncer.Flush(ctx, userID); err != nil {
						r.log.Warn("flush failed", "err", err)
					}
				}
			}

		case <-ctx.Done():
			return
		}
	}
}
