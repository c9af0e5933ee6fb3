package worker

import (
	"context"
	"errors"
	"time"

	"playvault/models"
	"playvault/service"

	log "github.com/sirupsen/logrus"
)

// Keeper polls the raffle's trigger probe and fires the trigger when the
// round is ready. Triggering is permissionless, so running several keepers is
// safe: the losers of the race get a trigger-not-needed result.
type Keeper struct {
	raffle       service.RaffleService
	pollInterval time.Duration

	// roundInterval mirrors the raffle's configured interval so the keeper
	// can spot an elapsed round that is empty and merely needs a clock reset
	roundInterval time.Duration
}

// NewKeeper creates a keeper polling at the given interval
func NewKeeper(raffle service.RaffleService, pollInterval, roundInterval time.Duration) *Keeper {
	return &Keeper{
		raffle:        raffle,
		pollInterval:  pollInterval,
		roundInterval: roundInterval,
	}
}

// Start begins the keeper loop and returns a stop function
func (k *Keeper) Start(ctx context.Context) func() {
	stopChan := make(chan struct{})

	go func() {
		log.WithField("pollInterval", k.pollInterval).Info("Raffle keeper started")

		ticker := time.NewTicker(k.pollInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				log.Info("Raffle keeper shutting down (context cancelled)")
				return
			case <-stopChan:
				log.Info("Raffle keeper shutting down (stop requested)")
				return
			case <-ticker.C:
				k.tick(ctx)
			}
		}
	}()

	return func() {
		close(stopChan)
	}
}

func (k *Keeper) tick(ctx context.Context) {
	check, err := k.raffle.CheckTrigger(ctx)
	if err != nil {
		log.WithError(err).Error("Trigger check failed")
		return
	}
	if !check.Ready {
		// An elapsed round with no entrants still needs its clock reset, and
		// only PerformTrigger does that.
		if check.Status == models.StatusOpen && check.Entrants == 0 && check.Elapsed >= k.roundInterval {
			k.performTrigger(ctx)
		}
		return
	}

	log.WithFields(log.Fields{
		"entrants": check.Entrants,
		"pot":      check.Pot,
		"elapsed":  check.Elapsed,
	}).Info("Round ready, firing trigger")
	k.performTrigger(ctx)
}

func (k *Keeper) performTrigger(ctx context.Context) {
	err := k.raffle.PerformTrigger(ctx)
	if err == nil {
		return
	}

	// Another keeper got there first, or the round moved on between the
	// probe and the trigger.
	var notNeeded *models.TriggerNotNeededError
	if errors.As(err, &notNeeded) {
		log.WithFields(log.Fields{
			"status":   notNeeded.Status,
			"entrants": notNeeded.Entrants,
		}).Debug("Trigger not needed")
		return
	}

	log.WithError(err).Error("Trigger failed")
}
