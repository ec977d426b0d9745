package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/beka-birhanu/geoduel-api/service/i"
	"github.com/go-co-op/gocron/v2"
)

type waiterPruner interface {
	PruneStaleWaiters(ctx context.Context) int
}

type roomSweeper interface {
	Sweep(ttl time.Duration) []string
}

// JanitorConfig wires the periodic cleanup jobs.
type JanitorConfig struct {
	Matchmaker          waiterPruner
	Registry            roomSweeper
	WaiterPruneInterval time.Duration
	RoomSweepInterval   time.Duration
	EndedRoomTTL        time.Duration
	Logger              i.Logger
}

// Janitor prunes silent waiters and sweeps ended rooms on a schedule.
type Janitor struct {
	scheduler gocron.Scheduler
	logger    i.Logger
}

// NewJanitor registers the cleanup jobs without starting them.
func NewJanitor(c *JanitorConfig) (*Janitor, error) {
	if c == nil || c.Matchmaker == nil || c.Registry == nil || c.Logger == nil {
		return nil, errors.New("janitor: missing dependency")
	}
	if c.WaiterPruneInterval <= 0 || c.RoomSweepInterval <= 0 {
		return nil, errors.New("janitor: intervals must be positive")
	}

	scheduler, err := gocron.NewScheduler()
	if err != nil {
		return nil, err
	}

	_, err = scheduler.NewJob(
		gocron.DurationJob(c.WaiterPruneInterval),
		gocron.NewTask(func() {
			if n := c.Matchmaker.PruneStaleWaiters(context.Background()); n > 0 {
				c.Logger.Info(fmt.Sprintf("janitor pruned %d waiters", n))
			}
		}),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		return nil, err
	}

	_, err = scheduler.NewJob(
		gocron.DurationJob(c.RoomSweepInterval),
		gocron.NewTask(func() {
			c.Registry.Sweep(c.EndedRoomTTL)
		}),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		return nil, err
	}

	return &Janitor{scheduler: scheduler, logger: c.Logger}, nil
}

// Start runs the jobs in the background.
func (j *Janitor) Start() {
	j.scheduler.Start()
	j.logger.Info("janitor started")
}

// Stop waits for running jobs and shuts the scheduler down.
func (j *Janitor) Stop() error {
	return j.scheduler.Shutdown()
}
