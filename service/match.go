package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"sync"
	"time"

	dmn "github.com/beka-birhanu/geoduel-api/domain"
	"github.com/beka-birhanu/geoduel-api/service/i"
	"github.com/google/uuid"
)

const (
	defaultPrefix        = "matchmaker"
	defaultMaxPlayer     = 2
	defaultWaiterTimeout = 2 * time.Second
	defaultResultTTL     = 30 * time.Second
	defaultEndedRoomTTL  = 10 * time.Second

	globalQueueKeyFmt = "%s:queue:global"
	roomQueueKeyFmt   = "%s:queue:room:%s"
	globalChannelFmt  = "globalwait:%s"
	roomChannelFmt    = "roomwait:%s:%s"
	newRoomFmt        = "room_%s"
)

var roomIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)

// ValidRoomID reports whether id may name a room.
func ValidRoomID(id string) bool {
	return roomIDPattern.MatchString(id)
}

type waiter struct {
	queueKey string
	room     string // empty for the global pool
	score    float64
	lastSeen time.Time
}

type pendingMatch struct {
	result    dmn.MatchResult
	matchedAt time.Time
}

// Options tune the matchmaker.
type Options struct {
	Prefix        string
	WaiterTimeout time.Duration    // waiters silent for longer are pruned
	ResultTTL     time.Duration    // unclaimed match results expire after this
	EndedRoomTTL  time.Duration    // ended rooms older than this are swept on join
	Clock         func() time.Time // defaults to time.Now
	NewID         func() string    // defaults to a random hex uuid
}

// Matchmaker pairs waiting channels two at a time, FIFO, either from the
// global pool or from the pool of a named room. One lock serializes every
// join so that pairing is atomic across pools.
type Matchmaker struct {
	sortedQueue i.SortedQueue
	registry    *RoomRegistry
	notifier    i.Notifier
	logger      i.Logger
	opts        *Options
	waiters     map[string]*waiter
	results     map[string]pendingMatch
	arrivals    float64
	sync.Mutex
}

// NewMatchmaker returns a matchmaker storing its pools in sortedQueue.
func NewMatchmaker(sortedQueue i.SortedQueue, registry *RoomRegistry, notifier i.Notifier, logger i.Logger, opts *Options) (*Matchmaker, error) {
	if sortedQueue == nil || registry == nil || notifier == nil || logger == nil {
		return nil, errors.New("matchmaker: missing dependency")
	}
	if opts == nil {
		opts = &Options{}
	}
	if opts.Prefix == "" {
		opts.Prefix = defaultPrefix
	}
	if opts.WaiterTimeout <= 0 {
		opts.WaiterTimeout = defaultWaiterTimeout
	}
	if opts.ResultTTL <= 0 {
		opts.ResultTTL = defaultResultTTL
	}
	if opts.EndedRoomTTL < 0 {
		opts.EndedRoomTTL = defaultEndedRoomTTL
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	if opts.NewID == nil {
		opts.NewID = func() string { return strings.ReplaceAll(uuid.NewString(), "-", "") }
	}

	return &Matchmaker{
		sortedQueue: sortedQueue,
		registry:    registry,
		notifier:    notifier,
		logger:      logger,
		opts:        opts,
		waiters:     make(map[string]*waiter),
		results:     make(map[string]pendingMatch),
	}, nil
}

// Join implements i.Matchmaker. The caller is matched synchronously when it
// completes a pair; otherwise it must ping and wait on the returned channel.
func (mm *Matchmaker) Join(ctx context.Context, room string) (dmn.MatchResult, error) {
	mm.Lock()
	defer mm.Unlock()

	mm.pruneLocked(ctx)
	mm.registry.Sweep(mm.opts.EndedRoomTTL)

	queueKey := mm.globalKey()
	channel := fmt.Sprintf(globalChannelFmt, mm.opts.NewID())
	if room != "" {
		if !ValidRoomID(room) {
			return dmn.MatchResult{}, dmn.ErrInvalidRoom
		}
		if mm.registry.Status(room) == dmn.RoomInGame {
			return dmn.MatchResult{}, dmn.ErrRoomBusy
		}
		queueKey = mm.roomKey(room)
		channel = fmt.Sprintf(roomChannelFmt, room, mm.opts.NewID())
	}

	mm.arrivals++
	if err := mm.sortedQueue.Enqueue(ctx, queueKey, mm.arrivals, channel); err != nil {
		mm.logger.Error(fmt.Sprintf("Failed to enqueue channel %s: %s", channel, err))
		return dmn.MatchResult{}, err
	}
	mm.waiters[channel] = &waiter{queueKey: queueKey, room: room, score: mm.arrivals, lastSeen: mm.opts.Clock()}
	if room != "" {
		mm.registry.SetStatus(room, dmn.RoomMatching)
	}
	mm.logger.Info(fmt.Sprintf("Channel enqueued: %s", channel))

	if err := mm.reconcileLocked(ctx, queueKey); err != nil {
		return dmn.MatchResult{}, err
	}

	if err := mm.pairLocked(ctx, queueKey, room); err != nil {
		return dmn.MatchResult{}, err
	}

	if p, ok := mm.results[channel]; ok {
		delete(mm.results, channel)
		return p.result, nil
	}
	return dmn.MatchResult{Team: dmn.Blue, Channel: channel}, nil
}

// pairLocked pops pairs off queueKey while it holds enough waiters. The
// first arrival plays blue.
func (mm *Matchmaker) pairLocked(ctx context.Context, queueKey, room string) error {
	for mm.sortedQueue.Count(ctx, queueKey) >= defaultMaxPlayer {
		channels, err := mm.sortedQueue.DequeTops(ctx, queueKey, defaultMaxPlayer)
		if err != nil {
			mm.logger.Error(fmt.Sprintf("dequeuing %s: %s", queueKey, err))
			return err
		}
		if len(channels) < defaultMaxPlayer {
			return nil
		}

		roomID := room
		if roomID == "" {
			roomID = fmt.Sprintf(newRoomFmt, mm.opts.NewID())
		}
		if err := mm.startRoom(roomID); err != nil {
			mm.logger.Error(fmt.Sprintf("starting room %s for %v: %s", roomID, channels, err))
			for _, ch := range channels {
				delete(mm.waiters, ch)
			}
			return err
		}

		now := mm.opts.Clock()
		for k, ch := range channels {
			team := dmn.Blue
			if k > 0 {
				team = dmn.Red
			}
			delete(mm.waiters, ch)
			mm.results[ch] = pendingMatch{
				result:    dmn.MatchResult{Matched: true, Room: roomID, Team: team, Channel: ch},
				matchedAt: now,
			}
			mm.notifier.Publish(ChannelTopic(ch), MatchedEvent(roomID, team))
		}
		mm.logger.Info(fmt.Sprintf("Match found in room %s for channels: %v", roomID, channels))
	}
	return nil
}

// reconcileLocked makes the pool stored under queueKey agree with the
// tracked waiters. Members nobody waits on are removed and tracked waiters
// missing from the store are enqueued again at their original score.
func (mm *Matchmaker) reconcileLocked(ctx context.Context, queueKey string) error {
	members, err := mm.sortedQueue.Members(ctx, queueKey)
	if err != nil {
		mm.logger.Error(fmt.Sprintf("listing %s: %s", queueKey, err))
		return err
	}

	stored := make(map[string]bool, len(members))
	var ghosts []string
	for _, ch := range members {
		stored[ch] = true
		if w, ok := mm.waiters[ch]; !ok || w.queueKey != queueKey {
			ghosts = append(ghosts, ch)
		}
	}
	if len(ghosts) > 0 {
		if err := mm.sortedQueue.Remove(ctx, queueKey, ghosts...); err != nil {
			mm.logger.Error(fmt.Sprintf("removing untracked channels from %s: %s", queueKey, err))
			return err
		}
		mm.logger.Warning(fmt.Sprintf("Removed untracked channels from %s: %v", queueKey, ghosts))
	}

	for ch, w := range mm.waiters {
		if w.queueKey != queueKey || stored[ch] {
			continue
		}
		if err := mm.sortedQueue.Enqueue(ctx, queueKey, w.score, ch); err != nil {
			mm.logger.Error(fmt.Sprintf("restoring channel %s: %s", ch, err))
			return err
		}
		mm.logger.Warning(fmt.Sprintf("Restored channel missing from %s: %s", queueKey, ch))
	}
	return nil
}

func (mm *Matchmaker) startRoom(id string) error {
	r, err := mm.registry.Open(id)
	if err != nil {
		return err
	}
	if err := r.Init(); err != nil {
		return err
	}
	mm.registry.SetStatus(id, dmn.RoomInGame)
	return nil
}

// Ping implements i.Matchmaker.
func (mm *Matchmaker) Ping(channel string) error {
	mm.Lock()
	defer mm.Unlock()

	if w, ok := mm.waiters[channel]; ok {
		w.lastSeen = mm.opts.Clock()
		return nil
	}
	if _, ok := mm.results[channel]; ok {
		return nil
	}
	return dmn.ErrUnknownChannel
}

// Poll implements i.Matchmaker. Polling a waiting channel also keeps it
// alive and reports Matched == false.
func (mm *Matchmaker) Poll(channel string) (dmn.MatchResult, error) {
	mm.Lock()
	defer mm.Unlock()

	if p, ok := mm.results[channel]; ok {
		delete(mm.results, channel)
		return p.result, nil
	}
	if w, ok := mm.waiters[channel]; ok {
		w.lastSeen = mm.opts.Clock()
		return dmn.MatchResult{Team: dmn.Blue, Channel: channel}, nil
	}
	return dmn.MatchResult{}, dmn.ErrUnknownChannel
}

// PruneStaleWaiters drops waiters that stopped pinging and expired match
// results. It returns the number of waiters removed.
func (mm *Matchmaker) PruneStaleWaiters(ctx context.Context) int {
	mm.Lock()
	defer mm.Unlock()
	return mm.pruneLocked(ctx)
}

func (mm *Matchmaker) pruneLocked(ctx context.Context) int {
	now := mm.opts.Clock()
	pruned := 0
	for ch, w := range mm.waiters {
		if now.Sub(w.lastSeen) <= mm.opts.WaiterTimeout {
			continue
		}
		if err := mm.sortedQueue.Remove(ctx, w.queueKey, ch); err != nil {
			mm.logger.Warning(fmt.Sprintf("removing stale channel %s: %s", ch, err))
			continue
		}
		delete(mm.waiters, ch)
		pruned++
		mm.logger.Info(fmt.Sprintf("Pruned stale channel: %s", ch))

		if w.room != "" && mm.sortedQueue.Count(ctx, w.queueKey) == 0 && mm.registry.Status(w.room) == dmn.RoomMatching {
			mm.registry.SetStatus(w.room, dmn.RoomEmpty)
		}
	}

	for ch, p := range mm.results {
		if now.Sub(p.matchedAt) > mm.opts.ResultTTL {
			delete(mm.results, ch)
		}
	}
	return pruned
}

// Waiting returns the number of unmatched channels.
func (mm *Matchmaker) Waiting() int {
	mm.Lock()
	defer mm.Unlock()
	return len(mm.waiters)
}

// Reset drops every waiter and pending result.
func (mm *Matchmaker) Reset(ctx context.Context) {
	mm.Lock()
	defer mm.Unlock()

	for ch, w := range mm.waiters {
		_ = mm.sortedQueue.Remove(ctx, w.queueKey, ch)
	}
	mm.waiters = make(map[string]*waiter)
	mm.results = make(map[string]pendingMatch)
}

func (mm *Matchmaker) globalKey() string {
	return fmt.Sprintf(globalQueueKeyFmt, mm.opts.Prefix)
}

func (mm *Matchmaker) roomKey(room string) string {
	return fmt.Sprintf(roomQueueKeyFmt, mm.opts.Prefix, room)
}
