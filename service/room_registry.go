package service

import (
	"fmt"
	"sync"
	"time"

	dmn "github.com/beka-birhanu/geoduel-api/domain"
	"github.com/beka-birhanu/geoduel-api/game"
	"github.com/beka-birhanu/geoduel-api/service/i"
)

// RoomFactory builds the state of a new room.
type RoomFactory func(id string) (*game.Room, error)

type roomEntry struct {
	room    *game.Room
	status  dmn.RoomStatus
	endedAt time.Time
}

// RoomRegistry maps room ids to their state and lifecycle status.
type RoomRegistry struct {
	rooms   map[string]*roomEntry
	factory RoomFactory
	now     func() time.Time
	logger  i.Logger
	sync.RWMutex
}

// RegistryConfig holds the collaborators of a RoomRegistry.
type RegistryConfig struct {
	Factory RoomFactory
	Clock   func() time.Time
	Logger  i.Logger
}

// NewRoomRegistry returns an empty registry.
func NewRoomRegistry(c *RegistryConfig) *RoomRegistry {
	clock := c.Clock
	if clock == nil {
		clock = time.Now
	}
	return &RoomRegistry{
		rooms:   make(map[string]*roomEntry),
		factory: c.Factory,
		now:     clock,
		logger:  c.Logger,
	}
}

// Get returns the state of an existing room.
func (r *RoomRegistry) Get(id string) (*game.Room, error) {
	r.RLock()
	defer r.RUnlock()
	e, ok := r.rooms[id]
	if !ok || e.room == nil {
		return nil, fmt.Errorf("%w: %s", dmn.ErrRoomNotFound, id)
	}
	return e.room, nil
}

// Open returns the room with id, creating it when it does not exist yet or
// when the previous match in it has ended. Room locks are taken while the
// registry lock is held, never the other way around.
func (r *RoomRegistry) Open(id string) (*game.Room, error) {
	r.Lock()
	defer r.Unlock()

	e, ok := r.rooms[id]
	if ok && e.room != nil && e.status != dmn.RoomEnded && !e.room.Ended() {
		return e.room, nil
	}

	room, err := r.factory(id)
	if err != nil {
		return nil, err
	}
	status := dmn.RoomEmpty
	if ok && e.status != dmn.RoomEnded {
		status = e.status
	}
	r.rooms[id] = &roomEntry{room: room, status: status}
	r.logger.Info(fmt.Sprintf("created room %s", id))
	return room, nil
}

// Status returns the lifecycle status of id.
func (r *RoomRegistry) Status(id string) dmn.RoomStatus {
	r.RLock()
	defer r.RUnlock()
	if e, ok := r.rooms[id]; ok {
		return e.status
	}
	return dmn.RoomEmpty
}

// SetStatus records status for id. Setting EMPTY on a room without state
// forgets the id.
func (r *RoomRegistry) SetStatus(id string, status dmn.RoomStatus) {
	r.Lock()
	defer r.Unlock()

	e, ok := r.rooms[id]
	if !ok {
		if status == dmn.RoomEmpty {
			return
		}
		e = &roomEntry{}
		r.rooms[id] = e
	}
	if status == dmn.RoomEmpty && e.room == nil {
		delete(r.rooms, id)
		return
	}
	e.status = status
	if status == dmn.RoomEnded {
		e.endedAt = r.now()
	}
}

// MarkEnded flags id for pruning. Repeated calls keep the first end time.
func (r *RoomRegistry) MarkEnded(id string) {
	r.Lock()
	defer r.Unlock()

	e, ok := r.rooms[id]
	if !ok || e.status == dmn.RoomEnded {
		return
	}
	e.status = dmn.RoomEnded
	e.endedAt = r.now()
	r.logger.Info(fmt.Sprintf("room %s ended", id))
}

// Sweep removes rooms that have been ENDED for at least ttl and returns
// their ids, which become free for reuse.
func (r *RoomRegistry) Sweep(ttl time.Duration) []string {
	r.Lock()
	defer r.Unlock()

	now := r.now()
	var removed []string
	for id, e := range r.rooms {
		if e.status == dmn.RoomEnded && now.Sub(e.endedAt) >= ttl {
			delete(r.rooms, id)
			removed = append(removed, id)
		}
	}
	if len(removed) > 0 {
		r.logger.Info(fmt.Sprintf("swept ended rooms: %v", removed))
	}
	return removed
}

// Len returns the number of tracked room ids.
func (r *RoomRegistry) Len() int {
	r.RLock()
	defer r.RUnlock()
	return len(r.rooms)
}

// Reset forgets every room.
func (r *RoomRegistry) Reset() {
	r.Lock()
	defer r.Unlock()
	r.rooms = make(map[string]*roomEntry)
}
