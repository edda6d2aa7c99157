package notifications

import (
	"context"
	"sort"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

// HistorySize caps how many acknowledged notifications an admin keeps.
const HistorySize = 15

// Feed is one admin's bell: a "new" bucket filled by Refresh and a capped
// history filled by Open. The new bucket lives in memory only, so items
// surface again after a restart until Open advances the checkpoint.
type Feed struct {
	mu      sync.Mutex
	key     string
	store   CheckpointStore
	now     func() time.Time
	fresh   []Notification
	inFresh map[string]struct{}
	history *lru.Cache[string, Notification]
}

// Snapshot is the feed as rendered by the admin panel. History is newest first.
type Snapshot struct {
	New        []Notification `json:"new"`
	History    []Notification `json:"history"`
	Count      int            `json:"count"`
	Checkpoint time.Time      `json:"checkpoint"`
}

func NewFeed(key string, store CheckpointStore, now func() time.Time) *Feed {
	if now == nil {
		now = time.Now
	}
	history, _ := lru.New[string, Notification](HistorySize)
	return &Feed{
		key:     key,
		store:   store,
		now:     now,
		inFresh: make(map[string]struct{}),
		history: history,
	}
}

// Checkpoint returns the moment this admin last opened the panel.
func (f *Feed) Checkpoint(ctx context.Context) (time.Time, error) {
	return f.store.Get(ctx, f.key)
}

// Refresh appends every item created strictly after the checkpoint that is
// not already in the new bucket, and returns the ones it appended. The
// checkpoint is read under the feed lock so a concurrent Open cannot slip
// acknowledged items back into the new bucket.
func (f *Feed) Refresh(ctx context.Context, items []Item) ([]Notification, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	checkpoint, err := f.store.Get(ctx, f.key)
	if err != nil {
		return nil, err
	}

	candidates := make([]Item, 0, len(items))
	for _, it := range items {
		if it.CreatedAt.After(checkpoint) {
			candidates = append(candidates, it)
		}
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].CreatedAt.Before(candidates[j].CreatedAt)
	})

	var added []Notification
	for _, it := range candidates {
		if _, dup := f.inFresh[it.ID]; dup {
			continue
		}
		n := Decorate(it)
		f.fresh = append(f.fresh, n)
		f.inFresh[it.ID] = struct{}{}
		added = append(added, n)
	}
	return added, nil
}

// Open advances the checkpoint to now, then moves the new bucket into
// history and clears it. A failed advance leaves the feed untouched.
func (f *Feed) Open(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.store.Advance(ctx, f.key, f.now()); err != nil {
		return err
	}
	for _, n := range f.fresh {
		// Add on an existing id replaces the entry and makes it the most recent.
		f.history.Add(n.ID, n)
	}
	f.fresh = nil
	f.inFresh = make(map[string]struct{})
	return nil
}

func (f *Feed) Snapshot(ctx context.Context) (Snapshot, error) {
	checkpoint, err := f.store.Get(ctx, f.key)
	if err != nil {
		return Snapshot{}, err
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	fresh := make([]Notification, len(f.fresh))
	copy(fresh, f.fresh)

	keys := f.history.Keys()
	history := make([]Notification, 0, len(keys))
	for i := len(keys) - 1; i >= 0; i-- {
		if n, ok := f.history.Peek(keys[i]); ok {
			history = append(history, n)
		}
	}

	return Snapshot{
		New:        fresh,
		History:    history,
		Count:      len(fresh),
		Checkpoint: checkpoint,
	}, nil
}

// Center hands out one Feed per admin, all sharing the same checkpoint store.
type Center struct {
	mu    sync.Mutex
	store CheckpointStore
	now   func() time.Time
	feeds map[string]*Feed
}

func NewCenter(store CheckpointStore, now func() time.Time) *Center {
	if now == nil {
		now = time.Now
	}
	return &Center{store: store, now: now, feeds: make(map[string]*Feed)}
}

func (c *Center) FeedFor(key string) *Feed {
	c.mu.Lock()
	defer c.mu.Unlock()
	feed, ok := c.feeds[key]
	if !ok {
		feed = NewFeed(key, c.store, c.now)
		c.feeds[key] = feed
	}
	return feed
}
