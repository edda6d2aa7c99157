package worker

import (
	"context"
	"sync"

	"agencysite/notifications"

	"github.com/sirupsen/logrus"
)

const (
	eventBuffer      = 256
	subscriberBuffer = 16
)

// BroadcastWorker fans newly created items out to every connected admin
// websocket. Delivery is best-effort: a full subscriber buffer drops the event.
type BroadcastWorker struct {
	Logger *logrus.Entry

	events      chan notifications.Item
	mu          sync.RWMutex
	subscribers map[int]chan notifications.Item
	nextID      int
	stopped     bool
}

func NewBroadcastWorker(logger *logrus.Entry) *BroadcastWorker {
	return &BroadcastWorker{
		Logger:      logger,
		events:      make(chan notifications.Item, eventBuffer),
		subscribers: make(map[int]chan notifications.Item),
	}
}

// Publish queues an item without blocking the caller.
func (bw *BroadcastWorker) Publish(item notifications.Item) {
	select {
	case bw.events <- item:
	default:
		bw.Logger.WithField("item_id", item.ID).Warn("Broadcast queue full, dropping event")
	}
}

// Subscribe registers a listener. The channel is closed by Unsubscribe or
// when the worker stops.
func (bw *BroadcastWorker) Subscribe() (int, <-chan notifications.Item) {
	bw.mu.Lock()
	defer bw.mu.Unlock()

	ch := make(chan notifications.Item, subscriberBuffer)
	if bw.stopped {
		close(ch)
		return -1, ch
	}
	id := bw.nextID
	bw.nextID++
	bw.subscribers[id] = ch
	return id, ch
}

func (bw *BroadcastWorker) Unsubscribe(id int) {
	bw.mu.Lock()
	defer bw.mu.Unlock()
	if ch, ok := bw.subscribers[id]; ok {
		delete(bw.subscribers, id)
		close(ch)
	}
}

func (bw *BroadcastWorker) Start(ctx context.Context) {
	bw.Logger.Info("Broadcast worker started")

	for {
		select {
		case <-ctx.Done():
			bw.Logger.Info("Broadcast worker shutting down...")
			bw.closeAll()
			return
		case item := <-bw.events:
			bw.fanOut(item)
		}
	}
}

func (bw *BroadcastWorker) fanOut(item notifications.Item) {
	bw.mu.RLock()
	defer bw.mu.RUnlock()

	for id, ch := range bw.subscribers {
		select {
		case ch <- item:
		default:
			bw.Logger.WithField("subscriber", id).Warn("Subscriber too slow, dropping event")
		}
	}
}

func (bw *BroadcastWorker) closeAll() {
	bw.mu.Lock()
	defer bw.mu.Unlock()
	for id, ch := range bw.subscribers {
		delete(bw.subscribers, id)
		close(ch)
	}
	bw.stopped = true
}
