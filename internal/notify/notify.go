// Package notify broadcasts repository change events to interested listeners.
package notify

import (
	"fmt"
	"sync"
)

// Topic names a class of events.
type Topic string

// TopicRemoteChanged is published after a commit changed local history that
// remote-aware views (incoming/outgoing, branch lists) need to re-read.
const TopicRemoteChanged Topic = "remote-changed"

// Event carries the acting context of a notification.
type Event struct {
	Topic Topic
	Root  string
}

// Listener receives published events.
type Listener func(Event)

// Bus delivers events to listeners in registration order.
type Bus struct {
	mu        sync.RWMutex
	listeners map[Topic][]Listener
}

// NewBus creates an empty Bus.
func NewBus() *Bus {
	return &Bus{listeners: make(map[Topic][]Listener)}
}

// Subscribe registers l for topic.
func (b *Bus) Subscribe(topic Topic, l Listener) error {
	if l == nil {
		return fmt.Errorf("listener cannot be nil")
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	b.listeners[topic] = append(b.listeners[topic], l)
	return nil
}

// Publish delivers ev to every listener of topic synchronously.
func (b *Bus) Publish(topic Topic, ev Event) {
	b.mu.RLock()
	listeners := append([]Listener(nil), b.listeners[topic]...)
	b.mu.RUnlock()

	ev.Topic = topic
	for _, l := range listeners {
		l(ev)
	}
}
