package assets

import (
	"reflect"
	"sync"
)

// EventCode identifies the kind of asset lifecycle event.
type EventCode int

const (
	// An asset finished loading.
	EventAssetLoaded EventCode = iota + 1
	// An asset failed to load. Event.Err holds the reason.
	EventAssetFailed
	// A loaded asset was loaded again after its file changed.
	EventAssetReloaded
	// The file of a loaded asset was removed and the asset was dropped.
	EventAssetRemoved
)

// Event is passed to every listener registered for its Code.
type Event struct {
	Code   EventCode
	Handle Handle
	Err    error
}

// FnOnEvent should return true if the event was handled; the event is then
// not passed on to any more listeners.
type FnOnEvent func(event Event, listener interface{}) bool

type registeredEvent struct {
	listener interface{}
	callback FnOnEvent
}

type eventSystem struct {
	mu         sync.RWMutex
	registered map[EventCode][]*registeredEvent
}

func newEventSystem() *eventSystem {
	return &eventSystem{
		registered: make(map[EventCode][]*registeredEvent),
	}
}

// comparableListener reports whether listener can be matched with ==.
// Maps, slices and funcs cannot.
func comparableListener(listener interface{}) bool {
	return listener == nil || reflect.ValueOf(listener).Comparable()
}

// register adds a listener for code. A listener can only be registered once
// per code; duplicates and listeners that cannot be compared return false.
func (es *eventSystem) register(code EventCode, listener interface{}, onEvent FnOnEvent) bool {
	if !comparableListener(listener) {
		return false
	}
	es.mu.Lock()
	defer es.mu.Unlock()

	for _, e := range es.registered[code] {
		if e.listener == listener {
			return false
		}
	}
	es.registered[code] = append(es.registered[code], &registeredEvent{
		listener: listener,
		callback: onEvent,
	})
	return true
}

// unregister removes the listener for code. Returns false if it was not registered.
func (es *eventSystem) unregister(code EventCode, listener interface{}) bool {
	if !comparableListener(listener) {
		return false
	}
	es.mu.Lock()
	defer es.mu.Unlock()

	events := es.registered[code]
	for i, e := range events {
		if e.listener == listener {
			es.registered[code] = append(events[:i:i], events[i+1:]...)
			return true
		}
	}
	return false
}

// fire sends the event to the listeners of its code in registration order
// and reports whether one of them handled it.
func (es *eventSystem) fire(event Event) bool {
	es.mu.RLock()
	events := append([]*registeredEvent(nil), es.registered[event.Code]...)
	es.mu.RUnlock()

	for _, e := range events {
		if e.callback(event, e.listener) {
			return true
		}
	}
	return false
}
