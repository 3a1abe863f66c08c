// Package emitter provides synchronous EventEmitter support for Go Programming Language
package emitter

import (
	"fmt"
	"reflect"
	"sync"
	"sync/atomic"

	"github.com/zishang520/emitter/log"
)

var emitter_log = log.NewLog("emitter")

const (
	// Version current version number
	Version = "1.0.0"
	// DefaultMaxListeners is the number of max listeners per event
	// default EventEmitters will print a warning if more than x listeners are
	// added to it. This is a useful default which helps finding memory leaks.
	// Defaults to 0, which means unlimited
	DefaultMaxListeners = 0
)

type (
	// EventName is just a type of string, it's the event name
	EventName string
	// Listener is the type of a Listener, it's a func which receives any,optional, arguments from the caller/emitter
	Listener func(...any)
	// Events the type for registered listeners, it's just a map[string][]func(...any)
	Events map[EventName][]Listener
	// EventEmitter is the message/or/event manager
	EventEmitter interface {
		// AddListener is an alias for .On(eventName, listener).
		AddListener(EventName, ...Listener) error
		// On registers a particular listener for an event, func receiver parameter(s) is/are optional
		On(EventName, ...Listener) error
		// Once adds a one time listener function for the event named eventName.
		// The next time eventName is triggered, this listener is removed before it is invoked.
		Once(EventName, ...Listener) error
		// Only installs fn as the exclusive listener for the event named eventName,
		// replacing any previous exclusive listener. While installed, Emit invokes
		// only the exclusive listener, ignoring every registered listener for that event.
		// Returns an indicator whether the exclusive listener was installed.
		Only(EventName, Listener) bool
		// OnlyFirst is like Only, but the installed listener wins: subsequent Only and
		// OnlyFirst calls for that event are no-ops until the listener is cleared.
		OnlyFirst(EventName, Listener) bool
		// ClearOnly removes the exclusive listeners of the named events,
		// or of every event when called with no arguments, restoring normal dispatch.
		ClearOnly(...EventName)
		// Off removes the given listeners from the event named eventName,
		// or every listener of that event when called with none.
		// Exclusive listeners are left untouched.
		Off(EventName, ...Listener) bool
		// RemoveListener removes every occurrence of the given listener from the
		// event named eventName. Returns an indicator whether any listener was removed.
		RemoveListener(EventName, Listener) bool
		// RemoveAllListeners removes all listeners of the specified eventName.
		// Note that it will remove the event itself.
		// Returns an indicator if event and listeners were found before the remove.
		RemoveAllListeners(EventName) bool
		// Clear removes all events and all listeners, restores Events to an empty value.
		// Exclusive listeners installed with Only are not cleared.
		Clear()
		// Emit fires a particular event,
		// Synchronously calls each of the listeners registered for the event named
		// eventName, in the order they were registered,
		// passing the supplied arguments to each.
		Emit(EventName, ...any)
		// Listeners returns a copy of the array of listeners for the event named eventName,
		// unwrapped to the callbacks originally registered. Exclusive listeners are excluded.
		Listeners(EventName) []Listener
		// Has reports whether the event named eventName currently responds to Emit,
		// through registered or exclusive listeners.
		Has(EventName) bool
		// HasListeners is an alias for .Has(eventName).
		HasListeners(EventName) bool
		// EventNames returns an array listing the events for which the emitter has
		// registered or exclusive listeners. The values in the array will be strings.
		EventNames() []EventName
		// ListenerCount returns the length of all registered listeners to a particular event
		ListenerCount(EventName) int
		// Len returns the length of all registered events
		Len() int
		// GetMaxListeners returns the max listeners for this emitter
		// see SetMaxListeners
		GetMaxListeners() uint
		// SetMaxListeners obviously this function allows the MaxListeners
		// to be decrease or increase. Set to zero for unlimited
		SetMaxListeners(uint)
	}

	listener struct {
		fn     Listener // invoked on dispatch, a wrapper for once entries
		origin Listener // the callback as registered
		ptr    uintptr  // identity of origin, used for removal

		// removed marks the entry dead so in-flight dispatch snapshots skip it.
		removed atomic.Bool
	}

	onlyListener struct {
		fn    Listener
		first bool
	}

	// Emitter is the canonical EventEmitter implementation.
	//
	// The zero value is ready to use, so an Emitter can be embedded into any
	// struct to mix emitter behavior into it; each embedding gets its own
	// independent listener state.
	Emitter struct {
		maxListeners atomic.Uint32

		mu           sync.RWMutex
		evtListeners map[EventName][]*listener
		exclusive    map[EventName]*onlyListener
	}
)

var _ EventEmitter = (*Emitter)(nil)

// CopyTo copies the event listeners to an EventEmitter
func (e Events) CopyTo(emitter EventEmitter) {
	if len(e) > 0 {
		// register the events to/with their listeners
		for evt, listeners := range e {
			if len(listeners) > 0 {
				emitter.AddListener(evt, listeners...)
			}
		}
	}
}

// New returns a new, empty, Emitter
func New() *Emitter {
	e := &Emitter{}
	e.SetMaxListeners(DefaultMaxListeners)
	return e
}

func (e *Emitter) addListeners(evt EventName, listeners []*listener) error {
	if len(listeners) == 0 {
		return nil
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.evtListeners == nil {
		e.evtListeners = map[EventName][]*listener{}
	}

	evts := e.evtListeners[evt]

	if maxListeners := e.maxListeners.Load(); maxListeners > 0 && len(evts) >= int(maxListeners) {
		emitter_log.Warning(`possible EventEmitter memory leak detected. %d listeners added for event "%s"`, len(evts), evt)
		return fmt.Errorf("(emitter) warning: possible EventEmitter memory leak detected. %d listeners added. Use emitter.SetMaxListeners(n uint) to increase limit.", len(evts))
	}

	e.evtListeners[evt] = append(evts, listeners...)
	return nil
}

func (e *Emitter) AddListener(evt EventName, listeners ...Listener) error {
	if len(listeners) == 0 {
		return nil
	}

	entries := make([]*listener, len(listeners))
	for i, fn := range listeners {
		entries[i] = &listener{fn: fn, origin: fn, ptr: reflect.ValueOf(fn).Pointer()}
	}

	return e.addListeners(evt, entries)
}

// Alias: [AddListener]
func (e *Emitter) On(evt EventName, listeners ...Listener) error {
	return e.AddListener(evt, listeners...)
}

type onceListener struct {
	fired sync.Once

	evt     EventName
	emitter *Emitter
	entry   *listener
	fn      Listener
}

// execute removes the entry from the registry before invoking the callback,
// so emits re-entered from inside the callback can not fire it a second time.
func (l *onceListener) execute(vals ...any) {
	l.fired.Do(func() {
		l.emitter.removeEntry(l.evt, l.entry)
		l.fn(vals...)
	})
}

func (e *Emitter) Once(evt EventName, listeners ...Listener) error {
	if len(listeners) == 0 {
		return nil
	}

	entries := make([]*listener, len(listeners))
	for i, fn := range listeners {
		oneTime := &onceListener{evt: evt, emitter: e, fn: fn}
		entry := &listener{origin: fn, ptr: reflect.ValueOf(fn).Pointer()}
		oneTime.entry = entry
		entry.fn = oneTime.execute
		entries[i] = entry
	}
	return e.addListeners(evt, entries)
}

// removeEntry removes one specific entry, leaving other entries that share
// the same callback in place. Used by once wrappers to unregister themselves.
func (e *Emitter) removeEntry(evt EventName, target *listener) {
	e.mu.Lock()
	defer e.mu.Unlock()

	listeners := e.evtListeners[evt]
	for i, l := range listeners {
		if l == target {
			target.removed.Store(true)
			if len(listeners) == 1 {
				delete(e.evtListeners, evt)
			} else {
				e.evtListeners[evt] = append(listeners[:i], listeners[i+1:]...)
			}
			return
		}
	}
}

// RemoveListener removes every occurrence of the specified listener from the
// listener array for the event named eventName, matching once listeners by the
// callback originally passed to Once.
func (e *Emitter) RemoveListener(evt EventName, fn Listener) bool {
	if fn == nil {
		return false
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	listeners := e.evtListeners[evt]
	if len(listeners) == 0 {
		return false
	}

	targetPtr := reflect.ValueOf(fn).Pointer()

	kept := listeners[:0]
	removed := false
	for _, l := range listeners {
		if l.ptr == targetPtr {
			l.removed.Store(true)
			removed = true
			continue
		}
		kept = append(kept, l)
	}

	if !removed {
		return false
	}

	if len(kept) == 0 {
		delete(e.evtListeners, evt)
	} else {
		e.evtListeners[evt] = kept
	}
	return true
}

func (e *Emitter) RemoveAllListeners(evt EventName) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	listeners, ok := e.evtListeners[evt]
	if !ok {
		return false
	}

	for _, l := range listeners {
		l.removed.Store(true)
	}
	delete(e.evtListeners, evt)
	return true
}

func (e *Emitter) Off(evt EventName, listeners ...Listener) bool {
	if len(listeners) == 0 {
		return e.RemoveAllListeners(evt)
	}

	removed := false
	for _, fn := range listeners {
		if e.RemoveListener(evt, fn) {
			removed = true
		}
	}
	return removed
}

func (e *Emitter) Clear() {
	e.mu.Lock()
	defer e.mu.Unlock()

	for _, listeners := range e.evtListeners {
		for _, l := range listeners {
			l.removed.Store(true)
		}
	}
	e.evtListeners = nil
}

func (e *Emitter) Emit(evt EventName, data ...any) {
	e.mu.RLock()

	if only, ok := e.exclusive[evt]; ok {
		e.mu.RUnlock()
		emitter_log.Debug(`emitting "%s" to its exclusive listener`, evt)
		only.fn(data...)
		return
	}

	listeners := e.evtListeners[evt]
	if len(listeners) == 0 {
		e.mu.RUnlock()
		return
	}

	// snapshot, listeners may mutate the registry from inside their callback
	listenersCopy := make([]*listener, len(listeners))
	copy(listenersCopy, listeners)
	e.mu.RUnlock()

	for _, l := range listenersCopy {
		if l.removed.Load() {
			continue
		}
		l.fn(data...)
	}
}

func (e *Emitter) Listeners(evt EventName) []Listener {
	e.mu.RLock()
	defer e.mu.RUnlock()

	listeners := e.evtListeners[evt]
	if len(listeners) == 0 {
		return nil
	}

	originals := make([]Listener, len(listeners))
	for i, l := range listeners {
		originals[i] = l.origin
	}
	return originals
}

func (e *Emitter) Has(evt EventName) bool {
	e.mu.RLock()
	defer e.mu.RUnlock()

	if len(e.evtListeners[evt]) > 0 {
		return true
	}
	_, ok := e.exclusive[evt]
	return ok
}

// Alias: [Has]
func (e *Emitter) HasListeners(evt EventName) bool {
	return e.Has(evt)
}

func (e *Emitter) EventNames() []EventName {
	e.mu.RLock()
	defer e.mu.RUnlock()

	names := make([]EventName, 0, len(e.evtListeners)+len(e.exclusive))
	for evt := range e.evtListeners {
		names = append(names, evt)
	}
	for evt := range e.exclusive {
		if _, ok := e.evtListeners[evt]; !ok {
			names = append(names, evt)
		}
	}
	if len(names) == 0 {
		return nil
	}
	return names
}

func (e *Emitter) ListenerCount(evt EventName) int {
	e.mu.RLock()
	defer e.mu.RUnlock()

	return len(e.evtListeners[evt])
}

func (e *Emitter) Len() int {
	e.mu.RLock()
	defer e.mu.RUnlock()

	return len(e.evtListeners)
}

func (e *Emitter) GetMaxListeners() uint {
	return uint(e.maxListeners.Load())
}

func (e *Emitter) SetMaxListeners(n uint) {
	e.maxListeners.Store(uint32(n))
}
