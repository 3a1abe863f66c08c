package emitter

// Only installs fn as the exclusive listener for the event named eventName.
// While an exclusive listener is installed, Emit invokes it alone and every
// listener registered through On or Once for that event is ignored; the
// registered listeners stay in place and resume firing once the exclusive
// listener is cleared. A later Only call replaces the exclusive listener,
// unless it was installed with OnlyFirst.
func (e *Emitter) Only(evt EventName, fn Listener) bool {
	if fn == nil {
		return false
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if current, ok := e.exclusive[evt]; ok && current.first {
		return false
	}

	if e.exclusive == nil {
		e.exclusive = map[EventName]*onlyListener{}
	}

	emitter_log.Debug(`exclusive listener installed for event "%s"`, evt)
	e.exclusive[evt] = &onlyListener{fn: fn}
	return true
}

// OnlyFirst installs fn as the exclusive listener for the event named
// eventName, replacing a previous listener installed with Only, and locks it
// in: subsequent Only and OnlyFirst calls for that event are no-ops until the
// listener is cleared with ClearOnly.
func (e *Emitter) OnlyFirst(evt EventName, fn Listener) bool {
	if fn == nil {
		return false
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if current, ok := e.exclusive[evt]; ok && current.first {
		return false
	}

	if e.exclusive == nil {
		e.exclusive = map[EventName]*onlyListener{}
	}

	emitter_log.Debug(`exclusive first listener installed for event "%s"`, evt)
	e.exclusive[evt] = &onlyListener{fn: fn, first: true}
	return true
}

// ClearOnly removes the exclusive listeners of the named events, or of every
// event when called with no arguments, restoring normal dispatch.
func (e *Emitter) ClearOnly(evts ...EventName) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if len(evts) == 0 {
		e.exclusive = nil
		return
	}

	for _, evt := range evts {
		delete(e.exclusive, evt)
	}
}
