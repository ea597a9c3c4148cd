package timeline

// Listener receives pointer events from anywhere in the host, not just over the element
// that started the interaction.
type Listener struct {
	Move func(Point)
	Up   func(Point)
}

// Document is the host-wide pointer event scope. The host dispatches every move and up
// event to it; interactions subscribe for as long as they need them.
// It is not safe for concurrent use; all calls come from the UI loop.
type Document struct {
	next      int
	listeners []subscription
}

type subscription struct {
	id int
	l  Listener
}

// Subscribe registers l and returns the function that removes it. Calling the returned
// function more than once removes it only once.
func (d *Document) Subscribe(l Listener) (unsubscribe func()) {
	d.next++
	id := d.next
	d.listeners = append(d.listeners, subscription{id: id, l: l})

	done := false
	return func() {
		if done {
			return
		}
		done = true
		for i, s := range d.listeners {
			if s.id == id {
				d.listeners = append(d.listeners[:i], d.listeners[i+1:]...)
				return
			}
		}
	}
}

// Listeners returns how many listeners are registered.
func (d *Document) Listeners() int {
	return len(d.listeners)
}

// DispatchMove delivers a pointer move.
func (d *Document) DispatchMove(p Point) {
	for _, s := range d.snapshot() {
		if s.l.Move != nil {
			s.l.Move(p)
		}
	}
}

// DispatchUp delivers a pointer release.
func (d *Document) DispatchUp(p Point) {
	for _, s := range d.snapshot() {
		if s.l.Up != nil {
			s.l.Up(p)
		}
	}
}

// snapshot lets listeners unsubscribe while being dispatched to.
func (d *Document) snapshot() []subscription {
	return append([]subscription(nil), d.listeners...)
}
