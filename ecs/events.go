package ecs

import "reflect"

// cursor is a reader's last-read position: which buffer, and how far into
// it the reader has consumed.
type cursor struct {
	buf int
	idx int
}

// Channel is a type-tagged, double-buffered event queue with per-reader
// cursors (spec.md §3 "Event Channel", §4.3). Buffers rotate at frame end:
// the older buffer is cleared and becomes the new write target, and any
// reader cursor pointing into the cleared buffer is moved to the start of
// the buffer that was being written until the rotation (now the retained
// one) — giving every event exactly one extra frame of visibility past the
// frame it was sent in.
type Channel[T any] struct {
	buffers [2][]T
	write   int
	readers map[any]cursor
}

// NewChannel creates an empty event channel for T.
func NewChannel[T any]() *Channel[T] {
	return &Channel[T]{readers: make(map[any]cursor)}
}

// Send appends event to the channel's current write buffer.
func (c *Channel[T]) Send(event T) {
	c.buffers[c.write] = append(c.buffers[c.write], event)
}

// Owner identifies a reader. Per spec.md §9's open question, keying by
// "function pointer" is ambiguous for closures created per frame, so the
// engine requires callers to supply an explicit, stable, comparable owner
// value (spec.md §6 "reader identity").
type Owner = any

// reader returns the cursor owned by owner, creating one positioned at the
// start of the retained (non-write) buffer if it doesn't exist yet — a
// fresh reader sees whatever is still within the one-frame retention
// window, same as an existing reader that hasn't read in a frame.
func (c *Channel[T]) reader(owner Owner) cursor {
	cur, ok := c.readers[owner]
	if !ok {
		cur = cursor{buf: 1 - c.write, idx: 0}
		c.readers[owner] = cur
	}
	return cur
}

// Read yields every event sent after owner's last read and before the
// current write head, spanning at most the two buffers (spec.md §4.3).
// Every send is delivered at least once to every reader that calls Read at
// least once within one frame of the send.
func (c *Channel[T]) Read(owner Owner) []T {
	cur := c.reader(owner)

	var out []T
	if cur.buf != c.write {
		out = append(out, c.buffers[cur.buf][cur.idx:]...)
		out = append(out, c.buffers[c.write]...)
	} else {
		out = append(out, c.buffers[c.write][cur.idx:]...)
	}

	c.readers[owner] = cursor{buf: c.write, idx: len(c.buffers[c.write])}
	return out
}

// DropReader forgets owner's cursor. Call when a system/predicate using
// this channel is deregistered, to avoid unbounded reader map growth.
func (c *Channel[T]) DropReader(owner Owner) {
	delete(c.readers, owner)
}

// OnFrameEnd rotates the buffers: the older buffer is cleared and becomes
// the write target; readers whose cursor pointed into it are fast-forwarded
// to the start of the (still-current) write buffer so they don't skip
// events that remain visible there.
func (c *Channel[T]) OnFrameEnd() {
	older := 1 - c.write
	c.buffers[older] = c.buffers[older][:0]
	for owner, cur := range c.readers {
		if cur.buf == older {
			c.readers[owner] = cursor{buf: c.write, idx: 0}
		}
	}
	c.write = older
}

// Events is the process-wide registry of event channels, one per type,
// owned by the App (spec.md §3 "Resource"-like lifecycle, but dedicated to
// events rather than arbitrary values).
type Events struct {
	channels map[reflect.Type]any
}

// NewEvents creates an empty event registry.
func NewEvents() *Events {
	return &Events{channels: make(map[reflect.Type]any)}
}

// ChannelFor returns (creating if necessary) the Channel[T] for event type T.
func ChannelFor[T any](e *Events) *Channel[T] {
	t := typeFor[T]()
	if ch, ok := e.channels[t]; ok {
		return ch.(*Channel[T])
	}
	ch := NewChannel[T]()
	e.channels[t] = ch
	return ch
}

// OnFrameEnd rotates every registered channel's buffers. The App calls this
// once per frame, after PostRender (spec.md §4.4 phase list).
func (e *Events) OnFrameEnd() {
	for _, ch := range e.channels {
		if rotator, ok := ch.(interface{ OnFrameEnd() }); ok {
			rotator.OnFrameEnd()
		}
	}
}
