package client

import (
	"container/list"
	"context"
	"errors"
	"reflect"
	"sync"

	events "github.com/docker/go-events"

	"github.com/distribution/go-stomp/frame"
	"github.com/distribution/go-stomp/internal/dcontext"
)

var errSinkClosed = errors.New("stomp: callback sink closed")

// Callback receives a completed Frame delivered to a subscribed
// destination. It returns nothing observable — same contract as a
// registered listener anywhere else in this package's lineage.
type Callback func(*frame.Frame)

// callbackEvent is the events.Event carried through a destination's
// eventQueue: the one thing a callbackSink ever writes.
type callbackEvent struct {
	frame *frame.Frame
}

// callbackSink is an events.Sink that, on Write, runs every callback
// registered for one destination in registration order, all against the
// same Frame value.
type callbackSink struct {
	mu        sync.Mutex
	callbacks []callbackEntry
}

type callbackEntry struct {
	identity uintptr
	fn       Callback
}

func newCallbackSink() *callbackSink {
	return &callbackSink{}
}

func (s *callbackSink) register(fn Callback) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.callbacks = append(s.callbacks, callbackEntry{identity: funcIdentity(fn), fn: fn})
}

func (s *callbackSink) remove(fn Callback) {
	id := funcIdentity(fn)
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, cb := range s.callbacks {
		if cb.identity == id {
			s.callbacks = append(s.callbacks[:i], s.callbacks[i+1:]...)
			return
		}
	}
}

func (s *callbackSink) Write(event events.Event) error {
	ce := event.(callbackEvent)

	s.mu.Lock()
	snapshot := make([]callbackEntry, len(s.callbacks))
	copy(snapshot, s.callbacks)
	s.mu.Unlock()

	for _, cb := range snapshot {
		cb.fn(ce.frame)
	}
	return nil
}

func (s *callbackSink) Close() error { return nil }

// funcIdentity returns a stable identity for fn, used so RemoveCallback
// can find the matching registration without requiring comparable
// closures.
func funcIdentity(fn Callback) uintptr {
	return reflect.ValueOf(fn).Pointer()
}

// eventQueue accepts frames into an unbounded queue for asynchronous,
// strictly ordered delivery to a sink — one per destination, so a slow
// callback on one destination never blocks delivery to another. Adapted
// from this lineage's notification fan-out queue.
type eventQueue struct {
	sink   events.Sink
	events *list.List
	cond   *sync.Cond
	mu     sync.Mutex
	closed bool
}

func newEventQueue(sink events.Sink) *eventQueue {
	eq := &eventQueue{
		sink:   sink,
		events: list.New(),
	}
	eq.cond = sync.NewCond(&eq.mu)
	go eq.run()
	return eq
}

func (eq *eventQueue) Write(event events.Event) error {
	eq.mu.Lock()
	defer eq.mu.Unlock()

	if eq.closed {
		return errSinkClosed
	}

	eq.events.PushBack(event)
	eq.cond.Signal()
	return nil
}

func (eq *eventQueue) Close() error {
	eq.mu.Lock()
	defer eq.mu.Unlock()

	if eq.closed {
		return nil
	}

	eq.closed = true
	eq.cond.Signal()
	eq.cond.Wait()

	return eq.sink.Close()
}

func (eq *eventQueue) run() {
	for {
		event := eq.next()
		if event == nil {
			return
		}

		if err := eq.sink.Write(event); err != nil {
			dcontext.GetLogger(context.Background()).Warnf("stomp: dropping callback delivery: %v", err)
		}
	}
}

func (eq *eventQueue) next() events.Event {
	eq.mu.Lock()
	defer eq.mu.Unlock()

	for eq.events.Len() < 1 {
		if eq.closed {
			eq.cond.Broadcast()
			return nil
		}
		eq.cond.Wait()
	}

	front := eq.events.Front()
	block := front.Value.(events.Event)
	eq.events.Remove(front)
	return block
}
