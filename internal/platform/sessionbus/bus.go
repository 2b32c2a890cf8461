// Package sessionbus fans session login and logout events out to every
// listener of the session, within one portal instance or across many.
package sessionbus

import (
	"context"
	"sync"

	"github.com/LePhamHungHa/TLTN-Clinic-sub000/internal/domain/identity"
)

// Handler reacts to one session event. Handlers must not block for long; the
// bus calls them in order on the delivering goroutine.
type Handler func(ctx context.Context, ev identity.SessionEvent)

// Bus publishes session events and delivers them to subscribed handlers.
type Bus interface {
	identity.EventPublisher
	Subscribe(h Handler)
	// Run delivers events until ctx is done.
	Run(ctx context.Context) error
	Close() error
}

type handlers struct {
	mu   sync.RWMutex
	list []Handler
}

func (hs *handlers) add(h Handler) {
	hs.mu.Lock()
	hs.list = append(hs.list, h)
	hs.mu.Unlock()
}

func (hs *handlers) dispatch(ctx context.Context, ev identity.SessionEvent) {
	hs.mu.RLock()
	list := hs.list
	hs.mu.RUnlock()
	for _, h := range list {
		h(ctx, ev)
	}
}

// LocalBus delivers events in-process, synchronously with Publish.
type LocalBus struct {
	handlers
}

func NewLocalBus() *LocalBus {
	return &LocalBus{}
}

func (b *LocalBus) Subscribe(h Handler) { b.add(h) }

func (b *LocalBus) Publish(ctx context.Context, ev identity.SessionEvent) error {
	b.dispatch(ctx, ev)
	return nil
}

func (b *LocalBus) Run(ctx context.Context) error {
	<-ctx.Done()
	return nil
}

func (b *LocalBus) Close() error { return nil }
