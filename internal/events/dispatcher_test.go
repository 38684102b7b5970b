package events

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPublish_InvokesSubscribersAsync(t *testing.T) {
	t.Parallel()

	d := NewInMemoryDispatcher(nil)

	var mu sync.Mutex
	var got []string
	d.Subscribe(EventAccountRegistered, func(_ context.Context, e Event) error {
		mu.Lock()
		defer mu.Unlock()
		got = append(got, e.UserID)
		return nil
	})

	d.Publish(context.Background(), Event{Type: EventAccountRegistered, UserID: "u-1"})
	d.Publish(context.Background(), Event{Type: EventAccountRegistered, UserID: "u-2"})
	d.Wait()

	assert.ElementsMatch(t, []string{"u-1", "u-2"}, got)
}

func TestPublish_NoSubscribersIsNoop(t *testing.T) {
	t.Parallel()

	d := NewInMemoryDispatcher(nil)
	d.Publish(context.Background(), Event{Type: EventPasswordResetRequested})
	d.Wait()
}

func TestPublish_HandlerErrorReachesObserver(t *testing.T) {
	t.Parallel()

	var mu sync.Mutex
	var observed []error
	d := NewInMemoryDispatcher(func(_ Event, err error) {
		mu.Lock()
		defer mu.Unlock()
		observed = append(observed, err)
	})

	d.Subscribe(EventAccountRegistered, func(context.Context, Event) error {
		return errors.New("smtp down")
	})

	d.Publish(context.Background(), Event{Type: EventAccountRegistered})
	d.Wait()

	assert.Len(t, observed, 1)
}
