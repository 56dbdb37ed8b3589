package pubsub_test

import (
	"context"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/tablero/pkg/utils/pubsub"
)

func TestHub(t *testing.T) {
	hub := pubsub.New[string]()
	ctx, cancel := context.WithCancel(context.Background())

	a := hub.Subscribe(ctx)
	b := hub.Subscribe(context.Background())
	gt.Value(t, hub.Len()).Equal(2)

	hub.Publish("moved")
	gt.Value(t, <-a).Equal("moved")
	gt.Value(t, <-b).Equal("moved")

	cancel()
	select {
	case _, ok := <-a:
		gt.B(t, ok).False()
	case <-time.After(time.Second):
		t.Fatal("subscription was not closed")
	}
	gt.Value(t, hub.Len()).Equal(1)
}
