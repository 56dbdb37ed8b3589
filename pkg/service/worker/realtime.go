package worker

import (
	"context"
	"sync"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/tablero/pkg/domain/model"
	"github.com/secmon-lab/tablero/pkg/utils/logging"
)

// ChangeSource yields remote change events. Kanban and calendar use cases
// reload their cache before an event is delivered.
type ChangeSource interface {
	Watch(ctx context.Context) (<-chan model.ChangeEvent, error)
}

// ChangeSink receives change events, typically to push them to browsers
type ChangeSink interface {
	Publish(ev model.ChangeEvent)
}

// RealtimeWorker subscribes to every source and forwards their events to the
// sink until stopped
type RealtimeWorker struct {
	sources []ChangeSource
	sink    ChangeSink

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewRealtimeWorker creates the worker
func NewRealtimeWorker(sink ChangeSink, sources ...ChangeSource) *RealtimeWorker {
	return &RealtimeWorker{
		sources: sources,
		sink:    sink,
	}
}

// Start subscribes to all sources. It fails if any subscription cannot be
// opened, leaving no subscription behind.
func (w *RealtimeWorker) Start(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)

	channels := make([]<-chan model.ChangeEvent, 0, len(w.sources))
	for i, src := range w.sources {
		ch, err := src.Watch(ctx)
		if err != nil {
			cancel()
			return goerr.Wrap(err, "failed to subscribe to changes", goerr.V("source", i))
		}
		channels = append(channels, ch)
	}

	w.cancel = cancel
	for _, ch := range channels {
		w.wg.Add(1)
		go w.forward(ch)
	}

	logging.Default().Info("realtime worker started", "sources", len(channels))
	return nil
}

// Stop cancels the subscriptions and waits for the forwarders to exit
func (w *RealtimeWorker) Stop() {
	if w.cancel == nil {
		return
	}
	w.cancel()
	w.wg.Wait()
	logging.Default().Info("realtime worker stopped")
}

func (w *RealtimeWorker) forward(ch <-chan model.ChangeEvent) {
	defer w.wg.Done()
	for ev := range ch {
		w.sink.Publish(ev)
	}
}
