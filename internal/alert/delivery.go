package alert

import (
	"errors"
	"fmt"
	"time"

	"github.com/mohamedkhairy/stock-cruncher/internal/config"
	"github.com/mohamedkhairy/stock-cruncher/internal/pubsub"
	"github.com/mohamedkhairy/stock-cruncher/internal/storage"
	"github.com/mohamedkhairy/stock-cruncher/pkg/logger"
)

const streamPublishTimeout = 5 * time.Second

// Delivery is a dispatcher wired to the sinks named in the configuration,
// together with the connections it owns
type Delivery struct {
	Dispatcher *Dispatcher
	Store      storage.AlertStorage // Set when the postgres sink is enabled

	closers []func() error
}

// NewDelivery connects every sink in sinks. Unknown names are rejected.
// On error, connections opened so far are closed.
func NewDelivery(cfg *config.Config, sinks []string, opts ...DispatcherOption) (*Delivery, error) {
	d := &Delivery{Dispatcher: NewDispatcher(opts...)}

	for _, name := range sinks {
		if err := d.addSink(cfg, name); err != nil {
			d.Close()
			return nil, err
		}
	}

	logger.Info("Alert delivery configured", logger.Strings("sinks", d.Dispatcher.SinkNames()))
	return d, nil
}

func (d *Delivery) addSink(cfg *config.Config, name string) error {
	switch name {
	case config.SinkLog:
		d.Dispatcher.AddSink(name, NewLogSink())

	case config.SinkFile:
		d.Dispatcher.AddSink(name, NewFileSink(cfg.Alert.FilePath))

	case config.SinkStream:
		client, err := pubsub.NewRedisClient(cfg.Redis)
		if err != nil {
			return fmt.Errorf("stream sink: %w", err)
		}
		d.closers = append(d.closers, client.Close)
		publisher := pubsub.NewAlertPublisher(client, pubsub.DefaultAlertPublisherConfig(cfg.Alert.StreamName))
		d.Dispatcher.AddSink(name, NewStreamSink(publisher, streamPublishTimeout))

	case config.SinkPostgres:
		store, err := storage.NewPostgresAlertStorage(cfg.Database)
		if err != nil {
			return fmt.Errorf("postgres sink: %w", err)
		}
		d.closers = append(d.closers, store.Close)
		d.Store = store
		d.Dispatcher.AddSink(name, NewStoreSink(store))

	default:
		return fmt.Errorf("unknown alert sink %q", name)
	}
	return nil
}

// Close closes every connection opened by NewDelivery
func (d *Delivery) Close() error {
	var errs []error
	for i := len(d.closers) - 1; i >= 0; i-- {
		if err := d.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	d.closers = nil
	return errors.Join(errs...)
}
