package repository

import (
	"context"
	"time"

	"OilPulse/internal/domain/models"
)

// PriceStore supplies the historical daily price series.
type PriceStore interface {
	Load(ctx context.Context, symbol string) (*models.Series, error)
}

// EventStore supplies the external event catalog.
type EventStore interface {
	Load(ctx context.Context) ([]models.Event, error)
}

// PriceStream is a live quote source (websocket feed).
type PriceStream interface {
	Connect(ctx context.Context) error
	Subscribe(ctx context.Context) error
	Read(ctx context.Context) (<-chan *models.Tick, <-chan error)
	Reconnect(ctx context.Context) error
	Close() error
	IsConnected() bool
}

// Publisher forwards ticks to a message broker.
type Publisher interface {
	Publish(ctx context.Context, t *models.Tick) error
	PublishBatch(ctx context.Context, ticks []*models.Tick) error
	Close() error
}

// Storage persists ticks for later aggregation into daily series.
type Storage interface {
	Init(ctx context.Context) error // ensure tables, health checks
	Store(ctx context.Context, t *models.Tick) error
	StoreBatch(ctx context.Context, ticks []*models.Tick) error
	Query(ctx context.Context, symbol string, from, to time.Time, limit int) ([]*models.Tick, error)
	Health(ctx context.Context) error // ping
	Close() error
}

// Metrics records operational counters and gauges.
type Metrics interface {
	RecordTickIngested(backend, symbol string)
	RecordError(kind string)
	RecordLastPrice(symbol string, price float64)
	RecordLatency(op string, seconds float64)
	RecordAnalysis(outcome string)
	RecordCacheLookup(result string)
}
