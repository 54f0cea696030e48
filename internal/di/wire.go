//go:build wireinject
// +build wireinject

package di

import (
	"OilPulse/pkg/config"
	"OilPulse/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire generates the implementation in wire_gen.go.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		// Ambient
		ProvideLogger,
		ProvideMetrics,
		ProvideCache,

		// Infrastructure clients
		ProvideClickHouseClient,
		ProvideKafkaProducer,
		ProvideKafkaConsumer,

		// Repositories
		ProvidePriceStore,
		ProvideEventStore,
		ProvideTickStorage,
		ProvideTickPublisher,
		ProvideFeedStream,

		// Domain services
		ProvideDetector,
		ProvideCorrelator,

		// Use cases
		ProvideAnalyzer,
		ProvideTickCollector,
		ProvideKafkaTicksHandler,

		// HTTP
		ProvideAnalysisHandler,

		// Application server
		ProvideApp,
	)
	return &server.App{}, nil
}
