package di

import (
	"context"
	"fmt"
	"time"

	"OilPulse/internal/domain/repository"
	domsvc "OilPulse/internal/domain/service"
	"OilPulse/internal/handler/api"
	mid "OilPulse/internal/middleware"
	internalrepo "OilPulse/internal/repository"
	"OilPulse/internal/service/marketfeed"
	"OilPulse/internal/services/analytics"
	"OilPulse/internal/usecase"
	"OilPulse/pkg/cache"
	pkgch "OilPulse/pkg/clickhouse"
	"OilPulse/pkg/config"
	pkgkafka "OilPulse/pkg/kafka"
	"OilPulse/pkg/logger"
	"OilPulse/pkg/metrics"
	"OilPulse/pkg/server"
)

// ProvideLogger creates the application logger.
func ProvideLogger(cfg *config.Config) (*logger.Logger, error) {
	return logger.New(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics() repository.Metrics {
	return metrics.New()
}

// ProvideCache builds the analysis result cache: memory-only by default,
// layered over Redis when enabled.
func ProvideCache(cfg *config.Config) (cache.Service, error) {
	if !cfg.Cache.Redis.Enabled {
		return cache.NewMemoryCache(cache.WithMemoryMaxSize(cfg.Cache.MemoryMaxSize)), nil
	}
	rc, err := cache.NewRedisCache(
		cache.WithRedisHost(cfg.Cache.Redis.Host),
		cache.WithRedisPort(cfg.Cache.Redis.Port),
		cache.WithRedisPassword(cfg.Cache.Redis.Password),
		cache.WithRedisDB(cfg.Cache.Redis.DB),
	)
	if err != nil {
		return nil, fmt.Errorf("redis cache: %w", err)
	}
	return cache.NewLayeredCache(rc, cache.WithMemoryMaxSize(cfg.Cache.MemoryMaxSize)), nil
}

// needsClickHouse reports whether any configured component touches
// ClickHouse.
func needsClickHouse(cfg *config.Config) bool {
	if cfg.Data.Backend == "clickhouse" {
		return true
	}
	return cfg.Feed.Enabled
}

// ProvideClickHouseClient creates a ClickHouse client when some backend
// requires it; otherwise nil.
func ProvideClickHouseClient(cfg *config.Config) (*pkgch.Client, error) {
	if !needsClickHouse(cfg) {
		return nil, nil
	}
	client, err := pkgch.NewClient(
		pkgch.WithHost(cfg.ClickHouse.Host),
		pkgch.WithPort(cfg.ClickHouse.Port),
		pkgch.WithDatabase(cfg.ClickHouse.Database),
		pkgch.WithCredentials(cfg.ClickHouse.User, cfg.ClickHouse.Password),
		pkgch.WithMaxConnections(10, 5),
		pkgch.WithHTTP(cfg.ClickHouse.UseHTTP),
		pkgch.WithAsyncInsert(cfg.ClickHouse.AsyncInsert, cfg.ClickHouse.WaitForAsync),
		pkgch.WithTimeouts(cfg.ClickHouse.DialTimeout, cfg.ClickHouse.ReadTimeout, cfg.ClickHouse.WriteTimeout),
		pkgch.WithMaxExecutionTime(cfg.ClickHouse.MaxExecutionTime),
	)
	if err != nil {
		return nil, fmt.Errorf("clickhouse client: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	db := cfg.ClickHouse.Database
	if err := client.InitSchema(ctx, []string{
		"CREATE DATABASE IF NOT EXISTS " + db,
		"CREATE TABLE IF NOT EXISTS " + db + ".oil_ticks_raw (ts DateTime64(3), symbol String, price Float64, volume Float64, source String) ENGINE=MergeTree ORDER BY (symbol, ts)",
	}); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("clickhouse schema: %w", err)
	}
	return client, nil
}

// ProvidePriceStore selects the daily series source per config.
func ProvidePriceStore(cfg *config.Config, ch *pkgch.Client, l *logger.Logger) (repository.PriceStore, error) {
	switch cfg.Data.Backend {
	case "clickhouse":
		return internalrepo.NewClickHousePriceStore(ch, cfg.ClickHouse.Database+".oil_ticks_raw", l), nil
	case "csv":
		return internalrepo.NewCSVPriceStore(cfg.Data.PricesCSV, l), nil
	default:
		return nil, fmt.Errorf("unknown data backend: %s", cfg.Data.Backend)
	}
}

// ProvideEventStore loads the event catalog from CSV.
func ProvideEventStore(cfg *config.Config, l *logger.Logger) repository.EventStore {
	return internalrepo.NewCSVEventStore(cfg.Data.EventsCSV, l)
}

// ProvideDetector creates the change point detector.
func ProvideDetector(l *logger.Logger) domsvc.ChangePointDetector {
	return analytics.NewDetector(l)
}

// ProvideCorrelator creates the event correlator.
func ProvideCorrelator(l *logger.Logger) domsvc.EventCorrelator {
	return analytics.NewCorrelator(l)
}

// ProvideAnalyzer assembles the analysis orchestrator.
func ProvideAnalyzer(
	det domsvc.ChangePointDetector,
	corr domsvc.EventCorrelator,
	prices repository.PriceStore,
	events repository.EventStore,
	cacheSvc cache.Service,
	m repository.Metrics,
	cfg *config.Config,
	l *logger.Logger,
) *usecase.Analyzer {
	return usecase.NewAnalyzer(det, corr, prices, events, cacheSvc, m, cfg, l)
}

// ProvideAnalysisHandler creates the HTTP handler.
func ProvideAnalysisHandler(l *logger.Logger, an *usecase.Analyzer) *api.AnalysisEchoHandler {
	return api.NewAnalysisEchoHandler(l, an)
}

// ProvideKafkaProducer creates a Kafka producer for the ingestion path,
// nil when the feed is disabled or routed straight to ClickHouse.
func ProvideKafkaProducer(cfg *config.Config) (*pkgkafka.Producer, error) {
	if !cfg.Feed.Enabled || cfg.Ingest.Backend != "kafka" {
		return nil, nil
	}
	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithCompression(cfg.Kafka.Compression),
		pkgkafka.WithRequiredAcks(cfg.Kafka.RequiredAcks),
		pkgkafka.WithBatchSize(cfg.Kafka.Producer.BatchSize),
		pkgkafka.WithBatchBytes(cfg.Kafka.Producer.BatchBytes),
		pkgkafka.WithBatchTimeout(cfg.Kafka.Producer.Linger),
		pkgkafka.WithTimeouts(cfg.Kafka.Producer.WriteTimeout, cfg.Kafka.Producer.ReadTimeout),
		pkgkafka.WithMaxAttempts(cfg.Kafka.Producer.MaxAttempts),
		pkgkafka.WithAsync(cfg.Kafka.Producer.Async),
		pkgkafka.WithHashByKey(true),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}
	return producer, nil
}

// ProvideTickStorage creates ClickHouse tick storage, nil without a client.
func ProvideTickStorage(ch *pkgch.Client, cfg *config.Config) repository.Storage {
	if ch == nil {
		return nil
	}
	return internalrepo.NewClickHouseTickStorage(ch.DB(), cfg.ClickHouse.Database+".oil_ticks_raw")
}

// ProvideTickPublisher creates the Kafka publisher, nil without a producer.
func ProvideTickPublisher(producer *pkgkafka.Producer, cfg *config.Config) repository.Publisher {
	if producer == nil {
		return nil
	}
	return internalrepo.NewKafkaTickPublisher(producer, cfg.Kafka.Topic)
}

// ProvideFeedStream creates the live quote stream, nil when disabled.
func ProvideFeedStream(cfg *config.Config) repository.PriceStream {
	if !cfg.Feed.Enabled {
		return nil
	}
	return marketfeed.New(
		cfg.Feed.APIKey,
		cfg.Feed.WebSocketURL,
		cfg.Feed.Symbols,
		cfg.Feed.ReconnectDelay,
		cfg.Feed.PingInterval,
	)
}

// ProvideTickCollector wires the feed into the ingest pipeline, nil when
// the feed is disabled.
func ProvideTickCollector(
	stream repository.PriceStream,
	pub repository.Publisher,
	store repository.Storage,
	m repository.Metrics,
	cfg *config.Config,
) *usecase.TickCollector {
	if stream == nil {
		return nil
	}
	proc := usecase.NewTickProcessor(pub, store, m, cfg.Ingest.Backend)
	pipe := mid.NewIngestPipeline(proc, m,
		mid.WithMaxRPS(50),
		mid.WithBufferSize(2000),
	)
	return usecase.NewTickCollector(stream, proc, m, pipe)
}

// ProvideKafkaConsumer creates the ingestion consumer, nil unless ticks
// flow through Kafka.
func ProvideKafkaConsumer(cfg *config.Config) (*pkgkafka.Consumer, error) {
	if !cfg.Feed.Enabled || cfg.Ingest.Backend != "kafka" {
		return nil, nil
	}
	consumer, err := pkgkafka.NewConsumer(
		pkgkafka.WithConsumerBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithConsumerGroupID(cfg.Kafka.Consumer.GroupID),
		pkgkafka.WithConsumerWorkers(cfg.Kafka.Consumer.Workers),
		pkgkafka.WithConsumerBufferSize(cfg.Kafka.Consumer.BufferSize),
		pkgkafka.WithConsumerRetry(cfg.Kafka.Consumer.RetryMax, cfg.Kafka.Consumer.BackoffMin, cfg.Kafka.Consumer.BackoffMax),
		pkgkafka.WithConsumerDLQ(cfg.Kafka.Consumer.DLQTopic),
		pkgkafka.WithConsumerFetch(cfg.Kafka.Consumer.MinBytes, cfg.Kafka.Consumer.MaxBytes),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka consumer: %w", err)
	}
	return consumer, nil
}

// ProvideKafkaTicksHandler registers the tick storage handler, nil when
// either side of the kafka leg is missing.
func ProvideKafkaTicksHandler(store repository.Storage, m repository.Metrics, cfg *config.Config) *usecase.KafkaTicksHandler {
	if store == nil {
		return nil
	}
	return usecase.NewKafkaTicksHandler(cfg.Kafka.Topic, store, m)
}

// ProvideApp creates the application server.
func ProvideApp(
	cfg *config.Config,
	l *logger.Logger,
	an *usecase.Analyzer,
	handler *api.AnalysisEchoHandler,
	collector *usecase.TickCollector,
	consumer *pkgkafka.Consumer,
	kh *usecase.KafkaTicksHandler,
	chClient *pkgch.Client,
) *server.App {
	if consumer != nil {
		consumer.WithConsumerHook(pkgkafka.NoopHook{})
	}
	return server.New(cfg, l, an, handler, collector, consumer, kh, chClient)
}
