package kafka

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	producerOnce sync.Once
	consumerOnce sync.Once

	producerMessages *prometheus.CounterVec
	producerBytes    *prometheus.CounterVec
	producerErrors   *prometheus.CounterVec
	producerLatency  *prometheus.HistogramVec

	consumerMessages   *prometheus.CounterVec
	consumerErrors     *prometheus.CounterVec
	consumerQueueDepth *prometheus.GaugeVec
)

func initProducerMetricsOnce() {
	producerOnce.Do(func() {
		producerMessages = promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "oilpulse_kafka_producer_messages_total",
			Help: "Messages written per topic",
		}, []string{"topic", "compression"})
		producerBytes = promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "oilpulse_kafka_producer_bytes_total",
			Help: "Payload bytes written per topic",
		}, []string{"topic"})
		producerErrors = promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "oilpulse_kafka_producer_errors_total",
			Help: "Write errors per topic",
		}, []string{"topic"})
		producerLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "oilpulse_kafka_producer_write_seconds",
			Help:    "Write latency per topic",
			Buckets: prometheus.DefBuckets,
		}, []string{"topic"})
	})
}

func observeProducerMetrics(topic, compression string, bytes, count int64, d time.Duration, err error) {
	if producerMessages == nil {
		return
	}
	if err != nil {
		producerErrors.WithLabelValues(topic).Inc()
		return
	}
	producerMessages.WithLabelValues(topic, compression).Add(float64(count))
	producerBytes.WithLabelValues(topic).Add(float64(bytes))
	producerLatency.WithLabelValues(topic).Observe(d.Seconds())
}

func initConsumerMetricsOnce() {
	consumerOnce.Do(func() {
		consumerMessages = promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "oilpulse_kafka_consumer_messages_total",
			Help: "Messages handled per topic and outcome",
		}, []string{"topic", "outcome"})
		consumerErrors = promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "oilpulse_kafka_consumer_errors_total",
			Help: "Handler errors per topic",
		}, []string{"topic"})
		consumerQueueDepth = promauto.NewGaugeVec(prometheus.GaugeOpts{
			Name: "oilpulse_kafka_consumer_queue_depth",
			Help: "In-flight messages buffered per topic",
		}, []string{"topic"})
	})
}
