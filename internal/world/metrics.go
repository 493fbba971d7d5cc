package world

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// QueueMetrics экспортирует показатели PacketQueue в Prometheus.
// Счётчики очереди — монотонные uint64; экспортер раз в секунду
// снимает срез и прибавляет дельту, как экспортер шины событий.
type QueueMetrics struct {
	queue *PacketQueue
	quit  chan struct{}
	done  chan struct{}

	enqueued    prometheus.Counter
	drained     prometheus.Counter
	invalidated prometheus.Counter
	pending     prometheus.Gauge
	compiled    prometheus.Gauge
}

// NewQueueMetrics регистрирует метрики очереди для измерения dimID
func NewQueueMetrics(dimID int32, queue *PacketQueue) *QueueMetrics {
	labels := prometheus.Labels{"dimension": strconv.Itoa(int(dimID))}

	qm := &QueueMetrics{
		queue: queue,
		quit:  make(chan struct{}),
		done:  make(chan struct{}),
		enqueued: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   "dimension",
			Name:        "packets_enqueued_total",
			Help:        "Пакетов, поставленных в чанковую очередь рассылки.",
			ConstLabels: labels,
		}),
		drained: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   "dimension",
			Name:        "packets_drained_total",
			Help:        "Пакетов, отданных транспорту при сбросе очереди.",
			ConstLabels: labels,
		}),
		invalidated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   "dimension",
			Name:        "chunk_cache_invalidations_total",
			Help:        "Сбросов кэша скомпилированных чанк-пакетов.",
			ConstLabels: labels,
		}),
		pending: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   "dimension",
			Name:        "packet_batches_pending",
			Help:        "Батчей, ожидающих сброса транспортом.",
			ConstLabels: labels,
		}),
		compiled: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   "dimension",
			Name:        "chunk_packets_cached",
			Help:        "Чанков с валидным скомпилированным пакетом.",
			ConstLabels: labels,
		}),
	}

	prometheus.MustRegister(qm.enqueued, qm.drained, qm.invalidated, qm.pending, qm.compiled)
	go qm.loop()
	return qm
}

// Stop останавливает обновление метрик
func (qm *QueueMetrics) Stop() {
	close(qm.quit)
	<-qm.done
}

func (qm *QueueMetrics) loop() {
	ticker := time.NewTicker(1 * time.Second)
	defer ticker.Stop()
	defer close(qm.done)

	var prev QueueStats

	for {
		select {
		case <-ticker.C:
			stats := qm.queue.Stats()

			if d := stats.Enqueued - prev.Enqueued; d > 0 {
				qm.enqueued.Add(float64(d))
			}
			if d := stats.Drained - prev.Drained; d > 0 {
				qm.drained.Add(float64(d))
			}
			if d := stats.Invalidated - prev.Invalidated; d > 0 {
				qm.invalidated.Add(float64(d))
			}
			qm.pending.Set(float64(stats.Pending))
			qm.compiled.Set(float64(stats.Compiled))

			prev = stats
		case <-qm.quit:
			return
		}
	}
}
