// Package monitor 暴露 Prometheus 指标，挂在游戏服务的 /metrics 路径上
package monitor

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics 核心指标集合
type Metrics struct {
	OnlinePlayers    prometheus.Gauge
	ActiveRooms      prometheus.Gauge
	ActiveGames      prometheus.Gauge
	MessagesReceived prometheus.Counter
	GamesPlayed      prometheus.Counter
	MessageLatency   prometheus.Histogram
}

// NewMetrics 创建并注册指标
func NewMetrics(namespace string) *Metrics {
	m := &Metrics{
		OnlinePlayers: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "online_players",
			Help:      "Number of online players",
		}),
		ActiveRooms: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "active_rooms",
			Help:      "Number of active rooms",
		}),
		ActiveGames: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "active_games",
			Help:      "Number of games in progress",
		}),
		MessagesReceived: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "messages_received_total",
			Help:      "Total number of messages received",
		}),
		GamesPlayed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "games_played_total",
			Help:      "Total number of finished games",
		}),
		MessageLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "message_latency_seconds",
			Help:      "Message processing latency",
			Buckets:   prometheus.ExponentialBuckets(0.001, 2, 10),
		}),
	}

	prometheus.MustRegister(
		m.OnlinePlayers,
		m.ActiveRooms,
		m.ActiveGames,
		m.MessagesReceived,
		m.GamesPlayed,
		m.MessageLatency,
	)

	return m
}

// Monitor 指标入口，服务各处只依赖这组方法
type Monitor struct {
	metrics   *Metrics
	startTime time.Time
}

// NewMonitor 创建监控器
func NewMonitor(namespace string) *Monitor {
	return &Monitor{
		metrics:   NewMetrics(namespace),
		startTime: time.Now(),
	}
}

// Uptime 服务运行时长
func (m *Monitor) Uptime() time.Duration {
	return time.Since(m.startTime)
}

// IncOnlinePlayers 在线人数加一
func (m *Monitor) IncOnlinePlayers() {
	m.metrics.OnlinePlayers.Inc()
}

// DecOnlinePlayers 在线人数减一
func (m *Monitor) DecOnlinePlayers() {
	m.metrics.OnlinePlayers.Dec()
}

// SetActiveRooms 更新活跃房间数
func (m *Monitor) SetActiveRooms(count int) {
	m.metrics.ActiveRooms.Set(float64(count))
}

// SetActiveGames 更新进行中的对局数
func (m *Monitor) SetActiveGames(count int) {
	m.metrics.ActiveGames.Set(float64(count))
}

// IncMessagesReceived 收到消息计数
func (m *Monitor) IncMessagesReceived() {
	m.metrics.MessagesReceived.Inc()
}

// IncGamesPlayed 完成对局计数
func (m *Monitor) IncGamesPlayed() {
	m.metrics.GamesPlayed.Inc()
}

// ObserveMessageLatency 记录消息处理耗时
func (m *Monitor) ObserveMessageLatency(duration time.Duration) {
	m.metrics.MessageLatency.Observe(duration.Seconds())
}
