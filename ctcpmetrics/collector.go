// Package ctcpmetrics exposes registry-wide and per-connection engine
// counters as Prometheus metrics.
//
// Grounded on runZeroInc-sockstats/pkg/exporter.TCPInfoCollector: a
// Describe/Collect pair backed by a registry of tracked objects, swapping
// "map of net.Conn -> kernel TCPInfo" for "registry.Registry of
// ConnectionState -> engine conn.Stats".
package ctcpmetrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/wrights1/ctcp/conn"
	"github.com/wrights1/ctcp/registry"
)

// Collector implements prometheus.Collector over a registry.Registry.
type Collector struct {
	reg *registry.Registry

	openConns          *prometheus.Desc
	segmentsSent       *prometheus.Desc
	segmentsRecv       *prometheus.Desc
	retransmitsSent    *prometheus.Desc
	droppedCorrupt     *prometheus.Desc
	droppedDuplicate   *prometheus.Desc
	droppedOutOfWindow *prometheus.Desc
	droppedStaleAck    *prometheus.Desc
	bytesInFlight      *prometheus.Desc
	teardownsCompleted *prometheus.Desc
}

// New returns a Collector scraping reg. Register it with a
// prometheus.Registerer (e.g. prometheus.DefaultRegisterer) to serve it.
func New(reg *registry.Registry) *Collector {
	constLabels := prometheus.Labels{}
	return &Collector{
		reg: reg,
		openConns: prometheus.NewDesc(
			"ctcp_open_connections", "Number of live cTCP connections.", nil, constLabels),
		segmentsSent: prometheus.NewDesc(
			"ctcp_segments_sent_total", "Segments handed to the substrate.", []string{"conn_id"}, constLabels),
		segmentsRecv: prometheus.NewDesc(
			"ctcp_segments_received_total", "Segments accepted from the substrate.", []string{"conn_id"}, constLabels),
		retransmitsSent: prometheus.NewDesc(
			"ctcp_retransmits_total", "Segments retransmitted by the timer driver.", []string{"conn_id"}, constLabels),
		droppedCorrupt: prometheus.NewDesc(
			"ctcp_dropped_corrupt_total", "Segments dropped for failing checksum/length validation.", []string{"conn_id"}, constLabels),
		droppedDuplicate: prometheus.NewDesc(
			"ctcp_dropped_duplicate_total", "Segments dropped as duplicates.", []string{"conn_id"}, constLabels),
		droppedOutOfWindow: prometheus.NewDesc(
			"ctcp_dropped_out_of_window_total", "Segments dropped for exceeding the receive window.", []string{"conn_id"}, constLabels),
		droppedStaleAck: prometheus.NewDesc(
			"ctcp_dropped_stale_ack_total", "Inbound ACKs ignored as stale.", []string{"conn_id"}, constLabels),
		bytesInFlight: prometheus.NewDesc(
			"ctcp_bytes_in_flight", "Sent, not-yet-acknowledged payload bytes.", []string{"conn_id"}, constLabels),
		teardownsCompleted: prometheus.NewDesc(
			"ctcp_teardowns_completed_total", "Four-way closes that ran to completion.", []string{"conn_id"}, constLabels),
	}
}

// Describe implements prometheus.Collector.
func (c *Collector) Describe(descs chan<- *prometheus.Desc) {
	descs <- c.openConns
	descs <- c.segmentsSent
	descs <- c.segmentsRecv
	descs <- c.retransmitsSent
	descs <- c.droppedCorrupt
	descs <- c.droppedDuplicate
	descs <- c.droppedOutOfWindow
	descs <- c.droppedStaleAck
	descs <- c.bytesInFlight
	descs <- c.teardownsCompleted
}

// Collect implements prometheus.Collector.
func (c *Collector) Collect(metrics chan<- prometheus.Metric) {
	metrics <- prometheus.MustNewConstMetric(c.openConns, prometheus.GaugeValue, float64(c.reg.Len()))

	c.reg.Each(func(cs *conn.ConnectionState) {
		id := cs.ID.String()
		metrics <- prometheus.MustNewConstMetric(c.segmentsSent, prometheus.CounterValue, float64(cs.Stats.SegmentsSent.Load()), id)
		metrics <- prometheus.MustNewConstMetric(c.segmentsRecv, prometheus.CounterValue, float64(cs.Stats.SegmentsRecv.Load()), id)
		metrics <- prometheus.MustNewConstMetric(c.retransmitsSent, prometheus.CounterValue, float64(cs.Stats.RetransmitsSent.Load()), id)
		metrics <- prometheus.MustNewConstMetric(c.droppedCorrupt, prometheus.CounterValue, float64(cs.Stats.DroppedCorrupt.Load()), id)
		metrics <- prometheus.MustNewConstMetric(c.droppedDuplicate, prometheus.CounterValue, float64(cs.Stats.DroppedDuplicate.Load()), id)
		metrics <- prometheus.MustNewConstMetric(c.droppedOutOfWindow, prometheus.CounterValue, float64(cs.Stats.DroppedOutOfWindow.Load()), id)
		metrics <- prometheus.MustNewConstMetric(c.droppedStaleAck, prometheus.CounterValue, float64(cs.Stats.DroppedStaleAck.Load()), id)
		metrics <- prometheus.MustNewConstMetric(c.bytesInFlight, prometheus.GaugeValue, float64(cs.Stats.BytesInFlight.Load()), id)
		metrics <- prometheus.MustNewConstMetric(c.teardownsCompleted, prometheus.CounterValue, float64(cs.Stats.TeardownsCompleted.Load()), id)
	})
}
