package moc2d

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	tracksSegmentized = promauto.NewCounter(prometheus.CounterOpts{
		Name: "moc_tracks_segmentized_total",
		Help: "The number of tracks segmentized.",
	})

	segmentsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "moc_segments_created_total",
		Help: "The number of track segments created.",
	})

	segmentLength = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "moc_segment_length_cm",
		Help:    "The distribution of segment chord lengths.",
		Buckets: prometheus.ExponentialBuckets(1e-4, 4, 12),
	})

	fsrCount = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "moc_flat_source_regions",
		Help: "The number of flat source regions in the geometry.",
	})
)
