package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	FramesDecodedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "clipset_frames_decoded_total",
		Help: "Total number of frame images decoded",
	})

	FramesVanishedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "clipset_frames_vanished_total",
		Help: "Frames listed in a directory that were gone by decode time",
	})

	SelectionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "clipset_selections_total",
		Help: "Frame selections performed, by strategy outcome",
	}, []string{"outcome"})

	ClipsLoadedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "clipset_clips_loaded_total",
		Help: "Clips returned by the dataset, by status",
	}, []string{"status"})

	ClipLoadDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "clipset_clip_load_duration_seconds",
		Help:    "Time to decode, select and stack one clip",
		Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
	})

	SamplesIndexedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "clipset_samples_indexed_total",
		Help: "Annotation records seen while building the index, by result",
	}, []string{"result"})

	ShardsWrittenTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "clipset_shards_written_total",
		Help: "Total number of shard archives written",
	})
)
