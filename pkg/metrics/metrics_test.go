package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMetricsOptions(t *testing.T) {
	Convey("Given metrics options", t, func() {
		Convey("When creating options", func() {
			namespaceOpt := WithNamespace("test-namespace")
			subsystemOpt := WithSubsystem("test-subsystem")
			histogramBucketsOpt := WithHistogramBuckets([]float64{0.1, 0.5, 1.0})
			metricsEnabledOpt := WithMetricsEnabled(true)
			refreshIntervalOpt := WithRefreshInterval(5 * time.Second)
			customLabelsOpt := WithCustomLabels(map[string]string{"env": "test"})

			Convey("Then they should be valid functions", func() {
				So(namespaceOpt, ShouldNotBeNil)
				So(subsystemOpt, ShouldNotBeNil)
				So(histogramBucketsOpt, ShouldNotBeNil)
				So(metricsEnabledOpt, ShouldNotBeNil)
				So(refreshIntervalOpt, ShouldNotBeNil)
				So(customLabelsOpt, ShouldNotBeNil)
			})
		})
	})
}

func TestMetricsManagerCreation(t *testing.T) {
	Convey("Given metrics manager creation", t, func() {
		Convey("When creating with default options", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(WithPrometheusRegistry(registry))

			Convey("Then it should be created successfully", func() {
				So(manager, ShouldNotBeNil)
			})
		})

		Convey("When creating with custom options", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(
				WithNamespace("test-namespace"),
				WithSubsystem("test-subsystem"),
				WithHistogramBuckets([]float64{0.1, 0.5, 1.0}),
				WithMetricsEnabled(true),
				WithRefreshInterval(10*time.Second),
				WithCustomLabels(map[string]string{"env": "test", "version": "1.0"}),
				WithPrometheusRegistry(registry),
			)

			Convey("Then it should be created successfully", func() {
				So(manager, ShouldNotBeNil)
			})
		})

		Convey("When creating with nil buckets and labels", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(
				WithHistogramBuckets(nil),
				WithCustomLabels(nil),
				WithRefreshInterval(0),
				WithPrometheusRegistry(registry),
			)

			Convey("Then it should fall back to defaults", func() {
				So(manager, ShouldNotBeNil)
			})
		})
	})
}

func TestMetricsRecording(t *testing.T) {
	Convey("Given metrics recording", t, func() {
		Convey("When recording routing decision metrics", func() {
			Convey("Then it should record decisions by outcome", func() {
				So(func() {
					RecordRoutingDecision("routed", "en")
					RecordRoutingDecision("no_intent", "es")
					RecordRoutingDecision("all_busy", "es")
					RecordRoutingDecision("error", "en")
				}, ShouldNotPanic)
			})

			Convey("And it should record candidate counts", func() {
				So(func() {
					RecordCandidatesGenerated(0)
					RecordCandidatesGenerated(3)
					RecordEmptyCandidateSet()
				}, ShouldNotPanic)
			})
		})

		Convey("When recording model metrics", func() {
			Convey("Then it should record prediction latency and errors", func() {
				So(func() {
					RecordPredictLatency(1.5)
					RecordPredictLatency(12.0)
					RecordPredictError()
				}, ShouldNotPanic)
			})

			Convey("And it should record training runs", func() {
				So(func() {
					RecordTrainingRun(2*time.Second, 0.031)
					RecordTrainingFailure()
				}, ShouldNotPanic)
			})
		})

		Convey("When recording collaborator metrics", func() {
			So(func() {
				RecordGeocodeCacheHit()
				RecordGeocodeCacheMiss()
				RecordGeocodeFailure()
				RecordTextAnalyticsFallback("language")
				RecordTextAnalyticsFallback("sentiment")
				RecordTextAnalyticsFallback("intent")
			}, ShouldNotPanic)
		})

		Convey("When recording HTTP metrics", func() {
			So(func() {
				RecordHTTPRequest("/route", "POST", "200")
				RecordHTTPRequestDuration("/route", "POST", "200", 15.0)
				RecordErrorByEndpoint("/route", "POST", "not_found")
				RecordErrorByType("not_found", "medium")
			}, ShouldNotPanic)
		})

		Convey("When recording system metrics", func() {
			So(func() {
				UpdateSystemMemoryUsage(1024 * 1024 * 100)
				UpdateSystemGoroutineCount(42)
			}, ShouldNotPanic)
		})
	})
}

func TestMetricsConcurrency(t *testing.T) {
	Convey("Given metrics concurrency", t, func() {
		Convey("When recording metrics concurrently", func() {
			done := make(chan bool, 10)

			for i := 0; i < 10; i++ {
				go func() {
					for j := 0; j < 100; j++ {
						RecordRoutingDecision("routed", "en")
						RecordPredictLatency(float64(j))
						RecordHTTPRequest("/route", "POST", "200")
					}
					done <- true
				}()
			}

			for i := 0; i < 10; i++ {
				<-done
			}

			Convey("Then it should handle concurrent access without panics", func() {
				So(true, ShouldBeTrue)
			})
		})
	})
}
