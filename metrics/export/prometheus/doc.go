// Package prometheus renders goTeller engine metrics in Prometheus text
// exposition format.
//
// [NewPrometheusExporter] wraps a [goTeller.Engine] and exposes an
// [http.Handler]. Counter names are goteller_*_total; the single histogram
// is goteller_authenticate_latency_seconds.
//
// # What this package must NOT do
//
//   - Register metrics in a global registry. Callers mount the Handler.
//   - Mutate engine state.
package prometheus
