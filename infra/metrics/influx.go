package metrics

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/write"

	"github.com/kilianp07/dualportal/core/logger"
	coremetrics "github.com/kilianp07/dualportal/core/metrics"
	"github.com/kilianp07/dualportal/core/model"
	infralogger "github.com/kilianp07/dualportal/infra/logger"
)

// InfluxSink writes orchestrator events to an InfluxDB instance using the
// official client.
type InfluxSink struct {
	client   influxdb2.Client
	writeAPI api.WriteAPIBlocking
	log      logger.Logger
}

// NewInfluxSink creates a new sink configured for the given InfluxDB endpoint.
func NewInfluxSink(url, token, org, bucket string) *InfluxSink {
	base := strings.TrimSuffix(url, "/api/v2/write")
	client := influxdb2.NewClientWithOptions(base, token,
		influxdb2.DefaultOptions().SetHTTPClient(&http.Client{Timeout: 5 * time.Second}))
	return &InfluxSink{
		client:   client,
		writeAPI: client.WriteAPIBlocking(org, bucket),
		log:      infralogger.New("influx-sink"),
	}
}

// NewInfluxSinkWithFallback tries to ping the InfluxDB instance and
// returns a NopSink if the health check fails.
func NewInfluxSinkWithFallback(url, token, org, bucket string) coremetrics.Sink {
	sink := NewInfluxSink(url, token, org, bucket)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	health, err := sink.client.Health(ctx)
	if err != nil || health.Status != "pass" {
		if err != nil {
			sink.log.Errorf("influx health check error: %v", err)
		} else {
			sink.log.Errorf("influx health status: %s", health.Status)
		}
		sink.client.Close()
		return coremetrics.NopSink{}
	}
	return sink
}

// RecordMutation writes the mutation as a line protocol event.
func (s *InfluxSink) RecordMutation(ev coremetrics.MutationEvent) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	p := write.NewPointWithMeasurement("control_mutation").
		AddTag("operation", ev.Operation).
		AddTag("portal", strconv.Itoa(int(ev.Portal))).
		AddTag("outcome", ev.Outcome).
		AddField("count", 1).
		SetTime(ev.Time)
	return s.writeAPI.WritePoint(ctx, p)
}

// RecordSweep persists the outcome of a parameter sweep.
func (s *InfluxSink) RecordSweep(ev coremetrics.SweepEvent) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	p := write.NewPointWithMeasurement("parameter_sweep").
		AddTag("approved", strconv.FormatBool(ev.Approved)).
		AddField("candidates", ev.Candidates).
		AddField("best_strength", ev.Best).
		AddField("duration_ms", ev.Duration.Milliseconds()).
		SetTime(ev.Time)
	return s.writeAPI.WritePoint(ctx, p)
}

// RecordSnapshot writes the derived simulation state as a time series.
func (s *InfluxSink) RecordSnapshot(snap model.SimulationSnapshot) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	p := write.NewPointWithMeasurement("simulation_state").
		AddTag("run_id", snap.RunID).
		AddField("bridge_strength", snap.BridgeStrength).
		AddField("transfer_energy", snap.TransferEnergy).
		AddField("detune", snap.Detune).
		AddField("transport_ready", snap.TransportReady).
		AddField("energy1_j", snap.Portal1.EnergyJoules).
		AddField("energy2_j", snap.Portal2.EnergyJoules).
		SetTime(time.Now())
	return s.writeAPI.WritePoint(ctx, p)
}

// Close releases the underlying client.
func (s *InfluxSink) Close() { s.client.Close() }
