// Package poller drives the ingestion loop: every cycle it walks the
// configured sources, fetches each unit's new records, aggregates completed
// hours, persists the CSV artifact, advances the checkpoint and uploads the
// batch. Units fail independently; one broken file never stalls the rest.
package poller

import (
	"context"
	"fmt"
	"time"

	"github.com/hashicorp/go-multierror"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"

	"github.com/nyuad-access/fidas-uplink/internal/aggregate"
	"github.com/nyuad-access/fidas-uplink/internal/config"
	"github.com/nyuad-access/fidas-uplink/internal/delivery"
	"github.com/nyuad-access/fidas-uplink/internal/metrics"
	"github.com/nyuad-access/fidas-uplink/internal/progress"
	"github.com/nyuad-access/fidas-uplink/internal/sink"
	"github.com/nyuad-access/fidas-uplink/internal/source"
	"github.com/nyuad-access/fidas-uplink/internal/support/exception"
	"github.com/nyuad-access/fidas-uplink/internal/support/logger"
)

const componentName = "poller"

// Stage names used in unit error metrics.
const (
	stageFetch     = "fetch"
	stageAggregate = "aggregate"
	stagePersist   = "persist"
	stageProgress  = "progress"
	stageDeliver   = "deliver"
)

// Params defines the dependencies for New.
type Params struct {
	fx.In
	Config     *config.Config
	Sources    []source.Source
	Aggregator *aggregate.Aggregator
	Store      progress.Store
	Sink       *sink.CSVSink
	Archiver   sink.Archiver
	Client     delivery.Client
	Recorder   metrics.Recorder
	Tracer     trace.Tracer
}

// Poller runs the ingestion loop.
type Poller struct {
	interval   time.Duration
	sources    []source.Source
	aggregator *aggregate.Aggregator
	store      progress.Store
	sink       *sink.CSVSink
	archiver   sink.Archiver
	client     delivery.Client
	recorder   metrics.Recorder
	tracer     trace.Tracer
	now        func() time.Time
}

// New creates the Poller from its injected dependencies.
func New(p Params) *Poller {
	interval := time.Duration(p.Config.Uplink.Poll.IntervalSeconds) * time.Second
	if interval <= 0 {
		interval = 60 * time.Second
	}

	return &Poller{
		interval:   interval,
		sources:    p.Sources,
		aggregator: p.Aggregator,
		store:      p.Store,
		sink:       p.Sink,
		archiver:   p.Archiver,
		client:     p.Client,
		recorder:   p.Recorder,
		tracer:     p.Tracer,
		now:        time.Now,
	}
}

// Run executes cycles until ctx is cancelled. A failed cycle is logged and
// the loop keeps going; only cancellation stops it.
func (p *Poller) Run(ctx context.Context) error {
	logger.Infof("Starting ingestion loop (%d sources, interval %s).", len(p.sources), p.interval)

	for {
		if err := p.RunCycle(ctx); err != nil {
			logger.Errorf("Ingestion cycle finished with errors: %v", err)
		}

		select {
		case <-ctx.Done():
			logger.Infof("Ingestion loop stopped: %v", ctx.Err())
			return nil
		case <-time.After(p.interval):
		}
	}
}

// RunCycle processes every unit of every source once. Unit errors are
// aggregated into the returned error; the cycle itself always runs to the
// end.
func (p *Poller) RunCycle(ctx context.Context) error {
	start := p.now()
	ctx, span := p.tracer.Start(ctx, "ingestion.cycle")
	defer span.End()

	var cycleErr *multierror.Error

	for _, src := range p.sources {
		units, err := src.Units(ctx)
		if err != nil {
			p.logUnitFailure(fmt.Sprintf("Source '%s': failed to enumerate units", src.Name()), err)
			p.recorder.RecordUnitError(src.Name(), stageFetch)
			cycleErr = multierror.Append(cycleErr, err)
			continue
		}

		for _, unit := range units {
			if ctx.Err() != nil {
				cycleErr = multierror.Append(cycleErr, ctx.Err())
				break
			}
			if err := p.processUnit(ctx, src, unit); err != nil {
				p.logUnitFailure(fmt.Sprintf("Source '%s', unit '%s'", src.Name(), unit), err)
				cycleErr = multierror.Append(cycleErr, err)
			}
		}
	}

	err := cycleErr.ErrorOrNil()
	p.recorder.RecordCycle(p.now().Sub(start), err != nil)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "cycle finished with errors")
	}
	return err
}

// logUnitFailure logs a unit failure at WARN when the error is transient
// (the next cycle retries it anyway) and at ERROR when it needs an operator.
func (p *Poller) logUnitFailure(scope string, err error) {
	if exception.IsTemporary(err) {
		logger.Warnf("%s (will retry next cycle): %v", scope, err)
		return
	}
	logger.Errorf("%s: %v", scope, err)
}

// processUnit runs the fetch, aggregate, persist, checkpoint and deliver
// stages for one unit.
func (p *Poller) processUnit(ctx context.Context, src source.Source, unit string) error {
	ctx, span := p.tracer.Start(ctx, "ingestion.unit",
		trace.WithAttributes(attribute.String("unit", unit)))
	defer span.End()

	status, err := p.store.Get(ctx, unit)
	if err != nil {
		p.recorder.RecordUnitError(src.Name(), stageProgress)
		return err
	}

	batch, err := src.Fetch(ctx, unit, status)
	if err != nil {
		p.recorder.RecordUnitError(src.Name(), stageFetch)
		return err
	}

	if len(batch.Records) == 0 {
		// A rewritten artifact can shrink below its checkpoint and come
		// back empty; reset the offset so future rows are not skipped.
		if batch.OffsetBased && batch.BaseRow < status.LastRow {
			return p.store.Upsert(ctx, unit, progress.StatusUpdate{LastRow: progress.Int64(batch.BaseRow)})
		}
		logger.Debugf("Unit '%s': no new data.", unit)
		return nil
	}

	result, err := p.aggregator.Aggregate(batch.Records)
	if err != nil {
		p.recorder.RecordUnitError(src.Name(), stageAggregate)
		return err
	}

	if len(result.Aggregates) == 0 {
		// Everything new still belongs to the open hour; leave the
		// checkpoint alone so these records are re-read once it closes.
		logger.Debugf("Unit '%s': %d new records, none in a completed hour yet.", unit, len(batch.Records))
		return nil
	}

	p.recorder.RecordBatch(src.Name(), result.Consumed, len(result.Aggregates))

	artifact := sink.ArtifactName(unit, p.now())
	if err := p.sink.Append(artifact, result.Aggregates); err != nil {
		p.recorder.RecordUnitError(src.Name(), stagePersist)
		return err
	}

	update := progress.StatusUpdate{
		LastRawTimestamp: progress.String(result.NewLastRaw),
		LastAvgTimestamp: progress.String(result.NewLastAvg),
	}
	if batch.OffsetBased {
		update.LastRow = progress.Int64(batch.BaseRow + int64(result.Consumed))
	}
	if err := p.store.Upsert(ctx, unit, update); err != nil {
		// The rows are already durable in the artifact. Skipping delivery
		// here means the next cycle re-reads and re-delivers them, which
		// the ingestion API tolerates.
		p.recorder.RecordUnitError(src.Name(), stageProgress)
		return err
	}

	if p.client.Enabled() {
		payload, err := sink.RenderCSV(result.Aggregates)
		if err != nil {
			p.recorder.RecordUnitError(src.Name(), stageDeliver)
			return err
		}

		sendStart := p.now()
		_, err = p.client.Send(ctx, artifact, payload)
		p.recorder.RecordDelivery(p.now().Sub(sendStart), err != nil)
		if err != nil {
			p.recorder.RecordUnitError(src.Name(), stageDeliver)
			return exception.New(componentName,
				fmt.Sprintf("failed to deliver batch for unit '%s'", unit), err, true)
		}
	}

	if err := p.archiver.Archive(ctx, result.Aggregates); err != nil {
		// The mirror is best effort; the artifact and checkpoint are
		// already consistent.
		logger.Warnf("Unit '%s': archive mirror failed: %v", unit, err)
	}

	logger.Infof("Unit '%s': consumed %d records into %d hourly rows (artifact '%s').",
		unit, result.Consumed, len(result.Aggregates), artifact)
	return nil
}
