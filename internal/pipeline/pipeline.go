// Package pipeline orchestrates the assessment run: fetch raw geospatial
// context per address, dispatch field handlers in display order, and
// assemble ordered records for report emission.
package pipeline

import (
	"context"
	"strconv"
	"sync/atomic"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/parcelworks/siteassess/internal/classify"
	"github.com/parcelworks/siteassess/internal/handler"
	"github.com/parcelworks/siteassess/internal/model"
)

// ContextFetcher supplies the raw geospatial context for one address.
// A nil return means the address could not be resolved and is skipped.
type ContextFetcher interface {
	FetchContext(ctx context.Context, address string, fields []model.FieldDescriptor) *model.LocationContext
}

// ProgressFunc is invoked after each address completes.
type ProgressFunc func(done, total int, address string)

// AddressRecord pairs an input address with its assembled record.
type AddressRecord struct {
	Address string       `json:"address"`
	Record  model.Record `json:"record"`
}

// Result is the ordered outcome of one run. Records preserve input address
// order; Skipped lists addresses that failed to geocode.
type Result struct {
	RunID   string          `json:"run_id"`
	Records []AddressRecord `json:"records"`
	Skipped []string        `json:"skipped,omitempty"`
}

// Get returns the record for an address.
func (r *Result) Get(address string) (model.Record, bool) {
	for _, ar := range r.Records {
		if ar.Address == address {
			return ar.Record, true
		}
	}
	return model.Record{}, false
}

// Pipeline runs the enrichment-and-classification pass over an address list.
type Pipeline struct {
	fetcher     ContextFetcher
	registry    *handler.Registry
	fields      []model.FieldDescriptor
	comparisons map[string]classify.RuleSet
	workers     int
}

// Option configures the pipeline.
type Option func(*Pipeline)

// WithWorkers bounds the number of addresses processed concurrently.
func WithWorkers(n int) Option {
	return func(p *Pipeline) {
		if n > 0 {
			p.workers = n
		}
	}
}

// New creates a Pipeline and validates the field configuration up front:
// unrecognized field names or malformed rule sets fail here, before any
// network work starts.
func New(fetcher ContextFetcher, registry *handler.Registry, fields []model.FieldDescriptor, comparisons map[string]classify.RuleSet, opts ...Option) (*Pipeline, error) {
	if err := registry.Validate(fields); err != nil {
		return nil, err
	}
	for key, rs := range comparisons {
		if err := rs.Validate(); err != nil {
			zap.L().Warn("pipeline: invalid rule set", zap.String("field_index", key), zap.Error(err))
			return nil, err
		}
	}

	p := &Pipeline{
		fetcher:     fetcher,
		registry:    registry,
		fields:      fields,
		comparisons: comparisons,
		workers:     1,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// Run processes addresses in input order. Worker tasks run per address; each
// record is assembled independently so no handler observes another address's
// data. Failures are isolated per (address, field): a failed geocode skips
// the address, a failed search degrades that field only, and the run itself
// never aborts.
func (p *Pipeline) Run(ctx context.Context, addresses []string, progress ProgressFunc) (*Result, error) {
	runID := uuid.NewString()
	log := zap.L().With(zap.String("run_id", runID))
	log.Info("pipeline: starting run",
		zap.Int("addresses", len(addresses)),
		zap.Int("workers", p.workers),
	)

	enabled := model.EnabledFields(p.fields)

	records := make([]*AddressRecord, len(addresses))
	var done int32

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(p.workers)

	for i, address := range addresses {
		i, address := i, address
		g.Go(func() error {
			if err := gCtx.Err(); err != nil {
				return err
			}

			cctx := p.fetcher.FetchContext(gCtx, address, p.fields)
			if cctx != nil {
				rec := p.assemble(address, cctx, enabled)
				records[i] = &AddressRecord{Address: address, Record: rec}
			} else {
				log.Warn("pipeline: address skipped", zap.String("address", address))
			}

			if progress != nil {
				progress(int(atomic.AddInt32(&done, 1)), len(addresses), address)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	result := &Result{RunID: runID}
	for i, rec := range records {
		if rec == nil {
			result.Skipped = append(result.Skipped, addresses[i])
			continue
		}
		result.Records = append(result.Records, *rec)
	}

	log.Info("pipeline: run complete",
		zap.Int("records", len(result.Records)),
		zap.Int("skipped", len(result.Skipped)),
	)
	return result, nil
}

// assemble builds an address's record: the title field first, then enabled
// fields in display order.
func (p *Pipeline) assemble(address string, cctx *model.LocationContext, enabled []model.FieldDescriptor) model.Record {
	rec := model.Record{
		Title:  address,
		Fields: make([]model.FieldText, 0, len(enabled)),
	}

	for _, f := range enabled {
		hctx := handler.Context{
			Raw:              cctx.FieldData[f.Name],
			Origin:           cctx.Coordinate,
			District:         cctx.District,
			FormattedAddress: cctx.FormattedAddress,
			AddressName:      address,
			Field:            f,
			Rules:            p.comparisons[strconv.Itoa(f.OriginalIndex)],
		}

		text, err := p.registry.Handle(f.Name, hctx)
		if err != nil {
			// Validation makes this unreachable for recognized configs;
			// surface it per field without aborting the address.
			zap.L().Error("pipeline: handler dispatch failed",
				zap.String("address", address),
				zap.String("field", f.Name),
				zap.Error(err),
			)
			text = ""
		}
		rec.Fields = append(rec.Fields, model.FieldText{Name: f.Name, Text: text})
	}

	return rec
}
