// Package session owns the process-wide analysis state: the currently
// loaded dataset, replaced wholesale by each successful load.
//
// Reads never block. A load parses both sources concurrently, merges them
// and then installs the result with a single atomic store, so readers see
// either the previous dataset or the new one, never a mix. A failed load
// leaves the previous dataset in place.
package session

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"eda/internal/config"
	"eda/internal/dataset"
	"eda/internal/datasource"
	"eda/internal/metrics"
	"eda/internal/parser"
)

// Sources names the inputs a dataset was loaded from.
type Sources struct {
	Train string `json:"train"`
	Test  string `json:"test"`
}

// Loaded is an installed dataset and its load metadata. It is immutable.
type Loaded struct {
	Dataset     *dataset.Dataset
	LoadID      string
	LoadedAt    time.Time
	Sources     Sources
	Fingerprint string
}

// Options configures a Session.
type Options struct {
	// Parser options applied to both sources.
	Parser parser.Options
	// Job labels metrics. Defaults to "eda".
	Job string
}

// Session is the single-writer state cell. The zero value is not usable;
// call New.
type Session struct {
	schema  config.Schema
	coercer *dataset.Coercer
	opt     Options

	loading sync.Mutex
	current atomic.Pointer[Loaded]

	// Test hooks.
	now   func() time.Time
	newID func() string
}

// New returns an empty session for schema.
func New(schema config.Schema, opt Options) *Session {
	if opt.Job == "" {
		opt.Job = "eda"
	}
	return &Session{
		schema:  schema,
		coercer: dataset.NewCoercer(schema),
		opt:     opt,
		now:     time.Now,
		newID:   uuid.NewString,
	}
}

// Schema returns the session's schema.
func (s *Session) Schema() config.Schema { return s.schema }

// Current returns the installed dataset, or ErrNotLoaded before the first
// successful load.
func (s *Session) Current() (*Loaded, error) {
	l := s.current.Load()
	if l == nil {
		return nil, dataset.ErrNotLoaded
	}
	return l, nil
}

// Load parses train and test concurrently, merges them and installs the
// result. Both sources are required. If either parse fails the other is
// canceled and the first error is returned; nothing is installed.
//
// Only one load runs at a time. A Load that starts while another is in
// flight fails immediately with ErrLoadInProgress.
func (s *Session) Load(ctx context.Context, train, test datasource.Source) (*Loaded, error) {
	if err := requireSources(train, test); err != nil {
		return nil, err
	}
	if !s.loading.TryLock() {
		return nil, dataset.ErrLoadInProgress
	}
	defer s.loading.Unlock()

	start := time.Now()
	log.Printf("session: load start train=%s test=%s", train.Name(), test.Name())

	l, err := s.load(ctx, train, test)
	metrics.RecordStep(s.opt.Job, "load", err, time.Since(start))
	if err != nil {
		log.Printf("session: load failed train=%s test=%s err=%v", train.Name(), test.Name(), err)
		return nil, err
	}

	s.current.Store(l)
	log.Printf("session: load done id=%s records=%d train=%d test=%d columns=%d fingerprint=%s duration=%s",
		l.LoadID, l.Dataset.Len(), l.Dataset.TrainCount(), l.Dataset.TestCount(),
		len(l.Dataset.Columns()), l.Fingerprint, time.Since(start).Round(time.Millisecond))
	return l, nil
}

func (s *Session) load(ctx context.Context, train, test datasource.Source) (*Loaded, error) {
	var trainRecs, testRecs []*dataset.Record

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		recs, err := s.parse(gctx, train, dataset.Train)
		trainRecs = recs
		return err
	})
	g.Go(func() error {
		recs, err := s.parse(gctx, test, dataset.Test)
		testRecs = recs
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	mergeStart := time.Now()
	ds, err := dataset.Merge(trainRecs, testRecs)
	metrics.RecordStep(s.opt.Job, "merge", err, time.Since(mergeStart))
	if err != nil {
		return nil, err
	}

	return &Loaded{
		Dataset:     ds,
		LoadID:      s.newID(),
		LoadedAt:    s.now(),
		Sources:     Sources{Train: train.Name(), Test: test.Name()},
		Fingerprint: ds.Fingerprint(),
	}, nil
}

func (s *Session) parse(ctx context.Context, src datasource.Source, origin dataset.Origin) ([]*dataset.Record, error) {
	start := time.Now()
	recs, err := parser.ParseSource(ctx, src, origin, s.coercer, s.opt.Parser)
	metrics.RecordStep(s.opt.Job, "parse_"+origin.String(), err, time.Since(start))
	if err != nil {
		return nil, err
	}
	metrics.RecordRow(s.opt.Job, origin.String(), int64(len(recs)))
	return recs, nil
}

// requireSources reports which inputs are missing, if any.
func requireSources(train, test datasource.Source) error {
	var missing []error
	if train == nil {
		missing = append(missing, errors.New("train source not supplied"))
	}
	if test == nil {
		missing = append(missing, errors.New("test source not supplied"))
	}
	if len(missing) == 0 {
		return nil
	}
	return fmt.Errorf("session: %w: %w", dataset.ErrMissingInput, errors.Join(missing...))
}
