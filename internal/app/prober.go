package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/samvad-hq/context-probe/internal/config"
	"github.com/samvad-hq/context-probe/internal/logger"
	"github.com/samvad-hq/context-probe/internal/storage"
	"github.com/samvad-hq/context-probe/pkg/contextapi"
	"github.com/samvad-hq/context-probe/pkg/httpclient"
	"github.com/samvad-hq/context-probe/pkg/publishers"
)

// Prober is the probe runtime. It builds API clients from config, runs probes
// one at a time, prints each result, and records outcomes to the optional
// journal and report sinks.
type Prober struct {
	cfg     *config.Config
	log     logger.Logger
	http    httpclient.Client
	journal storage.Journal
	fanout  *publishers.Fanout
	out     io.Writer
	errOut  io.Writer
	format  string
}

// Options overrides the Prober's I/O and transport.
type Options struct {
	Out        io.Writer
	ErrOut     io.Writer
	Format     string
	HTTPClient httpclient.Client
}

// NewProber builds a probe runtime from config.
func NewProber(ctx context.Context, cfg *config.Config, log logger.Logger, opts Options) (*Prober, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config must not be nil")
	}
	if log == nil {
		log = logger.NopLogger{}
	}
	if ctx == nil {
		ctx = context.Background()
	}
	format, err := normalizeFormat(opts.Format)
	if err != nil {
		return nil, err
	}

	p := &Prober{
		cfg:    cfg,
		log:    log,
		http:   opts.HTTPClient,
		out:    opts.Out,
		errOut: opts.ErrOut,
		format: format,
	}
	if p.out == nil {
		p.out = os.Stdout
	}
	if p.errOut == nil {
		p.errOut = os.Stderr
	}
	if p.http == nil {
		p.http = httpclient.NewRestyClient(httpclient.Options{
			Timeout:   cfg.HTTPTimeout,
			UserAgent: cfg.UserAgent,
		})
	}

	journal, err := storage.NewJournal(cfg.JournalType, cfg.JournalPath, storage.Options{
		RecordTTL:       cfg.JournalTTL,
		CleanupInterval: cfg.JournalCleanupInterval,
	})
	if err != nil {
		return nil, fmt.Errorf("init journal: %w", err)
	}
	p.journal = journal
	log.DebugObj("journal initialized", "journal_config", map[string]any{
		"type": cfg.JournalType,
		"path": cfg.JournalPath,
	})

	if cfg.SinksFile != "" {
		fanout, err := buildFanout(ctx, cfg.SinksFile, log)
		if err != nil {
			_ = journal.Close()
			return nil, err
		}
		p.fanout = fanout
	}

	return p, nil
}

func buildFanout(ctx context.Context, path string, log logger.Logger) (*publishers.Fanout, error) {
	reg, err := publishers.LoadRegistry(path)
	if err != nil {
		return nil, fmt.Errorf("load sinks registry: %w", err)
	}
	enabled := reg.Enabled()
	pubs, err := publishers.BuildAll(ctx, publishers.DefaultRegistry(), enabled, log)
	if err != nil {
		return nil, fmt.Errorf("build sinks: %w", err)
	}
	summaries := make([]map[string]string, 0, len(enabled))
	for _, c := range enabled {
		summaries = append(summaries, map[string]string{"id": c.ID, "type": c.Type})
	}
	log.InfoObj("report sinks loaded", "sinks_meta", map[string]any{
		"count": len(summaries),
		"sinks": summaries,
	})
	return publishers.NewFanout(pubs), nil
}

// BearerClient builds the client for the bearer + client-id deployment.
func (p *Prober) BearerClient() (*contextapi.Client, error) {
	return contextapi.New(p.cfg.APIBase, contextapi.BearerAuth{
		ClientID: p.cfg.ClientID,
		Token:    p.cfg.AccessToken,
	}, contextapi.WithHTTPClient(p.http))
}

// APIKeyClient builds the client for the api-key deployment.
func (p *Prober) APIKeyClient() (*contextapi.Client, error) {
	return contextapi.New(p.cfg.DeployBase, contextapi.APIKeyAuth{Key: p.cfg.APIKey},
		contextapi.WithHTTPClient(p.http))
}

// Run executes probes sequentially and stops at the first failure.
func (p *Prober) Run(ctx context.Context, probes ...Probe) error {
	if p == nil || p.journal == nil {
		return fmt.Errorf("prober is not initialized")
	}
	if len(probes) == 0 {
		return fmt.Errorf("no probes to run")
	}

	for _, probe := range probes {
		if err := p.runProbe(ctx, probe); err != nil {
			return err
		}
	}
	return nil
}

// runProbe performs a single request, records it, and prints the outcome.
func (p *Prober) runProbe(ctx context.Context, probe Probe) error {
	if probe.Client == nil {
		return fmt.Errorf("probe %s has no client", probe.Name)
	}

	url := probe.Client.RequestURL(probe.Query)
	p.log.InfoObj("probe started", "probe_meta", map[string]any{
		"probe":  probe.Name,
		"url":    url,
		"scheme": probe.Client.Scheme(),
	})

	start := time.Now()
	doc, err := probe.fetch(ctx)
	elapsed := time.Since(start)

	outcome, status := classify(err, doc)
	rec := storage.Record{
		Probe:       probe.Name,
		URL:         url,
		Scheme:      probe.Client.Scheme(),
		StatusCode:  status,
		Outcome:     outcome,
		ElapsedMs:   elapsed.Milliseconds(),
		CompletedAt: time.Now().UTC(),
	}
	if err != nil {
		rec.Error = err.Error()
	}
	p.record(ctx, rec)

	if err != nil {
		p.log.WarnObj("probe failed", "probe_result", map[string]any{
			"probe":      probe.Name,
			"outcome":    outcome,
			"error":      err.Error(),
			"elapsed_ms": rec.ElapsedMs,
		})
		p.printFailure(probe, err)
		return &ProbeFailure{Probe: probe.Name, Outcome: outcome, Err: err}
	}

	p.log.InfoObj("probe completed", "probe_result", map[string]any{
		"probe":      probe.Name,
		"outcome":    outcome,
		"elapsed_ms": rec.ElapsedMs,
	})
	if err := p.printDocument(doc); err != nil {
		return fmt.Errorf("render %s result: %w", probe.Name, err)
	}
	return nil
}

// record writes the outcome to the journal and sinks. Failures here are logged,
// never returned: they must not mask the probe result.
func (p *Prober) record(ctx context.Context, rec storage.Record) {
	if err := p.journal.Record(rec); err != nil {
		p.log.WarnObj("journal write failed", "journal_error", err.Error())
	}
	if p.fanout.Size() == 0 {
		return
	}
	delivered, err := p.fanout.Publish(ctx, publishers.Report{
		App:         p.cfg.AppName,
		Probe:       rec.Probe,
		URL:         rec.URL,
		Scheme:      rec.Scheme,
		StatusCode:  rec.StatusCode,
		Outcome:     rec.Outcome,
		Error:       rec.Error,
		ElapsedMs:   rec.ElapsedMs,
		CompletedAt: rec.CompletedAt,
	})
	if err != nil {
		p.log.WarnObj("report delivery failed", "sinks_error", map[string]any{
			"delivered": delivered,
			"error":     err.Error(),
		})
	}
}

// History returns the most recent journal records, newest first.
func (p *Prober) History(limit int) ([]storage.Record, error) {
	if p == nil || p.journal == nil {
		return nil, fmt.Errorf("prober is not initialized")
	}
	return p.journal.Recent(limit)
}

// PrintHistory renders journal records in the configured format.
func (p *Prober) PrintHistory(recs []storage.Record) error {
	if recs == nil {
		recs = []storage.Record{}
	}
	raw, err := json.Marshal(recs)
	if err != nil {
		return fmt.Errorf("marshal history: %w", err)
	}
	return p.printDocument(raw)
}

// Close releases the journal and sink clients.
func (p *Prober) Close() error {
	if p == nil {
		return nil
	}
	var errs []error
	if p.journal != nil {
		if err := p.journal.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close journal: %w", err))
		}
	}
	if err := p.fanout.Close(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// ProbeFailure is returned by Run when a probe fails. Its description has
// already been written to the error output.
type ProbeFailure struct {
	Probe   string
	Outcome string
	Err     error
}

func (e *ProbeFailure) Error() string { return fmt.Sprintf("%s probe: %v", e.Probe, e.Err) }

func (e *ProbeFailure) Unwrap() error { return e.Err }

// Outcome kinds recorded for each probe.
const (
	OutcomeOK            = "ok"
	OutcomeEmpty         = "empty"
	OutcomeConfiguration = "configuration_error"
	OutcomeTransport     = "transport_error"
	OutcomeAPIResponse   = "api_error"
	OutcomeDecode        = "decode_error"
	OutcomeUnclassified  = "error"
)

func classify(err error, doc json.RawMessage) (string, int) {
	var (
		cfgErr *contextapi.ConfigurationError
		trErr  *contextapi.TransportError
		apiErr *contextapi.APIResponseError
		decErr *contextapi.DecodeError
	)
	switch {
	case err == nil && doc == nil:
		return OutcomeEmpty, 0
	case err == nil:
		return OutcomeOK, 0
	case errors.As(err, &apiErr):
		return OutcomeAPIResponse, apiErr.StatusCode
	case errors.As(err, &decErr):
		return OutcomeDecode, decErr.StatusCode
	case errors.As(err, &trErr):
		return OutcomeTransport, 0
	case errors.As(err, &cfgErr):
		return OutcomeConfiguration, 0
	default:
		return OutcomeUnclassified, 0
	}
}
