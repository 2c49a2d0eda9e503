// Package pipeline orchestrates the contact-list enrichment run: schema-mode
// dispatch, email filtering, deduplication, mail-provider resolution, field
// normalization, domain-frequency suppression, and peer assignment.
package pipeline

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/leadclean/internal/progress"
	"github.com/sells-group/leadclean/internal/record"
	"github.com/sells-group/leadclean/internal/resolve"
	"github.com/sells-group/leadclean/internal/schema"
)

// Enrichment columns guaranteed on every output row.
const (
	ColMXProvider = "mx_provider"
	ColDomain     = "domain"
	ColAltName    = "alt_contact_name"
	ColAltEmail   = "alt_contact_email"
	ColAltTitle   = "alt_contact_title"
	ColFlagged    = "to_be_deleted"
)

// Suppression policies for over-represented domains.
const (
	SuppressFlag   = "flag"   // keep rows, mark to_be_deleted=true (default)
	SuppressRemove = "remove" // drop rows from the output
)

// Config holds the pipeline's tunable knobs.
type Config struct {
	// SuppressThreshold is the maximum rows one canonical domain may have
	// before the whole domain is suppressed. Default 6.
	SuppressThreshold int

	// SuppressMode is SuppressFlag or SuppressRemove. Default SuppressFlag:
	// flagged rows stay in the output for user review.
	SuppressMode string
}

func (c Config) withDefaults() Config {
	if c.SuppressThreshold <= 0 {
		c.SuppressThreshold = 6
	}
	if c.SuppressMode != SuppressRemove {
		c.SuppressMode = SuppressFlag
	}
	return c
}

// Pipeline runs the enrichment stages over an in-memory table. One logical
// invocation per upload; the only internal concurrency is the resolver's
// batched lookup fan-out.
type Pipeline struct {
	resolver   *resolve.Resolver
	cfg        Config
	onProgress progress.Func
}

// New creates a pipeline. onProgress may be nil.
func New(resolver *resolve.Resolver, cfg Config, onProgress progress.Func) *Pipeline {
	return &Pipeline{
		resolver:   resolver,
		cfg:        cfg.withDefaults(),
		onProgress: onProgress,
	}
}

// Result summarizes a completed run.
type Result struct {
	RunID      string
	Mode       schema.Mode
	InputRows  int
	OutputRows int

	FilteredOut int // rows dropped for missing/invalid email
	Duplicates  int // rows merged away by dedup
	Suppressed  int // rows flagged or removed by domain suppression
	PeersPaired int // rows that received an alternative contact

	Providers map[resolve.Provider]int

	// StageDurations records wall time per completed stage.
	StageDurations map[string]time.Duration

	Rows     record.Table
	Priority []string // output column order hint for the serializer
}

// Run executes the full stage sequence for the table. Per-row failures
// degrade to empty fields; Run itself fails only on caller errors
// (cancelled context) — a smaller output than input is expected, not an
// error.
func (p *Pipeline) Run(ctx context.Context, headers []string, rows record.Table, mapping schema.Mapping) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, eris.Wrap(err, "pipeline: run")
	}

	mode := schema.Classify(headers)
	res := &Result{
		RunID:          uuid.New().String(),
		Mode:           mode,
		InputRows:      len(rows),
		Providers:      make(map[resolve.Provider]int),
		StageDurations: make(map[string]time.Duration),
	}

	log := zap.L().With(
		zap.String("run_id", res.RunID),
		zap.String("mode", string(mode)),
		zap.Int("input_rows", len(rows)),
	)
	log.Info("pipeline: starting run")

	tr := progress.NewTracker(p.onProgress)
	stage := func(name string, total int, fn func()) {
		start := time.Now()
		tr.Begin(name, total)
		fn()
		tr.Finish()
		res.StageDurations[name] = time.Since(start)
		log.Info("pipeline: stage complete",
			zap.String("stage", name),
			zap.Duration("took", res.StageDurations[name]),
		)
	}

	switch mode {
	case schema.ModeMultiEmail:
		stage("expand", len(rows), func() {
			rows, mapping = expandEmailSlots(headers, rows, mapping, tr)
		})
		rows = p.runContactStages(ctx, rows, mapping, res, stage, tr)

	case schema.ModeSingleEmail:
		rows = p.runContactStages(ctx, rows, mapping, res, stage, tr)

	case schema.ModeDomainOnly:
		stage("normalize", len(rows), func() {
			rows = normalizeWebsiteOnly(rows, mapping, tr)
		})

	case schema.ModeUnknown:
		log.Warn("pipeline: unknown schema, passing rows through")
	}

	stage("finalize", len(rows), func() {
		finalizeShape(rows, p.cfg.SuppressMode, tr)
	})

	res.Rows = rows
	res.OutputRows = len(rows)
	res.Priority = outputPriority(mapping)

	log.Info("pipeline: run complete",
		zap.Int("output_rows", res.OutputRows),
		zap.Int("filtered", res.FilteredOut),
		zap.Int("duplicates", res.Duplicates),
		zap.Int("suppressed", res.Suppressed),
		zap.Int("peers_paired", res.PeersPaired),
	)
	return res, nil
}

// runContactStages is the shared stage skeleton for email-bearing modes.
func (p *Pipeline) runContactStages(
	ctx context.Context,
	rows record.Table,
	mapping schema.Mapping,
	res *Result,
	stage func(string, int, func()),
	tr *progress.Tracker,
) record.Table {
	emailCol := mapping.Header(schema.RoleEmail)

	stage("filter", len(rows), func() {
		before := len(rows)
		rows = filterInvalidEmails(rows, emailCol, tr)
		res.FilteredOut = before - len(rows)
	})

	stage("dedupe", len(rows), func() {
		before := len(rows)
		rows = dedupeByEmail(rows, emailCol, tr)
		res.Duplicates = before - len(rows)
	})

	// The resolve stage totals unique domains, not rows, so it owns its
	// own tracker lifecycle.
	p.resolveProviders(ctx, rows, emailCol, res, tr)

	stage("normalize", len(rows), func() {
		normalizeFields(rows, mapping, tr)
	})

	stage("suppress", len(rows), func() {
		before := len(rows)
		var flagged int
		rows, flagged = suppressFrequentDomains(rows, p.cfg.SuppressThreshold, p.cfg.SuppressMode, tr)
		if p.cfg.SuppressMode == SuppressRemove {
			res.Suppressed = before - len(rows)
		} else {
			res.Suppressed = flagged
		}
	})

	stage("peers", len(rows), func() {
		res.PeersPaired = assignPeers(rows, mapping, tr)
	})

	return rows
}

// outputPriority lists the columns the serializer should front-load:
// mapped identity columns first, then the enrichment columns.
func outputPriority(mapping schema.Mapping) []string {
	var priority []string
	for _, role := range []string{
		schema.RoleEmail,
		schema.RoleFullName,
		schema.RoleFirstName,
		schema.RoleLastName,
		schema.RoleTitle,
		schema.RoleCompany,
		schema.RoleWebsite,
	} {
		if h := mapping.Header(role); h != "" {
			priority = append(priority, h)
		}
	}
	return append(priority,
		ColDomain,
		ColAltName,
		ColAltEmail,
		ColAltTitle,
		ColMXProvider,
		ColFlagged,
	)
}
