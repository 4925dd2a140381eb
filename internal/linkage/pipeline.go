// Package linkage drives the record-linkage pipeline: for each query record it
// searches the directory, picks the best candidate and checkpoints the
// outcome.
package linkage

import (
	"context"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/orglink/internal/match"
	"github.com/sells-group/orglink/internal/model"
	"github.com/sells-group/orglink/internal/similarity"
	"github.com/sells-group/orglink/internal/store"
)

// Memo texts attached to rows an operator should review.
const (
	MemoNoMatch       = "no matching listing found; check jn_search_url manually"
	MemoNameRejected  = "best address match failed the name check; check jn_search_url manually"
	MemoMatchedByName = "matched by name; address did not match"
	MemoEmptyName     = "skipped: empty name"
	memoErrorPrefix   = "error: "
)

// CandidateSource supplies directory candidates for a query name.
type CandidateSource interface {
	SearchURL(name string) string
	DetailURL(href string) string
	Search(ctx context.Context, name string) ([]model.Candidate, error)
}

// Options configures candidate selection.
type Options struct {
	Mode             model.Mode
	AddressThreshold float64
	NameThreshold    float64
}

// Summary reports what a run did.
type Summary struct {
	RunID     string `json:"run_id"`
	Total     int    `json:"total"`
	Processed int    `json:"processed"`
	Matched   int    `json:"matched"`
	Skipped   int    `json:"skipped"`
	Errors    int    `json:"errors"`
}

// Pipeline links query records to directory candidates one at a time.
type Pipeline struct {
	source CandidateSource
	store  store.Store
	opts   Options
}

// New creates a Pipeline. Thresholds outside [0, 1] are rejected.
func New(source CandidateSource, st store.Store, opts Options) (*Pipeline, error) {
	mode, err := model.ParseMode(string(opts.Mode))
	if err != nil {
		return nil, err
	}
	opts.Mode = mode
	if err := match.ValidateThreshold(opts.AddressThreshold); err != nil {
		return nil, eris.Wrap(err, "linkage: address threshold")
	}
	if err := match.ValidateThreshold(opts.NameThreshold); err != nil {
		return nil, eris.Wrap(err, "linkage: name threshold")
	}
	return &Pipeline{source: source, store: st, opts: opts}, nil
}

// Run creates a new run for input and links every record.
func (p *Pipeline) Run(ctx context.Context, input string, records []model.QueryRecord) (*Summary, error) {
	run, err := p.store.CreateRun(ctx, input, p.opts.Mode, len(records))
	if err != nil {
		return nil, eris.Wrap(err, "linkage: create run")
	}
	zap.L().Info("linkage: run started",
		zap.String("run_id", run.ID),
		zap.String("input", input),
		zap.String("mode", string(p.opts.Mode)),
		zap.Int("records", len(records)),
	)
	return p.process(ctx, run.ID, records, nil)
}

// Resume continues runID, skipping records whose results are already
// stored. Records stored with an error memo are linked again. The run keeps
// the mode it was started with.
func (p *Pipeline) Resume(ctx context.Context, runID string, records []model.QueryRecord) (*Summary, error) {
	run, err := p.store.GetRun(ctx, runID)
	if err != nil {
		return nil, eris.Wrap(err, "linkage: load run")
	}
	if run.Total != len(records) {
		return nil, eris.Errorf("linkage: run %s expects %d records, input has %d", runID, run.Total, len(records))
	}

	stored, err := p.store.ListResults(ctx, runID)
	if err != nil {
		return nil, eris.Wrap(err, "linkage: load checkpoint")
	}
	done := make(map[int]bool, len(stored))
	for _, r := range stored {
		if isErrorMemo(r.Memo) {
			continue
		}
		done[r.Record.Index] = true
	}

	if err := p.store.UpdateRunStatus(ctx, runID, model.RunStatusRunning, ""); err != nil {
		return nil, eris.Wrap(err, "linkage: reopen run")
	}
	zap.L().Info("linkage: resuming run",
		zap.String("run_id", runID),
		zap.Int("done", len(done)),
		zap.Int("records", len(records)),
	)

	resumed := *p
	resumed.opts.Mode = run.Mode
	return resumed.process(ctx, runID, records, done)
}

func (p *Pipeline) process(ctx context.Context, runID string, records []model.QueryRecord, done map[int]bool) (*Summary, error) {
	sum := &Summary{RunID: runID, Total: len(records)}

	for _, rec := range records {
		if err := ctx.Err(); err != nil {
			p.finish(runID, model.RunStatusFailed, err.Error())
			return sum, eris.Wrap(err, "linkage: run interrupted")
		}
		if done[rec.Index] {
			sum.Skipped++
			continue
		}

		res := p.Link(ctx, rec)
		res.RunID = runID
		if err := ctx.Err(); err != nil {
			// An error memo here comes from the cancellation and is not
			// checkpointed. A record that completed is kept.
			if !isErrorMemo(res.Memo) {
				if err := p.save(ctx, sum, res); err != nil {
					p.finish(runID, model.RunStatusFailed, err.Error())
					return sum, err
				}
			}
			p.finish(runID, model.RunStatusFailed, err.Error())
			return sum, eris.Wrap(err, "linkage: run interrupted")
		}
		if err := p.save(ctx, sum, res); err != nil {
			p.finish(runID, model.RunStatusFailed, err.Error())
			return sum, err
		}
		zap.L().Debug("linkage: progress",
			zap.Int("done", sum.Processed+sum.Skipped),
			zap.Int("total", sum.Total),
		)
	}

	p.finish(runID, model.RunStatusComplete, "")
	zap.L().Info("linkage: run complete",
		zap.String("run_id", runID),
		zap.Int("processed", sum.Processed),
		zap.Int("matched", sum.Matched),
		zap.Int("skipped", sum.Skipped),
		zap.Int("errors", sum.Errors),
	)
	return sum, nil
}

// save checkpoints res and counts it in sum.
func (p *Pipeline) save(ctx context.Context, sum *Summary, res model.LinkResult) error {
	if err := p.store.SaveResult(context.WithoutCancel(ctx), res); err != nil {
		return eris.Wrap(err, "linkage: save result")
	}
	sum.Processed++
	switch {
	case res.Matched:
		sum.Matched++
	case isErrorMemo(res.Memo):
		sum.Errors++
	}
	return nil
}

// finish records the final run status. It uses a fresh context so a cancelled
// run can still be marked failed.
func (p *Pipeline) finish(runID string, status model.RunStatus, errMsg string) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := p.store.UpdateRunStatus(ctx, runID, status, errMsg); err != nil {
		zap.L().Error("linkage: update run status",
			zap.String("run_id", runID),
			zap.String("status", string(status)),
			zap.Error(err),
		)
	}
}

// Link searches the directory for one record and selects a candidate.
// Collaborator failures end up in the memo; Link itself never fails.
func (p *Pipeline) Link(ctx context.Context, rec model.QueryRecord) model.LinkResult {
	res := model.LinkResult{
		Record:    rec,
		SearchURL: p.source.SearchURL(rec.Name),
		CreatedAt: time.Now().UTC(),
	}
	log := zap.L().With(zap.Int("index", rec.Index), zap.String("name", rec.Name))

	if strings.TrimSpace(rec.Name) == "" {
		res.Memo = MemoEmptyName
		log.Warn("linkage: empty name, skipping search")
		return res
	}

	candidates, err := p.source.Search(ctx, rec.Name)
	if err != nil {
		res.Memo = memoErrorPrefix + err.Error()
		log.Error("linkage: search failed", zap.Error(err))
		return res
	}

	chosen, memo, err := p.choose(rec, candidates)
	if err != nil {
		res.Memo = memoErrorPrefix + err.Error()
		log.Error("linkage: select candidate", zap.Error(err))
		return res
	}
	res.Memo = memo
	if !chosen.Matched {
		log.Warn("linkage: no match", zap.Int("candidates", len(candidates)), zap.String("memo", memo))
		return res
	}

	c := chosen.Candidate
	res.Tel, res.TelHyphen = model.SplitTel(c.Tel)
	res.CompanyName = c.CompanyName
	res.Location = c.Location
	res.DetailURL = p.source.DetailURL(c.DetailURL)
	res.Score = chosen.Score
	res.Matched = true

	log.Info("linkage: matched",
		zap.Int("candidates", len(candidates)),
		zap.Int("candidate", chosen.Index),
		zap.String("company_name", c.CompanyName),
		zap.Float64("score", chosen.Score),
	)
	return res
}

// choose applies the configured mode. Address mode takes the best location
// match. Name mode accepts the location match only when its company name
// passes the name threshold and otherwise falls back to the best name match.
func (p *Pipeline) choose(rec model.QueryRecord, candidates []model.Candidate) (match.Result[model.Candidate], string, error) {
	byLoc, err := match.ByLocation(p.opts.AddressThreshold).Select(rec.Location, candidates)
	if err != nil {
		return byLoc, "", err
	}

	if p.opts.Mode == model.ModeAddress {
		if !byLoc.Matched {
			return byLoc, MemoNoMatch, nil
		}
		return byLoc, "", nil
	}

	if byLoc.Matched && similarity.Name(rec.Name, byLoc.Candidate.CompanyName) >= p.opts.NameThreshold {
		return byLoc, "", nil
	}

	byName, err := match.ByName(p.opts.NameThreshold).Select(rec.Name, candidates)
	if err != nil {
		return byName, "", err
	}
	switch {
	case byName.Matched:
		return byName, MemoMatchedByName, nil
	case byLoc.Matched:
		return match.NoMatch[model.Candidate](), MemoNameRejected, nil
	default:
		return byName, MemoNoMatch, nil
	}
}

func isErrorMemo(memo string) bool {
	return strings.HasPrefix(memo, memoErrorPrefix)
}
