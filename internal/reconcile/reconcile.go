// Package reconcile applies freshly extracted rows to the rate catalogue.
package reconcile

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"gstrates/internal/domain"
	"gstrates/internal/policy"
	"gstrates/internal/port"
)

// DefaultMaxAttempts bounds how often one row is retried after losing a race
// with a concurrent writer.
const DefaultMaxAttempts = 3

const mergeReasonPrefix = "merged from extracted description: "

// Reconciler decides per row between update, canonical merge and insert.
type Reconciler struct {
	catalogue   port.RateCatalogue
	policy      *policy.Policy
	maxAttempts int
}

// New creates a Reconciler. A nil policy disables canonical merges.
func New(catalogue port.RateCatalogue, pol *policy.Policy) *Reconciler {
	return &Reconciler{catalogue: catalogue, policy: pol, maxAttempts: DefaultMaxAttempts}
}

// Reconcile plans the whole document before writing: every row is resolved
// to its target record (exact match, canonical merge target or a new key) and
// the last rate seen per target wins, so a document listing one line twice
// yields one change. Targets are applied in first-seen order; the first store
// failure stops the run and the result accumulated so far is returned with
// the wrapped error.
func (r *Reconciler) Reconcile(ctx context.Context, rows []domain.NormalizedRow, sourceDocument string) (*domain.ReconcileResult, error) {
	result := &domain.ReconcileResult{Changes: []domain.RateChange{}}

	p := newPlan()
	for i := range rows {
		if err := r.planRow(ctx, p, &rows[i]); err != nil {
			return result, fmt.Errorf("reconcile row %d (%s %q): %w", i, rows[i].Code, rows[i].Description, err)
		}
	}

	for _, t := range p.targets {
		change, err := r.applyWithRetry(ctx, t, sourceDocument)
		if err != nil {
			return result, fmt.Errorf("reconcile %s %q: %w", t.code, t.description, err)
		}

		switch change.Action {
		case domain.ChangeInserted:
			result.Inserted++
		case domain.ChangeUpdated:
			result.Updated++
		case domain.ChangeMerged:
			result.Merged++
		default:
			result.Unchanged++
			continue
		}
		result.Changes = append(result.Changes, change)
	}
	return result, nil
}

// target is one catalogue line a document resolves to. record is nil until a
// planned insert has been written.
type target struct {
	record      *domain.RateRecord
	code        string
	description string
	keywords    []string
	rate        float64
	reason      string
	merged      bool
}

func (t *target) set(rate float64, reason string, merged bool) {
	t.rate = rate
	t.reason = reason
	t.merged = merged
}

type plan struct {
	targets []*target
	byKey   map[string]*target
	byID    map[uuid.UUID]*target
}

func newPlan() *plan {
	return &plan{byKey: map[string]*target{}, byID: map[uuid.UUID]*target{}}
}

func recordKey(code, description string) string {
	return code + "\x00" + description
}

// existing returns the target for a stored record, adding it on first use.
func (p *plan) existing(rec *domain.RateRecord) *target {
	if t, ok := p.byID[rec.ID]; ok {
		return t
	}
	t := &target{record: rec, code: rec.Code, description: rec.Description, rate: rec.Rate}
	p.add(t)
	p.byID[rec.ID] = t
	return t
}

func (p *plan) add(t *target) {
	p.targets = append(p.targets, t)
	p.byKey[recordKey(t.code, t.description)] = t
}

func (r *Reconciler) planRow(ctx context.Context, p *plan, row *domain.NormalizedRow) error {
	if t, ok := p.byKey[recordKey(row.Code, row.Description)]; ok {
		t.set(row.Rate, "", false)
		return nil
	}

	existing, err := r.catalogue.FindByCodeAndDescription(ctx, row.Code, row.Description)
	switch {
	case err == nil:
		p.existing(existing).set(row.Rate, "", false)
		return nil
	case !errors.Is(err, domain.ErrNotFound):
		return err
	}

	t, err := r.canonicalTarget(ctx, p, row)
	if err != nil {
		return err
	}
	if t != nil {
		t.set(row.Rate, mergeReasonPrefix+row.Description, true)
		return nil
	}

	p.add(&target{
		code:        row.Code,
		description: row.Description,
		keywords:    row.Keywords,
		rate:        row.Rate,
	})
	return nil
}

// canonicalTarget finds the line a policy rule folds row into: among the
// stored records under the rule's code and the lines this document already
// plans to insert there, the one holding the rule's rate, else the first.
// Stored records are compared at their stored rate.
func (r *Reconciler) canonicalTarget(ctx context.Context, p *plan, row *domain.NormalizedRow) (*target, error) {
	for _, rule := range r.policy.MatchDescription(row.Description) {
		if rule.Code != row.Code {
			continue
		}
		records, err := r.catalogue.FindAllByCode(ctx, rule.Code)
		if err != nil {
			return nil, err
		}

		var pending []*target
		for _, t := range p.targets {
			if t.record == nil && t.code == rule.Code {
				pending = append(pending, t)
			}
		}
		if len(records) == 0 && len(pending) == 0 {
			continue
		}

		for i := range records {
			if domain.RatesEqual(records[i].Rate, rule.Rate) {
				return p.existing(&records[i]), nil
			}
		}
		for _, t := range pending {
			if domain.RatesEqual(t.rate, rule.Rate) {
				return t, nil
			}
		}
		if len(records) > 0 {
			return p.existing(&records[0]), nil
		}
		return pending[0], nil
	}
	return nil, nil
}

// applyWithRetry writes one target. A lost race re-reads the record and
// tries again, at most maxAttempts times.
func (r *Reconciler) applyWithRetry(ctx context.Context, t *target, src string) (domain.RateChange, error) {
	var lastErr error
	for attempt := 1; attempt <= r.maxAttempts; attempt++ {
		change, err := r.apply(ctx, t, src)
		if err == nil {
			return change, nil
		}
		if !errors.Is(err, domain.ErrConcurrentUpdate) && !errors.Is(err, domain.ErrDuplicateRecord) {
			return domain.RateChange{}, err
		}
		lastErr = err
		zap.L().Warn("reconciler.Reconcile: concurrent write, retrying",
			zap.String("code", t.code),
			zap.String("description", t.description),
			zap.Int("attempt", attempt),
			zap.Error(err))

		fresh, ferr := r.catalogue.FindByCodeAndDescription(ctx, t.code, t.description)
		switch {
		case ferr == nil:
			t.record = fresh
		case !errors.Is(ferr, domain.ErrNotFound):
			return domain.RateChange{}, ferr
		}
	}
	return domain.RateChange{}, lastErr
}

func (r *Reconciler) apply(ctx context.Context, t *target, src string) (domain.RateChange, error) {
	if t.record != nil {
		action := domain.ChangeUpdated
		if t.merged {
			action = domain.ChangeMerged
		}
		return r.applyRate(ctx, t.record, t.rate, src, t.reason, action)
	}

	rec := &domain.RateRecord{
		Code:           t.code,
		Description:    t.description,
		Keywords:       domain.Keywords(t.keywords),
		Rate:           t.rate,
		SourceDocument: src,
	}
	if err := r.catalogue.Insert(ctx, rec); err != nil {
		return domain.RateChange{}, err
	}
	t.record = rec
	return domain.RateChange{
		Code:        rec.Code,
		Description: rec.Description,
		NewRate:     rec.Rate,
		Action:      domain.ChangeInserted,
	}, nil
}

func (r *Reconciler) applyRate(ctx context.Context, rec *domain.RateRecord, newRate float64, src, reason string, action domain.ChangeAction) (domain.RateChange, error) {
	oldRate := rec.Rate
	change := domain.RateChange{
		Code:        rec.Code,
		Description: rec.Description,
		OldRate:     &oldRate,
		NewRate:     newRate,
		Action:      domain.ChangeUnchanged,
	}
	if domain.RatesEqual(oldRate, newRate) {
		return change, nil
	}

	err := r.catalogue.UpdateRate(ctx, domain.RateUpdate{
		RecordID:       rec.ID,
		ExpectedRate:   oldRate,
		NewRate:        newRate,
		SourceDocument: src,
		History: domain.HistoryEntry{
			RecordID:       rec.ID,
			Code:           rec.Code,
			Description:    rec.Description,
			OldRate:        oldRate,
			NewRate:        newRate,
			SourceDocument: src,
			Reason:         reason,
		},
	})
	if err != nil {
		return domain.RateChange{}, err
	}
	change.Action = action
	return change, nil
}
