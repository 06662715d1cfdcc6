// Package stats builds read-only reports over quiz banks, the usage ledger
// and recorded LLM calls.
package stats

import (
	"context"
	"sort"

	"github.com/abhisek/quizbank/internal/llm"
	"github.com/abhisek/quizbank/internal/store"
)

// DefaultRecent is how many banks Report lists when no limit is given.
const DefaultRecent = 10

// Repos is the storage the reporter reads; *store.Store satisfies it.
type Repos interface {
	Banks() store.BankRepo
	Stats() store.StatsRepo
	Events() store.EventLog
}

// Reporter aggregates usage statistics. Every report tolerates empty
// tables and returns zeros rather than failing.
type Reporter struct {
	banks  store.BankRepo
	stats  store.StatsRepo
	events store.EventLog
}

func NewReporter(repos Repos) *Reporter {
	return &Reporter{banks: repos.Banks(), stats: repos.Stats(), events: repos.Events()}
}

// Report is the full system report printed by the stats command.
type Report struct {
	Overview     store.Overview
	PerObjective []store.ObjectiveBankStats
	RecentBanks  []store.Bank
	Students     store.StudentStats
}

// Report gathers every section. recent <= 0 uses DefaultRecent.
func (r *Reporter) Report(ctx context.Context, recent int) (*Report, error) {
	ov, err := r.stats.Overview(ctx)
	if err != nil {
		return nil, err
	}
	per, err := r.stats.PerObjective(ctx)
	if err != nil {
		return nil, err
	}
	banks, err := r.RecentBanks(ctx, recent)
	if err != nil {
		return nil, err
	}
	st, err := r.stats.Students(ctx)
	if err != nil {
		return nil, err
	}
	return &Report{Overview: *ov, PerObjective: per, RecentBanks: banks, Students: *st}, nil
}

func (r *Reporter) Overview(ctx context.Context) (*store.Overview, error) {
	return r.stats.Overview(ctx)
}

// PerObjective lists active-bank aggregates, most banks first.
func (r *Reporter) PerObjective(ctx context.Context) ([]store.ObjectiveBankStats, error) {
	return r.stats.PerObjective(ctx)
}

// RecentBanks lists active banks, newest first.
func (r *Reporter) RecentBanks(ctx context.Context, limit int) ([]store.Bank, error) {
	if limit <= 0 {
		limit = DefaultRecent
	}
	return r.banks.ListBanks(ctx, store.BankFilter{ActiveOnly: true, Limit: limit})
}

func (r *Reporter) Students(ctx context.Context) (*store.StudentStats, error) {
	return r.stats.Students(ctx)
}

// GetStats reports one objective. Unknown ids fail with store.ErrNotFound.
func (r *Reporter) GetStats(ctx context.Context, objectiveID int) (*store.ObjectiveStats, error) {
	return r.stats.ObjectiveStats(ctx, objectiveID)
}

// LLMCost is the usage of one model with its estimated price.
type LLMCost struct {
	store.LLMUsage

	// CostUSD is nil when the model has no known pricing.
	CostUSD *float64
}

// LLMCosts groups recorded LLM calls by model and prices them, most
// expensive first. Unpriced models sort last.
func (r *Reporter) LLMCosts(ctx context.Context) ([]LLMCost, float64, error) {
	usage, err := r.events.LLMUsageByModel(ctx)
	if err != nil {
		return nil, 0, err
	}
	out := make([]LLMCost, len(usage))
	var total float64
	for i, u := range usage {
		out[i] = LLMCost{LLMUsage: u}
		if c := llm.LookupCost(u.Key); c != nil {
			cost := c.Cost(u.InputTokens, u.OutputTokens)
			out[i].CostUSD = &cost
			total += cost
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		ci, cj := out[i].CostUSD, out[j].CostUSD
		switch {
		case ci == nil:
			return false
		case cj == nil:
			return true
		default:
			return *ci > *cj
		}
	})
	return out, total, nil
}

// LLMByPurpose groups recorded LLM calls by purpose tag.
func (r *Reporter) LLMByPurpose(ctx context.Context) ([]store.LLMUsage, error) {
	return r.events.LLMUsageByPurpose(ctx)
}

// RecentLLMRequests lists the latest recorded calls.
func (r *Reporter) RecentLLMRequests(ctx context.Context, limit int) ([]store.LLMRequestEvent, error) {
	return r.events.RecentLLMRequests(ctx, limit)
}
