package store

import (
	"context"
	"database/sql"

	entsql "entgo.io/ent/dialect/sql"
)

type eventRepo struct {
	db *sql.DB
}

func (r *eventRepo) AppendLLMRequest(ctx context.Context, ev LLMRequestEvent) error {
	ts := ev.Timestamp
	if ts.IsZero() {
		ts = now()
	}
	_, err := exec(ctx, r.db, builder.Insert(tableLLMEvents).
		Columns("timestamp", "provider", "model", "purpose", "input_tokens", "output_tokens",
			"latency_ms", "success", "error_message").
		Values(ts.UTC(), ev.Provider, ev.Model, ev.Purpose, ev.InputTokens, ev.OutputTokens,
			ev.LatencyMs, ev.Success, ev.ErrorMessage))
	return persistErr("save LLM request event", err)
}

func (r *eventRepo) RecentLLMRequests(ctx context.Context, limit int) ([]LLMRequestEvent, error) {
	sel := builder.Select("id", "timestamp", "provider", "model", "purpose", "input_tokens",
		"output_tokens", "latency_ms", "success", "error_message").
		From(builder.Table(tableLLMEvents)).
		OrderBy(entsql.Desc("id"))
	if limit > 0 {
		sel.Limit(limit)
	}

	rows, err := queryRows(ctx, r.db, sel)
	if err != nil {
		return nil, persistErr("list LLM requests", err)
	}
	defer rows.Close()

	var out []LLMRequestEvent
	for rows.Next() {
		var e LLMRequestEvent
		if err := rows.Scan(&e.ID, &e.Timestamp, &e.Provider, &e.Model, &e.Purpose, &e.InputTokens,
			&e.OutputTokens, &e.LatencyMs, &e.Success, &e.ErrorMessage); err != nil {
			return nil, persistErr("scan LLM request", err)
		}
		out = append(out, e)
	}
	return out, persistErr("list LLM requests", rows.Err())
}

func (r *eventRepo) LLMUsageByModel(ctx context.Context) ([]LLMUsage, error) {
	return r.usageBy(ctx, "model")
}

func (r *eventRepo) LLMUsageByPurpose(ctx context.Context) ([]LLMUsage, error) {
	return r.usageBy(ctx, "purpose")
}

func (r *eventRepo) usageBy(ctx context.Context, column string) ([]LLMUsage, error) {
	sel := builder.Select(
		column,
		entsql.As(entsql.Count("*"), "requests"),
		coalesce("SUM(CASE WHEN success THEN 0 ELSE 1 END)"),
		coalesce(entsql.Sum("input_tokens")),
		coalesce(entsql.Sum("output_tokens")),
		coalesce(entsql.Avg("latency_ms")),
	).
		From(builder.Table(tableLLMEvents)).
		GroupBy(column).
		OrderBy(entsql.Desc("requests"), entsql.Asc(column))

	rows, err := queryRows(ctx, r.db, sel)
	if err != nil {
		return nil, persistErr("LLM usage by "+column, err)
	}
	defer rows.Close()

	var out []LLMUsage
	for rows.Next() {
		var u LLMUsage
		if err := rows.Scan(&u.Key, &u.Requests, &u.Failures, &u.InputTokens, &u.OutputTokens, &u.AvgLatencyMs); err != nil {
			return nil, persistErr("scan LLM usage", err)
		}
		out = append(out, u)
	}
	return out, persistErr("LLM usage by "+column, rows.Err())
}
