package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	entsql "entgo.io/ent/dialect/sql"
)

type statsRepo struct {
	db *sql.DB
}

func coalesce(expr string) string {
	return "COALESCE(" + expr + ", 0)"
}

func (r *statsRepo) Overview(ctx context.Context) (*Overview, error) {
	var o Overview
	err := queryRow(ctx, r.db, builder.Select(
		coalesce("SUM(CASE WHEN is_active THEN 1 ELSE 0 END)"),
		coalesce("SUM(CASE WHEN is_active THEN 0 ELSE 1 END)"),
		coalesce("SUM(CASE WHEN is_active THEN usage_count ELSE 0 END)"),
		"COUNT(DISTINCT CASE WHEN is_active THEN objective_id END)",
		coalesce("SUM(CASE WHEN is_active THEN questions_count ELSE 0 END)"),
	).From(builder.Table(tableBanks))).
		Scan(&o.ActiveBanks, &o.InactiveBanks, &o.TotalUsage, &o.ObjectivesCovered, &o.TotalQuestions)
	if err != nil {
		return nil, persistErr("bank overview", err)
	}
	if o.ActiveBanks > 0 {
		o.AvgUsage = float64(o.TotalUsage) / float64(o.ActiveBanks)
	}
	return &o, nil
}

func (r *statsRepo) PerObjective(ctx context.Context) ([]ObjectiveBankStats, error) {
	b := builder.Table(tableBanks).As("b")
	o := builder.Table(tableObjectives).As("o")
	sel := builder.Select(
		o.C("id"), o.C("objective_text"),
		entsql.As(entsql.Count(b.C("id")), "banks"),
		coalesce(entsql.Sum(b.C("usage_count"))),
		coalesce(entsql.Min(b.C("difficulty_level"))),
		coalesce(entsql.Avg(b.C("difficulty_level"))),
		coalesce(entsql.Max(b.C("difficulty_level"))),
	).
		From(b).
		Join(o).On(b.C("objective_id"), o.C("id")).
		Where(entsql.EQ(b.C("is_active"), true)).
		GroupBy(o.C("id"), o.C("objective_text")).
		OrderBy(entsql.Desc("banks"), entsql.Asc(o.C("id")))

	rows, err := queryRows(ctx, r.db, sel)
	if err != nil {
		return nil, persistErr("per-objective stats", err)
	}
	defer rows.Close()

	var out []ObjectiveBankStats
	for rows.Next() {
		var s ObjectiveBankStats
		if err := rows.Scan(&s.ObjectiveID, &s.ObjectiveText, &s.Banks, &s.TotalUsage,
			&s.MinDifficulty, &s.AvgDifficulty, &s.MaxDifficulty); err != nil {
			return nil, persistErr("scan per-objective stats", err)
		}
		if s.Banks > 0 {
			s.AvgUsage = float64(s.TotalUsage) / float64(s.Banks)
		}
		out = append(out, s)
	}
	return out, persistErr("per-objective stats", rows.Err())
}

func (r *statsRepo) Students(ctx context.Context) (*StudentStats, error) {
	var (
		s   StudentStats
		avg sql.NullFloat64
	)
	err := queryRow(ctx, r.db, builder.Select(
		"COUNT(DISTINCT student_id)",
		entsql.Count("*"),
		entsql.Count("completed_at"),
		entsql.Avg("score_percentage"),
	).From(builder.Table(tableUsage))).
		Scan(&s.UniqueStudents, &s.Assignments, &s.Completions, &avg)
	if err != nil {
		return nil, persistErr("student stats", err)
	}
	if avg.Valid {
		s.AvgScore, s.HasScores = avg.Float64, true
	}
	return &s, nil
}

func (r *statsRepo) ObjectiveStats(ctx context.Context, objectiveID int) (*ObjectiveStats, error) {
	var objID int
	err := queryRow(ctx, r.db, builder.Select("id").
		From(builder.Table(tableObjectives)).
		Where(entsql.EQ("id", objectiveID))).Scan(&objID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound("objective", objectiveID)
	}
	if err != nil {
		return nil, persistErr("lookup objective", err)
	}

	st := &ObjectiveStats{ObjectiveID: objectiveID}
	active := entsql.And(entsql.EQ("objective_id", objectiveID), entsql.EQ("is_active", true))

	err = queryRow(ctx, r.db, builder.Select(entsql.Count("*"), coalesce(entsql.Sum("usage_count"))).
		From(builder.Table(tableBanks)).
		Where(active)).Scan(&st.Banks, &st.TotalUsage)
	if err != nil {
		return nil, persistErr("objective bank stats", err)
	}
	if st.Banks > 0 {
		st.AvgUsage = float64(st.TotalUsage) / float64(st.Banks)
		// Aggregates drop the column type, so read the extremes as plain rows.
		if st.Oldest, err = r.bankTime(ctx, objectiveID, entsql.Asc("created_at")); err != nil {
			return nil, err
		}
		if st.Newest, err = r.bankTime(ctx, objectiveID, entsql.Desc("created_at")); err != nil {
			return nil, err
		}
	}

	u := builder.Table(tableUsage).As("u")
	b := builder.Table(tableBanks).As("b")
	var avg sql.NullFloat64
	err = queryRow(ctx, r.db, builder.Select(entsql.Count(u.C("completed_at")), entsql.Avg(u.C("score_percentage"))).
		From(u).
		Join(b).On(u.C("quiz_bank_id"), b.C("id")).
		Where(entsql.EQ(b.C("objective_id"), objectiveID))).
		Scan(&st.Completions, &avg)
	if err != nil {
		return nil, persistErr("objective completion stats", err)
	}
	if avg.Valid {
		st.AvgScore, st.HasScores = avg.Float64, true
	}
	return st, nil
}

func (r *statsRepo) bankTime(ctx context.Context, objectiveID int, order string) (*time.Time, error) {
	var t time.Time
	err := queryRow(ctx, r.db, builder.Select("created_at").
		From(builder.Table(tableBanks)).
		Where(entsql.And(entsql.EQ("objective_id", objectiveID), entsql.EQ("is_active", true))).
		OrderBy(order).
		Limit(1)).Scan(&t)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, persistErr("objective bank timestamps", err)
	}
	t = t.UTC()
	return &t, nil
}
