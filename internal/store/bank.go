package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	entsql "entgo.io/ent/dialect/sql"
)

type bankRepo struct {
	db *sql.DB
}

var bankColumns = []string{
	"id", "objective_id", "difficulty_level", "questions_count", "generation_source",
	"usage_count", "is_active", "created_at", "last_used",
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanBank(s rowScanner) (*Bank, error) {
	var (
		b        Bank
		source   string
		lastUsed sql.NullTime
	)
	if err := s.Scan(&b.ID, &b.ObjectiveID, &b.Difficulty, &b.QuestionsCount, &source,
		&b.UsageCount, &b.IsActive, &b.CreatedAt, &lastUsed); err != nil {
		return nil, err
	}
	b.Source = GenerationSource(source)
	b.LastUsed = timePtr(lastUsed)
	return &b, nil
}

// windowPredicate matches active banks of one objective inside [lo, hi].
func windowPredicate(objectiveID int, lo, hi float64) *entsql.Predicate {
	return entsql.And(
		entsql.EQ("objective_id", objectiveID),
		entsql.EQ("is_active", true),
		entsql.GTE("difficulty_level", lo),
		entsql.LTE("difficulty_level", hi),
	)
}

func (r *bankRepo) FindCandidate(ctx context.Context, studentID, objectiveID int, lo, hi float64) (*Bank, error) {
	return findCandidate(ctx, r.db, studentID, objectiveID, lo, hi)
}

func (r *bankRepo) ClaimCandidate(ctx context.Context, a Assignment, objectiveID int, lo, hi float64) (*Bank, error) {
	var claimed *Bank
	err := withTx(ctx, r.db, func(tx *sql.Tx) error {
		b, err := findCandidate(ctx, tx, a.StudentID, objectiveID, lo, hi)
		if err != nil || b == nil {
			return err
		}
		inserted, err := assign(ctx, tx, a.StudentID, b.ID, a.EnrollmentID)
		if err != nil {
			return err
		}
		if inserted {
			b.UsageCount++
		}
		claimed = b
		return nil
	})
	if err != nil {
		return nil, err
	}
	return claimed, nil
}

func findCandidate(ctx context.Context, q querier, studentID, objectiveID int, lo, hi float64) (*Bank, error) {
	seen := builder.Select("quiz_bank_id").
		From(builder.Table(tableUsage)).
		Where(entsql.EQ("student_id", studentID))

	sel := builder.Select(bankColumns...).
		From(builder.Table(tableBanks)).
		Where(entsql.And(
			windowPredicate(objectiveID, lo, hi),
			entsql.NotIn("id", seen),
		)).
		OrderBy(entsql.Asc("usage_count"), entsql.Asc("created_at"), entsql.Asc("id")).
		Limit(1)

	b, err := scanBank(queryRow(ctx, q, sel))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, persistErr("find candidate bank", err)
	}
	return b, nil
}

func (r *bankRepo) HasActiveInWindow(ctx context.Context, objectiveID int, lo, hi float64) (bool, error) {
	var id int
	err := queryRow(ctx, r.db, builder.Select("id").
		From(builder.Table(tableBanks)).
		Where(windowPredicate(objectiveID, lo, hi)).
		Limit(1)).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, persistErr("check bank window", err)
	}
	return true, nil
}

func (r *bankRepo) CreateBank(ctx context.Context, nb NewBank) (*Bank, error) {
	if len(nb.Questions) == 0 {
		return nil, errors.New("create bank: no questions")
	}

	ts := now()
	bank := &Bank{
		ObjectiveID:    nb.ObjectiveID,
		Difficulty:     nb.Difficulty,
		QuestionsCount: len(nb.Questions),
		Source:         nb.Source,
		IsActive:       true,
		CreatedAt:      ts,
	}
	var lastUsed any
	if nb.Assign != nil {
		bank.UsageCount = 1
		bank.LastUsed = &ts
		lastUsed = ts
	}

	err := withTx(ctx, r.db, func(tx *sql.Tx) error {
		var objID int
		err := queryRow(ctx, tx, builder.Select("id").
			From(builder.Table(tableObjectives)).
			Where(entsql.EQ("id", nb.ObjectiveID))).Scan(&objID)
		if errors.Is(err, sql.ErrNoRows) {
			return notFound("objective", nb.ObjectiveID)
		}
		if err != nil {
			return persistErr("lookup objective", err)
		}

		bank.ID, err = insertID(ctx, tx, builder.Insert(tableBanks).
			Columns("objective_id", "difficulty_level", "questions_count", "generation_source",
				"usage_count", "is_active", "created_at", "last_used").
			Values(bank.ObjectiveID, bank.Difficulty, bank.QuestionsCount, string(bank.Source),
				bank.UsageCount, true, ts, lastUsed))
		if err != nil {
			return persistErr("insert bank", err)
		}

		for i, q := range nb.Questions {
			qid, err := insertID(ctx, tx, builder.Insert(tableQuestions).
				Columns("objective_id", "question_text", "option_a", "option_b", "option_c", "option_d",
					"correct_option", "explanation", "difficulty_level", "cognitive_level", "created_at").
				Values(nb.ObjectiveID, q.Text, q.Options[0], q.Options[1], q.Options[2], q.Options[3],
					string(q.Correct), q.Explanation, nb.Difficulty, string(q.Cognitive), ts))
			if err != nil {
				return persistErr(fmt.Sprintf("insert question %d", i+1), err)
			}
			if _, err := exec(ctx, tx, builder.Insert(tableBankLinks).
				Columns("quiz_bank_id", "question_id", "order_index").
				Values(bank.ID, qid, i+1)); err != nil {
				return persistErr(fmt.Sprintf("link question %d", i+1), err)
			}
		}

		if a := nb.Assign; a != nil {
			if _, err := exec(ctx, tx, builder.Insert(tableUsage).
				Columns("student_id", "quiz_bank_id", "enrollment_id", "assigned_at").
				Values(a.StudentID, bank.ID, a.EnrollmentID, ts)); err != nil {
				return persistErr("insert assignment", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return bank, nil
}

func (r *bankRepo) Bank(ctx context.Context, id int) (*Bank, error) {
	return loadBank(ctx, r.db, id)
}

func loadBank(ctx context.Context, q querier, id int) (*Bank, error) {
	b, err := scanBank(queryRow(ctx, q, builder.Select(bankColumns...).
		From(builder.Table(tableBanks)).
		Where(entsql.EQ("id", id))))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound("bank", id)
	}
	if err != nil {
		return nil, persistErr("load bank", err)
	}
	return b, nil
}

func (r *bankRepo) BankQuestions(ctx context.Context, bankID int) ([]Question, error) {
	if _, err := loadBank(ctx, r.db, bankID); err != nil {
		return nil, err
	}

	l := builder.Table(tableBankLinks).As("l")
	q := builder.Table(tableQuestions).As("q")
	sel := builder.Select(
		q.C("id"), q.C("objective_id"), q.C("question_text"),
		q.C("option_a"), q.C("option_b"), q.C("option_c"), q.C("option_d"),
		q.C("correct_option"), q.C("explanation"), q.C("difficulty_level"), q.C("cognitive_level"),
		l.C("order_index"),
	).
		From(l).
		Join(q).On(l.C("question_id"), q.C("id")).
		Where(entsql.EQ(l.C("quiz_bank_id"), bankID)).
		OrderBy(entsql.Asc(l.C("order_index")))

	rows, err := queryRows(ctx, r.db, sel)
	if err != nil {
		return nil, persistErr("load bank questions", err)
	}
	defer rows.Close()

	var out []Question
	for rows.Next() {
		var (
			qu        Question
			correct   string
			cognitive string
		)
		if err := rows.Scan(&qu.ID, &qu.ObjectiveID, &qu.Text,
			&qu.Options[0], &qu.Options[1], &qu.Options[2], &qu.Options[3],
			&correct, &qu.Explanation, &qu.Difficulty, &cognitive, &qu.Order); err != nil {
			return nil, persistErr("scan question", err)
		}
		qu.Correct = Option(correct)
		qu.Cognitive = CognitiveLevel(cognitive)
		out = append(out, qu)
	}
	return out, persistErr("load bank questions", rows.Err())
}

func (r *bankRepo) ListBanks(ctx context.Context, f BankFilter) ([]Bank, error) {
	sel := builder.Select(bankColumns...).
		From(builder.Table(tableBanks)).
		OrderBy(entsql.Desc("created_at"), entsql.Desc("id"))

	var preds []*entsql.Predicate
	if f.ObjectiveID > 0 {
		preds = append(preds, entsql.EQ("objective_id", f.ObjectiveID))
	}
	if f.ActiveOnly {
		preds = append(preds, entsql.EQ("is_active", true))
	}
	if len(preds) > 0 {
		sel.Where(entsql.And(preds...))
	}
	if f.Limit > 0 {
		sel.Limit(f.Limit)
	}

	rows, err := queryRows(ctx, r.db, sel)
	if err != nil {
		return nil, persistErr("list banks", err)
	}
	defer rows.Close()

	var out []Bank
	for rows.Next() {
		b, err := scanBank(rows)
		if err != nil {
			return nil, persistErr("scan bank", err)
		}
		out = append(out, *b)
	}
	return out, persistErr("list banks", rows.Err())
}

func (r *bankRepo) DeactivateBank(ctx context.Context, id int) error {
	res, err := exec(ctx, r.db, builder.Update(tableBanks).
		Set("is_active", false).
		Where(entsql.EQ("id", id)))
	if err != nil {
		return persistErr("deactivate bank", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return notFound("bank", id)
	}
	return nil
}

func (r *bankRepo) VerifyIntegrity(ctx context.Context) ([]int, error) {
	var broken []int
	err := withTx(ctx, r.db, func(tx *sql.Tx) error {
		b := builder.Table(tableBanks).As("b")
		l := builder.Table(tableBankLinks).As("l")
		sel := builder.Select(b.C("id")).
			From(b).
			LeftJoin(l).On(b.C("id"), l.C("quiz_bank_id")).
			Where(entsql.EQ(b.C("is_active"), true)).
			GroupBy(b.C("id"), b.C("questions_count")).
			Having(entsql.ExprP("COUNT(`l`.`id`) <> `b`.`questions_count` OR COUNT(`l`.`id`) = 0")).
			OrderBy(entsql.Asc(b.C("id")))

		rows, err := queryRows(ctx, tx, sel)
		if err != nil {
			return persistErr("scan bank integrity", err)
		}
		for rows.Next() {
			var id int
			if err := rows.Scan(&id); err != nil {
				rows.Close()
				return persistErr("scan bank integrity", err)
			}
			broken = append(broken, id)
		}
		rows.Close()
		if err := rows.Err(); err != nil {
			return persistErr("scan bank integrity", err)
		}
		if len(broken) == 0 {
			return nil
		}

		ids := make([]any, len(broken))
		for i, id := range broken {
			ids[i] = id
		}
		_, err = exec(ctx, tx, builder.Update(tableBanks).
			Set("is_active", false).
			Where(entsql.In("id", ids...)))
		return persistErr("deactivate broken banks", err)
	})
	if err != nil {
		return nil, err
	}
	return broken, nil
}
