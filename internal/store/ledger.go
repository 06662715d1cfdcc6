package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	entsql "entgo.io/ent/dialect/sql"
)

type ledgerRepo struct {
	db *sql.DB
}

func (r *ledgerRepo) MarkAssigned(ctx context.Context, studentID, bankID, enrollmentID int) (bool, error) {
	var inserted bool
	err := withTx(ctx, r.db, func(tx *sql.Tx) error {
		b, err := loadBank(ctx, tx, bankID)
		if err != nil {
			return err
		}
		if !b.IsActive {
			return fmt.Errorf("bank %d: %w", bankID, ErrBankInactive)
		}
		inserted, err = assign(ctx, tx, studentID, bankID, enrollmentID)
		return err
	})
	return inserted, err
}

// assign inserts the (student, bank) row if absent and bumps the bank's
// usage counters when it did. The caller has checked the bank is active.
func assign(ctx context.Context, tx *sql.Tx, studentID, bankID, enrollmentID int) (bool, error) {
	ts := now()
	res, err := exec(ctx, tx, builder.Insert(tableUsage).
		Columns("student_id", "quiz_bank_id", "enrollment_id", "assigned_at").
		Values(studentID, bankID, enrollmentID, ts).
		OnConflict(entsql.ConflictColumns("student_id", "quiz_bank_id"), entsql.DoNothing()))
	if err != nil {
		return false, persistErr("insert assignment", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, persistErr("insert assignment", err)
	}
	if n == 0 {
		return false, nil
	}

	_, err = exec(ctx, tx, builder.Update(tableBanks).
		Add("usage_count", 1).
		Set("last_used", ts).
		Where(entsql.EQ("id", bankID)))
	if err != nil {
		return false, persistErr("bump bank usage", err)
	}
	return true, nil
}

func (r *ledgerRepo) RecordCompletion(ctx context.Context, studentID, bankID int, score, masteryChange float64) error {
	return withTx(ctx, r.db, func(tx *sql.Tx) error {
		res, err := exec(ctx, tx, builder.Update(tableUsage).
			Set("score_percentage", score).
			Set("mastery_change", masteryChange).
			Set("completed_at", now()).
			Where(entsql.And(
				entsql.EQ("student_id", studentID),
				entsql.EQ("quiz_bank_id", bankID),
				entsql.IsNull("completed_at"),
			)))
		if err != nil {
			return persistErr("record completion", err)
		}
		if n, _ := res.RowsAffected(); n == 1 {
			return nil
		}

		// Nothing updated: either no assignment or it is already closed.
		if _, err := entry(ctx, tx, studentID, bankID); err != nil {
			return err
		}
		return ErrAlreadyCompleted
	})
}

func (r *ledgerRepo) Entry(ctx context.Context, studentID, bankID int) (*LedgerEntry, error) {
	return entry(ctx, r.db, studentID, bankID)
}

func ledgerSelect() (*entsql.Selector, *entsql.SelectTable) {
	u := builder.Table(tableUsage).As("u")
	b := builder.Table(tableBanks).As("b")
	sel := builder.Select(
		u.C("id"), u.C("student_id"), u.C("enrollment_id"), u.C("quiz_bank_id"),
		b.C("objective_id"), b.C("difficulty_level"),
		u.C("assigned_at"), u.C("score_percentage"), u.C("mastery_change"), u.C("completed_at"),
	).
		From(u).
		Join(b).On(u.C("quiz_bank_id"), b.C("id"))
	return sel, u
}

func scanEntry(s rowScanner) (*LedgerEntry, error) {
	var (
		e         LedgerEntry
		score     sql.NullFloat64
		mastery   sql.NullFloat64
		completed sql.NullTime
	)
	if err := s.Scan(&e.ID, &e.StudentID, &e.EnrollmentID, &e.BankID, &e.ObjectiveID, &e.Difficulty,
		&e.AssignedAt, &score, &mastery, &completed); err != nil {
		return nil, err
	}
	e.ScorePercent = floatPtr(score)
	e.MasteryChange = floatPtr(mastery)
	e.CompletedAt = timePtr(completed)
	return &e, nil
}

func entry(ctx context.Context, q querier, studentID, bankID int) (*LedgerEntry, error) {
	sel, u := ledgerSelect()
	sel.Where(entsql.And(
		entsql.EQ(u.C("student_id"), studentID),
		entsql.EQ(u.C("quiz_bank_id"), bankID),
	))

	e, err := scanEntry(queryRow(ctx, q, sel))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound("assignment for bank", bankID)
	}
	if err != nil {
		return nil, persistErr("load assignment", err)
	}
	return e, nil
}

func (r *ledgerRepo) History(ctx context.Context, studentID int) ([]LedgerEntry, error) {
	sel, u := ledgerSelect()
	sel.Where(entsql.EQ(u.C("student_id"), studentID)).
		OrderBy(entsql.Asc(u.C("assigned_at")), entsql.Asc(u.C("id")))

	rows, err := queryRows(ctx, r.db, sel)
	if err != nil {
		return nil, persistErr("load history", err)
	}
	defer rows.Close()

	var out []LedgerEntry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, persistErr("scan history", err)
		}
		out = append(out, *e)
	}
	return out, persistErr("load history", rows.Err())
}
