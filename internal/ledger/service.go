// Package ledger records which quiz banks each student has been given and
// how they did on them. Rows are permanent: an assignment is written once
// and completed at most once.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/abhisek/quizbank/internal/logger"
	"github.com/abhisek/quizbank/internal/quizbank"
	"github.com/abhisek/quizbank/internal/store"
)

// ErrInvalidOutcome reports a score or mastery change out of range.
var ErrInvalidOutcome = errors.New("invalid completion outcome")

// Repos is the storage the service needs; *store.Store satisfies it.
type Repos interface {
	Banks() store.BankRepo
	Ledger() store.LedgerRepo
}

// Service wraps the ledger repository with validation and logging.
type Service struct {
	banks  store.BankRepo
	ledger store.LedgerRepo
	log    *logger.Logger
}

// NewService creates a ledger service. log may be nil.
func NewService(repos Repos, log *logger.Logger) *Service {
	if log == nil {
		log = logger.Nop()
	}
	return &Service{banks: repos.Banks(), ledger: repos.Ledger(), log: log}
}

// MarkAssigned records that studentID received bankID. Calling it again
// for the same pair changes nothing and is not an error.
func (s *Service) MarkAssigned(ctx context.Context, studentID, bankID, enrollmentID int) error {
	inserted, err := s.ledger.MarkAssigned(ctx, studentID, bankID, enrollmentID)
	if err != nil {
		return err
	}
	if inserted {
		s.log.Info("bank assigned", "student", studentID, "bank", bankID, "enrollment", enrollmentID)
	}
	return nil
}

// RecordCompletion stores the outcome of an open assignment. It fails with
// store.ErrNotFound when the student was never assigned the bank and with
// store.ErrAlreadyCompleted when an outcome was already recorded.
func (s *Service) RecordCompletion(ctx context.Context, studentID, bankID int, score, masteryChange float64) error {
	if err := checkOutcome(score, masteryChange); err != nil {
		return err
	}
	if err := s.ledger.RecordCompletion(ctx, studentID, bankID, score, masteryChange); err != nil {
		return err
	}
	s.log.Info("quiz completed",
		"student", studentID,
		"bank", bankID,
		"score", score,
		"mastery_change", masteryChange,
	)
	return nil
}

// Complete grades answers against the bank's questions and records the
// result.
func (s *Service) Complete(ctx context.Context, studentID, bankID int, answers map[int]store.Option, masteryChange float64) (quizbank.Score, error) {
	qs, err := s.banks.BankQuestions(ctx, bankID)
	if err != nil {
		return quizbank.Score{}, err
	}
	score := quizbank.Grade(qs, answers)
	if err := s.RecordCompletion(ctx, studentID, bankID, score.Percentage, masteryChange); err != nil {
		return score, err
	}
	return score, nil
}

func (s *Service) Entry(ctx context.Context, studentID, bankID int) (*store.LedgerEntry, error) {
	return s.ledger.Entry(ctx, studentID, bankID)
}

// History lists a student's assignments, oldest first.
func (s *Service) History(ctx context.Context, studentID int) ([]store.LedgerEntry, error) {
	return s.ledger.History(ctx, studentID)
}

func checkOutcome(score, masteryChange float64) error {
	if math.IsNaN(score) || score < 0 || score > 100 {
		return fmt.Errorf("%w: score %v outside [0,100]", ErrInvalidOutcome, score)
	}
	if math.IsNaN(masteryChange) || masteryChange < -1 || masteryChange > 1 {
		return fmt.Errorf("%w: mastery change %v outside [-1,1]", ErrInvalidOutcome, masteryChange)
	}
	return nil
}
