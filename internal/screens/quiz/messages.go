package quiz

import "github.com/abhisek/quizbank/internal/quizbank"

// allocatedMsg carries the bank handed out for this quiz.
type allocatedMsg struct {
	Alloc *quizbank.Allocation
	Err   error
}

// completedMsg is sent once the outcome has been written to the ledger.
type completedMsg struct {
	Score quizbank.Score
	Err   error
}
