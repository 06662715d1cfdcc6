package store

import (
	"context"
	"time"
)

// Option is the letter of a multiple-choice slot.
type Option string

const (
	OptionA Option = "A"
	OptionB Option = "B"
	OptionC Option = "C"
	OptionD Option = "D"
)

// Options lists the slots in presentation order.
var Options = [4]Option{OptionA, OptionB, OptionC, OptionD}

// Index returns the 0-based slot position, or -1 for an invalid letter.
func (o Option) Index() int {
	for i, v := range Options {
		if v == o {
			return i
		}
	}
	return -1
}

// CognitiveLevel is the Bloom level recorded with each question.
type CognitiveLevel string

const (
	CognitiveRemember   CognitiveLevel = "remember"
	CognitiveUnderstand CognitiveLevel = "understand"
	CognitiveApply      CognitiveLevel = "apply"
)

// GenerationSource records which generator produced a bank.
type GenerationSource string

const (
	SourceAI       GenerationSource = "ai"
	SourceTemplate GenerationSource = "template"
)

// Unit groups learning objectives.
type Unit struct {
	ID          int
	Name        string
	Description string
	CreatedAt   time.Time
}

// Objective is a teachable learning goal. Immutable after creation.
type Objective struct {
	ID        int
	UnitID    int
	Text      string
	CreatedAt time.Time
}

// Bank is a persisted, reusable question set for one objective/difficulty.
type Bank struct {
	ID             int
	ObjectiveID    int
	Difficulty     float64
	QuestionsCount int
	Source         GenerationSource
	UsageCount     int
	IsActive       bool
	CreatedAt      time.Time
	LastUsed       *time.Time
}

// Question is a stored multiple-choice item as linked into a bank.
type Question struct {
	ID          int
	ObjectiveID int
	Text        string
	Options     [4]string
	Correct     Option
	Explanation string
	Difficulty  float64
	Cognitive   CognitiveLevel

	// Order is the 1-based position within the bank it was loaded from.
	Order int
}

// NewQuestion is a shuffled question ready to persist.
type NewQuestion struct {
	Text        string
	Options     [4]string
	Correct     Option
	Explanation string
	Cognitive   CognitiveLevel
}

// Assignment identifies the student receiving a bank.
type Assignment struct {
	StudentID    int
	EnrollmentID int
}

// NewBank is everything CreateBank writes in one transaction. When Assign is
// nil the bank is stored unassigned with a zero usage count.
type NewBank struct {
	ObjectiveID int
	Difficulty  float64
	Source      GenerationSource
	Questions   []NewQuestion
	Assign      *Assignment
}

// LedgerEntry is one student's assignment of one bank.
type LedgerEntry struct {
	ID            int
	StudentID     int
	EnrollmentID  int
	BankID        int
	ObjectiveID   int
	Difficulty    float64
	AssignedAt    time.Time
	ScorePercent  *float64
	MasteryChange *float64
	CompletedAt   *time.Time
}

// Completed reports whether the assignment has a recorded outcome.
func (e LedgerEntry) Completed() bool { return e.CompletedAt != nil }

// BankFilter narrows ListBanks. Zero values mean "any".
type BankFilter struct {
	ObjectiveID int
	ActiveOnly  bool
	Limit       int
}

// Overview aggregates over all active banks.
type Overview struct {
	ActiveBanks       int
	InactiveBanks     int
	TotalUsage        int
	AvgUsage          float64
	ObjectivesCovered int
	TotalQuestions    int
}

// ObjectiveBankStats aggregates the active banks of one objective.
type ObjectiveBankStats struct {
	ObjectiveID   int
	ObjectiveText string
	Banks         int
	TotalUsage    int
	AvgUsage      float64
	MinDifficulty float64
	AvgDifficulty float64
	MaxDifficulty float64
}

// StudentStats aggregates the usage ledger.
type StudentStats struct {
	UniqueStudents int
	Assignments    int
	Completions    int
	AvgScore       float64
	// HasScores is false when no completion has been recorded, so AvgScore
	// is a placeholder zero.
	HasScores bool
}

// ObjectiveStats is the per-objective report.
type ObjectiveStats struct {
	ObjectiveID int
	Banks       int
	TotalUsage  int
	AvgUsage    float64
	Oldest      *time.Time
	Newest      *time.Time
	Completions int
	AvgScore    float64
	HasScores   bool
}

// LLMRequestEvent is one recorded provider call.
type LLMRequestEvent struct {
	ID           int
	Timestamp    time.Time
	Provider     string
	Model        string
	Purpose      string
	InputTokens  int
	OutputTokens int
	LatencyMs    int64
	Success      bool
	ErrorMessage string
}

// LLMUsage groups request events by model or purpose.
type LLMUsage struct {
	Key          string
	Requests     int
	Failures     int
	InputTokens  int
	OutputTokens int
	AvgLatencyMs float64
}

// ObjectiveRepo stores units and objectives.
type ObjectiveRepo interface {
	CreateUnit(ctx context.Context, name, description string) (*Unit, error)
	CreateObjective(ctx context.Context, unitID int, text string) (*Objective, error)

	// ObjectiveText returns the text of an objective or ErrNotFound.
	ObjectiveText(ctx context.Context, id int) (string, error)

	Objective(ctx context.Context, id int) (*Objective, error)

	// ListObjectives returns objectives ordered by id; unitID 0 lists all.
	ListObjectives(ctx context.Context, unitID int) ([]Objective, error)
	ListUnits(ctx context.Context) ([]Unit, error)
}

// BankRepo stores quiz banks and their questions.
type BankRepo interface {
	// FindCandidate returns the best active bank for objectiveID whose
	// difficulty lies in [lo, hi] and which studentID has never been
	// assigned, ordered by usage_count then created_at. nil when none.
	FindCandidate(ctx context.Context, studentID, objectiveID int, lo, hi float64) (*Bank, error)

	// ClaimCandidate finds the same candidate as FindCandidate and assigns
	// it to a.StudentID in one transaction, so the bank cannot be
	// deactivated or claimed twice by the student in between. nil when
	// there is no candidate.
	ClaimCandidate(ctx context.Context, a Assignment, objectiveID int, lo, hi float64) (*Bank, error)

	// HasActiveInWindow reports whether any active bank exists in [lo, hi].
	HasActiveInWindow(ctx context.Context, objectiveID int, lo, hi float64) (bool, error)

	// CreateBank writes the bank, its questions, their links and the
	// optional assignment in one transaction.
	CreateBank(ctx context.Context, nb NewBank) (*Bank, error)

	Bank(ctx context.Context, id int) (*Bank, error)
	BankQuestions(ctx context.Context, bankID int) ([]Question, error)
	ListBanks(ctx context.Context, f BankFilter) ([]Bank, error)
	DeactivateBank(ctx context.Context, id int) error

	// VerifyIntegrity deactivates active banks whose linked question count
	// disagrees with questions_count and returns their ids.
	VerifyIntegrity(ctx context.Context) ([]int, error)
}

// LedgerRepo stores per-student bank assignments.
type LedgerRepo interface {
	// MarkAssigned inserts the (student, bank) row if absent and bumps the
	// bank's usage counters when it did. Repeated calls are no-ops.
	// Inactive banks fail with ErrBankInactive.
	MarkAssigned(ctx context.Context, studentID, bankID, enrollmentID int) (inserted bool, err error)

	// RecordCompletion fills in the outcome of an open assignment.
	RecordCompletion(ctx context.Context, studentID, bankID int, score, masteryChange float64) error

	Entry(ctx context.Context, studentID, bankID int) (*LedgerEntry, error)
	History(ctx context.Context, studentID int) ([]LedgerEntry, error)
}

// StatsRepo runs read-only aggregate queries.
type StatsRepo interface {
	Overview(ctx context.Context) (*Overview, error)
	PerObjective(ctx context.Context) ([]ObjectiveBankStats, error)
	Students(ctx context.Context) (*StudentStats, error)
	ObjectiveStats(ctx context.Context, objectiveID int) (*ObjectiveStats, error)
}

// EventRepo provides append access to LLM request events.
type EventRepo interface {
	// AppendLLMRequest records an LLM API call event.
	AppendLLMRequest(ctx context.Context, ev LLMRequestEvent) error
}

// EventLog adds the read side used by reporting commands.
type EventLog interface {
	EventRepo
	RecentLLMRequests(ctx context.Context, limit int) ([]LLMRequestEvent, error)
	LLMUsageByModel(ctx context.Context) ([]LLMUsage, error)
	LLMUsageByPurpose(ctx context.Context) ([]LLMUsage, error)
}
