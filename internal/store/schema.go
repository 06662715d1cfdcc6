package store

import (
	"entgo.io/ent/dialect/sql/schema"
	"entgo.io/ent/schema/field"
)

// Table and column names shared by the query builders.
const (
	tableUnits      = "units"
	tableObjectives = "learning_objectives"
	tableBanks      = "quiz_banks"
	tableQuestions  = "generated_questions"
	tableBankLinks  = "quiz_bank_questions"
	tableUsage      = "student_quiz_bank_usage"
	tableLLMEvents  = "llm_request_events"
)

var (
	unitsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt, Increment: true},
		{Name: "name", Type: field.TypeString},
		{Name: "description", Type: field.TypeString, Default: ""},
		{Name: "created_at", Type: field.TypeTime},
	}
	unitsTable = &schema.Table{
		Name:       tableUnits,
		Columns:    unitsColumns,
		PrimaryKey: []*schema.Column{unitsColumns[0]},
	}

	objectivesColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt, Increment: true},
		{Name: "objective_text", Type: field.TypeString, Size: 2147483647},
		{Name: "created_at", Type: field.TypeTime},
		{Name: "unit_id", Type: field.TypeInt},
	}
	objectivesTable = &schema.Table{
		Name:       tableObjectives,
		Columns:    objectivesColumns,
		PrimaryKey: []*schema.Column{objectivesColumns[0]},
		ForeignKeys: []*schema.ForeignKey{{
			Symbol:     "learning_objectives_units_objectives",
			Columns:    []*schema.Column{objectivesColumns[3]},
			RefColumns: []*schema.Column{unitsColumns[0]},
			OnDelete:   schema.NoAction,
		}},
		Indexes: []*schema.Index{{
			Name:    "learningobjective_unit_id",
			Columns: []*schema.Column{objectivesColumns[3]},
		}},
	}

	banksColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt, Increment: true},
		{Name: "difficulty_level", Type: field.TypeFloat64},
		{Name: "questions_count", Type: field.TypeInt},
		{Name: "generation_source", Type: field.TypeString},
		{Name: "usage_count", Type: field.TypeInt, Default: 0},
		{Name: "is_active", Type: field.TypeBool, Default: true},
		{Name: "created_at", Type: field.TypeTime},
		{Name: "last_used", Type: field.TypeTime, Nullable: true},
		{Name: "objective_id", Type: field.TypeInt},
	}
	banksTable = &schema.Table{
		Name:       tableBanks,
		Columns:    banksColumns,
		PrimaryKey: []*schema.Column{banksColumns[0]},
		ForeignKeys: []*schema.ForeignKey{{
			Symbol:     "quiz_banks_learning_objectives_banks",
			Columns:    []*schema.Column{banksColumns[8]},
			RefColumns: []*schema.Column{objectivesColumns[0]},
			OnDelete:   schema.NoAction,
		}},
		Indexes: []*schema.Index{{
			// Candidate search: objective + window, then usage/age ordering.
			Name:    "quizbank_objective_id_difficulty_level_is_active",
			Columns: []*schema.Column{banksColumns[8], banksColumns[1], banksColumns[5]},
		}},
	}

	questionsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt, Increment: true},
		{Name: "question_text", Type: field.TypeString, Size: 2147483647},
		{Name: "option_a", Type: field.TypeString},
		{Name: "option_b", Type: field.TypeString},
		{Name: "option_c", Type: field.TypeString},
		{Name: "option_d", Type: field.TypeString},
		{Name: "correct_option", Type: field.TypeEnum, Enums: []string{"A", "B", "C", "D"}},
		{Name: "explanation", Type: field.TypeString, Size: 2147483647, Default: ""},
		{Name: "difficulty_level", Type: field.TypeFloat64},
		{Name: "cognitive_level", Type: field.TypeEnum, Enums: []string{"remember", "understand", "apply"}},
		{Name: "created_at", Type: field.TypeTime},
		{Name: "objective_id", Type: field.TypeInt},
	}
	questionsTable = &schema.Table{
		Name:       tableQuestions,
		Columns:    questionsColumns,
		PrimaryKey: []*schema.Column{questionsColumns[0]},
		ForeignKeys: []*schema.ForeignKey{{
			Symbol:     "generated_questions_learning_objectives_questions",
			Columns:    []*schema.Column{questionsColumns[11]},
			RefColumns: []*schema.Column{objectivesColumns[0]},
			OnDelete:   schema.NoAction,
		}},
	}

	bankLinksColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt, Increment: true},
		{Name: "order_index", Type: field.TypeInt},
		{Name: "quiz_bank_id", Type: field.TypeInt},
		{Name: "question_id", Type: field.TypeInt},
	}
	bankLinksTable = &schema.Table{
		Name:       tableBankLinks,
		Columns:    bankLinksColumns,
		PrimaryKey: []*schema.Column{bankLinksColumns[0]},
		ForeignKeys: []*schema.ForeignKey{
			{
				Symbol:     "quiz_bank_questions_quiz_banks_links",
				Columns:    []*schema.Column{bankLinksColumns[2]},
				RefColumns: []*schema.Column{banksColumns[0]},
				OnDelete:   schema.Cascade,
			},
			{
				Symbol:     "quiz_bank_questions_generated_questions_links",
				Columns:    []*schema.Column{bankLinksColumns[3]},
				RefColumns: []*schema.Column{questionsColumns[0]},
				OnDelete:   schema.Cascade,
			},
		},
		Indexes: []*schema.Index{{
			Name:    "quizbankquestion_quiz_bank_id_order_index",
			Unique:  true,
			Columns: []*schema.Column{bankLinksColumns[2], bankLinksColumns[1]},
		}},
	}

	usageColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt, Increment: true},
		{Name: "student_id", Type: field.TypeInt},
		{Name: "enrollment_id", Type: field.TypeInt},
		{Name: "assigned_at", Type: field.TypeTime},
		{Name: "score_percentage", Type: field.TypeFloat64, Nullable: true},
		{Name: "mastery_change", Type: field.TypeFloat64, Nullable: true},
		{Name: "completed_at", Type: field.TypeTime, Nullable: true},
		{Name: "quiz_bank_id", Type: field.TypeInt},
	}
	usageTable = &schema.Table{
		Name:       tableUsage,
		Columns:    usageColumns,
		PrimaryKey: []*schema.Column{usageColumns[0]},
		ForeignKeys: []*schema.ForeignKey{{
			Symbol:     "student_quiz_bank_usage_quiz_banks_usage",
			Columns:    []*schema.Column{usageColumns[7]},
			RefColumns: []*schema.Column{banksColumns[0]},
			OnDelete:   schema.NoAction,
		}},
		Indexes: []*schema.Index{{
			Name:    "studentquizbankusage_student_id_quiz_bank_id",
			Unique:  true,
			Columns: []*schema.Column{usageColumns[1], usageColumns[7]},
		}},
	}

	llmEventsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt, Increment: true},
		{Name: "timestamp", Type: field.TypeTime},
		{Name: "provider", Type: field.TypeString},
		{Name: "model", Type: field.TypeString},
		{Name: "purpose", Type: field.TypeString},
		{Name: "input_tokens", Type: field.TypeInt, Default: 0},
		{Name: "output_tokens", Type: field.TypeInt, Default: 0},
		{Name: "latency_ms", Type: field.TypeInt64, Default: 0},
		{Name: "success", Type: field.TypeBool},
		{Name: "error_message", Type: field.TypeString, Default: ""},
	}
	llmEventsTable = &schema.Table{
		Name:       tableLLMEvents,
		Columns:    llmEventsColumns,
		PrimaryKey: []*schema.Column{llmEventsColumns[0]},
		Indexes: []*schema.Index{
			{Name: "llmrequestevent_timestamp", Columns: []*schema.Column{llmEventsColumns[1]}},
			{Name: "llmrequestevent_purpose", Columns: []*schema.Column{llmEventsColumns[4]}},
		},
	}

	// tables lists every table in dependency order for migration.
	tables = []*schema.Table{
		unitsTable,
		objectivesTable,
		banksTable,
		questionsTable,
		bankLinksTable,
		usageTable,
		llmEventsTable,
	}
)

func init() {
	objectivesTable.ForeignKeys[0].RefTable = unitsTable
	banksTable.ForeignKeys[0].RefTable = objectivesTable
	questionsTable.ForeignKeys[0].RefTable = objectivesTable
	bankLinksTable.ForeignKeys[0].RefTable = banksTable
	bankLinksTable.ForeignKeys[1].RefTable = questionsTable
	usageTable.ForeignKeys[0].RefTable = banksTable
}
