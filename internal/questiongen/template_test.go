package questiongen

import (
	"context"
	"reflect"
	"testing"
)

func TestTemplate_SubjectSelection(t *testing.T) {
	tests := []struct {
		objective string
		pool      []RawQuestion
	}{
		{"Describe the parts of a CELL", biologyPool},
		{"Solve two-step equations", algebraPool},
		{"Compare ionic and covalent compounds", chemistryPool},
		{"Causes of the French Revolution", historyPool},
	}
	for _, tt := range tests {
		t.Run(tt.objective, func(t *testing.T) {
			got := poolFor(tt.objective)
			if &got[0] != &tt.pool[0] {
				t.Fatalf("wrong pool for %q: first question %q", tt.objective, got[0].Question)
			}
		})
	}

	generic := poolFor("Write persuasive essays")
	if len(generic) != 4 {
		t.Fatalf("generic pool size = %d, want 4", len(generic))
	}
}

func TestTemplate_Deterministic(t *testing.T) {
	g := NewTemplateGenerator()
	in := Input{ObjectiveText: "Solve linear equations", Difficulty: 0.5, Count: 3}

	a, err := g.Generate(context.Background(), in)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	b, _ := g.Generate(context.Background(), in)
	if !reflect.DeepEqual(a, b) {
		t.Fatal("template output differs between identical calls")
	}
	if len(a) != 3 {
		t.Fatalf("len = %d, want 3", len(a))
	}
	if err := CheckStructure(a); err != nil {
		t.Fatalf("template output malformed: %v", err)
	}
}

func TestTemplate_ReturnsFewerWhenPoolIsSmall(t *testing.T) {
	g := NewTemplateGenerator()
	qs, err := g.Generate(context.Background(), Input{ObjectiveText: "History of the 20th century", Difficulty: 0.5, Count: 10})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if len(qs) != len(historyPool) {
		t.Fatalf("len = %d, want %d", len(qs), len(historyPool))
	}
}

func TestTemplate_DoesNotAliasPool(t *testing.T) {
	g := NewTemplateGenerator()
	qs, _ := g.Generate(context.Background(), Input{ObjectiveText: "atoms", Count: 1})
	qs[0].Distractors[0] = "mutated"
	for _, q := range chemistryPool {
		for _, d := range q.Distractors {
			if d == "mutated" {
				t.Fatal("caller mutation leaked into the template pool")
			}
		}
	}
}

func TestTemplate_AllPoolsWellFormed(t *testing.T) {
	for _, s := range subjects {
		if err := CheckStructure(s.pool); err != nil {
			t.Errorf("pool %v: %v", s.keywords, err)
		}
	}
	if err := CheckStructure(genericPool("anything")); err != nil {
		t.Errorf("generic pool: %v", err)
	}
}
