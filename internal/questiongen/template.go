package questiongen

import (
	"context"
	"fmt"
	"hash/fnv"
	"strings"
)

// TemplateGenerator is the offline generator. It picks a subject pool from
// keywords in the objective and returns a deterministic slice of it, so
// the same objective and difficulty always yield the same questions.
// Pools are finite: a request larger than the pool gets the whole pool.
type TemplateGenerator struct{}

func NewTemplateGenerator() *TemplateGenerator { return &TemplateGenerator{} }

func (TemplateGenerator) Generate(_ context.Context, in Input) ([]RawQuestion, error) {
	if in.Count <= 0 {
		return nil, nil
	}
	pool := poolFor(in.ObjectiveText)

	h := fnv.New32a()
	fmt.Fprintf(h, "%s|%.2f", normalize(in.ObjectiveText), in.Difficulty)
	start := int(h.Sum32() % uint32(len(pool)))

	n := min(in.Count, len(pool))
	out := make([]RawQuestion, 0, n)
	for i := 0; i < n; i++ {
		q := pool[(start+i)%len(pool)]
		q.Distractors = append([]string(nil), q.Distractors...)
		out = append(out, q)
	}
	return out, nil
}

type subject struct {
	keywords []string
	pool     []RawQuestion
}

var subjects = []subject{
	{keywords: []string{"cell", "biology", "organism", "dna"}, pool: biologyPool},
	{keywords: []string{"algebra", "equation", "variable", "solve"}, pool: algebraPool},
	{keywords: []string{"chemistry", "element", "compound", "atom"}, pool: chemistryPool},
	{keywords: []string{"history", "war", "revolution", "century"}, pool: historyPool},
}

func poolFor(objective string) []RawQuestion {
	text := strings.ToLower(objective)
	for _, s := range subjects {
		for _, k := range s.keywords {
			if strings.Contains(text, k) {
				return s.pool
			}
		}
	}
	return genericPool(objective)
}

func genericPool(objective string) []RawQuestion {
	obj := strings.TrimSpace(objective)
	return []RawQuestion{
		{
			Question:      fmt.Sprintf("Which concept best relates to %q?", obj),
			CorrectAnswer: "The primary concept being taught",
			Distractors:   []string{"A related but different concept", "A common misconception", "An unrelated topic"},
			Explanation:   "This directly addresses the learning objective: " + obj,
		},
		{
			Question:      fmt.Sprintf("What is the best first step when learning %q?", obj),
			CorrectAnswer: "Understand the key terms and ideas",
			Distractors:   []string{"Memorize every detail at once", "Skip to the hardest examples", "Avoid asking questions"},
			Explanation:   "Knowing the vocabulary and core ideas makes every later step easier.",
		},
		{
			Question:      fmt.Sprintf("How can you check that you understand %q?", obj),
			CorrectAnswer: "Explain it in your own words with an example",
			Distractors:   []string{"Read the definition once more", "Copy the notes word for word", "Count how long you studied"},
			Explanation:   "Being able to explain and apply an idea shows real understanding, not just recall.",
		},
		{
			Question:      fmt.Sprintf("Which activity is most useful for practicing %q?", obj),
			CorrectAnswer: "Working through new problems and checking the answers",
			Distractors:   []string{"Highlighting the textbook", "Rewriting the objective", "Watching without taking part"},
			Explanation:   "Active practice with feedback builds skill faster than passive review.",
		},
	}
}

var biologyPool = []RawQuestion{
	{
		Question:      "What is the primary function of the cell membrane?",
		CorrectAnswer: "To control what enters and exits the cell",
		Distractors:   []string{"To produce energy for the cell", "To store the cell's genetic material", "To manufacture proteins"},
		Explanation:   "The cell membrane is a selective barrier that controls the passage of substances in and out of the cell.",
	},
	{
		Question:      "Which process allows plants to convert sunlight into chemical energy?",
		CorrectAnswer: "Photosynthesis",
		Distractors:   []string{"Cellular respiration", "Fermentation", "Glycolysis"},
		Explanation:   "Photosynthesis uses chlorophyll to capture light and make glucose and oxygen.",
	},
	{
		Question:      "What type of organism has no nucleus?",
		CorrectAnswer: "Prokaryote",
		Distractors:   []string{"Eukaryote", "Virus", "Fungus"},
		Explanation:   "Prokaryotes such as bacteria lack a membrane-bound nucleus; their DNA floats in the cytoplasm.",
	},
	{
		Question:      "Which organelle is known as the powerhouse of the cell?",
		CorrectAnswer: "Mitochondria",
		Distractors:   []string{"Nucleus", "Ribosome", "Golgi apparatus"},
		Explanation:   "Mitochondria make most of the cell's ATP through cellular respiration.",
	},
	{
		Question:      "What is the basic unit of heredity?",
		CorrectAnswer: "Gene",
		Distractors:   []string{"Chromosome", "DNA molecule", "Protein"},
		Explanation:   "A gene is a DNA sequence that codes for a trait and is passed from parents to offspring.",
	},
	{
		Question:      "During which phase of mitosis do chromosomes line up at the cell's equator?",
		CorrectAnswer: "Metaphase",
		Distractors:   []string{"Prophase", "Anaphase", "Telophase"},
		Explanation:   "In metaphase chromosomes align at the metaphase plate before being pulled apart.",
	},
	{
		Question:      "What is the role of ribosomes in the cell?",
		CorrectAnswer: "Protein synthesis",
		Distractors:   []string{"Energy production", "DNA replication", "Waste removal"},
		Explanation:   "Ribosomes translate mRNA into proteins.",
	},
}

var algebraPool = []RawQuestion{
	{
		Question:      "Solve for x: 3x + 7 = 22",
		CorrectAnswer: "x = 5",
		Distractors:   []string{"x = 3", "x = 7", "x = 15"},
		Explanation:   "Subtract 7 from both sides to get 3x = 15, then divide by 3.",
	},
	{
		Question:      "What is the slope of the line through (2, 4) and (6, 12)?",
		CorrectAnswer: "2",
		Distractors:   []string{"3", "4", "1/2"},
		Explanation:   "Slope = (12 - 4) / (6 - 2) = 8 / 4 = 2.",
	},
	{
		Question:      "Simplify: 4x + 3x - 2x",
		CorrectAnswer: "5x",
		Distractors:   []string{"9x", "3x", "x"},
		Explanation:   "Combine like terms: (4 + 3 - 2)x = 5x.",
	},
	{
		Question:      "If y = 2x + 3, what is the y-intercept?",
		CorrectAnswer: "3",
		Distractors:   []string{"2", "-3", "0"},
		Explanation:   "In y = mx + b the y-intercept is b, which is 3.",
	},
	{
		Question:      "Solve for x: 2x - 8 = 10",
		CorrectAnswer: "x = 9",
		Distractors:   []string{"x = 1", "x = 18", "x = 2"},
		Explanation:   "Add 8 to both sides to get 2x = 18, then divide by 2.",
	},
	{
		Question:      "What value of x makes 5(x - 2) = 15 true?",
		CorrectAnswer: "x = 5",
		Distractors:   []string{"x = 1", "x = 3", "x = 17/5"},
		Explanation:   "Divide both sides by 5 to get x - 2 = 3, so x = 5.",
	},
}

var chemistryPool = []RawQuestion{
	{
		Question:      "What is the chemical symbol for gold?",
		CorrectAnswer: "Au",
		Distractors:   []string{"Go", "Gd", "Ag"},
		Explanation:   "Au comes from the Latin name aurum.",
	},
	{
		Question:      "How many electrons does a neutral carbon atom have?",
		CorrectAnswer: "6",
		Distractors:   []string{"4", "12", "8"},
		Explanation:   "Carbon has atomic number 6, so a neutral atom has 6 protons and 6 electrons.",
	},
	{
		Question:      "What type of bond forms when atoms share electrons?",
		CorrectAnswer: "Covalent bond",
		Distractors:   []string{"Ionic bond", "Metallic bond", "Hydrogen bond"},
		Explanation:   "Covalent bonds form when atoms share electron pairs to reach stable configurations.",
	},
	{
		Question:      "Which particle in an atom has no electric charge?",
		CorrectAnswer: "Neutron",
		Distractors:   []string{"Proton", "Electron", "Ion"},
		Explanation:   "Neutrons are neutral; protons are positive and electrons are negative.",
	},
}

var historyPool = []RawQuestion{
	{
		Question:      "In which century did the American Revolution occur?",
		CorrectAnswer: "18th century",
		Distractors:   []string{"17th century", "19th century", "16th century"},
		Explanation:   "The American Revolution lasted from 1775 to 1783, which is the 18th century.",
	},
	{
		Question:      "In which year did World War II end?",
		CorrectAnswer: "1945",
		Distractors:   []string{"1939", "1918", "1950"},
		Explanation:   "World War II ended in 1945 with the surrender of Germany in May and Japan in September.",
	},
}
