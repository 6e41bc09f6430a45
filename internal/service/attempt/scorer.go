package attempt

import (
	"math"

	"github.com/yourusername/elearn-api/internal/domain/entity"
)

// Formula turns a count of correct answers into a final score.
type Formula interface {
	Score(correctAnswers, totalQuestions int) int
	Name() string
}

// ScaledFormula maps the correct count onto a 0..Max scale with
// round-half-up. With the standard 20-question quiz this is the
// identity, but it keeps scores comparable for draft quizzes that
// carry a different question count.
type ScaledFormula struct {
	Max int
}

// Score implements Formula.
func (f ScaledFormula) Score(correctAnswers, totalQuestions int) int {
	if totalQuestions <= 0 {
		return 0
	}
	max := f.Max
	if max <= 0 {
		max = entity.RequiredQuestionCount
	}
	return int(math.Round(float64(correctAnswers) / float64(totalQuestions) * float64(max)))
}

// Name implements Formula.
func (f ScaledFormula) Name() string { return "scaled" }

// RawFormula scores one point per correct answer.
type RawFormula struct{}

// Score implements Formula.
func (RawFormula) Score(correctAnswers, totalQuestions int) int {
	return correctAnswers
}

// Name implements Formula.
func (RawFormula) Name() string { return "raw" }

// FormulaByName resolves a configured formula name, defaulting to scaled.
func FormulaByName(name string) Formula {
	switch name {
	case "raw":
		return RawFormula{}
	default:
		return ScaledFormula{Max: entity.RequiredQuestionCount}
	}
}

// CountCorrect tallies correct answers for the given selections.
// Questions without a selection, and selections out of the option
// range, count as incorrect.
func CountCorrect(questions []entity.Question, answers map[uint]int) int {
	correct := 0
	for i := range questions {
		q := &questions[i]
		selected, ok := answers[q.ID]
		if !ok {
			continue
		}
		if q.IsCorrect(selected) {
			correct++
		}
	}
	return correct
}
