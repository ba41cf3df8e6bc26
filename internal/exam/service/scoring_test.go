package service

import (
	"testing"

	"github.com/astauriabidco-maker/fle-expert/internal/config"
	"github.com/astauriabidco-maker/fle-expert/internal/exam/domain"
	"github.com/stretchr/testify/assert"
)

func TestCountCorrect(t *testing.T) {
	assert.Equal(t, 0, countCorrect(nil))
	assert.Equal(t, 2, countCorrect([]domain.Answer{
		{QuestionID: "q1", Correct: true},
		{QuestionID: "q2", Correct: false},
		{QuestionID: "q3", Correct: true},
	}))
}

func TestScaledScore_Bounds(t *testing.T) {
	assert.Equal(t, 0, scaledScore(0, 10, 699))
	assert.Equal(t, 0, scaledScore(5, 0, 699))
	assert.Equal(t, 699, scaledScore(10, 10, 699))
	// Over-count clamps to the top of the scale.
	assert.Equal(t, 699, scaledScore(12, 10, 699))
}

func TestScaledScore_Monotonic(t *testing.T) {
	const total = 40
	prev := -1
	for correct := 0; correct <= total; correct++ {
		score := scaledScore(correct, total, 699)
		assert.GreaterOrEqual(t, score, prev, "correct=%d", correct)
		assert.GreaterOrEqual(t, score, 0)
		assert.LessOrEqual(t, score, 699)
		prev = score
	}
}

func TestBandFor_Thresholds(t *testing.T) {
	cfg := config.DefaultScoringConfig()

	cases := []struct {
		score int
		level string
	}{
		{0, "A1"},
		{99, "A1"},
		{100, "A2"},
		{199, "A2"},
		{200, "B1"},
		{349, "B1"},
		{350, "B2"},
		{499, "B2"},
		{500, "C1"},
		{599, "C1"},
		{600, "C2"},
		{699, "C2"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.level, bandFor(cfg, tc.score), "score=%d", tc.score)
	}
}
