package service

import (
	"math"

	"github.com/astauriabidco-maker/fle-expert/internal/config"
	"github.com/astauriabidco-maker/fle-expert/internal/exam/domain"
)

func countCorrect(answers []domain.Answer) int {
	correct := 0
	for _, a := range answers {
		if a.Correct {
			correct++
		}
	}
	return correct
}

// scaledScore maps a raw correct count onto the 0..maxScale band scale.
// Total: every input yields a score; monotonic: more correct answers never
// yield a lower score.
func scaledScore(correct, total, maxScale int) int {
	if total <= 0 || correct <= 0 {
		return 0
	}
	if correct >= total {
		return maxScale
	}
	return int(math.Round(float64(correct) / float64(total) * float64(maxScale)))
}

// bandFor returns the CECRL level of the highest band whose threshold the
// scaled score reaches. Bands are validated ascending with a zero floor, so
// every score lands in exactly one band.
func bandFor(cfg config.ScoringConfig, scaled int) string {
	level := cfg.Bands[0].Level
	for _, band := range cfg.Bands {
		if scaled >= band.MinScore {
			level = band.Level
		}
	}
	return level
}
