package telemetry

import (
	"gonum.org/v1/gonum/stat"
)

// SessionStats aggregates the finished rounds of one play session, written
// to stats.csv on shutdown.
type SessionStats struct {
	Rounds int `csv:"rounds"`
	Won    int `csv:"won"`
	Lost   int `csv:"lost"`

	WinRate float64 `csv:"win_rate"`

	// Solve-time distribution over won rounds only; losses end at
	// arbitrary times and would skew it.
	SolveTimeMean float64 `csv:"solve_time_mean"`
	SolveTimeP50  float64 `csv:"solve_time_p50"`
	SolveTimeP90  float64 `csv:"solve_time_p90"`

	StrokesMean float64 `csv:"strokes_mean"`
	InkMean     float64 `csv:"ink_mean"`
}

func computeSessionStats(rounds []RoundRecord) SessionStats {
	s := SessionStats{Rounds: len(rounds)}
	if len(rounds) == 0 {
		return s
	}

	var solveTimes, strokes, ink []float64
	for _, r := range rounds {
		switch Outcome(r.Outcome) {
		case OutcomeWon:
			s.Won++
			solveTimes = append(solveTimes, r.TimeSec)
		case OutcomeLost:
			s.Lost++
		}
		strokes = append(strokes, float64(r.Strokes))
		ink = append(ink, r.InkUsed)
	}

	decided := s.Won + s.Lost
	if decided > 0 {
		s.WinRate = float64(s.Won) / float64(decided)
	}
	if len(solveTimes) > 0 {
		s.SolveTimeMean = stat.Mean(solveTimes, nil)
		sorted := sortedCopy(solveTimes)
		s.SolveTimeP50 = stat.Quantile(0.5, stat.Empirical, sorted, nil)
		s.SolveTimeP90 = stat.Quantile(0.9, stat.Empirical, sorted, nil)
	}
	s.StrokesMean = stat.Mean(strokes, nil)
	s.InkMean = stat.Mean(ink, nil)
	return s
}
