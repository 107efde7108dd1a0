// Package telemetry accumulates per-round records and writes CSV output for
// offline analysis of playtests and headless soaks.
package telemetry

import (
	"log/slog"
	"sort"
	"time"
)

// Outcome is how a round ended.
type Outcome string

const (
	OutcomeWon  Outcome = "won"
	OutcomeLost Outcome = "lost"
	// OutcomeAbandoned marks rounds reset before an outcome latched.
	OutcomeAbandoned Outcome = "abandoned"
)

// RoundRecord is one finished round, as written to rounds.csv.
type RoundRecord struct {
	Round     int     `csv:"round"`
	Level     string  `csv:"level"`
	Outcome   string  `csv:"outcome"`
	TimeSec   float64 `csv:"time_sec"`
	Strokes   int     `csv:"strokes"`
	InkUsed   float64 `csv:"ink_used"`
	BallsLost int     `csv:"balls_lost"`
	WallClock string  `csv:"wall_clock"`
}

// Collector accumulates events for the round in progress and keeps every
// finished round for summary stats.
type Collector struct {
	level string

	round     int
	open      bool
	ballsLost int
	strokes   int
	ink       float64

	finished []RoundRecord
	drained  int
}

// NewCollector creates a collector for the named level.
func NewCollector(level string) *Collector {
	return &Collector{level: level}
}

// BeginRound starts tracking a new round. An unfinished previous round is
// recorded as abandoned.
func (c *Collector) BeginRound(round int) {
	if c.open {
		c.close(OutcomeAbandoned, 0, c.strokes, c.ink)
	}
	c.round = round
	c.open = true
	c.ballsLost = 0
	c.strokes = 0
	c.ink = 0
}

// RecordStroke counts a committed stroke and its ink length. The running
// total surfaces in abandoned-round records, where no EndRound reports it.
func (c *Collector) RecordStroke(length float64) {
	c.strokes++
	c.ink += length
}

// RecordBallLost counts a ball removed by a hazard or the field boundary.
func (c *Collector) RecordBallLost() {
	c.ballsLost++
}

// EndRound finalizes the round in progress.
func (c *Collector) EndRound(outcome Outcome, timeSec float64, strokes int, inkUsed float64) {
	if !c.open {
		return
	}
	c.close(outcome, timeSec, strokes, inkUsed)
}

func (c *Collector) close(outcome Outcome, timeSec float64, strokes int, inkUsed float64) {
	c.finished = append(c.finished, RoundRecord{
		Round:     c.round,
		Level:     c.level,
		Outcome:   string(outcome),
		TimeSec:   timeSec,
		Strokes:   strokes,
		InkUsed:   inkUsed,
		BallsLost: c.ballsLost,
		WallClock: time.Now().Format(time.RFC3339),
	})
	c.open = false
}

// Rounds returns the finished round records.
func (c *Collector) Rounds() []RoundRecord {
	return c.finished
}

// Drain returns the finished records not yet handed out. The caller owns
// flushing them; abandoned rounds surface here on the next BeginRound.
func (c *Collector) Drain() []RoundRecord {
	out := c.finished[c.drained:]
	c.drained = len(c.finished)
	return out
}

// Stats summarizes the finished rounds.
func (c *Collector) Stats() SessionStats {
	return computeSessionStats(c.finished)
}

// LogStats emits the session summary via slog.
func (c *Collector) LogStats() {
	s := c.Stats()
	slog.Info("session stats",
		"rounds", s.Rounds,
		"won", s.Won,
		"lost", s.Lost,
		"win_rate", s.WinRate,
		"solve_time_mean", s.SolveTimeMean,
		"solve_time_p50", s.SolveTimeP50,
		"solve_time_p90", s.SolveTimeP90,
		"strokes_mean", s.StrokesMean,
		"ink_mean", s.InkMean,
	)
}

// sortedCopy returns the values sorted ascending, as gonum's quantile
// functions require.
func sortedCopy(values []float64) []float64 {
	out := make([]float64, len(values))
	copy(out, values)
	sort.Float64s(out)
	return out
}
