package allocator

import (
	"fmt"
	"math"
	"sort"

	"LynchScreen/internal/model"
)

// DefaultStages is the default staged-entry plan per position:
// week 1 3%, week 2 3%, week 3 4%, totalling the 10% position weight.
func DefaultStages() []model.EntryStage {
	return []model.EntryStage{
		{Week: 1, Percent: 3},
		{Week: 2, Percent: 3},
		{Week: 3, Percent: 4},
	}
}

// ValidateStages checks the staged-entry policy against the per-position
// weight: week indices must be strictly increasing starting at 1 and the
// percentages must sum to the position weight. Run before any fetching.
func ValidateStages(stages []model.EntryStage, positionWeightPct float64) error {
	if len(stages) == 0 {
		return fmt.Errorf("entry schedule has no stages")
	}
	total := 0.0
	prev := 0
	for i, st := range stages {
		if i == 0 && st.Week != 1 {
			return fmt.Errorf("entry schedule must start at week 1, got week %d", st.Week)
		}
		if st.Week <= prev {
			return fmt.Errorf("entry schedule weeks must be strictly increasing, got week %d after %d", st.Week, prev)
		}
		if st.Percent <= 0 {
			return fmt.Errorf("entry stage for week %d has non-positive percent", st.Week)
		}
		prev = st.Week
		total += st.Percent
	}
	if math.Abs(total-positionWeightPct) > 1e-9 {
		return fmt.Errorf("entry schedule sums to %.2f%%, want %.2f%%", total, positionWeightPct)
	}
	return nil
}

// BuildSchedules derives the entry schedule for every selected ticker,
// sorted by ticker for determinism.
func BuildSchedules(buckets []model.PortfolioBucket, stages []model.EntryStage) []model.EntrySchedule {
	var schedules []model.EntrySchedule
	for _, b := range buckets {
		for _, p := range b.Positions {
			s := model.EntrySchedule{Ticker: p.Ticker, Stages: make([]model.EntryStage, len(stages))}
			copy(s.Stages, stages)
			schedules = append(schedules, s)
		}
	}
	sort.Slice(schedules, func(i, j int) bool { return schedules[i].Ticker < schedules[j].Ticker })
	return schedules
}
