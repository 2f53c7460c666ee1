package unpacker

import (
	"fmt"

	"gonum.org/v1/gonum/stat"
)

// RunSummary collects event sizes over a run.
type RunSummary struct {
	lengths      []float64
	multiplicity [numChannelTypes][]float64
}

func NewRunSummary() *RunSummary {
	return &RunSummary{lengths: make([]float64, 0)}
}

func (s *RunSummary) Add(event *Event) {
	s.lengths = append(s.lengths, float64(event.Length))
	for _, t := range ChannelTypes {
		s.multiplicity[t] = append(s.multiplicity[t], float64(event.Total(t)))
	}
}

func (s *RunSummary) Events() int {
	return len(s.lengths)
}

// Length returns mean and standard deviation of the window span.
func (s *RunSummary) Length() (float64, float64) {
	return meanStdDev(s.lengths)
}

// Multiplicity returns mean and standard deviation of the number of
// accepted words of type t per event.
func (s *RunSummary) Multiplicity(t ChannelType) (float64, float64) {
	if !t.Valid() {
		return 0, 0
	}
	return meanStdDev(s.multiplicity[t])
}

func meanStdDev(x []float64) (float64, float64) {
	switch len(x) {
	case 0:
		return 0, 0
	case 1:
		return x[0], 0
	}
	return stat.MeanStdDev(x, nil)
}

func (s *RunSummary) Log(stats Statistics) {
	logger.Info(fmt.Sprintf("Events: %d", stats.Events), "summary")
	logger.Info(fmt.Sprintf("Average event length: %.2f", stats.AverageLength()), "summary")
	logger.Info(fmt.Sprintf("Words accepted: %d, overflow: %d, unclassified: %d, outside events: %d",
		stats.Accepted, stats.Overflow, stats.Unclassified, stats.Skipped), "summary")
	mean, std := s.Length()
	logger.Info(fmt.Sprintf("Event length: %.2f +- %.2f", mean, std), "summary")
	for _, t := range ChannelTypes {
		mean, std := s.Multiplicity(t)
		logger.Info(fmt.Sprintf("%v multiplicity: %.3f +- %.3f", t, mean, std), "summary")
	}
}
