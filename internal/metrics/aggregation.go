package metrics

import (
	"sort"
	"time"
)

// Summary provides a summary of a set of metrics, overall and per stage.
type Summary struct {
	Count        int           `json:"count" yaml:"count"`
	SuccessCount int           `json:"success_count" yaml:"success_count"`
	ErrorCount   int           `json:"error_count" yaml:"error_count"`
	TotalTokens  int           `json:"total_tokens" yaml:"total_tokens"`
	TotalTime    time.Duration `json:"total_time" yaml:"total_time"`

	// ByStage holds detailed stats keyed by stage name.
	ByStage map[string]*DetailedStats `json:"by_stage,omitempty" yaml:"by_stage,omitempty"`
}

// DetailedStats provides comprehensive statistics including percentiles and token breakdowns.
type DetailedStats struct {
	// Basic counts
	Count        int `json:"count" yaml:"count"`
	SuccessCount int `json:"success_count" yaml:"success_count"`
	ErrorCount   int `json:"error_count" yaml:"error_count"`
	Retries      int `json:"retries" yaml:"retries"`

	// Latency percentiles (seconds)
	LatencyP50 float64 `json:"latency_p50" yaml:"latency_p50"`
	LatencyP95 float64 `json:"latency_p95" yaml:"latency_p95"`
	LatencyAvg float64 `json:"latency_avg" yaml:"latency_avg"`
	LatencyMin float64 `json:"latency_min" yaml:"latency_min"`
	LatencyMax float64 `json:"latency_max" yaml:"latency_max"`

	// Token stats
	TotalPromptTokens     int `json:"total_prompt_tokens" yaml:"total_prompt_tokens"`
	TotalCompletionTokens int `json:"total_completion_tokens" yaml:"total_completion_tokens"`
	TotalTokens           int `json:"total_tokens" yaml:"total_tokens"`
}

// Summarize aggregates metrics into a Summary.
func Summarize(metrics []Metric) *Summary {
	s := &Summary{Count: len(metrics)}

	byStage := make(map[string][]Metric)
	for _, m := range metrics {
		s.TotalTokens += m.TotalTokens
		s.TotalTime += time.Duration(m.ExecutionSeconds * float64(time.Second))
		if m.Success {
			s.SuccessCount++
		} else {
			s.ErrorCount++
		}
		if m.Stage != "" {
			byStage[m.Stage] = append(byStage[m.Stage], m)
		}
	}

	if len(byStage) > 0 {
		s.ByStage = make(map[string]*DetailedStats, len(byStage))
		for stage, stageMetrics := range byStage {
			s.ByStage[stage] = detailedStats(stageMetrics)
		}
	}
	return s
}

func detailedStats(metrics []Metric) *DetailedStats {
	stats := &DetailedStats{Count: len(metrics)}

	var latencies []float64
	for _, m := range metrics {
		if m.Success {
			stats.SuccessCount++
		} else {
			stats.ErrorCount++
		}
		if m.Attempts > 1 {
			stats.Retries += m.Attempts - 1
		}
		stats.TotalPromptTokens += m.PromptTokens
		stats.TotalCompletionTokens += m.CompletionTokens
		stats.TotalTokens += m.TotalTokens
		if m.ExecutionSeconds > 0 {
			latencies = append(latencies, m.ExecutionSeconds)
		}
	}

	// Latency percentiles
	if len(latencies) > 0 {
		sort.Float64s(latencies)
		stats.LatencyMin = latencies[0]
		stats.LatencyMax = latencies[len(latencies)-1]
		var sum float64
		for _, l := range latencies {
			sum += l
		}
		stats.LatencyAvg = sum / float64(len(latencies))
		stats.LatencyP50 = percentile(latencies, 50)
		stats.LatencyP95 = percentile(latencies, 95)
	}
	return stats
}

// percentile calculates the p-th percentile from a sorted slice of values.
func percentile(sorted []float64, p float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	if len(sorted) == 1 {
		return sorted[0]
	}

	// Calculate the index
	n := float64(len(sorted))
	idx := (p / 100.0) * (n - 1)

	// Interpolate between floor and ceil indices
	lower := int(idx)
	upper := lower + 1
	if upper >= len(sorted) {
		return sorted[len(sorted)-1]
	}

	// Linear interpolation
	weight := idx - float64(lower)
	return sorted[lower]*(1-weight) + sorted[upper]*weight
}
