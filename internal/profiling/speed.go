// Package profiling summarizes the speed distribution of the active working
// set. The profile feeds the insight generator (speed-pattern sentence) and
// is exposed on the API for the dashboard's distribution panel.
package profiling

import (
	"math"

	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/stat/distuv"

	"minevision/domain/event"
)

// SpeedProfile describes the shape of the working set's speed distribution.
type SpeedProfile struct {
	SampleSize   int     `json:"sample_size"`
	Mean         float64 `json:"mean"`
	StdDev       float64 `json:"std_dev"`
	Min          float64 `json:"min"`
	Max          float64 `json:"max"`
	Median       float64 `json:"median"`
	Q25          float64 `json:"q25"`
	Q75          float64 `json:"q75"`
	Skewness     float64 `json:"skewness"`
	Kurtosis     float64 `json:"kurtosis"`
	IsNormal     bool    `json:"is_normal"`
	NormalityP   float64 `json:"normality_p"`
	OutlierCount int     `json:"outlier_count"`
}

// AnalyzeSpeeds profiles the speeds present in the working set. ok is false
// when no record carries a speed value.
func AnalyzeSpeeds(records []event.EnrichedRecord) (SpeedProfile, bool) {
	speeds := make([]float64, 0, len(records))
	for i := range records {
		if records[i].Speed != nil {
			speeds = append(speeds, *records[i].Speed)
		}
	}
	if len(speeds) == 0 {
		return SpeedProfile{}, false
	}

	profile := SpeedProfile{SampleSize: len(speeds)}

	profile.Mean, _ = stats.Mean(speeds)
	profile.StdDev, _ = stats.StandardDeviation(speeds)
	profile.Min, _ = stats.Min(speeds)
	profile.Max, _ = stats.Max(speeds)
	profile.Median, _ = stats.Median(speeds)
	profile.Q25, _ = stats.Percentile(speeds, 25)
	profile.Q75, _ = stats.Percentile(speeds, 75)

	profile.Skewness = sampleSkewness(speeds, profile.Mean, profile.StdDev)
	profile.Kurtosis = sampleKurtosis(speeds, profile.Mean, profile.StdDev)
	profile.IsNormal, profile.NormalityP = testNormality(profile.Skewness, profile.Kurtosis, len(speeds))
	profile.OutlierCount = countOutliers(speeds, profile.Q25, profile.Q75)

	return profile, true
}

// sampleSkewness is the adjusted Fisher-Pearson coefficient.
func sampleSkewness(data []float64, mean, stdDev float64) float64 {
	if len(data) < 3 || stdDev == 0 {
		return 0
	}

	n := float64(len(data))
	var sum float64
	for _, x := range data {
		d := (x - mean) / stdDev
		sum += d * d * d
	}

	return (sum / n) * math.Sqrt(n*(n-1)) / (n - 2)
}

// sampleKurtosis returns total (not excess) kurtosis.
func sampleKurtosis(data []float64, mean, stdDev float64) float64 {
	if len(data) < 4 || stdDev == 0 {
		return 0
	}

	n := float64(len(data))
	var sum float64
	for _, x := range data {
		d := (x - mean) / stdDev
		sum += d * d * d * d
	}

	excess := sum/n - 3
	if n > 3 {
		excess = excess*(n-1)/((n-2)*(n-3)) + 6/(n+1)
	}
	return excess + 3
}

// testNormality approximates a normality check from skewness and kurtosis,
// with the p-value taken from a chi-squared tail. Good enough to phrase an
// insight sentence; not a substitute for a proper Shapiro-Wilk test.
func testNormality(skewness, kurtosis float64, n int) (bool, float64) {
	if n < 3 {
		return false, 1.0
	}

	testStat := math.Abs(skewness) + math.Abs(kurtosis-3)/2
	chi := distuv.ChiSquared{K: 2}
	p := 1 - chi.CDF(testStat*testStat)
	return p > 0.05, p
}

// countOutliers uses the 1.5 IQR fence.
func countOutliers(data []float64, q25, q75 float64) int {
	iqr := q75 - q25
	lower := q25 - 1.5*iqr
	upper := q75 + 1.5*iqr

	var n int
	for _, x := range data {
		if x < lower || x > upper {
			n++
		}
	}
	return n
}
