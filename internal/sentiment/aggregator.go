// Package sentiment reduces a raw multi-article sentiment feed into one
// dense daily score series per ticker. Days with articles get the arithmetic
// mean of their scores; gaps are forward-filled, leading gaps are
// backward-filled, and a fully empty range falls back to neutral 0.0.
package sentiment

import (
	"time"

	"github.com/rxtech-lab/sentiment-backtest/internal/types"
	"github.com/rxtech-lab/sentiment-backtest/pkg/errors"
)

// DailySeries is a gap-free, chronologically ordered daily sentiment series
// with O(1) date lookup. It is keyed by calendar day rather than aligned by
// index with the price feed, so price and sentiment can never drift apart.
type DailySeries struct {
	points []types.SentimentPoint
	byDate map[time.Time]float64
}

// ScoreOn returns the sentiment score for the given calendar day, or neutral
// 0.0 when the day is outside the series range.
func (s *DailySeries) ScoreOn(date time.Time) float64 {
	day := truncateToDay(date)
	if score, ok := s.byDate[day]; ok {
		return score
	}

	return 0.0
}

// Points returns the ordered daily points.
func (s *DailySeries) Points() []types.SentimentPoint {
	return s.points
}

// Len returns the number of days covered.
func (s *DailySeries) Len() int {
	return len(s.points)
}

// Aggregate turns per-article scores into a dense daily series for
// [start, end]. Articles outside the range or without a score are skipped.
// Aggregation is idempotent: feeding back an already-dense daily series
// reproduces it unchanged.
func Aggregate(articles []types.ArticleScore, start, end time.Time) (*DailySeries, error) {
	startDay := truncateToDay(start)
	endDay := truncateToDay(end)

	if endDay.Before(startDay) {
		return nil, errors.Newf(errors.ErrCodeInvalidDateRange,
			"sentiment range end %s before start %s", endDay.Format(time.DateOnly), startDay.Format(time.DateOnly))
	}

	// Group scores by calendar day; only scored articles count.
	sums := make(map[time.Time]float64)
	counts := make(map[time.Time]int)

	for _, article := range articles {
		if article.Score.IsNone() {
			continue
		}

		day := truncateToDay(article.PublishedAt)
		if day.Before(startDay) || day.After(endDay) {
			continue
		}

		sums[day] += article.Score.Unwrap()
		counts[day]++
	}

	// Reindex to every calendar day with forward fill.
	series := &DailySeries{
		byDate: make(map[time.Time]float64),
	}

	var (
		lastScore    float64
		haveScore    bool
		leadingBlank int
	)

	for day := startDay; !day.After(endDay); day = day.AddDate(0, 0, 1) {
		if count := counts[day]; count > 0 {
			lastScore = sums[day] / float64(count)
			if !haveScore {
				// Backward-fill the leading days with the first observed value.
				for i := 0; i < leadingBlank; i++ {
					series.points[i].Score = lastScore
					series.byDate[series.points[i].Date] = lastScore
				}
			}

			haveScore = true
		} else if !haveScore {
			leadingBlank++
		}

		score := 0.0
		if haveScore {
			score = lastScore
		}

		series.points = append(series.points, types.SentimentPoint{Date: day, Score: score})
		series.byDate[day] = score
	}

	return series, nil
}

// Neutral builds an all-zero daily series for [start, end]. Used when a
// strategy needs sentiment but no data exists for the symbol.
func Neutral(start, end time.Time) *DailySeries {
	series, err := Aggregate(nil, start, end)
	if err != nil {
		return &DailySeries{byDate: map[time.Time]float64{}}
	}

	return series
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
