package types

import (
	"time"

	"github.com/moznion/go-optional"
)

// ArticleScore is one scored news article for a ticker. Score is absent when
// the article has not been analyzed yet; unscored articles are skipped during
// aggregation.
type ArticleScore struct {
	Ticker      string                   `csv:"ticker" json:"ticker" yaml:"ticker"`
	PublishedAt time.Time                `csv:"published_at" json:"published_at" yaml:"published_at"`
	Score       optional.Option[float64] `csv:"score" json:"score" yaml:"score"`
}

// SentimentPoint is one aggregated daily sentiment score in [-1.0, 1.0].
type SentimentPoint struct {
	Date  time.Time `csv:"date" json:"date" yaml:"date"`
	Score float64   `csv:"score" json:"score" yaml:"score"`
}
