package datasource

import (
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/gocarina/gocsv"
	"github.com/moznion/go-optional"
	"go.uber.org/zap"

	"github.com/rxtech-lab/sentiment-backtest/internal/logger"
	"github.com/rxtech-lab/sentiment-backtest/internal/types"
	"github.com/rxtech-lab/sentiment-backtest/pkg/errors"
)

var sentimentColumns = []string{"ticker", "published_at", "score"}

type articleRow struct {
	Ticker      string  `csv:"ticker"`
	PublishedAt csvDate `csv:"published_at"`
	// Score stays a string so an empty or non-numeric cell becomes a
	// missing score rather than a silent zero.
	Score string `csv:"score"`
}

// CSVSentimentSource reads article sentiment scores from
// <dir>/<SYMBOL>_sentiment.csv. A missing file is treated as no coverage,
// not an error.
type CSVSentimentSource struct {
	dir string
	log *logger.Logger
}

func NewCSVSentimentSource(dir string, log *logger.Logger) *CSVSentimentSource {
	return &CSVSentimentSource{dir: dir, log: log}
}

func (s *CSVSentimentSource) FetchArticleScores(symbol string, start, end time.Time) ([]types.ArticleScore, error) {
	path := filepath.Join(s.dir, symbol+"_sentiment.csv")
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			s.log.Info("no sentiment file for symbol, treating as no coverage",
				zap.String("symbol", symbol),
				zap.String("path", path))
			return nil, nil
		}
		return nil, errors.Wrapf(errors.ErrCodeDataFetchFailed, err, "failed to open sentiment file for %s", symbol)
	}
	defer file.Close()

	if err := checkHeader(file, sentimentColumns); err != nil {
		return nil, err
	}

	var rows []articleRow
	if err := gocsv.UnmarshalFile(file, &rows); err != nil {
		return nil, errors.Wrapf(errors.ErrCodeDataParseFailed, err, "failed to parse sentiment file for %s", symbol)
	}

	var articles []types.ArticleScore
	for _, row := range rows {
		at := row.PublishedAt.Time
		if at.Before(start) || at.After(end) {
			continue
		}
		articles = append(articles, types.ArticleScore{
			Ticker:      row.Ticker,
			PublishedAt: at,
			Score:       parseScore(row.Score),
		})
	}

	s.log.Info("loaded sentiment articles from CSV",
		zap.String("symbol", symbol),
		zap.Int("articles", len(articles)))

	return articles, nil
}

func parseScore(raw string) optional.Option[float64] {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return optional.None[float64]()
	}
	score, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(score) {
		return optional.None[float64]()
	}
	return optional.Some(score)
}
