package engine

import (
	"time"

	"github.com/google/uuid"
	"github.com/moznion/go-optional"
	"go.uber.org/zap"

	"github.com/rxtech-lab/sentiment-backtest/internal/backtest/engine/engine_v1/commission_fee"
	"github.com/rxtech-lab/sentiment-backtest/internal/logger"
	"github.com/rxtech-lab/sentiment-backtest/internal/sentiment"
	"github.com/rxtech-lab/sentiment-backtest/internal/strategy"
	"github.com/rxtech-lab/sentiment-backtest/internal/types"
	"github.com/rxtech-lab/sentiment-backtest/pkg/errors"
)

const (
	// lookbackTradingDays is the longest indicator history a strategy may
	// need; the fetch buffer oversizes it to cover weekends and holidays.
	lookbackTradingDays = 250
	lookbackBufferRatio = 1.5
	// minRequiredBars rejects series too short to warm up any preset.
	minRequiredBars = 60
)

// BarSource provides daily OHLCV history for a symbol.
type BarSource interface {
	FetchBars(symbol string, start, end time.Time) ([]types.Bar, error)
}

// SentimentSource provides per-article sentiment scores for a symbol.
type SentimentSource interface {
	FetchArticleScores(symbol string, start, end time.Time) ([]types.ArticleScore, error)
}

// ProgressFn is called after each simulated bar.
type ProgressFn func(completed, total int)

// Runner drives one backtest configuration end to end: fetch, validate,
// simulate bar by bar, then package metrics. Each symbol is simulated
// independently with its own broker and strategy instance.
type Runner struct {
	cfg          RunConfig
	bars         BarSource
	sentimentSrc optional.Option[SentimentSource]
	journal      optional.Option[*TradeJournal]
	progress     optional.Option[ProgressFn]
	log          *logger.Logger
}

type RunnerOption func(*Runner)

func WithSentimentSource(src SentimentSource) RunnerOption {
	return func(r *Runner) {
		r.sentimentSrc = optional.Some(src)
	}
}

func WithJournal(journal *TradeJournal) RunnerOption {
	return func(r *Runner) {
		r.journal = optional.Some(journal)
	}
}

func WithProgress(fn ProgressFn) RunnerOption {
	return func(r *Runner) {
		r.progress = optional.Some(fn)
	}
}

func NewRunner(cfg RunConfig, bars BarSource, log *logger.Logger, opts ...RunnerOption) (*Runner, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if bars == nil {
		return nil, errors.New(errors.ErrCodeInvalidConfiguration, "bar source is required")
	}

	r := &Runner{
		cfg:  cfg,
		bars: bars,
		log:  log,
	}
	for _, opt := range opts {
		opt(r)
	}

	return r, nil
}

// Run executes the configured backtest for every symbol. Configuration
// problems surface as a typed error before any data is touched; data or
// simulation failures for one symbol produce a failed result for that symbol
// and do not stop the others.
func (r *Runner) Run() ([]types.BacktestResult, error) {
	stratCfg, err := r.resolveStrategyConfig()
	if err != nil {
		return nil, err
	}

	results := make([]types.BacktestResult, 0, len(r.cfg.Symbols))
	for _, symbol := range r.cfg.Symbols {
		results = append(results, r.runSymbol(symbol, stratCfg))
	}

	return results, nil
}

// resolveStrategyConfig layers the configured param overrides on the preset
// for the strategy type and validates the merged result.
func (r *Runner) resolveStrategyConfig() (strategy.Config, error) {
	base, err := strategy.BaseConfig(r.cfg.StrategyType)
	if err != nil {
		return strategy.Config{}, err
	}

	merged, dropped := strategy.ApplyParams(r.cfg.StrategyType, base, r.cfg.Params)
	for _, key := range dropped {
		r.log.Warn("dropping unknown strategy parameter",
			zap.String("key", key),
			zap.String("strategy", string(r.cfg.StrategyType)))
	}

	if err := merged.Validate(); err != nil {
		return strategy.Config{}, err
	}

	return merged, nil
}

func (r *Runner) runSymbol(symbol string, stratCfg strategy.Config) types.BacktestResult {
	started := time.Now()
	result := types.BacktestResult{
		ID:        uuid.New().String(),
		Timestamp: started,
		Symbol:    symbol,
		Strategy:  string(r.cfg.StrategyType),
	}

	fail := func(err error) types.BacktestResult {
		r.log.Error("backtest failed",
			zap.String("symbol", symbol),
			zap.Error(err))
		result.Status = types.RunStatusFailed
		result.Error = err.Error()
		result.ExecutionTimeSeconds = round4(time.Since(started).Seconds())
		return result
	}

	bars, reportStart, err := r.fetchBars(symbol)
	if err != nil {
		return fail(err)
	}

	strat, err := strategy.New(r.cfg.StrategyType, stratCfg)
	if err != nil {
		return fail(err)
	}

	// Long custom periods can demand more history than the floor above
	// guarantees; a series shorter than the warmup can never signal.
	if warmup := strat.WarmupPeriod(); len(bars) < warmup {
		return fail(errors.NewInsufficientDataError(warmup, len(bars), symbol,
			"series shorter than the indicator warmup"))
	}

	if consumer, ok := strat.(strategy.SentimentConsumer); ok {
		series, err := r.fetchSentiment(symbol)
		if err != nil {
			return fail(err)
		}
		consumer.SetSentimentSeries(series)
	}

	broker, err := NewBroker(BrokerConfig{
		InitialCapital: r.cfg.InitialCapital,
		PositionSize:   stratCfg.PositionSize,
		StopLoss:       stratCfg.StopLoss,
		TakeProfit:     stratCfg.TakeProfit,
		StrategyName:   strat.Name(),
	}, commission_fee.GetCommissionFeeHandler(r.cfg.CommissionModel(), r.cfg.Commission), r.journal, r.log)
	if err != nil {
		return fail(err)
	}

	if err := strat.Prime(bars); err != nil {
		return fail(errors.Wrap(errors.ErrCodeBacktestInitFailed, "failed to prime strategy", err))
	}

	tracker := NewPortfolioTracker(r.cfg.InitialCapital)
	total := len(bars) - reportStart

	for i := reportStart; i < len(bars); i++ {
		bar := bars[i]

		// Ambient state (the sentiment window) advances on every bar,
		// decision or not.
		strat.Observe(i)

		closed, err := broker.ProcessContingent(bar)
		if err != nil {
			return fail(errors.Wrap(errors.ErrCodeBacktestFailed, "contingent order processing failed", err))
		}

		if !closed {
			decision, err := strat.Next(i, strategy.Snapshot{Position: broker.Position()})
			if err != nil {
				return fail(errors.Wrap(errors.ErrCodeBacktestFailed, "strategy evaluation failed", err))
			}

			switch decision.Action {
			case strategy.ActionBuy:
				if _, err := broker.SubmitBuy(bar, decision.Reason); err != nil {
					return fail(errors.Wrap(errors.ErrCodeBacktestFailed, "buy order failed", err))
				}
			case strategy.ActionSell:
				if err := broker.SubmitSell(bar, decision.Reason); err != nil {
					return fail(errors.Wrap(errors.ErrCodeBacktestFailed, "sell order failed", err))
				}
			}
		}

		tracker.Record(bar.Time, broker.Value(bar.Close))

		if r.progress.IsSome() {
			r.progress.Unwrap()(i-reportStart+1, total)
		}
	}

	result.Status = types.RunStatusCompleted
	result.FinalValue = tracker.FinalValue()
	result.EquityCurve = tracker.EquityCurve()
	result.Trades = broker.Trades()
	result.Metrics = CalculateMetrics(MetricsInput{
		InitialCapital: r.cfg.InitialCapital,
		FinalValue:     tracker.FinalValue(),
		EquityCurve:    tracker.EquityCurve(),
		Trades:         broker.Trades(),
		MaxDrawdown:    tracker.MaxDrawdown(),
		Start:          r.cfg.StartDate,
		End:            r.cfg.EndDate,
		FirstClose:     bars[reportStart].Close,
		LastClose:      bars[len(bars)-1].Close,
	})
	result.ExecutionTimeSeconds = round4(time.Since(started).Seconds())

	r.log.Info("backtest completed",
		zap.String("symbol", symbol),
		zap.Float64("final_value", result.FinalValue),
		zap.Int("trades", len(result.Trades)),
		zap.Float64("total_return", result.Metrics.TotalReturn))

	return result
}

// fetchBars loads the symbol's history with a lookback buffer ahead of the
// reporting start so moving averages are warmed up by the first reported
// bar. Returns the cleaned series and the index of the first reporting bar.
func (r *Runner) fetchBars(symbol string) ([]types.Bar, int, error) {
	bufferDays := int(lookbackTradingDays * lookbackBufferRatio)
	fetchStart := r.cfg.StartDate.AddDate(0, 0, -bufferDays)

	raw, err := r.bars.FetchBars(symbol, fetchStart, r.cfg.EndDate)
	if err != nil {
		return nil, 0, errors.Wrapf(errors.ErrCodeDataFetchFailed, err, "failed to fetch bars for %s", symbol)
	}

	bars := types.CleanBars(raw)
	if len(bars) < minRequiredBars {
		return nil, 0, errors.NewInsufficientDataError(minRequiredBars, len(bars), symbol,
			"not enough usable bars after cleaning")
	}

	reportStart := -1
	for i, bar := range bars {
		if !bar.Time.Before(r.cfg.StartDate) {
			reportStart = i
			break
		}
	}
	if reportStart == -1 {
		return nil, 0, errors.NewInsufficientDataError(1, 0, symbol,
			"no bars inside the requested window")
	}

	return bars, reportStart, nil
}

// fetchSentiment builds the daily sentiment series for the reporting window.
// A missing source or an empty article set yields an all-neutral series.
func (r *Runner) fetchSentiment(symbol string) (*sentiment.DailySeries, error) {
	if r.sentimentSrc.IsNone() {
		r.log.Info("no sentiment source configured, using neutral series",
			zap.String("symbol", symbol))
		return sentiment.Neutral(r.cfg.StartDate, r.cfg.EndDate), nil
	}

	articles, err := r.sentimentSrc.Unwrap().FetchArticleScores(symbol, r.cfg.StartDate, r.cfg.EndDate)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrCodeDataFetchFailed, err, "failed to fetch sentiment for %s", symbol)
	}

	series, err := sentiment.Aggregate(articles, r.cfg.StartDate, r.cfg.EndDate)
	if err != nil {
		return nil, err
	}

	return series, nil
}
