package engine

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"github.com/rxtech-lab/sentiment-backtest/internal/logger"
	"github.com/rxtech-lab/sentiment-backtest/internal/types"
)

type TradeJournalTestSuite struct {
	suite.Suite
	journal *TradeJournal
	logger  *logger.Logger
}

func (suite *TradeJournalTestSuite) SetupSuite() {
	suite.logger = logger.NewNopLogger()

	var err error
	suite.journal, err = NewTradeJournal(suite.logger)
	suite.Require().NoError(err)
}

func (suite *TradeJournalTestSuite) TearDownSuite() {
	if suite.journal != nil {
		suite.journal.Close()
	}
}

func (suite *TradeJournalTestSuite) TearDownTest() {
	suite.Require().NoError(suite.journal.Cleanup())
}

func TestTradeJournalSuite(t *testing.T) {
	suite.Run(t, new(TradeJournalTestSuite))
}

func journalTrade(day int, pnl float64) types.Trade {
	entry := time.Date(2023, 1, day, 0, 0, 0, 0, time.UTC)
	return types.Trade{
		EntryDate:  entry,
		ExitDate:   entry.AddDate(0, 0, 3),
		Symbol:     "AAPL",
		EntryPrice: 100,
		ExitPrice:  100 + pnl/10,
		Quantity:   10,
		PnL:        pnl,
		PnLPercent: pnl,
		ExitReason: types.OrderReasonDeathCross,
	}
}

func (suite *TradeJournalTestSuite) TestRecordAndReadTrades() {
	suite.Require().NoError(suite.journal.RecordTrade(journalTrade(5, -20)))
	suite.Require().NoError(suite.journal.RecordTrade(journalTrade(1, 50)))

	trades, err := suite.journal.GetAllTrades()
	suite.Require().NoError(err)
	suite.Require().Len(trades, 2)

	// Ordered by exit date.
	suite.InDelta(50.0, trades[0].PnL, 1e-9)
	suite.InDelta(-20.0, trades[1].PnL, 1e-9)
	suite.Equal("AAPL", trades[0].Symbol)
	suite.Equal(types.OrderReasonDeathCross, trades[0].ExitReason)
}

func (suite *TradeJournalTestSuite) TestRecordOrder() {
	order := types.Order{
		OrderID:      uuid.New().String(),
		Symbol:       "AAPL",
		Side:         types.PurchaseTypeBuy,
		Trigger:      types.TriggerTypeMarket,
		Quantity:     10,
		Price:        100,
		Timestamp:    time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC),
		Status:       types.OrderStatusFilled,
		Reason:       types.Reason{Reason: types.OrderReasonGoldenCross},
		StrategyName: "sma_crossover",
		Fee:          0.1,
	}

	suite.Require().NoError(suite.journal.RecordOrder(order))
}

func (suite *TradeJournalTestSuite) TestWriteExportsParquet() {
	suite.Require().NoError(suite.journal.RecordTrade(journalTrade(1, 10)))

	dir, err := os.MkdirTemp("", "journal")
	suite.Require().NoError(err)
	defer os.RemoveAll(dir)

	suite.Require().NoError(suite.journal.Write(dir))

	for _, name := range []string{"trades.parquet", "orders.parquet"} {
		info, err := os.Stat(filepath.Join(dir, name))
		suite.Require().NoError(err, name)
		suite.Positive(info.Size())
	}
}

func (suite *TradeJournalTestSuite) TestCleanupResetsTables() {
	suite.Require().NoError(suite.journal.RecordTrade(journalTrade(1, 10)))
	suite.Require().NoError(suite.journal.Cleanup())

	trades, err := suite.journal.GetAllTrades()
	suite.Require().NoError(err)
	suite.Empty(trades)
}
