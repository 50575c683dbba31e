package engine

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"github.com/Masterminds/squirrel"
	_ "github.com/marcboeker/go-duckdb"
	"go.uber.org/zap"

	"github.com/rxtech-lab/sentiment-backtest/internal/logger"
	"github.com/rxtech-lab/sentiment-backtest/internal/types"
	"github.com/rxtech-lab/sentiment-backtest/pkg/errors"
)

// TradeJournal persists every order and closed trade of a run into an
// in-memory DuckDB database so they can be queried and exported to Parquet
// after the run.
type TradeJournal struct {
	db     *sql.DB
	logger *logger.Logger
	sq     squirrel.StatementBuilderType
}

func NewTradeJournal(logger *logger.Logger) (*TradeJournal, error) {
	db, err := sql.Open("duckdb", ":memory:")
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeJournalFailed, "failed to open journal database", err)
	}

	j := &TradeJournal{
		db:     db,
		logger: logger,
		sq:     squirrel.StatementBuilder.PlaceholderFormat(squirrel.Question),
	}
	if err := j.initialize(); err != nil {
		db.Close()
		return nil, err
	}

	return j, nil
}

func (j *TradeJournal) initialize() error {
	_, err := j.db.Exec(`
		CREATE TABLE IF NOT EXISTS orders (
			order_id TEXT PRIMARY KEY,
			symbol TEXT,
			side TEXT,
			trigger TEXT,
			quantity BIGINT,
			price DOUBLE,
			timestamp TIMESTAMP,
			status TEXT,
			reason TEXT,
			message TEXT,
			strategy_name TEXT,
			fee DOUBLE
		)
	`)
	if err != nil {
		return errors.Wrap(errors.ErrCodeJournalFailed, "failed to create orders table", err)
	}

	_, err = j.db.Exec(`
		CREATE TABLE IF NOT EXISTS trades (
			symbol TEXT,
			entry_date TIMESTAMP,
			exit_date TIMESTAMP,
			entry_price DOUBLE,
			exit_price DOUBLE,
			quantity BIGINT,
			pnl DOUBLE,
			pnl_percent DOUBLE,
			exit_reason TEXT
		)
	`)
	if err != nil {
		return errors.Wrap(errors.ErrCodeJournalFailed, "failed to create trades table", err)
	}

	return nil
}

func (j *TradeJournal) RecordOrder(order types.Order) error {
	_, err := j.sq.
		Insert("orders").
		Columns("order_id", "symbol", "side", "trigger", "quantity", "price",
			"timestamp", "status", "reason", "message", "strategy_name", "fee").
		Values(order.OrderID, order.Symbol, string(order.Side), string(order.Trigger),
			order.Quantity, order.Price, order.Timestamp, string(order.Status),
			order.Reason.Reason, order.Reason.Message, order.StrategyName, order.Fee).
		RunWith(j.db).
		Exec()
	if err != nil {
		return errors.Wrap(errors.ErrCodeJournalFailed, "failed to insert order", err)
	}

	return nil
}

func (j *TradeJournal) RecordTrade(trade types.Trade) error {
	_, err := j.sq.
		Insert("trades").
		Columns("symbol", "entry_date", "exit_date", "entry_price", "exit_price",
			"quantity", "pnl", "pnl_percent", "exit_reason").
		Values(trade.Symbol, trade.EntryDate, trade.ExitDate, trade.EntryPrice,
			trade.ExitPrice, trade.Quantity, trade.PnL, trade.PnLPercent, trade.ExitReason).
		RunWith(j.db).
		Exec()
	if err != nil {
		return errors.Wrap(errors.ErrCodeJournalFailed, "failed to insert trade", err)
	}

	return nil
}

func (j *TradeJournal) GetAllTrades() ([]types.Trade, error) {
	rows, err := j.sq.
		Select("symbol", "entry_date", "exit_date", "entry_price", "exit_price",
			"quantity", "pnl", "pnl_percent", "exit_reason").
		From("trades").
		OrderBy("exit_date ASC").
		RunWith(j.db).
		Query()
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeJournalFailed, "failed to query trades", err)
	}
	defer rows.Close()

	var trades []types.Trade
	for rows.Next() {
		var trade types.Trade
		err := rows.Scan(
			&trade.Symbol,
			&trade.EntryDate,
			&trade.ExitDate,
			&trade.EntryPrice,
			&trade.ExitPrice,
			&trade.Quantity,
			&trade.PnL,
			&trade.PnLPercent,
			&trade.ExitReason,
		)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeJournalFailed, "failed to scan trade", err)
		}
		trades = append(trades, trade)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeJournalFailed, "error iterating trades", err)
	}

	return trades, nil
}

// Write exports the journal to Parquet files in the given directory.
func (j *TradeJournal) Write(path string) error {
	if err := os.MkdirAll(path, 0755); err != nil {
		return errors.Wrap(errors.ErrCodeResultsWriteFailed, "failed to create results directory", err)
	}

	// Squirrel has no COPY syntax, use raw SQL.
	tradesPath := filepath.Join(path, "trades.parquet")
	if _, err := j.db.Exec(fmt.Sprintf(`COPY trades TO '%s' (FORMAT PARQUET)`, tradesPath)); err != nil {
		return errors.Wrap(errors.ErrCodeResultsWriteFailed, "failed to export trades", err)
	}

	ordersPath := filepath.Join(path, "orders.parquet")
	if _, err := j.db.Exec(fmt.Sprintf(`COPY orders TO '%s' (FORMAT PARQUET)`, ordersPath)); err != nil {
		return errors.Wrap(errors.ErrCodeResultsWriteFailed, "failed to export orders", err)
	}

	j.logger.Info("exported journal to Parquet",
		zap.String("trades", tradesPath),
		zap.String("orders", ordersPath),
	)

	return nil
}

// Cleanup drops and recreates the journal tables.
func (j *TradeJournal) Cleanup() error {
	_, err := j.db.Exec(`
		DROP TABLE IF EXISTS trades;
		DROP TABLE IF EXISTS orders;
	`)
	if err != nil {
		return errors.Wrap(errors.ErrCodeJournalFailed, "failed to drop journal tables", err)
	}

	return j.initialize()
}

func (j *TradeJournal) Close() error {
	return j.db.Close()
}
