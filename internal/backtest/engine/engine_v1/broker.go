package engine

import (
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/moznion/go-optional"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/rxtech-lab/sentiment-backtest/internal/backtest/engine/engine_v1/commission_fee"
	"github.com/rxtech-lab/sentiment-backtest/internal/logger"
	"github.com/rxtech-lab/sentiment-backtest/internal/types"
	"github.com/rxtech-lab/sentiment-backtest/pkg/errors"
)

// riskySizeLow and riskySizeHigh bound the position sizes considered too
// aggressive to run unadjusted. Anything inside the band is clamped down to
// clampedSize so a fill plus commission can never exhaust the cash balance.
const (
	riskySizeLow  = 0.9
	riskySizeHigh = 1.0
	clampedSize   = 0.95
)

// Broker simulates order execution and position accounting for a single
// symbol. All fills happen at the bar close. At most one position is open at
// a time; contingent stop and limit exits are armed when an entry fills and
// evaluated against each bar close before the strategy acts.
type Broker struct {
	log        *logger.Logger
	commission commission_fee.CommissionFee
	journal    optional.Option[*TradeJournal]

	strategyName string
	positionSize float64
	stopLoss     float64
	takeProfit   float64

	cash     float64
	position types.Position

	pendingStop  optional.Option[types.Order]
	pendingLimit optional.Option[types.Order]

	orders []types.Order
	trades []types.Trade
}

type BrokerConfig struct {
	InitialCapital float64
	PositionSize   float64
	// StopLoss and TakeProfit are percent distances from the entry price.
	// Zero disables the corresponding contingent exit.
	StopLoss     float64
	TakeProfit   float64
	StrategyName string
}

func NewBroker(cfg BrokerConfig, commission commission_fee.CommissionFee, journal optional.Option[*TradeJournal], log *logger.Logger) (*Broker, error) {
	if cfg.InitialCapital <= 0 {
		return nil, errors.Newf(errors.ErrCodeInvalidConfiguration, "initial capital must be positive, got %f", cfg.InitialCapital)
	}

	size := cfg.PositionSize
	if size >= riskySizeLow && size <= riskySizeHigh {
		log.Info("position size clamped to keep commission headroom",
			zap.Float64("requested", size),
			zap.Float64("clamped", clampedSize))
		size = clampedSize
	}

	return &Broker{
		log:          log,
		commission:   commission,
		journal:      journal,
		strategyName: cfg.StrategyName,
		positionSize: size,
		stopLoss:     cfg.StopLoss,
		takeProfit:   cfg.TakeProfit,
		cash:         cfg.InitialCapital,
	}, nil
}

func (b *Broker) Cash() float64 {
	return b.cash
}

func (b *Broker) Position() types.Position {
	return b.position
}

// Value returns the marked-to-market portfolio value at the given price.
func (b *Broker) Value(price float64) float64 {
	if !b.position.Open {
		return b.cash
	}
	return b.cash + float64(b.position.Quantity)*price
}

func (b *Broker) Orders() []types.Order {
	return b.orders
}

func (b *Broker) Trades() []types.Trade {
	return b.trades
}

// ProcessContingent evaluates the armed stop and limit exits against the bar
// close, stop first. Returns true when the position was closed by a
// contingent order. Must run before the strategy sees the bar.
func (b *Broker) ProcessContingent(bar types.Bar) (bool, error) {
	if !b.position.Open {
		return false, nil
	}

	pnlPct := b.position.UnrealizedPnLPercent(bar.Close)

	if b.pendingStop.IsSome() && pnlPct <= -b.stopLoss/100 {
		order := b.pendingStop.Unwrap()
		// The fired leg fills through closePosition; only the sibling leg
		// is left to cancel.
		b.pendingStop = optional.None[types.Order]()
		if err := b.closePosition(bar, order.Trigger, types.Reason{
			Reason:  types.OrderReasonStopLoss,
			Message: fmt.Sprintf("close %.2f breached stop at %.2f", bar.Close, order.Price),
		}); err != nil {
			return false, err
		}
		return true, nil
	}

	if b.pendingLimit.IsSome() && pnlPct >= b.takeProfit/100 {
		order := b.pendingLimit.Unwrap()
		b.pendingLimit = optional.None[types.Order]()
		if err := b.closePosition(bar, order.Trigger, types.Reason{
			Reason:  types.OrderReasonTakeProfit,
			Message: fmt.Sprintf("close %.2f reached target at %.2f", bar.Close, order.Price),
		}); err != nil {
			return false, err
		}
		return true, nil
	}

	return false, nil
}

// SubmitBuy opens a position at the bar close, sized as an integer number of
// shares from the available cash. A quantity that rounds down to zero is
// rejected and logged, not an error. Returns true when the order filled.
func (b *Broker) SubmitBuy(bar types.Bar, reason types.Reason) (bool, error) {
	if b.position.Open {
		return false, errors.Newf(errors.ErrCodeOrderRejected, "position already open for %s", bar.Symbol)
	}
	if bar.Close <= 0 {
		return false, errors.Newf(errors.ErrCodeInvalidOrder, "non-positive close price %f", bar.Close)
	}

	quantity := int64(math.Floor(b.cash * b.positionSize / bar.Close))
	// Commission headroom. The clamp makes this loop a no-op in practice but
	// it keeps the cash invariant independent of the configured rate.
	for quantity > 0 {
		notional := float64(quantity) * bar.Close
		if notional+b.commission.Calculate(notional) <= b.cash {
			break
		}
		quantity--
	}

	if quantity <= 0 {
		b.log.Info("buy rejected, cash buys less than one share",
			zap.String("symbol", bar.Symbol),
			zap.Float64("cash", b.cash),
			zap.Float64("close", bar.Close))
		b.recordOrder(types.Order{
			OrderID:   uuid.New().String(),
			Symbol:    bar.Symbol,
			Side:      types.PurchaseTypeBuy,
			Trigger:   types.TriggerTypeMarket,
			Quantity:  0,
			Price:     bar.Close,
			Timestamp: bar.Time,
			Status:    types.OrderStatusRejected,
			Reason: types.Reason{
				Reason:  types.OrderReasonInsufficientBuyPower,
				Message: reason.Message,
			},
			StrategyName: b.strategyName,
		})
		return false, nil
	}

	notional := float64(quantity) * bar.Close
	fee := b.commission.Calculate(notional)
	b.cash -= notional + fee
	if err := b.checkCash(); err != nil {
		return false, err
	}

	b.position = types.Position{
		Symbol:     bar.Symbol,
		EntryPrice: bar.Close,
		EntryDate:  bar.Time,
		Quantity:   quantity,
		Open:       true,
	}

	b.recordOrder(types.Order{
		OrderID:      uuid.New().String(),
		Symbol:       bar.Symbol,
		Side:         types.PurchaseTypeBuy,
		Trigger:      types.TriggerTypeMarket,
		Quantity:     quantity,
		Price:        bar.Close,
		Timestamp:    bar.Time,
		Status:       types.OrderStatusFilled,
		Reason:       reason,
		StrategyName: b.strategyName,
		Fee:          fee,
	})
	b.armContingentExits(bar.Symbol, bar.Close, bar.Time)

	b.log.Info("position opened",
		zap.String("symbol", bar.Symbol),
		zap.Int64("quantity", quantity),
		zap.Float64("price", bar.Close),
		zap.String("reason", reason.Reason))

	return true, nil
}

// SubmitSell closes the full open position at the bar close.
func (b *Broker) SubmitSell(bar types.Bar, reason types.Reason) error {
	if !b.position.Open {
		return errors.Newf(errors.ErrCodePositionNotOpen, "no open position for %s", bar.Symbol)
	}
	return b.closePosition(bar, types.TriggerTypeMarket, reason)
}

func (b *Broker) armContingentExits(symbol string, entryPrice float64, ts time.Time) {
	if b.stopLoss > 0 {
		stopPrice := entryPrice * (1 - b.stopLoss/100)
		b.pendingStop = optional.Some(types.Order{
			OrderID:      uuid.New().String(),
			Symbol:       symbol,
			Side:         types.PurchaseTypeSell,
			Trigger:      types.TriggerTypeStop,
			Quantity:     b.position.Quantity,
			Price:        stopPrice,
			Timestamp:    ts,
			Reason:       types.Reason{Reason: types.OrderReasonStopLoss},
			StrategyName: b.strategyName,
		})
	}
	if b.takeProfit > 0 {
		limitPrice := entryPrice * (1 + b.takeProfit/100)
		b.pendingLimit = optional.Some(types.Order{
			OrderID:      uuid.New().String(),
			Symbol:       symbol,
			Side:         types.PurchaseTypeSell,
			Trigger:      types.TriggerTypeLimit,
			Quantity:     b.position.Quantity,
			Price:        limitPrice,
			Timestamp:    ts,
			Reason:       types.Reason{Reason: types.OrderReasonTakeProfit},
			StrategyName: b.strategyName,
		})
	}
}

func (b *Broker) cancelContingentExits(ts time.Time) {
	for _, pending := range []optional.Option[types.Order]{b.pendingStop, b.pendingLimit} {
		if pending.IsNone() {
			continue
		}
		order := pending.Unwrap()
		order.Status = types.OrderStatusCancelled
		order.Timestamp = ts
		b.recordOrder(order)
	}
	b.pendingStop = optional.None[types.Order]()
	b.pendingLimit = optional.None[types.Order]()
}

func (b *Broker) closePosition(bar types.Bar, trigger types.TriggerType, reason types.Reason) error {
	quantity := b.position.Quantity
	notional := float64(quantity) * bar.Close
	fee := b.commission.Calculate(notional)

	entry := decimal.NewFromFloat(b.position.EntryPrice)
	exit := decimal.NewFromFloat(bar.Close)
	qty := decimal.NewFromInt(quantity)
	pnl, _ := exit.Sub(entry).Mul(qty).Sub(decimal.NewFromFloat(fee)).Float64()
	pnlPct, _ := exit.Sub(entry).Div(entry).Mul(decimal.NewFromInt(100)).Float64()

	b.cash += notional - fee
	if err := b.checkCash(); err != nil {
		return err
	}

	trade := types.Trade{
		EntryDate:  b.position.EntryDate,
		ExitDate:   bar.Time,
		Symbol:     b.position.Symbol,
		EntryPrice: b.position.EntryPrice,
		ExitPrice:  bar.Close,
		Quantity:   quantity,
		PnL:        pnl,
		PnLPercent: pnlPct,
		ExitReason: reason.Reason,
	}
	b.trades = append(b.trades, trade)

	filled := types.Order{
		OrderID:      uuid.New().String(),
		Symbol:       bar.Symbol,
		Side:         types.PurchaseTypeSell,
		Trigger:      trigger,
		Quantity:     quantity,
		Price:        bar.Close,
		Timestamp:    bar.Time,
		Status:       types.OrderStatusFilled,
		Reason:       reason,
		StrategyName: b.strategyName,
		Fee:          fee,
	}
	b.recordOrder(filled)

	b.position = types.Position{}
	b.cancelContingentExits(bar.Time)

	if b.journal.IsSome() {
		if err := b.journal.Unwrap().RecordTrade(trade); err != nil {
			return errors.Wrap(errors.ErrCodeJournalFailed, "failed to journal trade", err)
		}
	}

	b.log.Info("position closed",
		zap.String("symbol", trade.Symbol),
		zap.Int64("quantity", quantity),
		zap.Float64("price", bar.Close),
		zap.Float64("pnl", pnl),
		zap.String("reason", reason.Reason))

	return nil
}

func (b *Broker) recordOrder(order types.Order) {
	b.orders = append(b.orders, order)
	if b.journal.IsSome() {
		if err := b.journal.Unwrap().RecordOrder(order); err != nil {
			b.log.Warn("failed to journal order", zap.Error(err))
		}
	}
}

func (b *Broker) checkCash() error {
	if b.cash < 0 {
		return errors.Newf(errors.ErrCodeBrokerInvariant, "cash balance went negative: %f", b.cash)
	}
	return nil
}
