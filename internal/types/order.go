package types

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/rxtech-lab/sentiment-backtest/pkg/errors"
)

type PurchaseType string

type TriggerType string

type OrderStatus string

const (
	PurchaseTypeBuy  PurchaseType = "BUY"
	PurchaseTypeSell PurchaseType = "SELL"
)

const (
	TriggerTypeMarket TriggerType = "MARKET"
	TriggerTypeStop   TriggerType = "STOP"
	TriggerTypeLimit  TriggerType = "LIMIT"
)

const (
	OrderStatusFilled    OrderStatus = "FILLED"
	OrderStatusCancelled OrderStatus = "CANCELLED"
	OrderStatusRejected  OrderStatus = "REJECTED"
)

const (
	OrderReasonGoldenCross          string = "golden_cross"
	OrderReasonDeathCross           string = "death_cross"
	OrderReasonStopLoss             string = "stop_loss"
	OrderReasonTakeProfit           string = "take_profit"
	OrderReasonPanicSentiment       string = "panic_sentiment"
	OrderReasonStrategy             string = "strategy"
	OrderReasonInsufficientBuyPower string = "insufficient_buying_power"
)

type Reason struct {
	Reason  string `yaml:"reason" json:"reason" csv:"reason" validate:"required"`
	Message string `yaml:"message" json:"message" csv:"message"`
}

// Order is a transient instruction to the broker: created, filled or
// cancelled within the same bar or the next. Stop and limit orders are the
// contingent exits armed at entry.
type Order struct {
	OrderID      string       `yaml:"order_id" json:"order_id" csv:"order_id"`
	Symbol       string       `yaml:"symbol" json:"symbol" csv:"symbol" validate:"required"`
	Side         PurchaseType `yaml:"side" json:"side" csv:"side" validate:"required,oneof=BUY SELL"`
	Trigger      TriggerType  `yaml:"trigger" json:"trigger" csv:"trigger" validate:"required,oneof=MARKET STOP LIMIT"`
	Quantity     int64        `yaml:"quantity" json:"quantity" csv:"quantity" validate:"required,gt=0"`
	Price        float64      `yaml:"price" json:"price" csv:"price" validate:"required,gt=0"`
	Timestamp    time.Time    `yaml:"timestamp" json:"timestamp" csv:"timestamp" validate:"required"`
	Status       OrderStatus  `yaml:"status" json:"status" csv:"status"`
	Reason       Reason       `yaml:"reason" json:"reason" csv:"reason" validate:"required"`
	StrategyName string       `yaml:"strategy_name" json:"strategy_name" csv:"strategy_name" validate:"required"`
	Fee          float64      `yaml:"fee" json:"fee" csv:"fee" validate:"gte=0"`
}

// Validate validates the Order struct.
func (o *Order) Validate() error {
	validate := validator.New()
	if err := validate.Struct(o); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidOrder, "invalid order", err)
	}

	return nil
}
