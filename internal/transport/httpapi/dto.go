package httpapi

import (
	"matchcore/internal/common"
	"matchcore/internal/engine"
)

// orderRequestDTO is the wire shape of the order submission contract
// (spec.md §6).
type orderRequestDTO struct {
	Symbol    string `json:"symbol"`
	OrderType string `json:"order_type"`
	Side      string `json:"side"`
	Quantity  string `json:"quantity"`
	Price     string `json:"price,omitempty"`
}

type tradeDTO struct {
	TradeID       uint64 `json:"trade_id"`
	Price         string `json:"price"`
	Quantity      string `json:"quantity"`
	AggressorSide string `json:"aggressor_side"`
	MakerOrderID  string `json:"maker_order_id"`
	TakerOrderID  string `json:"taker_order_id"`
	Timestamp     int64  `json:"timestamp"`
}

type orderResponseDTO struct {
	Status            string     `json:"status"`
	OrderID           string     `json:"order_id"`
	Sequence          uint64     `json:"sequence"`
	Trades            []tradeDTO `json:"trades"`
	RemainingQuantity string     `json:"remaining_quantity"`
	Reason            string     `json:"reason,omitempty"`
}

func toResponseDTO(resp engine.Response) orderResponseDTO {
	trades := make([]tradeDTO, 0, len(resp.Trades))
	for _, t := range resp.Trades {
		trades = append(trades, tradeDTO{
			TradeID:       t.TradeID,
			Price:         t.Price.String(),
			Quantity:      t.Quantity.String(),
			AggressorSide: t.AggressorSide.String(),
			MakerOrderID:  t.MakerOrderID,
			TakerOrderID:  t.TakerOrderID,
			Timestamp:     t.Timestamp.Unix(),
		})
	}
	return orderResponseDTO{
		Status:            string(resp.Status),
		OrderID:           resp.OrderID,
		Sequence:          resp.Sequence,
		Trades:            trades,
		RemainingQuantity: resp.RemainingQuantity.String(),
		Reason:            resp.Reason,
	}
}

type levelDTO struct {
	Price    string `json:"price"`
	Quantity string `json:"quantity"`
}

type bookResponseDTO struct {
	Bids      []levelDTO `json:"bids"`
	Asks      []levelDTO `json:"asks"`
	Timestamp int64      `json:"timestamp"`
	Sequence  uint64     `json:"sequence"`
}

type bboResponseDTO struct {
	Bid *levelDTO `json:"bid"`
	Ask *levelDTO `json:"ask"`
}

type statsResponseDTO struct {
	TotalOrdersAccepted    uint64            `json:"total_orders_accepted"`
	TotalOrdersRejected    uint64            `json:"total_orders_rejected"`
	TotalTrades            uint64            `json:"total_trades"`
	TotalMatchedVolume     map[string]string `json:"total_matched_volume_per_symbol"`
	UptimeSeconds          float64           `json:"uptime_seconds"`
}

type errorResponseDTO struct {
	Error  string `json:"error"`
	Reason string `json:"reason,omitempty"`
}

func parseOrderRequest(dto orderRequestDTO) (engine.OrderRequest, *common.ValidationError) {
	orderType, ok := common.ParseOrderType(dto.OrderType)
	if !ok {
		return engine.OrderRequest{}, common.NewValidationError(common.ReasonMalformedRequest)
	}
	side, ok := common.ParseSide(dto.Side)
	if !ok {
		return engine.OrderRequest{}, common.NewValidationError(common.ReasonMalformedRequest)
	}
	qty, err := common.ParseQuantity(dto.Quantity)
	if err != nil {
		return engine.OrderRequest{}, common.NewValidationError(common.ReasonMalformedRequest)
	}

	var price *common.Price
	if dto.Price != "" {
		p, err := common.ParsePrice(dto.Price)
		if err != nil {
			return engine.OrderRequest{}, common.NewValidationError(common.ReasonMalformedRequest)
		}
		price = &p
	}

	return engine.OrderRequest{
		Symbol:   dto.Symbol,
		Side:     side,
		Type:     orderType,
		Price:    price,
		Quantity: qty,
	}, nil
}
