package engine

import "matchcore/internal/common"

// SymbolSpec is the per-symbol tick/lot table the façade requires at
// construction time (spec.md §9 Open Question: tick/lot validation rules
// are not specified by the source; this implementation requires them up
// front and rejects anything off-tick or off-lot at admission).
type SymbolSpec struct {
	Symbol   string
	TickSize common.Price
	LotSize  common.Quantity
}
