package queries

import "github.com/cambista/ledger/types"

type TransactionFilters struct {
	ClientID uint64                 `query:"client_id"`
	AssetID  uint64                 `query:"asset_id"`
	State    types.TransactionState `query:"state"`
	ParentID uint64                 `query:"parent_id"`
	TimeFrom int64                  `query:"time_from"`
	TimeTo   int64                  `query:"time_to"`
	Page     int                    `query:"page"`
	Limit    int                    `query:"limit"`
	OrderBy  types.OrderBy          `query:"order_by"`
}
