package types

type TransactionState = string

var (
	StatePending        TransactionState = "pending"
	StateCurrentAccount TransactionState = "current_account"
	StateCompleted      TransactionState = "completed"
	StateCancelled      TransactionState = "cancelled"
)

type MovementType = string

var (
	MovementIncome  MovementType = "income"
	MovementExpense MovementType = "expense"
)

type OrderBy = string

var (
	OrderByAsc  OrderBy = "asc"
	OrderByDesc OrderBy = "desc"
)
