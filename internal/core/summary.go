package core

import "github.com/shopspring/decimal"

// CustomerGroup holds a customer's transactions in input order.
type CustomerGroup struct {
	CustomerID   string
	CustomerName string
	Transactions []Transaction
}

// MonthlyRewardSummary is the reward total of one customer for one calendar month.
type MonthlyRewardSummary struct {
	CustomerID       string          `json:"customerId"`
	CustomerName     string          `json:"customerName"`
	Month            int             `json:"month"` // 0-11
	Year             int             `json:"year"`
	RewardPoints     int64           `json:"rewardPoints"`
	MonthName        string          `json:"monthName"`
	TotalAmountSpent decimal.Decimal `json:"totalAmountSpent"`
}

// TotalRewardSummary is the reward total of one customer across all months.
type TotalRewardSummary struct {
	CustomerID       string          `json:"customerId"`
	CustomerName     string          `json:"customerName"`
	RewardPoints     int64           `json:"rewardPoints"`
	TotalAmountSpent decimal.Decimal `json:"totalAmountSpent"`
}
