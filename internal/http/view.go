package http

import (
	"time"

	"github.com/shopspring/decimal"

	"rewards/internal/core"
	"rewards/internal/report"
	"rewards/internal/services"
)

const fetchFailedMessage = "Failed to load transaction data. Please try again."

// reportView is the data behind the report partial.
type reportView struct {
	Seq          uint64
	From, To     core.Date
	Error        string
	Sections     []report.MonthSection
	Customers    []report.CustomerMonths
	Totals       []core.TotalRewardSummary
	Transactions []core.Transaction
	TotalPoints  int64
	TotalSpent   decimal.Decimal
	CompletedAt  time.Time
}

func newReportView(snap services.Snapshot) reportView {
	v := reportView{
		Seq:         snap.Seq,
		From:        snap.Range.From,
		To:          snap.Range.To,
		CompletedAt: snap.CompletedAt,
	}
	if !snap.OK() {
		v.Error = fetchFailedMessage
		return v
	}

	rep := snap.Report
	v.Sections = report.ByMonth(rep.Monthly, rep.Transactions)
	v.Customers = report.ByCustomer(rep.Monthly)
	v.Totals = rep.Totals
	v.Transactions = rep.Transactions
	for _, t := range rep.Totals {
		v.TotalPoints += t.RewardPoints
		v.TotalSpent = v.TotalSpent.Add(t.TotalAmountSpent)
	}
	return v
}

// pageData is the data behind index.html.
type pageData struct {
	From, To    string
	MaxDate     string
	FilterError string
	RangeMonths int
	Report      *reportView
}

// reportResponse is the JSON shape of /api/report.
type reportResponse struct {
	Seq            uint64                      `json:"seq"`
	From           string                      `json:"from,omitempty"`
	To             string                      `json:"to,omitempty"`
	Transactions   []core.Transaction          `json:"transactions"`
	MonthlyRewards []core.MonthlyRewardSummary `json:"monthlyRewards"`
	TotalRewards   []core.TotalRewardSummary   `json:"totalRewards"`
	Error          string                      `json:"error,omitempty"`
	CompletedAt    time.Time                   `json:"completedAt"`
}

func newReportResponse(snap services.Snapshot) reportResponse {
	resp := reportResponse{
		Seq:            snap.Seq,
		From:           snap.Range.From.String(),
		To:             snap.Range.To.String(),
		Transactions:   []core.Transaction{},
		MonthlyRewards: []core.MonthlyRewardSummary{},
		TotalRewards:   []core.TotalRewardSummary{},
		CompletedAt:    snap.CompletedAt,
	}
	if !snap.OK() {
		resp.Error = fetchFailedMessage
		return resp
	}
	if snap.Report.Transactions != nil {
		resp.Transactions = snap.Report.Transactions
	}
	if snap.Report.Monthly != nil {
		resp.MonthlyRewards = snap.Report.Monthly
	}
	if snap.Report.Totals != nil {
		resp.TotalRewards = snap.Report.Totals
	}
	return resp
}
