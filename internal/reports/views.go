package reports

import (
	"github.com/shopspring/decimal"

	"tallybook/internal/calendar"
	"tallybook/internal/models"
)

// Periods lists the report lengths, in days, the API offers.
var Periods = []int{7, 30, 90}

// DefaultPeriod is used when a report is requested without a period.
const DefaultPeriod = 30

// ValidPeriod reports whether days is one of Periods.
func ValidPeriod(days int) bool {
	for _, p := range Periods {
		if p == days {
			return true
		}
	}
	return false
}

// Summary is the windowed profit and loss for a report period.
type Summary struct {
	Days       int             `json:"days"`
	From       calendar.Date   `json:"from"`
	To         calendar.Date   `json:"to"`
	Revenue    decimal.Decimal `json:"revenue"`
	Expenses   decimal.Decimal `json:"expenses"`
	Profit     decimal.Decimal `json:"profit"`
	SalesCount int             `json:"sales_count"`
}

// Summarize totals revenue, expenses and sales dated on or after
// today minus days. The lower bound is inclusive, so the window spans
// days+1 calendar days, matching how the period has always been reported.
func Summarize(snap Snapshot, days int, today calendar.Date) Summary {
	from := today.AddDays(-days)
	w := calendar.Since(from)

	revenue := SumWindow(IncomePoints(snap.Income), w)
	expenses := SumWindow(ExpensePoints(snap.Expenses), w)

	sales := 0
	for _, s := range snap.Sales {
		if w.Contains(calendar.In(s.SaleDate, snap.Location)) {
			sales++
		}
	}

	return Summary{
		Days:       days,
		From:       from,
		To:         today,
		Revenue:    revenue,
		Expenses:   expenses,
		Profit:     revenue.Sub(expenses),
		SalesCount: sales,
	}
}

// Dashboard is the overview screen.
type Dashboard struct {
	Date             calendar.Date    `json:"date"`
	Totals           Totals           `json:"totals"`
	RevenueTrend     []Bucket         `json:"revenue_trend"`
	ExpenseBreakdown []CategoryTotal  `json:"expense_breakdown"`
	LowStock         []models.Product `json:"low_stock"`
}

// BuildDashboard assembles the dashboard for today.
func BuildDashboard(snap Snapshot, today calendar.Date) Dashboard {
	return Dashboard{
		Date:             today,
		Totals:           ComputeTotals(snap, today),
		RevenueTrend:     DailySeries(IncomePoints(snap.Income), TrendDays, today),
		ExpenseBreakdown: CategoryBreakdown(snap.Expenses, snap.ExpenseCategories),
		LowStock:         LowStock(snap.Products, LowStockDigest),
	}
}

// Report is the period report screen.
type Report struct {
	Summary Summary      `json:"summary"`
	Daily   []FlowBucket `json:"daily"`
}

// BuildReport assembles a days-long report ending today.
func BuildReport(snap Snapshot, days int, today calendar.Date) Report {
	return Report{
		Summary: Summarize(snap, days, today),
		Daily:   DailyFlows(snap.Income, snap.Expenses, days, today),
	}
}
