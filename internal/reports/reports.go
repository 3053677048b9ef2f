// Package reports derives dashboard and report figures from an owner's
// records. Every function is pure: given the same snapshot and the same
// "today" it returns the same result.
package reports

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"tallybook/internal/calendar"
	"tallybook/internal/models"
	"tallybook/internal/money"
)

// Uncategorized labels expenses whose category is missing or unknown.
const Uncategorized = "Uncategorized"

// TrendDays is the length of the dashboard revenue trend.
const TrendDays = 7

// LowStockDigest caps the low-stock list shown on the dashboard.
const LowStockDigest = 5

// Snapshot is everything one owner has on the books at read time.
type Snapshot struct {
	Income            []models.Income
	Expenses          []models.Expense
	ExpenseCategories []models.Category
	Sales             []models.Sale
	Products          []models.Product

	// Location decides which day a sale timestamp falls on. Nil means UTC.
	Location *time.Location
}

// Point is an amount on a day.
type Point struct {
	Date   calendar.Date
	Amount decimal.Decimal
}

// IncomePoints projects income rows to dated amounts.
func IncomePoints(income []models.Income) []Point {
	points := make([]Point, len(income))
	for i, in := range income {
		points[i] = Point{Date: in.IncomeDate, Amount: in.Amount}
	}
	return points
}

// ExpensePoints projects expense rows to dated amounts.
func ExpensePoints(expenses []models.Expense) []Point {
	points := make([]Point, len(expenses))
	for i, ex := range expenses {
		points[i] = Point{Date: ex.ExpenseDate, Amount: ex.Amount}
	}
	return points
}

// SumWindow adds the amounts of points falling inside w.
func SumWindow(points []Point, w calendar.Window) decimal.Decimal {
	total := decimal.Zero
	for _, p := range points {
		if w.Contains(p.Date) {
			total = total.Add(p.Amount)
		}
	}
	return total
}

// Totals are the headline figures of the dashboard.
type Totals struct {
	TodayRevenue  decimal.Decimal `json:"today_revenue"`
	WeekRevenue   decimal.Decimal `json:"week_revenue"`
	MonthRevenue  decimal.Decimal `json:"month_revenue"`
	TotalIncome   decimal.Decimal `json:"total_income"`
	TotalExpenses decimal.Decimal `json:"total_expenses"`
	NetProfit     decimal.Decimal `json:"net_profit"`
	TotalSales    int             `json:"total_sales"`
	LowStockCount int             `json:"low_stock_count"`
}

// ComputeTotals returns the dashboard totals. The week window starts seven
// days before today and the month window on the first of today's month; both
// are open ended, so future-dated income counts toward them.
func ComputeTotals(snap Snapshot, today calendar.Date) Totals {
	income := IncomePoints(snap.Income)
	totalIncome := money.Sum(income, func(p Point) decimal.Decimal { return p.Amount })
	totalExpenses := money.Sum(snap.Expenses, func(e models.Expense) decimal.Decimal { return e.Amount })

	return Totals{
		TodayRevenue:  SumWindow(income, calendar.Window{From: today, To: today}),
		WeekRevenue:   SumWindow(income, calendar.Since(today.AddDays(-7))),
		MonthRevenue:  SumWindow(income, calendar.Since(today.StartOfMonth())),
		TotalIncome:   totalIncome,
		TotalExpenses: totalExpenses,
		NetProfit:     totalIncome.Sub(totalExpenses),
		TotalSales:    len(snap.Sales),
		LowStockCount: CountLowStock(snap.Products),
	}
}

// Bucket is one day of a series.
type Bucket struct {
	Date   calendar.Date   `json:"date"`
	Amount decimal.Decimal `json:"amount"`
}

// DailySeries returns one zero-initialised bucket per day for the n days
// ending on today, oldest first, with each point added to its day. Points
// outside the window are dropped. n <= 0 yields an empty series.
func DailySeries(points []Point, n int, today calendar.Date) []Bucket {
	if n <= 0 {
		return []Bucket{}
	}
	days := calendar.LastDays(today, n).Days()
	buckets := make([]Bucket, len(days))
	for i, d := range days {
		buckets[i] = Bucket{Date: d, Amount: decimal.Zero}
	}
	first := days[0]
	for _, p := range points {
		if p.Date.Before(first) || p.Date.After(today) {
			continue
		}
		i := p.Date.DaysSince(first)
		buckets[i].Amount = buckets[i].Amount.Add(p.Amount)
	}
	return buckets
}

// FlowBucket pairs revenue and expenses for one day.
type FlowBucket struct {
	Date     calendar.Date   `json:"date"`
	Revenue  decimal.Decimal `json:"revenue"`
	Expenses decimal.Decimal `json:"expenses"`
}

// DailyFlows returns n paired revenue and expense buckets ending on today.
func DailyFlows(income []models.Income, expenses []models.Expense, n int, today calendar.Date) []FlowBucket {
	revenue := DailySeries(IncomePoints(income), n, today)
	spent := DailySeries(ExpensePoints(expenses), n, today)
	flows := make([]FlowBucket, len(revenue))
	for i := range revenue {
		flows[i] = FlowBucket{Date: revenue[i].Date, Revenue: revenue[i].Amount, Expenses: spent[i].Amount}
	}
	return flows
}

// CategoryTotal is the expense total for one category name.
type CategoryTotal struct {
	Name  string          `json:"name"`
	Total decimal.Decimal `json:"total"`
}

// CategoryBreakdown groups expenses by category name in order of first
// appearance. Expenses without a category, or whose category is not in
// categories, fall into a single Uncategorized bucket.
func CategoryBreakdown(expenses []models.Expense, categories []models.Category) []CategoryTotal {
	names := make(map[string]string, len(categories))
	for _, c := range categories {
		names[c.ID] = c.Name
	}

	var out []CategoryTotal
	pos := make(map[string]int)
	for _, e := range expenses {
		name := Uncategorized
		if e.CategoryID != nil {
			if n, ok := names[*e.CategoryID]; ok {
				name = n
			}
		}
		i, ok := pos[name]
		if !ok {
			i = len(out)
			pos[name] = i
			out = append(out, CategoryTotal{Name: name, Total: decimal.Zero})
		}
		out[i].Total = out[i].Total.Add(e.Amount)
	}
	if out == nil {
		return []CategoryTotal{}
	}
	return out
}

// LowStock returns the products at or below their threshold ordered by id,
// which for UUIDv7 ids is creation order. limit <= 0 returns all of them.
func LowStock(products []models.Product, limit int) []models.Product {
	low := make([]models.Product, 0)
	for _, p := range products {
		if p.IsLowStock() {
			low = append(low, p)
		}
	}
	sort.SliceStable(low, func(i, j int) bool { return low[i].ID < low[j].ID })
	if limit > 0 && len(low) > limit {
		low = low[:limit]
	}
	return low
}

// CountLowStock counts products at or below their threshold.
func CountLowStock(products []models.Product) int {
	n := 0
	for _, p := range products {
		if p.IsLowStock() {
			n++
		}
	}
	return n
}

// InventoryValue summarizes the stock on hand.
type InventoryValue struct {
	Products      int             `json:"products"`
	Units         int             `json:"units"`
	Value         decimal.Decimal `json:"value"`
	LowStockCount int             `json:"low_stock_count"`
}

// Inventory values the stock on hand at selling price.
func Inventory(products []models.Product) InventoryValue {
	v := InventoryValue{Products: len(products), Value: decimal.Zero}
	for _, p := range products {
		v.Units += p.Quantity
		v.Value = v.Value.Add(p.StockValue())
		if p.IsLowStock() {
			v.LowStockCount++
		}
	}
	return v
}
