package reports

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tallybook/internal/calendar"
	"tallybook/internal/models"
)

var today = calendar.MustParse("2024-03-15")

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func income(amount string, daysAgo int) models.Income {
	return models.Income{Amount: dec(amount), IncomeDate: today.AddDays(-daysAgo)}
}

func expense(amount string, daysAgo int, categoryID *string) models.Expense {
	return models.Expense{Amount: dec(amount), ExpenseDate: today.AddDays(-daysAgo), CategoryID: categoryID}
}

func ptr(s string) *string { return &s }

func assertDecimal(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	assert.True(t, dec(want).Equal(got), "expected %s, got %s", want, got)
}

func TestComputeTotals(t *testing.T) {
	t.Run("windows", func(t *testing.T) {
		snap := Snapshot{
			Income: []models.Income{
				income("100", 0),
				income("50", 3),
				income("25", 7),  // week lower bound is inclusive
				income("40", 10), // outside the week, inside the month
				income("999", 20),
			},
			Expenses: []models.Expense{expense("30", 1, nil), expense("70", 40, nil)},
			Sales:    []models.Sale{{}, {}, {}},
		}

		totals := ComputeTotals(snap, today)
		assertDecimal(t, "100", totals.TodayRevenue)
		assertDecimal(t, "175", totals.WeekRevenue)
		assertDecimal(t, "215", totals.MonthRevenue)
		assertDecimal(t, "1214", totals.TotalIncome)
		assertDecimal(t, "100", totals.TotalExpenses)
		assertDecimal(t, "1114", totals.NetProfit)
		assert.Equal(t, 3, totals.TotalSales)
	})

	t.Run("income_ten_days_ago_counts_all_time_only", func(t *testing.T) {
		snap := Snapshot{Income: []models.Income{income("80", 10)}}
		totals := ComputeTotals(snap, today)

		assertDecimal(t, "0", totals.WeekRevenue)
		assertDecimal(t, "80", totals.TotalIncome)
	})

	t.Run("net_profit_can_be_negative", func(t *testing.T) {
		snap := Snapshot{
			Income:   []models.Income{income("10", 0)},
			Expenses: []models.Expense{expense("25.50", 0, nil)},
		}
		assertDecimal(t, "-15.50", ComputeTotals(snap, today).NetProfit)
	})

	t.Run("empty", func(t *testing.T) {
		totals := ComputeTotals(Snapshot{}, today)
		assert.True(t, totals.TotalIncome.IsZero())
		assert.True(t, totals.NetProfit.IsZero())
		assert.Equal(t, 0, totals.TotalSales)
	})
}

func TestDailySeries(t *testing.T) {
	t.Run("empty_window_has_n_zero_buckets_ending_today", func(t *testing.T) {
		for _, n := range []int{1, 7, 30, 90} {
			series := DailySeries(nil, n, today)
			require.Len(t, series, n)
			assert.Equal(t, today, series[n-1].Date)
			assert.Equal(t, today.AddDays(-(n - 1)), series[0].Date)
			for _, b := range series {
				assert.True(t, b.Amount.IsZero())
			}
		}
	})

	t.Run("adds_points_to_their_day", func(t *testing.T) {
		points := IncomePoints([]models.Income{
			income("10", 0),
			income("5", 0),
			income("7", 6),
			income("99", 7),  // one day before the window
			income("42", -1), // tomorrow
		})
		series := DailySeries(points, 7, today)

		require.Len(t, series, 7)
		assertDecimal(t, "7", series[0].Amount)
		assertDecimal(t, "15", series[6].Amount)

		total := decimal.Zero
		for _, b := range series {
			total = total.Add(b.Amount)
		}
		assertDecimal(t, "22", total)
	})

	t.Run("non_positive_length", func(t *testing.T) {
		assert.Empty(t, DailySeries(nil, 0, today))
		assert.Empty(t, DailySeries(nil, -3, today))
	})
}

func TestDailyFlows(t *testing.T) {
	flows := DailyFlows(
		[]models.Income{income("12", 1)},
		[]models.Expense{expense("4", 1, nil), expense("3", 2, nil)},
		3, today,
	)
	require.Len(t, flows, 3)
	assertDecimal(t, "0", flows[0].Revenue)
	assertDecimal(t, "3", flows[0].Expenses)
	assertDecimal(t, "12", flows[1].Revenue)
	assertDecimal(t, "4", flows[1].Expenses)
	assert.Equal(t, today, flows[2].Date)
}

func TestCategoryBreakdown(t *testing.T) {
	categories := []models.Category{
		{Base: models.Base{ID: "c-rent"}, Name: "Rent"},
		{Base: models.Base{ID: "c-stock"}, Name: "Stock"},
	}
	expenses := []models.Expense{
		expense("20", 0, ptr("c-stock")),
		expense("500", 0, ptr("c-rent")),
		expense("5", 0, nil),
		expense("30", 0, ptr("c-stock")),
		expense("7", 0, ptr("deleted")),
	}

	breakdown := CategoryBreakdown(expenses, categories)
	require.Len(t, breakdown, 3)
	assert.Equal(t, "Stock", breakdown[0].Name)
	assertDecimal(t, "50", breakdown[0].Total)
	assert.Equal(t, "Rent", breakdown[1].Name)
	assert.Equal(t, Uncategorized, breakdown[2].Name)
	assertDecimal(t, "12", breakdown[2].Total)

	sum := decimal.Zero
	for _, c := range breakdown {
		sum = sum.Add(c.Total)
	}
	assertDecimal(t, "562", sum)

	assert.Empty(t, CategoryBreakdown(nil, categories))
}

func TestLowStock(t *testing.T) {
	products := []models.Product{
		{Base: models.Base{ID: "03"}, Quantity: 1, LowStockThreshold: 5},
		{Base: models.Base{ID: "01"}, Quantity: 5, LowStockThreshold: 5},
		{Base: models.Base{ID: "02"}, Quantity: 6, LowStockThreshold: 5},
		{Base: models.Base{ID: "05"}, Quantity: 0, LowStockThreshold: 0},
		{Base: models.Base{ID: "04"}, Quantity: 2, LowStockThreshold: 3},
	}

	low := LowStock(products, 0)
	require.Len(t, low, 4)
	assert.Equal(t, "01", low[0].ID)
	assert.Equal(t, "03", low[1].ID)
	assert.Equal(t, "04", low[2].ID)
	assert.Equal(t, "05", low[3].ID)

	assert.Len(t, LowStock(products, 2), 2)
	assert.Equal(t, 4, CountLowStock(products))
}

func TestInventory(t *testing.T) {
	v := Inventory([]models.Product{
		{SellingPrice: dec("2.50"), Quantity: 10, LowStockThreshold: 5},
		{SellingPrice: dec("100"), Quantity: 1, LowStockThreshold: 5},
	})
	assert.Equal(t, 2, v.Products)
	assert.Equal(t, 11, v.Units)
	assertDecimal(t, "125", v.Value)
	assert.Equal(t, 1, v.LowStockCount)
}

func TestSummarize(t *testing.T) {
	snap := Snapshot{
		Income:   []models.Income{income("100", 0), income("50", 7), income("10", 8)},
		Expenses: []models.Expense{expense("30", 2, nil), expense("1000", 30, nil)},
		Sales: []models.Sale{
			{SaleDate: today.Time().Add(10 * time.Hour)},
			{SaleDate: today.AddDays(-7).Time()},
			{SaleDate: today.AddDays(-8).Time().Add(23 * time.Hour)},
		},
	}

	s := Summarize(snap, 7, today)
	assert.Equal(t, today.AddDays(-7), s.From)
	assertDecimal(t, "150", s.Revenue)
	assertDecimal(t, "30", s.Expenses)
	assertDecimal(t, "120", s.Profit)
	assert.Equal(t, 2, s.SalesCount)
}

func TestSummarize_SaleDayUsesLocation(t *testing.T) {
	loc := time.FixedZone("UTC+3", 3*60*60)
	// 22:00 UTC the day before the window is already inside it at UTC+3.
	sale := models.Sale{SaleDate: today.AddDays(-8).Time().Add(22 * time.Hour)}

	utc := Summarize(Snapshot{Sales: []models.Sale{sale}}, 7, today)
	local := Summarize(Snapshot{Sales: []models.Sale{sale}, Location: loc}, 7, today)

	assert.Equal(t, 0, utc.SalesCount)
	assert.Equal(t, 1, local.SalesCount)
}

func TestBuildDashboard(t *testing.T) {
	products := make([]models.Product, 0, 8)
	for _, id := range []string{"a", "b", "c", "d", "e", "f", "g", "h"} {
		products = append(products, models.Product{Base: models.Base{ID: id}, Quantity: 1, LowStockThreshold: 5})
	}
	snap := Snapshot{Income: []models.Income{income("9", 2)}, Products: products}

	d := BuildDashboard(snap, today)
	assert.Equal(t, today, d.Date)
	assert.Len(t, d.RevenueTrend, TrendDays)
	assertDecimal(t, "9", d.RevenueTrend[4].Amount)
	assert.Len(t, d.LowStock, LowStockDigest)
	assert.Equal(t, 8, d.Totals.LowStockCount)
	assert.NotNil(t, d.ExpenseBreakdown)
}

func TestBuildReport(t *testing.T) {
	for _, days := range Periods {
		r := BuildReport(Snapshot{}, days, today)
		assert.Len(t, r.Daily, days)
		assert.Equal(t, days, r.Summary.Days)
	}
	assert.True(t, ValidPeriod(30))
	assert.False(t, ValidPeriod(14))
}
