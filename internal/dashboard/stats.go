// Package dashboard aggregates a group's expenses over a period for the home screen
// and the statistics page.
package dashboard

import (
	"cmp"
	"slices"
	"time"

	"github.com/shopspring/decimal"
)

const (
	PeriodWeek  = "week"
	PeriodMonth = "month"
	PeriodYear  = "year"

	defaultCategory    = "altro"
	defaultDisplayName = "Utente"
	dateLayout         = "2006-01-02"
)

// Entry is the slice of an expense the dashboard needs
type Entry struct {
	UserID      string
	DisplayName string
	Category    string
	Amount      int // Amount in cents
	Date        time.Time
}

// Request selects the period and, optionally, a single member
type Request struct {
	Period string
	UserID string
}

// CategoryBreakdown is the spending of one category
type CategoryBreakdown struct {
	Category   string  `json:"category"`
	Total      float64 `json:"total"`
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"`
}

// MemberBreakdown is the spending of one group member
type MemberBreakdown struct {
	UserID      string  `json:"user_id"`
	DisplayName string  `json:"display_name"`
	Total       float64 `json:"total"`
	Count       int     `json:"count"`
	Percentage  float64 `json:"percentage"`
}

// TrendPoint is the spending of one day
type TrendPoint struct {
	Date  string  `json:"date"`
	Total float64 `json:"total"`
	Count int     `json:"count"`
}

// Stats is the dashboard for one period
type Stats struct {
	Period         string              `json:"period"`
	StartDate      string              `json:"start_date"`
	EndDate        string              `json:"end_date"`
	TotalAmount    float64             `json:"total_amount"`
	ExpenseCount   int                 `json:"expense_count"`
	AverageExpense float64             `json:"average_expense"`
	ByCategory     []CategoryBreakdown `json:"by_category"`
	ByMember       []MemberBreakdown   `json:"by_member"`
	Trend          []TrendPoint        `json:"trend"`
}

type bucket struct {
	name  string
	total int
	count int
}

// Window returns the first and last day covered by a period ending at now.
// Unknown periods fall back to a month.
func Window(period string, now time.Time) (time.Time, time.Time) {
	end := day(now)
	switch period {
	case PeriodWeek:
		return end.AddDate(0, 0, -7), end
	case PeriodYear:
		return end.AddDate(-1, 0, 0), end
	default:
		return end.AddDate(0, -1, 0), end
	}
}

// Compute aggregates entries that fall inside the period window (inclusive)
func Compute(entries []Entry, req Request, now time.Time) *Stats {
	period := req.Period
	if period != PeriodWeek && period != PeriodYear {
		period = PeriodMonth
	}
	start, end := Window(period, now)

	var (
		total      int
		count      int
		categories = map[string]*bucket{}
		members    = map[string]*bucket{}
		days       = map[string]*bucket{}
	)

	for _, e := range entries {
		d := day(e.Date)
		if d.Before(start) || d.After(end) {
			continue
		}
		if req.UserID != "" && e.UserID != req.UserID {
			continue
		}

		total += e.Amount
		count++

		category := e.Category
		if category == "" {
			category = defaultCategory
		}
		add(categories, category, category, e.Amount)

		name := e.DisplayName
		if name == "" {
			name = defaultDisplayName
		}
		add(members, e.UserID, name, e.Amount)

		key := d.Format(dateLayout)
		add(days, key, key, e.Amount)
	}

	stats := &Stats{
		Period:         req.Period,
		StartDate:      start.Format(dateLayout),
		EndDate:        end.Format(dateLayout),
		TotalAmount:    euros(total),
		ExpenseCount:   count,
		AverageExpense: average(total, count),
		ByCategory:     make([]CategoryBreakdown, 0, len(categories)),
		ByMember:       make([]MemberBreakdown, 0, len(members)),
		Trend:          make([]TrendPoint, 0),
	}

	for _, key := range sortedKeys(categories) {
		b := categories[key]
		stats.ByCategory = append(stats.ByCategory, CategoryBreakdown{
			Category:   b.name,
			Total:      euros(b.total),
			Count:      b.count,
			Percentage: percentage(b.total, total),
		})
	}

	for _, key := range sortedKeys(members) {
		b := members[key]
		stats.ByMember = append(stats.ByMember, MemberBreakdown{
			UserID:      key,
			DisplayName: b.name,
			Total:       euros(b.total),
			Count:       b.count,
			Percentage:  percentage(b.total, total),
		})
	}

	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		point := TrendPoint{Date: d.Format(dateLayout)}
		if b, ok := days[point.Date]; ok {
			point.Total = euros(b.total)
			point.Count = b.count
		}
		stats.Trend = append(stats.Trend, point)
	}

	return stats
}

// add keeps the first name seen for a key
func add(buckets map[string]*bucket, key, name string, amount int) {
	b, ok := buckets[key]
	if !ok {
		b = &bucket{name: name}
		buckets[key] = b
	}
	b.total += amount
	b.count++
}

// sortedKeys orders buckets by total descending, then by key for stable output
func sortedKeys(buckets map[string]*bucket) []string {
	keys := make([]string, 0, len(buckets))
	for k := range buckets {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, func(a, b string) int {
		if c := cmp.Compare(buckets[b].total, buckets[a].total); c != 0 {
			return c
		}
		return cmp.Compare(a, b)
	})
	return keys
}

func day(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func euros(cents int) float64 {
	return decimal.New(int64(cents), -2).InexactFloat64()
}

func average(total, count int) float64 {
	if count == 0 {
		return 0
	}
	return decimal.New(int64(total), -2).
		Div(decimal.NewFromInt(int64(count))).
		Round(2).
		InexactFloat64()
}

// percentage is rounded to one decimal place
func percentage(part, total int) float64 {
	if total == 0 {
		return 0
	}
	return decimal.NewFromInt(int64(part)).
		Mul(decimal.NewFromInt(100)).
		Div(decimal.NewFromInt(int64(total))).
		Round(1).
		InexactFloat64()
}
