package report

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"unicode/utf8"

	"go-payouts/internal/appointment"
	"go-payouts/internal/employee"
	"go-payouts/internal/payoutrate"
	"go-payouts/internal/period"

	"github.com/shopspring/decimal"
)

const MaxWeeks = 52

var ErrInvalidWeeks = fmt.Errorf("weeks must be between 0 and %d", MaxWeeks)

// RangeRow is one employee in a range report. Payout is the work done in the
// range (per record and percent) plus the fixed rate and the product sale
// commissions of the month the range ends in.
type RangeRow struct {
	EmployeeID string          `json:"employee_id"`
	Name       string          `json:"name"`
	Completed  int             `json:"completed"`
	Revenue    decimal.Decimal `json:"revenue"`
	Payout     int64           `json:"payout"`
	Fixed      int64           `json:"fixed"`
	Product    int64           `json:"product"`
}

func (r RangeRow) isZero() bool {
	return r.Completed == 0 && r.Revenue.IsZero() && r.Payout == 0 && r.Fixed == 0 && r.Product == 0
}

type RangeReport struct {
	From   period.Date   `json:"from"`
	To     period.Date   `json:"to"`
	Month  period.Period `json:"month"`
	Rows   []RangeRow    `json:"rows"`
	Totals RangeRow      `json:"totals"`
}

// Span returns the inclusive range of a report ending on end: the day itself
// when weeks is 0, otherwise weeks*7 days.
func Span(end period.Date, weeks int) (period.Date, period.Date, error) {
	if weeks < 0 || weeks > MaxWeeks {
		return period.Date{}, period.Date{}, ErrInvalidWeeks
	}
	if weeks == 0 {
		return end, end, nil
	}
	return end.AddDays(-(weeks*7 - 1)), end, nil
}

// BuildRange reports every directory employee over [from, to]. Employees
// with nothing to show are left out; the rest are ordered by payout, then
// revenue, both descending. products may be nil.
func BuildRange(
	employees []employee.Employee,
	apps []appointment.Appointment,
	rates func(employeeID string) payoutrate.Rates,
	products func(employeeID string) int64,
	from, to period.Date,
) (RangeReport, error) {
	if to.Before(from) {
		return RangeReport{}, errors.New("range ends before it starts")
	}

	agg := appointment.AggregateRange(apps, from, to)
	rep := RangeReport{From: from, To: to, Month: to.Period()}

	for _, e := range employees {
		stats := agg.For(e.ID)
		r := rates(e.ID)
		var product int64
		if products != nil {
			product = products(e.ID)
		}
		row := RangeRow{
			EmployeeID: e.ID,
			Name:       e.Name,
			Completed:  stats.Completed,
			Revenue:    stats.Revenue,
			Payout:     r.Variable(stats.Completed, stats.Revenue) + r.Fixed + product,
			Fixed:      r.Fixed,
			Product:    product,
		}
		if row.isZero() {
			continue
		}
		rep.Rows = append(rep.Rows, row)

		rep.Totals.Completed += row.Completed
		rep.Totals.Revenue = rep.Totals.Revenue.Add(row.Revenue.Round(0))
		rep.Totals.Payout += row.Payout
		rep.Totals.Fixed += row.Fixed
		rep.Totals.Product += row.Product
	}
	rep.Totals.Name = "TOTAL"

	sort.SliceStable(rep.Rows, func(i, j int) bool {
		a, b := rep.Rows[i], rep.Rows[j]
		if a.Payout != b.Payout {
			return a.Payout > b.Payout
		}
		return a.Revenue.GreaterThan(b.Revenue)
	})

	return rep, nil
}

func (r RangeReport) FileName() string {
	return fmt.Sprintf("report_%s_to_%s.txt", r.From, r.To)
}

var rangeWidths = struct{ name, num int }{name: 26, num: 10}

// Text renders the report as fixed-width columns.
func (r RangeReport) Text() string {
	header := cellL("Employee", rangeWidths.name) + "  " +
		cellR("Completed", rangeWidths.num) + "  " +
		cellR("Revenue", rangeWidths.num) + "  " +
		cellR("Payout", rangeWidths.num) + "  " +
		cellR("Fixed(mo)", rangeWidths.num) + "  " +
		cellR("Product(mo)", rangeWidths.num+1)
	sep := strings.Repeat("-", utf8.RuneCountInString(header))

	var b strings.Builder
	fmt.Fprintf(&b, "REPORT: %s .. %s\n", r.From, r.To)
	fmt.Fprintf(&b, "Month (fixed, product): %s\n\n", r.Month)
	b.WriteString(header + "\n")
	b.WriteString(sep + "\n")
	for _, row := range r.Rows {
		b.WriteString(rangeLine(row) + "\n")
	}
	b.WriteString(sep + "\n")
	b.WriteString(rangeLine(r.Totals))
	return b.String()
}

func rangeLine(row RangeRow) string {
	return cellL(row.Name, rangeWidths.name) + "  " +
		cellR(strconv.Itoa(row.Completed), rangeWidths.num) + "  " +
		cellR(money(row.Revenue), rangeWidths.num) + "  " +
		cellR(strconv.FormatInt(row.Payout, 10), rangeWidths.num) + "  " +
		cellR(strconv.FormatInt(row.Fixed, 10), rangeWidths.num) + "  " +
		cellR(strconv.FormatInt(row.Product, 10), rangeWidths.num+1)
}

func cut(s string, w int) string {
	if utf8.RuneCountInString(s) <= w {
		return s
	}
	runes := []rune(s)
	return string(runes[:w-1]) + "…"
}

func cellL(s string, w int) string {
	s = cut(s, w)
	return s + strings.Repeat(" ", w-utf8.RuneCountInString(s))
}

func cellR(s string, w int) string {
	s = cut(s, w)
	return strings.Repeat(" ", w-utf8.RuneCountInString(s)) + s
}
