package domain

import (
	"cmp"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// MovementFilter is the predicate set of a movement listing. Zero-valued
// fields do not filter; set fields compose with AND.
type MovementFilter struct {
	// Search matches description, notes or reference, case-insensitively.
	Search    string
	Kind      MovementKind
	AccountID string
	Category  string
	// FromDate and ToDate bound the occurrence date, both inclusive on
	// whole days.
	FromDate       *time.Time
	ToDate         *time.Time
	MinAmount      *decimal.Decimal
	MaxAmount      *decimal.Decimal
	RecurringOnly  bool
	HasReceiptOnly bool
}

// Matches reports whether m satisfies every set predicate. Tombstones never match.
func (f MovementFilter) Matches(m *Movement) bool {
	if m.IsDeleted() {
		return false
	}

	if f.Search != "" {
		needle := strings.ToLower(f.Search)
		if !strings.Contains(strings.ToLower(m.Description), needle) &&
			!strings.Contains(strings.ToLower(m.Notes), needle) &&
			!strings.Contains(strings.ToLower(m.Reference), needle) {
			return false
		}
	}

	if f.Kind != "" && m.Kind() != f.Kind {
		return false
	}

	if f.AccountID != "" && m.AccountID != f.AccountID {
		return false
	}

	if f.Category != "" && m.Category != f.Category {
		return false
	}

	if f.FromDate != nil && m.OccurredAt.Before(startOfDay(*f.FromDate)) {
		return false
	}

	if f.ToDate != nil && !m.OccurredAt.Before(startOfDay(*f.ToDate).AddDate(0, 0, 1)) {
		return false
	}

	if f.MinAmount != nil && m.Amount.LessThan(*f.MinAmount) {
		return false
	}

	if f.MaxAmount != nil && m.Amount.GreaterThan(*f.MaxAmount) {
		return false
	}

	if f.RecurringOnly && !m.Recurring {
		return false
	}

	if f.HasReceiptOnly && !m.HasReceipt() {
		return false
	}

	return true
}

// Validate rejects inverted ranges.
func (f MovementFilter) Validate() error {
	if f.Kind != "" {
		if _, err := ParseMovementKind(string(f.Kind)); err != nil {
			return err
		}
	}
	if f.FromDate != nil && f.ToDate != nil && f.ToDate.Before(*f.FromDate) {
		return fmt.Errorf("%w: date range end is before its start", ErrValidation)
	}
	if f.MinAmount != nil && f.MaxAmount != nil && f.MaxAmount.LessThan(*f.MinAmount) {
		return fmt.Errorf("%w: amount range maximum is below its minimum", ErrValidation)
	}
	return nil
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// SortField is a movement listing sort key.
type SortField string

const (
	SortByDate        SortField = "date"
	SortByAmount      SortField = "amount"
	SortByDescription SortField = "description"
	SortByCategory    SortField = "category"
	SortByAccount     SortField = "account"
	SortByCreated     SortField = "created"
)

// ParseSortField parses a sort key; empty means date.
func ParseSortField(s string) (SortField, error) {
	switch f := SortField(strings.ToLower(s)); f {
	case "":
		return SortByDate, nil
	case SortByDate, SortByAmount, SortByDescription, SortByCategory, SortByAccount, SortByCreated:
		return f, nil
	}
	return "", fmt.Errorf("%w: unknown sort field %q", ErrValidation, s)
}

// MovementSort orders a listing. Ties are always broken by id ascending.
type MovementSort struct {
	Field      SortField
	Descending bool
}

// DefaultMovementSort lists the newest occurrences first.
var DefaultMovementSort = MovementSort{Field: SortByDate, Descending: true}

// SortMovements sorts ms in place. accountNames resolves account ids for
// SortByAccount.
func SortMovements(ms []*Movement, s MovementSort, accountNames map[string]string) {
	slices.SortStableFunc(ms, func(a, b *Movement) int {
		c := compareBy(a, b, s.Field, accountNames)
		if s.Descending {
			c = -c
		}
		if c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
}

func compareBy(a, b *Movement, field SortField, accountNames map[string]string) int {
	switch field {
	case SortByAmount:
		return a.Amount.Cmp(b.Amount)
	case SortByDescription:
		return cmp.Compare(strings.ToLower(a.Description), strings.ToLower(b.Description))
	case SortByCategory:
		return cmp.Compare(strings.ToLower(a.Category), strings.ToLower(b.Category))
	case SortByAccount:
		return cmp.Compare(strings.ToLower(accountNames[a.AccountID]), strings.ToLower(accountNames[b.AccountID]))
	case SortByCreated:
		return a.CreatedAt.Compare(b.CreatedAt)
	default:
		return a.OccurredAt.Compare(b.OccurredAt)
	}
}

// PageRequest is a 1-indexed page of fixed size.
type PageRequest struct {
	Number int
	Size   int
}

// Page is one page of a filtered listing.
type Page struct {
	Items      []*Movement
	Number     int
	Size       int
	TotalCount int
	TotalPages int
}

// Paginate slices an already filtered and sorted listing.
func Paginate(ms []*Movement, req PageRequest) Page {
	total := len(ms)
	pages := 0
	if req.Size > 0 {
		pages = (total + req.Size - 1) / req.Size
	}

	page := Page{
		Number:     req.Number,
		Size:       req.Size,
		TotalCount: total,
		TotalPages: pages,
		Items:      []*Movement{},
	}

	start := (req.Number - 1) * req.Size
	if req.Size <= 0 || start < 0 || start >= total {
		return page
	}

	end := min(start+req.Size, total)
	page.Items = ms[start:end]

	return page
}

// Summary aggregates a filtered, unpaged listing.
type Summary struct {
	CreditTotal   decimal.Decimal
	CreditCount   int
	DebitTotal    decimal.Decimal
	DebitCount    int
	TransferTotal decimal.Decimal
	TransferCount int
	FeeTotal      decimal.Decimal
}

// Net is income minus expenses.
func (s Summary) Net() decimal.Decimal {
	return s.CreditTotal.Sub(s.DebitTotal)
}

// Summarize sums and counts per kind. Tombstones are skipped.
func Summarize(ms []*Movement) Summary {
	s := Summary{
		CreditTotal:   decimal.Zero,
		DebitTotal:    decimal.Zero,
		TransferTotal: decimal.Zero,
		FeeTotal:      decimal.Zero,
	}

	for _, m := range ms {
		if m.IsDeleted() {
			continue
		}
		switch m.Detail.(type) {
		case Credit:
			s.CreditTotal = s.CreditTotal.Add(m.Amount)
			s.CreditCount++
		case Debit:
			s.DebitTotal = s.DebitTotal.Add(m.Amount)
			s.DebitCount++
		case Transfer:
			s.TransferTotal = s.TransferTotal.Add(m.Amount)
			s.TransferCount++
			s.FeeTotal = s.FeeTotal.Add(m.Fee())
		}
	}

	return s
}
