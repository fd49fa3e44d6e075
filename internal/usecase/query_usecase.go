package usecase

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/MODEBARE/BudgetManagementSystem/internal/domain"
)

// QueryUseCase is the read side over movement history.
type QueryUseCase struct {
	accountRepo     AccountRepository
	movementRepo    MovementRepository
	clock           Clock
	defaultPageSize int
	maxPageSize     int
}

// NewQueryUseCase creates a new QueryUseCase.
func NewQueryUseCase(accountRepo AccountRepository, movementRepo MovementRepository, clock Clock, defaultPageSize, maxPageSize int) *QueryUseCase {
	if clock == nil {
		clock = SystemClock{}
	}
	if defaultPageSize <= 0 {
		defaultPageSize = 20
	}
	if maxPageSize < defaultPageSize {
		maxPageSize = defaultPageSize
	}
	return &QueryUseCase{
		accountRepo:     accountRepo,
		movementRepo:    movementRepo,
		clock:           clock,
		defaultPageSize: defaultPageSize,
		maxPageSize:     maxPageSize,
	}
}

// MovementQuery selects, orders and pages an owner's movements.
type MovementQuery struct {
	OwnerID  string
	Filter   domain.MovementFilter
	Sort     domain.MovementSort
	Page     int
	PageSize int
}

// MovementQueryResult is one page plus the summary of the whole filtered set.
type MovementQueryResult struct {
	domain.Page
	Summary domain.Summary
	// AccountNames resolves the account ids of the page.
	AccountNames map[string]string
}

// QueryMovements filters, sorts and pages non-deleted movements. The total
// count and summary cover the filtered set before paging.
func (uc *QueryUseCase) QueryMovements(ctx context.Context, q MovementQuery) (*MovementQueryResult, error) {
	if err := q.Filter.Validate(); err != nil {
		return nil, err
	}
	if q.Sort.Field == "" {
		q.Sort = domain.DefaultMovementSort
	}
	page, size := domain.ValidatePage(q.Page, q.PageSize, uc.defaultPageSize, uc.maxPageSize)

	names, err := uc.accountNames(ctx, q.OwnerID)
	if err != nil {
		return nil, err
	}
	if q.Filter.AccountID != "" {
		if _, ok := names[q.Filter.AccountID]; !ok {
			if err := uc.checkForeignAccount(ctx, q.Filter.AccountID); err != nil {
				return nil, err
			}
		}
	}

	movements, err := uc.movementRepo.ListByOwner(ctx, q.OwnerID)
	if err != nil {
		return nil, err
	}

	filtered := make([]*domain.Movement, 0, len(movements))
	for _, m := range movements {
		if q.Filter.Matches(m) {
			filtered = append(filtered, m)
		}
	}

	domain.SortMovements(filtered, q.Sort, names)

	return &MovementQueryResult{
		Page:         domain.Paginate(filtered, domain.PageRequest{Number: page, Size: size}),
		Summary:      domain.Summarize(filtered),
		AccountNames: names,
	}, nil
}

// checkForeignAccount tells a missing account from one owned by someone else.
func (uc *QueryUseCase) checkForeignAccount(ctx context.Context, id string) error {
	if _, err := uc.accountRepo.GetByID(ctx, id); err != nil {
		return err
	}
	return domain.ErrNotOwned
}

func (uc *QueryUseCase) accountNames(ctx context.Context, ownerID string) (map[string]string, error) {
	accounts, err := uc.accountRepo.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	names := make(map[string]string, len(accounts))
	for _, a := range accounts {
		names[a.ID] = a.Name
	}
	return names, nil
}

// Dashboard is the owner's overview for a period.
type Dashboard struct {
	From           time.Time
	To             time.Time
	TotalIncome    decimal.Decimal
	TotalExpenses  decimal.Decimal
	Net            decimal.Decimal
	TotalBalance   decimal.Decimal
	ActiveAccounts int
	MovementCount  int
	Recent         []*domain.Movement
	AccountNames   map[string]string
}

// GetDashboard summarizes [from, to]; zero bounds default to the current month.
func (uc *QueryUseCase) GetDashboard(ctx context.Context, ownerID string, from, to time.Time) (*Dashboard, error) {
	now := uc.clock.Now()
	if from.IsZero() {
		from = time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	}
	if to.IsZero() {
		to = now
	}
	filter := domain.MovementFilter{FromDate: &from, ToDate: &to}
	if err := filter.Validate(); err != nil {
		return nil, err
	}

	accounts, err := uc.accountRepo.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	movements, err := uc.movementRepo.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	dashboard := &Dashboard{
		From:         from,
		To:           to,
		TotalBalance: decimal.Zero,
		AccountNames: make(map[string]string, len(accounts)),
	}
	for _, a := range accounts {
		dashboard.AccountNames[a.ID] = a.Name
		if a.Active {
			dashboard.ActiveAccounts++
			dashboard.TotalBalance = dashboard.TotalBalance.Add(a.CurrentBalance)
		}
	}

	var inPeriod []*domain.Movement
	for _, m := range movements {
		if filter.Matches(m) {
			inPeriod = append(inPeriod, m)
		}
	}
	summary := domain.Summarize(inPeriod)
	dashboard.TotalIncome = summary.CreditTotal
	dashboard.TotalExpenses = summary.DebitTotal
	dashboard.Net = summary.Net()
	dashboard.MovementCount = len(inPeriod)

	recent := make([]*domain.Movement, 0, len(movements))
	for _, m := range movements {
		if !m.IsDeleted() {
			recent = append(recent, m)
		}
	}
	domain.SortMovements(recent, domain.DefaultMovementSort, nil)
	dashboard.Recent = recent[:min(len(recent), DashboardRecentLimit)]

	return dashboard, nil
}

// CategoryCatalogue lists suggested categories per kind and the ones the
// owner has used.
type CategoryCatalogue struct {
	Income   []string
	Expense  []string
	Transfer []string
	Used     []string
}

// GetCategories returns the catalogue merged with the owner's own labels.
func (uc *QueryUseCase) GetCategories(ctx context.Context, ownerID string) (*CategoryCatalogue, error) {
	used, err := uc.movementRepo.ListCategories(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	if used == nil {
		used = []string{}
	}
	return &CategoryCatalogue{
		Income:   domain.Categories(domain.KindCredit),
		Expense:  domain.Categories(domain.KindDebit),
		Transfer: domain.Categories(domain.KindTransfer),
		Used:     used,
	}, nil
}
