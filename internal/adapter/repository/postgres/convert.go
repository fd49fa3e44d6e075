package postgres

import (
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"

	"github.com/MODEBARE/BudgetManagementSystem/internal/domain"
	"github.com/MODEBARE/BudgetManagementSystem/internal/infrastructure/postgres/generated"
	"github.com/MODEBARE/BudgetManagementSystem/internal/usecase"
)

const (
	pgErrUniqueViolation = "23505"
	accountNameIndex     = "accounts_owner_name_key"
)

// queriesFor binds the generated queries to the caller's transaction.
func queriesFor(tx usecase.Transaction) (*generated.Queries, error) {
	pgxTx, err := txFrom(tx)
	if err != nil {
		return nil, err
	}
	return generated.New(pgxTx), nil
}

// mapError translates driver errors into domain errors. No rows becomes
// notFound; everything unrecognised is a storage failure.
func mapError(err error, notFound error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) && notFound != nil {
		return notFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgErrUniqueViolation && pgErr.ConstraintName == accountNameIndex {
		return domain.ErrDuplicateName
	}

	return domain.StorageError(err)
}

// Type conversion helpers.

// decimalToNumeric stores d at two decimal places. Building the Numeric
// from the coefficient cannot fail, unlike a round trip through text.
func decimalToNumeric(d decimal.Decimal) pgtype.Numeric {
	d = d.Round(domain.AmountPlaces)
	return pgtype.Numeric{Int: d.Coefficient(), Exp: d.Exponent(), Valid: true}
}

func numericToDecimal(n pgtype.Numeric) decimal.Decimal {
	if !n.Valid || n.Int == nil {
		return decimal.Zero
	}
	return decimal.NewFromBigInt(n.Int, n.Exp)
}

func timeToPgTimestamptz(t time.Time) pgtype.Timestamptz {
	return pgtype.Timestamptz{Time: t, Valid: true}
}

func optionalTimestamptz(t *time.Time) pgtype.Timestamptz {
	if t == nil {
		return pgtype.Timestamptz{}
	}
	return timeToPgTimestamptz(*t)
}

func optionalText(s string, valid bool) pgtype.Text {
	return pgtype.Text{String: s, Valid: valid}
}
