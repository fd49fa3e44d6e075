package domain

// Income categories
const (
	CategorySalary     = "Salary"
	CategoryFreelance  = "Freelance"
	CategoryInvestment = "Investment"
	CategoryBusiness   = "Business"
	CategoryBonus      = "Bonus"
	CategoryGift       = "Gift"
	CategoryRental     = "Rental Income"
	CategoryDividend   = "Dividend"
	CategoryInterest   = "Interest"
	CategoryOtherIn    = "Other Income"
)

// Expense categories
const (
	CategoryFood           = "Food & Dining"
	CategoryTransportation = "Transportation"
	CategoryUtilities      = "Utilities"
	CategoryHousing        = "Housing"
	CategoryHealthcare     = "Healthcare"
	CategoryEntertainment  = "Entertainment"
	CategoryShopping       = "Shopping"
	CategoryEducation      = "Education"
	CategoryInsurance      = "Insurance"
	CategorySavings        = "Savings"
	CategoryOtherOut       = "Other Expense"
)

// Transfer categories
const (
	CategoryAccountTransfer    = "Account Transfer"
	CategorySavingsTransfer    = "Savings Transfer"
	CategoryInvestmentTransfer = "Investment Transfer"
	CategoryLoanPayment        = "Loan Payment"
	CategoryCreditCardPayment  = "Credit Card Payment"
	CategoryOtherTransfer      = "Other Transfer"
)

// Categories returns the suggested categories for a movement kind.
// Categories are free labels; this list only seeds pickers.
func Categories(kind MovementKind) []string {
	switch kind {
	case KindCredit:
		return []string{
			CategorySalary, CategoryFreelance, CategoryInvestment, CategoryBusiness, CategoryBonus,
			CategoryGift, CategoryRental, CategoryDividend, CategoryInterest, CategoryOtherIn,
		}
	case KindDebit:
		return []string{
			CategoryFood, CategoryTransportation, CategoryUtilities, CategoryHousing, CategoryHealthcare,
			CategoryEntertainment, CategoryShopping, CategoryEducation, CategoryInsurance, CategorySavings, CategoryOtherOut,
		}
	case KindTransfer:
		return []string{
			CategoryAccountTransfer, CategorySavingsTransfer, CategoryInvestmentTransfer,
			CategoryLoanPayment, CategoryCreditCardPayment, CategoryOtherTransfer,
		}
	}
	return nil
}
