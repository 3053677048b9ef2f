package models

// CategoryKind selects which category table a category lives in.
type CategoryKind string

const (
	CategoryKindIncome  CategoryKind = "income"
	CategoryKindExpense CategoryKind = "expense"
)

// Valid reports whether k is a known kind.
func (k CategoryKind) Valid() bool {
	return k == CategoryKindIncome || k == CategoryKindExpense
}

// Table returns the table holding categories of this kind.
func (k CategoryKind) Table() string {
	if k == CategoryKindIncome {
		return "income_categories"
	}
	return "expense_categories"
}

// Category is a user-defined label for income or expense records. Income and
// expense categories are stored in separate tables; Kind records which one.
type Category struct {
	Base
	UserID string       `gorm:"type:uuid;not null;index" json:"user_id"`
	Name   string       `gorm:"not null" json:"name"`
	Kind   CategoryKind `gorm:"-" json:"kind"`
}
