package core

// UncategorizedID groups transactions whose category does not resolve.
const UncategorizedID = "uncategorized"

// Category is a static catalog entry. Name is the default (English) display
// name; localized names are supplied by the formatter. Color is an opaque
// display token.
type Category struct {
	ID    string          `json:"id"`
	Name  string          `json:"name"`
	Type  TransactionType `json:"type"`
	Color string          `json:"color"`
}

// Uncategorized is the synthetic entry used by aggregations.
var Uncategorized = Category{ID: UncategorizedID, Name: "Uncategorized", Color: "#6b7280"}

// Catalog is a fixed, closed set of categories. It has no mutating methods.
type Catalog struct {
	entries []Category
	index   map[string]Category
}

func NewCatalog(entries []Category) *Catalog {
	c := &Catalog{
		entries: make([]Category, 0, len(entries)),
		index:   make(map[string]Category, len(entries)),
	}
	for _, e := range entries {
		if _, dup := c.index[e.ID]; dup {
			continue
		}
		c.entries = append(c.entries, e)
		c.index[e.ID] = e
	}
	return c
}

// DefaultCatalog returns the built-in categories.
func DefaultCatalog() *Catalog {
	return NewCatalog([]Category{
		{ID: "food", Name: "Food", Type: Expense, Color: "#ef4444"},
		{ID: "transport", Name: "Transport", Type: Expense, Color: "#f59e0b"},
		{ID: "entertainment", Name: "Entertainment", Type: Expense, Color: "#8b5cf6"},
		{ID: "health", Name: "Health", Type: Expense, Color: "#06b6d4"},
		{ID: "education", Name: "Education", Type: Expense, Color: "#10b981"},
		{ID: "otherExpenses", Name: "Other Expenses", Type: Expense, Color: "#6b7280"},
		{ID: "salary", Name: "Salary", Type: Income, Color: "#22c55e"},
		{ID: "freelance", Name: "Freelance Work", Type: Income, Color: "#3b82f6"},
		{ID: "investments", Name: "Investments", Type: Income, Color: "#8b5cf6"},
		{ID: "otherIncome", Name: "Other Income", Type: Income, Color: "#06b6d4"},
	})
}

// Lookup resolves id only if the entry has the requested type.
func (c *Catalog) Lookup(id string, t TransactionType) (Category, bool) {
	e, ok := c.index[id]
	if !ok || e.Type != t {
		return Category{}, false
	}
	return e, true
}

// ByType returns the entries of one type in catalog order.
func (c *Catalog) ByType(t TransactionType) []Category {
	out := make([]Category, 0, len(c.entries))
	for _, e := range c.entries {
		if e.Type == t {
			out = append(out, e)
		}
	}
	return out
}

// All returns a copy of every entry.
func (c *Catalog) All() []Category {
	return append([]Category(nil), c.entries...)
}
