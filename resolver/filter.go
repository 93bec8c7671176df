package resolver

import (
	"fmt"

	"gorm.io/gorm/clause"
)

// Operation is a filter operation.
type Operation string

// Filter operations.
const (
	EQ        Operation = "EQ"
	NEQ       Operation = "NEQ"
	IS        Operation = "IS"
	ISNOT     Operation = "ISNOT"
	ISNULL    Operation = "ISNULL"
	ISNOTNULL Operation = "ISNOTNULL"
	LT        Operation = "LT"
	GT        Operation = "GT"
	LIKE      Operation = "LIKE"
	NOTLIKE   Operation = "NOTLIKE"
	ILIKE     Operation = "ILIKE"
	NOTILIKE  Operation = "NOTILIKE"
	IN        Operation = "IN"
	NOTIN     Operation = "NOTIN"
	BETWEEN   Operation = "BETWEEN"
)

// Operations lists the filter operations in declaration order.
var Operations = []Operation{
	EQ, NEQ, IS, ISNOT, ISNULL, ISNOTNULL, LT, GT,
	LIKE, NOTLIKE, ILIKE, NOTILIKE, IN, NOTIN, BETWEEN,
}

// Filter is a condition on a single column. Value is used by the scalar
// operations, Values by IN, NOTIN and BETWEEN.
type Filter struct {
	Column string
	Op     Operation
	Value  any
	Values []any
}

// Expr returns the clause expression of the filter.
func (f Filter) Expr() (clause.Expression, error) {
	col := clause.Column{Table: clause.CurrentTable, Name: f.Column}
	switch f.Op {
	case EQ:
		return clause.Eq{Column: col, Value: f.Value}, nil
	case NEQ:
		return clause.Neq{Column: col, Value: f.Value}, nil
	case IS:
		return clause.Expr{SQL: "? IS ?", Vars: []any{col, f.Value}}, nil
	case ISNOT:
		return clause.Expr{SQL: "? IS NOT ?", Vars: []any{col, f.Value}}, nil
	case ISNULL:
		return clause.Eq{Column: col, Value: nil}, nil
	case ISNOTNULL:
		return clause.Neq{Column: col, Value: nil}, nil
	case LT:
		return clause.Lt{Column: col, Value: f.Value}, nil
	case GT:
		return clause.Gt{Column: col, Value: f.Value}, nil
	case LIKE:
		return clause.Like{Column: col, Value: contains(f.Value)}, nil
	case NOTLIKE:
		return clause.Not(clause.Like{Column: col, Value: contains(f.Value)}), nil
	case ILIKE:
		return clause.Expr{SQL: "LOWER(?) LIKE LOWER(?)", Vars: []any{col, contains(f.Value)}}, nil
	case NOTILIKE:
		return clause.Expr{SQL: "LOWER(?) NOT LIKE LOWER(?)", Vars: []any{col, contains(f.Value)}}, nil
	case IN:
		return clause.IN{Column: col, Values: f.Values}, nil
	case NOTIN:
		// Negating an empty IN renders IS NOT NULL; nothing is excluded.
		if len(f.Values) == 0 {
			return clause.Expr{SQL: "1 = 1"}, nil
		}
		return clause.Not(clause.IN{Column: col, Values: f.Values}), nil
	case BETWEEN:
		if len(f.Values) != 2 {
			return nil, fmt.Errorf("filter on %s: %s expects 2 values, got %d", f.Column, f.Op, len(f.Values))
		}
		return clause.Expr{SQL: "? BETWEEN ? AND ?", Vars: []any{col, f.Values[0], f.Values[1]}}, nil
	default:
		return nil, fmt.Errorf("filter on %s: unknown operation %q", f.Column, f.Op)
	}
}

// contains wraps v in % wildcards.
func contains(v any) string {
	return fmt.Sprintf("%%%v%%", v)
}

// Order sorts the results by a single column.
type Order struct {
	Column string
	Desc   bool
}

// Page selects a window of the results. Number starts at 1; a zero Size
// disables pagination.
type Page struct {
	Number int
	Size   int
}

// Offset returns the number of rows skipped before the page.
func (p Page) Offset() int {
	return max(0, p.Number-1) * p.Size
}

// Query holds the arguments of a list query. Filters are combined with AND.
type Query struct {
	Filters []Filter
	Order   *Order
	Page    Page
}
