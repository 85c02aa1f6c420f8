package database

import "strings"

// Predicate is one filter condition as structured data. The value is always
// bound as a query argument; it never enters the SQL text.
type Predicate struct {
	Column   string
	Operator string
	Value    interface{}
}

// FilterSet accumulates predicates and renders them to parameterized SQL in
// one place. Handlers and services deal only in (column, operator, value)
// tuples, so there is no string concatenation of user input anywhere above
// this point.
type FilterSet struct {
	predicates []Predicate
}

// Add appends a predicate.
func (f *FilterSet) Add(column, operator string, value interface{}) {
	f.predicates = append(f.predicates, Predicate{Column: column, Operator: operator, Value: value})
}

// Empty reports whether no predicates were added.
func (f *FilterSet) Empty() bool {
	return len(f.predicates) == 0
}

// Predicates returns the accumulated tuples in insertion order.
func (f *FilterSet) Predicates() []Predicate {
	return f.predicates
}

// Clause renders the WHERE clause and its bound arguments. The `1=1` anchor
// lets callers append it unconditionally whether or not any predicate was
// added.
func (f *FilterSet) Clause() (string, []interface{}) {
	var sb strings.Builder
	sb.WriteString(" WHERE 1=1")

	args := make([]interface{}, 0, len(f.predicates))
	for _, p := range f.predicates {
		sb.WriteString(" AND ")
		sb.WriteString(p.Column)
		sb.WriteString(" ")
		sb.WriteString(p.Operator)
		sb.WriteString(" ?")
		args = append(args, p.Value)
	}
	return sb.String(), args
}

// FilingFilters builds the filter set for the list endpoint. The company
// match is a substring LIKE with the wildcards living in the bound value;
// the date is an exact string match on the stored text.
func FilingFilters(company, date string) *FilterSet {
	f := &FilterSet{}
	if company != "" {
		f.Add("company_name", "LIKE", "%"+company+"%")
	}
	if date != "" {
		f.Add("filing_date", "=", date)
	}
	return f
}
