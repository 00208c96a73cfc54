package docstore

type queryKind int

const (
	queryEqual queryKind = iota
	queryOrderAsc
	queryOrderDesc
	queryLimit
)

// Query is one element of a List call: a filter, an ordering or a limit
type Query struct {
	kind  queryKind
	Field string
	Value interface{}
	N     int
}

// Equal matches documents whose field equals value
func Equal(field string, value interface{}) Query {
	return Query{kind: queryEqual, Field: field, Value: value}
}

// OrderAsc sorts ascending by field
func OrderAsc(field string) Query {
	return Query{kind: queryOrderAsc, Field: field}
}

// OrderDesc sorts descending by field
func OrderDesc(field string) Query {
	return Query{kind: queryOrderDesc, Field: field}
}

// Limit caps the number of returned documents
func Limit(n int) Query {
	return Query{kind: queryLimit, N: n}
}

// listPlan is the compiled form of a query list, shared by the backends
type listPlan struct {
	filters []Query
	orders  []Query
	limit   int
}

func compile(queries []Query) listPlan {
	plan := listPlan{limit: DefaultLimit}
	for _, q := range queries {
		switch q.kind {
		case queryEqual:
			plan.filters = append(plan.filters, q)
		case queryOrderAsc, queryOrderDesc:
			plan.orders = append(plan.orders, q)
		case queryLimit:
			if q.N > 0 {
				plan.limit = q.N
			}
		}
	}
	return plan
}
