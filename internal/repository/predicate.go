package repository

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnsupportedPredicate is returned when a repository cannot evaluate the given predicate.
var ErrUnsupportedPredicate = errors.New("unsupported predicate")

type predicateKind int

const (
	kindEq predicateKind = iota + 1
	kindAnd
	kindWhere
	kindMatch
)

// Predicate selects the record an UpdateWhere call replaces.
// Equality and conjunction predicates work with every repository; raw SQL predicates
// only with PostgreSQL, and Match predicates only with the in-memory store.
type Predicate struct {
	kind   predicateKind
	column string
	clause string
	args   []any
	parts  []Predicate
	match  func(any) bool
}

// Eq matches records whose column equals value.
func Eq(column string, value any) Predicate {
	return Predicate{kind: kindEq, column: column, args: []any{value}}
}

// And matches records satisfying every given predicate.
func And(predicates ...Predicate) Predicate {
	return Predicate{kind: kindAnd, parts: predicates}
}

// Where is a raw SQL condition. Each ? in clause is bound to the next value in args.
func Where(clause string, args ...any) Predicate {
	return Predicate{kind: kindWhere, clause: clause, args: args}
}

// Match is an in-process predicate over the entity value.
func Match[E any](fn func(E) bool) Predicate {
	return Predicate{kind: kindMatch, match: func(v any) bool {
		entity, ok := v.(E)
		return ok && fn(entity)
	}}
}

// sql renders the predicate with positional placeholders numbered after *n.
func (p Predicate) sql(n *int) (string, []any, error) {
	switch p.kind {
	case kindEq:
		return p.column + " = " + bind("?", n), p.args, nil
	case kindWhere:
		if strings.Count(p.clause, "?") != len(p.args) {
			return "", nil, fmt.Errorf("%w: %q expects %d arguments, got %d",
				ErrUnsupportedPredicate, p.clause, strings.Count(p.clause, "?"), len(p.args))
		}
		return "(" + bind(p.clause, n) + ")", p.args, nil
	case kindAnd:
		if len(p.parts) == 0 {
			return "TRUE", nil, nil
		}
		clauses := make([]string, 0, len(p.parts))
		var args []any
		for _, part := range p.parts {
			clause, partArgs, err := part.sql(n)
			if err != nil {
				return "", nil, err
			}
			clauses = append(clauses, clause)
			args = append(args, partArgs...)
		}
		return strings.Join(clauses, " AND "), args, nil
	case kindMatch:
		return "", nil, fmt.Errorf("%w: match predicates cannot be rendered as SQL", ErrUnsupportedPredicate)
	default:
		return "", nil, fmt.Errorf("%w: empty predicate", ErrUnsupportedPredicate)
	}
}

// eval evaluates the predicate against an entity and its column values.
func (p Predicate) eval(entity any, fields map[string]any) (bool, error) {
	switch p.kind {
	case kindEq:
		value, ok := fields[p.column]
		if !ok {
			return false, fmt.Errorf("%w: unknown column %q", ErrUnsupportedPredicate, p.column)
		}
		return value == p.args[0], nil
	case kindAnd:
		for _, part := range p.parts {
			ok, err := part.eval(entity, fields)
			if err != nil || !ok {
				return false, err
			}
		}
		return true, nil
	case kindMatch:
		return p.match(entity), nil
	case kindWhere:
		return false, fmt.Errorf("%w: raw SQL predicates need a database", ErrUnsupportedPredicate)
	default:
		return false, fmt.Errorf("%w: empty predicate", ErrUnsupportedPredicate)
	}
}

// bind replaces every ? in expr with the next positional placeholder.
func bind(expr string, n *int) string {
	var b strings.Builder
	for _, r := range expr {
		if r == '?' {
			*n++
			fmt.Fprintf(&b, "$%d", *n)
			continue
		}
		b.WriteRune(r)
	}

	return b.String()
}
