package dto

import (
	"fmt"
	"maps"
	"reflect"
	"strings"
)

// FilterOperator renders one comparison into a named-parameter SQL fragment.
type FilterOperator string

const (
	FilterOperatorEq        FilterOperator = "eq"
	FilterOperatorIEq       FilterOperator = "ieq"
	FilterOperatorLike      FilterOperator = "like"
	FilterOperatorIn        FilterOperator = "in"
	FilterOperatorNotEq     FilterOperator = "not_eq"
	FilterOperatorLessEq    FilterOperator = "less_eq"
	FilterOperatorGreaterEq FilterOperator = "greater_eq"
	FilterOperatorIsNull    FilterOperator = "is_null"
)

const (
	FilterGroupOperatorAnd = "AND"
	FilterGroupOperatorOr  = "OR"
)

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

type Filter struct {
	ArgName  string
	Field    string
	Value    any
	Operator FilterOperator `validate:"required,oneof=eq ieq like in not_eq less_eq greater_eq is_null"`
	Table    string
}

func (f *Filter) column() string {
	if f.Table == "" {
		return f.Field
	}

	return f.Table + "." + f.Field
}

func (f *Filter) argName() string {
	if f.ArgName != "" {
		return f.ArgName
	}

	return f.Field
}

// GetWhereClause returns an empty clause for an unknown operator.
func (f *Filter) GetWhereClause() (string, map[string]any) {
	args := map[string]any{}
	column, arg := f.column(), f.argName()

	compare := func(format string, value any) (string, map[string]any) {
		args[arg] = value

		return fmt.Sprintf(format, column, arg), args
	}

	switch f.Operator {
	case FilterOperatorEq:
		return compare("%s = :%s", f.Value)
	case FilterOperatorIEq:
		return compare("LOWER(%s) = LOWER(:%s)", f.Value)
	case FilterOperatorNotEq:
		return compare("%s != :%s", f.Value)
	case FilterOperatorLessEq:
		return compare("%s <= :%s", f.Value)
	case FilterOperatorGreaterEq:
		return compare("%s >= :%s", f.Value)
	case FilterOperatorLike:
		return compare("LOWER(%s) LIKE LOWER(:%s)", "%"+likeEscaper.Replace(fmt.Sprint(f.Value))+"%")
	case FilterOperatorIn:
		return f.inClause(column, arg, args)
	case FilterOperatorIsNull:
		return column + " IS NULL", args
	default:
		return "", args
	}
}

// inClause expands a slice into one bound parameter per element. An empty
// slice matches nothing.
func (f *Filter) inClause(column, arg string, args map[string]any) (string, map[string]any) {
	val := reflect.ValueOf(f.Value)
	if val.Kind() != reflect.Array && val.Kind() != reflect.Slice {
		args[arg] = f.Value

		return fmt.Sprintf("%s = :%s", column, arg), args
	}

	if val.Len() == 0 {
		return "FALSE", args
	}

	named := make([]string, val.Len())

	for idx := range val.Len() {
		name := fmt.Sprintf("%s_%d", arg, idx)
		args[name] = val.Index(idx).Interface()
		named[idx] = ":" + name
	}

	return fmt.Sprintf("%s IN (%s)", column, strings.Join(named, ", ")), args
}

// FilterGroup nests Filter and FilterGroup values joined by Operator.
type FilterGroup struct {
	Filters  []any
	Operator string
}

func (f *FilterGroup) GetWhereClause() (string, map[string]any) {
	args := map[string]any{}
	clauses := make([]string, 0, len(f.Filters))

	for _, filter := range f.Filters {
		var (
			where string
			arg   map[string]any
		)

		switch fill := filter.(type) {
		case Filter:
			where, arg = fill.GetWhereClause()
		case FilterGroup:
			where, arg = fill.GetWhereClause()
		default:
			continue
		}

		if where == "" {
			continue
		}

		clauses = append(clauses, where)
		maps.Copy(args, arg)
	}

	if len(clauses) == 0 {
		return "", args
	}

	operator := f.Operator
	if operator == "" {
		operator = FilterGroupOperatorAnd
	}

	return fmt.Sprintf("(%s)", strings.Join(clauses, " "+operator+" ")), args
}
