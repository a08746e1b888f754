package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"maps"
	"restobook/infras/otel"
	"restobook/infras/postgres"
	"restobook/shared/constant"
	"restobook/shared/dto"
	"restobook/shared/logger"
	"reflect"
	"slices"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"
)

const (
	updateArgPrefix = "set_"
	lockForUpdate   = "FOR UPDATE"
)

var (
	errRequiredFilter = errors.New("required filter")
	errUnknownColumn  = errors.New("unknown column")
)

type column struct {
	name  string
	table string
	alias string
}

type execer interface {
	NamedExecContext(ctx context.Context, query string, arg any) (sql.Result, error)
	PrepareNamedContext(ctx context.Context, query string) (*sqlx.NamedStmt, error)
}

// Repository is a generic table gateway. Columns come from the `db` tags of
// T; `table` and `column` tags map joined fields, `generated:"true"` keeps a
// field out of inserts. A GetJoinQuery method on T supplies the JOIN clause.
type Repository[T any] struct {
	db            *postgres.Connection
	otel          otel.Otel
	table         string
	entity        string
	primaryColumn string
	columns       []column
	join          string
	InsertColumns []string
}

type joiner interface {
	GetJoinQuery() string
}

func NewRepository[T any](entityName, tableName, primaryColumn string, dbConnection *postgres.Connection, otl otel.Otel) Repository[T] {
	var zero T

	columns, insertColumns := getColumns(tableName, reflect.TypeOf(zero))

	join := ""
	if j, ok := any(zero).(joiner); ok {
		join = j.GetJoinQuery()
	}

	return Repository[T]{
		db:            dbConnection,
		otel:          otl,
		table:         tableName,
		entity:        entityName,
		primaryColumn: primaryColumn,
		columns:       columns,
		join:          join,
		InsertColumns: insertColumns,
	}
}

func (repo *Repository[T]) span(ctx context.Context, operation string) (context.Context, otel.Scope) {
	return repo.otel.NewScope(ctx, constant.OtelRepositoryScopeName,
		fmt.Sprintf("%s.%s.%s", constant.OtelRepositoryScopeName, repo.entity, operation))
}

// compose joins the non-empty clauses of a statement.
func compose(parts ...string) string {
	return strings.Join(slices.DeleteFunc(parts, func(part string) bool {
		return strings.TrimSpace(part) == ""
	}), " ")
}

func (repo *Repository[T]) prepare(ctx context.Context, scope otel.Scope, exec execer, query string) (*sqlx.NamedStmt, error) {
	scope.SetAttribute(constant.OtelQueryAttributeKey, query)

	stmt, err := exec.PrepareNamedContext(ctx, query)
	if err != nil {
		logger.ErrorWithStack(err)
		scope.TraceError(err)

		return nil, fmt.Errorf("failed to prepare statement (%s): %w", repo.entity, err)
	}

	return stmt, nil
}

// getOne scans a single row into dest. sql.ErrNoRows is passed through untouched.
func (repo *Repository[T]) getOne(ctx context.Context, scope otel.Scope, exec execer, query, action string, dest, args any) error {
	stmt, err := repo.prepare(ctx, scope, exec, query)
	if err != nil {
		return err
	}
	defer stmt.Close()

	err = stmt.GetContext(ctx, dest, args)
	if err == nil || errors.Is(err, sql.ErrNoRows) {
		return err //nolint:wrapcheck
	}

	logger.ErrorWithStack(err)
	scope.TraceError(err)

	return fmt.Errorf("failed to %s (%s): %w", action, repo.entity, err)
}

func (repo *Repository[T]) exec(ctx context.Context, scope otel.Scope, exec execer, query, action string, args any) error {
	scope.SetAttribute(constant.OtelQueryAttributeKey, query)

	if _, err := exec.NamedExecContext(ctx, query, args); err != nil {
		logger.ErrorWithStack(err)
		scope.TraceError(err)

		return TranslateError(repo.entity, fmt.Errorf("failed to %s (%s): %w", action, repo.entity, err))
	}

	return nil
}

// Insert stores model and returns the generated primary key.
func (repo *Repository[T]) Insert(ctx context.Context, model T) (int64, error) {
	ctx, scope := repo.span(ctx, "Insert")
	defer scope.End()

	placeholders := make([]string, len(repo.InsertColumns))
	for idx, col := range repo.InsertColumns {
		placeholders[idx] = ":" + col
	}

	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s) RETURNING %s",
		repo.table, strings.Join(repo.InsertColumns, ", "), strings.Join(placeholders, ", "), repo.primaryColumn)

	var id int64

	if err := repo.getOne(ctx, scope, repo.writer(ctx), query, "insert data", &id, model); err != nil {
		return 0, TranslateError(repo.entity, err)
	}

	return id, nil
}

func (repo *Repository[T]) Exist(ctx context.Context, filter dto.FilterGroup) (bool, error) {
	ctx, scope := repo.span(ctx, "Exist")
	defer scope.End()

	where, args := repo.BuildWhereClause(filter)
	if where == "" {
		return false, errRequiredFilter
	}

	query := fmt.Sprintf("SELECT EXISTS(SELECT 1 FROM %s %s)", repo.table, where)

	var exist bool
	if err := repo.getOne(ctx, scope, repo.reader(ctx), query, "check exist data", &exist, args); err != nil {
		return false, err
	}

	return exist, nil
}

// Get returns the zero T when nothing matches.
func (repo *Repository[T]) Get(ctx context.Context, filter dto.FilterGroup, columns ...string) (T, error) {
	ctx, scope := repo.span(ctx, "Get")
	defer scope.End()

	return repo.get(ctx, scope, filter, "", columns...)
}

// GetForUpdate reads a single row and locks it until the surrounding transaction ends.
// Outside a transaction the lock is released as soon as the statement finishes.
func (repo *Repository[T]) GetForUpdate(ctx context.Context, filter dto.FilterGroup, columns ...string) (T, error) {
	ctx, scope := repo.span(ctx, "GetForUpdate")
	defer scope.End()

	if _, ok := postgres.TxFromContext(ctx); !ok {
		log.Warn().Str("entity", repo.entity).Msg("row lock requested outside a transaction")
	}

	return repo.get(ctx, scope, filter, lockForUpdate, columns...)
}

func (repo *Repository[T]) get(ctx context.Context, scope otel.Scope, filter dto.FilterGroup, locking string, columns ...string) (T, error) {
	where, args := repo.BuildWhereClause(filter)

	query := compose("SELECT", repo.selectColumns(columns...), "FROM", repo.table, repo.join, where, locking)

	var model T

	err := repo.getOne(ctx, scope, repo.reader(ctx), query, "get data", &model, args)
	if errors.Is(err, sql.ErrNoRows) {
		return model, nil
	}

	return model, err
}

// GetAll pages with LIMIT/OFFSET. Without a known sort column rows come back
// in primary key order so pages stay stable.
func (repo *Repository[T]) GetAll(ctx context.Context, params dto.QueryParams, filter dto.FilterGroup, columns ...string) ([]T, error) {
	ctx, scope := repo.span(ctx, "GetAll")
	defer scope.End()

	where, args := repo.BuildWhereClause(filter)

	sortColumn, sortDir := repo.primaryColumn, dto.SortDirAsc
	if params.SortBy != "" && repo.hasColumn(params.SortBy) {
		sortColumn, sortDir = params.SortBy, dto.SortDirDesc
		if params.SortDir == dto.SortDirAsc {
			sortDir = dto.SortDirAsc
		}
	}

	ordering := fmt.Sprintf("ORDER BY %s.%s %s", repo.table, sortColumn, sortDir)

	var pagination string
	if params.Limit > 0 {
		args["limit"] = params.Limit
		args["offset"] = params.Offset()
		pagination = "LIMIT :limit OFFSET :offset"
	}

	query := compose("SELECT", repo.selectColumns(columns...), "FROM", repo.table, repo.join, where, ordering, pagination)

	stmt, err := repo.prepare(ctx, scope, repo.reader(ctx), query)
	if err != nil {
		return nil, err
	}
	defer stmt.Close()

	var models []T

	if err = stmt.SelectContext(ctx, &models, args); err != nil {
		logger.ErrorWithStack(err)
		scope.TraceError(err)

		return models, fmt.Errorf("failed to get all data (%s): %w", repo.entity, err)
	}

	return models, nil
}

func (repo *Repository[T]) Count(ctx context.Context, filter dto.FilterGroup) (int, error) {
	ctx, scope := repo.span(ctx, "Count")
	defer scope.End()

	where, args := repo.BuildWhereClause(filter)
	query := compose(fmt.Sprintf("SELECT COUNT(%s.%s) FROM %s", repo.table, repo.primaryColumn, repo.table), repo.join, where)

	var count int
	if err := repo.getOne(ctx, scope, repo.reader(ctx), query, "count data", &count, args); err != nil {
		return 0, err
	}

	return count, nil
}

// Sum totals an integer column over the filtered rows; no rows yields zero.
func (repo *Repository[T]) Sum(ctx context.Context, column string, filter dto.FilterGroup) (int, error) {
	ctx, scope := repo.span(ctx, "Sum")
	defer scope.End()

	if !repo.hasColumn(column) {
		return 0, fmt.Errorf("%w: %s", errUnknownColumn, column)
	}

	where, args := repo.BuildWhereClause(filter)
	query := compose(fmt.Sprintf("SELECT COALESCE(SUM(%s.%s), 0) FROM %s", repo.table, column, repo.table), repo.join, where)

	var total int
	if err := repo.getOne(ctx, scope, repo.reader(ctx), query, "sum data", &total, args); err != nil {
		return 0, err
	}

	return total, nil
}

// Delete refuses to run without a filter.
func (repo *Repository[T]) Delete(ctx context.Context, filter dto.FilterGroup) error {
	ctx, scope := repo.span(ctx, "Delete")
	defer scope.End()

	where, args := repo.BuildWhereClause(filter)
	if where == "" {
		return errRequiredFilter
	}

	return repo.exec(ctx, scope, repo.writer(ctx), compose("DELETE FROM", repo.table, where), "delete data", args)
}

// Update sets the columns of mod on every row matching filter. Set values are
// bound under a prefix so they never collide with filter arguments.
func (repo *Repository[T]) Update(ctx context.Context, mod map[string]any, filter dto.FilterGroup) error {
	ctx, scope := repo.span(ctx, "Update")
	defer scope.End()

	where, args := repo.BuildWhereClause(filter)
	if where == "" {
		return errRequiredFilter
	}

	assignments := make([]string, 0, len(mod))

	for _, col := range slices.Sorted(maps.Keys(mod)) {
		assignments = append(assignments, fmt.Sprintf("%s = :%s%s", col, updateArgPrefix, col))
		args[updateArgPrefix+col] = mod[col]
	}

	query := compose("UPDATE", repo.table, "SET", strings.Join(assignments, ", "), where)

	return repo.exec(ctx, scope, repo.writer(ctx), query, "update data", args)
}

// reader returns the transaction carried by ctx, falling back to the read pool.
func (repo *Repository[T]) reader(ctx context.Context) execer {
	if tx, ok := postgres.TxFromContext(ctx); ok {
		return tx
	}

	return repo.db.Read
}

func (repo *Repository[T]) writer(ctx context.Context) execer {
	if tx, ok := postgres.TxFromContext(ctx); ok {
		return tx
	}

	return repo.db.Write
}

func (repo *Repository[T]) hasColumn(name string) bool {
	return slices.ContainsFunc(repo.columns, func(col column) bool {
		return col.table == repo.table && col.alias == "" && col.name == name
	})
}

func (repo *Repository[T]) selectColumns(only ...string) string {
	selected := make([]string, 0, len(repo.columns))

	for _, col := range repo.columns {
		if len(only) > 0 && !slices.Contains(only, col.name) {
			continue
		}

		switch {
		case col.table == "":
			selected = append(selected, col.name)
		case col.alias != "":
			selected = append(selected, fmt.Sprintf("%s.%s AS %s", col.table, col.name, col.alias))
		default:
			selected = append(selected, col.table+"."+col.name)
		}
	}

	return strings.Join(selected, ", ")
}

func (repo *Repository[T]) BuildWhereClause(filter dto.FilterGroup) (string, map[string]any) {
	where, args := filter.GetWhereClause()
	if where == "" {
		return "", map[string]any{}
	}

	return "WHERE " + where, args
}

func getColumns(table string, reflectType reflect.Type) (columns []column, insertColumns []string) {
	for i := range reflectType.NumField() {
		field := reflectType.Field(i)

		if field.Anonymous && field.Type.Kind() == reflect.Struct {
			embedded, embeddedInsert := getColumns(table, field.Type)
			columns = append(columns, embedded...)
			insertColumns = append(insertColumns, embeddedInsert...)
		}

		dbTag := field.Tag.Get("db")
		if dbTag == "" {
			continue
		}

		tableField := field.Tag.Get("table")
		if tableField == "" {
			tableField = table
		}

		if tableField == table && field.Tag.Get("generated") != "true" {
			insertColumns = append(insertColumns, dbTag)
		}

		if colTag := field.Tag.Get("column"); colTag != "" {
			columns = append(columns, column{name: colTag, table: tableField, alias: dbTag})
		} else {
			columns = append(columns, column{name: dbTag, table: tableField})
		}
	}

	return columns, insertColumns
}
