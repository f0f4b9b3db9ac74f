package errors

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
)

// Diagnostics is what a failed request logs about its error. Nothing here is
// sent to clients.
type Diagnostics struct {
	Message string
	Code    Code
	Chain   []string

	// Submission context carried in typed error details.
	Stage   string
	OrderID any

	// Postgres error fields, from either driver.
	PG map[string]string
}

// Diagnose walks err and collects its typed code, wrap chain, submission
// context and any Postgres error fields.
func Diagnose(err error) Diagnostics {
	if err == nil {
		return Diagnostics{}
	}
	d := Diagnostics{Message: err.Error()}

	if te := As(err); te != nil {
		d.Code = te.Code()
	}
	if dm := DetailMap(err); dm != nil {
		d.Stage, _ = dm["stage"].(string)
		d.OrderID = dm["order_id"]
	}
	for e := err; e != nil; e = errors.Unwrap(e) {
		d.Chain = append(d.Chain, fmt.Sprintf("%T: %v", e, e))
	}

	var pgxErr *pgconn.PgError
	var pqErr *pq.Error
	switch {
	case errors.As(err, &pgxErr):
		d.PG = pgFields(pgxErr.Code, pgxErr.ConstraintName, pgxErr.TableName, pgxErr.ColumnName, pgxErr.Detail, pgxErr.Message)
	case errors.As(err, &pqErr):
		d.PG = pgFields(string(pqErr.Code), pqErr.Constraint, pqErr.Table, pqErr.Column, pqErr.Detail, pqErr.Message)
	}
	return d
}

func pgFields(code, constraint, table, column, detail, message string) map[string]string {
	out := map[string]string{"pg_code": code, "pg_message": message}
	for k, v := range map[string]string{
		"pg_constraint": constraint,
		"pg_table":      table,
		"pg_column":     column,
		"pg_detail":     detail,
	} {
		if v != "" {
			out[k] = v
		}
	}
	return out
}

// LogFields flattens the diagnostics into structured log fields.
func (d Diagnostics) LogFields() map[string]any {
	fields := map[string]any{
		"error":       d.Message,
		"error_chain": d.Chain,
	}
	if d.Code != "" {
		fields["error_code"] = d.Code
	}
	if d.Stage != "" {
		fields["stage"] = d.Stage
	}
	if d.OrderID != nil {
		fields["order_id"] = d.OrderID
	}
	for k, v := range d.PG {
		fields[k] = v
	}
	return fields
}
