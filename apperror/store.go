package apperror

import (
	"errors"

	"github.com/go-sql-driver/mysql"
	"github.com/lib/pq"
)

const (
	mysqlNoSuchTable   = 1146
	postgresNoRelation = "42P01"
)

// IsSchemaMissing reports whether err comes from a query against a table that does not exist.
func IsSchemaMissing(err error) bool {
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		return myErr.Number == mysqlNoSuchTable
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == postgresNoRelation
	}
	return false
}

// FromStore turns a backend failure into an *Error carrying message, unless err already is one.
// Missing-table failures become SchemaMissing so operators get a setup hint instead of a generic failure.
func FromStore(err error, kind Kind, message string) error {
	if err == nil {
		return nil
	}
	var appErr *Error
	if errors.As(err, &appErr) {
		return err
	}
	if IsSchemaMissing(err) {
		return Wrap(SchemaMissing, ErrMsgSchemaMissing, err)
	}
	return Wrap(kind, message, err)
}
