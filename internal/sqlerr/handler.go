package sqlerr

import (
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/deppfellow/guardian/internal/errs"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// ErrCode reports the Code of the first *Error in err's chain, or Other.
func ErrCode(err error) Code {
	var pgerr *Error
	if errors.As(err, &pgerr) {
		return pgerr.Code
	}
	return Other
}

// ConvertPgError normalizes a raw pgx error.
func ConvertPgError(src *pgconn.PgError) *Error {
	return &Error{
		Code:           MapCode(src.Code),
		Severity:       MapSeverity(src.Severity),
		DatabaseCode:   src.Code,
		Message:        src.Message,
		SchemaName:     src.SchemaName,
		TableName:      src.TableName,
		ColumnName:     src.ColumnName,
		DataTypeName:   src.DataTypeName,
		ConstraintName: src.ConstraintName,
		driverErr:      src,
	}
}

// Retryable reports whether err is a transient database failure that may
// succeed when the same statement is run again.
func Retryable(err error) bool {
	var pgerr *pgconn.PgError
	if !errors.As(err, &pgerr) {
		return false
	}
	switch MapCode(pgerr.Code) {
	case SerializationFailed, DeadlockDetected, TooManyConnections:
		return true
	}
	return false
}

// violationActions is the <ACTION> half of generated error codes.
var violationActions = map[Code]string{
	ForeignKeyViolation: "NOT_FOUND",
	UniqueViolation:     "ALREADY_EXISTS",
	NotNullViolation:    "REQUIRED",
	CheckViolation:      "INVALID",
}

// HandleError converts a database error into an *errs.HTTPError.
//
// HTTP errors pass through unchanged. Constraint violations become 400s with
// a <ENTITY>_<ACTION> code, transient failures (deadlock, serialization,
// connection limit) a 503, ErrNoRows a 404 and everything else a 500. Wrap
// lookups as fmt.Errorf("table:<name>: %w", err) to name the missing entity.
func HandleError(err error) error {
	var httpErr *errs.HTTPError
	if errors.As(err, &httpErr) {
		return err
	}

	var pgerr *pgconn.PgError
	if errors.As(err, &pgerr) {
		return constraintError(ConvertPgError(pgerr))
	}

	if errors.Is(err, pgx.ErrNoRows) || errors.Is(err, sql.ErrNoRows) {
		if table, ok := tableFromMessage(err.Error()); ok {
			return errs.NewNotFoundError(fmt.Sprintf("%s not found", entityName(table, "")), true, nil)
		}
		return errs.NewNotFoundError("Resource not found", false, nil)
	}

	return errs.NewInternalServerError()
}

func constraintError(sqlErr *Error) error {
	switch sqlErr.Code {
	case SerializationFailed, DeadlockDetected, TooManyConnections:
		return errs.NewServiceUnavailableError("The database is busy, please retry")
	}

	action, ok := violationActions[sqlErr.Code]
	if !ok {
		return errs.NewInternalServerError()
	}

	code := domain(sqlErr.TableName) + "_" + action
	entity := entityName(sqlErr.TableName, sqlErr.ColumnName)
	field := humanize(sqlErr.ColumnName)

	switch sqlErr.Code {
	case ForeignKeyViolation:
		return errs.NewBadRequestError(fmt.Sprintf("The referenced %s does not exist", entity), false, &code, nil, nil)

	case UniqueViolation:
		identifier := "identifier"
		if column := uniqueColumn(sqlErr.ConstraintName); column != "" {
			identifier = humanize(column)
		}
		return errs.NewBadRequestError(fmt.Sprintf("A %s with this %s already exists", entity, identifier), true, &code, nil, nil)

	case NotNullViolation:
		if field == "" {
			field = "field"
		}
		fieldErrors := []errs.FieldError{{Field: strings.ToLower(sqlErr.ColumnName), Error: "is required"}}
		return errs.NewBadRequestError(fmt.Sprintf("The %s is required", field), true, &code, fieldErrors, nil)

	default:
		message := "One or more values do not meet required conditions"
		if field != "" {
			message = fmt.Sprintf("The %s value does not meet required conditions", field)
		}
		return errs.NewBadRequestError(message, true, &code, nil, nil)
	}
}

// domain is the upper-cased singular table name, or RECORD.
func domain(table string) string {
	if table == "" {
		return "RECORD"
	}
	return strings.ToUpper(singular(table))
}

// entityName names what an error refers to: the base of an "_id" column
// ("event_id" -> "Event"), else the singular table name, else "record".
func entityName(table, column string) string {
	if lower := strings.ToLower(column); strings.HasSuffix(lower, "_id") {
		return humanize(strings.TrimSuffix(lower, "_id"))
	}
	if table != "" {
		return humanize(singular(table))
	}
	return "record"
}

func singular(s string) string {
	if len(s) > 1 && (strings.HasSuffix(s, "s") || strings.HasSuffix(s, "S")) {
		return s[:len(s)-1]
	}
	return s
}

// humanize turns "billing_event" into "Billing Event".
func humanize(text string) string {
	if text == "" {
		return ""
	}
	return cases.Title(language.English).String(strings.ReplaceAll(text, "_", " "))
}

var (
	uniqueKeyPattern = regexp.MustCompile(`_([^_]+)_(?:key|ukey)$`)
	tablePattern     = regexp.MustCompile(`table:([^:]+)`)
)

// uniqueColumn infers the column from a unique constraint named
// unique_<table>_<column> or <table>_<column>_key.
func uniqueColumn(constraint string) string {
	if strings.HasPrefix(constraint, "unique_") {
		if parts := strings.Split(constraint, "_"); len(parts) >= 3 {
			return parts[len(parts)-1]
		}
	}
	if m := uniqueKeyPattern.FindStringSubmatch(constraint); len(m) > 1 {
		return m[1]
	}
	return ""
}

func tableFromMessage(msg string) (string, bool) {
	m := tablePattern.FindStringSubmatch(msg)
	if len(m) < 2 {
		return "", false
	}
	return m[1], true
}
