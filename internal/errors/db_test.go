package errors

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

func TestMapDBError_NilError(t *testing.T) {
	if err := MapDBError(nil); err != nil {
		t.Errorf("MapDBError(nil) = %v, want nil", err)
	}
}

func TestMapDBError(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		wantCode  ErrorCode
		wantField string
	}{
		{
			name:     "deadline exceeded",
			err:      context.DeadlineExceeded,
			wantCode: ErrCodeTimeout,
		},
		{
			name:     "canceled",
			err:      fmt.Errorf("query: %w", context.Canceled),
			wantCode: ErrCodeCanceled,
		},
		{
			name:     "no rows",
			err:      pgx.ErrNoRows,
			wantCode: ErrCodeNotFound,
		},
		{
			name: "unique violation with column name",
			err: &pgconn.PgError{
				Code:       pgerrcode.UniqueViolation,
				ColumnName: "state_token",
			},
			wantCode:  ErrCodeConflict,
			wantField: "state_token",
		},
		{
			name: "unique violation with detail",
			err: &pgconn.PgError{
				Code:   pgerrcode.UniqueViolation,
				Detail: `Key (state_token)=(abc) already exists.`,
			},
			wantCode:  ErrCodeConflict,
			wantField: "state_token",
		},
		{
			name: "foreign key violation",
			err: &pgconn.PgError{
				Code:      pgerrcode.ForeignKeyViolation,
				TableName: "claim_mappings",
			},
			wantCode: ErrCodeNotFound,
		},
		{
			name: "check violation",
			err: &pgconn.PgError{
				Code:       pgerrcode.CheckViolation,
				ColumnName: "status",
			},
			wantCode:  ErrCodeInvalidArgument,
			wantField: "status",
		},
		{
			name:     "not null violation",
			err:      &pgconn.PgError{Code: pgerrcode.NotNullViolation},
			wantCode: ErrCodeInvalidArgument,
		},
		{
			name:     "query canceled",
			err:      &pgconn.PgError{Code: pgerrcode.QueryCanceled},
			wantCode: ErrCodeTimeout,
		},
		{
			name:     "unknown pg error",
			err:      &pgconn.PgError{Code: "99999"},
			wantCode: ErrCodeInternal,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := MapDBError(tt.err)
			if got := GetCode(err); got != tt.wantCode {
				t.Errorf("MapDBError() code = %v, want %v", got, tt.wantCode)
			}
			if got := GetField(err); got != tt.wantField {
				t.Errorf("MapDBError() field = %v, want %v", got, tt.wantField)
			}
			if !errors.Is(err, tt.err) {
				t.Errorf("MapDBError() lost cause %v", tt.err)
			}
		})
	}
}

func TestMapDBError_StandardError(t *testing.T) {
	stdErr := errors.New("standard error")
	if err := MapDBError(stdErr); !errors.Is(err, stdErr) || GetCode(err) != "" {
		t.Errorf("MapDBError() should return original error for non-db errors, got %v", err)
	}
}
