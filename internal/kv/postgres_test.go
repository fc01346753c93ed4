package kv

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockDB struct {
	mock.Mock
}

func (m *MockDB) Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error) {
	args := m.Called(append([]any{ctx, sql}, arguments...)...)
	return args.Get(0).(pgconn.CommandTag), args.Error(1)
}

func (m *MockDB) QueryRow(ctx context.Context, sql string, arguments ...any) pgx.Row {
	args := m.Called(append([]any{ctx, sql}, arguments...)...)
	return args.Get(0).(pgx.Row)
}

type stubRow struct {
	value []byte
	err   error
}

func (r stubRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	*(dest[0].(*[]byte)) = r.value
	return nil
}

func TestPostgresStore_Get(t *testing.T) {
	tests := []struct {
		name      string
		row       stubRow
		wantValue []byte
		wantOK    bool
		wantErr   error
	}{
		{name: "found", row: stubRow{value: []byte(`[{"id":"1"}]`)}, wantValue: []byte(`[{"id":"1"}]`), wantOK: true},
		{name: "missing", row: stubRow{err: pgx.ErrNoRows}},
		{name: "no table", row: stubRow{err: &pgconn.PgError{Code: pgerrcode.UndefinedTable}}, wantErr: ErrSchemaMissing},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db := new(MockDB)
			db.On("QueryRow", mock.Anything, mock.AnythingOfType("string"), "products").Return(tt.row).Once()

			store := NewPostgresStore(db)
			value, ok, err := store.Get(context.Background(), "products")

			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
			}
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantValue, value)
			db.AssertExpectations(t)
		})
	}
}

func TestPostgresStore_Get_UnexpectedError(t *testing.T) {
	db := new(MockDB)
	cause := errors.New("connection refused")
	db.On("QueryRow", mock.Anything, mock.AnythingOfType("string"), "orders").Return(stubRow{err: cause}).Once()

	_, _, err := NewPostgresStore(db).Get(context.Background(), "orders")

	require.ErrorIs(t, err, cause)
	assert.NotErrorIs(t, err, ErrSchemaMissing)
}

func TestPostgresStore_Set(t *testing.T) {
	db := new(MockDB)
	fixed := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	value := []byte(`{"a":1}`)

	db.On("Exec", mock.Anything, mock.AnythingOfType("string"), "coupons", value, fixed).
		Return(pgconn.NewCommandTag("INSERT 0 1"), nil).
		Once()

	store := NewPostgresStore(db)
	store.now = func() time.Time { return fixed }

	require.NoError(t, store.Set(context.Background(), "coupons", value))
	db.AssertExpectations(t)
}

func TestPostgresStore_Set_MissingTable(t *testing.T) {
	db := new(MockDB)
	db.On("Exec", mock.Anything, mock.AnythingOfType("string"), "coupons", mock.Anything, mock.Anything).
		Return(pgconn.CommandTag{}, &pgconn.PgError{Code: pgerrcode.UndefinedTable}).
		Once()

	err := NewPostgresStore(db).Set(context.Background(), "coupons", []byte("[]"))

	require.ErrorIs(t, err, ErrSchemaMissing)
	db.AssertExpectations(t)
}
