package rows

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/securepay/internal/common"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return NewPostgresRepository(db), mock, db
}

func mustTable(t *testing.T, name string) Table {
	t.Helper()
	tbl, err := Lookup(name)
	require.NoError(t, err)
	return tbl
}

func TestLookup(t *testing.T) {
	_, err := Lookup("users")
	assert.ErrorIs(t, err, common.ErrUnknownTable)

	tbl, err := Lookup(common.TableProfiles)
	require.NoError(t, err)
	assert.True(t, tbl.IDIsOwner)
}

func TestQuery(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := regexp.QuoteMeta(`SELECT row_to_json(t)::text FROM securepay_transactions AS t WHERE t.user_id = $1::uuid ORDER BY t.created_at DESC, t.id`)
	mock.ExpectQuery(q).WithArgs("u1").WillReturnRows(sqlmock.NewRows([]string{"row_to_json"}).
		AddRow(`{"id":"a","amount":50.01,"merchant":"Cafe"}`).
		AddRow(`{"id":"b","amount":null}`))

	got, err := repo.Query(context.Background(), mustTable(t, common.TableTransactions), "u1")
	require.NoError(t, err)
	assert.Equal(t, []map[string]any{
		{"id": "a", "amount": 50.01, "merchant": "Cafe"},
		{"id": "b", "amount": nil},
	}, got)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestQuery_Errors(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()
	tbl := mustTable(t, common.TableScheduledPayments)

	mock.ExpectQuery(`FROM scheduled_payments`).WithArgs("bad").
		WillReturnError(&pgconn.PgError{Code: "22P02", Message: "invalid input syntax for type uuid"})
	_, err := repo.Query(context.Background(), tbl, "bad")
	assert.ErrorIs(t, err, common.ErrValidation)

	mock.ExpectQuery(`FROM scheduled_payments`).WithArgs("u1").
		WillReturnRows(sqlmock.NewRows([]string{"row_to_json"}).AddRow(`{not json`))
	_, err = repo.Query(context.Background(), tbl, "u1")
	assert.ErrorContains(t, err, "decode row")

	mock.ExpectQuery(`FROM scheduled_payments`).WithArgs("u1").WillReturnError(errors.New("down"))
	_, err = repo.Query(context.Background(), tbl, "u1")
	assert.ErrorContains(t, err, "db error")
}

func TestUpsert_InsertUsesOnlyAllowedColumns(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^INSERT INTO securepay_transactions AS t \(user_id, amount, merchant\)\s+` +
		`SELECT \$1::uuid, r\.amount, r\.merchant FROM json_populate_record\(NULL::securepay_transactions, \$2::json\) AS r\s+` +
		`ON CONFLICT \(id\) DO UPDATE SET user_id = EXCLUDED\.user_id, amount = EXCLUDED\.amount, merchant = EXCLUDED\.merchant\s+` +
		`WHERE t\.user_id = EXCLUDED\.user_id\s+RETURNING row_to_json\(t\)::text$`

	mock.ExpectQuery(q).WithArgs("u1", sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"row_to_json"}).AddRow(`{"id":"new","user_id":"u1","amount":50.01}`))

	got, err := repo.Upsert(context.Background(), mustTable(t, common.TableTransactions), "u1", map[string]any{
		"amount":     "50.01",
		"merchant":   "Cafe",
		"user_id":    "someone-else",
		"created_at": "2000-01-01",
	})
	require.NoError(t, err)
	assert.Equal(t, "new", got["id"])
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpsert_UpdateByID(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^INSERT INTO scheduled_payments AS t \(user_id, id, payee\)\s+SELECT \$1::uuid, r\.id, r\.payee FROM`
	mock.ExpectQuery(q).WithArgs("u1", `{"id":"s1","payee":"Gym"}`).
		WillReturnRows(sqlmock.NewRows([]string{"row_to_json"}).AddRow(`{"id":"s1","payee":"Gym"}`))
	mock.ExpectQuery(q).WithArgs("u1", `{"id":"s1","payee":"Gym"}`).
		WillReturnError(sql.ErrNoRows)

	tbl := mustTable(t, common.TableScheduledPayments)
	_, err := repo.Upsert(context.Background(), tbl, "u1", map[string]any{"id": "s1", "payee": "Gym"})
	require.NoError(t, err)

	_, err = repo.Upsert(context.Background(), tbl, "u1", map[string]any{"id": "s1", "payee": "Gym"})
	assert.ErrorIs(t, err, common.ErrorNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpsert_ProfileIDIsOwner(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^INSERT INTO profiles AS t \(user_id, id, full_name\)\s+SELECT \$1::uuid, \$1::uuid, r\.full_name FROM`
	mock.ExpectQuery(q).WithArgs("u1", sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"row_to_json"}).AddRow(`{"id":"u1","full_name":"A"}`))

	got, err := repo.Upsert(context.Background(), mustTable(t, common.TableProfiles), "u1",
		map[string]any{"id": "forged", "full_name": "A", "avatar_key": "x"})
	require.NoError(t, err)
	assert.Equal(t, "u1", got["id"])
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpsert_CheckViolationIsValidation(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`INSERT INTO scheduled_payments`).
		WillReturnError(&pgconn.PgError{Code: "23514", Message: "violates check constraint"})

	_, err := repo.Upsert(context.Background(), mustTable(t, common.TableScheduledPayments), "u1",
		map[string]any{"schedule_type": "yearly"})
	assert.ErrorIs(t, err, common.ErrValidation)
}

func TestDelete(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()
	tbl := mustTable(t, common.TableTransactions)

	q := regexp.QuoteMeta(`DELETE FROM securepay_transactions WHERE id = $1::uuid AND user_id = $2::uuid`)
	mock.ExpectExec(q).WithArgs("t1", "u1").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(q).WithArgs("t2", "u1").WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, repo.Delete(context.Background(), tbl, "u1", "t1"))
	assert.ErrorIs(t, repo.Delete(context.Background(), tbl, "u1", "t2"), common.ErrorNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}
