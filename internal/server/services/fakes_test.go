package services

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/securepay/internal/common"
	"github.com/dmitrijs2005/securepay/internal/dbx"
	"github.com/dmitrijs2005/securepay/internal/server/config"
	"github.com/dmitrijs2005/securepay/internal/server/models"
	"github.com/dmitrijs2005/securepay/internal/server/repositories/profiles"
	"github.com/dmitrijs2005/securepay/internal/server/repositories/refreshtokens"
	"github.com/dmitrijs2005/securepay/internal/server/repositories/rows"
	"github.com/dmitrijs2005/securepay/internal/server/repositories/users"
)

type errBoom struct{}

func (errBoom) Error() string { return "boom" }

type fakeUsersRepo struct {
	createOut *models.User
	createErr error
	created   *models.User

	getOut *models.User
	getErr error
}

func (f *fakeUsersRepo) Create(ctx context.Context, u *models.User) (*models.User, error) {
	f.created = u
	if f.createErr != nil {
		return nil, f.createErr
	}
	return f.createOut, nil
}

func (f *fakeUsersRepo) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	return f.getOut, nil
}

func (f *fakeUsersRepo) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	return f.GetUserByEmail(ctx, id)
}

type fakeRefreshRepo struct {
	findOut *models.RefreshToken
	findErr error

	delErr    error
	deleted   []string
	createErr error
	created   []string

	purged int64
}

func (f *fakeRefreshRepo) Create(ctx context.Context, userID string, token string, validity time.Duration) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.created = append(f.created, token)
	return nil
}

func (f *fakeRefreshRepo) Find(ctx context.Context, token string) (*models.RefreshToken, error) {
	if f.findErr != nil {
		return nil, f.findErr
	}
	return f.findOut, nil
}

func (f *fakeRefreshRepo) Delete(ctx context.Context, token string) error {
	if f.delErr != nil {
		return f.delErr
	}
	f.deleted = append(f.deleted, token)
	return nil
}

func (f *fakeRefreshRepo) DeleteExpired(ctx context.Context) (int64, error) {
	return f.purged, nil
}

type upsertCall struct {
	table string
	owner string
	row   map[string]any
}

type fakeRowsRepo struct {
	queryOut []map[string]any
	err      error

	upserts []upsertCall
	deletes []string
}

func (f *fakeRowsRepo) Query(ctx context.Context, t rows.Table, ownerID string) ([]map[string]any, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.queryOut, nil
}

func (f *fakeRowsRepo) Upsert(ctx context.Context, t rows.Table, ownerID string, row map[string]any) (map[string]any, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.upserts = append(f.upserts, upsertCall{table: t.Name, owner: ownerID, row: row})
	out := map[string]any{"id": "srv-1", "user_id": ownerID}
	for k, v := range row {
		out[k] = v
	}
	return out, nil
}

func (f *fakeRowsRepo) Delete(ctx context.Context, t rows.Table, ownerID, id string) error {
	if f.err != nil {
		return f.err
	}
	f.deletes = append(f.deletes, t.Name+"/"+id)
	return nil
}

type fakeProfilesRepo struct {
	key    string
	setErr error
}

func (f *fakeProfilesRepo) SetAvatarKey(ctx context.Context, userID, key string) error {
	if f.setErr != nil {
		return f.setErr
	}
	f.key = key
	return nil
}

func (f *fakeProfilesRepo) AvatarKey(ctx context.Context, userID string) (string, error) {
	if f.key == "" {
		return "", common.ErrorNotFound
	}
	return f.key, nil
}

type fakeRepoManager struct {
	u  *fakeUsersRepo
	r  *fakeRefreshRepo
	rw *fakeRowsRepo
	p  *fakeProfilesRepo
}

func (m *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error         { return nil }
func (m *fakeRepoManager) Users(db dbx.DBTX) users.Repository                 { return m.u }
func (m *fakeRepoManager) RefreshTokens(db dbx.DBTX) refreshtokens.Repository { return m.r }
func (m *fakeRepoManager) Rows(db dbx.DBTX) rows.Repository                   { return m.rw }
func (m *fakeRepoManager) Profiles(db dbx.DBTX) profiles.Repository           { return m.p }

func newSQLMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return db, mock
}

func testConfig() *config.Config {
	return &config.Config{
		SecretKey:                    "k",
		AccessTokenValidityDuration:  time.Hour,
		RefreshTokenValidityDuration: 2 * time.Hour,
		S3Region:                     "us-east-1",
		S3RootUser:                   "minioadmin",
		S3RootPassword:               "minioadmin",
		S3BaseEndpoint:               "http://127.0.0.1:9000",
		S3Bucket:                     "avatars",
	}
}
