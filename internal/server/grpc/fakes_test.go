package grpc

import (
	"context"
	"sync"

	"github.com/dmitrijs2005/securepay/internal/logging"
	"github.com/dmitrijs2005/securepay/internal/server/models"
	"github.com/dmitrijs2005/securepay/internal/server/services"
)

type fakeUser struct {
	regResp *models.User
	regErr  error
	regArgs []string

	loginUser *models.User
	loginResp *services.TokenPair
	loginErr  error

	refreshResp *services.TokenPair
	refreshErr  error

	current    *models.User
	currentErr error
}

func (f *fakeUser) Register(ctx context.Context, email, password, fullName string) (*models.User, error) {
	f.regArgs = []string{email, password, fullName}
	return f.regResp, f.regErr
}

func (f *fakeUser) Login(ctx context.Context, email, password string) (*models.User, *services.TokenPair, error) {
	return f.loginUser, f.loginResp, f.loginErr
}

func (f *fakeUser) RefreshToken(ctx context.Context, refresh string) (string, *services.TokenPair, error) {
	if f.refreshErr != nil {
		return "", nil, f.refreshErr
	}
	return "u1", f.refreshResp, nil
}

func (f *fakeUser) CurrentUser(ctx context.Context, userID string) (*models.User, error) {
	return f.current, f.currentErr
}

type fakeRows struct {
	mu    sync.Mutex
	data  map[string][]map[string]any
	err   error
	owner string
}

func (f *fakeRows) Query(ctx context.Context, table, ownerID string) ([]map[string]any, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.owner = ownerID
	if f.err != nil {
		return nil, f.err
	}
	return f.data[table], nil
}

func (f *fakeRows) Upsert(ctx context.Context, table, ownerID string, row map[string]any) (map[string]any, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.owner = ownerID
	if f.err != nil {
		return nil, f.err
	}
	out := map[string]any{"id": "srv-1", "user_id": ownerID}
	for k, v := range row {
		out[k] = v
	}
	if f.data == nil {
		f.data = map[string][]map[string]any{}
	}
	f.data[table] = append(f.data[table], out)
	return out, nil
}

func (f *fakeRows) Delete(ctx context.Context, table, ownerID, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.owner = ownerID
	return f.err
}

type fakeProfiles struct {
	url string
	err error
}

func (f *fakeProfiles) AvatarUploadURL(ctx context.Context, userID string) (string, error) {
	return f.url + "/put/" + userID, f.err
}

func (f *fakeProfiles) AvatarURL(ctx context.Context, userID string) (string, error) {
	return f.url + "/get/" + userID, f.err
}

func newServer(u userSvc, r rowSvc, p profileSvc, feed changeFeed) *GRPCServer {
	return NewGRPCServer("127.0.0.1:0", logging.NewNop(), u, r, p, feed, "k")
}
