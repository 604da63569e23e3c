package services

import (
	"context"
	"errors"
	"time"

	"github.com/dmitrijs2005/securepay/internal/client/client"
	"github.com/dmitrijs2005/securepay/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/securepay/internal/common"
	"github.com/dmitrijs2005/securepay/internal/logging"
)

// sessionClient is the part of client.GRPCClient the auth service needs.
type sessionClient interface {
	Register(ctx context.Context, email, password, fullName string) (*client.User, error)
	Login(ctx context.Context, email, password string) (*client.User, error)
	Resume(ctx context.Context, st client.SessionState) (*client.User, error)
	Logout()
	Ping(ctx context.Context) error
	OnSessionChange(fn func(client.SessionState))
}

type storedSession struct {
	UserID       string `json:"user_id"`
	Email        string `json:"email"`
	RefreshToken string `json:"refresh_token"`
}

// AuthService signs users in and out and keeps the session in the local
// metadata table so it survives restarts.
type AuthService struct {
	client   sessionClient
	identity *client.Identity
	meta     metadata.Repository
	logger   logging.Logger
}

func NewAuthService(c sessionClient, identity *client.Identity, meta metadata.Repository, logger logging.Logger) *AuthService {
	a := &AuthService{client: c, identity: identity, meta: meta, logger: logger.With("module", "auth")}
	c.OnSessionChange(a.persist)
	return a
}

// persist stores rotated tokens. Failures only cost the next restore.
func (a *AuthService) persist(st client.SessionState) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err := a.meta.SetJSON(ctx, metadata.KeySession, storedSession{
		UserID:       st.UserID,
		Email:        st.Email,
		RefreshToken: st.RefreshToken,
	})
	if err != nil {
		a.logger.Warn(ctx, "failed to persist session", "error", err)
	}
}

// Register creates the account and signs it in.
func (a *AuthService) Register(ctx context.Context, email, password, fullName string) (*client.User, error) {
	if _, err := a.client.Register(ctx, email, password, fullName); err != nil {
		return nil, err
	}
	return a.Login(ctx, email, password)
}

func (a *AuthService) Login(ctx context.Context, email, password string) (*client.User, error) {
	u, err := a.client.Login(ctx, email, password)
	if err != nil {
		return nil, err
	}
	a.identity.Set(u)
	return u, nil
}

// Restore resumes the persisted session, if any. It returns (nil, nil)
// when there is nothing to restore or the session has expired.
func (a *AuthService) Restore(ctx context.Context) (*client.User, error) {
	var st storedSession
	if err := a.meta.GetJSON(ctx, metadata.KeySession, &st); err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, nil
		}
		return nil, err
	}

	u, err := a.client.Resume(ctx, client.SessionState{UserID: st.UserID, Email: st.Email, RefreshToken: st.RefreshToken})
	if errors.Is(err, client.ErrUnauthorized) {
		a.logger.Info(ctx, "stored session expired")
		return nil, a.meta.Delete(ctx, metadata.KeySession)
	}
	if err != nil {
		return nil, err
	}
	a.identity.Set(u)
	return u, nil
}

func (a *AuthService) Logout(ctx context.Context) error {
	a.client.Logout()
	a.identity.Set(nil)
	return a.meta.Delete(ctx, metadata.KeySession)
}

func (a *AuthService) CurrentUser() *client.User {
	return a.identity.CurrentUser()
}

func (a *AuthService) Ping(ctx context.Context) error {
	return a.client.Ping(ctx)
}
