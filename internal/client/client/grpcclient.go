package client

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/securepay/internal/api"
	"github.com/dmitrijs2005/securepay/internal/common"
	"github.com/dmitrijs2005/securepay/internal/logging"
	"github.com/dmitrijs2005/securepay/internal/records"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
)

const (
	minResubscribeDelay = 500 * time.Millisecond
	maxResubscribeDelay = 30 * time.Second
)

// SessionState is what must be persisted to resume a session later.
type SessionState struct {
	UserID       string
	Email        string
	RefreshToken string
}

// GRPCClient talks to the SecurePay server. It implements RemoteStore and
// ChangeFeed on top of the session established by Login or Resume.
type GRPCClient struct {
	endpointURL string
	conn        *grpc.ClientConn
	client      api.SecurePayClient
	logger      logging.Logger

	mu           sync.Mutex
	accessToken  string
	refreshToken string
	user         *User
	onSession    func(SessionState)

	// refreshMu serializes token refreshes.
	refreshMu sync.Mutex
}

func withAccessToken(ctx context.Context, token string) context.Context {
	md, _ := metadata.FromOutgoingContext(ctx)
	md = md.Copy()
	if md == nil {
		md = metadata.MD{}
	}
	md.Delete(common.AccessTokenHeaderName)
	md.Set(common.AccessTokenHeaderName, token)

	return metadata.NewOutgoingContext(ctx, md)
}

func isTokenExpired(err error) bool {
	st, ok := status.FromError(err)
	return ok && st.Code() == codes.Unauthenticated && st.Message() == common.ErrTokenExpired.Error()
}

func (s *GRPCClient) tokens() (string, string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.accessToken, s.refreshToken
}

func (s *GRPCClient) accessTokenInterceptor(
	ctx context.Context,
	method string,
	req, reply interface{},
	cc *grpc.ClientConn,
	invoker grpc.UnaryInvoker,
	opts ...grpc.CallOption,
) error {
	if _, public := api.PublicMethods[method]; public {
		return invoker(ctx, method, req, reply, cc, opts...)
	}

	access, _ := s.tokens()
	err := invoker(withAccessToken(ctx, access), method, req, reply, cc, opts...)
	if err == nil || !isTokenExpired(err) {
		return err
	}

	access, rerr := s.refresh(ctx, access)
	if rerr != nil {
		return rerr
	}
	return invoker(withAccessToken(ctx, access), method, req, reply, cc, opts...)
}

func (s *GRPCClient) streamAccessTokenInterceptor(
	ctx context.Context,
	desc *grpc.StreamDesc,
	cc *grpc.ClientConn,
	method string,
	streamer grpc.Streamer,
	opts ...grpc.CallOption,
) (grpc.ClientStream, error) {
	access, _ := s.tokens()
	return streamer(withAccessToken(ctx, access), desc, cc, method, opts...)
}

// refresh exchanges the refresh token for a new pair. stale is the access
// token the caller saw rejected; when another goroutine already replaced it
// the new token is returned without a second round trip.
func (s *GRPCClient) refresh(ctx context.Context, stale string) (string, error) {
	s.refreshMu.Lock()
	defer s.refreshMu.Unlock()

	access, refresh := s.tokens()
	if access != stale && access != "" {
		return access, nil
	}
	if refresh == "" {
		return "", ErrUnauthorized
	}

	in, err := api.NewMessage(map[string]any{api.FieldRefreshToken: refresh})
	if err != nil {
		return "", err
	}
	resp, err := s.client.RefreshToken(ctx, in)
	if err != nil {
		return "", s.mapError(err)
	}

	s.mu.Lock()
	s.accessToken = api.String(resp, api.FieldAccessToken)
	s.refreshToken = api.String(resp, api.FieldRefreshToken)
	if s.user == nil {
		s.user = &User{ID: api.String(resp, api.FieldUserID)}
	}
	access = s.accessToken
	state, notify := s.sessionLocked(), s.onSession
	s.mu.Unlock()

	if notify != nil {
		notify(state)
	}
	return access, nil
}

func NewGRPCClient(endpointURL string, logger logging.Logger, opts ...grpc.DialOption) (*GRPCClient, error) {
	c := &GRPCClient{endpointURL: endpointURL, logger: logger.With("module", "grpc_client")}
	if err := c.InitGRPCClient(opts...); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *GRPCClient) InitGRPCClient(opts ...grpc.DialOption) error {
	opts = append([]grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithUnaryInterceptor(s.accessTokenInterceptor),
		grpc.WithStreamInterceptor(s.streamAccessTokenInterceptor),
	}, opts...)

	conn, err := grpc.NewClient(s.endpointURL, opts...)
	if err != nil {
		return err
	}
	s.conn = conn
	s.client = api.NewSecurePayClient(conn)
	return nil
}

func (s *GRPCClient) Close() error {
	return s.conn.Close()
}

// OnSessionChange registers fn to receive the session whenever tokens are
// issued or rotated.
func (s *GRPCClient) OnSessionChange(fn func(SessionState)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onSession = fn
}

func (s *GRPCClient) sessionLocked() SessionState {
	st := SessionState{RefreshToken: s.refreshToken}
	if s.user != nil {
		st.UserID = s.user.ID
		st.Email = s.user.Email
	}
	return st
}

func (s *GRPCClient) setSession(u *User, access, refresh string) {
	s.mu.Lock()
	s.user = u
	s.accessToken = access
	s.refreshToken = refresh
	state, notify := s.sessionLocked(), s.onSession
	s.mu.Unlock()

	if notify != nil && u != nil {
		notify(state)
	}
}

func (s *GRPCClient) Register(ctx context.Context, email, password, fullName string) (*User, error) {
	in, err := api.NewMessage(map[string]any{
		api.FieldEmail:    email,
		api.FieldPassword: password,
		api.FieldFullName: fullName,
	})
	if err != nil {
		return nil, err
	}
	resp, err := s.client.Register(ctx, in)
	if err != nil {
		return nil, s.mapError(err)
	}
	return &User{ID: api.String(resp, api.FieldUserID), Email: api.String(resp, api.FieldEmail)}, nil
}

func (s *GRPCClient) Login(ctx context.Context, email, password string) (*User, error) {
	in, err := api.NewMessage(map[string]any{api.FieldEmail: email, api.FieldPassword: password})
	if err != nil {
		return nil, err
	}
	resp, err := s.client.Login(ctx, in)
	if err != nil {
		return nil, s.mapError(err)
	}

	u := &User{ID: api.String(resp, api.FieldUserID), Email: api.String(resp, api.FieldEmail)}
	s.setSession(u, api.String(resp, api.FieldAccessToken), api.String(resp, api.FieldRefreshToken))
	return u, nil
}

// Resume restores a persisted session by rotating its refresh token.
func (s *GRPCClient) Resume(ctx context.Context, st SessionState) (*User, error) {
	if st.RefreshToken == "" {
		return nil, ErrUnauthorized
	}
	s.setSession(&User{ID: st.UserID, Email: st.Email}, "", st.RefreshToken)
	if _, err := s.refresh(ctx, ""); err != nil {
		s.setSession(nil, "", "")
		return nil, err
	}
	return s.CurrentUser(ctx)
}

// Logout forgets the session tokens.
func (s *GRPCClient) Logout() {
	s.setSession(nil, "", "")
}

func (s *GRPCClient) CurrentUser(ctx context.Context) (*User, error) {
	resp, err := s.client.CurrentUser(ctx, &emptypb.Empty{})
	if err != nil {
		return nil, s.mapError(err)
	}
	u := &User{ID: api.String(resp, api.FieldUserID), Email: api.String(resp, api.FieldEmail)}

	s.mu.Lock()
	s.user = u
	s.mu.Unlock()
	return u, nil
}

func (s *GRPCClient) Ping(ctx context.Context) error {
	resp, err := s.client.Ping(ctx, &emptypb.Empty{})
	if err != nil {
		return s.mapError(err)
	}
	if api.String(resp, api.FieldStatus) != "OK" {
		return ErrUnavailable
	}
	return nil
}

// checkOwner rejects requests for rows of anyone but the signed-in user;
// the server scopes every request to the token's owner anyway.
func (s *GRPCClient) checkOwner(ownerID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.user == nil || s.user.ID == "" || s.user.ID != ownerID {
		return ErrUnauthorized
	}
	return nil
}

func (s *GRPCClient) Query(ctx context.Context, table, ownerID string) ([]records.Row, error) {
	if err := s.checkOwner(ownerID); err != nil {
		return nil, err
	}
	in, err := api.NewMessage(map[string]any{api.FieldTable: table})
	if err != nil {
		return nil, err
	}
	resp, err := s.client.Query(ctx, in)
	if err != nil {
		return nil, s.mapError(err)
	}

	objs := api.Objects(resp)
	out := make([]records.Row, len(objs))
	for i, o := range objs {
		out[i] = records.Row(o)
	}
	return out, nil
}

func (s *GRPCClient) Upsert(ctx context.Context, table string, row records.Row) (records.Row, error) {
	in, err := api.NewMessage(map[string]any{api.FieldTable: table, api.FieldRow: map[string]any(row)})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}
	resp, err := s.client.Upsert(ctx, in)
	if err != nil {
		return nil, s.mapError(err)
	}
	return records.Row(resp.AsMap()), nil
}

func (s *GRPCClient) Delete(ctx context.Context, table, id string) error {
	in, err := api.NewMessage(map[string]any{api.FieldTable: table, api.FieldID: id})
	if err != nil {
		return err
	}
	if _, err := s.client.Delete(ctx, in); err != nil {
		return s.mapError(err)
	}
	return nil
}

// Subscribe keeps a Subscribe stream open for table, reopening it with
// backoff when it breaks. Every reopened stream fires onChange once it is
// attached, so writes made while it was down are picked up. Failures are
// logged and never reach the caller.
func (s *GRPCClient) Subscribe(ctx context.Context, table, ownerID string, onChange func()) (*Subscription, error) {
	if err := s.checkOwner(ownerID); err != nil {
		return nil, err
	}
	in, err := api.NewMessage(map[string]any{api.FieldTable: table})
	if err != nil {
		return nil, err
	}

	logger := s.logger.With("table", table)
	return NewSubscription(ctx, func(ctx context.Context) {
		delay := minResubscribeDelay
		for attempt := 0; ctx.Err() == nil; attempt++ {
			received, err := s.stream(ctx, in, onChange, attempt > 0)
			if ctx.Err() != nil {
				return
			}
			if received {
				delay = minResubscribeDelay
			}
			if isTokenExpired(err) {
				access, _ := s.tokens()
				if _, rerr := s.refresh(ctx, access); rerr == nil {
					continue
				}
			}
			logger.Warn(ctx, "change stream interrupted", "error", err, "retry_in", delay)

			select {
			case <-ctx.Done():
				return
			case <-time.After(delay):
			}
			delay = min(delay*2, maxResubscribeDelay)
		}
	}), nil
}

// stream runs one Subscribe stream until it fails, reporting whether any
// event arrived. A resumed stream signals onChange as soon as the server
// has attached it.
func (s *GRPCClient) stream(ctx context.Context, in *structpb.Struct, onChange func(), resumed bool) (bool, error) {
	st, err := s.client.Subscribe(ctx, in)
	if err != nil {
		return false, err
	}
	if resumed {
		if _, err := st.Header(); err != nil {
			return false, err
		}
		onChange()
	}
	received := false
	for {
		if _, err := st.Recv(); err != nil {
			return received, err
		}
		received = true
		onChange()
	}
}

func (s *GRPCClient) AvatarUploadURL(ctx context.Context) (string, error) {
	resp, err := s.client.AvatarUploadURL(ctx, &emptypb.Empty{})
	if err != nil {
		return "", s.mapError(err)
	}
	return api.String(resp, api.FieldURL), nil
}

func (s *GRPCClient) AvatarURL(ctx context.Context) (string, error) {
	resp, err := s.client.AvatarURL(ctx, &emptypb.Empty{})
	if err != nil {
		return "", s.mapError(err)
	}
	return api.String(resp, api.FieldURL), nil
}

func (s *GRPCClient) mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrUnauthorized) || errors.Is(err, ErrUnavailable) {
		return err
	}
	st, _ := status.FromError(err)
	switch st.Code() {
	case codes.Unauthenticated, codes.PermissionDenied:
		return ErrUnauthorized
	case codes.Unavailable, codes.DeadlineExceeded:
		return ErrUnavailable
	case codes.NotFound:
		return ErrNotFound
	case codes.AlreadyExists:
		return ErrAlreadyExists
	case codes.InvalidArgument:
		msg := strings.TrimPrefix(st.Message(), ErrValidation.Error()+": ")
		return fmt.Errorf("%w: %s", ErrValidation, msg)
	default:
		return fmt.Errorf("request failed: %w", err)
	}
}
