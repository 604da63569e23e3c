// Package grpc exposes the SecurePay services over gRPC.
package grpc

import (
	"context"
	"net"

	"github.com/dmitrijs2005/securepay/internal/api"
	"github.com/dmitrijs2005/securepay/internal/logging"
	"github.com/dmitrijs2005/securepay/internal/server/models"
	"github.com/dmitrijs2005/securepay/internal/server/services"
	"google.golang.org/grpc"
)

type userSvc interface {
	Register(ctx context.Context, email, password, fullName string) (*models.User, error)
	Login(ctx context.Context, email, password string) (*models.User, *services.TokenPair, error)
	RefreshToken(ctx context.Context, refreshToken string) (string, *services.TokenPair, error)
	CurrentUser(ctx context.Context, userID string) (*models.User, error)
}

type rowSvc interface {
	Query(ctx context.Context, table, ownerID string) ([]map[string]any, error)
	Upsert(ctx context.Context, table, ownerID string, row map[string]any) (map[string]any, error)
	Delete(ctx context.Context, table, ownerID, id string) error
}

type profileSvc interface {
	AvatarUploadURL(ctx context.Context, userID string) (string, error)
	AvatarURL(ctx context.Context, userID string) (string, error)
}

type changeFeed interface {
	Subscribe(table, owner string) (<-chan struct{}, func())
}

type GRPCServer struct {
	api.UnimplementedSecurePayServer
	address   string
	users     userSvc
	rows      rowSvc
	profiles  profileSvc
	feed      changeFeed
	logger    logging.Logger
	jwtSecret []byte
}

func NewGRPCServer(a string, l logging.Logger, us userSvc, rs rowSvc, ps profileSvc, feed changeFeed, secretKey string) *GRPCServer {
	return &GRPCServer{
		address:   a,
		logger:    l.With("module", "grpc_server"),
		users:     us,
		rows:      rs,
		profiles:  ps,
		feed:      feed,
		jwtSecret: []byte(secretKey),
	}
}

// NewServer builds a grpc.Server with the auth interceptors and the
// SecurePay service registered.
func (s *GRPCServer) NewServer(opts ...grpc.ServerOption) *grpc.Server {
	opts = append(opts,
		grpc.ChainUnaryInterceptor(s.accessTokenInterceptor),
		grpc.ChainStreamInterceptor(s.streamAccessTokenInterceptor),
	)
	srv := grpc.NewServer(opts...)
	api.RegisterSecurePayServer(srv, s)
	return srv
}

func (s *GRPCServer) Run(ctx context.Context) error {

	// announces address
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}

	srv := s.NewServer()

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping gRPC server...")
		srv.GracefulStop()
	}()

	s.logger.Info(ctx, "Starting gRPC server", "address", s.address)

	// starts accepting incoming connections
	if err := srv.Serve(listen); err != nil {
		return err
	}

	return nil
}
