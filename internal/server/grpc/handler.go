package grpc

import (
	"context"

	"github.com/dmitrijs2005/securepay/internal/api"
	"github.com/dmitrijs2005/securepay/internal/server/models"
	"github.com/dmitrijs2005/securepay/internal/server/repositories/rows"
	"github.com/dmitrijs2005/securepay/internal/server/services"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
)

func (s *GRPCServer) Ping(ctx context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	return api.NewMessage(map[string]any{api.FieldStatus: "OK"})
}

func (s *GRPCServer) Register(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	s.logger.Info(ctx, "Registration request")

	u, err := s.users.Register(ctx, api.String(req, api.FieldEmail), api.String(req, api.FieldPassword),
		api.String(req, api.FieldFullName))
	if err != nil {
		return nil, s.toStatus(ctx, "register", err)
	}

	s.logger.Info(ctx, "Registered", "user_id", u.ID)
	return userMessage(u, nil)
}

func (s *GRPCServer) Login(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	u, tokens, err := s.users.Login(ctx, api.String(req, api.FieldEmail), api.String(req, api.FieldPassword))
	if err != nil {
		return nil, s.toStatus(ctx, "login", err)
	}
	return userMessage(u, tokens)
}

func (s *GRPCServer) RefreshToken(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	userID, tokens, err := s.users.RefreshToken(ctx, api.String(req, api.FieldRefreshToken))
	if err != nil {
		return nil, s.toStatus(ctx, "refresh token", err)
	}
	return api.NewMessage(map[string]any{
		api.FieldUserID:       userID,
		api.FieldAccessToken:  tokens.AccessToken,
		api.FieldRefreshToken: tokens.RefreshToken,
	})
}

func (s *GRPCServer) CurrentUser(ctx context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	userID, err := userIDFromContext(ctx)
	if err != nil {
		return nil, err
	}
	u, err := s.users.CurrentUser(ctx, userID)
	if err != nil {
		return nil, s.toStatus(ctx, "current user", err)
	}
	return userMessage(u, nil)
}

func (s *GRPCServer) Query(ctx context.Context, req *structpb.Struct) (*structpb.ListValue, error) {
	userID, err := userIDFromContext(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := s.rows.Query(ctx, api.String(req, api.FieldTable), userID)
	if err != nil {
		return nil, s.toStatus(ctx, "query", err)
	}
	return api.NewList(rows)
}

func (s *GRPCServer) Upsert(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	userID, err := userIDFromContext(ctx)
	if err != nil {
		return nil, err
	}
	row, err := s.rows.Upsert(ctx, api.String(req, api.FieldTable), userID, api.Object(req, api.FieldRow))
	if err != nil {
		return nil, s.toStatus(ctx, "upsert", err)
	}
	return api.NewMessage(row)
}

func (s *GRPCServer) Delete(ctx context.Context, req *structpb.Struct) (*emptypb.Empty, error) {
	userID, err := userIDFromContext(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.rows.Delete(ctx, api.String(req, api.FieldTable), userID, api.String(req, api.FieldID)); err != nil {
		return nil, s.toStatus(ctx, "delete", err)
	}
	return &emptypb.Empty{}, nil
}

// Subscribe streams one message per (coalesced) change of the caller's rows
// in the requested table until the client goes away. Headers go out once
// the subscriber is attached; changes after that point are not missed.
func (s *GRPCServer) Subscribe(req *structpb.Struct, stream grpc.ServerStreamingServer[structpb.Struct]) error {
	ctx := stream.Context()
	userID, err := userIDFromContext(ctx)
	if err != nil {
		return err
	}
	name := api.String(req, api.FieldTable)
	if name == "" {
		return status.Error(codes.InvalidArgument, "missing table")
	}
	t, err := rows.Lookup(name)
	if err != nil {
		return s.toStatus(ctx, "subscribe", err)
	}
	table := t.Name

	events, cancel := s.feed.Subscribe(table, userID)
	defer cancel()
	if err := stream.SendHeader(metadata.MD{}); err != nil {
		return err
	}
	s.logger.Debug(ctx, "subscriber attached", "table", table)

	for {
		select {
		case <-ctx.Done():
			return nil
		case _, ok := <-events:
			if !ok {
				return nil
			}
			msg, err := api.NewMessage(map[string]any{api.FieldTable: table, api.FieldOp: "change"})
			if err != nil {
				return status.Error(codes.Internal, err.Error())
			}
			if err := stream.Send(msg); err != nil {
				return err
			}
		}
	}
}

func (s *GRPCServer) AvatarUploadURL(ctx context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	userID, err := userIDFromContext(ctx)
	if err != nil {
		return nil, err
	}
	url, err := s.profiles.AvatarUploadURL(ctx, userID)
	if err != nil {
		return nil, s.toStatus(ctx, "avatar upload url", err)
	}
	return api.NewMessage(map[string]any{api.FieldURL: url})
}

func (s *GRPCServer) AvatarURL(ctx context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	userID, err := userIDFromContext(ctx)
	if err != nil {
		return nil, err
	}
	url, err := s.profiles.AvatarURL(ctx, userID)
	if err != nil {
		return nil, s.toStatus(ctx, "avatar url", err)
	}
	return api.NewMessage(map[string]any{api.FieldURL: url})
}

func userMessage(u *models.User, tokens *services.TokenPair) (*structpb.Struct, error) {
	fields := map[string]any{
		api.FieldUserID: u.ID,
		api.FieldEmail:  u.Email,
	}
	if tokens != nil {
		fields[api.FieldAccessToken] = tokens.AccessToken
		fields[api.FieldRefreshToken] = tokens.RefreshToken
	}
	return api.NewMessage(fields)
}
