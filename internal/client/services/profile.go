package services

import (
	"context"
	"strings"
	"time"

	"github.com/dmitrijs2005/securepay/internal/client/client"
	"github.com/dmitrijs2005/securepay/internal/common"
	"github.com/dmitrijs2005/securepay/internal/filex"
	"github.com/dmitrijs2005/securepay/internal/netx"
	"github.com/dmitrijs2005/securepay/internal/records"
)

// avatarClient is the part of client.GRPCClient that hands out presigned
// avatar URLs.
type avatarClient interface {
	AvatarUploadURL(ctx context.Context) (string, error)
	AvatarURL(ctx context.Context) (string, error)
}

// seams for tests
var (
	uploadObject   = netx.UploadToS3PresignedURL
	downloadObject = netx.DownloadFromS3PresignedURL
)

// Profile is the signed-in user's profile row.
type Profile struct {
	Email       string
	FullName    string
	DisplayName string
	Phone       string
	Address     string
	UpdatedAt   time.Time
}

func normalizeProfile(row records.Row) Profile {
	p := Profile{}
	p.Email, _ = row.String("email")
	p.FullName, _ = row.String("full_name")
	p.DisplayName, _ = row.String("display_name")
	p.Phone, _ = row.String("phone")
	p.Address, _ = row.String("address")
	p.UpdatedAt, _ = row.Time("updated_at")
	return p
}

// ProfileEdit holds the editable fields; nil leaves a field unchanged.
type ProfileEdit struct {
	FullName    *string
	DisplayName *string
	Phone       *string
	Address     *string
}

type ProfileService struct {
	store    client.RemoteStore
	identity client.IdentityProvider
	avatars  avatarClient
}

func NewProfileService(backend client.Backend, avatars avatarClient) *ProfileService {
	return &ProfileService{store: backend.Store, identity: backend.Identity, avatars: avatars}
}

func (s *ProfileService) Get(ctx context.Context) (Profile, error) {
	u := s.identity.CurrentUser()
	if u == nil {
		return Profile{}, ErrSignedOut
	}
	rows, err := s.store.Query(ctx, common.TableProfiles, u.ID)
	if err != nil {
		return Profile{}, err
	}
	if len(rows) == 0 {
		return Profile{Email: u.Email}, nil
	}
	return normalizeProfile(rows[0]), nil
}

func (s *ProfileService) Update(ctx context.Context, edit ProfileEdit) (Profile, error) {
	u := s.identity.CurrentUser()
	if u == nil {
		return Profile{}, ErrSignedOut
	}

	row := records.Row{"id": u.ID}
	set := func(key string, v *string) {
		if v != nil {
			row[key] = strings.TrimSpace(*v)
		}
	}
	set("full_name", edit.FullName)
	set("display_name", edit.DisplayName)
	set("phone", edit.Phone)
	set("address", edit.Address)

	stored, err := s.store.Upsert(ctx, common.TableProfiles, row)
	if err != nil {
		return Profile{}, err
	}
	return normalizeProfile(stored), nil
}

// UploadAvatar sends the image at path to object storage.
func (s *ProfileService) UploadAvatar(ctx context.Context, path string) error {
	if s.identity.CurrentUser() == nil {
		return ErrSignedOut
	}
	data, contentType, err := filex.ReadImage(path)
	if err != nil {
		return err
	}
	url, err := s.avatars.AvatarUploadURL(ctx)
	if err != nil {
		return err
	}
	return uploadObject(ctx, url, data, contentType)
}

// DownloadAvatar saves the current avatar to path.
func (s *ProfileService) DownloadAvatar(ctx context.Context, path string) error {
	if s.identity.CurrentUser() == nil {
		return ErrSignedOut
	}
	url, err := s.avatars.AvatarURL(ctx)
	if err != nil {
		return err
	}
	data, err := downloadObject(ctx, url)
	if err != nil {
		return err
	}
	return filex.WriteFile(path, data)
}
