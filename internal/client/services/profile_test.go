package services

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/dmitrijs2005/securepay/internal/client/client"
	"github.com/dmitrijs2005/securepay/internal/common"
	"github.com/dmitrijs2005/securepay/internal/records"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAvatars struct {
	uploadURL string
	getURL    string
	err       error
}

func (f *fakeAvatars) AvatarUploadURL(context.Context) (string, error) { return f.uploadURL, f.err }
func (f *fakeAvatars) AvatarURL(context.Context) (string, error)       { return f.getURL, f.err }

type objectCall struct {
	url         string
	data        []byte
	contentType string
}

func stubObjects(t *testing.T, stored []byte) *[]objectCall {
	t.Helper()
	origUp, origDown := uploadObject, downloadObject
	t.Cleanup(func() { uploadObject, downloadObject = origUp, origDown })

	calls := &[]objectCall{}
	uploadObject = func(_ context.Context, url string, data []byte, ct string) error {
		*calls = append(*calls, objectCall{url, data, ct})
		return nil
	}
	downloadObject = func(_ context.Context, url string) ([]byte, error) {
		*calls = append(*calls, objectCall{url: url})
		return stored, nil
	}
	return calls
}

var png = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

func TestProfile_GetAndUpdate(t *testing.T) {
	store := newFakeStore()
	backend, _ := newBackend(store, newFakeFeed(), alice)
	svc := NewProfileService(backend, &fakeAvatars{})
	ctx := context.Background()

	p, err := svc.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, Profile{Email: "alice@example.com"}, p)

	name, phone := " Alice A. ", "+1 555"
	p, err = svc.Update(ctx, ProfileEdit{FullName: &name, Phone: &phone})
	require.NoError(t, err)
	assert.Equal(t, "Alice A.", p.FullName)
	assert.Equal(t, "+1 555", p.Phone)

	require.Len(t, store.upserts, 1)
	assert.Equal(t, records.Row{"id": "u1", "full_name": "Alice A.", "phone": "+1 555"}, store.upserts[0])

	store.put(common.TableProfiles, records.Row{"id": "u1", "user_id": "u1", "display_name": "ali"})
	p, err = svc.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, "ali", p.DisplayName)
}

func TestProfile_SignedOut(t *testing.T) {
	backend, _ := newBackend(newFakeStore(), newFakeFeed(), nil)
	svc := NewProfileService(backend, &fakeAvatars{})
	ctx := context.Background()

	_, err := svc.Get(ctx)
	assert.ErrorIs(t, err, client.ErrUnauthorized)
	_, err = svc.Update(ctx, ProfileEdit{})
	assert.ErrorIs(t, err, ErrSignedOut)
	assert.ErrorIs(t, svc.UploadAvatar(ctx, "x.png"), ErrSignedOut)
	assert.ErrorIs(t, svc.DownloadAvatar(ctx, "x.png"), ErrSignedOut)
}

func TestProfile_Avatar(t *testing.T) {
	calls := stubObjects(t, png)
	backend, _ := newBackend(newFakeStore(), newFakeFeed(), alice)
	svc := NewProfileService(backend, &fakeAvatars{uploadURL: "http://s3/put", getURL: "http://s3/get"})
	ctx := context.Background()
	dir := t.TempDir()

	src := filepath.Join(dir, "me.png")
	require.NoError(t, os.WriteFile(src, png, 0o600))
	require.NoError(t, svc.UploadAvatar(ctx, src))

	dst := filepath.Join(dir, "out", "avatar.png")
	require.NoError(t, svc.DownloadAvatar(ctx, dst))
	got, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, png, got)

	require.Len(t, *calls, 2)
	assert.Equal(t, objectCall{"http://s3/put", png, "image/png"}, (*calls)[0])
	assert.Equal(t, "http://s3/get", (*calls)[1].url)

	txt := filepath.Join(dir, "notes.txt")
	require.NoError(t, os.WriteFile(txt, []byte("hello"), 0o600))
	assert.ErrorIs(t, svc.UploadAvatar(ctx, txt), common.ErrValidation)
}

func TestProfile_AvatarMissing(t *testing.T) {
	stubObjects(t, nil)
	backend, _ := newBackend(newFakeStore(), newFakeFeed(), alice)
	svc := NewProfileService(backend, &fakeAvatars{err: client.ErrNotFound})

	assert.ErrorIs(t, svc.DownloadAvatar(context.Background(), filepath.Join(t.TempDir(), "a.png")), client.ErrNotFound)
}
