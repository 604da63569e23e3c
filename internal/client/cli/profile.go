package cli

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/securepay/internal/client/services"
)

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func (a *App) ShowProfile(ctx context.Context) error {
	ctx, cancel := a.requestContext(ctx)
	defer cancel()

	p, err := a.profile.Get(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Email:        %s\n", orDash(p.Email))
	fmt.Fprintf(a.out, "Full name:    %s\n", orDash(p.FullName))
	fmt.Fprintf(a.out, "Display name: %s\n", orDash(p.DisplayName))
	fmt.Fprintf(a.out, "Phone:        %s\n", orDash(p.Phone))
	fmt.Fprintf(a.out, "Address:      %s\n", orDash(p.Address))
	return nil
}

// EditProfile asks for each field; an empty answer keeps the current value.
func (a *App) EditProfile(ctx context.Context) error {
	var edit services.ProfileEdit
	fields := []struct {
		prompt string
		dst    **string
	}{
		{"Full name", &edit.FullName},
		{"Display name", &edit.DisplayName},
		{"Phone", &edit.Phone},
		{"Address", &edit.Address},
	}
	for _, f := range fields {
		v, err := getSimpleText(a.reader, f.prompt+" (empty keeps current)", a.out)
		if err != nil {
			return err
		}
		if v != "" {
			*f.dst = &v
		}
	}

	ctx, cancel := a.requestContext(ctx)
	defer cancel()

	if _, err := a.profile.Update(ctx, edit); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Profile saved")
	return nil
}

func (a *App) UploadAvatar(ctx context.Context, path string) error {
	ctx, cancel := a.requestContext(ctx)
	defer cancel()

	if err := a.profile.UploadAvatar(ctx, path); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Avatar uploaded")
	return nil
}

func (a *App) DownloadAvatar(ctx context.Context, path string) error {
	ctx, cancel := a.requestContext(ctx)
	defer cancel()

	if err := a.profile.DownloadAvatar(ctx, path); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Avatar saved to %s\n", path)
	return nil
}
