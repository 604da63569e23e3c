// Package filex holds the small file helpers of the CLI client.
package filex

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/dmitrijs2005/securepay/internal/common"
)

// MaxAvatarSize is the largest avatar ReadImage accepts.
const MaxAvatarSize = 5 << 20

// EnsureParentDir creates the directory that will hold path.
func EnsureParentDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}
	if err := os.MkdirAll(dir, 0o770); err != nil {
		return fmt.Errorf("mkdir %s: %w", dir, err)
	}
	return nil
}

// ReadImage reads an image file and sniffs its content type.
func ReadImage(path string) ([]byte, string, error) {
	fi, err := os.Stat(path)
	if err != nil {
		return nil, "", err
	}
	if fi.IsDir() {
		return nil, "", fmt.Errorf("%w: %s is a directory", common.ErrValidation, path)
	}
	if fi.Size() > MaxAvatarSize {
		return nil, "", fmt.Errorf("%w: image is larger than %d bytes", common.ErrValidation, MaxAvatarSize)
	}

	b, err := os.ReadFile(path)
	if err != nil {
		return nil, "", err
	}
	ct := http.DetectContentType(b)
	if !strings.HasPrefix(ct, "image/") {
		return nil, "", fmt.Errorf("%w: %s is not an image", common.ErrValidation, path)
	}
	return b, ct, nil
}

// WriteFile writes data to path, creating its directory.
func WriteFile(path string, data []byte) error {
	if err := EnsureParentDir(path); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o660)
}
