package client

import (
	"errors"

	"github.com/dmitrijs2005/securepay/internal/common"
)

var (
	ErrUnavailable  = errors.New("server unavailable")
	ErrUnauthorized = errors.New("unauthorized")
	ErrNotFound     = errors.New("not found")

	// ErrValidation and ErrAlreadyExists share identity with the common
	// sentinels so local and remote rejections match the same errors.Is.
	ErrValidation    = common.ErrValidation
	ErrAlreadyExists = common.ErrAlreadyExists
)
