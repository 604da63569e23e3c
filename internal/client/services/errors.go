package services

import (
	"fmt"

	"github.com/dmitrijs2005/securepay/internal/client/client"
	"github.com/dmitrijs2005/securepay/internal/common"
)

var (
	// ErrPending is returned for edits of a record that is still being saved.
	ErrPending   = fmt.Errorf("%w: record is still being saved", common.ErrValidation)
	ErrSignedOut = fmt.Errorf("%w: please sign in first", client.ErrUnauthorized)
)
