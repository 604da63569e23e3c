package records

import (
	"strconv"
	"strings"
	"time"

	"github.com/dmitrijs2005/securepay/internal/common"
	"github.com/google/uuid"
)

// NewTempID returns a temporary id for an optimistic record. Canonical ids
// are UUIDs assigned by the store and never carry the prefix.
func NewTempID() string {
	return common.TempIDPrefix + strconv.FormatInt(time.Now().UnixNano(), 10) + "-" + uuid.NewString()
}

// IsTempID reports whether id was produced by NewTempID.
func IsTempID(id string) bool {
	return strings.HasPrefix(id, common.TempIDPrefix)
}
