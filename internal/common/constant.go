// Package common contains shared constants and sentinel errors used across
// SecurePay components.
package common

// AccessTokenHeaderName is the gRPC metadata key used to carry the
// access token on outbound requests.
const AccessTokenHeaderName = "access_token"

// TempIDPrefix marks identifiers minted locally for records that the
// remote store has not confirmed yet. Canonical ids never carry it.
const TempIDPrefix = "temp-"

// Table names exposed by the remote store.
const (
	TableTransactions      = "securepay_transactions"
	TableScheduledPayments = "scheduled_payments"
	TableProfiles          = "profiles"
)
