// Package records defines the closed record types shown by the dashboard
// (transactions and scheduled payments) and the normalization from loosely
// typed remote rows into them.
//
// Normalization is pure and total: any JSON-like row yields a record, with
// deterministic defaults for missing or malformed fields.
package records
