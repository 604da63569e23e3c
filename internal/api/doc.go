// Package api declares the securepay.v1.SecurePay gRPC service.
//
// Rows travel as google.protobuf.Struct so the store stays schemaless on
// the wire: a table row is a JSON object and a query result is a
// ListValue of such objects. The service descriptor, server registration
// and client stub are written by hand against the well-known types.
package api
