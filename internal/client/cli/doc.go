// Package cli implements the interactive SecurePay+ dashboard: a small REPL
// over the live transactions and scheduled payments lists, the local goal
// calculator and the profile.
//
// Both lists are kept in sync in the background while the REPL runs; the
// prompt shows the signed-in user and whether the server is reachable.
package cli
