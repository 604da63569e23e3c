// Package reconcile keeps a locally visible, ordered collection of records
// consistent with an eventually confirmed remote store.
//
// Writes are shown immediately as optimistic entries carrying a temporary id,
// then either confirmed (swapped for the canonical record) or reverted.
// Change-feed notifications are applied as full refreshes of the confirmed
// subset; pending optimistic entries survive them.
//
// A Reconciler is safe for concurrent use. Every operation is applied
// atomically with respect to the others, and the optional change callback is
// invoked after the internal lock is released with a fresh snapshot.
package reconcile
