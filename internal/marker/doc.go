// Package marker stores the daily "do not interrupt" flag.
//
// A marker is a single boolean with an absolute expiry fixed at the moment it
// is written: now plus TTL on the store's clock. Expiry is computed and
// persisted explicitly so it never depends on browser or process session
// lifetime. Every implementation fails open: a read error reports "not
// suppressed" and a write error is logged and dropped, so the pipeline can
// still run and the failure policy stays the single place errors surface.
package marker
