// Package errors renders failures as RFC 7807 problem documents.
//
// Inventory load failures map to 503, schema mismatches to 422 with the
// missing column names, and query validation failures to 400. Anything
// unrecognised becomes a 500 without leaking the underlying message.
package errors
