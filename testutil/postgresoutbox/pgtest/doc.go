// Package pgtest starts a throwaway PostgreSQL container and opens the three kinds of
// database handles the outbox store supports.
//
// It is only compiled with the integration build tag.
package pgtest
