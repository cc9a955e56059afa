// Package migrations embeds the SQL migration files for the local cache
// database so they can be applied through the goose programmatic API at
// store open time and in tests.
package migrations

import "embed"

// FS holds all *.sql migration files embedded at compile time.
// Pass this to goose.SetBaseFS so the cache schema ships inside the
// binary instead of relying on a filesystem path at runtime.
//
//go:embed *.sql
var FS embed.FS
