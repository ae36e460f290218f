// Package migrations - схема базы, накатывается при старте postgres-модуля.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
