// Package schemas хранит JSON-схемы контрактов консоли.
package schemas

import "embed"

//go:embed listings events
var SchemasFS embed.FS
