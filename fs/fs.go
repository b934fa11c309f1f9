// Package appfs embeds the SQL migrations and the notification templates into the binaries.
package appfs

import "embed"

//go:embed migrations/*.sql all:templates
var FS embed.FS
