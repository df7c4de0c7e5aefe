// Package scripts embeds the per-language span classification scripts
// executed by internal/syntax.
package scripts

import "embed"

//go:embed spans
var FS embed.FS
