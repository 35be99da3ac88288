package templates

import "embed"

// EmailFS contains the HTML email layouts. base.html wraps every message;
// each other file defines its "content" block.
//
//go:embed email/*.html
var EmailFS embed.FS
