package assets

import (
	"embed"
)

//go:embed index.html
var FS embed.FS

// Index returns the browser UI page.
func Index() ([]byte, error) {
	return FS.ReadFile("index.html")
}
