package assets

import (
	"embed"
)

//go:embed salts.yaml
var FS embed.FS

// Catalog returns the raw bytes of the default salt catalog.
func Catalog() ([]byte, error) {
	return FS.ReadFile("salts.yaml")
}
