package restserver

import (
	"embed"
	"io/fs"
	"os"
)

// Embed the rendering adapter assets
//
//go:embed all:assets
var assetsFS embed.FS

// GetAssets returns the assets filesystem, either from disk or embedded
func GetAssets() fs.FS {
	// GREENHOUSE_ASSETS_DIR serves the page straight from disk so it can be
	// edited without rebuilding.
	if dir := os.Getenv("GREENHOUSE_ASSETS_DIR"); dir != "" {
		if info, err := os.Stat(dir); err == nil && info.IsDir() {
			return os.DirFS(dir)
		}
	}

	// Return a sub-filesystem starting from the "assets" directory
	assets, err := fs.Sub(assetsFS, "assets")
	if err != nil {
		panic("failed to create assets sub-filesystem: " + err.Error())
	}
	return assets
}
