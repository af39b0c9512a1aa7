// Package web provides the embedded browser client for replaying runs.
//
// The dist/ directory is embedded at build time. During development,
// if dist/ exists on the filesystem, it is served instead so edits show
// up without a rebuild.
package web

import (
	"embed"
	"io/fs"
	"os"
	"path/filepath"
)

//go:embed dist/*
var assets embed.FS

// GetAssets returns a filesystem containing the web client assets.
// When devPath names an existing directory it is served from disk;
// otherwise the embedded copy is used.
//
// If devPath is empty, it defaults to "./web/dist" (relative to the working directory).
func GetAssets(devPath string) fs.FS {
	if devPath == "" {
		devPath = "./web/dist"
	}

	if stat, err := os.Stat(devPath); err == nil && stat.IsDir() {
		return os.DirFS(devPath)
	}

	subFS, err := fs.Sub(assets, "dist")
	if err != nil {
		panic("failed to access embedded web assets: " + err.Error())
	}
	return subFS
}

// GetAssetsWithBase returns a filesystem for assets, checking for development
// mode at a path relative to the given base directory.
func GetAssetsWithBase(baseDir string) fs.FS {
	return GetAssets(filepath.Join(baseDir, "web", "dist"))
}

// Embedded returns the assets compiled into the binary, ignoring the disk.
func Embedded() fs.FS {
	subFS, err := fs.Sub(assets, "dist")
	if err != nil {
		panic("failed to access embedded web assets: " + err.Error())
	}
	return subFS
}
