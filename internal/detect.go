package internal

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
)

const appDirName = "gujjar-gpt"

// StoragePaths holds the detected locations for local state
type StoragePaths struct {
	BasePath   string // per-user application directory
	ConfigFile string // config.yaml inside BasePath
	ImagesDir  string // default target for saved images
}

// DetectStoragePaths detects the application data directory based on the operating system
func DetectStoragePaths() (StoragePaths, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return StoragePaths{}, fmt.Errorf("failed to get home directory: %w", err)
	}

	var basePath string
	switch runtime.GOOS {
	case "darwin":
		basePath = filepath.Join(home, "Library/Application Support", appDirName)
	case "linux":
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			basePath = filepath.Join(xdg, appDirName)
		} else {
			basePath = filepath.Join(home, ".config", appDirName)
		}
	case "windows":
		appData := os.Getenv("APPDATA")
		if appData == "" {
			appData = filepath.Join(home, "AppData", "Roaming")
		}
		basePath = filepath.Join(appData, appDirName)
	default:
		return StoragePaths{}, fmt.Errorf("unsupported OS: %s (only macOS, Linux and Windows are supported)", runtime.GOOS)
	}

	return PathsAt(basePath), nil
}

// PathsAt builds StoragePaths rooted at a custom directory
func PathsAt(basePath string) StoragePaths {
	return StoragePaths{
		BasePath:   basePath,
		ConfigFile: filepath.Join(basePath, "config.yaml"),
		ImagesDir:  filepath.Join(basePath, "images"),
	}
}

// GetStoragePaths returns the detected paths, or paths rooted at customPath when set
func GetStoragePaths(customPath string) (StoragePaths, error) {
	if customPath == "" {
		return DetectStoragePaths()
	}
	abs, err := filepath.Abs(customPath)
	if err != nil {
		return StoragePaths{}, fmt.Errorf("invalid storage path %q: %w", customPath, err)
	}
	return PathsAt(abs), nil
}

// Exists reports whether the base directory has been created
func (sp StoragePaths) Exists() bool {
	info, err := os.Stat(sp.BasePath)
	return err == nil && info.IsDir()
}
