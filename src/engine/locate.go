package engine

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
)

// EnvEnginePath overrides the configured engine path when set.
const EnvEnginePath = "STOCKFISH_PATH"

// knownPaths lists well-known install locations per platform.
var knownPaths = map[string][]string{
	"linux": {
		"/usr/games/stockfish",
		"/usr/bin/stockfish",
		"/usr/local/bin/stockfish",
		"/snap/bin/stockfish",
	},
	"darwin": {
		"/opt/homebrew/bin/stockfish",
		"/usr/local/bin/stockfish",
	},
	"windows": {
		`C:\Program Files\Stockfish\stockfish.exe`,
		`C:\stockfish\stockfish.exe`,
	},
}

// bundledPaths is the fallback shipped next to the server.
var bundledPaths = map[string]string{
	"linux":   "../stockfish/stockfish-ubuntu-x86-64-avx512",
	"windows": "../stockfish/stockfish-windows-x86-64-avx2.exe",
	"darwin":  "../stockfish/stockfish-macos-m1-apple-silicon",
}

// Locate resolves the engine executable. The configured path wins, then
// $STOCKFISH_PATH, then "stockfish" on $PATH, then known install paths and
// finally the bundled binary.
func Locate(configured string) (string, error) {
	return locate(configured, runtime.GOOS)
}

func locate(configured, goos string) (string, error) {
	if configured != "" {
		if isExecutable(configured) {
			return configured, nil
		}
		return "", fmt.Errorf("%w: %s", ErrExecutableNotFound, configured)
	}

	if env := os.Getenv(EnvEnginePath); env != "" && isExecutable(env) {
		return env, nil
	}
	if path, err := exec.LookPath("stockfish"); err == nil {
		return path, nil
	}

	candidates := append([]string(nil), knownPaths[goos]...)
	if bundled, ok := bundledPaths[goos]; ok {
		candidates = append(candidates, filepath.FromSlash(bundled))
	}
	for _, path := range candidates {
		if isExecutable(path) {
			return path, nil
		}
	}

	return "", ErrExecutableNotFound
}

func isExecutable(path string) bool {
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return false
	}
	if runtime.GOOS == "windows" {
		return true
	}
	return info.Mode().Perm()&0111 != 0
}
