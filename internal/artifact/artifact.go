// Package artifact turns base64 server payloads into local files. The
// backend never streams downloads; generated documents and CSV exports
// arrive as encoded blobs in JSON responses.
package artifact

import (
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/sethgreenlaw/plc-autoconfig-sub000/internal/models"
)

// Decode returns the raw bytes of a generated artifact.
func Decode(a *models.Artifact) ([]byte, error) {
	if a.Content == "" {
		return nil, fmt.Errorf("artifact %q has no content", a.Filename)
	}
	data, err := base64.StdEncoding.DecodeString(a.Content)
	if err != nil {
		return nil, fmt.Errorf("failed to decode artifact %q: %w", a.Filename, err)
	}
	return data, nil
}

// Write decodes the artifact and writes it into dir under the
// server-provided filename, sanitized so a hostile name cannot escape
// the target directory. It returns the written path.
func Write(a *models.Artifact, dir string) (string, error) {
	data, err := Decode(a)
	if err != nil {
		return "", err
	}

	name := SanitizeFilename(a.Filename)
	if name == "" {
		name = "artifact.bin"
	}

	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write artifact: %w", err)
	}
	return path, nil
}

// SanitizeFilename strips path components from a server-provided
// filename.
func SanitizeFilename(name string) string {
	name = filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	if name == "." || name == "/" {
		return ""
	}
	return name
}
