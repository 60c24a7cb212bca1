package fileio

import (
	"os"
	"path/filepath"

	"github.com/penwyp/rewindcat/models"
)

// Parser converts one tool's on-disk log files into normalized usage
// events. The tool set is closed, so parsers form a fixed strategy table
// rather than an open registry.
type Parser interface {
	// Tool identifies the format this parser understands.
	Tool() models.Tool

	// DetectRoot locates the tool's data directory under a source root.
	// Absent tools return ok=false and are silently skipped: a machine
	// need not have every tool installed.
	DetectRoot(sourceRoot string) (toolRoot string, ok bool)

	// Files enumerates every log file under the detected tool root.
	Files(toolRoot string) []string

	// ParseFile parses a single log file. A malformed record inside an
	// otherwise-valid file is skipped; only whole-file failures return a
	// ParseError.
	ParseFile(path string) ([]models.UsageEvent, error)
}

// Parsers returns the parser strategy table in stable tool order.
func Parsers() []Parser {
	return []Parser{
		&ClaudeCodeParser{},
		&CodexParser{},
		&GeminiParser{},
		&OpenCodeParser{},
	}
}

// ParserFor returns the parser for the given tool, or nil for an unknown
// tool identifier.
func ParserFor(tool models.Tool) Parser {
	for _, p := range Parsers() {
		if p.Tool() == tool {
			return p
		}
	}
	return nil
}

// dirExists reports whether path exists and is a directory.
func dirExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

// fileExists reports whether path exists and is a regular file.
func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// detectDotDir resolves the conventional layout shared by most tools: the
// source root either is the tool directory already (pre-fetched data) or
// contains the tool's dot-directory.
func detectDotDir(sourceRoot, dotDir string, markers ...string) (string, bool) {
	for _, marker := range markers {
		if dirExists(filepath.Join(sourceRoot, marker)) || fileExists(filepath.Join(sourceRoot, marker)) {
			return sourceRoot, true
		}
	}
	nested := filepath.Join(sourceRoot, dotDir)
	if !dirExists(nested) {
		return "", false
	}
	for _, marker := range markers {
		if dirExists(filepath.Join(nested, marker)) || fileExists(filepath.Join(nested, marker)) {
			return nested, true
		}
	}
	return "", false
}
