package fileio

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/penwyp/rewindcat/models"
)

// maxLineSize bounds a single JSONL record. Claude Code transcripts can
// carry large embedded tool output.
const maxLineSize = 1024 * 1024

// scanJSONL opens path and invokes fn for every non-empty line. A line fn
// cannot handle is the line's problem, not the file's: fn skips it and
// scanning continues. Only I/O failures surface as a ParseError for the
// whole file.
func scanJSONL(path string, fn func(line []byte, lineNum int)) error {
	file, err := os.Open(path)
	if err != nil {
		return &models.ParseError{Path: path, Err: err}
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		fn(line, lineNum)
	}

	if err := scanner.Err(); err != nil {
		return &models.ParseError{Path: path, Line: lineNum, Err: err}
	}
	return nil
}

// findFilesByExt walks root and collects files whose extension is in exts,
// sorted for deterministic parse order.
func findFilesByExt(root string, exts ...string) []string {
	extSet := make(map[string]bool, len(exts))
	for _, e := range exts {
		extSet[e] = true
	}

	var files []string
	_ = filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil // Skip unreadable entries
		}
		if !info.IsDir() && extSet[filepath.Ext(path)] {
			files = append(files, path)
		}
		return nil
	})
	sort.Strings(files)
	return files
}

// timestampFormats lists the naive layouts seen in the wild beyond RFC3339.
var timestampFormats = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
}

// ParseTimestamp parses the timestamp shapes the supported tools emit:
// RFC3339 with or without fractional seconds, naive ISO-8601 (treated as
// UTC), and unix seconds or milliseconds.
func ParseTimestamp(v interface{}) (time.Time, error) {
	switch ts := v.(type) {
	case string:
		s := strings.TrimSpace(ts)
		if s == "" {
			return time.Time{}, fmt.Errorf("empty timestamp")
		}
		for _, layout := range timestampFormats {
			if t, err := time.Parse(layout, s); err == nil {
				return t, nil
			}
		}
		return time.Time{}, fmt.Errorf("unrecognized timestamp %q", s)
	case float64:
		return unixAuto(int64(ts)), nil
	case int64:
		return unixAuto(ts), nil
	case int:
		return unixAuto(int64(ts)), nil
	}
	return time.Time{}, fmt.Errorf("unsupported timestamp type %T", v)
}

// unixAuto interprets n as milliseconds when it is too large to be a
// plausible seconds value.
func unixAuto(n int64) time.Time {
	if n > 1e12 {
		return time.UnixMilli(n).UTC()
	}
	return time.Unix(n, 0).UTC()
}
