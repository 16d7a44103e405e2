package utils

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strconv"
	"strings"
)

func ParseHeaderArgs(headers []string) map[string]string {
	result := make(map[string]string)
	for _, header := range headers {
		parts := strings.SplitN(header, ":", 2)
		if len(parts) == 2 {
			key := strings.TrimSpace(parts[0])
			value := strings.TrimSpace(parts[1])
			if key != "" {
				result[key] = value
			}
		}
	}
	return result
}

func FormatBytes(bytes uint64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := uint64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.2f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}

// OutputFromURL returns the last path segment of rawURL, or DefaultOutputName
// when the URL has no usable segment.
func OutputFromURL(rawURL string) (string, error) {
	parsedURL, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("invalid URL: %w", err)
	}
	p := parsedURL.Path
	if p == "" || strings.HasSuffix(p, "/") {
		return DefaultOutputName, nil
	}
	name := path.Base(p)
	if name == "." || name == "/" || name == ".." || name == "" {
		return DefaultOutputName, nil
	}
	return name, nil
}

// PartPath is the temporary file for part index of dest: a hidden sibling
// named ".<base>.part-<index>".
func PartPath(dest string, index int) string {
	return filepath.Join(filepath.Dir(dest), fmt.Sprintf(".%s.part-%d", filepath.Base(dest), index))
}

// ParsePartName splits a part file name into the destination base name and
// the part index.
func ParsePartName(name string) (string, int, bool) {
	matches := partFileRegex.FindStringSubmatch(name)
	if len(matches) < 3 {
		return "", 0, false
	}
	index, err := strconv.Atoi(matches[2])
	if err != nil {
		return "", 0, false
	}
	return matches[1], index, true
}

// Clean removes leftover part files. With an output path only that file's
// parts are removed; with a directory every part file in it is removed.
func Clean(target string) ([]string, error) {
	dir, base := target, ""
	if info, err := os.Stat(target); err != nil || !info.IsDir() {
		dir, base = filepath.Dir(target), filepath.Base(target)
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("error reading %s: %w", dir, err)
	}
	var removed []string
	var errs []error
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		owner, _, ok := ParsePartName(entry.Name())
		if !ok || (base != "" && owner != base) {
			continue
		}
		filePath := filepath.Join(dir, entry.Name())
		if err := os.Remove(filePath); err != nil {
			errs = append(errs, err)
			continue
		}
		removed = append(removed, filePath)
	}
	return removed, errors.Join(errs...)
}
