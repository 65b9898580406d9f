package validation

import (
	"net/url"
	"path/filepath"
	"regexp"
	"strings"
)

// UploadExtension is the only accepted upload file type.
const UploadExtension = ".csv"

// maxFilenameLength bounds upload and download names.
const maxFilenameLength = 255

// ExportNamePattern matches the names of exported result files.
var ExportNamePattern = regexp.MustCompile(`^(accepted|rejected)_keywords_\d{8}_\d{6}_[0-9a-f]{8}\.csv$`)

// ValidateUploadName checks an uploaded file name: non-empty and ending in .csv.
func ValidateUploadName(name string) (bool, string) {
	if strings.TrimSpace(name) == "" {
		return false, "No file selected"
	}
	if len(name) > maxFilenameLength {
		return false, "File name too long"
	}
	if !strings.EqualFold(filepath.Ext(name), UploadExtension) {
		return false, "Only CSV files are allowed"
	}
	return true, ""
}

// SanitizeFilename reduces an uploaded name to a safe base name.
func SanitizeFilename(name string) string {
	name = filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	name = strings.Map(func(r rune) rune {
		switch {
		case r < 0x20, r == '/', r == ':':
			return '_'
		}
		return r
	}, name)
	if name == "." || name == ".." {
		return ""
	}
	return name
}

// ValidateDownloadName checks that name is a bare file name with no path
// components, so it can only address files directly inside the output dir.
func ValidateDownloadName(name string) (bool, string) {
	if name == "" {
		return false, "File name is required"
	}
	if len(name) > maxFilenameLength {
		return false, "File name too long"
	}
	if strings.ContainsAny(name, `/\`) || name == "." || name == ".." || filepath.Base(name) != name {
		return false, "Invalid file name"
	}
	return true, ""
}

// IsExportName reports whether name looks like an exported result file.
func IsExportName(name string) bool {
	return ExportNamePattern.MatchString(name)
}

// WithinDir reports whether path resolves to a location inside dir.
func WithinDir(dir, path string) bool {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return false
	}
	absPath, err := filepath.Abs(path)
	if err != nil {
		return false
	}
	rel, err := filepath.Rel(absDir, absPath)
	if err != nil {
		return false
	}
	return rel != "." && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)) && !filepath.IsAbs(rel)
}

// ValidateURL checks if a URL is valid and uses an allowed scheme (http/https only).
func ValidateURL(urlStr string) (bool, string) {
	if urlStr == "" {
		return false, "URL is required"
	}

	u, err := url.Parse(urlStr)
	if err != nil {
		return false, "Invalid URL format"
	}

	scheme := strings.ToLower(u.Scheme)
	if scheme != "http" && scheme != "https" {
		return false, "URL must use http:// or https:// scheme"
	}

	if u.Host == "" {
		return false, "URL must have a valid host"
	}

	return true, ""
}
