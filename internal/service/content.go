package service

import (
	"path"
	"regexp"
	"strings"
)

var contentTypes = map[string]string{
	"pdf":  "application/pdf",
	"doc":  "application/msword",
	"docx": "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	"xls":  "application/vnd.ms-excel",
	"xlsx": "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
}

// storagePathPattern is the shape of keys written by Upload: {year}/{year}_{id}.{ext}.
var storagePathPattern = regexp.MustCompile(`^\d{4}/\d{4}_[A-Za-z0-9]+\.[A-Za-z0-9]+$`)

// ValidStoragePath reports whether p has the {year}/{year}_{id}.{ext} shape.
func ValidStoragePath(p string) bool {
	return storagePathPattern.MatchString(p)
}

// Extension returns the lowercase extension of p without the dot.
func Extension(p string) string {
	return strings.ToLower(strings.TrimPrefix(path.Ext(p), "."))
}

// ContentTypeFor maps a file extension to its MIME type.
func ContentTypeFor(p string) string {
	if ct, ok := contentTypes[Extension(p)]; ok {
		return ct
	}
	return "application/octet-stream"
}

// DownloadFilename hides the storage key behind the document ID when one is known.
func DownloadFilename(documentID, storagePath string) string {
	if documentID == "" {
		return path.Base(storagePath)
	}
	if ext := Extension(storagePath); ext != "" {
		return "financial-statement-" + documentID + "." + ext
	}
	return "financial-statement-" + documentID
}
