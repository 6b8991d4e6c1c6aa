package model

import (
	"encoding/json"
	"path"
	"strings"
)

// DefaultFileContentType is used for package content entries that do not declare one.
const DefaultFileContentType = "application/octet-stream"

// PackageFileContentType is the media type of a package archive.
const PackageFileContentType = "application/zip"

// PackageMetadata is the part of a catalogue package document the gateway understands.
// The full document is kept in Raw and forwarded to clients unchanged.
type PackageMetadata struct {
	UUID string             `json:"uuid,omitempty"`
	PD   *PackageDescriptor `json:"pd,omitempty"`

	Raw json.RawMessage `json:"-"`
}

// PackageDescriptor references the archive the package was built from and its content.
type PackageDescriptor struct {
	PackageFileUUID string                `json:"package_file_uuid,omitempty"`
	PackageFileName string                `json:"package_file_name,omitempty"`
	PackageContent  []PackageContentEntry `json:"package_content,omitempty"`
}

// PackageContentEntry is one sub-file embedded in a package.
type PackageContentEntry struct {
	UUID        string `json:"uuid"`
	Source      string `json:"source"`
	ContentType string `json:"content-type"`
}

// FileName is the last path segment of Source.
func (e PackageContentEntry) FileName() string {
	src := strings.TrimRight(strings.TrimSpace(e.Source), "/")
	if src == "" {
		return ""
	}
	return path.Base(src)
}

// MediaType returns the declared content type or DefaultFileContentType.
func (e PackageContentEntry) MediaType() string {
	if ct := strings.TrimSpace(e.ContentType); ct != "" {
		return ct
	}
	return DefaultFileContentType
}

// FindContent returns the first content entry with the given uuid.
func (d *PackageDescriptor) FindContent(fileUUID string) (PackageContentEntry, bool) {
	if d == nil {
		return PackageContentEntry{}, false
	}
	for _, entry := range d.PackageContent {
		if entry.UUID == fileUUID {
			return entry, true
		}
	}
	return PackageContentEntry{}, false
}

// MaterializedFile is a remote resource copied into scratch storage.
type MaterializedFile struct {
	FileName    string `json:"file_name"`
	ContentType string `json:"content_type"`
	Key         string `json:"key"`
	Size        int64  `json:"size"`
}
