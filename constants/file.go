package constants

import "strings"

// Source formats understood by the acquisition layer.
const (
	PDF      = "PDF"
	IMAGE    = "IMAGE"
	TXT      = "TXT"
	WORDJSON = "WORDJSON"
)

// AllowedExtensions holds the default allowed file extensions for batch ingestion.
var AllowedExtensions = map[string]struct{}{
	"pdf":  {},
	"jpg":  {},
	"jpeg": {},
	"png":  {},
	"tif":  {},
	"tiff": {},
	"txt":  {},
	"json": {},
}

// NormalizeExt lowercases and trims the dot from a file extension.
func NormalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

// MapExtToFormat returns the source format for a normalized extension, "" if unsupported.
func MapExtToFormat(ext string) string {
	switch NormalizeExt(ext) {
	case "pdf":
		return PDF
	case "jpg", "jpeg", "png", "tif", "tiff":
		return IMAGE
	case "txt":
		return TXT
	case "json":
		return WORDJSON
	default:
		return ""
	}
}
