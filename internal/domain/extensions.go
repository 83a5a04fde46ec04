package domain

import (
	"path/filepath"
	"strings"
)

var supportedExtensions = []string{
	".jpg",
	".jpeg",
	".png",
	".gif",
	".bmp",
	".tiff",
	".tif",
	".webp",
	".svg",
	".ico",
	".heic",
	".heif",
	".raw",
	".cr2",
	".nef",
	".arw",
	".dng",
	".orf",
	".rw2",
}

// SupportedExtensions returns the static, ordered allow-list offered to users.
func SupportedExtensions() []string {
	out := make([]string, len(supportedExtensions))
	copy(out, supportedExtensions)
	return out
}

// NormalizeExtension lower-cases ext and ensures a leading dot. Blank input yields "".
func NormalizeExtension(ext string) string {
	ext = strings.ToLower(strings.TrimSpace(ext))
	if ext == "" || ext == "." {
		return ""
	}
	if !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return ext
}

// ExtensionSet is a case-insensitive set of allowed extensions.
type ExtensionSet map[string]struct{}

func NewExtensionSet(exts []string) ExtensionSet {
	set := make(ExtensionSet, len(exts))
	for _, ext := range exts {
		if norm := NormalizeExtension(ext); norm != "" {
			set[norm] = struct{}{}
		}
	}
	return set
}

// Allows reports whether name's extension is in the set.
func (s ExtensionSet) Allows(name string) bool {
	_, ok := s[strings.ToLower(filepath.Ext(name))]
	return ok
}

// FormatLabel is the group-by-format directory name: the upper-cased extension without the dot.
func FormatLabel(ext string) string {
	return strings.ToUpper(strings.TrimPrefix(ext, "."))
}

// IsHiddenName reports whether a base name is a dot-file.
func IsHiddenName(name string) bool {
	return strings.HasPrefix(name, ".") && name != "." && name != ".."
}

// Family groups extensions by how cameras produce them.
type Family string

const (
	FamilyRaw   Family = "raw"
	FamilyJPEG  Family = "jpeg"
	FamilyOther Family = "other"
)

var rawExtensions = map[string]struct{}{
	".arw": {}, ".cr2": {}, ".cr3": {}, ".dng": {}, ".nef": {},
	".orf": {}, ".raf": {}, ".raw": {}, ".rw2": {},
}

func FamilyOf(ext string) Family {
	ext = NormalizeExtension(ext)
	if _, ok := rawExtensions[ext]; ok {
		return FamilyRaw
	}
	if ext == ".jpg" || ext == ".jpeg" {
		return FamilyJPEG
	}
	return FamilyOther
}

// HasEXIF reports whether files with ext commonly carry an EXIF block goexif can decode.
func HasEXIF(ext string) bool {
	switch strings.ToLower(ext) {
	case ".jpg", ".jpeg", ".tif", ".tiff", ".dng", ".nef", ".arw", ".cr2", ".orf", ".rw2":
		return true
	default:
		return false
	}
}
