package server

import (
	"fmt"
	"image"
	"path/filepath"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/intoaec/planfuse/internal/imaging"
)

// allowedExtensions is the upload allow-list. Only raster formats the
// decoder understands; vector plan formats need conversion upstream.
var allowedExtensions = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".gif":  true,
}

const maxFilenameLength = 255

var unsafeFilenameChars = regexp.MustCompile(`[<>:"/\\|?*]`)

// SanitizeFilename strips path components and characters that could be
// abused in a stored filename. Names that sanitize to nothing get a random
// replacement so responses always echo something identifiable.
func SanitizeFilename(name string) string {
	name = filepath.Base(strings.TrimSpace(name))
	name = unsafeFilenameChars.ReplaceAllString(name, "_")

	if len(name) > maxFilenameLength {
		ext := filepath.Ext(name)
		base := strings.TrimSuffix(name, ext)
		keep := maxFilenameLength - len(ext)
		if keep < 0 {
			keep = 0
		}
		if keep > len(base) {
			keep = len(base)
		}
		// Back off to a rune boundary so truncation cannot split a
		// multi-byte character.
		for keep > 0 && keep < len(base) && !utf8.RuneStart(base[keep]) {
			keep--
		}
		name = base[:keep] + ext
	}
	if name == "" || name == "." || name == ".." {
		name = "file_" + uuid.NewString()
	}
	return name
}

// ValidateUpload checks an uploaded file and decodes it.
//
// The checks run cheapest-first: extension allow-list, size cap, then a
// full decode, then the dimension cap on the decoded image. Returns the
// decoded image, its metadata, and the sanitized filename.
func ValidateUpload(filename string, data []byte, maxBytes int, maxDim int) (image.Image, *imaging.Info, string, error) {
	clean := SanitizeFilename(filename)

	ext := strings.ToLower(filepath.Ext(clean))
	if !allowedExtensions[ext] {
		return nil, nil, clean, fmt.Errorf("file type %q is not allowed", ext)
	}
	if len(data) == 0 {
		return nil, nil, clean, fmt.Errorf("uploaded file is empty")
	}
	if len(data) > maxBytes {
		return nil, nil, clean, fmt.Errorf("file exceeds the %d byte limit", maxBytes)
	}

	img, info, err := imaging.DecodeInfo(data)
	if err != nil {
		return nil, nil, clean, fmt.Errorf("file is not a valid image: %w", err)
	}
	if info.Width > maxDim || info.Height > maxDim {
		return nil, nil, clean, fmt.Errorf("image dimensions %dx%d exceed the %d pixel limit",
			info.Width, info.Height, maxDim)
	}

	return img, info, clean, nil
}
