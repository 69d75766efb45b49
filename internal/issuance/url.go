package issuance

import (
	"net/url"
	"path"
	"regexp"
	"strings"
)

var invalidFilenameChars = regexp.MustCompile(`[^a-zA-Z0-9_.-]`)

// Absolutize rebases an href against the source origin. Hrefs that already
// carry a scheme pass through unchanged.
func Absolutize(origin, href string) string {
	if href == "" {
		return ""
	}
	if strings.HasPrefix(href, "http") {
		return href
	}
	if !strings.HasPrefix(href, "/") {
		href = "/" + href
	}
	return strings.TrimSuffix(origin, "/") + href
}

// AttachmentFilename derives a safe local filename for a downloaded
// attachment. The URL path's basename wins when present; otherwise the name
// falls back to a slug of the title with the reference appended so two
// issuances sharing a title cannot collide. The result always carries the
// expected extension and contains only letters, digits, underscore, hyphen,
// and dot.
func AttachmentFilename(downloadURL, title, reference, ext string) string {
	name := urlBasename(downloadURL)
	if name == "" {
		name = slug(title)
		if reference != "" {
			name += "_" + reference
		}
	}
	if strings.HasSuffix(strings.ToLower(name), ext) {
		name = name[:len(name)-len(ext)] + ext
	} else {
		name += ext
	}
	name = invalidFilenameChars.ReplaceAllString(name, "_")
	if strings.TrimLeft(name, "_.") == strings.TrimPrefix(ext, ".") {
		name = "attachment" + ext
	}
	return name
}

func urlBasename(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	base := path.Base(u.Path)
	if base == "." || base == "/" {
		return ""
	}
	return base
}

var nonAlnum = regexp.MustCompile(`[^a-z0-9]+`)

func slug(s string) string {
	s = nonAlnum.ReplaceAllString(strings.ToLower(s), "-")
	return strings.Trim(s, "-")
}

func containsFold(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}
