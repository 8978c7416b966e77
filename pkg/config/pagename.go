package config

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// pagePlaceholder matches {page} or a zero-padded form like {page:03d}.
// The syntax mirrors the format strings accepted by earlier releases, so
// existing config files keep producing identical file names.
var pagePlaceholder = regexp.MustCompile(`\{page(?::0?(\d+)d)?\}`)

// FormatPage substitutes the 1-based page number into a basename template.
// A template with no placeholder gets "_<page>" appended so distinct pages
// never collide on disk.
func FormatPage(basename string, page int) string {
	if !pagePlaceholder.MatchString(basename) {
		return fmt.Sprintf("%s_%d", basename, page)
	}
	return pagePlaceholder.ReplaceAllStringFunc(basename, func(m string) string {
		sub := pagePlaceholder.FindStringSubmatch(m)
		if sub[1] == "" {
			return strconv.Itoa(page)
		}
		width, _ := strconv.Atoi(sub[1])
		return fmt.Sprintf("%0*d", width, page)
	})
}

// HasPagePlaceholder reports whether the basename contains a page
// placeholder.
func HasPagePlaceholder(basename string) bool {
	return pagePlaceholder.MatchString(basename)
}

// PageFileName renders the complete output file name for a page.
func PageFileName(basename string, page int, rasterExt string) string {
	return FormatPage(basename, page) + "." + strings.TrimPrefix(rasterExt, ".")
}
