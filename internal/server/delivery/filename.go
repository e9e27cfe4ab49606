package delivery

import (
	"fmt"
	"path"
	"strings"
	"unicode"
	"unicode/utf8"
)

const maxFilenameBytes = 200

// sanitizeFilename reduces an uploaded name to something safe for a
// Content-Disposition header and a save dialog. It returns "" when
// nothing usable is left.
func sanitizeFilename(name string) string {
	name = strings.ReplaceAll(name, `\`, "/")
	name = path.Base(name)

	var b strings.Builder
	for _, r := range name {
		switch {
		case r == utf8.RuneError, unicode.IsControl(r):
		case r == '"', r == '\'', r == '`', r == '/', r == ';', r == ':':
		case unicode.In(r, unicode.Bidi_Control, unicode.Cf):
		default:
			b.WriteRune(r)
		}
	}

	out := strings.Trim(b.String(), " .")
	if len(out) > maxFilenameBytes {
		cut := maxFilenameBytes
		for cut > 0 && !utf8.RuneStart(out[cut]) {
			cut--
		}
		out = strings.Trim(out[:cut], " .")
	}
	return out
}

func placeholderFilename(documentID uint64, fileIndex uint32) string {
	return fmt.Sprintf("document-%d-file-%d", documentID, fileIndex)
}
