package templates

import (
	"fmt"
	"html/template"
	"time"

	"github.com/joeblew999/plat-photomap/internal/icon"
)

// MaxFilenameLen is the number of trailing characters of a filename shown
// in a popup.
const MaxFilenameLen = 30

var months = [...]string{"Jan", "Feb", "Mar", "Apr", "May", "Jun", "Jul", "Aug", "Sept", "Oct", "Nov", "Dec"}

// funcMap provides common template functions.
var funcMap = template.FuncMap{
	// dict creates a map from key-value pairs, useful for passing multiple values to nested templates
	"dict": func(values ...any) map[string]any {
		if len(values)%2 != 0 {
			return nil
		}
		m := make(map[string]any, len(values)/2)
		for i := 0; i < len(values); i += 2 {
			key, ok := values[i].(string)
			if !ok {
				continue
			}
			m[key] = values[i+1]
		}
		return m
	},
	"shortname":  ShortFilename,
	"takenDate":  TakenDate,
	"popupWidth": func() int { return icon.PopupImageWidth },
	"jpegURI": func(b []byte) template.URL {
		return template.URL(icon.DataURI("jpeg", b))
	},
	"add": func(a, b int) int { return a + b },
}

// ShortFilename keeps the last MaxFilenameLen characters of long names.
func ShortFilename(name string) string {
	r := []rune(name)
	if len(r) < MaxFilenameLen {
		return name
	}
	return "..." + string(r[len(r)-MaxFilenameLen:])
}

// FormatDate renders t as "2 Sept 14 09:05".
func FormatDate(t time.Time) string {
	return fmt.Sprintf("%d %s %02d %02d:%02d", t.Day(), months[t.Month()-1], t.Year()%100, t.Hour(), t.Minute())
}

// DateTypeLabel names a date type code; unknown codes are blank.
func DateTypeLabel(dateType int) string {
	switch dateType {
	case 0:
		return "Taken Date"
	case 1:
		return "File Date"
	}
	return ""
}

// TakenDate renders the date line of a popup.
func TakenDate(dateType int, t time.Time) string {
	return DateTypeLabel(dateType) + " " + FormatDate(t) + "."
}
