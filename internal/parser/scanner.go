package parser

import "strings"

// Unit is one quadruple produced by the dual-language scanner: structural
// prefix, primary text, annotated secondary text, and trailing suffix.
type Unit struct {
	Prefix    string
	Primary   string
	Secondary string
	Suffix    string
}

// ScanDualLanguage walks the text left to right, alternating between primary
// text and text enclosed in a {...} annotation pair, and returns the ordered
// units. Scanning is non-recursive: a '{' inside an open annotation is
// ordinary secondary text. Unterminated annotations degrade to a partial
// unit rather than an error.
func ScanDualLanguage(text string) []Unit {
	var units []Unit
	i := 0
	for i < len(text) {
		prefix, next := consumePrefix(text, i)
		i = next

		open := strings.IndexByte(text[i:], '{')
		if open < 0 {
			if primary := strings.TrimSpace(text[i:]); primary != "" {
				units = append(units, Unit{Prefix: prefix, Primary: primary})
			}
			break
		}

		primary := strings.TrimSpace(text[i : i+open])
		i += open + 1

		closing := strings.IndexByte(text[i:], '}')
		if closing < 0 {
			secondary := strings.TrimSpace(text[i:])
			if primary != "" || secondary != "" {
				units = append(units, Unit{Prefix: prefix, Primary: primary, Secondary: secondary})
			}
			break
		}

		secondary := strings.TrimSpace(text[i : i+closing])
		i += closing + 1

		suffix, next := consumeSuffix(text, i)
		i = next

		if primary == "" && secondary == "" {
			continue
		}
		units = append(units, Unit{
			Prefix:    prefix,
			Primary:   primary,
			Secondary: secondary,
			Suffix:    suffix,
		})
	}
	return units
}
