package postgres

import "strings"

// escapeLike escapes LIKE wildcards in a path prefix so that prefix
// matching treats "%" and "_" literally.
func escapeLike(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `%`, `\%`)
	s = strings.ReplaceAll(s, `_`, `\_`)
	return s
}
