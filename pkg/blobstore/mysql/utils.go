package mysql

import "strings"

// escapeLike escapes LIKE wildcards in a path prefix so that prefix
// matching treats "%" and "_" literally. MySQL's default escape
// character is backslash.
func escapeLike(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `%`, `\%`)
	s = strings.ReplaceAll(s, `_`, `\_`)
	return s
}
