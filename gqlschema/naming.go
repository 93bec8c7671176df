package gqlschema

import (
	"strings"

	"github.com/go-openapi/inflect"
)

// camel converts a snake_case name to camelCase. The part before the first
// underscore is kept as is.
//
//	camel("first_name")   // firstName
//	camel("deleted_count") // deletedCount
//	camel("name")         // name
func camel(s string) string {
	i := strings.IndexByte(s, '_')
	if i < 0 || i == len(s)-1 {
		return s
	}
	return s[:i] + inflect.Camelize(s[i+1:])
}

// lower returns the lowercase model name used in mutation names.
func lower(name string) string {
	return strings.ToLower(name)
}
