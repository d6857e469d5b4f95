// Package metadata addresses the XML documents that hold field definitions and
// global value sets.
package metadata

import (
	"strings"
)

const (
	objectsPrefix    = "objects/"
	fieldsSegment    = "/fields/"
	fieldSuffix      = ".field-meta.xml"
	FieldRootElement = "FieldDefinition"
)

// FieldPath returns the document path of a field.
func FieldPath(object, apiCode string) string {
	return objectsPrefix + object + fieldsSegment + apiCode + fieldSuffix
}

// FieldPrefix returns the common prefix of every field document of object.
func FieldPrefix(object string) string {
	return objectsPrefix + object + fieldsSegment
}

// ParseFieldPath splits a field document path into object and apiCode.
func ParseFieldPath(p string) (object, apiCode string, ok bool) {
	rest, found := strings.CutPrefix(p, objectsPrefix)
	if !found {
		return "", "", false
	}
	rest, found = strings.CutSuffix(rest, fieldSuffix)
	if !found {
		return "", "", false
	}
	object, apiCode, found = strings.Cut(rest, fieldsSegment)
	if !found || object == "" || apiCode == "" || strings.Contains(object, "/") || strings.Contains(apiCode, "/") {
		return "", "", false
	}
	return object, apiCode, true
}
