package client

// Query keys. A field's key is nested under its object's list key so a
// mutation can invalidate both.

func FieldListKey(object string) string {
	return "object-fields/" + object
}

func FieldKey(object, code string) string {
	return "object-fields/" + object + "/" + code
}

func MetadataKey(path string) string {
	return "metadata/" + path
}

const (
	ObjectDefinitionsKey = "object-definitions"
	GlobalValueSetsKey   = "global-value-sets"
	CapabilitiesKey      = "settings/capabilities"
)
