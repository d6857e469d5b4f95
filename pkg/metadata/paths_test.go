package metadata

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFieldPath(t *testing.T) {
	p := FieldPath("Account", "billing")
	assert.Equal(t, "objects/Account/fields/billing.field-meta.xml", p)

	object, code, ok := ParseFieldPath(p)
	assert.True(t, ok)
	assert.Equal(t, "Account", object)
	assert.Equal(t, "billing", code)
}

func TestParseFieldPath_Rejects(t *testing.T) {
	for _, p := range []string{
		"",
		"globalValueSets/Stage.globalValueSet-meta.xml",
		"objects/Account/fields/.field-meta.xml",
		"objects//fields/x.field-meta.xml",
		"objects/Account/fields/a/b.field-meta.xml",
		"objects/Account/layouts/x.field-meta.xml",
	} {
		_, _, ok := ParseFieldPath(p)
		assert.False(t, ok, p)
	}
}
