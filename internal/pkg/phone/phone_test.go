package phone

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize_EquivalentForms(t *testing.T) {
	assert.Equal(t, Normalize("+7 (999) 123-45-67"), Normalize("79991234567"))
	assert.Equal(t, "79991234567", Normalize("+7 (999) 123-45-67"))
}

func TestNormalize_StripsEverythingButDigits(t *testing.T) {
	assert.Equal(t, "84951234567", Normalize("8 (495) 123 45 67 ext."))
	assert.Equal(t, "", Normalize("no digits here"))
	assert.Equal(t, "", Normalize(""))
}

func TestDisplay_ElevenDigits(t *testing.T) {
	assert.Equal(t, "+7 (999) 123-45-67", Display("79991234567"))
}

func TestDisplay_OtherLengths(t *testing.T) {
	assert.Equal(t, "+123", Display("123"))
	assert.Equal(t, "", Display(""))
}
