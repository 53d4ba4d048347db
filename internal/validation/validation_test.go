package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidators(t *testing.T) {
	v := Violations{}
	Required("titre", "  ", v)
	Required("ville", "Lyon", v)
	PositiveFloat("amount", 0, v)
	NonNegativeFloat("charges", -1, v)
	RangeFloat("budget", 50, 0, 10000, v)
	OneOf("dpe_lettre", false, v)

	assert.False(t, v.Empty())
	assert.Equal(t, Violations{
		"titre":      "required",
		"amount":     "must_be_positive",
		"charges":    "must_not_be_negative",
		"dpe_lettre": "invalid_value",
	}, v)
}

func TestEmpty(t *testing.T) {
	assert.True(t, Violations{}.Empty())
}
