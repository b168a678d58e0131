package format

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatTwoArgs(t *testing.T) {
	got := Format("{0} must be >= {1}", []int64{3, 5})
	assert.Equal(t, "3 must be >= 5", got)
}

func TestFormatZeroArgsVerbatim(t *testing.T) {
	tmpl := "shape mismatch {not a placeholder}"
	assert.Equal(t, tmpl, Format(tmpl, nil))
}

func TestFormatRepeatedAndOutOfOrder(t *testing.T) {
	got := Format("{1} vs {0} vs {1}", []int64{7, 8})
	assert.Equal(t, "8 vs 7 vs 8", got)
}

func TestFormatLayoutAndFormatSuffixes(t *testing.T) {
	// {n,...} and {n:...} suffixes are accepted and ignored.
	assert.Equal(t, "42!", Format("{0,-8}!", []int64{42}))
	assert.Equal(t, "42!", Format("{0:x}!", []int64{42}))
}

func TestFormatMaxArgs(t *testing.T) {
	got := Format("{0} {1} {2} {3}", []int64{1, 2, 3, 4})
	assert.Equal(t, "1 2 3 4", got)
}

func TestFormatNegativeValues(t *testing.T) {
	got := Format("dim is {0}", []int64{-1})
	assert.Equal(t, "dim is -1", got)
}

func TestValidateTemplateInRange(t *testing.T) {
	require.NoError(t, ValidateTemplate("{0} must be >= {1}", 2))
	require.NoError(t, ValidateTemplate("no placeholders at all", 0))
	require.NoError(t, ValidateTemplate("{0,8} and {1:d}", 2))
}

func TestValidateTemplateOutOfRange(t *testing.T) {
	err := ValidateTemplate("expected {2} dims", 2)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"{2}"`)
	assert.Contains(t, err.Error(), "less than 2")
}

func TestValidateTemplateZeroInputs(t *testing.T) {
	err := ValidateTemplate("{0}", 0)
	require.Error(t, err)
}

func TestValidateTemplateNeverSubstitutes(t *testing.T) {
	// Validation is a counting pass only; the template is left untouched and
	// non-placeholder braces are ignored.
	require.NoError(t, ValidateTemplate("{} {x} {0}", 1))
}
