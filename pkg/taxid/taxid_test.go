package taxid

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckDigit(t *testing.T) {
	cases := map[string]byte{
		"800197268":  '4',
		"890903938":  '8',
		"900373115":  '3',
		"1020304050": '8',
	}
	for base, want := range cases {
		got, err := CheckDigit(base)
		require.NoError(t, err, base)
		assert.Equal(t, want, got, base)
	}
}

func TestNormalize(t *testing.T) {
	got, err := Normalize(" 800.197.268-4 ")
	require.NoError(t, err)
	assert.Equal(t, "800197268-4", got)

	got, err = Normalize("1.020.304.050")
	require.NoError(t, err)
	assert.Equal(t, "1020304050", got)
}

func TestNormalize_Errores(t *testing.T) {
	for _, in := range []string{"", "123", "800197268-5", "80019726A", "800197268-", "800197268-44", "1234567890123456"} {
		_, err := Normalize(in)
		assert.ErrorIs(t, err, ErrFormat, in)
	}
}
