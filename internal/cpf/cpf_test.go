package cpf

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestValidateKnownGood(t *testing.T) {
	require.NoError(t, Validate("11144477735"))
	require.NoError(t, Validate("111.444.777-35"))
	require.NoError(t, Validate(" 111 444 777 35 "))
}

func TestValidateBadSecondCheckDigit(t *testing.T) {
	// first check digit matches, second computes to 9 instead of 0
	require.ErrorIs(t, Validate("12345678900"), ErrInvalidChecksum)
}

func TestValidateRepeatedDigits(t *testing.T) {
	for d := '0'; d <= '9'; d++ {
		input := strings.Repeat(string(d), 11)
		require.ErrorIs(t, Validate(input), ErrInvalidChecksum, "input %q", input)
	}
}

func TestValidateFormat(t *testing.T) {
	cases := []string{"", "123", "123456789012", "abcdefghijk", "111.444.777-3"}
	for _, input := range cases {
		require.ErrorIs(t, Validate(input), ErrInvalidFormat, "input %q", input)
	}
}

func TestCleanIdempotent(t *testing.T) {
	inputs := []string{"111.444.777-35", "11144477735", "a1b2c3", "", "  42  "}
	for _, input := range inputs {
		once := Clean(input)
		require.Equal(t, once, Clean(once), "input %q", input)
	}
}

func TestCleanStripsNonDigits(t *testing.T) {
	require.Equal(t, "11144477735", Clean("111.444.777-35"))
	require.Equal(t, "", Clean("no digits here"))
}
