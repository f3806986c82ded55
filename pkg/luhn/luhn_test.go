package luhn

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "multa-gateway/pkg/domain-errors"
)

func TestCompute(t *testing.T) {
	tests := []struct {
		name   string
		digits string
		want   int
	}{
		// Hand-computed: double even 0-based positions, fold >9, sum.
		{"single zero", "0", 0},
		{"single digit", "5", 9}, // 5*2=10 -> 1, (10-1)%10 = 9
		{"two digits", "18", 0},  // 1*2 + 8 = 10 -> 0
		{"typical online base", "0304212345", 8}, // sum 32 -> (10-2)%10
		{"all nines", "999999", 6},               // 3*(9+9) = 54 -> (10-4)%10
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Compute(tt.digits)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestComputeRejectsNonNumeric(t *testing.T) {
	for _, in := range []string{"", "12a4", "１２３", "12-4", " 12"} {
		_, err := Compute(in)
		require.Error(t, err, "input %q", in)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	}
}

func TestValidateRoundTrip(t *testing.T) {
	samples := []string{
		"0", "7", "42", "0304212345", "04203412345678",
		"00000", "99999", "123456789012", "0420999999999",
	}
	for _, s := range samples {
		check, err := Compute(s)
		require.NoError(t, err)

		ok, err := Validate(s, check)
		require.NoError(t, err)
		assert.True(t, ok, "compute/validate round trip failed for %q", s)

		full := fmt.Sprintf("%s%d", s, check)
		ok, err = ValidateString(full)
		require.NoError(t, err)
		assert.True(t, ok)
	}
}

// Luhn-style schemes catch every single-digit substitution except the
// occasional 0<->9-fold collision. Verify detection across a sampled set of
// mutations rather than asserting universality.
func TestValidateCatchesMostSingleDigitMutations(t *testing.T) {
	base := "0304212345"
	check, err := Compute(base)
	require.NoError(t, err)

	caught := 0
	total := 0
	for pos := 0; pos < len(base); pos++ {
		for d := byte('0'); d <= '9'; d++ {
			if base[pos] == d {
				continue
			}
			mutated := base[:pos] + string(d) + base[pos+1:]
			ok, err := Validate(mutated, check)
			require.NoError(t, err)
			total++
			if !ok {
				caught++
			}
		}
	}
	assert.Greater(t, caught, total*8/10, "check digit should catch the large majority of single-digit errors")
}
