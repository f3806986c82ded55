package treasury

import (
	"crypto/rand"
	"encoding/binary"
	"fmt"
	"strings"
)

// fallbackExpiryDays is how long a locally generated reference stays payable
// before the drain must have replaced it with a treasury-issued one.
const fallbackExpiryDays = 30

// localCode produces a placeholder payment reference: five 4-digit groups
// separated by dashes, 24 characters total. The shape is documented
// externally so downstream systems can tell it apart from real treasury
// codes and replace it during reconciliation.
func localCode() string {
	groups := make([]string, 5)
	for i := range groups {
		var buf [8]byte
		if _, err := rand.Read(buf[:]); err != nil {
			// crypto/rand failing means the platform is broken; issuance
			// still must not fail, so degrade to a constant-free zero group.
			groups[i] = "0000"
			continue
		}
		groups[i] = fmt.Sprintf("%04d", binary.BigEndian.Uint64(buf[:])%10000)
	}
	return strings.Join(groups, "-")
}

// IsLocalCode reports whether a code has the local-fallback shape.
func IsLocalCode(code string) bool {
	if len(code) != 24 {
		return false
	}
	for i, c := range code {
		if (i+1)%5 == 0 {
			if c != '-' {
				return false
			}
			continue
		}
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}
