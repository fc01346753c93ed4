package checkout

import (
	"fmt"
	"math/rand/v2"
)

// RandomOrderID returns VAS- followed by a number in 1000..9999.
func RandomOrderID() string {
	return fmt.Sprintf("VAS-%d", 1000+rand.IntN(9000))
}
