package checkout

import (
	"crypto/rand"
	"fmt"
	"sync"
)

// issued guards against handing out the same order id twice within one
// process.
var issued sync.Map

// newOrderID returns an order identifier in the displayed "CF" + 8 digits
// format, with the digits drawn from crypto/rand.
func newOrderID() (string, error) {
	for {
		digits, err := randomDigits(8)
		if err != nil {
			return "", fmt.Errorf("generate order id: %w", err)
		}
		id := "CF" + digits
		if _, dup := issued.LoadOrStore(id, struct{}{}); !dup {
			return id, nil
		}
	}
}

func randomDigits(n int) (string, error) {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	out := make([]byte, n)
	for i, b := range buf {
		out[i] = '0' + b%10
	}
	return string(out), nil
}
