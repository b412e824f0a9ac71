package endpoint

import "fmt"

// Normalize turns a bare port or empty address into a listenable ":port".
func Normalize(addr string) string {
	if addr == "" {
		return ":0"
	}

	if addr[0] == ':' {
		return addr
	}

	return fmt.Sprintf(":%s", addr)
}
