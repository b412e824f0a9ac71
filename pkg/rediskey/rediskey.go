package rediskey

import "fmt"

// Key namespaces (global convention across services)
const (
	SequencePrefix = "seq"
)

func NamespaceKey(namespace, key string) string {
	return fmt.Sprintf("%s:%s", namespace, key)
}

// BuildSequenceKey returns "seq:{prefix}:{tenantID}:{day}", the daily counter
// behind human-readable entity codes.
func BuildSequenceKey(prefix, tenantID, day string) string {
	return NamespaceKey(SequencePrefix, fmt.Sprintf("%s:%s:%s", prefix, tenantID, day))
}
