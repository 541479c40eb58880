package redis

import "fmt"

// NaturalLightKey returns the key of the latest computed colour (hash)
// Pattern: light:natural:{location}
func NaturalLightKey(location string) string {
	return fmt.Sprintf("light:natural:%s", location)
}

// OverrideKey returns the key marking an active manual override (string with TTL)
// Pattern: light:override:{location}
func OverrideKey(location string) string {
	return fmt.Sprintf("light:override:%s", location)
}
