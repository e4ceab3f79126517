package cache

import (
	"crypto/sha1"
	"fmt"
	"time"
)

// GeocodeTTL bounds how long a geocoding lookup stays cached. Street
// addresses do not move, so the TTL mostly limits growth of stale keys.
const GeocodeTTL = 7 * 24 * time.Hour

// GeocodeKey generates the redis key for a geocoding lookup result.
func GeocodeKey(address string) string {
	hash := sha1.Sum([]byte(address))
	return fmt.Sprintf("cache:v1:geocode:%x", hash)
}
