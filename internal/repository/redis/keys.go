package redis

import "strings"

// Keys builds the Redis key names for one namespace (normally DB_NAME), so
// several deployments can share a Redis instance.
type Keys struct {
	prefix string
}

func NewKeys(namespace string) Keys {
	namespace = strings.Trim(namespace, ":")
	if namespace == "" {
		namespace = "marvel"
	}
	return Keys{prefix: namespace + ":"}
}

// UserFavorites is the list holding a user's favorites, oldest first.
func (k Keys) UserFavorites(userID string) string {
	return k.prefix + "favorites:user:" + userID
}
