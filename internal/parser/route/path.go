package route

import (
	"regexp"
	"strings"
)

var (
	duplicateSlashes = regexp.MustCompile(`/{2,}`)
	pathParam        = regexp.MustCompile(`:([A-Za-z_][A-Za-z0-9_]*)\??`)
)

// JoinPath concatenates a controller base path and a method path. Duplicate
// slashes collapse, the trailing slash is dropped and an empty result is "/".
func JoinPath(base, path string) string {
	joined := "/" + strings.TrimSpace(base) + "/" + strings.TrimSpace(path)
	joined = duplicateSlashes.ReplaceAllString(joined, "/")
	if len(joined) > 1 {
		joined = strings.TrimSuffix(joined, "/")
	}
	return joined
}

// OpenAPIPath turns ":id" segments into "{id}".
func OpenAPIPath(path string) string {
	return pathParam.ReplaceAllString(path, "{$1}")
}

// PathParams lists the ":name" parameters of a path in order.
func PathParams(path string) []string {
	var names []string
	for _, m := range pathParam.FindAllStringSubmatch(path, -1) {
		names = append(names, m[1])
	}
	return names
}
