package helpers

import (
	"net/url"
	"strings"
)

// SetRawQuery returns rawQuery with key set to value.
func SetRawQuery(rawQuery, key, value string) string {
	values, _ := url.ParseQuery(rawQuery)
	values.Set(key, value)
	return values.Encode()
}

// DelRawQuery returns rawQuery without key.
func DelRawQuery(rawQuery, key string) string {
	values, _ := url.ParseQuery(rawQuery)
	values.Del(key)
	return values.Encode()
}

// BuildURL joins path and rawQuery, replacing any query already on path.
func BuildURL(path, rawQuery string) string {
	if idx := strings.IndexByte(path, '?'); idx >= 0 {
		path = path[:idx]
	}
	if rawQuery == "" {
		return path
	}
	return path + "?" + rawQuery
}

// JoinPath appends suffix to the admin base path.
func JoinPath(basePath, suffix string) string {
	base := strings.TrimRight(strings.TrimSpace(basePath), "/")
	if !strings.HasPrefix(suffix, "/") {
		suffix = "/" + suffix
	}
	return base + suffix
}
