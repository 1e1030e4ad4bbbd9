package domain

import (
	"net/url"
	"path"
	"strings"
)

// SourceURL identifies a source object in bucket storage. The scheme is kept
// verbatim so asset hrefs round-trip exactly as the caller supplied them.
type SourceURL struct {
	Scheme string
	Bucket string
	Key    string
}

// ParseSourceURL parses a `scheme://bucket/key` locator. The key may contain
// further slashes; a query string stays part of the key.
func ParseSourceURL(raw string) (SourceURL, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return SourceURL{}, NewInputError("parse source URL %q: %w", raw, err)
	}
	if u.Host == "" {
		return SourceURL{}, NewInputError("source URL %q has no bucket", raw)
	}

	key := strings.TrimPrefix(u.Path, "/")
	if u.RawQuery != "" {
		key += "?" + u.RawQuery
	}
	if key == "" {
		return SourceURL{}, NewInputError("source URL %q has no object key", raw)
	}

	scheme := u.Scheme
	if scheme == "" {
		scheme = "s3"
	}
	return SourceURL{Scheme: scheme, Bucket: u.Host, Key: key}, nil
}

// String reassembles the full locator.
func (u SourceURL) String() string {
	return u.Scheme + "://" + u.Bucket + "/" + u.Key
}

// Filename returns the last path segment of the key.
func (u SourceURL) Filename() string { return path.Base(u.Key) }

// Prefix returns the directory portion of the key, without the filename.
func (u SourceURL) Prefix() string {
	dir := path.Dir(u.Key)
	if dir == "." {
		return ""
	}
	return dir
}
