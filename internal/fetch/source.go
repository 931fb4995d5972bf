package fetch

import (
	"fmt"
	"net/url"
	"strings"
)

// PlaceholderPrefix marks a source URL that was never filled in.
const PlaceholderPrefix = "YOUR_"

// Source kinds.
const (
	KindHTTP = "http"
	KindS3   = "s3"
)

// Source is a parsed artifact location.
type Source struct {
	Raw    string
	Kind   string
	Bucket string
	Key    string
}

// ParseSource accepts http(s)://host/path and s3://bucket/key locations.
func ParseSource(raw string) (Source, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Source{}, &Error{URL: raw, Message: "no source configured"}
	}
	if strings.HasPrefix(raw, PlaceholderPrefix) {
		return Source{}, &Error{URL: raw, Message: "source is a placeholder; set a real download URL"}
	}

	u, err := url.Parse(raw)
	if err != nil {
		return Source{}, &Error{URL: raw, Message: "invalid source URL", Cause: err}
	}

	switch strings.ToLower(u.Scheme) {
	case "http", "https":
		if u.Host == "" {
			return Source{}, &Error{URL: raw, Message: "missing host"}
		}
		return Source{Raw: raw, Kind: KindHTTP}, nil
	case "s3":
		key := strings.TrimPrefix(u.Path, "/")
		if u.Host == "" || key == "" {
			return Source{}, &Error{URL: raw, Message: "s3 source must be s3://bucket/key"}
		}
		return Source{Raw: raw, Kind: KindS3, Bucket: u.Host, Key: key}, nil
	default:
		return Source{}, &Error{URL: raw, Message: fmt.Sprintf("unsupported scheme %q", u.Scheme)}
	}
}
