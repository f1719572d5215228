package protocol

import "strings"

// HttpHeader represents an HTTP header key-value pair
type HttpHeader struct {
	Key   string
	Value string
}

// HttpRequest represents an HTTP/1.0 POST request
type HttpRequest struct {
	Path    string
	Headers []HttpHeader
	Body    []byte
}

// RawResponse is a full response payload split on its first blank line.
// When the payload has no blank line, HeaderBlock is empty, StatusCode is 0
// and the whole payload is the Body.
type RawResponse struct {
	StatusCode    int
	StatusMessage string
	Headers       []HttpHeader
	HeaderBlock   []byte
	Body          []byte
}

// Header returns the first header value matching key, case-insensitively
func (r *RawResponse) Header(key string) (string, bool) {
	for _, h := range r.Headers {
		if strings.EqualFold(h.Key, key) {
			return h.Value, true
		}
	}
	return "", false
}
