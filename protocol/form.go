package protocol

import (
	"net/url"
	"strings"
)

// Param is a single form field.
type Param struct {
	Key   string
	Value string
}

// Params is an ordered set of form fields. Order is preserved on the wire.
type Params []Param

// Set replaces the value of key in place, or appends it when absent.
func (p *Params) Set(key, value string) {
	for i := range *p {
		if (*p)[i].Key == key {
			(*p)[i].Value = value
			return
		}
	}
	*p = append(*p, Param{Key: key, Value: value})
}

// Get returns the value stored for key.
func (p Params) Get(key string) (string, bool) {
	for _, param := range p {
		if param.Key == key {
			return param.Value, true
		}
	}
	return "", false
}

// Clone returns a copy that shares no storage with p.
func (p Params) Clone() Params {
	if p == nil {
		return nil
	}
	out := make(Params, len(p))
	copy(out, p)
	return out
}

// Encode serializes the params as an application/x-www-form-urlencoded body.
// Keys are written as given; values are backslash-unescaped before being
// form encoded.
func (p Params) Encode() string {
	var sb strings.Builder
	for i, param := range p {
		if i > 0 {
			sb.WriteByte('&')
		}
		sb.WriteString(param.Key)
		sb.WriteByte('=')
		sb.WriteString(url.QueryEscape(Unescape(param.Value)))
	}
	return sb.String()
}

// Unescape removes backslash escaping: `\x` becomes `x`, `\0` becomes a NUL
// byte and a trailing lone backslash is dropped.
func Unescape(s string) string {
	if strings.IndexByte(s, '\\') < 0 {
		return s
	}

	buf := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c != '\\' {
			buf = append(buf, c)
			continue
		}
		i++
		if i == len(s) {
			break
		}
		if s[i] == '0' {
			buf = append(buf, 0)
			continue
		}
		buf = append(buf, s[i])
	}
	return string(buf)
}
