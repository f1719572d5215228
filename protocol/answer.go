package protocol

import (
	"strings"

	"github.com/nczempin/brandcaptcha-go/errors"
)

// StatusValid is the status line the service sends for a correct solution.
const StatusValid = "true"

// Answer holds the two logical lines of a verification response body.
type Answer struct {
	Status    string
	Detail    string
	HasDetail bool
}

// Valid reports whether the service accepted the solution.
func (a *Answer) Valid() bool {
	return a.Status == StatusValid
}

// ParseAnswer parses a verification body of the form "true" or
// "false\n<error-code>". Lines after the second are ignored.
func ParseAnswer(body []byte) (*Answer, error) {
	lines := strings.Split(string(body), "\n")

	status := strings.TrimSpace(lines[0])
	if status == "" {
		return nil, errors.NewProtocolError(
			errors.ProtocolErrorEmptyAnswer,
			"verification response has no status line",
		)
	}

	answer := &Answer{Status: status}
	if answer.Valid() {
		return answer, nil
	}

	if len(lines) < 2 || strings.TrimSpace(lines[1]) == "" {
		return nil, errors.NewProtocolError(
			errors.ProtocolErrorMissingErrorCode,
			"status "+status+" without an error code",
		)
	}

	answer.Detail = strings.TrimSpace(lines[1])
	answer.HasDetail = true
	return answer, nil
}
