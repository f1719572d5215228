package brandcaptcha

import "github.com/nczempin/brandcaptcha-go/protocol"

// ErrorCode is the machine-readable reason the service gives for rejecting a
// solution. The vocabulary belongs to the service; the constants below are
// the values known today and other values must be passed through as is.
type ErrorCode string

const (
	ErrIncorrectSolution     ErrorCode = "incorrect-captcha-sol"
	ErrInvalidPrivateKey     ErrorCode = "invalid-site-private-key"
	ErrInvalidRequestCookie  ErrorCode = "invalid-request-cookie"
	ErrVerifyParamsIncorrect ErrorCode = "verify-params-incorrect"
	ErrInvalidReferrer       ErrorCode = "invalid-referrer"
	ErrNotReachable          ErrorCode = "brandcaptcha-not-reachable"
)

func (c ErrorCode) String() string {
	return string(c)
}

// Result is the outcome of one verification. Valid results never carry an
// ErrorCode and results with an ErrorCode are never valid.
type Result struct {
	Valid     bool
	ErrorCode ErrorCode
}

// VerificationRequest carries the inputs of CheckAnswer.
type VerificationRequest struct {
	PrivateKey string `validate:"required"`
	RemoteIP   string `validate:"required"`
	Challenge  string
	Response   string

	// Extra fields are posted along with the standard ones. The standard
	// fields win when a key appears in both.
	Extra protocol.Params
}

func valid() *Result {
	return &Result{Valid: true}
}

func rejected(code ErrorCode) *Result {
	return &Result{ErrorCode: code}
}
