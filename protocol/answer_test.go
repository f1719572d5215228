package protocol

import (
	"testing"

	"github.com/nczempin/brandcaptcha-go/errors"
	"github.com/stretchr/testify/require"
)

func TestParseAnswer(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		for _, body := range []string{"true", "true\n", " true \r\n", "true\nignored\n"} {
			answer, err := ParseAnswer([]byte(body))
			require.NoError(t, err, "body %q", body)
			require.True(t, answer.Valid())
			require.False(t, answer.HasDetail)
			require.Empty(t, answer.Detail)
		}
	})

	t.Run("rejected with code", func(t *testing.T) {
		answer, err := ParseAnswer([]byte("false\nincorrect-captcha-sol\n"))
		require.NoError(t, err)
		require.False(t, answer.Valid())
		require.Equal(t, "false", answer.Status)
		require.True(t, answer.HasDetail)
		require.Equal(t, "incorrect-captcha-sol", answer.Detail)
	})

	t.Run("crlf line endings", func(t *testing.T) {
		answer, err := ParseAnswer([]byte("false\r\ninvalid-site-private-key\r\n"))
		require.NoError(t, err)
		require.Equal(t, "invalid-site-private-key", answer.Detail)
	})

	t.Run("unknown status is a failure", func(t *testing.T) {
		answer, err := ParseAnswer([]byte("TRUE\nsomething-new\nthird line"))
		require.NoError(t, err)
		require.False(t, answer.Valid())
		require.Equal(t, "something-new", answer.Detail)
	})

	t.Run("missing error code", func(t *testing.T) {
		for _, body := range []string{"false", "false\n", "false\n   \n"} {
			_, err := ParseAnswer([]byte(body))
			require.True(t, errors.IsProtocolCode(err, errors.ProtocolErrorMissingErrorCode), "body %q: %v", body, err)
		}
	})

	t.Run("empty body", func(t *testing.T) {
		for _, body := range []string{"", "\n", "  \r\n"} {
			_, err := ParseAnswer([]byte(body))
			require.True(t, errors.IsProtocolCode(err, errors.ProtocolErrorEmptyAnswer), "body %q: %v", body, err)
		}
	})
}
