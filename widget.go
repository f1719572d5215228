package brandcaptcha

import (
	"strings"

	bcerrors "github.com/nczempin/brandcaptcha-go/errors"
)

// RenderChallenge returns the script tag that embeds the challenge widget
// served by the public service. code, when non-empty, tells the widget why
// the previous attempt failed.
func RenderChallenge(publicKey string, code ErrorCode) (string, error) {
	return challengeHTML(DefaultAPIHost, DefaultChallengePath, publicKey, code)
}

// ChallengeHTML is RenderChallenge against the client's configured host.
func (c *Client) ChallengeHTML(publicKey string, code ErrorCode) (string, error) {
	return challengeHTML(c.host, c.challengePath, publicKey, code)
}

func challengeHTML(host, path, publicKey string, code ErrorCode) (string, error) {
	if publicKey == "" {
		return "", bcerrors.NewConfigurationError(
			bcerrors.ConfigErrorMissingPublicKey,
			"to use BrandCaptcha you must get an API key",
		)
	}

	var sb strings.Builder
	sb.WriteString(`<script type="text/javascript" src="//`)
	sb.WriteString(host)
	sb.WriteString(path)
	sb.WriteString("?k=")
	sb.WriteString(publicKey)
	if code != "" {
		sb.WriteString("&error=")
		sb.WriteString(string(code))
	}
	sb.WriteString(`"></script>`)
	return sb.String(), nil
}
