package brandcaptcha

import (
	"log/slog"
	"time"

	"github.com/lestrrat-go/option"
	"github.com/nczempin/brandcaptcha-go/transport"
)

// Option configures a Client.
type Option = option.Interface

type identHost struct{}

func (identHost) String() string { return "WithHost" }

type identVerifyPath struct{}

func (identVerifyPath) String() string { return "WithVerifyPath" }

type identChallengePath struct{}

func (identChallengePath) String() string { return "WithChallengePath" }

type identPort struct{}

func (identPort) String() string { return "WithPort" }

type identConnectTimeout struct{}

func (identConnectTimeout) String() string { return "WithConnectTimeout" }

type identRequestTimeout struct{}

func (identRequestTimeout) String() string { return "WithRequestTimeout" }

type identTransport struct{}

func (identTransport) String() string { return "WithTransport" }

type identLogger struct{}

func (identLogger) String() string { return "WithLogger" }

type identUserAgent struct{}

func (identUserAgent) String() string { return "WithUserAgent" }

type identMaxResponseSize struct{}

func (identMaxResponseSize) String() string { return "WithMaxResponseSize" }

// WithHost sets the API host used for verification and for the widget URL.
func WithHost(host string) Option {
	return option.New(identHost{}, host)
}

// WithVerifyPath sets the path of the verification endpoint.
func WithVerifyPath(path string) Option {
	return option.New(identVerifyPath{}, path)
}

// WithChallengePath sets the path of the challenge script.
func WithChallengePath(path string) Option {
	return option.New(identChallengePath{}, path)
}

// WithPort sets the TCP port of the verification endpoint.
func WithPort(port int) Option {
	return option.New(identPort{}, port)
}

// WithConnectTimeout bounds connection establishment. It only applies to the
// default TCP transport; custom factories carry their own timeout.
func WithConnectTimeout(d time.Duration) Option {
	return option.New(identConnectTimeout{}, d)
}

// WithRequestTimeout bounds a whole verification call when the caller's
// context has no deadline of its own.
func WithRequestTimeout(d time.Duration) Option {
	return option.New(identRequestTimeout{}, d)
}

// WithTransport sets the factory used to open one connection per verification.
func WithTransport(factory transport.Factory) Option {
	return option.New(identTransport{}, factory)
}

// WithLogger sets the logger. By default nothing is logged.
func WithLogger(logger *slog.Logger) Option {
	return option.New(identLogger{}, logger)
}

// WithUserAgent overrides the User-Agent header sent to the service.
func WithUserAgent(ua string) Option {
	return option.New(identUserAgent{}, ua)
}

// WithMaxResponseSize caps the number of bytes read from the service.
func WithMaxResponseSize(n int) Option {
	return option.New(identMaxResponseSize{}, n)
}
