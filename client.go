package brandcaptcha

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	bcerrors "github.com/nczempin/brandcaptcha-go/errors"
	"github.com/nczempin/brandcaptcha-go/protocol"
	"github.com/nczempin/brandcaptcha-go/transport"
)

const (
	DefaultAPIHost        = "api.ponta.co"
	DefaultVerifyPath     = "/verify.php"
	DefaultChallengePath  = "/challenge.php"
	DefaultPort           = 80
	DefaultConnectTimeout = transport.DefaultConnectTimeout
	DefaultRequestTimeout = 30 * time.Second

	// UserAgent identifies this library to the service.
	UserAgent = "brandcaptcha/Go"
)

var validate = validator.New()

// Client verifies CAPTCHA solutions against the BrandCaptcha service and
// renders the challenge widget. A Client is immutable once built and safe
// for concurrent use; every verification opens and closes its own connection.
type Client struct {
	host            string
	verifyPath      string
	challengePath   string
	port            int
	connectTimeout  time.Duration
	requestTimeout  time.Duration
	newTransport    transport.Factory
	logger          *slog.Logger
	userAgent       string
	maxResponseSize int
}

// New creates a Client talking to the public service unless options say otherwise.
func New(options ...Option) *Client {
	c := &Client{
		host:            DefaultAPIHost,
		verifyPath:      DefaultVerifyPath,
		challengePath:   DefaultChallengePath,
		port:            DefaultPort,
		connectTimeout:  DefaultConnectTimeout,
		requestTimeout:  DefaultRequestTimeout,
		userAgent:       UserAgent,
		maxResponseSize: protocol.DefaultMaxResponseSize,
	}

	for _, option := range options {
		switch option.Ident() {
		case identHost{}:
			c.host = option.Value().(string)
		case identVerifyPath{}:
			c.verifyPath = option.Value().(string)
		case identChallengePath{}:
			c.challengePath = option.Value().(string)
		case identPort{}:
			c.port = option.Value().(int)
		case identConnectTimeout{}:
			c.connectTimeout = option.Value().(time.Duration)
		case identRequestTimeout{}:
			c.requestTimeout = option.Value().(time.Duration)
		case identTransport{}:
			c.newTransport = option.Value().(transport.Factory)
		case identLogger{}:
			c.logger = option.Value().(*slog.Logger)
		case identUserAgent{}:
			c.userAgent = option.Value().(string)
		case identMaxResponseSize{}:
			c.maxResponseSize = option.Value().(int)
		}
	}

	if c.newTransport == nil {
		c.newTransport = transport.TCP(c.connectTimeout)
	}
	if c.logger == nil {
		c.logger = slog.New(slog.DiscardHandler)
	}

	return c
}

// CheckAnswer asks the service whether req.Response solves req.Challenge.
//
// A missing private key or remote IP is a configuration error. An empty
// challenge or response is rejected locally with ErrIncorrectSolution and
// no request is made. Transport and protocol failures are returned as
// errors; a rejection by the service is a Result, not an error.
func (c *Client) CheckAnswer(ctx context.Context, req VerificationRequest) (*Result, error) {
	if err := checkKeys(&req); err != nil {
		return nil, err
	}

	// discard spam submissions
	if req.Challenge == "" || req.Response == "" {
		c.logger.DebugContext(ctx, "rejecting empty submission without contacting the service",
			slog.String("remote_ip", req.RemoteIP))
		return rejected(ErrIncorrectSolution), nil
	}

	params := req.Extra.Clone()
	params.Set("privatekey", req.PrivateKey)
	params.Set("remoteip", req.RemoteIP)
	params.Set("challenge", req.Challenge)
	params.Set("response", req.Response)

	logger := c.logger.With(
		slog.String("verification_id", uuid.NewString()),
		slog.String("remote_ip", req.RemoteIP),
	)

	if _, ok := ctx.Deadline(); !ok && c.requestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.requestTimeout)
		defer cancel()
	}

	start := time.Now()
	logger.DebugContext(ctx, "verifying captcha solution",
		slog.String("host", c.host), slog.Int("port", c.port), slog.Int("params", len(params)))

	result, err := c.verify(ctx, logger, params)
	if err != nil {
		logger.WarnContext(ctx, "captcha verification failed",
			slog.Any("error", err), slog.Duration("elapsed", time.Since(start)))
		return nil, err
	}

	logger.DebugContext(ctx, "captcha verification finished",
		slog.Bool("valid", result.Valid),
		slog.String("error_code", result.ErrorCode.String()),
		slog.Duration("elapsed", time.Since(start)))
	return result, nil
}

func (c *Client) verify(ctx context.Context, logger *slog.Logger, params protocol.Params) (*Result, error) {
	resp, err := c.post(ctx, logger, params)
	if err != nil {
		return nil, err
	}

	// A payload without headers carries no status line to check
	if resp.StatusCode != 0 && (resp.StatusCode < 200 || resp.StatusCode > 299) {
		return nil, bcerrors.NewProtocolError(
			bcerrors.ProtocolErrorUnexpectedStatus,
			fmt.Sprintf("verification endpoint answered %d %s", resp.StatusCode, resp.StatusMessage),
		)
	}

	answer, err := protocol.ParseAnswer(resp.Body)
	if err != nil {
		return nil, err
	}

	if answer.Valid() {
		return valid(), nil
	}
	return rejected(ErrorCode(answer.Detail)), nil
}

func (c *Client) post(ctx context.Context, logger *slog.Logger, params protocol.Params) (*protocol.RawResponse, error) {
	t, err := c.newTransport()
	if err != nil {
		return nil, err
	}

	proto := protocol.NewHttp10Protocol(t, c.maxResponseSize)
	defer func() {
		if err := proto.Disconnect(); err != nil {
			logger.DebugContext(ctx, "closing verification connection", slog.Any("error", err))
		}
	}()

	if err := proto.Connect(ctx, c.host, c.port); err != nil {
		return nil, err
	}

	return proto.PerformRequest(protocol.NewFormPost(c.host, c.verifyPath, params, c.userAgent))
}

func checkKeys(req *VerificationRequest) error {
	err := validate.Struct(req)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		switch fieldErrs[0].Field() {
		case "PrivateKey":
			return bcerrors.NewConfigurationError(
				bcerrors.ConfigErrorMissingPrivateKey,
				"to use BrandCaptcha you must get an API key",
			)
		case "RemoteIP":
			return bcerrors.NewConfigurationError(
				bcerrors.ConfigErrorMissingRemoteIP,
				"for security reasons, you must pass the remote ip to BrandCaptcha",
			)
		}
	}

	return bcerrors.NewConfigurationError(bcerrors.ConfigErrorInvalidSetting, err.Error())
}
