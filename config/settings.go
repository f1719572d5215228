package config

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	brandcaptcha "github.com/nczempin/brandcaptcha-go"
	bcerrors "github.com/nczempin/brandcaptcha-go/errors"
	"github.com/nczempin/brandcaptcha-go/transport"
)

// Keys read by Load.
const (
	KeyPublicKey      = "BRANDCAPTCHA_PUBLIC_KEY"
	KeyPrivateKey     = "BRANDCAPTCHA_PRIVATE_KEY"
	KeyHost           = "BRANDCAPTCHA_HOST"
	KeyPort           = "BRANDCAPTCHA_PORT"
	KeyConnectTimeout = "BRANDCAPTCHA_CONNECT_TIMEOUT"
	KeyRequestTimeout = "BRANDCAPTCHA_REQUEST_TIMEOUT"
	KeyTransport      = "BRANDCAPTCHA_TRANSPORT"
	KeyUnixSocket     = "BRANDCAPTCHA_UNIX_SOCKET"
)

// Transport kinds accepted in BRANDCAPTCHA_TRANSPORT.
const (
	TransportTCP     = "tcp"
	TransportUnix    = "unix"
	TransportIOURing = "iouring"
)

var validate = validator.New()

// Settings is the application-level configuration of a BrandCaptcha client.
type Settings struct {
	PublicKey      string
	PrivateKey     string
	Host           string        `validate:"required"`
	Port           int           `validate:"min=1,max=65535"`
	ConnectTimeout time.Duration `validate:"gt=0"`
	RequestTimeout time.Duration `validate:"gt=0"`
	Transport      string        `validate:"oneof=tcp unix iouring"`
	UnixSocket     string        `validate:"required_if=Transport unix"`
}

// Load reads Settings from src. Keys the source does not know keep their
// defaults; keys are optional here and enforced where they are used.
func Load(src Source) (*Settings, error) {
	s := &Settings{
		Host:           brandcaptcha.DefaultAPIHost,
		Port:           brandcaptcha.DefaultPort,
		ConnectTimeout: brandcaptcha.DefaultConnectTimeout,
		RequestTimeout: brandcaptcha.DefaultRequestTimeout,
		Transport:      TransportTCP,
	}

	// Keys are visited in a fixed order so the first bad one is always the one reported
	textKeys := []struct {
		key string
		dst *string
	}{
		{KeyPublicKey, &s.PublicKey},
		{KeyPrivateKey, &s.PrivateKey},
		{KeyHost, &s.Host},
		{KeyTransport, &s.Transport},
		{KeyUnixSocket, &s.UnixSocket},
	}
	for _, k := range textKeys {
		val, ok, err := lookup(src, k.key)
		if err != nil {
			return nil, err
		}
		if ok {
			*k.dst = val
		}
	}

	if val, ok, err := lookup(src, KeyPort); err != nil {
		return nil, err
	} else if ok {
		port, err := strconv.Atoi(val)
		if err != nil {
			return nil, invalidSetting(KeyPort, val, err)
		}
		s.Port = port
	}

	durations := []struct {
		key string
		dst *time.Duration
	}{
		{KeyConnectTimeout, &s.ConnectTimeout},
		{KeyRequestTimeout, &s.RequestTimeout},
	}
	for _, k := range durations {
		val, ok, err := lookup(src, k.key)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		d, err := time.ParseDuration(val)
		if err != nil {
			return nil, invalidSetting(k.key, val, err)
		}
		*k.dst = d
	}

	if err := validate.Struct(s); err != nil {
		return nil, bcerrors.NewConfigurationError(bcerrors.ConfigErrorInvalidSetting, err.Error())
	}

	return s, nil
}

// ClientOptions translates the settings into brandcaptcha client options.
func (s *Settings) ClientOptions() []brandcaptcha.Option {
	options := []brandcaptcha.Option{
		brandcaptcha.WithHost(s.Host),
		brandcaptcha.WithPort(s.Port),
		brandcaptcha.WithConnectTimeout(s.ConnectTimeout),
		brandcaptcha.WithRequestTimeout(s.RequestTimeout),
	}

	switch s.Transport {
	case TransportUnix:
		options = append(options, brandcaptcha.WithTransport(transport.Unix(s.UnixSocket)))
	case TransportIOURing:
		options = append(options, brandcaptcha.WithTransport(transport.IOURing(s.ConnectTimeout)))
	}

	return options
}

func lookup(src Source, key string) (string, bool, error) {
	val, err := src.Get(key)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("failed to load %s from %s source: %w", key, src.Name(), err)
	}
	return val, true, nil
}

func invalidSetting(key, val string, err error) error {
	return &bcerrors.Error{
		Type:          bcerrors.ErrorConfiguration,
		ConfigErr:     bcerrors.ConfigErrorInvalidSetting,
		Message:       fmt.Sprintf("%s=%q", key, val),
		UnderlyingErr: err,
	}
}
