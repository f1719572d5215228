// Command brandcaptcha renders the challenge widget and verifies solutions
// from the command line, using the same configuration an application would.
//
// Usage:
//
//	brandcaptcha widget [-error CODE]
//	brandcaptcha verify -remote-ip IP -challenge C -response R [-param k=v ...]
//
// Keys and endpoint settings come from the environment, an optional .env
// file, or Vault when BRANDCAPTCHA_CONFIG_PROVIDER=vault.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"

	brandcaptcha "github.com/nczempin/brandcaptcha-go"
	"github.com/nczempin/brandcaptcha-go/config"
	"github.com/nczempin/brandcaptcha-go/protocol"
)

const (
	exitValid   = 0
	exitInvalid = 1
	exitError   = 2
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	global := flag.NewFlagSet("brandcaptcha", flag.ContinueOnError)
	global.SetOutput(stderr)
	envFile := global.String("env-file", ".env", "dotenv file to load before reading configuration")
	verbose := global.Bool("v", false, "log debug output to stderr")
	global.Usage = func() {
		fmt.Fprintln(stderr, "usage: brandcaptcha [-env-file FILE] [-v] widget|verify [flags]")
		global.PrintDefaults()
	}
	if err := global.Parse(args); err != nil {
		return exitError
	}
	if global.NArg() == 0 {
		global.Usage()
		return exitError
	}

	level := slog.LevelWarn
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))

	src, err := config.SourceFromEnv(*envFile)
	if err != nil {
		logger.Error("failed to open configuration source", slog.Any("error", err))
		return exitError
	}
	settings, err := config.Load(src)
	if err != nil {
		logger.Error("failed to load configuration", slog.String("source", src.Name()), slog.Any("error", err))
		return exitError
	}

	options := append(settings.ClientOptions(), brandcaptcha.WithLogger(logger))
	client := brandcaptcha.New(options...)

	cmd, rest := global.Arg(0), global.Args()[1:]
	switch cmd {
	case "widget":
		return runWidget(client, settings, rest, stdout, logger)
	case "verify":
		return runVerify(ctx, client, settings, rest, stdout, logger)
	default:
		fmt.Fprintf(stderr, "unknown command %q\n", cmd)
		global.Usage()
		return exitError
	}
}

func runWidget(client *brandcaptcha.Client, settings *config.Settings, args []string, stdout io.Writer, logger *slog.Logger) int {
	fs := flag.NewFlagSet("widget", flag.ContinueOnError)
	errorCode := fs.String("error", "", "error code returned by the previous verification")
	if err := fs.Parse(args); err != nil {
		return exitError
	}

	markup, err := client.ChallengeHTML(settings.PublicKey, brandcaptcha.ErrorCode(*errorCode))
	if err != nil {
		logger.Error("failed to render challenge", slog.Any("error", err))
		return exitError
	}

	fmt.Fprintln(stdout, markup)
	return exitValid
}

// paramFlags collects repeated -param k=v flags in order.
type paramFlags struct {
	params protocol.Params
}

func (p *paramFlags) String() string {
	return p.params.Encode()
}

func (p *paramFlags) Set(v string) error {
	key, value, ok := strings.Cut(v, "=")
	if !ok || key == "" {
		return fmt.Errorf("expected key=value, got %q", v)
	}
	p.params.Set(key, value)
	return nil
}

func runVerify(ctx context.Context, client *brandcaptcha.Client, settings *config.Settings, args []string, stdout io.Writer, logger *slog.Logger) int {
	fs := flag.NewFlagSet("verify", flag.ContinueOnError)
	remoteIP := fs.String("remote-ip", "", "IP address of the user who solved the challenge")
	challenge := fs.String("challenge", "", "challenge token")
	response := fs.String("response", "", "user's answer")
	var extra paramFlags
	fs.Var(&extra, "param", "extra key=value posted with the request (repeatable)")
	if err := fs.Parse(args); err != nil {
		return exitError
	}

	res, err := client.CheckAnswer(ctx, brandcaptcha.VerificationRequest{
		PrivateKey: settings.PrivateKey,
		RemoteIP:   *remoteIP,
		Challenge:  *challenge,
		Response:   *response,
		Extra:      extra.params,
	})
	if err != nil {
		logger.Error("verification failed", slog.Any("error", err))
		return exitError
	}

	if res.Valid {
		fmt.Fprintln(stdout, "valid")
		return exitValid
	}
	fmt.Fprintf(stdout, "invalid %s\n", res.ErrorCode)
	return exitInvalid
}
