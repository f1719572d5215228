package protocol

import (
	"bytes"
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/nczempin/brandcaptcha-go/errors"
	"github.com/nczempin/brandcaptcha-go/transport"
)

// DefaultMaxResponseSize caps the bytes accepted from the peer for one response.
const DefaultMaxResponseSize = 64 << 10

// readChunkSize is roughly one TCP/IP packet.
const readChunkSize = 1160

var (
	headerSeparator  = []byte("\r\n\r\n")
	contentLengthKey = []byte("content-length:")
)

// Http10Protocol implements HTTP/1.0 request framing over a transport.
// It reads until Content-Length bytes of body arrived or, without that
// header, until the peer closes the connection.
type Http10Protocol struct {
	transport       transport.Transport
	buffer          []byte
	headerSize      int
	contentLength   int
	maxResponseSize int
}

// NewHttp10Protocol creates a new HTTP/1.0 protocol handler
func NewHttp10Protocol(t transport.Transport, maxResponseSize int) *Http10Protocol {
	if maxResponseSize <= 0 {
		maxResponseSize = DefaultMaxResponseSize
	}
	return &Http10Protocol{
		transport:       t,
		buffer:          make([]byte, 0, 1024),
		contentLength:   -1,
		maxResponseSize: maxResponseSize,
	}
}

// NewFormPost builds the form POST sent to the verification endpoint
func NewFormPost(host, path string, params Params, userAgent string) *HttpRequest {
	body := []byte(params.Encode())
	return &HttpRequest{
		Path: path,
		Headers: []HttpHeader{
			{Key: "Host", Value: host},
			{Key: "Content-Type", Value: "application/x-www-form-urlencoded"},
			{Key: "Content-Length", Value: strconv.Itoa(len(body))},
			{Key: "User-Agent", Value: userAgent},
		},
		Body: body,
	}
}

// Connect establishes a connection to the specified host and port
func (p *Http10Protocol) Connect(ctx context.Context, host string, port int) error {
	return p.transport.Connect(ctx, host, port)
}

// Disconnect closes the connection
func (p *Http10Protocol) Disconnect() error {
	return p.transport.Close()
}

// buildRequest formats an HTTP request into the internal buffer
func (p *Http10Protocol) buildRequest(req *HttpRequest) {
	p.buffer = p.buffer[:0]

	p.buffer = append(p.buffer, fmt.Sprintf("POST %s HTTP/1.0\r\n", req.Path)...)
	for _, header := range req.Headers {
		p.buffer = append(p.buffer, fmt.Sprintf("%s: %s\r\n", header.Key, header.Value)...)
	}
	p.buffer = append(p.buffer, "\r\n"...)
	p.buffer = append(p.buffer, req.Body...)
}

func (p *Http10Protocol) writeRequest() error {
	for written := 0; written < len(p.buffer); {
		n, err := p.transport.Write(p.buffer[written:])
		if err != nil {
			return err
		}
		written += n
	}
	return nil
}

// readFullResponse reads the complete HTTP response into the buffer
func (p *Http10Protocol) readFullResponse() error {
	p.buffer = p.buffer[:0]
	p.headerSize = 0
	p.contentLength = -1

	readBuf := make([]byte, readChunkSize)

	for {
		n, err := p.transport.Read(readBuf)
		p.buffer = append(p.buffer, readBuf[:n]...)

		// A read may hand over its last bytes together with the close
		if len(p.buffer) > p.maxResponseSize {
			return errors.NewProtocolError(
				errors.ProtocolErrorMessageTooLarge,
				fmt.Sprintf("response exceeds %d bytes", p.maxResponseSize),
			)
		}

		// Look for header separator if we haven't found it yet
		if p.headerSize == 0 {
			if pos := bytes.Index(p.buffer, headerSeparator); pos >= 0 {
				p.headerSize = pos + len(headerSeparator)
				p.contentLength = parseContentLength(p.buffer[:pos])
			}
		}

		if p.contentLength >= 0 && len(p.buffer) >= p.headerSize+p.contentLength {
			return nil
		}

		if err != nil {
			if errors.IsTransportCode(err, errors.TransportErrorConnectionClosed) {
				if p.contentLength >= 0 {
					return errors.NewProtocolError(
						errors.ProtocolErrorIncompleteResponse,
						fmt.Sprintf("connection closed after %d of %d body bytes", len(p.buffer)-p.headerSize, p.contentLength),
					)
				}
				return nil
			}
			return err
		}
	}
}

// parseContentLength extracts Content-Length from headers, -1 when absent or invalid
func parseContentLength(headersView []byte) int {
	lines := bytes.Split(headersView, []byte("\n"))
	for _, line := range lines[1:] { // Skip status line
		line = bytes.TrimSuffix(line, []byte("\r"))
		if len(line) < len(contentLengthKey) {
			continue
		}

		if bytes.EqualFold(line[:len(contentLengthKey)], contentLengthKey) {
			valueStr := strings.TrimSpace(string(line[len(contentLengthKey):]))
			if length, err := strconv.Atoi(valueStr); err == nil && length >= 0 {
				return length
			}
		}
	}
	return -1
}

// parseResponse splits the buffer into a RawResponse, copying all data
func (p *Http10Protocol) parseResponse() (*RawResponse, error) {
	if p.headerSize == 0 {
		return &RawResponse{Body: bytes.Clone(p.buffer)}, nil
	}

	headersBlock := p.buffer[:p.headerSize-len(headerSeparator)]

	// Split into status line and rest of headers
	parts := bytes.SplitN(headersBlock, []byte("\n"), 2)
	statusLine := bytes.TrimSuffix(parts[0], []byte("\r"))

	// Parse status line: "HTTP/1.0 200 OK"
	statusParts := bytes.SplitN(statusLine, []byte(" "), 3)
	if len(statusParts) < 2 || !bytes.HasPrefix(statusParts[0], []byte("HTTP/")) {
		return nil, errors.NewProtocolError(
			errors.ProtocolErrorInvalidStatusLine,
			fmt.Sprintf("invalid status line %q", statusLine),
		)
	}

	statusCode, err := strconv.Atoi(string(statusParts[1]))
	if err != nil {
		return nil, errors.NewProtocolError(
			errors.ProtocolErrorInvalidStatusLine,
			fmt.Sprintf("invalid status code: %s", statusParts[1]),
		)
	}

	statusMessage := ""
	if len(statusParts) >= 3 {
		statusMessage = string(statusParts[2])
	}

	var headers []HttpHeader
	if len(parts) > 1 {
		for _, line := range bytes.Split(parts[1], []byte("\n")) {
			line = bytes.TrimSuffix(line, []byte("\r"))
			if len(line) == 0 {
				continue
			}

			headerParts := bytes.SplitN(line, []byte(":"), 2)
			if len(headerParts) != 2 {
				return nil, errors.NewProtocolError(
					errors.ProtocolErrorInvalidHeader,
					fmt.Sprintf("malformed header line %q", line),
				)
			}
			headers = append(headers, HttpHeader{
				Key:   string(headerParts[0]),
				Value: strings.TrimSpace(string(headerParts[1])),
			})
		}
	}

	var body []byte
	if p.contentLength >= 0 {
		body = p.buffer[p.headerSize : p.headerSize+p.contentLength]
	} else {
		body = p.buffer[p.headerSize:]
	}

	return &RawResponse{
		StatusCode:    statusCode,
		StatusMessage: statusMessage,
		Headers:       headers,
		HeaderBlock:   bytes.Clone(headersBlock),
		Body:          bytes.Clone(body),
	}, nil
}

// PerformRequest writes the request and reads the full response
func (p *Http10Protocol) PerformRequest(req *HttpRequest) (*RawResponse, error) {
	p.buildRequest(req)

	if err := p.writeRequest(); err != nil {
		return nil, err
	}

	if err := p.readFullResponse(); err != nil {
		return nil, err
	}

	return p.parseResponse()
}
