package http1

import (
	"bytes"
	"errors"
	"io"
	"unicode/utf8"

	"github.com/indigo-web/httpfront/config"
	"github.com/indigo-web/httpfront/http"
	"github.com/indigo-web/httpfront/http/method"
	"github.com/indigo-web/httpfront/http/proto"
	"github.com/indigo-web/httpfront/http/status"
	"github.com/indigo-web/httpfront/internal/linebuf"
	"github.com/indigo-web/httpfront/internal/uridecode"
	"github.com/indigo-web/httpfront/kv"
	"github.com/indigo-web/utils/uf"
)

type parserState uint8

const (
	eRequestLine parserState = iota + 1
	eHeaders
	eDone
	eFailed
)

// Parser consumes the request head byte by byte. It's reusable, but not concurrently: a
// single parser belongs to a single connection.
type Parser struct {
	state         parserState
	headersNumber int
	cfg           *config.Config
	line          *linebuf.Buffer
	decodeBuff    []byte
}

func NewParser(cfg *config.Config) *Parser {
	// the same buffer holds the request line and then every header line
	lineSize := max(cfg.URI.RequestLineSize.Default, cfg.Headers.LineSize.Default)

	return &Parser{
		cfg:        cfg,
		line:       linebuf.New(lineSize, cfg.URI.RequestLineSize.Maximal),
		decodeBuff: make([]byte, 0, cfg.URI.RequestLineSize.Default),
	}
}

// Parse reads the request line and the header block. It returns either a complete request or
// an error, never both: on error nothing of the partially parsed request escapes. Nothing
// past the empty line terminating the headers is read.
func (p *Parser) Parse(r io.ByteReader) (*http.Request, error) {
	request, err := p.parse(r)
	if err != nil {
		p.state = eFailed
		return nil, err
	}

	p.state = eDone
	return request, nil
}

func (p *Parser) parse(r io.ByteReader) (*http.Request, error) {
	request := http.NewRequest(
		kv.NewPrealloc(p.cfg.Headers.Number.Default),
		kv.NewPrealloc(p.cfg.URI.ParamsPrealloc).CaseSensitive(),
		kv.New(),
	)

	p.state = eRequestLine
	p.headersNumber = 0
	p.line.Limit(p.cfg.URI.RequestLineSize.Maximal)

	for {
		line, err := p.readLine(r)
		if err != nil {
			return nil, err
		}

		switch p.state {
		case eRequestLine:
			if err = p.parseRequestLine(request, line); err != nil {
				return nil, err
			}

			p.state = eHeaders
			p.line.Limit(p.cfg.Headers.LineSize.Maximal)
		case eHeaders:
			if len(line) == 0 {
				return request, nil
			}

			if err = p.parseHeader(request, line); err != nil {
				return nil, err
			}
		default:
			panic("BUG: parser is in a terminal state")
		}
	}
}

// readLine accumulates bytes until LF. The returned line has its terminator stripped and is
// valid until the next call.
func (p *Parser) readLine(r io.ByteReader) ([]byte, error) {
	p.line.Reset()

	for {
		c, err := r.ReadByte()
		if err != nil {
			return nil, ioError(err)
		}

		if !p.line.AppendByte(c) {
			if p.state == eRequestLine {
				return nil, status.ErrTooLongRequestLine
			}

			return nil, status.ErrHeaderFieldsTooLarge
		}

		if c == '\n' {
			break
		}
	}

	line := p.line.Line()
	if !utf8.Valid(line) {
		return nil, status.ErrEncoding
	}

	return line, nil
}

func (p *Parser) parseRequestLine(request *http.Request, line []byte) error {
	sp := bytes.IndexByte(line, ' ')
	if sp == -1 {
		return status.ErrMalformedRequestLine
	}

	methodToken, rest := line[:sp], line[sp+1:]

	sp = bytes.IndexByte(rest, ' ')
	if sp == -1 {
		return status.ErrMalformedRequestLine
	}

	target, versionToken := rest[:sp], rest[sp+1:]
	if len(methodToken) == 0 || len(target) == 0 {
		return status.ErrMalformedRequestLine
	}

	request.Method = method.Parse(uf.B2S(methodToken))
	if request.Method == method.Unknown {
		return status.ErrUnknownMethod
	}

	request.Protocol = proto.FromBytes(versionToken)
	if request.Protocol == proto.Unknown {
		return status.ErrUnsupportedVersion
	}

	return p.parseTarget(request, target)
}

func (p *Parser) parseTarget(request *http.Request, target []byte) error {
	path, query, hasQuery := bytes.Cut(target, []byte{'?'})
	if len(path) == 0 {
		return status.ErrMalformedRequestLine
	}

	decoded, err := uridecode.Decode(path, p.decodeBuff[:0])
	if err != nil {
		return status.Wrap(status.ErrMalformedRequestLine, err)
	}

	if !utf8.Valid(decoded) {
		return status.ErrEncoding
	}

	request.Path = string(decoded)

	if !hasQuery || len(query) == 0 {
		return nil
	}

	return p.parseQuery(request, query)
}

func (p *Parser) parseQuery(request *http.Request, query []byte) error {
	for {
		group, rest, more := bytes.Cut(query, []byte{'&'})

		rawKey, rawValue, found := bytes.Cut(group, []byte{'='})
		if !found {
			return status.ErrMalformedQueryParameter
		}

		key, err := p.decodeQuery(rawKey)
		if err != nil {
			return err
		}

		value, err := p.decodeQuery(rawValue)
		if err != nil {
			return err
		}

		request.Query.Set(key, value)

		if !more {
			return nil
		}

		query = rest
	}
}

func (p *Parser) decodeQuery(raw []byte) (string, error) {
	decoded, err := uridecode.DecodeQuery(raw, p.decodeBuff[:0])
	if err != nil {
		return "", status.Wrap(status.ErrMalformedQueryParameter, err)
	}

	if !utf8.Valid(decoded) {
		return "", status.ErrEncoding
	}

	return string(decoded), nil
}

// parseHeader splits the line at the first colon. A name which is empty or contains a space
// or a tab is rejected as well, as such a name is read differently by different servers.
func (p *Parser) parseHeader(request *http.Request, line []byte) error {
	key, value, found := bytes.Cut(line, []byte{':'})
	if !found || len(key) == 0 || bytes.ContainsAny(key, " \t") {
		return status.ErrMalformedHeader
	}

	if p.headersNumber++; p.headersNumber > p.cfg.Headers.Number.Maximal {
		return status.ErrTooManyHeaders
	}

	request.Headers.Set(string(key), string(trimPrefixSpaces(value)))

	return nil
}

// ioError normalizes errors of the reader. Readers built on transport.Client already
// classify their failures, the rest (e.g. a plain io.EOF) are I/O failures.
func ioError(err error) error {
	if errors.Is(err, status.ErrIO) || errors.Is(err, status.ErrTimeout) {
		return err
	}

	return status.Wrap(status.ErrIO, err)
}

func trimPrefixSpaces(b []byte) []byte {
	for i, char := range b {
		if char != ' ' && char != '\t' {
			return b[i:]
		}
	}

	return b[:0]
}
