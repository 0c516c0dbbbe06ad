package config

import "time"

type (
	HeadersNumber struct {
		Default int `yaml:"default"`
		Maximal int `yaml:"maximal"`
	}

	HeadersLineSize struct {
		Default int `yaml:"default"`
		Maximal int `yaml:"maximal"`
	}

	NETWriteBufferSize struct {
		Default int `yaml:"default"`
		Maximal int `yaml:"maximal"`
	}

	URIRequestLineSize struct {
		Default int `yaml:"default"`
		Maximal int `yaml:"maximal"`
	}
)

type (
	URI struct {
		// RequestLineSize bounds the buffer accumulating the request line. Please note that
		// it holds the raw (still encoded) request-target, so the decoded path is always shorter.
		RequestLineSize URIRequestLineSize `yaml:"request_line_size"`
		// ParamsPrealloc is the initial capacity of http.Request.Query.
		ParamsPrealloc int `yaml:"params_prealloc"`
	}

	Headers struct {
		// Number is responsible for headers storage size.
		// Default value is an initial size of allocated headers storage.
		// Maximal value is maximum number of headers allowed to be presented
		Number HeadersNumber `yaml:"number"`
		// LineSize limits a single header line, key and value together.
		LineSize HeadersLineSize `yaml:"line_size"`
	}

	NET struct {
		// ReadTimeout bounds every single read from the socket. A client that doesn't send
		// a byte within it is disconnected. Zero disables the bound.
		ReadTimeout time.Duration `yaml:"read_timeout"`
		// RequestTimeout bounds the whole request head, from the moment the connection was
		// accepted to the empty line terminating the headers. Protects against clients
		// trickling one byte at a time. Zero disables the bound.
		RequestTimeout time.Duration `yaml:"request_timeout"`
		// WriteTimeout bounds writing the response.
		WriteTimeout time.Duration `yaml:"write_timeout"`
		// AcceptLoopInterruptPeriod controls how often will the Accept() call be interrupted
		// in order to check whether it's time to stop. Defaults to 5 seconds.
		AcceptLoopInterruptPeriod time.Duration `yaml:"accept_loop_interrupt_period"`
		// WriteBufferSize stores the serialized HTTP response before it's written. A response
		// that doesn't fit the maximal size is still written, but the buffer is dropped afterwards.
		WriteBufferSize NETWriteBufferSize `yaml:"write_buffer_size"`
		// ConnRate is the number of connections per second a single remote IP may open.
		// Zero disables the limit.
		ConnRate float64 `yaml:"conn_rate" test:"nullable"`
		// ConnBurst is the bucket size for ConnRate.
		ConnBurst int `yaml:"conn_burst"`
	}
)

// Config holds limits and timeouts used across the parser, the connection and the host.
//
// You must ALWAYS modify defaults (returned via Default()) and NEVER try to initialize the
// config manually, because most likely this will result in ambiguous errors.
type Config struct {
	URI     URI     `yaml:"uri"`
	Headers Headers `yaml:"headers"`
	NET     NET     `yaml:"net"`
}

// Default returns default config. Those are initially well-balanced, however maximal defaults
// are pretty permitting.
func Default() *Config {
	return &Config{
		URI: URI{
			RequestLineSize: URIRequestLineSize{
				Default: 2 * 1024,
				// allow at most 16kb of request line, which is effectively pretty much tolerant,
				// considering most web-entities limit it to 4-8kb.
				Maximal: 16 * 1024,
			},
			ParamsPrealloc: 5,
		},
		Headers: Headers{
			Number: HeadersNumber{
				Default: 10,
				Maximal: 50,
			},
			LineSize: HeadersLineSize{
				Default: 256,
				Maximal: 8 * 1024, // there might be extremely long cookies.
			},
		},
		NET: NET{
			ReadTimeout:               90 * time.Second,
			RequestTimeout:            30 * time.Second,
			WriteTimeout:              30 * time.Second,
			AcceptLoopInterruptPeriod: 5 * time.Second,
			WriteBufferSize: NETWriteBufferSize{
				Default: 2 * 1024,
				Maximal: 64 * 1024,
			},
			ConnRate:  0,
			ConnBurst: 10,
		},
	}
}
