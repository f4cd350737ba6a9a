// Package datasource defines the input boundary: a named, readable byte
// stream. Implementations live in subpackages (file, httpds); Bytes covers
// in-memory content such as HTTP uploads.
package datasource

import (
	"bytes"
	"context"
	"io"
	"strings"

	"eda/internal/datasource/file"
	"eda/internal/datasource/httpds"
)

// Source opens a readable stream. Name identifies the source in errors and
// logs, and its extension selects the parser format.
type Source interface {
	Name() string
	Open(ctx context.Context) (io.ReadCloser, error)
}

// Bytes is an in-memory Source.
type Bytes struct {
	name string
	data []byte
}

// FromBytes returns a Source serving data under name.
func FromBytes(name string, data []byte) *Bytes { return &Bytes{name: name, data: data} }

func (b *Bytes) Name() string { return b.name }

func (b *Bytes) Open(ctx context.Context) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return io.NopCloser(bytes.NewReader(b.data)), nil
}

// Resolve maps a location to a Source: http(s) URLs use client, anything
// else is a local path. An empty location resolves to nil so callers can
// report missing input.
func Resolve(loc string, client *httpds.Client) Source {
	loc = strings.TrimSpace(loc)
	switch {
	case loc == "":
		return nil
	case strings.HasPrefix(loc, "http://"), strings.HasPrefix(loc, "https://"):
		if client == nil {
			client = httpds.NewClient(httpds.Config{})
		}
		return httpds.NewSource(client, loc)
	default:
		return file.NewLocal(loc)
	}
}
