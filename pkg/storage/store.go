// Package stores abstracts recording blob storage. The interview keeps
// going whether or not writes here succeed, so implementations only need
// to be honest about errors, not clever about retries.
package stores

import "io"

type Store interface {
	Write(key string, r io.Reader, size int64, contentType string) error
	Read(key string) (io.ReadCloser, int64, error)
	Delete(key string) error
	Exists(key string) (bool, error)
	PublicURL(key string) string
}
