package httpclient

import (
	"context"
	"io"
	"sync"
)

// cancelOnClose releases the timeout context that Do created once the caller
// is done with the body, so streaming reads are not cut short.
type cancelOnClose struct {
	io.ReadCloser
	cancel context.CancelFunc
	once   sync.Once
}

func (b *cancelOnClose) Close() error {
	err := b.ReadCloser.Close()
	b.once.Do(b.cancel)
	return err
}
