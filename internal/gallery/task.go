package gallery

import (
	"context"

	"github.com/fhluo/xpic/internal/wallpaper"
	"github.com/fhluo/xpic/pkg/bing"
)

// Task is the pending result of RefreshAsync.
type Task struct {
	market bing.Market
	done   chan struct{}
	images []wallpaper.Image
	err    error
}

func newTask(market bing.Market) *Task {
	return &Task{market: market, done: make(chan struct{})}
}

func (t *Task) finish(images []wallpaper.Image, err error) {
	t.images, t.err = images, err
	close(t.done)
}

// Market returns the market being refreshed.
func (t *Task) Market() bing.Market { return t.market }

// Done is closed once the result is available.
func (t *Task) Done() <-chan struct{} { return t.done }

// Wait blocks until the task finishes or ctx ends. Giving up on a task does
// not stop the refresh behind it.
func (t *Task) Wait(ctx context.Context) ([]wallpaper.Image, error) {
	select {
	case <-t.done:
		return t.images, t.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
