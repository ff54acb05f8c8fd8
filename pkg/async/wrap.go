package async

import "github.com/rs/zerolog/log"

// ErrAble runs fn on its own goroutine and exposes its error through
// the returned channel.
func ErrAble(fn func() error) <-chan error {
	ch := make(chan error)
	go func() {
		ch <- fn()
		close(ch)
	}()
	return ch
}

// Guard runs fn and recovers any panic so background actors, timer
// callbacks in particular, cannot take the whole process down.
func Guard(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Any("panic", r).Msg("panic recovered in background task")
		}
	}()
	fn()
}
