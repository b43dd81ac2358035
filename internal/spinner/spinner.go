// Package spinner draws a one-line progress animation on a terminal.
package spinner

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/mattn/go-runewidth"
)

// Interval is the time between frames.
const Interval = 80 * time.Millisecond

var frames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// Start animates message on w until the returned stop function is called.
// stop clears the line, leaves the cursor at column 0 and is safe to call
// more than once.
func Start(w io.Writer, message string) (stop func()) {
	done := make(chan struct{})
	cleared := make(chan struct{})
	width := runewidth.StringWidth(message) + 2

	go func() {
		defer close(cleared)
		ticker := time.NewTicker(Interval)
		defer ticker.Stop()

		for i := 0; ; i++ {
			_, _ = fmt.Fprintf(w, "\r%s %s", frames[i%len(frames)], message)
			select {
			case <-done:
				_, _ = fmt.Fprintf(w, "\r%s\r", strings.Repeat(" ", width))
				return
			case <-ticker.C:
			}
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() { close(done) })
		<-cleared
	}
}
