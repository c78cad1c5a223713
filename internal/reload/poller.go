package reload

import (
	"context"
	"time"
)

// StartPolling reloads when the settings file mtime moves forward.
func (w *Watcher) StartPolling(ctx context.Context) {
	ticker := time.NewTicker(w.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if w.changed() {
				w.reload("settings file changed")
			}
		}
	}
}
