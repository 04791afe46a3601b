package watch

import (
	"testing"

	"github.com/fsnotify/fsnotify"
)

func TestShouldIgnoreEventFiltersLockAndChmod(t *testing.T) {
	cases := []struct {
		event  fsnotify.Event
		ignore bool
	}{
		{fsnotify.Event{Name: "README", Op: fsnotify.Write}, false},
		{fsnotify.Event{Name: "README", Op: fsnotify.Chmod}, true},
		{fsnotify.Event{Name: ".dircache/index.lock", Op: fsnotify.Write}, true},
		{fsnotify.Event{Name: ".dircache", Op: fsnotify.Write}, true},
		{fsnotify.Event{Name: "src/main.go", Op: fsnotify.Create}, false},
	}
	for _, c := range cases {
		if got := shouldIgnoreEvent(c.event); got != c.ignore {
			t.Errorf("shouldIgnoreEvent(%+v) = %v, want %v", c.event, got, c.ignore)
		}
	}
}
