package notify

import (
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type Level string

const (
	LevelError   Level = "error"
	LevelWarning Level = "warning"
	LevelSuccess Level = "success"
	LevelInfo    Level = "info"
)

// Notification is a user-visible message.
type Notification struct {
	Title string
	Text  string
	Level Level
	At    time.Time
}

// Notifier delivers notifications to the user. Implementations must not block.
type Notifier interface {
	Notify(n Notification)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(n Notification)

func (f NotifierFunc) Notify(n Notification) { f(n) }

// Discard drops every notification. Used where the caller reports failures itself.
var Discard Notifier = NotifierFunc(func(Notification) {})

// Error builds the notification raised for a failed request.
func Error(text string) Notification {
	return Notification{Title: "Error", Text: text, Level: LevelError, At: time.Now()}
}

func Warning(title, text string) Notification {
	return Notification{Title: title, Text: text, Level: LevelWarning, At: time.Now()}
}

func Success(title, text string) Notification {
	return Notification{Title: title, Text: text, Level: LevelSuccess, At: time.Now()}
}

// LogNotifier writes notifications to a zerolog logger; the CLI's way of
// showing them.
type LogNotifier struct {
	logger zerolog.Logger
}

func NewLogNotifier(logger zerolog.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

// Default logs through the global logger.
func Default() *LogNotifier {
	return NewLogNotifier(log.Logger)
}

func (l *LogNotifier) Notify(n Notification) {
	var ev *zerolog.Event
	switch n.Level {
	case LevelError:
		ev = l.logger.Error()
	case LevelWarning:
		ev = l.logger.Warn()
	default:
		ev = l.logger.Info()
	}
	ev.Str("title", n.Title).Msg(n.Text)
}

// Recorder keeps every notification; tests use it to count and inspect them.
type Recorder struct {
	mu    sync.Mutex
	items []Notification
}

func (r *Recorder) Notify(n Notification) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items = append(r.items, n)
}

func (r *Recorder) All() []Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Notification(nil), r.items...)
}

func (r *Recorder) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.items)
}

// Last returns the most recent notification, if any.
func (r *Recorder) Last() (Notification, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.items) == 0 {
		return Notification{}, false
	}
	return r.items[len(r.items)-1], true
}
