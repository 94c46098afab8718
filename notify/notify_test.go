package notify_test

import (
	"bytes"
	"testing"

	"github.com/jrsteele09/go-cms-client/notify"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func TestLogNotifier(t *testing.T) {
	var buf bytes.Buffer
	n := notify.NewLogNotifier(zerolog.New(&buf))

	n.Notify(notify.Error("Request failed"))
	require.Contains(t, buf.String(), `"level":"error"`)
	require.Contains(t, buf.String(), `"title":"Error"`)
	require.Contains(t, buf.String(), `"message":"Request failed"`)

	buf.Reset()
	n.Notify(notify.Warning("Text too short", "Please enter at least 10 characters"))
	require.Contains(t, buf.String(), `"level":"warn"`)
}

func TestRecorder(t *testing.T) {
	var r notify.Recorder
	_, ok := r.Last()
	require.False(t, ok)

	var n notify.Notifier = &r
	n.Notify(notify.Success("Saved", "ok"))
	n.Notify(notify.Error("boom"))

	require.Equal(t, 2, r.Count())
	last, ok := r.Last()
	require.True(t, ok)
	require.Equal(t, notify.LevelError, last.Level)
	require.Len(t, r.All(), 2)

	var got string
	notify.NotifierFunc(func(n notify.Notification) { got = n.Text }).Notify(notify.Error("x"))
	require.Equal(t, "x", got)
}
