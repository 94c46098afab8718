package offline

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"strconv"
)

const offlineMessage = "Content not available offline. Please check your internet connection."

const offlineHTML = `<!DOCTYPE html>
<html>
  <head>
    <title>Offline - Chronicle</title>
    <meta charset="utf-8">
    <meta name="viewport" content="width=device-width, initial-scale=1">
  </head>
  <body>
    <div style="text-align: center; padding: 50px; font-family: Arial, sans-serif;">
      <h1>You're Offline</h1>
      <p>Some content may not be available without an internet connection.</p>
      <p>Please check your connection and try again.</p>
    </div>
  </body>
</html>
`

// OfflineError is the body of the synthetic 503 answer.
type OfflineError struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func offlineAPIResponse(req *http.Request) *http.Response {
	body, _ := json.Marshal(OfflineError{Error: "Offline", Message: offlineMessage})
	return synthetic(req, http.StatusServiceUnavailable, "application/json", body)
}

func offlinePage(req *http.Request) *http.Response {
	return synthetic(req, http.StatusOK, "text/html", []byte(offlineHTML))
}

func synthetic(req *http.Request, status int, contentType string, body []byte) *http.Response {
	return &http.Response{
		Status:     strconv.Itoa(status) + " " + http.StatusText(status),
		StatusCode: status,
		Proto:      "HTTP/1.1",
		ProtoMajor: 1,
		ProtoMinor: 1,
		Header: http.Header{
			"Content-Type":   {contentType},
			"Content-Length": {strconv.Itoa(len(body))},
		},
		Body:          io.NopCloser(bytes.NewReader(body)),
		ContentLength: int64(len(body)),
		Request:       req,
	}
}
