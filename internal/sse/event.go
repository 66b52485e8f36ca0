// Package sse writes Server-Sent Events to HTTP clients.
package sse

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

var ErrStreamingUnsupported = errors.New("response writer does not support streaming")

func wrapNewlines(w io.Writer, prefix, value []byte) (sum int64, err error) {
	if len(value) == 0 {
		return 0, nil
	}
	var n int
	last := 0
	for j := bytes.IndexByte(value, '\n'); j > -1; j = bytes.IndexByte(value[last:], '\n') {
		n, err = w.Write(prefix)
		sum += int64(n)
		if err != nil {
			return sum, err
		}
		n, err = w.Write(value[last : last+j+1])
		sum += int64(n)
		if err != nil {
			return sum, err
		}
		last += j + 1
	}
	n, err = w.Write(prefix)
	sum += int64(n)
	if err != nil {
		return sum, err
	}
	n, err = w.Write(value[last:])
	sum += int64(n)
	if err != nil {
		return sum, err
	}
	n, err = w.Write([]byte("\n"))
	sum += int64(n)
	return sum, err
}

// Event is one message of an event stream. Data that is not a string or
// []byte is encoded as JSON.
type Event struct {
	Name  string
	ID    string
	Retry time.Duration
	Data  interface{}
}

func (e *Event) WriteTo(w io.Writer) (int64, error) {
	sum := int64(0)
	var nint int
	n, err := wrapNewlines(w, []byte("event: "), []byte(e.Name))
	sum += n
	if err != nil {
		return sum, err
	}

	if e.Data != nil {
		var data []byte
		switch v := e.Data.(type) {
		case []byte:
			data = v
		case string:
			data = []byte(v)
		default:
			var err error
			data, err = json.Marshal(e.Data)
			if err != nil {
				return sum, err
			}
		}
		n, err := wrapNewlines(w, []byte("data: "), data)
		sum += n
		if err != nil {
			return sum, err
		}
	}

	n, err = wrapNewlines(w, []byte("id: "), []byte(e.ID))
	sum += n
	if err != nil {
		return sum, err
	}

	if e.Retry != 0 {
		nint, err = fmt.Fprintf(w, "retry: %d\n", int64(e.Retry/time.Millisecond))
		sum += int64(nint)
		if err != nil {
			return sum, err
		}
	}

	nint, err = w.Write([]byte("\n"))
	sum += int64(nint)

	return sum, err
}

func (e *Event) String() string {
	buf := new(strings.Builder)
	_, _ = e.WriteTo(buf)
	return buf.String()
}

// Stream pushes events over an open HTTP response.
type Stream struct {
	w       http.ResponseWriter
	flusher http.Flusher
	seq     int
}

// NewStream sets the event stream headers on w.
func NewStream(w http.ResponseWriter) (*Stream, error) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		return nil, ErrStreamingUnsupported
	}

	h := w.Header()
	h.Set("Content-Type", "text/event-stream")
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")
	h.Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	return &Stream{w: w, flusher: flusher}, nil
}

// Send writes ev, numbering it when it has no id, and flushes.
func (s *Stream) Send(ev *Event) error {
	s.seq++
	if ev.ID == "" {
		ev.ID = fmt.Sprint(s.seq)
	}
	if _, err := ev.WriteTo(s.w); err != nil {
		return err
	}
	s.flusher.Flush()
	return nil
}
