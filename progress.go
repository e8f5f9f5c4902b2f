package fsextender

import (
	"errors"
	"io"
	"log/slog"
	"os"
	"sync"

	"github.com/goccy/go-json"

	"github.com/n3okill/fs-extender-sub001/internal/errcode"
)

// EntryType is the kind of entry a progress event describes.
type EntryType string

const (
	EntryFile      EntryType = "file"
	EntryDirectory EntryType = "directory"
)

// ProgressEvent is written to RmOptions.Stream once per processed entry, as one
// JSON document per line.
type ProgressEvent struct {
	Path  string           `json:"path"`
	Type  EntryType        `json:"type"`
	Error *SerializedError `json:"error"`
}

// SerializedError is the JSON form of an error in a progress event.
type SerializedError struct {
	Code    string `json:"code,omitempty"`
	Op      string `json:"op,omitempty"`
	Path    string `json:"path,omitempty"`
	Message string `json:"message"`
}

// Error implements error so a decoded event can be handled like the original.
func (e *SerializedError) Error() string {
	return e.Message
}

// SerializeError converts err for a progress event. It returns nil for a nil error.
func SerializeError(err error) *SerializedError {
	if err == nil {
		return nil
	}
	se := &SerializedError{
		Code:    string(errcode.Of(err)),
		Message: err.Error(),
	}
	var pe *os.PathError
	var le *os.LinkError
	switch {
	case errors.As(err, &pe):
		se.Op, se.Path = pe.Op, pe.Path
	case errors.As(err, &le):
		se.Op, se.Path = le.Op, le.Old
	}
	return se
}

// progressWriter serializes events from concurrent workers onto one stream.
type progressWriter struct {
	mu  sync.Mutex
	enc *json.Encoder
	log *slog.Logger
}

func newProgressWriter(w io.Writer, log *slog.Logger) *progressWriter {
	if w == nil {
		return nil
	}
	return &progressWriter{enc: json.NewEncoder(w), log: log}
}

func (p *progressWriter) emit(path string, typ EntryType, err error) {
	ev := ProgressEvent{Path: path, Type: typ, Error: SerializeError(err)}
	p.mu.Lock()
	defer p.mu.Unlock()
	if werr := p.enc.Encode(ev); werr != nil {
		p.log.Warn("writing progress event", "path", path, "error", werr)
	}
}

// DecodeProgress reads every event from a stream written by Rm or EmptyDir.
func DecodeProgress(r io.Reader) ([]ProgressEvent, error) {
	dec := json.NewDecoder(r)
	var events []ProgressEvent
	for {
		var ev ProgressEvent
		if err := dec.Decode(&ev); err != nil {
			if err == io.EOF {
				return events, nil
			}
			return events, err
		}
		events = append(events, ev)
	}
}
