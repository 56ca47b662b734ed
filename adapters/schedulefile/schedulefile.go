// Package schedulefile persists resampling schedules as newline-delimited
// JSON: one resample (a JSON array of indices) per line, in generation
// order, with no header. Readers stop at end of stream.
package schedulefile

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"gosigtest/domain/schedule"
)

// Writer appends resamples to a stream.
type Writer struct {
	bw  *bufio.Writer
	enc *json.Encoder
	n   int
}

// NewWriter creates a writer on w. Call Flush when done.
func NewWriter(w io.Writer) *Writer {
	bw := bufio.NewWriter(w)
	return &Writer{bw: bw, enc: json.NewEncoder(bw)}
}

// Write encodes one resample as a single line.
func (w *Writer) Write(r schedule.Resample) error {
	if err := w.enc.Encode(r); err != nil {
		return fmt.Errorf("write resample %d: %w", w.n, err)
	}
	w.n++
	return nil
}

// WriteAll writes every resample of s in order.
func (w *Writer) WriteAll(s schedule.Schedule) error {
	for _, r := range s {
		if err := w.Write(r); err != nil {
			return err
		}
	}
	return nil
}

// Flush writes buffered data to the underlying writer.
func (w *Writer) Flush() error { return w.bw.Flush() }

// Count returns the number of resamples written.
func (w *Writer) Count() int { return w.n }

// Reader streams resamples back.
type Reader struct {
	dec *json.Decoder
	n   int
}

// NewReader creates a reader on r.
func NewReader(r io.Reader) *Reader {
	return &Reader{dec: json.NewDecoder(bufio.NewReader(r))}
}

// Next returns the next resample, or io.EOF once the stream is exhausted.
func (r *Reader) Next() (schedule.Resample, error) {
	var out schedule.Resample
	if err := r.dec.Decode(&out); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, io.EOF
		}
		return nil, fmt.Errorf("read resample %d: %w", r.n, err)
	}
	r.n++
	return out, nil
}

// ReadAll drains the stream into a schedule.
func (r *Reader) ReadAll() (schedule.Schedule, error) {
	var s schedule.Schedule
	for {
		res, err := r.Next()
		if errors.Is(err, io.EOF) {
			return s, nil
		}
		if err != nil {
			return nil, err
		}
		s = append(s, res)
	}
}

// Save writes s to path, truncating any existing file.
func Save(path string, s schedule.Schedule) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	w := NewWriter(f)
	if err := w.WriteAll(s); err != nil {
		f.Close()
		return err
	}
	if err := w.Flush(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// Load reads and validates the schedule stored at path.
func Load(path string) (schedule.Schedule, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	s, err := NewReader(f).ReadAll()
	if err != nil {
		return nil, err
	}
	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("schedule %s: %w", path, err)
	}
	return s, nil
}
