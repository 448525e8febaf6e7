package audio

import (
	"fmt"
	"log"
	"os"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

const recorderChunk = 4096

// Recorder writes mono 16-bit samples to a WAV file
type Recorder struct {
	file    *os.File
	encoder *wav.Encoder
	buffer  *goaudio.IntBuffer
	written int
	path    string
}

// NewRecorder creates path and prepares a WAV stream at sampleRate
func NewRecorder(path string, sampleRate int) (*Recorder, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create recording: %w", err)
	}

	return &Recorder{
		file:    f,
		encoder: wav.NewEncoder(f, sampleRate, 16, 1, 1),
		buffer: &goaudio.IntBuffer{
			Format:         &goaudio.Format{NumChannels: 1, SampleRate: sampleRate},
			Data:           make([]int, 0, recorderChunk),
			SourceBitDepth: 16,
		},
		path: path,
	}, nil
}

// Write appends one sample in [-1, 1]
func (r *Recorder) Write(sample float64) error {
	r.buffer.Data = append(r.buffer.Data, int(toPCM16(sample)))
	if len(r.buffer.Data) >= recorderChunk {
		return r.flush()
	}
	return nil
}

func (r *Recorder) flush() error {
	if len(r.buffer.Data) == 0 {
		return nil
	}
	if err := r.encoder.Write(r.buffer); err != nil {
		return fmt.Errorf("write recording: %w", err)
	}
	r.written += len(r.buffer.Data)
	r.buffer.Data = r.buffer.Data[:0]
	return nil
}

// Samples returns the number of samples written so far
func (r *Recorder) Samples() int {
	return r.written + len(r.buffer.Data)
}

// Close flushes pending samples and finalises the WAV header
func (r *Recorder) Close() error {
	flushErr := r.flush()
	encErr := r.encoder.Close()
	fileErr := r.file.Close()

	log.Printf("[AUDIO] Recorded %d samples to %s", r.written, r.path)

	switch {
	case flushErr != nil:
		return flushErr
	case encErr != nil:
		return fmt.Errorf("finalise recording: %w", encErr)
	case fileErr != nil:
		return fmt.Errorf("close recording: %w", fileErr)
	}
	return nil
}
