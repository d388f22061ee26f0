package audio

import (
	"bytes"
	"encoding/binary"
	"sync"
)

// Recorder accumulates the raw audio of one session so the summary
// workflow can hand a complete recording to the bulk transcriber.
// Reset at every session boundary.
type Recorder struct {
	mu         sync.Mutex
	pcm        []byte
	sampleRate int
}

// NewRecorder creates a recorder for sampleRate audio.
func NewRecorder(sampleRate int) *Recorder {
	return &Recorder{sampleRate: sampleRate}
}

// Append adds a chunk to the session recording.
func (r *Recorder) Append(c Chunk) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pcm = append(r.pcm, c.Bytes()...)
}

// Len returns the recorded PCM byte count.
func (r *Recorder) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.pcm)
}

// Reset discards the current recording.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pcm = nil
}

// WAV renders the recording as a mono PCM16 WAV blob.
func (r *Recorder) WAV() []byte {
	r.mu.Lock()
	pcm := make([]byte, len(r.pcm))
	copy(pcm, r.pcm)
	rate := r.sampleRate
	r.mu.Unlock()

	var buf bytes.Buffer
	byteRate := rate * 2 // mono, 16-bit

	buf.WriteString("RIFF")
	binary.Write(&buf, binary.LittleEndian, uint32(36+len(pcm)))
	buf.WriteString("WAVE")
	buf.WriteString("fmt ")
	binary.Write(&buf, binary.LittleEndian, uint32(16))
	binary.Write(&buf, binary.LittleEndian, uint16(1)) // PCM
	binary.Write(&buf, binary.LittleEndian, uint16(1)) // mono
	binary.Write(&buf, binary.LittleEndian, uint32(rate))
	binary.Write(&buf, binary.LittleEndian, uint32(byteRate))
	binary.Write(&buf, binary.LittleEndian, uint16(2))  // block align
	binary.Write(&buf, binary.LittleEndian, uint16(16)) // bits per sample
	buf.WriteString("data")
	binary.Write(&buf, binary.LittleEndian, uint32(len(pcm)))
	buf.Write(pcm)

	return buf.Bytes()
}

// ChunkWAV renders a single chunk as a WAV blob. The low-latency
// transcription path sends one chunk at a time.
func ChunkWAV(c Chunk) []byte {
	r := NewRecorder(c.SampleRate)
	r.Append(c)
	return r.WAV()
}
