// Package audio provides the capture-side audio plumbing for the
// diary engine: fixed-duration PCM16 chunks, a bounded drop-oldest
// buffer between the capture collaborator and the analysis loop, and
// an optional whole-session recorder.
package audio

// Chunk represents one fixed-duration frame of captured audio.
type Chunk struct {
	// Samples contains PCM16 mono audio samples (little-endian).
	Samples []int16

	// SampleRate is the sample rate of this chunk in Hz.
	SampleRate int
}

// Bytes returns the raw little-endian bytes of the chunk.
func (c *Chunk) Bytes() []byte {
	buf := make([]byte, len(c.Samples)*2)
	for i, s := range c.Samples {
		buf[i*2] = byte(s)
		buf[i*2+1] = byte(s >> 8)
	}
	return buf
}

// FromBytes populates the chunk from raw PCM16 bytes.
func (c *Chunk) FromBytes(data []byte, sampleRate int) {
	c.SampleRate = sampleRate
	c.Samples = make([]int16, len(data)/2)
	for i := range c.Samples {
		c.Samples[i] = int16(data[i*2]) | int16(data[i*2+1])<<8
	}
}

// Duration returns the chunk length in seconds.
func (c *Chunk) Duration() float64 {
	if c.SampleRate == 0 {
		return 0
	}
	return float64(len(c.Samples)) / float64(c.SampleRate)
}
