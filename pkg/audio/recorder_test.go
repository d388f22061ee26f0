package audio

import (
	"encoding/binary"
	"testing"
)

func TestRecorderWAV(t *testing.T) {
	r := NewRecorder(16000)
	r.Append(Chunk{Samples: []int16{1, 2, 3, 4}, SampleRate: 16000})
	r.Append(Chunk{Samples: []int16{5, 6}, SampleRate: 16000})

	if r.Len() != 12 {
		t.Errorf("expected 12 PCM bytes, got %d", r.Len())
	}

	wav := r.WAV()
	if string(wav[0:4]) != "RIFF" || string(wav[8:12]) != "WAVE" {
		t.Fatal("missing RIFF/WAVE header")
	}
	rate := binary.LittleEndian.Uint32(wav[24:28])
	if rate != 16000 {
		t.Errorf("expected sample rate 16000, got %d", rate)
	}
	dataLen := binary.LittleEndian.Uint32(wav[40:44])
	if dataLen != 12 {
		t.Errorf("expected data length 12, got %d", dataLen)
	}
	if len(wav) != 44+12 {
		t.Errorf("expected 56 bytes total, got %d", len(wav))
	}
}

func TestRecorderReset(t *testing.T) {
	r := NewRecorder(16000)
	r.Append(Chunk{Samples: []int16{1, 2}, SampleRate: 16000})
	r.Reset()
	if r.Len() != 0 {
		t.Errorf("expected empty after reset, got %d", r.Len())
	}
}
