package tts

import (
	"bytes"
	"fmt"
	"time"

	"github.com/hajimehoshi/go-mp3"
)

// AudioDuration decodes an MP3 stream and returns its playback length.
func AudioDuration(audio []byte) (time.Duration, error) {
	dec, err := mp3.NewDecoder(bytes.NewReader(audio))
	if err != nil {
		return 0, fmt.Errorf("decode mp3: %w", err)
	}
	rate := dec.SampleRate()
	if rate <= 0 {
		return 0, fmt.Errorf("invalid sample rate %d", rate)
	}
	// 解码输出为 16 位双声道，每个采样帧 4 字节
	frames := dec.Length() / 4
	return time.Duration(frames) * time.Second / time.Duration(rate), nil
}
