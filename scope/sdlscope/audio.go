// This file is part of ScopeTrace.
//
// ScopeTrace is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// ScopeTrace is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with ScopeTrace.  If not, see <https://www.gnu.org/licenses/>.

// Package sdlscope drives the sound card through SDL. The left channel
// carries the beam's X deflection and the right channel its Y deflection;
// the sound card's two DACs are, for our purposes, the scope's X and Y
// amplifiers.
package sdlscope

import (
	"encoding/binary"
	"math"
	"sync"
	"time"

	"github.com/veandco/go-sdl2/sdl"

	"github.com/scopetrace/scopetrace/curated"
	"github.com/scopetrace/scopetrace/logger"
	"github.com/scopetrace/scopetrace/scope"
	"github.com/scopetrace/scopetrace/synth"
)

// AudioDeviceError is the pattern for a device that cannot be opened or has
// entered a fault state. Fatal: without the device there is no display.
const AudioDeviceError = "audio device error: %v"

// number of interleaved samples queued to the device per refill. at 44.1kHz
// a chunk of 2048 samples is around 23ms of deflection, which keeps the lag
// between a new frame arriving and it reaching the beam tolerable without
// risking an underrun between refills.
const chunkLength = 2048

// refill when the device queue drops below this many bytes. two chunks of
// headroom has proved enough on every device tried.
const lowWater = 2 * chunkLength * 4

// Audio outputs the sample stream using SDL. It implements the scope.Output
// interface.
type Audio struct {
	id   sdl.AudioDeviceID
	spec sdl.AudioSpec

	sink *scope.Sink

	chunk []float32
	raw   []byte

	closeOnce sync.Once
	quit      chan struct{}
	stopped   chan struct{}
}

// New opens the audio device and starts feeding it. An empty device name
// selects the system default. A device that cannot be opened is a fatal
// AudioDeviceError.
func New(device string, sampleRate int) (*Audio, error) {
	if err := sdl.InitSubSystem(sdl.INIT_AUDIO); err != nil {
		return nil, curated.Errorf(AudioDeviceError, err)
	}

	aud := &Audio{
		sink:    scope.NewSink(),
		chunk:   make([]float32, chunkLength),
		raw:     make([]byte, chunkLength*4),
		quit:    make(chan struct{}),
		stopped: make(chan struct{}),
	}

	request := &sdl.AudioSpec{
		Freq:     int32(sampleRate),
		Format:   sdl.AUDIO_F32LSB,
		Channels: 2,
		Samples:  uint16(chunkLength / 2),
	}

	var err error
	aud.id, err = sdl.OpenAudioDevice(device, false, request, &aud.spec, 0)
	if err != nil {
		return nil, curated.Errorf(AudioDeviceError, err)
	}

	if aud.spec.Freq != request.Freq || aud.spec.Format != request.Format || aud.spec.Channels != 2 {
		sdl.CloseAudioDevice(aud.id)
		return nil, curated.Errorf(AudioDeviceError, "device refused stereo float stream")
	}

	logger.Logf("sdlscope", "opened audio device at %dHz", aud.spec.Freq)

	sdl.PauseAudioDevice(aud.id, false)
	go aud.feed()

	return aud, nil
}

// feed keeps the device queue topped up at the pace of the device's own
// clock. The queue length is the only timing signal needed: when it drops
// below the low-water mark the device is about to want more samples.
func (aud *Audio) feed() {
	defer close(aud.stopped)

	// half a chunk's worth of playback time
	pause := time.Duration(chunkLength/2) * time.Second / time.Duration(aud.spec.Freq*2)

	for {
		select {
		case <-aud.quit:
			return
		default:
		}

		if sdl.GetQueuedAudioSize(aud.id) >= lowWater {
			time.Sleep(pause)
			continue
		}

		aud.sink.Pull(aud.chunk)
		for i, v := range aud.chunk {
			binary.LittleEndian.PutUint32(aud.raw[i*4:], math.Float32bits(v))
		}

		if err := sdl.QueueAudio(aud.id, aud.raw); err != nil {
			logger.Logf("sdlscope", "queue: %v", err)
			time.Sleep(pause)
		}
	}
}

// Submit implements the scope.Output interface. The buffer reaches the beam
// at the next frame boundary.
func (aud *Audio) Submit(buf synth.Buffer) error {
	return aud.sink.Submit(buf)
}

// Close implements the scope.Output interface. Idempotent.
func (aud *Audio) Close() error {
	aud.closeOnce.Do(func() {
		close(aud.quit)
		<-aud.stopped
		sdl.ClearQueuedAudio(aud.id)
		sdl.CloseAudioDevice(aud.id)
	})
	return nil
}
