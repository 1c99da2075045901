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

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/scopetrace/scopetrace/config"
	"github.com/scopetrace/scopetrace/geometry"
	"github.com/scopetrace/scopetrace/logger"
	"github.com/scopetrace/scopetrace/modalflag"
	"github.com/scopetrace/scopetrace/patterns"
	"github.com/scopetrace/scopetrace/scope"
	"github.com/scopetrace/scopetrace/scope/sdlscope"
	"github.com/scopetrace/scopetrace/session"
	"github.com/scopetrace/scopetrace/statsview"
	"github.com/scopetrace/scopetrace/synth"
	"github.com/scopetrace/scopetrace/trace"
	"github.com/scopetrace/scopetrace/traceplot"
	"github.com/scopetrace/scopetrace/transport"
	"github.com/scopetrace/scopetrace/userinput"
	"github.com/scopetrace/scopetrace/version"
	"github.com/scopetrace/scopetrace/wavwriter"
)

func main() {
	md := &modalflag.Modes{Output: os.Stdout}
	md.NewArgs(os.Args[1:])
	md.AddSubModes("RUN", "PATTERN", "PLOT", "VERSION")

	p, err := md.Parse()
	switch p {
	case modalflag.ParseHelp:
		os.Exit(0)
	case modalflag.ParseError:
		fmt.Printf("* error: %v\n", err)
		os.Exit(10)
	}

	switch md.Mode() {
	case "RUN":
		err = run(md)
	case "PATTERN":
		err = pattern(md)
	case "PLOT":
		err = plotScene(md)
	case "VERSION":
		v := version.Version
		if v == "" {
			v = "development"
		}
		fmt.Printf("scopetrace (%s)\n", v)
	}

	if err != nil {
		fmt.Printf("* error in %s mode: %s\n", md.String(), err)
		os.Exit(20)
	}
}

// interruptContext is cancelled on the first interrupt signal. a second
// interrupt kills the process the normal way.
func interruptContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	intChan := make(chan os.Signal, 1)
	signal.Notify(intChan, os.Interrupt)
	go func() {
		<-intChan
		fmt.Println("\r")
		cancel()
		signal.Reset(os.Interrupt)
	}()
	return ctx, cancel
}

func run(md *modalflag.Modes) error {
	set, err := config.Load()
	if err != nil {
		return err
	}

	md.NewMode()
	endpoint := md.AddString("endpoint", set.Endpoint, "listen for the engine at this endpoint")
	device := md.AddString("device", set.Device, "audio output device")
	rate := md.AddInt("rate", set.SampleRate, "sample rate in Hz")
	amplitude := md.AddFloat64("amplitude", set.Amplitude, "output amplitude, 0.0 to 1.0")
	density := md.AddFloat64("density", set.Density, "sample pairs per unit of beam travel")
	reorder := md.AddBool("reorder", set.Reorder, "reorder path segments to shorten blanking travel")
	wav := md.AddString("wav", set.WAVCapture, "mirror output to wav file")
	nokeys := md.AddBool("nokeys", false, "do not read keyboard input")
	stats := md.AddBool("stats", false, "launch statsview server")
	log := md.AddBool("log", false, "echo debugging log to stdout")

	p, err := md.Parse()
	if err != nil || p != modalflag.ParseContinue {
		return err
	}

	if *log {
		logger.SetEcho(os.Stdout)
	} else {
		logger.SetEcho(nil)
	}

	if *stats {
		if statsview.Available() {
			statsview.Launch(md.Output)
		} else {
			fmt.Println("! statsview not available in this build (requires the statsview build tag)")
		}
	}

	ctx, cancel := interruptContext()
	defer cancel()

	srv, err := transport.Listen(*endpoint, transport.Options{MaxPayload: set.MaxPayload})
	if err != nil {
		return err
	}
	defer srv.Close()
	fmt.Printf("listening for engine at %s\n", srv.Endpoint())

	// unblock Accept() on interrupt
	go func() {
		<-ctx.Done()
		srv.Close()
	}()

	conn, err := srv.Accept()
	if err != nil {
		if ctx.Err() != nil {
			return nil
		}
		return err
	}

	audio, err := sdlscope.New(*device, *rate)
	if err != nil {
		return err
	}
	defer audio.Close()

	var out scope.Output = audio
	if *wav != "" {
		ww := wavwriter.New(*wav, *rate)
		defer ww.Close()
		out = scope.NewTee(audio, ww)
	}

	opts := session.Options{
		View:  geometry.View{Width: set.ViewWidth, Height: set.ViewHeight},
		Trace: trace.Options{Reorder: *reorder},
		Synth: synth.Spec{Density: *density, Amplitude: *amplitude},
	}

	if !*nokeys {
		kb, err := userinput.NewKeyboard(os.Stdin)
		if err != nil {
			// not fatal. play continues without input, which is still
			// useful for demo loops
			logger.Logf("scopetrace", "keyboard unavailable: %v", err)
		} else {
			defer kb.Close()
			opts.Keys = kb.Events
		}
	}

	return session.NewSession(conn, out, opts).Run(ctx)
}

func pattern(md *modalflag.Modes) error {
	set, err := config.Load()
	if err != nil {
		return err
	}

	md.NewMode()
	device := md.AddString("device", set.Device, "audio output device")
	rate := md.AddInt("rate", set.SampleRate, "sample rate in Hz")
	amplitude := md.AddFloat64("amplitude", set.Amplitude, "output amplitude, 0.0 to 1.0")
	density := md.AddFloat64("density", set.Density, "sample pairs per unit of beam travel")
	size := md.AddFloat64("size", patterns.DefaultSize, "pattern size in normalised units")
	duration := md.AddString("duration", "10s", "how long to display the pattern")
	wav := md.AddString("wav", "", "write pattern to wav file instead of the audio device")

	md.AdditionalHelp("Available patterns: square, circle. Useful for checking scope connections\nand calibrating X-Y gain before starting an engine session.")

	p, err := md.Parse()
	if err != nil || p != modalflag.ParseContinue {
		return err
	}

	name := md.GetArg(0)
	if name == "" {
		name = "square"
	}

	path, ok := patterns.Named(name, *size)
	if !ok {
		return fmt.Errorf("unknown pattern (%s)", name)
	}

	dur, err := time.ParseDuration(*duration)
	if err != nil {
		return err
	}

	buf := synth.Synthesize(path, synth.Spec{Density: *density, Amplitude: *amplitude})

	if *wav != "" {
		ww := wavwriter.New(*wav, *rate)
		defer ww.Close()

		// repeat the pattern for the requested duration
		n := int(float64(*rate) * dur.Seconds() / float64(buf.Pairs()))
		if n < 1 {
			n = 1
		}
		return ww.Repeat(buf, n)
	}

	audio, err := sdlscope.New(*device, *rate)
	if err != nil {
		return err
	}
	defer audio.Close()

	if err := audio.Submit(buf); err != nil {
		return err
	}

	fmt.Printf("displaying %s for %s\n", name, dur)

	ctx, cancel := interruptContext()
	defer cancel()

	select {
	case <-time.After(dur):
	case <-ctx.Done():
	}

	return nil
}

// plotScene renders a scene file or a named pattern to a png file.
func plotScene(md *modalflag.Modes) error {
	set, err := config.Load()
	if err != nil {
		return err
	}

	md.NewMode()
	output := md.AddString("o", "trace.png", "output filename")
	reorder := md.AddBool("reorder", set.Reorder, "reorder path segments to shorten blanking travel")

	md.AdditionalHelp("The argument is either the name of a test pattern (square, circle) or the\npath to a file containing one frame of scene geometry as sent by the engine.")

	p, err := md.Parse()
	if err != nil || p != modalflag.ParseContinue {
		return err
	}

	switch len(md.RemainingArgs()) {
	case 0:
		return fmt.Errorf("pattern name or scene file required for %s mode", md)
	case 1:
		// pattern names take precedence over filenames
		path, ok := patterns.Named(md.GetArg(0), 0)
		if !ok {
			payload, err := os.ReadFile(md.GetArg(0))
			if err != nil {
				return err
			}

			view := geometry.View{Width: set.ViewWidth, Height: set.ViewHeight}
			scene, err := geometry.Decode(payload, view)
			if err != nil {
				return err
			}

			path = trace.Plan(scene, view, trace.Options{Reorder: *reorder})
		}

		if err := traceplot.Save(path, *output); err != nil {
			return err
		}
		fmt.Printf("written %s\n", *output)

	default:
		return fmt.Errorf("too many arguments for %s mode", md)
	}

	return nil
}
