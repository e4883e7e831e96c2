package terminal

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"weather-app/geolocation"
)

// Input reads lines from r on a background goroutine so the UI loop can
// select on input alongside other events. While a prompt is waiting for an
// answer the next line goes to the prompt instead of the line channel.
type Input struct {
	lines chan string
	done  chan struct{}
	wake  chan struct{}

	mu      sync.Mutex
	pending chan string
}

// NewInput starts reading r. The line channel is closed at EOF.
func NewInput(r io.Reader) *Input {
	in := &Input{
		lines: make(chan string),
		done:  make(chan struct{}),
		wake:  make(chan struct{}, 1),
	}
	go func() {
		defer close(in.lines)
		defer close(in.done)
		scanner := bufio.NewScanner(r)
		for scanner.Scan() {
			in.deliver(scanner.Text())
		}
	}()
	return in
}

// deliver hands line to the waiting prompt, or else to the line channel.
// A prompt registered while line is being offered still gets it.
func (in *Input) deliver(line string) {
	for {
		in.mu.Lock()
		if answer := in.pending; answer != nil {
			in.pending = nil
			in.mu.Unlock()
			answer <- line
			return
		}
		in.mu.Unlock()

		select {
		case in.lines <- line:
			return
		case <-in.wake:
		}
	}
}

// Lines returns the input line channel
func (in *Input) Lines() <-chan string {
	return in.lines
}

// next registers a pending answer and blocks for it. It returns io.EOF
// once input is exhausted.
func (in *Input) next(ctx context.Context, ask func()) (string, error) {
	answer := make(chan string, 1)

	in.mu.Lock()
	in.pending = answer
	in.mu.Unlock()
	defer func() {
		in.mu.Lock()
		if in.pending == answer {
			in.pending = nil
		}
		in.mu.Unlock()
	}()

	select {
	case in.wake <- struct{}{}:
	default:
	}
	ask()

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case line := <-answer:
		return line, nil
	case <-in.done:
		select {
		case line := <-answer:
			return line, nil
		default:
			return "", io.EOF
		}
	}
}

// Prompter asks yes/no questions on out and reads the answer from the
// next input line. Anything but y/yes is a no.
func (in *Input) Prompter(out io.Writer) geolocation.Prompter {
	return func(ctx context.Context, question string) (bool, error) {
		line, err := in.next(ctx, func() {
			fmt.Fprintf(out, "%s [y/N] ", question)
		})
		if err != nil {
			return false, err
		}
		switch strings.ToLower(strings.TrimSpace(line)) {
		case "y", "yes":
			return true, nil
		default:
			return false, nil
		}
	}
}
