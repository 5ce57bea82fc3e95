// Copyright 2025 Tom Barlow
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package shared

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"golang.org/x/term"
)

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// Spinner shows an animated message with elapsed time while a command
// blocks on the service. Without a terminal it prints the message once.
type Spinner struct {
	mu        sync.Mutex
	out       io.Writer
	message   string
	startTime time.Time
	active    bool
	done      chan struct{}
	frameIdx  int
	isTTY     bool
}

// NewSpinner creates a spinner writing to out.
func NewSpinner(out io.Writer) *Spinner {
	isTTY := false
	if f, ok := out.(*os.File); ok {
		isTTY = term.IsTerminal(int(f.Fd()))
	}
	return &Spinner{out: out, isTTY: isTTY}
}

// Start begins the animation. Calling Start on an active spinner is a no-op.
func (s *Spinner) Start(message string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.active {
		return
	}

	s.message = message
	s.startTime = time.Now()
	s.active = true
	s.done = make(chan struct{})
	s.frameIdx = 0

	if !s.isTTY {
		fmt.Fprintln(s.out, message)
		return
	}

	s.render()
	go s.animate()
}

// Stop ends the animation, clears the line and returns the elapsed time.
func (s *Spinner) Stop() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.active {
		return 0
	}

	elapsed := time.Since(s.startTime)
	s.active = false
	close(s.done)

	if s.isTTY {
		fmt.Fprint(s.out, "\r\033[K")
	}
	return elapsed
}

func (s *Spinner) animate() {
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-s.done:
			return
		case <-ticker.C:
			s.mu.Lock()
			if s.active {
				s.frameIdx = (s.frameIdx + 1) % len(spinnerFrames)
				s.render()
			}
			s.mu.Unlock()
		}
	}
}

func (s *Spinner) render() {
	fmt.Fprintf(s.out, "\r\033[K%s %s %s",
		s.message,
		Muted.Render(spinnerFrames[s.frameIdx]),
		Muted.Render("("+FormatElapsed(time.Since(s.startTime))+")"))
}

// FormatElapsed renders d as "42s" or "3m 5s".
func FormatElapsed(d time.Duration) string {
	d = d.Round(time.Second)
	if d < time.Minute {
		return fmt.Sprintf("%ds", int(d.Seconds()))
	}
	minutes := int(d.Minutes())
	seconds := int(d.Seconds()) % 60
	if seconds == 0 {
		return fmt.Sprintf("%dm", minutes)
	}
	return fmt.Sprintf("%dm %ds", minutes, seconds)
}
