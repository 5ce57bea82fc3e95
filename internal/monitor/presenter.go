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

// Package monitor renders Run.Monitor frames on a terminal.
package monitor

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"golang.org/x/term"

	"github.com/tombee/farmvibes/pkg/client"
)

// Presenter implements client.Presenter. On a terminal it redraws the frame
// in place; otherwise it prints a frame only when something changed.
type Presenter struct {
	mu          sync.Mutex
	out         io.Writer
	interactive bool
	now         func() time.Time

	lastLines int
	lastKey   string
}

// New creates a Presenter writing to out. Interactive redraw is used when
// out is a terminal.
func New(out io.Writer) *Presenter {
	return &Presenter{
		out:         out,
		interactive: isTerminal(out),
		now:         time.Now,
	}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// Present implements client.Presenter.
func (p *Presenter) Present(frame client.MonitorFrame) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.interactive {
		key := frameKey(frame)
		if key == p.lastKey && !frame.Final {
			return
		}
		p.lastKey = key
	}

	text := Render(frame, p.now())

	if p.interactive && p.lastLines > 0 {
		// Move to the start of the previous frame and clear to the end.
		fmt.Fprintf(p.out, "\x1b[%dA\x1b[J", p.lastLines)
	}
	fmt.Fprint(p.out, text)
	if !p.interactive {
		fmt.Fprintln(p.out)
	}
	p.lastLines = strings.Count(text, "\n")
}

// frameKey summarizes what a static log reader cares about.
func frameKey(f client.MonitorFrame) string {
	var b strings.Builder
	b.WriteString(string(f.Status))
	for _, t := range f.Tasks {
		fmt.Fprintf(&b, "|%s=%s", t.Name, t.Status)
	}
	fmt.Fprintf(&b, "|w%d", len(f.Warnings))
	return b.String()
}

var _ client.Presenter = (*Presenter)(nil)
