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
	"os"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	"github.com/tombee/farmvibes/pkg/client"
)

var (
	// StatusOK styles success indicators
	StatusOK = lipgloss.NewStyle().Foreground(lipgloss.Color("42")) // green

	// StatusWarn styles warning indicators
	StatusWarn = lipgloss.NewStyle().Foreground(lipgloss.Color("214")) // orange

	// StatusError styles error indicators
	StatusError = lipgloss.NewStyle().Foreground(lipgloss.Color("196")) // red

	// StatusInfo styles informational text
	StatusInfo = lipgloss.NewStyle().Foreground(lipgloss.Color("39")) // blue

	// Muted styles secondary text
	Muted = lipgloss.NewStyle().Foreground(lipgloss.Color("245")) // gray

	// Header styles section headers
	Header = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39"))
)

const (
	SymbolOK    = "✓"
	SymbolWarn  = "⚠"
	SymbolError = "✗"
	SymbolInfo  = "•"
)

// ColorEnabled reports whether stdout is a terminal and NO_COLOR is unset.
func ColorEnabled() bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	return term.IsTerminal(int(os.Stdout.Fd()))
}

func RenderOK(msg string) string {
	return StatusOK.Render(SymbolOK) + " " + msg
}

func RenderWarn(msg string) string {
	return StatusWarn.Render(SymbolWarn) + " " + msg
}

func RenderError(msg string) string {
	return StatusError.Render(SymbolError) + " " + msg
}

func RenderLabel(label string) string {
	return Muted.Render(label)
}

// RenderRunStatus colors a run or task status.
func RenderRunStatus(s client.RunStatus) string {
	switch s {
	case client.StatusDone:
		return StatusOK.Render(string(s))
	case client.StatusFailed:
		return StatusError.Render(string(s))
	case client.StatusCancelled, client.StatusCancelling:
		return StatusWarn.Render(string(s))
	case client.StatusRunning:
		return StatusInfo.Render(string(s))
	default:
		return Muted.Render(string(s))
	}
}
