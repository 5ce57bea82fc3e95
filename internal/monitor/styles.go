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

package monitor

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/tombee/farmvibes/pkg/client"
)

var (
	styleDone      = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))  // green
	styleRunning   = lipgloss.NewStyle().Foreground(lipgloss.Color("39"))  // blue
	styleWaiting   = lipgloss.NewStyle().Foreground(lipgloss.Color("245")) // gray
	styleFailed    = lipgloss.NewStyle().Foreground(lipgloss.Color("196")) // red
	styleCancelled = lipgloss.NewStyle().Foreground(lipgloss.Color("214")) // orange

	styleTitle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39"))
	styleLabel  = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	styleHeader = lipgloss.NewStyle().Bold(true)
	styleWarn   = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
)

const symbolWarn = "⚠"

func statusStyle(s client.RunStatus) lipgloss.Style {
	switch s {
	case client.StatusDone:
		return styleDone
	case client.StatusRunning:
		return styleRunning
	case client.StatusFailed:
		return styleFailed
	case client.StatusCancelled, client.StatusCancelling:
		return styleCancelled
	default:
		return styleWaiting
	}
}
