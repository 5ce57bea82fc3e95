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

package completion

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/spf13/cobra"

	"github.com/tombee/farmvibes/pkg/client"
)

const runCacheTTL = 2 * time.Second

// runCacheEntry holds cached run completions with expiry.
type runCacheEntry struct {
	baseURL   string
	runs      []runInfo
	expiresAt time.Time
}

// runInfo represents a run ID with its description.
type runInfo struct {
	id          string
	status      client.RunStatus
	description string
}

var (
	runCache   *runCacheEntry
	runCacheMu sync.RWMutex
)

// CompleteRunIDs completes run ids with "workflow: name (status)" as the
// description. Results are cached for two seconds.
func CompleteRunIDs(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	return completeRuns(cmd, args, toComplete, false)
}

// CompleteActiveRunIDs completes only runs that have not finished. Used by
// "runs cancel".
func CompleteActiveRunIDs(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	return completeRuns(cmd, args, toComplete, true)
}

func completeRuns(cmd *cobra.Command, args []string, toComplete string, activeOnly bool) ([]string, cobra.ShellCompDirective) {
	return SafeCompletionWrapper(func() ([]string, cobra.ShellCompDirective) {
		runs, err := getRunCompletions(cmd)
		if err != nil {
			return nil, cobra.ShellCompDirectiveNoFileComp
		}

		completions := make([]string, 0, len(runs))
		for _, r := range runs {
			if activeOnly && r.status.Finished() {
				continue
			}
			if !strings.HasPrefix(r.id, toComplete) || contains(args, r.id) {
				continue
			}
			completions = append(completions, r.id+"\t"+r.description)
		}
		return completions, cobra.ShellCompDirectiveNoFileComp
	})
}

// getRunCompletions fetches the run summaries, reusing a fresh cache entry
// for the same service.
func getRunCompletions(cmd *cobra.Command) ([]runInfo, error) {
	var runs []runInfo
	err := withClient(cmd, func(ctx context.Context, c *client.Client) error {
		runCacheMu.RLock()
		cached := runCache
		runCacheMu.RUnlock()
		if cached != nil && cached.baseURL == c.BaseURL() && time.Now().Before(cached.expiresAt) {
			runs = cached.runs
			return nil
		}

		rows, err := c.ListRuns(ctx, nil, nil)
		if err != nil {
			return err
		}
		runs = summarize(rows)

		runCacheMu.Lock()
		runCache = &runCacheEntry{
			baseURL:   c.BaseURL(),
			runs:      runs,
			expiresAt: time.Now().Add(runCacheTTL),
		}
		runCacheMu.Unlock()
		return nil
	})
	return runs, err
}

func summarize(rows []map[string]any) []runInfo {
	runs := make([]runInfo, 0, len(rows))
	for _, row := range rows {
		id, _ := row["id"].(string)
		if id == "" {
			continue
		}
		status, _ := row["details.status"].(string)
		name, _ := row["name"].(string)

		description := client.WorkflowLabel(row["workflow"])
		if name != "" {
			description += ": " + name
		}
		if status != "" {
			description += " (" + status + ")"
		}

		runs = append(runs, runInfo{
			id:          id,
			status:      client.RunStatus(status),
			description: description,
		})
	}
	return runs
}

func contains(values []string, v string) bool {
	for _, s := range values {
		if s == v {
			return true
		}
	}
	return false
}
