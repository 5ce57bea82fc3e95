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
	"github.com/spf13/cobra"
)

// CompleteRunFields provides completion for "runs list --field" values.
func CompleteRunFields(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	return SafeCompletionWrapper(func() ([]string, cobra.ShellCompDirective) {
		fields := []string{
			"id\tRun id",
			"name\tRun name",
			"workflow\tWorkflow name or inline definition",
			"parameters\tWorkflow parameter overrides",
			"user_input\tSubmitted input",
			"details.status\tRun status",
			"details.reason\tFailure reason",
			"details.submission_time\tSubmission time",
			"details.start_time\tStart time",
			"details.end_time\tEnd time",
			"task_details\tPer-task status and timing",
			"spatio_temporal_json\tRegion and time range",
			"output\tEncoded run output",
		}
		return fields, cobra.ShellCompDirectiveNoFileComp
	})
}
