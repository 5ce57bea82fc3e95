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

// Package client is the run lifecycle client for a FarmVibes.AI service.
//
// A Client submits workflow runs and returns a *Run handle for each:
//
//	c, err := client.New("http://192.168.49.2:30000/")
//	if err != nil {
//	    return err
//	}
//	run, err := c.Submit(ctx, client.RunRequest{
//	    Workflow:  "helloworld",
//	    Name:      "first run",
//	    Geometry:  orb.Point{-88.06, 37.91},
//	    TimeRange: &client.TimeRange{Start: start, End: end},
//	})
//	if err != nil {
//	    return err
//	}
//	if _, err := run.BlockUntilComplete(ctx, time.Hour); err != nil {
//	    return err
//	}
//	out, err := run.Output(ctx)
//
// Handle reads go to the service until the run reaches a finished state
// (done, failed or cancelled); from then on they are served from the
// handle's cache. Failed HTTP calls are never retried and surface as
// *errors.HTTPError.
//
// Non-fatal conditions such as low disk space on the service are reported
// as Warning values through the client's WarningHandler and any
// WarningRecorder attached to the call context.
package client
