/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package canvas

// CursorState is the selection of the active field captured right before an edit.
// It lives only until the follow-up task restores it.
type CursorState struct {
	Field Field
	Start int
	End   int
}

// Handle is the surface-side control bound to one field. Offsets are in runes.
type Handle interface {
	// Selection returns the current selection; Start == End for a plain caret.
	Selection() (start, end int)
	// Select places the selection. Implementations clamp out-of-range offsets.
	Select(start, end int)
	// Focus gives the control input focus.
	Focus()
}

// Scheduler runs a task after the current input event has been handled.
// Tasks must run in the order they were scheduled.
type Scheduler interface {
	Schedule(task func())
}

// Queue is a FIFO Scheduler drained explicitly by the event loop that owns it.
// It is not safe for concurrent use.
type Queue struct {
	tasks []func()
}

func (q *Queue) Schedule(task func()) { q.tasks = append(q.tasks, task) }

// Len returns the number of pending tasks.
func (q *Queue) Len() int { return len(q.tasks) }

// Run executes pending tasks, including ones scheduled while running, and returns
// how many ran.
func (q *Queue) Run() int {
	n := 0
	for len(q.tasks) > 0 {
		task := q.tasks[0]
		q.tasks[0] = nil
		q.tasks = q.tasks[1:]
		task()
		n++
	}
	return n
}

// Immediate runs each task as soon as it is scheduled. Since the manager schedules
// only after mutating, ordering is preserved.
type Immediate struct{}

func (Immediate) Schedule(task func()) { task() }
