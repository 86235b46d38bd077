/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package ui

import "strings"

// rowCol converts a rune offset in text to a line index and rune column, the
// cursor model of multi-line entry widgets. Offsets past the end clamp.
func rowCol(text string, off int) (row, col int) {
	if off < 0 {
		off = 0
	}
	for _, r := range text {
		if off == 0 {
			break
		}
		off--
		if r == '\n' {
			row++
			col = 0
			continue
		}
		col++
	}
	return row, col
}

// offsetOf is the inverse of rowCol. Columns past a line's end clamp to it.
func offsetOf(text string, row, col int) int {
	lines := strings.Split(text, "\n")
	if row < 0 {
		return 0
	}
	if row >= len(lines) {
		return len([]rune(text))
	}
	off := 0
	for i := 0; i < row; i++ {
		off += len([]rune(lines[i])) + 1
	}
	return off + clamp(col, 0, len([]rune(lines[row])))
}
