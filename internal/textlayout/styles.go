/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package textlayout

// TextStyle is a named font preset for canvas output. Leading is extra px per line.
type TextStyle struct {
	Name    string
	Font    FontSpec
	Leading float64
}

var builtinStyles = map[string]TextStyle{
	"Label": {
		Name: "Label",
		Font: FontSpec{Family: DefaultFamily, SizePt: 13, Weight: 700},
	},
	"Body": {
		Name:    "Body",
		Font:    FontSpec{Family: DefaultFamily, SizePt: 12, Weight: 400},
		Leading: 2,
	},
	"Placeholder": {
		Name:    "Placeholder",
		Font:    FontSpec{Family: DefaultFamily, SizePt: 11, Weight: 400},
		Leading: 2,
	},
}

// GetStyle returns a builtin style preset by name.
func GetStyle(name string) (TextStyle, bool) { s, ok := builtinStyles[name]; return s, ok }

// ListStyles lists the builtin style names in stable order.
func ListStyles() []string { return []string{"Label", "Body", "Placeholder"} }

// Scaled returns a copy of s with the font size multiplied by k.
func (s TextStyle) Scaled(k float64) TextStyle {
	if k > 0 {
		s.Font.SizePt *= k
		s.Leading *= k
	}
	return s
}
