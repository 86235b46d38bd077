//go:build !fyne

/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package ui

import (
	"leancanvas/internal/config"
	applog "leancanvas/internal/log"
)

// Run starts the editor. Builds without the fyne tag have no desktop window, so
// this opens the terminal editor instead. Pass an optional document to open.
func Run(path string, cfg config.AppConfig) error {
	applog.WithComponent("ui").Info("desktop UI not built (-tags fyne); starting terminal editor")
	return RunTerminal(path, cfg)
}
