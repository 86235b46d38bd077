/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package storage reads and writes canvas documents on disk.
// Writes are transactional (temp file, fsync, rename) and keep the previous
// content as a sibling .bak file.
// It also keeps a small SQLite history of recently exported and imported files
// in the user config directory. The history is disposable and never holds
// document content.
package storage
