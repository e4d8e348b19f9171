// Copyright 2026 Poiesic Systems
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


// Package ingest turns filesystem trees into indexed documents.
//
// The Scanner walks a directory, skipping VCS and build artifacts, and
// maps known file extensions to documents with content type and
// language metadata. The Pipeline feeds scanned documents through a
// retrieval engine with bounded parallelism; individual document
// failures are logged and counted rather than aborting the run.
package ingest
