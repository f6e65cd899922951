// Copyright 2025 Poiesic Systems
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


// Package search answers retrieval queries against a document repository.
//
// A Searcher embeds the query text, gathers candidate documents from
// storage, and hands them to a rank.Ranker for hybrid scoring:
//   - candidates come from the resolved date range (hard temporal mode),
//     the requested source types, or the most recent documents
//   - documents whose embeddings are close to the query are always added
//   - when the query cannot be embedded, ranking falls back to term overlap
//
// Every result carries its confidence and per-signal breakdown.
package search
