// Copyright 2025 Tessera Insights
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


package core

import "errors"

// Domain validation errors
var (
	// ErrInvalidDocument indicates a SourceDocument failed validation.
	ErrInvalidDocument = errors.New("invalid source document")

	// ErrInvalidChunkRecord indicates a ChunkRecord failed validation.
	ErrInvalidChunkRecord = errors.New("invalid chunk record")

	// ErrEmptyContent indicates the content field is empty.
	ErrEmptyContent = errors.New("content cannot be empty")

	// ErrEmptyURL indicates the URL field is empty.
	ErrEmptyURL = errors.New("url cannot be empty")

	// ErrInvalidChunkIndex indicates a chunk index outside [1, TotalChunks].
	ErrInvalidChunkIndex = errors.New("chunk index out of range")

	// ErrInvalidVectorDim indicates a vector whose length is not EmbeddingDim.
	ErrInvalidVectorDim = errors.New("vector has wrong dimensionality")
)
