package activities

import "knowbase/internal/models"

type ListFilesInput struct {
	InputDir string `json:"input_dir"`
}

type ListFilesOutput struct {
	Paths []string `json:"paths"`
}

type ExtractTextInput struct {
	Path string `json:"path"`
}

type ExtractTextOutput struct {
	Text string `json:"text"`
}

type ChunkTextInput struct {
	Domain       string `json:"domain"`
	Filename     string `json:"filename"`
	Text         string `json:"text"`
	ChunkSize    int    `json:"chunk_size"`
	ChunkOverlap int    `json:"chunk_overlap"`
}

type ChunkTextOutput struct {
	Chunks []models.DocumentChunk `json:"chunks"`
}

type EmbedChunksInput struct {
	Operation string   `json:"operation"`
	Inputs    []string `json:"inputs"`
}

type EmbedChunksOutput struct {
	Vectors      [][]float32 `json:"vectors"`
	ProviderName string      `json:"provider_name"`
	Model        string      `json:"model"`
}

type IndexChunksInput struct {
	Chunks  []models.DocumentChunk `json:"chunks"`
	Vectors [][]float32            `json:"vectors"`
}

type IndexChunksOutput struct {
	Indexed int `json:"indexed"`
}

type WriteChunkArtifactsInput struct {
	Domain   string                 `json:"domain"`
	Filename string                 `json:"filename"`
	Chunks   []models.DocumentChunk `json:"chunks"`
}
