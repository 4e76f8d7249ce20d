package workflows

type BatchIngestInput struct {
	Domain                string   `json:"domain"`
	InputDir              string   `json:"input_dir"`
	Paths                 []string `json:"paths"`
	ChunkSize             int      `json:"chunk_size"`
	ChunkOverlap          int      `json:"chunk_overlap"`
	MaxConcurrentChildren int      `json:"max_concurrent_children"`
}

type BatchIngestProgress struct {
	Domain        string            `json:"domain"`
	Total         int               `json:"total"`
	Done          int               `json:"done"`
	Failed        int               `json:"failed"`
	Skipped       int               `json:"skipped"`
	ChunksIndexed int               `json:"chunks_indexed"`
	PerFile       map[string]string `json:"per_file"`
}

type BatchIngestResult struct {
	Domain        string `json:"domain"`
	Total         int    `json:"total"`
	Done          int    `json:"done"`
	Failed        int    `json:"failed"`
	Skipped       int    `json:"skipped"`
	ChunksIndexed int    `json:"chunks_indexed"`
}

type DocumentIngestInput struct {
	Domain       string `json:"domain"`
	Path         string `json:"path"`
	ChunkSize    int    `json:"chunk_size"`
	ChunkOverlap int    `json:"chunk_overlap"`
}

type DocumentIngestResult struct {
	Status     string `json:"status"`
	ChunkCount int    `json:"chunk_count"`
}
