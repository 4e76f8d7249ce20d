package workflows

import (
	"path/filepath"
	"strings"
	"time"

	"knowbase/internal/activities"
	"knowbase/internal/models"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"
)

const QueryGetProgress = "GetProgress"

// BatchIngestWorkflow sweeps one domain folder, fanning each file out to a
// DocumentIngestWorkflow child in bounded batches. Files that cannot yield
// text are counted as skipped, not failed, so one scanned-image PDF does not
// poison a reindex run.
func BatchIngestWorkflow(ctx workflow.Context, input BatchIngestInput) (BatchIngestResult, error) {
	progress := BatchIngestProgress{
		Domain:  input.Domain,
		PerFile: map[string]string{},
	}
	if err := workflow.SetQueryHandler(ctx, QueryGetProgress, func() (BatchIngestProgress, error) {
		return progress, nil
	}); err != nil {
		return BatchIngestResult{}, err
	}

	ao := workflow.ActivityOptions{
		StartToCloseTimeout: 2 * time.Minute,
		RetryPolicy: &temporal.RetryPolicy{
			InitialInterval:    2 * time.Second,
			BackoffCoefficient: 2,
			MaximumInterval:    20 * time.Second,
			MaximumAttempts:    3,
		},
	}
	ctx = workflow.WithActivityOptions(ctx, ao)

	paths := input.Paths
	if len(paths) == 0 {
		var listOut activities.ListFilesOutput
		if err := workflow.ExecuteActivity(ctx, "ListFilesActivity", activities.ListFilesInput{InputDir: input.InputDir}).Get(ctx, &listOut); err != nil {
			return BatchIngestResult{}, err
		}
		paths = listOut.Paths
	}
	progress.Total = len(paths)

	maxChildren := input.MaxConcurrentChildren
	if maxChildren <= 0 {
		maxChildren = 3
	}

	for i := 0; i < len(paths); i += maxChildren {
		end := i + maxChildren
		if end > len(paths) {
			end = len(paths)
		}
		futures := make([]workflow.ChildWorkflowFuture, 0, end-i)
		childPaths := make([]string, 0, end-i)
		for _, path := range paths[i:end] {
			progress.PerFile[path] = "processing"
			workflowID := "doc-" + sanitizeID(input.Domain) + "-" + sanitizeID(filepath.Base(path))
			cwo := workflow.ChildWorkflowOptions{WorkflowID: workflowID}
			childCtx := workflow.WithChildOptions(ctx, cwo)
			f := workflow.ExecuteChildWorkflow(childCtx, DocumentIngestWorkflow, DocumentIngestInput{
				Domain:       input.Domain,
				Path:         path,
				ChunkSize:    input.ChunkSize,
				ChunkOverlap: input.ChunkOverlap,
			})
			futures = append(futures, f)
			childPaths = append(childPaths, path)
		}

		for idx, f := range futures {
			var childResult DocumentIngestResult
			err := f.Get(ctx, &childResult)
			path := childPaths[idx]
			if err != nil {
				progress.Failed++
				progress.PerFile[path] = "failed"
				continue
			}
			switch childResult.Status {
			case "skipped":
				progress.Skipped++
			case "failed":
				progress.Failed++
			default:
				progress.Done++
				progress.ChunksIndexed += childResult.ChunkCount
			}
			progress.PerFile[path] = childResult.Status
		}
	}

	return BatchIngestResult{
		Domain:        input.Domain,
		Total:         progress.Total,
		Done:          progress.Done,
		Failed:        progress.Failed,
		Skipped:       progress.Skipped,
		ChunksIndexed: progress.ChunksIndexed,
	}, nil
}

// DocumentIngestWorkflow runs one file through extract, chunk, embed, index
// and artifact steps.
func DocumentIngestWorkflow(ctx workflow.Context, input DocumentIngestInput) (DocumentIngestResult, error) {
	ao := workflow.ActivityOptions{
		StartToCloseTimeout: 5 * time.Minute,
		RetryPolicy: &temporal.RetryPolicy{
			InitialInterval:    2 * time.Second,
			BackoffCoefficient: 2,
			MaximumInterval:    20 * time.Second,
			MaximumAttempts:    2,
		},
	}
	ctx = workflow.WithActivityOptions(ctx, ao)
	filename := filepath.Base(input.Path)

	var textOut activities.ExtractTextOutput
	if err := workflow.ExecuteActivity(ctx, "ExtractTextActivity", activities.ExtractTextInput{Path: input.Path}).Get(ctx, &textOut); err != nil {
		if isSkippableExtractError(err) {
			return DocumentIngestResult{Status: "skipped"}, nil
		}
		return DocumentIngestResult{}, err
	}

	var chunkOut activities.ChunkTextOutput
	if err := workflow.ExecuteActivity(ctx, "ChunkTextActivity", activities.ChunkTextInput{
		Domain:       input.Domain,
		Filename:     filename,
		Text:         textOut.Text,
		ChunkSize:    input.ChunkSize,
		ChunkOverlap: input.ChunkOverlap,
	}).Get(ctx, &chunkOut); err != nil {
		return DocumentIngestResult{}, err
	}
	if len(chunkOut.Chunks) == 0 {
		return DocumentIngestResult{Status: "skipped"}, nil
	}

	var embedOut activities.EmbedChunksOutput
	if err := workflow.ExecuteActivity(ctx, "EmbedChunksActivity", activities.EmbedChunksInput{
		Operation: "ingest_embed",
		Inputs:    chunkTexts(chunkOut.Chunks),
	}).Get(ctx, &embedOut); err != nil {
		return DocumentIngestResult{}, err
	}

	var indexOut activities.IndexChunksOutput
	if err := workflow.ExecuteActivity(ctx, "IndexChunksActivity", activities.IndexChunksInput{
		Chunks:  chunkOut.Chunks,
		Vectors: embedOut.Vectors,
	}).Get(ctx, &indexOut); err != nil {
		return DocumentIngestResult{}, err
	}

	// Artifact output is best effort.
	_ = workflow.ExecuteActivity(ctx, "WriteChunkArtifactsActivity", activities.WriteChunkArtifactsInput{
		Domain:   input.Domain,
		Filename: filename,
		Chunks:   chunkOut.Chunks,
	}).Get(ctx, nil)

	return DocumentIngestResult{Status: "indexed", ChunkCount: indexOut.Indexed}, nil
}

func chunkTexts(chunks []models.DocumentChunk) []string {
	out := make([]string, 0, len(chunks))
	for _, c := range chunks {
		out = append(out, c.Text)
	}
	return out
}

func isSkippableExtractError(err error) bool {
	e := strings.ToLower(err.Error())
	return strings.Contains(e, "no extractable text") || strings.Contains(e, "unsupported file type")
}

func sanitizeID(s string) string {
	s = strings.ToLower(s)
	s = strings.ReplaceAll(s, "_", "-")
	s = strings.ReplaceAll(s, ".", "-")
	s = strings.ReplaceAll(s, "/", "-")
	return s
}
