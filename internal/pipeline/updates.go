package pipeline

import "fmt"

// ProgressUpdate represents a progress event during a stage run.
//
// Used to send real-time updates to the CLI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
}

// Operation phase enumeration
type Phase int

const (
	ExportCollection Phase = iota
	ExportRegistry
	ExportStorage
	TransformCollection
	ImportBatch
	ValidateCollection
)

func (p Phase) String() string {
	switch p {
	case ExportCollection:
		return "export_collection"
	case ExportRegistry:
		return "export_registry"
	case ExportStorage:
		return "export_storage"
	case TransformCollection:
		return "transform_collection"
	case ImportBatch:
		return "import_batch"
	case ValidateCollection:
		return "validate_collection"
	default:
		return ""
	}
}

// sendProgress sends a progress update through the channel without blocking.
// Uses select with default so progress reporting never blocks a stage.
func sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}

func exportingCollectionUpdate(step, total int, name string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ExportCollection,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] Exporting %s...", step, total, name),
	}
}

func exportRegistryUpdate(step, total int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ExportRegistry,
		Step:    step,
		Total:   total,
		Message: "Enumerating auth provider user registry...",
	}
}

func exportStorageUpdate(step, total int, bucket string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ExportStorage,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] Listing bucket %s...", step, total, bucket),
	}
}

func transformCollectionUpdate(step, total int, name string, count int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   TransformCollection,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] Transformed %s (%d records)", step, total, name, count),
	}
}

func importBatchUpdate(step, total int, name string, batch, batches int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ImportBatch,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("%s: batch %d/%d", name, batch, batches),
	}
}

func validateCollectionUpdate(step, total int, name string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ValidateCollection,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] Validating %s...", step, total, name),
	}
}
