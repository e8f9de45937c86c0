package datapak

// ProgressStage identifies the current phase of a Builder.Build call.
type ProgressStage int

const (
	// StageEnumerating names the directory-walk phase of AddDirectory.
	// Builder does not report it: AddDirectory emits no progress events.
	StageEnumerating ProgressStage = iota

	// StageCompressing indicates a file's bytes are being compressed and
	// appended to the data region.
	StageCompressing

	// StageWritingDirectory indicates the directory table is being
	// written after all data has been appended.
	StageWritingDirectory
)

// ProgressEvent reports one step of a Builder.Build call.
type ProgressEvent struct {
	Stage      ProgressStage
	Path       string
	FilesDone  int
	FilesTotal int
}

// ProgressFunc receives progress updates during Build. Implementations
// must be safe to call from the single goroutine driving Build; Build
// itself never calls it concurrently.
type ProgressFunc func(ProgressEvent)
