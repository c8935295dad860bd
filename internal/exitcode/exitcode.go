package exitcode

const (
	Success         = 0
	UsageError      = 1
	ValidationError = 2
	DBConnError     = 3
	IngestError     = 4
	RenderError     = 5
	JobFailed       = 6
	StoreError      = 7
)
