package cli

var (
	RunGenerate         = runGenerate
	RunRecover          = runRecover
	ChunkIndexConfig    = chunkIndexConfig
	ReadDocuments       = readDocuments
	ErrGenerationFailed = errGenerationFailed
)
