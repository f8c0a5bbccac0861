package types

// PipelineState is the caller visible lifecycle of a knowledge base holder
type PipelineState string

const (
	PipelineStateNoIndex    PipelineState = "NO_INDEX"
	PipelineStateIndexReady PipelineState = "INDEX_READY"
	PipelineStateGenerating PipelineState = "GENERATING"
)

func (s PipelineState) String() string {
	return string(s)
}
