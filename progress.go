package gensi

// Stage identifies a phase of a processing run.
type Stage string

// Run stages, in order of occurrence. StageError is terminal and
// reachable from any step.
const (
	StageParsing  Stage = "parsing"
	StageCover    Stage = "cover"
	StageIndex    Stage = "index"
	StageArticle  Stage = "article"
	StageBuilding Stage = "building"
	StageDone     Stage = "done"
	StageError    Stage = "error"
)

// Progress is one event in the run's progress stream. Current and Total
// are meaningful for the article stage, where Current increases
// monotonically across the whole run rather than resetting per group.
type Progress struct {
	Stage   Stage
	Current int
	Total   int
	Message string
}

// ProgressFunc receives progress events as a run proceeds. May be nil.
type ProgressFunc func(Progress)
