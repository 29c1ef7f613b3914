package services

// DisciplineOptions returns the discipline choices offered on new spaces.
var DisciplineOptions = []string{
	"mechanical",
	"plumbing",
	"electrical",
	"structural",
}

// PhaseOptions returns the fee-bearing phases of a proposal.
var PhaseOptions = []string{PhaseDesign, PhaseConstruction}

// LevelDirectionOptions returns the valid insertion directions for new or
// duplicated levels.
var LevelDirectionOptions = []Direction{DirectionUp, DirectionDown, DirectionSame}

// ConstructionType is a reference project type with its relative cost
// index, used to prefill space cost figures.
type ConstructionType struct {
	ID                string
	ProjectType       string
	RelativeCostIndex float64
}
