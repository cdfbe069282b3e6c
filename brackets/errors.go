package brackets

import "errors"

// Input errors: the championship settings or the submitted values are malformed.
var (
	ErrInvalidGroupCount = errors.New("group count must be at least 1")
	ErrInvalidQualifiers = errors.New("qualifiers per group must be at least 1")
	ErrNegativeScore     = errors.New("scores must not be negative")
)

// State errors: the operation is not valid for the championship as it currently is.
var (
	ErrNoTeams              = errors.New("no teams assigned to the championship")
	ErrTooManyGroups        = errors.New("group count exceeds the number of teams")
	ErrTooFewTeams          = errors.New("at least two teams are required to build a bracket")
	ErrGroupsLocked         = errors.New("groups cannot be regenerated after the knockout stage has started")
	ErrNotInGroupStage      = errors.New("championship is not in the group stage")
	ErrGroupStageIncomplete = errors.New("group stage incomplete")
	ErrQualifierCount       = errors.New("unsupported qualifier count")
	ErrNotInKnockout        = errors.New("championship is not in the knockout stage")
	ErrNoKnockoutMatches    = errors.New("no knockout matches generated")
	ErrRoundIncomplete      = errors.New("round incomplete")
	ErrKnockoutTie          = errors.New("tie not supported: no penalty or overtime model exists in this system")
	ErrNextRoundExists      = errors.New("next round already exists")
	ErrChampionshipClosed   = errors.New("championship is completed")
	ErrMatchNotReady        = errors.New("match teams are not assigned yet")
	ErrGroupStageClosed     = errors.New("group results cannot change once the knockout stage has started")
	ErrRoundClosed          = errors.New("result cannot change once the next round has been generated")
	ErrMatchNotFound        = errors.New("match not found in championship")
)

// IsInputError reports whether err is caused by malformed input rather than state.
func IsInputError(err error) bool {
	return errors.Is(err, ErrInvalidGroupCount) ||
		errors.Is(err, ErrInvalidQualifiers) ||
		errors.Is(err, ErrNegativeScore)
}
