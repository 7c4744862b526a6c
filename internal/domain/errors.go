package domain

import "errors"

var (
	// ErrTeamNotFound is returned when an operation names an unknown team.
	ErrTeamNotFound = errors.New("team not found")
	// ErrTeamFinished is returned when a team has already answered every question.
	ErrTeamFinished = errors.New("team has finished")
	// ErrBlankTeamName rejects empty registrations.
	ErrBlankTeamName = errors.New("please enter a team name")
	// ErrDuplicateTeamName rejects a name already taken, ignoring case.
	ErrDuplicateTeamName = errors.New("team name already exists")
	// ErrTeamNameTooLong rejects names over MaxTeamNameLength runes.
	ErrTeamNameTooLong = errors.New("team name is too long")
	// ErrNoTeams is returned when starting a game nobody has joined.
	ErrNoTeams = errors.New("at least one team is required")
	// ErrGameInProgress guards operations that would break team progress.
	ErrGameInProgress = errors.New("game in progress")
	// ErrGameStarted refuses setup-only actions once the game is running.
	ErrGameStarted = errors.New("game already started")
	// ErrInvalidPattern marks an answer pattern that does not compile.
	ErrInvalidPattern = errors.New("invalid answer pattern")
	// ErrInvalidCredentials is the admin login failure.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrUnauthorized is returned for admin calls without a valid token.
	ErrUnauthorized = errors.New("admin login required")
)
