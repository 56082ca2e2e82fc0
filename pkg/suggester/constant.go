package suggester

const (
	// AllFields fans a simple query out to every field of the index.
	AllFields = "_all"

	DEFAULT_ANALYZER         = "standard"
	DEFAULT_FUZZY_MAX_EDITS  = 1
	DEFAULT_FUZZY_PREFIX     = 1
	DEFAULT_FUZZY_MIN_LENGTH = 3
	DEFAULT_REFRESH_WORKERS  = 4
)
