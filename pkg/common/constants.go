package common

const (
	AnalysisKeyPrefix     = "analyses/"
	AnalysisKeyTimeLayout = "20060102_150405.000000000"
	UpcomingDatesKey      = "upcoming_dates.json"

	RedisKeyNamespace = "khabri:"
	RedisIndexKey     = "khabri:index"

	DefaultSessionID = "default"
)
