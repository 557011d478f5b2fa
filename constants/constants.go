// Package constants vends constants used in various components of ember service, e.g., env var names
package constants

import "time"

const (
	// -------------- env vars --------------
	// common
	EnvVerbose = "EMBER_VERBOSE"
	// stores
	EnvRedisHost   = "REDIS_HOST"
	EnvRedisPort   = "REDIS_PORT"
	EnvRedisPasswd = "REDIS_PASSWD"
	EnvRedisDB     = "REDIS_DB"
	EnvLetterDir   = "EMBER_LETTER_DIR"
	// EnvHostedRuntime marks the process as running on a hosted platform whose
	// local filesystem is ephemeral. Falling back to local files there would
	// hand out links that die with the instance, so the store must refuse.
	EnvHostedRuntime = "EMBER_HOSTED"
	// server
	EnvAppHost            = "EMBER_HOST"
	EnvAppPort            = "EMBER_PORT"
	EnvReqBodySizeMaxByte = "EMBER_REQ_BODY_SIZE_MAX_BYTE"
	EnvReadCacheSize      = "EMBER_READ_CACHE_SIZE"
	// share resolver
	EnvShortenTimeout = "EMBER_SHORTEN_TIMEOUT"
	// sweeper
	EnvSweeperFreq = "EMBER_SWEEPER_FREQ"

	// -------------- letter lifecycle --------------
	// LetterTTL is how long a stored letter stays retrievable.
	LetterTTL = 7 * 24 * time.Hour
	// LetterIDLen is the length of generated short-link ids.
	LetterIDLen = 6
	// PhotoCountMax caps photo attachments per letter so the encoded token
	// stays within safe URL-length bounds even without a short link.
	PhotoCountMax = 3

	// -------------- URL parameters --------------
	// short forms win over the legacy long forms when both are present
	ParamLetter       = "l"
	ParamFrom         = "f"
	ParamLetterLegacy = "letter"
	ParamFromLegacy   = "from"
	ParamError        = "e"

	// -------------- burn timing --------------
	BurnCountdown = 60 * time.Second
	BurnDuration  = 4 * time.Second
	// BurnDoneDelay is the pause between full burn progress and the terminal phase.
	BurnDoneDelay = 200 * time.Millisecond

	// -------------- logging --------------
	LogFieldFuncName  = "funcName"
	LogFieldRequestID = "requestId"
)
