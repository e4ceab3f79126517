package intent

import "errors"

// Kind selects which extraction the service performs. Each kind carries its
// own prompt template and fixed sampling parameters.
type Kind string

const (
	KindAddress        Kind = "address"
	KindDetailedIntent Kind = "detailed_intent"
)

// StopSequence terminates every completion regardless of kind.
const StopSequence = "#END"

// ErrUnknownKind is returned when an extraction is requested for a kind the
// service has no configuration for. It fails before any network call.
var ErrUnknownKind = errors.New("unknown intent kind")

// KindConfig is the per-kind tuple of prompt template and sampling settings.
// Callers cannot override these at request time.
type KindConfig struct {
	Template         *PromptTemplate
	MaxOutputTokens  int
	Temperature      float64
	FrequencyPenalty float64
}

// Sampling defaults per kind. Presence penalty and top_p are fixed at 0 and 1
// for all kinds.
const (
	AddressTemperature             = 0.1
	AddressFrequencyPenalty        = 0.3
	DetailedIntentTemperature      = 0.0
	DetailedIntentFrequencyPenalty = 0.0
)
