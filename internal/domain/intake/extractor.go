package intake

import (
	"encoding/json"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// The intake agent is instructed (via its system prompt) to answer with a
// single JSON object: {"message": ..., "ucs": [...], "score": ..., "metadata": {...}}.
// Models routinely wrap that object in prose or a fenced code block, or emit
// something that is almost-but-not-quite JSON, so extraction is layered:
// fenced block, then widest brace span, then strict parse, then a lossy
// regex salvage of individual fields. The extractor is total: it never
// fails, it degrades to the zero-value record.

// ExtractionMode names which recovery path produced a record.
type ExtractionMode string

const (
	ModeStrict   ExtractionMode = "strict"
	ModeFallback ExtractionMode = "fallback"
	ModeEmpty    ExtractionMode = "empty"
)

// ExtractedResponse is the well-typed intake record recovered from one raw
// completion. Facts carries the "ucs" field of the wire contract.
type ExtractedResponse struct {
	Message  string
	Facts    []string
	Score    float64
	Metadata map[string]any
	Mode     ExtractionMode
}

// Identity metadata keys required before contract generation may proceed.
const (
	MetadataEmployerAddress = "employer_address"
	MetadataCoworkerAddress = "coworker_address"
)

var (
	fencedJSONRe = regexp.MustCompile("(?s)```json\\s*(.*?)\\s*```")
	braceSpanRe  = regexp.MustCompile(`(?s)\{.*\}`)

	messageFieldRe  = regexp.MustCompile(`"message"\s*:\s*"([^"]*)"`)
	ucsFieldRe      = regexp.MustCompile(`(?s)"ucs"\s*:\s*\[(.*?)\]`)
	quotedStringRe  = regexp.MustCompile(`"([^"]*)"`)
	scoreFieldRe    = regexp.MustCompile(`"score"\s*:\s*([\d.]+)`)
	metadataFieldRe = regexp.MustCompile(`"metadata"\s*:\s*\{([^}]*)\}`)
	employerFieldRe = regexp.MustCompile(`"employer_address"\s*:\s*"([^"]*)"`)
	coworkerFieldRe = regexp.MustCompile(`"coworker_address"\s*:\s*"([^"]*)"`)

	leadingFloatRe = regexp.MustCompile(`^[+-]?(\d+(\.\d*)?|\.\d+)`)
)

// Extractor turns raw completion text into an ExtractedResponse. It is
// stateless; a single instance is shared by the orchestrator and tests.
type Extractor struct{}

// NewExtractor returns the shared extractor.
func NewExtractor() *Extractor { return &Extractor{} }

// Extract parses raw completion text. It is pure and total: deterministic,
// no I/O, and every input maps to a usable record.
func (e *Extractor) Extract(text string) ExtractedResponse {
	if strings.TrimSpace(text) == "" {
		return defaultResponse()
	}

	candidate := strings.TrimSpace(text)
	if m := fencedJSONRe.FindStringSubmatch(text); m != nil {
		candidate = m[1]
	} else if span := braceSpanRe.FindString(text); span != "" {
		candidate = span
	}

	var parsed map[string]any
	if err := json.Unmarshal([]byte(candidate), &parsed); err != nil {
		// Salvage runs against the original input, not the candidate: the
		// candidate selection may have cut off the field we can still find.
		return e.fallbackExtract(text)
	}

	return ExtractedResponse{
		Message:  coerceString(parsed["message"]),
		Facts:    sanitizeFacts(parsed["ucs"]),
		Score:    validateScore(parsed["score"]),
		Metadata: validateMetadata(parsed["metadata"]),
		Mode:     ModeStrict,
	}
}

// fallbackExtract recovers individual fields by regular expression when the
// candidate is not strict JSON. Lossy by design.
func (e *Extractor) fallbackExtract(text string) ExtractedResponse {
	result := defaultResponse()
	result.Mode = ModeFallback

	if m := messageFieldRe.FindStringSubmatch(text); m != nil {
		result.Message = m[1]
	}

	if m := ucsFieldRe.FindStringSubmatch(text); m != nil {
		for _, q := range quotedStringRe.FindAllStringSubmatch(m[1], -1) {
			if q[1] != "" {
				result.Facts = append(result.Facts, q[1])
			}
		}
	}

	if m := scoreFieldRe.FindStringSubmatch(text); m != nil {
		result.Score = validateScore(m[1])
	}

	if m := metadataFieldRe.FindStringSubmatch(text); m != nil {
		var meta map[string]any
		if err := json.Unmarshal([]byte("{"+m[1]+"}"), &meta); err == nil {
			result.Metadata = validateMetadata(meta)
		} else {
			if em := employerFieldRe.FindStringSubmatch(text); em != nil {
				result.Metadata[MetadataEmployerAddress] = em[1]
			}
			if cm := coworkerFieldRe.FindStringSubmatch(text); cm != nil {
				result.Metadata[MetadataCoworkerAddress] = cm[1]
			}
		}
	}

	return result
}

func defaultResponse() ExtractedResponse {
	return ExtractedResponse{
		Message:  "",
		Facts:    []string{},
		Score:    0,
		Metadata: map[string]any{},
		Mode:     ModeEmpty,
	}
}

// coerceString renders a decoded JSON value as a string. Strings pass
// through; numbers and booleans use their canonical text form; containers
// fall back to their JSON encoding; nil yields "".
func coerceString(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	case json.Number:
		return t.String()
	case nil:
		return ""
	default:
		b, err := json.Marshal(t)
		if err != nil {
			return ""
		}
		return string(b)
	}
}

// sanitizeFacts normalizes the ucs array: non-arrays become empty, nil
// entries are dropped, remaining entries are coerced to strings, and empty
// strings are dropped. Relative order is preserved.
func sanitizeFacts(v any) []string {
	items, ok := v.([]any)
	if !ok {
		return []string{}
	}
	facts := make([]string, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		if s := coerceString(item); s != "" {
			facts = append(facts, s)
		}
	}
	return facts
}

// validateScore parses a numeric or numeric-string value and clamps it to
// [0, 1]. Anything unparseable is 0.
func validateScore(v any) float64 {
	var n float64
	switch t := v.(type) {
	case float64:
		n = t
	case int:
		n = float64(t)
	case json.Number:
		f, err := t.Float64()
		if err != nil {
			return 0
		}
		n = f
	case string:
		// Prefix parse, the way parseFloat reads "0.85 (estimate)".
		m := leadingFloatRe.FindString(strings.TrimSpace(t))
		if m == "" {
			return 0
		}
		f, err := strconv.ParseFloat(m, 64)
		if err != nil {
			return 0
		}
		n = f
	default:
		return 0
	}
	if math.IsNaN(n) {
		return 0
	}
	return math.Max(0, math.Min(1, n))
}

// validateMetadata keeps metadata as an open mapping. The two identity
// fields are kept only when they are non-empty strings; every other key
// passes through untouched. Non-object input yields an empty mapping.
func validateMetadata(v any) map[string]any {
	obj, ok := v.(map[string]any)
	if !ok {
		return map[string]any{}
	}

	result := make(map[string]any, len(obj))
	for key, val := range obj {
		switch key {
		case MetadataEmployerAddress, MetadataCoworkerAddress:
			if s, ok := val.(string); ok && s != "" {
				result[key] = s
			}
		default:
			result[key] = val
		}
	}
	return result
}
