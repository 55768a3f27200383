package intake

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractCleanJSON(t *testing.T) {
	e := NewExtractor()

	got := e.Extract(`{"message": "Hola, cuentame mas", "ucs": ["Trabaja en una farmacia", "Turno nocturno"], "score": 0.4, "metadata": {"employer_address": "0xabc"}}`)

	assert.Equal(t, "Hola, cuentame mas", got.Message)
	assert.Equal(t, []string{"Trabaja en una farmacia", "Turno nocturno"}, got.Facts)
	assert.Equal(t, 0.4, got.Score)
	assert.Equal(t, map[string]any{"employer_address": "0xabc"}, got.Metadata)
	assert.Equal(t, ModeStrict, got.Mode)
}

func TestExtractFencedBlock(t *testing.T) {
	e := NewExtractor()

	raw := "Claro, aqui esta mi respuesta:\n```json\n{\"message\": \"ok\", \"ucs\": [], \"score\": 1}\n```\nEspero que sirva."
	got := e.Extract(raw)

	assert.Equal(t, "ok", got.Message)
	assert.Empty(t, got.Facts)
	assert.Equal(t, 1.0, got.Score)
}

func TestExtractFencedBlockWinsOverSurroundingBraces(t *testing.T) {
	e := NewExtractor()

	raw := "{\"message\": \"outer\"} then ```json\n{\"message\": \"inner\", \"ucs\": [], \"score\": 0}\n```"
	got := e.Extract(raw)

	assert.Equal(t, "inner", got.Message)
}

func TestExtractBraceSpan(t *testing.T) {
	e := NewExtractor()

	raw := `Por supuesto. {"message": "dime tu address", "ucs": ["hecho uno"], "score": 0.2, "metadata": {}} Saludos.`
	got := e.Extract(raw)

	assert.Equal(t, "dime tu address", got.Message)
	assert.Equal(t, []string{"hecho uno"}, got.Facts)
	assert.Equal(t, 0.2, got.Score)
}

func TestExtractEmptyInput(t *testing.T) {
	e := NewExtractor()

	for _, raw := range []string{"", "   ", "\n\t"} {
		got := e.Extract(raw)
		assert.Equal(t, "", got.Message)
		assert.Equal(t, []string{}, got.Facts)
		assert.Equal(t, 0.0, got.Score)
		assert.Equal(t, map[string]any{}, got.Metadata)
		assert.Equal(t, ModeEmpty, got.Mode)
	}
}

func TestExtractNoJSONAtAll(t *testing.T) {
	e := NewExtractor()

	got := e.Extract("lo siento, no puedo ayudarte con eso")

	assert.Equal(t, "", got.Message)
	assert.Empty(t, got.Facts)
	assert.Equal(t, 0.0, got.Score)
	assert.Empty(t, got.Metadata)
	assert.Equal(t, ModeFallback, got.Mode)
}

func TestExtractMessageCoercion(t *testing.T) {
	e := NewExtractor()

	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"number", `{"message": 42, "ucs": [], "score": 0}`, "42"},
		{"float", `{"message": 1.5, "ucs": [], "score": 0}`, "1.5"},
		{"bool", `{"message": true, "ucs": [], "score": 0}`, "true"},
		{"null", `{"message": null, "ucs": [], "score": 0}`, ""},
		{"object", `{"message": {"a": 1}, "ucs": [], "score": 0}`, `{"a":1}`},
		{"missing", `{"ucs": [], "score": 0}`, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, e.Extract(tt.raw).Message)
		})
	}
}

func TestExtractFactsSanitization(t *testing.T) {
	e := NewExtractor()

	got := e.Extract(`{"message": "m", "ucs": ["uno", null, 7, "", true, "dos"], "score": 0}`)
	assert.Equal(t, []string{"uno", "7", "true", "dos"}, got.Facts)

	got = e.Extract(`{"message": "m", "ucs": "not an array", "score": 0}`)
	assert.Equal(t, []string{}, got.Facts)
}

func TestExtractScoreValidation(t *testing.T) {
	e := NewExtractor()

	tests := []struct {
		name string
		raw  string
		want float64
	}{
		{"in range", `{"score": 0.73}`, 0.73},
		{"above one clamps", `{"score": 12}`, 1},
		{"negative clamps", `{"score": -0.5}`, 0},
		{"numeric string", `{"score": "0.85"}`, 0.85},
		{"string with suffix", `{"score": "0.85 aprox"}`, 0.85},
		{"non numeric string", `{"score": "alto"}`, 0},
		{"missing", `{"message": "m"}`, 0},
		{"null", `{"score": null}`, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, e.Extract(tt.raw).Score)
		})
	}
}

func TestExtractMetadataValidation(t *testing.T) {
	e := NewExtractor()

	t.Run("identity fields must be non-empty strings", func(t *testing.T) {
		got := e.Extract(`{"metadata": {"employer_address": "", "coworker_address": 9, "extra": 1}}`)
		require.NotNil(t, got.Metadata)
		assert.NotContains(t, got.Metadata, "employer_address")
		assert.NotContains(t, got.Metadata, "coworker_address")
		assert.Equal(t, float64(1), got.Metadata["extra"])
	})

	t.Run("array metadata is discarded", func(t *testing.T) {
		got := e.Extract(`{"metadata": ["a", "b"]}`)
		assert.Equal(t, map[string]any{}, got.Metadata)
	})

	t.Run("unknown keys pass through", func(t *testing.T) {
		got := e.Extract(`{"metadata": {"industry": "retail", "employer_address": "0x1"}}`)
		assert.Equal(t, "retail", got.Metadata["industry"])
		assert.Equal(t, "0x1", got.Metadata["employer_address"])
	})
}

func TestExtractFallbackFields(t *testing.T) {
	e := NewExtractor()

	// Trailing comma keeps this out of the strict parser.
	raw := `{"message": "casi json", "ucs": ["hecho a", "hecho b"], "score": 0.6, "metadata": {"employer_address": "0xemp"},}`
	got := e.Extract(raw)

	assert.Equal(t, "casi json", got.Message)
	assert.Equal(t, []string{"hecho a", "hecho b"}, got.Facts)
	assert.Equal(t, 0.6, got.Score)
	assert.Equal(t, "0xemp", got.Metadata["employer_address"])
}

func TestExtractFallbackMetadataRegexes(t *testing.T) {
	e := NewExtractor()

	// Unquoted value makes both the strict parse and the inner metadata
	// reparse fail; per-field regexes still recover the addresses.
	raw := `{"message": "m", "metadata": {"employer_address": "0xemp", "coworker_address": "0xcow", "broken": oops},}`
	got := e.Extract(raw)

	assert.Equal(t, "0xemp", got.Metadata["employer_address"])
	assert.Equal(t, "0xcow", got.Metadata["coworker_address"])
}

func TestExtractFallbackDropsEmptyFacts(t *testing.T) {
	e := NewExtractor()

	raw := `{"ucs": ["", "hecho", ""], "score": bad,}`
	got := e.Extract(raw)

	assert.Equal(t, []string{"hecho"}, got.Facts)
}
