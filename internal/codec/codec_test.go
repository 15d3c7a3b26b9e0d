package codec

import (
	"bytes"
	"encoding/base64"
	"regexp"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/klauspost/compress/flate"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"madlib-maker/shared/models"
)

// tokenFromJSON builds a token around arbitrary bytes, bypassing Encode.
func tokenFromJSON(t *testing.T, raw []byte) string {
	t.Helper()
	var buf bytes.Buffer
	zw, err := flate.NewWriter(&buf, flate.DefaultCompression)
	require.NoError(t, err)
	_, err = zw.Write(raw)
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	return base64.RawURLEncoding.EncodeToString(buf.Bytes())
}

func sampleRecord() models.StateRecord {
	return models.StateRecord{
		Title:    models.Some("The Picnic"),
		Subtitle: models.Some(""),
		Placeholders: models.Some([]models.Placeholder{
			{ID: "word01", Label: "noun"},
			{ID: "word02", Label: "verb (past tense)"},
		}),
		Story: models.Some("A {word01} {word02} across the park. Ünïcödé & <tags> \"quotes\""),
		Theme: &models.Theme{Background: "#0a1929", Text: "#b8d4e3", Button: "#1a4f6e", Highlight: "#4fc3f7"},
		Answers: map[string]string{
			"word01": "duck",
			"word02": "waddled",
			"word99": "orphan",
		},
	}
}

func TestRoundTrip(t *testing.T) {
	cases := map[string]models.StateRecord{
		"full":  sampleRecord(),
		"empty": {},
		"story only": {
			Story: models.Some("hi {word01}"),
		},
		"empty strings are kept": {
			Title: models.Some(""),
			Story: models.Some(""),
		},
		"present empty placeholders": {
			Placeholders: models.Some([]models.Placeholder(nil)),
		},
		"present empty answers": {
			Story:   models.Some("hi"),
			Answers: map[string]string{},
		},
	}

	for name, rec := range cases {
		t.Run(name, func(t *testing.T) {
			token, err := Encode(rec)
			require.NoError(t, err)

			got, err := Decode(token)
			require.NoError(t, err)
			if diff := cmp.Diff(rec, got); diff != "" {
				t.Fatalf("round trip mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestEncode_TokenIsFragmentSafe(t *testing.T) {
	rec := sampleRecord()
	rec.Story = models.Some(strings.Repeat("#?&=/+ %{word01} ", 50))

	token, err := Encode(rec)
	require.NoError(t, err)
	assert.Regexp(t, regexp.MustCompile(`^[A-Za-z0-9_-]+$`), token)
}

func TestDecode_IgnoresUnknownFieldsAndDefaultsMissing(t *testing.T) {
	token := tokenFromJSON(t, []byte(`{"story":"A {word01}","version":7,"extra":{"nested":true}}`))

	got, err := Decode(token)
	require.NoError(t, err)

	want := models.StateRecord{Story: models.Some("A {word01}")}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("decoded record mismatch (-want +got):\n%s", diff)
	}
	assert.False(t, got.Title.Set, "absent title must stay unset")
	assert.Nil(t, got.Theme)
}

func TestDecode_NullIsAbsent(t *testing.T) {
	got, err := Decode(tokenFromJSON(t, []byte(`{"title":null,"theme":null,"story":"x"}`)))
	require.NoError(t, err)
	assert.False(t, got.Title.Set)
	assert.Nil(t, got.Theme)
	assert.Equal(t, models.Some("x"), got.Story)
}

func TestDecode_AcceptsLongThemeKey(t *testing.T) {
	got, err := Decode(tokenFromJSON(t, []byte(
		`{"theme":{"background":"#000000","text":"#111111","button":"#222222","highlight":"#333333"}}`)))
	require.NoError(t, err)
	require.NotNil(t, got.Theme)
	assert.Equal(t, "#000000", got.Theme.Background)
	assert.True(t, got.Theme.Complete())
}

func TestDecode_ToleratesStandardBase64(t *testing.T) {
	// Find a record whose token contains url-only characters.
	var token string
	for i := 0; i < 500; i++ {
		rec := models.StateRecord{Story: models.Some(strings.Repeat("x", i) + "{word01}")}
		tok, err := Encode(rec)
		require.NoError(t, err)
		if strings.ContainsAny(tok, "-_") {
			token = tok
			break
		}
	}
	require.NotEmpty(t, token, "no token with url-safe characters found")

	want, err := Decode(token)
	require.NoError(t, err)

	std := strings.NewReplacer("-", "+", "_", "/").Replace(token)
	for len(std)%4 != 0 {
		std += "="
	}
	got, err := Decode("  " + std + "\n")
	require.NoError(t, err)
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("standard base64 decode mismatch (-want +got):\n%s", diff)
	}
}

func TestDecode_Failures(t *testing.T) {
	cases := map[string]string{
		"empty":          "",
		"not base64":     "!!!not-base64***",
		"not deflate":    base64.RawURLEncoding.EncodeToString([]byte("plain text, not compressed")),
		"invalid json":   tokenFromJSON(t, []byte(`{"title":`)),
		"json array":     tokenFromJSON(t, []byte(`[1,2,3]`)),
		"json string":    tokenFromJSON(t, []byte(`"hello"`)),
		"json null":      tokenFromJSON(t, []byte(`null`)),
		"wrong type":     tokenFromJSON(t, []byte(`{"placeholders":"word01"}`)),
		"empty document": tokenFromJSON(t, []byte(``)),
	}

	for name, token := range cases {
		t.Run(name, func(t *testing.T) {
			got, err := Decode(token)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrDecode)
			assert.Equal(t, models.StateRecord{}, got)
		})
	}
}

func TestDecode_RejectsOversizedState(t *testing.T) {
	big := `{"story":"` + strings.Repeat("a", MaxDecodedBytes) + `"}`
	_, err := Decode(tokenFromJSON(t, []byte(big)))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrDecode)
}
