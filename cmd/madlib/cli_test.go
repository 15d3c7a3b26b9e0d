package main

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"madlib-maker/internal/handler"
	"madlib-maker/internal/service"
	"madlib-maker/shared/database"
	"madlib-maker/shared/models"
)

const zooJSON = `{
  "title": "Zoo Trip",
  "placeholders": [{"id": "word01", "label": "animal"}],
  "story": "I saw a {word01}."
}`

// runCLI executes the root command with fresh flag values.
func runCLI(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	verbose, baseURLFlag, shortenerURL, noShorten, draftPath = false, "", "", false, ""
	shareMode, shareFile, shareAnswers, openRender = string(models.ModePlay), "", nil, false

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetArgs(append([]string{"--env-file=", "--base-url=https://example.com/madlib/"}, args...))
	err := rootCmd.Execute()
	return strings.TrimSpace(out.String()), err
}

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "madlib.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestEncodeDecode(t *testing.T) {
	token, err := runCLI(t, "", "encode", writeFile(t, zooJSON))
	require.NoError(t, err)
	assert.Regexp(t, `^[A-Za-z0-9_-]+$`, token)

	out, err := runCLI(t, "", "decode", token)
	require.NoError(t, err)
	var rec models.StateRecord
	require.NoError(t, json.Unmarshal([]byte(out), &rec))
	assert.Equal(t, "Zoo Trip", rec.Title.Value)

	out, err = runCLI(t, "", "decode", "https://example.com/#edit="+token)
	require.NoError(t, err)
	assert.Contains(t, out, "I saw a {word01}.")

	_, err = runCLI(t, "", "decode", "https://example.com/#s=aB3xY9")
	assert.Error(t, err)
}

func TestEncodeYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "zoo.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`title: Zoo Trip
placeholders:
  - id: word01
    label: animal
story: "I saw a {word01}."
theme:
  background: "#0a1929"
  text: "#b8d4e3"
  button: "#1a4f6e"
  highlight: "#4fc3f7"
`), 0o600))

	token, err := runCLI(t, "", "encode", path)
	require.NoError(t, err)

	out, err := runCLI(t, "", "decode", token)
	require.NoError(t, err)
	var rec models.StateRecord
	require.NoError(t, json.Unmarshal([]byte(out), &rec))
	assert.Equal(t, "Zoo Trip", rec.Title.Value)
	assert.False(t, rec.Subtitle.Set)
	require.NotNil(t, rec.Theme)
	assert.Equal(t, "ocean", rec.Theme.Preset())
}

func TestEncodeFromStdin(t *testing.T) {
	token, err := runCLI(t, zooJSON, "encode")
	require.NoError(t, err)
	assert.NotEmpty(t, token)
}

func TestShareLongLinkAndOpen(t *testing.T) {
	draft := filepath.Join(t.TempDir(), "draft.json")
	file := writeFile(t, zooJSON)

	link, err := runCLI(t, "", "share", "--no-shorten", "--draft", draft, "--mode", "story", "--file", file, "--answer", "word01=llama")
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(link, "https://example.com/madlib/#story="), link)

	out, err := runCLI(t, "", "open", "--draft", draft, "--render", link)
	require.NoError(t, err)
	assert.Contains(t, out, "Zoo Trip")
	assert.Contains(t, out, "I saw a llama.")

	_, err = os.Stat(draft)
	assert.True(t, os.IsNotExist(err), "story links never write the draft")
}

func TestSharePlayRequiresPlaceholders(t *testing.T) {
	file := writeFile(t, `{"title":"Empty","story":"nothing here"}`)
	_, err := runCLI(t, "", "share", "--no-shorten", "--draft", filepath.Join(t.TempDir(), "d.json"), "--file", file)
	assert.ErrorContains(t, err, "placeholder")
}

func TestShareFromDraft(t *testing.T) {
	draft := filepath.Join(t.TempDir(), "draft.json")

	_, err := runCLI(t, "", "share", "--no-shorten", "--draft", draft, "--mode", "edit")
	assert.Error(t, err, "nothing to share without a draft")

	token, err := runCLI(t, "", "encode", writeFile(t, zooJSON))
	require.NoError(t, err)
	out, err := runCLI(t, "", "open", "--draft", draft, "https://example.com/madlib/#edit="+token)
	require.NoError(t, err)
	assert.Contains(t, out, `"loaded": true`)

	link, err := runCLI(t, "", "share", "--no-shorten", "--draft", draft, "--mode", "play")
	require.NoError(t, err)
	assert.Contains(t, link, "#play=")

	out, err = runCLI(t, "", "open", "--draft", draft, "https://example.com/madlib/#play=broken!")
	require.NoError(t, err)
	assert.Contains(t, out, `"error": "Could not load madlib from URL`)
	assert.Contains(t, out, `"draftRestored": true`)

	out, err = runCLI(t, "", "new", "--draft", draft)
	require.NoError(t, err)
	assert.Equal(t, "Started new madlib", out)
}

func TestShareShortLink(t *testing.T) {
	gin.SetMode(gin.TestMode)
	repo := database.NewMemoryShortLinkRepository(zap.NewNop())
	h := handler.NewShortLinkHandler(service.NewShortLinkService(repo, 0, zap.NewNop()), "", 0, zap.NewNop())
	server := httptest.NewServer(handler.NewRouter(h, zap.NewNop(), handler.RouterOptions{}))
	t.Cleanup(server.Close)

	draft := filepath.Join(t.TempDir(), "draft.json")
	link, err := runCLI(t, "", "share", "--shortener", server.URL, "--draft", draft, "--file", writeFile(t, zooJSON))
	require.NoError(t, err)
	require.Regexp(t, `^https://example\.com/madlib/#s=[A-Za-z0-9]{6}$`, link)
	assert.Equal(t, 1, repo.Len())

	out, err := runCLI(t, "", "open", "--shortener", server.URL, "--draft", draft, link)
	require.NoError(t, err)
	assert.Contains(t, out, `"mode": "play"`)
	assert.Contains(t, out, `"short": true`)
	assert.Contains(t, out, "Zoo Trip")

	out, err = runCLI(t, "", "open", "--shortener", server.URL, "--draft", draft, "https://example.com/madlib/#s=zzzzzz")
	require.NoError(t, err)
	assert.Contains(t, out, `"mode": "creator"`)
	assert.Contains(t, out, "Could not load madlib from URL")
}

func TestShareFallsBackWhenShortenerIsDown(t *testing.T) {
	server := httptest.NewServer(nil)
	url := server.URL
	server.Close()

	link, err := runCLI(t, "", "share", "--shortener", url, "--draft", filepath.Join(t.TempDir(), "d.json"), "--file", writeFile(t, zooJSON))
	require.NoError(t, err)
	assert.Contains(t, link, "#play=")
}
