package challenges

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devcompass/devcompass/internal/judge"
	"github.com/devcompass/devcompass/internal/progress"
)

func TestCatalogMatchesTrackTotals(t *testing.T) {
	for _, track := range progress.AllTracks() {
		list, err := List(track)
		require.NoError(t, err)
		assert.Len(t, list, track.Total(), track)

		seen := map[string]bool{}
		for _, c := range list {
			assert.False(t, seen[c.ID], "duplicate id %s", c.ID)
			seen[c.ID] = true
			assert.Equal(t, track, c.Track)
			assert.NotEmpty(t, c.Title)
			assert.NotEmpty(t, c.Question)
			assert.NotNil(t, c.check, c.ID)
		}
	}
}

func TestListUnknownTrack(t *testing.T) {
	_, err := List(progress.Track("rust"))
	assert.ErrorIs(t, err, progress.ErrUnknownTrack)

	_, err = Language(progress.Track("rust"))
	assert.ErrorIs(t, err, progress.ErrUnknownTrack)
}

func TestGet(t *testing.T) {
	c, err := Get(progress.Python, "loops")
	require.NoError(t, err)
	assert.Equal(t, "Loops", c.Title)

	c, err = Get(progress.JavaScript, "variables")
	require.NoError(t, err)
	assert.Equal(t, "Modern Variables", c.Title, "ids are per track")

	_, err = Get(progress.Python, "decorators")
	assert.ErrorIs(t, err, ErrUnknownChallenge)
}

func TestLanguage(t *testing.T) {
	lang, err := Language(progress.Python)
	require.NoError(t, err)
	assert.Equal(t, judge.Python, lang)

	lang, err = Language(progress.JavaScript)
	require.NoError(t, err)
	assert.Equal(t, judge.JavaScript, lang)
}

// referenceOutputs is what the reference solutions print on the judge.
var referenceOutputs = map[progress.Track]map[string]string{
	progress.Python: {
		"variables":    "Your Name\n",
		"conditionals": "Positive\n",
		"loops":        "1\r\n2\r\n3\r\n4\r\n5\r\n",
		"functions":    "8\n",
		"lists":        "[2, 4, 6, 8, 10]\n",
		"dictionaries": "{'name': 'John', 'age': 30, 'city': 'New York'}\n",
		"strings":      "dlroW olleH\n",
		"fileio":       "",
		"exceptions":   "Cannot divide by zero\n",
		"sets":         "{3, 4}\n",
	},
	progress.JavaScript: {
		"variables":         "Your Name\n",
		"arrow_functions":   "8\n",
		"array_methods":     "[ 2, 4, 6, 8, 10 ]\n",
		"destructuring":     "John 30\n",
		"promises":          "Success!\n",
		"async_await":       "Done!\n",
		"classes":           "Hello, I'm John\n",
		"modules":           "8\n",
		"template_literals": "Hello, my name is John and I am 25 years old\n",
		"spread_operator":   "[ 1, 2, 3, 4, 5, 6 ]\n",
		"array_reduce":      "15\n",
		"error_handling":    "Caught TypeError\n",
	},
}

func TestReferenceOutputsPass(t *testing.T) {
	for track, outputs := range referenceOutputs {
		list, err := List(track)
		require.NoError(t, err)
		require.Len(t, outputs, len(list), "every challenge has a reference output")

		for _, c := range list {
			out, ok := outputs[c.ID]
			require.True(t, ok, c.ID)
			assert.True(t, c.Check(out), "%s/%s rejects %q", track, c.ID, out)
		}
	}
}

func TestCheckersRejectWrongOutput(t *testing.T) {
	tests := []struct {
		track  progress.Track
		id     string
		output string
	}{
		{progress.Python, "variables", ""},
		{progress.Python, "variables", "None"},
		{progress.Python, "conditionals", "Negative"},
		{progress.Python, "loops", "1 2 3 4 5"},
		{progress.Python, "lists", "[2, 4, 6, 8]"},
		{progress.Python, "dictionaries", "{'name': 'John', 'age': 30}"},
		{progress.Python, "dictionaries", "{'name': 'John', 'age': 30, 'country': 'NZ'}"},
		{progress.Python, "dictionaries", "not a dict"},
		{progress.Python, "fileio", "Hello"},
		{progress.Python, "sets", "{1, 2, 3, 4, 5, 6}"},
		{progress.JavaScript, "variables", "undefined"},
		{progress.JavaScript, "destructuring", "john 30"},
		{progress.JavaScript, "array_methods", "[ 1, 2, 3, 4, 5 ]"},
		{progress.JavaScript, "error_handling", ""},
	}
	for _, tt := range tests {
		t.Run(string(tt.track)+"/"+tt.id, func(t *testing.T) {
			c, err := Get(tt.track, tt.id)
			require.NoError(t, err)
			assert.False(t, c.Check(tt.output), "accepted %q", tt.output)
		})
	}
}

func TestPythonDictAcceptsNoneAndBooleans(t *testing.T) {
	check := pythonDictWithKeys("name", "age", "city")
	assert.True(t, check("{'name': None, 'age': True, 'city': False}"))
}
