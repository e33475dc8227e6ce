package storage

import (
	"bytes"
	"mime/multipart"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testFile struct {
	name    string
	content []byte
}

func fileHeaders(t *testing.T, files ...testFile) []*multipart.FileHeader {
	t.Helper()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for _, f := range files {
		part, err := w.CreateFormFile("files", f.name)
		require.NoError(t, err)
		_, err = part.Write(f.content)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	form, err := multipart.NewReader(&buf, w.Boundary()).ReadForm(32 << 20)
	require.NoError(t, err)
	return form.File["files"]
}

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := New(t.TempDir(), 1024)
	require.NoError(t, err)
	return store
}

func TestOriginalNameRoundTrip(t *testing.T) {
	stored := GeneratedName("report.pdf")
	assert.Equal(t, "report.pdf", OriginalName(stored))
}

func TestOriginalNameDecode(t *testing.T) {
	assert.Equal(t, "report.pdf", OriginalName("169999-4821-report.pdf"))
	// Dashes inside the original name survive the decode.
	assert.Equal(t, "my-report-v2.pdf", OriginalName("169999-4821-my-report-v2.pdf"))
	// Names without the generated prefix come back unchanged.
	assert.Equal(t, "report.pdf", OriginalName("report.pdf"))
}

func TestGeneratedNameShape(t *testing.T) {
	stored := GeneratedName("notes.txt")
	parts := strings.SplitN(stored, "-", 3)
	require.Len(t, parts, 3)
	assert.Equal(t, "notes.txt", parts[2])

	// A path-qualified upload name keeps only its base.
	assert.Equal(t, "notes.txt", OriginalName(GeneratedName("../evil/notes.txt")))
}

func TestValidateFile(t *testing.T) {
	store := newTestStore(t)

	ok := fileHeaders(t, testFile{"solution.py", []byte("print(1)")})
	assert.NoError(t, store.ValidateFile(ok[0]))

	upper := fileHeaders(t, testFile{"REPORT.PDF", []byte("pdf")})
	assert.NoError(t, store.ValidateFile(upper[0]))

	binary := fileHeaders(t, testFile{"virus.exe", []byte("mz")})
	assert.ErrorIs(t, store.ValidateFile(binary[0]), ErrDisallowedType)

	big := fileHeaders(t, testFile{"big.txt", bytes.Repeat([]byte("a"), 2048)})
	assert.ErrorIs(t, store.ValidateFile(big[0]), ErrTooLarge)
}

func TestSaveAll(t *testing.T) {
	store := newTestStore(t)

	files := fileHeaders(t,
		testFile{"main.c", []byte("int main(){}")},
		testFile{"readme.txt", []byte("hello")},
	)

	saved, err := store.SaveAll(files)
	require.NoError(t, err)
	require.Len(t, saved, 2)

	assert.Equal(t, "main.c", OriginalName(saved[0]))
	assert.Equal(t, "readme.txt", OriginalName(saved[1]))
	for _, name := range saved {
		assert.True(t, store.Exists(name))
	}
}

func TestSaveAllRejectsWholeBatch(t *testing.T) {
	store := newTestStore(t)

	files := fileHeaders(t,
		testFile{"ok.txt", []byte("fine")},
		testFile{"bad.exe", []byte("mz")},
	)

	saved, err := store.SaveAll(files)
	assert.ErrorIs(t, err, ErrDisallowedType)
	assert.Empty(t, saved)

	// Nothing from the batch may have been persisted.
	entries, readErr := os.ReadDir(store.Dir)
	require.NoError(t, readErr)
	assert.Empty(t, entries)
}

func TestPathRejectsTraversal(t *testing.T) {
	store := newTestStore(t)

	for _, name := range []string{"", "..", "../secret", "a/b.txt", ".env"} {
		_, err := store.Path(name)
		assert.ErrorIs(t, err, ErrBadName, name)
	}

	path, err := store.Path("169999-4821-report.pdf")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(path, store.Dir))
}
