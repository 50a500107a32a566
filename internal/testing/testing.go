// package testing contains test doubles shared by the chartx packages
package testing

import (
	"errors"
	"io/fs"
	"net/http"
	"os"
	"testing"
)

// ErrWriteFailed is returned by every [FWriter] write.
var ErrWriteFailed = errors.New("write failed")

// FWriter is an output sink that rejects every write.
type FWriter struct{}

func (f *FWriter) Write(p []byte) (int, error) {
	return 0, ErrWriteFailed
}

// MockRoundTripper answers every request with a fixed response or transport error.
type MockRoundTripper struct {
	response *http.Response
	err      error
}

func NewMockRoundTripper(r *http.Response, e error) *MockRoundTripper {
	return &MockRoundTripper{response: r, err: e}
}

func (m *MockRoundTripper) RoundTrip(*http.Request) (*http.Response, error) {
	return m.response, m.err
}

// AssertFileExists fails the test when nothing exists at path.
func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		t.Errorf("expected %s to exist", path)
	}
}

// AssertFileMissing fails the test when something exists at path, such as a report from a run that had no rows.
func AssertFileMissing(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); err == nil {
		t.Errorf("expected %s not to exist", path)
	}
}

// MustReadFile returns the contents of path as a string.
func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read %s: %v", path, err)
	}
	return string(content)
}
