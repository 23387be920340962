package service

import (
	"bytes"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/bmatcuk/doublestar/v4"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"

	"github.com/ludo-technologies/hunkscope/domain"
)

// DefaultIncludePattern selects Java sources inside a checkout
const DefaultIncludePattern = "**/*.java"

// FileReaderImpl reads checkout files and enumerates Java sources
type FileReaderImpl struct{}

// NewFileReader creates a new file reader service
func NewFileReader() *FileReaderImpl {
	return &FileReaderImpl{}
}

// ReadFile reads the raw content of a file
func (f *FileReaderImpl) ReadFile(path string) ([]byte, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, domain.NewFileNotFoundError(path, err)
	}
	return content, nil
}

// ReadText reads a file and decodes it to UTF-8. It tries UTF-8, UTF-16
// with a byte order mark, Windows-1252 and finally ISO-8859-1, which
// accepts any byte sequence.
func (f *FileReaderImpl) ReadText(path string) (string, error) {
	content, err := f.ReadFile(path)
	if err != nil {
		return "", err
	}
	return DecodeText(content), nil
}

// DecodeText converts file content in one of the supported encodings to a
// UTF-8 string
func DecodeText(content []byte) string {
	switch {
	case bytes.HasPrefix(content, []byte{0xEF, 0xBB, 0xBF}):
		return string(content[3:])
	case bytes.HasPrefix(content, []byte{0xFF, 0xFE}):
		if s, ok := decodeWith(unicode.UTF16(unicode.LittleEndian, unicode.UseBOM), content); ok {
			return s
		}
	case bytes.HasPrefix(content, []byte{0xFE, 0xFF}):
		if s, ok := decodeWith(unicode.UTF16(unicode.BigEndian, unicode.UseBOM), content); ok {
			return s
		}
	}

	if utf8.Valid(content) {
		return string(content)
	}
	if s, ok := decodeWith(charmap.Windows1252, content); ok && !strings.ContainsRune(s, utf8.RuneError) {
		return s
	}
	s, _ := decodeWith(charmap.ISO8859_1, content)
	return s
}

func decodeWith(enc encoding.Encoding, content []byte) (string, bool) {
	out, err := enc.NewDecoder().Bytes(content)
	if err != nil {
		return "", false
	}
	return string(out), true
}

// ReadLines reads a file and splits it into lines without terminators
func (f *FileReaderImpl) ReadLines(path string) ([]string, error) {
	text, err := f.ReadText(path)
	if err != nil {
		return nil, err
	}
	return SplitLines(text), nil
}

// SplitLines splits text on \n, \r\n and \r. A trailing terminator does
// not produce an extra empty line.
func SplitLines(text string) []string {
	if text == "" {
		return nil
	}
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	text = strings.TrimSuffix(text, "\n")
	return strings.Split(text, "\n")
}

// ResolveCheckoutFile finds a dataset file inside a checkout. It tries the
// path as given, then without its first segment. Returns "" when neither
// exists.
func (f *FileReaderImpl) ResolveCheckoutFile(checkoutRoot, file string) string {
	rel := filepath.FromSlash(strings.TrimPrefix(filepath.ToSlash(file), "/"))
	candidates := []string{filepath.Join(checkoutRoot, rel)}
	if i := strings.IndexRune(rel, filepath.Separator); i > 0 {
		candidates = append(candidates, filepath.Join(checkoutRoot, rel[i+1:]))
	}
	for _, c := range candidates {
		if ok, _ := f.FileExists(c); ok {
			return c
		}
	}
	return ""
}

// FileExists checks if a file exists
func (f *FileReaderImpl) FileExists(path string) (bool, error) {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return !info.IsDir(), nil
}

// CollectJavaFiles returns the slash-separated paths, relative to root, of
// every file matching DefaultIncludePattern and none of excludePatterns
func (f *FileReaderImpl) CollectJavaFiles(root string, excludePatterns []string) ([]string, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, domain.NewFileNotFoundError(root, err)
	}
	if !info.IsDir() {
		return nil, domain.NewInvalidInputError(fmt.Sprintf("not a directory: %s", root), nil)
	}

	var files []string
	walkFunc := func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			// unreadable entries are skipped
			return nil
		}
		if d.IsDir() {
			if path != "." && f.shouldSkipDirectory(d.Name()) {
				return fs.SkipDir
			}
			return nil
		}
		if f.shouldIncludeFile(path, excludePatterns) {
			files = append(files, path)
		}
		return nil
	}

	if err := fs.WalkDir(os.DirFS(root), ".", walkFunc); err != nil {
		return nil, fmt.Errorf("failed to walk directory %s: %w", root, err)
	}
	return files, nil
}

// shouldIncludeFile checks a slash-separated relative path against the
// include pattern and the exclude patterns
func (f *FileReaderImpl) shouldIncludeFile(path string, excludePatterns []string) bool {
	for _, pattern := range excludePatterns {
		if matched, _ := doublestar.Match(pattern, path); matched {
			return false
		}
		if matched, _ := doublestar.Match(pattern, filepath.Base(path)); matched {
			return false
		}
	}
	matched, _ := doublestar.Match(DefaultIncludePattern, path)
	return matched
}

// shouldSkipDirectory checks if a directory should be skipped entirely
func (f *FileReaderImpl) shouldSkipDirectory(dirName string) bool {
	if strings.HasPrefix(dirName, ".") {
		return true
	}
	switch dirName {
	case "target", "build", "out", "node_modules":
		return true
	}
	return false
}

// ValidatePaths validates that all provided paths exist and are accessible
func (f *FileReaderImpl) ValidatePaths(paths ...string) error {
	for _, path := range paths {
		if path == "" {
			continue
		}
		if _, err := os.Stat(path); err != nil {
			if os.IsNotExist(err) {
				return domain.NewFileNotFoundError(path, err)
			}
			return domain.NewInvalidInputError(fmt.Sprintf("cannot access path: %s", path), err)
		}
	}
	return nil
}
