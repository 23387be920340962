package e2e

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
)

const calculatorJava = `package org.example.core;

public class Calculator {
    private int total;

    public int add(int a, int b) {
        int sum = a + b;
        total += sum;
        return sum;
    }
}
`

const stringsJava = `package org.example.util;

public final class Strings {
    public static String trim(String s) {
        return s == null ? null : s.trim();
    }
}
`

const datasetJSON = `{
  "Lang_1": {"buggy_hunks": {
    "0": {"file": "src/main/java/org/example/core/Calculator.java", "start_line": 7, "end_line": 7},
    "1": {"file": "src/main/java/org/example/core/Calculator.java", "start_line": 8, "end_line": 8}
  }},
  "Lang_2": {"buggy_hunks": {
    "0": {"file": "src/main/java/org/example/core/Calculator.java", "start_line": 7, "end_line": 7},
    "1": {"file": "src/main/java/org/example/util/Strings.java", "start_line": 5, "end_line": 5}
  }}
}`

// buildHunkscopeBinary builds ./cmd/hunkscope into a temporary directory
func buildHunkscopeBinary(t *testing.T) string {
	t.Helper()

	binaryPath := filepath.Join(t.TempDir(), "hunkscope")
	cmd := exec.Command("go", "build", "-o", binaryPath, "./cmd/hunkscope")

	// Build from the project root (one level up from e2e directory)
	projectRoot, err := filepath.Abs("..")
	if err != nil {
		t.Fatalf("Failed to get project root: %v", err)
	}
	cmd.Dir = projectRoot

	if out, err := cmd.CombinedOutput(); err != nil {
		t.Fatalf("Failed to build hunkscope binary: %v\n%s", err, out)
	}
	return binaryPath
}

// createCorpus lays out a dataset with two defects and their checkouts under
// dir, using relative paths work/ and defects.json
func createCorpus(t *testing.T, dir string) {
	t.Helper()
	files := map[string]string{
		"defects.json": datasetJSON,
	}
	for _, id := range []string{"Lang_1", "Lang_2"} {
		files["work/"+id+"/src/main/java/org/example/core/Calculator.java"] = calculatorJava
		files["work/"+id+"/src/main/java/org/example/util/Strings.java"] = stringsJava
	}
	for rel, content := range files {
		path := filepath.Join(dir, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatalf("Failed to create directory for %s: %v", rel, err)
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatalf("Failed to create test file %s: %v", rel, err)
		}
	}
}

// createTestConfigFile writes a .hunkscope.toml pointing at the corpus and
// sending the log into the test directory
func createTestConfigFile(t *testing.T, testDir, extra string) {
	t.Helper()
	configFile := filepath.Join(testDir, ".hunkscope.toml")
	configContent := fmt.Sprintf("[input]\ndataset = \"defects.json\"\nwork_dir = \"work\"\n\n[log]\nfilename = \"hunkscope.log\"\n\n%s", extra)
	if err := os.WriteFile(configFile, []byte(configContent), 0o644); err != nil {
		t.Fatalf("Failed to create config file: %v", err)
	}
}
