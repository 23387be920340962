package service

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ludo-technologies/hunkscope/domain"
)

const calculatorPath = "src/main/java/org/example/core/Calculator.java"

const calculatorJava = `package org.example.core;

import java.util.List;

public class Calculator {
    private int total;

    public int add(int a, int b) {
        int sum = a + b;
        total += sum;
        return sum;
    }

    public int reset() {
        int old = total;
        total = 0;
        return old;
    }

    Calculator() {
        this.total = 0;
    }
}
`

const stringsPath = "src/main/java/org/example/util/Strings.java"

const stringsJava = `package org.example.util;

public final class Strings {
    public static String trim(String s) {
        return s == null ? null : s.trim();
    }
}
`

// writeFiles creates files (slash-separated relative paths) under root
func writeFiles(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for rel, content := range files {
		path := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
}

func hunkAt(file string, start, end int) domain.HunkLocation {
	return domain.HunkLocation{File: file, StartLine: start, EndLine: end}
}

// corpus is a small dataset with one checkout per defect
type corpus struct {
	workDir  string
	patchDir string
	dataset  string
}

// newCorpus builds four defects:
//
//	Lang_1  two hunks in Calculator.add
//	Lang_2  Calculator.add and Strings.trim, sibling packages
//	Lang_3  one hunk
//	Lang_4  a hunk in a file missing from the checkout
func newCorpus(t *testing.T) corpus {
	t.Helper()
	base := t.TempDir()
	c := corpus{
		workDir:  filepath.Join(base, "work"),
		patchDir: filepath.Join(base, "patches"),
		dataset:  filepath.Join(base, "dataset.json"),
	}

	both := map[string]string{calculatorPath: calculatorJava, stringsPath: stringsJava}
	onlyCalc := map[string]string{calculatorPath: calculatorJava}
	writeFiles(t, filepath.Join(c.workDir, "Lang_1"), onlyCalc)
	writeFiles(t, filepath.Join(c.workDir, "Lang_2"), both)
	writeFiles(t, filepath.Join(c.workDir, "Lang_3"), onlyCalc)
	writeFiles(t, filepath.Join(c.workDir, "Lang_4"), onlyCalc)

	records := map[string]domain.DefectRecord{
		"Lang_1": {BuggyHunks: map[string]domain.HunkLocation{
			"0": hunkAt(calculatorPath, 9, 9),
			"1": hunkAt(calculatorPath, 10, 10),
		}},
		"Lang_2": {BuggyHunks: map[string]domain.HunkLocation{
			"0": hunkAt(calculatorPath, 9, 9),
			"1": hunkAt(stringsPath, 5, 5),
		}},
		"Lang_3": {BuggyHunks: map[string]domain.HunkLocation{
			"0": hunkAt(calculatorPath, 16, 16),
		}},
		"Lang_4": {BuggyHunks: map[string]domain.HunkLocation{
			"0": hunkAt(calculatorPath, 9, 9),
			"1": hunkAt("src/main/java/org/example/Gone.java", 3, 4),
		}},
	}
	data, err := json.Marshal(records)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(c.dataset, data, 0o644))
	require.NoError(t, os.MkdirAll(c.patchDir, 0o755))
	return c
}

func (c corpus) request() domain.DivergenceRequest {
	req := domain.DefaultDivergenceRequest()
	req.DatasetPath = c.dataset
	req.WorkDir = c.workDir
	req.MaxWorkers = 2
	return *req
}
