package main

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func makeTree(t *testing.T, root string, dirs ...string) {
	t.Helper()
	for _, dir := range dirs {
		err := os.MkdirAll(filepath.Join(root, dir), 0o755)
		if err != nil {
			t.Fatal(err)
		}
	}
}

func TestFindWatchDirs(t *testing.T) {
	root := t.TempDir()
	makeTree(t, root,
		`src/sub`,
		`node_modules/pkg/lib`,
		`.git/objects`,
		`dist`,
		`conf`,
	)

	var patterns FlagIgnorePatterns
	patterns.Default()

	dirs := FindWatchDirs(root, patterns)

	expected := []string{
		root,
		filepath.Join(root, `conf`),
		filepath.Join(root, `src`),
		filepath.Join(root, `src/sub`),
	}

	if !reflect.DeepEqual(expected, dirs) {
		t.Error(expected, dirs)
	}
}

// The root is always part of the result, even when it can't be read.
func TestFindWatchDirsMissingRoot(t *testing.T) {
	root := filepath.Join(t.TempDir(), `missing`)

	var patterns FlagIgnorePatterns
	patterns.Default()

	dirs := FindWatchDirs(root, patterns)
	if !reflect.DeepEqual([]string{root}, dirs) {
		t.Error(root, dirs)
	}
}

func TestFindWatchDirsNoPatterns(t *testing.T) {
	root := t.TempDir()
	makeTree(t, root, `a/b`, `c`)

	dirs := FindWatchDirs(root, nil)

	expected := []string{
		root,
		filepath.Join(root, `a`),
		filepath.Join(root, `a/b`),
		filepath.Join(root, `c`),
	}

	if !reflect.DeepEqual(expected, dirs) {
		t.Error(expected, dirs)
	}
}
