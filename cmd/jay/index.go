package main

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
)

var skippedDirs = map[string]bool{
	".git":         true,
	"node_modules": true,
	"vendor":       true,
	".idea":        true,
	".vscode":      true,
}

const maxIndexableFileBytes = 1 << 20

var indexCmd = &cobra.Command{
	Use:   "index [paths...]",
	Short: "Build the workspace vector index",
	Long:  `Chunk and embed the given files (or every text file in the workspace when no paths are given) into the persisted vector index.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withComponents(false, func(c *components) error {
			paths := args
			if len(paths) == 0 {
				var err error
				paths, err = collectIndexablePaths(c.Sandbox.Root())
				if err != nil {
					return err
				}
			}
			if len(paths) == 0 {
				fmt.Println("nothing to index")
				return nil
			}

			indexed, err := c.Index.Build(cmd.Context(), paths)
			if err != nil {
				return fmt.Errorf("indexed %d chunks before failing: %w", indexed, err)
			}

			fmt.Printf("indexed %d chunks from %d files\n", indexed, len(paths))
			return nil
		})
	},
}

// collectIndexablePaths walks the workspace and returns workspace-relative
// paths of files worth embedding: small enough and not binary.
func collectIndexablePaths(root string) ([]string, error) {
	var paths []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		name := d.Name()
		if d.IsDir() {
			if path != root && (skippedDirs[name] || strings.HasPrefix(name, ".")) {
				return filepath.SkipDir
			}
			return nil
		}
		if strings.HasPrefix(name, ".") {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return err
		}
		if info.Size() == 0 || info.Size() > maxIndexableFileBytes {
			return nil
		}
		if looksBinary(path) {
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		paths = append(paths, rel)
		return nil
	})
	return paths, err
}

func looksBinary(path string) bool {
	f, err := os.Open(path)
	if err != nil {
		return true
	}
	defer f.Close()

	buf := make([]byte, 512)
	n, err := f.Read(buf)
	if err != nil && n == 0 {
		return true
	}
	for _, b := range buf[:n] {
		if b == 0 {
			return true
		}
	}
	return false
}

func init() {
	rootCmd.AddCommand(indexCmd)
}
