package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"fragments/internal/actions"
)

// pathPicker satisfies actions.FilePicker from a --file flag. "-" reads stdin.
type pathPicker struct {
	path  string
	stdin io.Reader
}

func (p pathPicker) PickFile(ctx context.Context) (*actions.PickedFile, bool, error) {
	path := strings.TrimSpace(p.path)
	if path == "" {
		return nil, false, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}
	if path == "-" {
		data, err := io.ReadAll(p.stdin)
		if err != nil {
			return nil, false, fmt.Errorf("read stdin: %w", err)
		}
		return &actions.PickedFile{Name: "stdin", Data: data}, true, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, false, err
	}
	return &actions.PickedFile{Name: filepath.Base(path), Data: data}, true, nil
}
