// Package internal holds helpers shared by the hexpat commands.
package internal

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/sansecio/hexpat"
	"github.com/sansecio/hexpat/pattern"
	"github.com/sansecio/hexpat/preprocessor"
	"github.com/sansecio/hexpat/provider"
	"github.com/sansecio/hexpat/token"
)

// ParseEndian maps a -endian flag value to a byte order.
func ParseEndian(s string) (token.Endian, error) {
	switch s {
	case "little", "le":
		return token.Little, nil
	case "big", "be":
		return token.Big, nil
	case "native":
		return token.Native(), nil
	}
	return 0, fmt.Errorf("invalid endian %q: expected little, big or native", s)
}

// ParseSortKey maps a -sort flag value to a sort key.
func ParseSortKey(s string) (pattern.SortKey, error) {
	switch s {
	case "name":
		return pattern.ByName, nil
	case "offset":
		return pattern.ByOffset, nil
	case "size":
		return pattern.BySize, nil
	case "value":
		return pattern.ByValue, nil
	case "type":
		return pattern.ByTypeName, nil
	case "color":
		return pattern.ByColor, nil
	}
	return 0, fmt.Errorf("invalid sort key %q", s)
}

// IncludeLoader searches the comma separated directories in dirs, then
// the directory of the pattern file. It returns nil when dirs is empty.
func IncludeLoader(dirs, patternPath string) preprocessor.Loader {
	if dirs == "" {
		return nil
	}
	return preprocessor.DirLoader{Dirs: append(strings.Split(dirs, ","), filepath.Dir(patternPath))}
}

// Execute opens dataPath and runs the pattern file against it.
func Execute(ctx context.Context, r *hexpat.Runtime, patternPath, dataPath string) ([]pattern.Pattern, *provider.File, error) {
	data, err := provider.OpenFile(dataPath)
	if err != nil {
		return nil, nil, fmt.Errorf("opening data file: %w", err)
	}
	patterns, err := r.ExecuteFile(ctx, data, patternPath)
	if err != nil {
		data.Close()
		return nil, nil, err
	}
	return patterns, data, nil
}
