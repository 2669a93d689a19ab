// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package extract

import (
	"bytes"
	"fmt"
	"os"

	"github.com/avoynikov/tenderlens/internal/container"
)

const imageMarkitdown = "markitdown:latest"

// MarkitdownConverter converts binary documents by piping them through the
// markitdown container image. It depends on a container.Runtime (docker or
// podman) injected at construction time.
type MarkitdownConverter struct {
	runtime container.Runtime
}

// NewMarkitdownConverter creates a converter over the given runtime. It
// verifies that the markitdown image exists locally before returning.
func NewMarkitdownConverter(rt container.Runtime) (*MarkitdownConverter, error) {
	if err := rt.ImageExists(imageMarkitdown); err != nil {
		return nil, fmt.Errorf("markitdown image not available in %s: %w", rt.Name(), err)
	}
	return &MarkitdownConverter{runtime: rt}, nil
}

// Convert pipes the file through the markitdown container and returns the
// resulting Markdown text. hint names the source format for the converter.
func (m *MarkitdownConverter) Convert(path, hint string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	var args []string
	if hint != "" {
		args = []string{"-x", hint}
	}

	var out bytes.Buffer
	if err := m.runtime.Run(imageMarkitdown, args, f, &out); err != nil {
		return "", fmt.Errorf("converting %s with markitdown: %w", path, err)
	}
	if out.Len() == 0 {
		return "", fmt.Errorf("markitdown produced empty output for %s", path)
	}
	return out.String(), nil
}
