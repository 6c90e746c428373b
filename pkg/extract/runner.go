package extract

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// CommandRunner executes an external tool and returns its stdout.
type CommandRunner interface {
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}

type execRunner struct{}

func (execRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return nil, fmt.Errorf("%s: %w: %s", name, err, msg)
		}
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return out, nil
}

// CheckAvailable reports whether the poppler tools used for PDFs are on PATH.
func CheckAvailable() error {
	for _, tool := range []string{"pdftotext", "pdfimages"} {
		if _, err := exec.LookPath(tool); err != nil {
			return ErrToolNotFound
		}
	}
	return nil
}

// InstallInstructions returns platform hints for installing poppler.
func InstallInstructions() string {
	return `PDF extraction requires poppler-utils (pdftotext, pdfimages).
  macOS:          brew install poppler
  Debian/Ubuntu:  apt install poppler-utils
  Alpine:         apk add poppler-utils`
}
