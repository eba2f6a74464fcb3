package version

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInfoLogValue(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(slog.NewTextHandler(&buf, nil))

	log.Info("starting", slog.Any("build", Info()))

	assert.Contains(t, buf.String(), "build.version=dev")
	assert.Contains(t, buf.String(), "build.commit=unknown")
}
