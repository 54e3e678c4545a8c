package cliutil

import (
	"bytes"
	"testing"

	"github.com/jxo-me/curl-dyndns/core/logger"
	xlogger "github.com/jxo-me/curl-dyndns/sdk/logger"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"
)

func TestWithErrorHandler(t *testing.T) {
	ok := WithErrorHandler(func(*cli.Context) error { return nil })
	assert.NoError(t, ok(nil))

	plain := WithErrorHandler(func(*cli.Context) error { return errors.New("boom") })
	err := plain(nil)
	var exitErr cli.ExitCoder
	require.True(t, errors.As(err, &exitErr))
	assert.Equal(t, 1, exitErr.ExitCode())
	assert.Equal(t, "boom", err.Error())

	custom := WithErrorHandler(func(*cli.Context) error { return cli.Exit("bad", 3) })
	require.True(t, errors.As(custom(nil), &exitErr))
	assert.Equal(t, 3, exitErr.ExitCode())
}

func TestBuildInfo(t *testing.T) {
	bi := GetBuildInfo("", "1.0.0")
	assert.Equal(t, "", bi.GetBuildTypeMsg())
	assert.Equal(t, " with docker", GetBuildInfo("docker", "1.0.0").GetBuildTypeMsg())
	assert.Contains(t, bi.OSArch(), "_")
}

func TestBuildInfoLog(t *testing.T) {
	var buf bytes.Buffer
	log := xlogger.NewLogger(xlogger.OutputLoggerOption(&buf), xlogger.FormatLoggerOption(logger.JSONFormat))

	GetBuildInfo("docker", "1.2.3").Log(log)

	assert.Contains(t, buf.String(), "Version 1.2.3 with docker")
	assert.Contains(t, buf.String(), "GOOS: ")
}
