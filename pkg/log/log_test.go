package log

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func newTestLogger(t *testing.T, name string) (*Logger, *bytes.Buffer) {
	t.Helper()
	buf := &bytes.Buffer{}
	SetOutput(buf)
	return ForService(name), buf
}

func TestPrefixAndLevel(t *testing.T) {
	SetGlobalDebug(false)

	const name = "prefix_service_test"
	l, buf := newTestLogger(t, name)

	l.Infof("indexed %d documents", 3)

	assert.Contains(t, buf.String(), "INFO ["+name+">]")
	assert.Contains(t, buf.String(), "indexed 3 documents")
}

func TestForServiceMemoizes(t *testing.T) {
	assert.Same(t, ForService("memo_test"), ForService("memo_test"))
	assert.Equal(t, "unknown", ForService("").Name())
}

func TestDebugPerService(t *testing.T) {
	SetGlobalDebug(false)

	const name = "debug_service_specific"
	DisableDebugFor(name)
	l, buf := newTestLogger(t, name)

	l.Debugf("should not appear")
	assert.NotContains(t, buf.String(), "should not appear")

	EnableDebugFor(name)
	l.Debugf("visible now")
	assert.Contains(t, buf.String(), "visible now")
}

func TestConfigureEnablesListedServices(t *testing.T) {
	SetGlobalDebug(false)

	const name = "configured_service"
	DisableDebugFor(name)
	Configure(false, []string{name})
	defer DisableDebugFor(name)

	assert.True(t, DebugEnabledFor(name))
	assert.False(t, DebugEnabledFor("not_configured_service"))
}

func TestDebugGlobal(t *testing.T) {
	SetGlobalDebug(false)

	const name = "debug_service_global"
	DisableDebugFor(name)
	l, buf := newTestLogger(t, name)

	l.Debugf("hidden")
	assert.NotContains(t, buf.String(), "hidden")

	SetGlobalDebug(true)
	defer SetGlobalDebug(false)

	l.Debugf("global visible")
	assert.Contains(t, buf.String(), "global visible")
}

func TestWarnAndError(t *testing.T) {
	l, buf := newTestLogger(t, "warn_service_test")

	l.Warnf("cache unavailable")
	l.Errorf("index failed: %v", "boom")

	assert.Contains(t, buf.String(), "WARN [warn_service_test>] cache unavailable")
	assert.Contains(t, buf.String(), "ERROR [warn_service_test>] index failed: boom")
}
