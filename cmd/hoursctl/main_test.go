package main

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func memoryEnv(t *testing.T) {
	t.Setenv("DB_DRIVER", "memory")
	t.Setenv("JWT_SECRET_KEY", "cli-secret")
	t.Setenv("STORAGE_BASE_PATH", t.TempDir())
}

func TestHolidays(t *testing.T) {
	out, err := execute(t, "holidays", "2024")
	require.NoError(t, err)

	assert.Contains(t, out, "2024-01-01")
	assert.Contains(t, out, "2024-03-31")
	assert.Contains(t, out, "2024-04-01")
	assert.Contains(t, out, "Lunedì dell'Angelo")
	assert.Contains(t, out, "2024-12-26")

	_, err = execute(t, "holidays", "nope")
	assert.Error(t, err)
}

func TestSweep_MemoryStore(t *testing.T) {
	memoryEnv(t)

	out, err := execute(t, "sweep", "--driver", "memory")
	require.NoError(t, err)

	var report struct {
		Closed int `json:"closed"`
		Failed int `json:"failed"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.Zero(t, report.Closed)
	assert.Zero(t, report.Failed)
}

func TestDeviceCreate_PrintsKey(t *testing.T) {
	memoryEnv(t)

	out, err := execute(t, "device", "create", "--name", "Front door")
	require.NoError(t, err)

	var created struct {
		ID   string `json:"id"`
		Name string `json:"name"`
		Key  string `json:"key"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &created))
	assert.Equal(t, "Front door", created.Name)
	assert.NotEmpty(t, created.ID)
	assert.NotEmpty(t, created.Key)
}

func TestToken(t *testing.T) {
	memoryEnv(t)

	out, err := execute(t, "token", "--user", "u1", "--role", "admin")
	require.NoError(t, err)
	assert.Contains(t, out, "access_token")

	_, err = execute(t, "token", "--user", "u1", "--role", "root")
	assert.Error(t, err)
}
