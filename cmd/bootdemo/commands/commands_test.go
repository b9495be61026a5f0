/*
   Copyright 2025 The DIRPX Authors.

   Licensed under the Apache License, Version 2.0 (the "License");
   you may not use this file except in compliance with the License.
   You may obtain a copy of the License at

       http://www.apache.org/licenses/LICENSE-2.0

   Unless required by applicable law or agreed to in writing, software
   distributed under the License is distributed on an "AS IS" BASIS,
   WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
   See the License for the specific language governing permissions and
   limitations under the License.
*/

package commands_test

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dirpx.dev/boot/cmd/bootdemo/commands"
	_ "dirpx.dev/boot/cmd/bootdemo/internal/blog"
)

func execute(t *testing.T, args ...string) string {
	t.Helper()
	var out bytes.Buffer
	cmd := commands.GetRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	require.NoError(t, cmd.Execute())
	return out.String()
}

func TestVersion(t *testing.T) {
	commands.Version = "1.2.3"
	assert.Contains(t, execute(t, "version"), "bootdemo 1.2.3")
}

func TestRoutes(t *testing.T) {
	out := execute(t, "routes")
	assert.Contains(t, out, "METHOD")
	assert.Regexp(t, `GET\s+/api\s+blog\.index`, out)
	assert.Regexp(t, `POST\s+/api/post\s+blog\.upsertPost`, out)
	assert.Regexp(t, `GET\s+/api/post/\{id\}\s+blog\.getPost`, out)
}

func TestConfig_ProfileAndEnv(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "app.yaml"), []byte("web:\n  port: 8080\nmongo:\n  db_name: blog\n"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "app-test.yaml"), []byte("mongo:\n  db_name: blog_test\n"), 0o600))
	t.Setenv("DEMO_WEB_PORT", "9191")

	out := execute(t, "config", "--config-dir", dir, "--profile", "test", "--env-prefix", "DEMO")
	assert.Contains(t, out, "db_name: blog_test")
	assert.Regexp(t, `port: "?9191"?`, out)
}
