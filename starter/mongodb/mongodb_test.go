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

package mongodb_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dirpx.dev/boot/builder"
	"dirpx.dev/boot/config"
	"dirpx.dev/boot/inject"
	"dirpx.dev/boot/registry"
	"dirpx.dev/boot/starter/mongodb"
)

type Post struct{}

type generic[T any] struct{}

// unreachable points at a closed local port; no server is needed unless pinging.
func unreachable(extra map[string]any) *config.Tree {
	m := map[string]any{"host": "127.0.0.1", "port": 1, "db_name": "blog"}
	for k, v := range extra {
		m[k] = v
	}
	return config.FromMap(map[string]any{"mongo": m})
}

func TestConfig_ConnectionURI(t *testing.T) {
	c := mongodb.Config{Host: "db", User: "app", Password: "p@ss", DBName: "blog"}
	assert.Equal(t, "mongodb://app:p%40ss@db:27017", c.ConnectionURI())
	assert.Equal(t, "mongodb://app:xxxxx@db:27017", c.Redacted())

	c.URI = "mongodb://other:1234"
	assert.Equal(t, "mongodb://other:1234", c.ConnectionURI())
}

func TestCollectionName(t *testing.T) {
	assert.Equal(t, "post", mongodb.CollectionName[Post]())
	assert.Equal(t, "post", mongodb.CollectionName[*Post]())
	assert.Equal(t, "generic", mongodb.CollectionName[generic[Post]]())
}

func TestDescriptor_ResolvesWithoutServer(t *testing.T) {
	ctx := context.Background()
	svc, err := mongodb.Descriptor.Resolve(ctx, registry.New(), unreachable(nil))
	require.NoError(t, err)
	defer func() { _ = svc.Client.Disconnect(ctx) }()

	assert.Equal(t, "blog", svc.DB.Name())
	assert.Equal(t, "post", mongodb.Collection[Post](svc).Name())
	assert.Equal(t, 1, svc.Config.Port)
}

func TestDescriptor_PingFailure(t *testing.T) {
	_, err := mongodb.Descriptor.Resolve(context.Background(), registry.New(),
		unreachable(map[string]any{"ping": true, "connect_timeout": "200ms"}))

	require.ErrorIs(t, err, inject.ErrConstruct)
	var ce *inject.ConstructError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, "Client", ce.Field)
}

func TestDescriptor_ConfigErrors(t *testing.T) {
	_, err := mongodb.Descriptor.Resolve(context.Background(), registry.New(), config.Empty())
	assert.ErrorIs(t, err, config.ErrConfigMissing)

	_, err = mongodb.Descriptor.Resolve(context.Background(), registry.New(),
		config.FromMap(map[string]any{"mongo.host": "db"}))
	assert.ErrorIs(t, err, config.ErrConfigInvalid)
}

func TestStarter_RegistersAndDisconnects(t *testing.T) {
	app, err := builder.New(
		builder.WithConfig(unreachable(nil)),
		builder.WithServices(nil),
		builder.WithSignals(),
	).AddStarter(mongodb.New()).Build(context.Background())
	require.NoError(t, err)

	svc := registry.MustGet[*mongodb.Service](app.Components())
	assert.Equal(t, "blog", svc.DB.Name())

	_, err = app.Run(context.Background())
	assert.NoError(t, err)
}
