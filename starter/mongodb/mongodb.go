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

// Package mongodb provides the MongoDB client service and its starter.
//
// The service is declared as an injection plan: its configuration is
// injected from the "mongo" prefix and the client and database are built
// by constructor functions fed with that configuration.
package mongodb

import (
	"context"
	"fmt"
	"strings"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"

	"dirpx.dev/boot/apis"
	"dirpx.dev/boot/inject"
	"dirpx.dev/boot/naming"
	"dirpx.dev/boot/registry"
)

// Service holds the MongoDB client and the configured database.
type Service struct {
	Config Config
	Client *mongo.Client
	DB     *mongo.Database
}

// Descriptor is the injection plan of Service.
var Descriptor = inject.MustDescribe(Prefix,
	inject.Config(func(s *Service) *Config { return &s.Config }),
	inject.Func1(
		func(s *Service) **mongo.Client { return &s.Client },
		func(s *Service) *Config { return &s.Config },
		Connect,
	),
	inject.Func2(
		func(s *Service) **mongo.Database { return &s.DB },
		func(s *Service) **mongo.Client { return &s.Client },
		func(s *Service) *Config { return &s.Config },
		func(_ context.Context, c *mongo.Client, cfg Config) (*mongo.Database, error) {
			return c.Database(cfg.DBName), nil
		},
	),
)

// Connect creates a client for cfg and pings the primary when cfg.Ping is set.
func Connect(ctx context.Context, cfg Config) (*mongo.Client, error) {
	opts := options.Client().
		ApplyURI(cfg.ConnectionURI()).
		SetConnectTimeout(cfg.timeout()).
		SetServerSelectionTimeout(cfg.timeout())
	if cfg.MaxPoolSize > 0 {
		opts.SetMaxPoolSize(cfg.MaxPoolSize)
	}

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("connect to %s: %w", cfg.Redacted(), err)
	}
	if cfg.Ping {
		pctx, cancel := context.WithTimeout(ctx, cfg.timeout())
		defer cancel()
		if err := client.Ping(pctx, readpref.Primary()); err != nil {
			_ = client.Disconnect(context.WithoutCancel(ctx))
			return nil, fmt.Errorf("ping %s: %w", cfg.Redacted(), err)
		}
	}
	return client, nil
}

// Collection returns the collection named after T, lower-cased:
// documents of type blog.Post live in "post".
func Collection[T any](s *Service) *mongo.Collection {
	return s.DB.Collection(CollectionName[T]())
}

// CollectionName returns the collection name used for T.
func CollectionName[T any]() string {
	name := naming.For[T]()
	name = strings.TrimLeft(name, "*[]")
	if i := strings.IndexByte(name, '['); i >= 0 {
		name = name[:i]
	}
	if i := strings.LastIndexByte(name, '.'); i >= 0 {
		name = name[i+1:]
	}
	return strings.ToLower(name)
}

// New returns the MongoDB starter.
func New() *Starter { return &Starter{} }

// Starter resolves Service, registers it and disconnects the client on shutdown.
type Starter struct{}

// Ensure Starter implements apis.Starter.
var _ apis.Starter = (*Starter)(nil)

// Name implements apis.Namer.
func (*Starter) Name() string { return "mongodb" }

// Build resolves the service from configuration.
func (*Starter) Build(ctx context.Context, b apis.AppBuilder) error {
	svc, err := Descriptor.Resolve(ctx, b.Components(), b.Config())
	if err != nil {
		return err
	}
	if err := registry.Insert(b.Components(), svc); err != nil {
		_ = svc.Client.Disconnect(ctx)
		return err
	}
	b.AddShutdownHook("mongodb.disconnect", svc.Client.Disconnect)
	b.Logger().Info("mongodb client ready",
		zap.String("uri", svc.Config.Redacted()),
		zap.String("database", svc.Config.DBName),
		zap.Bool("pinged", svc.Config.Ping),
	)
	return nil
}
