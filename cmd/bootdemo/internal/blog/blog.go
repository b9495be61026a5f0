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

// Package blog is the demo application: a blog service backed by MongoDB
// and its HTTP handlers. Importing the package registers both.
package blog

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"dirpx.dev/boot/inject"
	"dirpx.dev/boot/route"
	"dirpx.dev/boot/starter/mongodb"
	"dirpx.dev/boot/starter/web"
)

// Service is the blog service.
type Service struct {
	Mongo *mongodb.Service
	Posts Store
}

// Descriptor registers Service in the service catalog.
var Descriptor = inject.Register(inject.MustDescribe("",
	inject.Component(func(s *Service) **mongodb.Service { return &s.Mongo }),
	inject.Func1(
		func(s *Service) *Store { return &s.Posts },
		func(s *Service) **mongodb.Service { return &s.Mongo },
		newMongoStore,
	),
))

func init() {
	route.Register(route.Scope("/api",
		route.Must(route.Get("/", index)),
		route.Must(route.Post("/post", upsertPost)),
		route.Must(route.Get("/post/{id}", getPost)),
	)...)
}

// Response is the JSON envelope of every blog endpoint.
type Response struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
	Success bool   `json:"success"`

	status int
}

// Respond implements route.Responder.
func (r Response) Respond(w http.ResponseWriter, _ *http.Request) {
	status := r.status
	if status == 0 {
		status = http.StatusOK
	}
	route.WriteJSON(w, status, r)
}

// OK wraps data in a successful envelope.
func OK(data any) Response {
	return Response{Code: 1000, Message: "ok", Data: data, Success: true, status: http.StatusOK}
}

// Fail wraps err in a failed envelope.
func Fail(err error) Response {
	status := route.StatusCode(err)
	return Response{Code: status, Message: err.Error(), status: status}
}

func logger(ctx context.Context) *zap.Logger {
	if app, ok := web.App(ctx); ok {
		return app.Logger().Named("blog")
	}
	return zap.NewNop()
}

func index(ctx context.Context) Response {
	logger(ctx).Info("hello world")
	return OK("Hello World")
}

func upsertPost(r *http.Request) Response {
	var p Post
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		return Fail(route.Status(http.StatusBadRequest, fmt.Errorf("decode post: %w", err)))
	}
	svc, err := web.Component[*Service](r.Context())
	if err != nil {
		return Fail(err)
	}
	saved, err := svc.Posts.Upsert(r.Context(), &p)
	if err != nil {
		logger(r.Context()).Error("upsert post", zap.Error(err))
		return Fail(err)
	}
	return OK(saved)
}

func getPost(r *http.Request) Response {
	svc, err := web.Component[*Service](r.Context())
	if err != nil {
		return Fail(err)
	}
	p, err := svc.Posts.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		return Fail(err)
	}
	return OK(p)
}
