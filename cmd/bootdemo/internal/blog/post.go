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

package blog

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"dirpx.dev/boot/route"
	"dirpx.dev/boot/starter/mongodb"
)

// ErrNotFound is returned when a post does not exist.
var ErrNotFound = route.Status(http.StatusNotFound, errors.New("post not found"))

// Post is a blog post document.
type Post struct {
	ID          string     `bson:"_id,omitempty" json:"id,omitempty"`
	Title       string     `bson:"title,omitempty" json:"title,omitempty"`
	Author      string     `bson:"author,omitempty" json:"author,omitempty"`
	Content     string     `bson:"content,omitempty" json:"content,omitempty"`
	ContentType string     `bson:"content_type,omitempty" json:"content_type,omitempty"`
	Summary     string     `bson:"summary,omitempty" json:"summary,omitempty"`
	Tags        []string   `bson:"tags,omitempty" json:"tags,omitempty"`
	CreatedAt   *time.Time `bson:"created_at,omitempty" json:"created_at,omitempty"`
	UpdatedAt   *time.Time `bson:"updated_at,omitempty" json:"updated_at,omitempty"`
}

// Store persists posts.
type Store interface {
	Get(ctx context.Context, id string) (*Post, error)
	Upsert(ctx context.Context, p *Post) (*Post, error)
}

// mongoStore keeps posts in the "post" collection.
type mongoStore struct {
	coll *mongo.Collection
}

func newMongoStore(_ context.Context, m *mongodb.Service) (Store, error) {
	return &mongoStore{coll: mongodb.Collection[Post](m)}, nil
}

func (s *mongoStore) Get(ctx context.Context, id string) (*Post, error) {
	var p Post
	err := s.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&p)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// Upsert updates the post with p.ID or inserts it with a new id.
func (s *mongoStore) Upsert(ctx context.Context, p *Post) (*Post, error) {
	id := p.ID
	if id == "" {
		id = uuid.NewString()
	}
	now := time.Now().UTC()

	raw, err := bson.Marshal(p)
	if err != nil {
		return nil, err
	}
	var set bson.M
	if err := bson.Unmarshal(raw, &set); err != nil {
		return nil, err
	}
	delete(set, "_id")
	delete(set, "created_at")
	set["updated_at"] = now

	update := bson.M{
		"$set":         set,
		"$setOnInsert": bson.M{"created_at": now},
	}
	if _, err := s.coll.UpdateOne(ctx, bson.M{"_id": id}, update, options.Update().SetUpsert(true)); err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}
