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

package mongodb

import (
	"net"
	"net/url"
	"strconv"
	"time"
)

// Prefix is the configuration prefix of the MongoDB service.
const Prefix = "mongo"

// Config is the MongoDB connection configuration. URI, when set, wins over
// the individual connection fields.
type Config struct {
	URI            string        `mapstructure:"uri"`
	Host           string        `mapstructure:"host" validate:"required_without=URI"`
	Port           int           `mapstructure:"port" validate:"omitempty,min=1,max=65535"`
	User           string        `mapstructure:"user"`
	Password       string        `mapstructure:"password"`
	DBName         string        `mapstructure:"db_name" validate:"required"`
	Ping           bool          `mapstructure:"ping"`
	ConnectTimeout time.Duration `mapstructure:"connect_timeout" validate:"min=0"`
	MaxPoolSize    uint64        `mapstructure:"max_pool_size"`
}

// ConfigPrefix implements apis.Configurable.
func (Config) ConfigPrefix() string { return Prefix }

// ConnectionURI returns URI, or one built from the connection fields.
func (c Config) ConnectionURI() string {
	if c.URI != "" {
		return c.URI
	}
	port := c.Port
	if port == 0 {
		port = 27017
	}
	u := url.URL{Scheme: "mongodb", Host: net.JoinHostPort(c.Host, strconv.Itoa(port))}
	if c.User != "" {
		u.User = url.UserPassword(c.User, c.Password)
	}
	return u.String()
}

// Redacted returns the connection URI without the password, for logging.
func (c Config) Redacted() string {
	u, err := url.Parse(c.ConnectionURI())
	if err != nil {
		return "<invalid uri>"
	}
	return u.Redacted()
}

func (c Config) timeout() time.Duration {
	if c.ConnectTimeout > 0 {
		return c.ConnectTimeout
	}
	return 10 * time.Second
}
