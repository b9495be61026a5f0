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

package inject_test

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dirpx.dev/boot/apis"
	"dirpx.dev/boot/builder"
	"dirpx.dev/boot/catalog"
	"dirpx.dev/boot/config"
	"dirpx.dev/boot/inject"
	"dirpx.dev/boot/registry"
)

type Clock struct{ Now string }

type mailConfig struct {
	Host string `mapstructure:"host" validate:"required"`
	Port int    `mapstructure:"port"`
}

type Mailer struct {
	Clock  *Clock
	Cfg    mailConfig
	Addr   string
	Banner string
	other  int
}

func clockField(s *Mailer) **Clock    { return &s.Clock }
func cfgField(s *Mailer) *mailConfig  { return &s.Cfg }
func addrField(s *Mailer) *string     { return &s.Addr }
func bannerField(s *Mailer) *string   { return &s.Banner }
func otherField(s *Mailer) *int       { return &s.other }
func notAField(s *Mailer) *string     { v := ""; return &v }
func nestedField(s *Mailer) *string   { return &s.Cfg.Host }

func addr(_ context.Context, cfg mailConfig) (string, error) {
	return cfg.Host + ":" + itoa(cfg.Port), nil
}

func banner(_ context.Context, c *Clock, a string) (string, error) {
	return a + " @ " + c.Now, nil
}

func itoa(i int) string {
	if i == 0 {
		return "0"
	}
	var b []byte
	for ; i > 0; i /= 10 {
		b = append([]byte{byte('0' + i%10)}, b...)
	}
	return string(b)
}

func describe(t *testing.T) *inject.Descriptor[Mailer] {
	t.Helper()
	d, err := inject.Describe("mail",
		inject.Component(clockField),
		inject.Config(cfgField),
		inject.Func1(addrField, cfgField, addr),
		inject.Func2(bannerField, clockField, addrField, banner),
	)
	require.NoError(t, err)
	return d
}

func mailTree() *config.Tree {
	return config.FromMap(map[string]any{"mail.host": "smtp", "mail.port": 25})
}

func withClock(t *testing.T) *registry.Building {
	t.Helper()
	reg := registry.New()
	require.NoError(t, registry.Insert(reg, &Clock{Now: "noon"}))
	return reg
}

func TestResolve_DeclarationOrder(t *testing.T) {
	d := describe(t)
	m, err := d.Resolve(context.Background(), withClock(t), mailTree())
	require.NoError(t, err)

	assert.Equal(t, "noon", m.Clock.Now)
	assert.Equal(t, mailConfig{Host: "smtp", Port: 25}, m.Cfg)
	assert.Equal(t, "smtp:25", m.Addr)
	assert.Equal(t, "smtp:25 @ noon", m.Banner)

	var fields []string
	for _, in := range d.Injections() {
		fields = append(fields, in.Field())
	}
	assert.Equal(t, []string{"Clock", "Cfg", "Addr", "Banner"}, fields)
	assert.Equal(t, reflect.TypeOf(Mailer{}), d.Service())
	assert.Equal(t, "mail", d.Prefix())
}

func TestResolve_ComponentNotFound(t *testing.T) {
	m, err := describe(t).Resolve(context.Background(), registry.New(), mailTree())
	assert.Nil(t, m)
	require.ErrorIs(t, err, inject.ErrComponentNotFound)

	var nf *inject.ComponentNotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, "Clock", nf.Field)
	assert.Equal(t, reflect.TypeOf(&Clock{}), nf.Type)
	assert.Contains(t, err.Error(), "inject_test.Mailer.Clock")
	assert.Contains(t, err.Error(), "*inject_test.Clock")
}

func TestResolve_ConfigErrorsPropagate(t *testing.T) {
	_, err := describe(t).Resolve(context.Background(), withClock(t), config.Empty())
	assert.ErrorIs(t, err, config.ErrConfigMissing)
	assert.Contains(t, err.Error(), "Cfg")

	_, err = describe(t).Resolve(context.Background(), withClock(t), config.FromMap(map[string]any{"mail.port": "x"}))
	assert.ErrorIs(t, err, config.ErrConfigTypeMismatch)
}

func TestResolve_ConfigAt(t *testing.T) {
	d, err := inject.Describe("",
		inject.ConfigAt("smtp", cfgField),
	)
	require.NoError(t, err)
	m, err := d.Resolve(context.Background(), registry.New(), config.FromMap(map[string]any{"smtp.host": "relay"}))
	require.NoError(t, err)
	assert.Equal(t, "relay", m.Cfg.Host)
}

func TestResolve_ConstructorFailureStopsResolution(t *testing.T) {
	boom := errors.New("dial failed")
	calls := 0
	d, err := inject.Describe("mail",
		inject.Func0(addrField, func(context.Context) (string, error) { return "", boom }),
		inject.Func0(bannerField, func(context.Context) (string, error) { calls++; return "x", nil }),
	)
	require.NoError(t, err)

	m, err := d.Resolve(context.Background(), registry.New(), config.Empty())
	assert.Nil(t, m)
	require.ErrorIs(t, err, boom)
	var ce *inject.ConstructError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, "Addr", ce.Field)
	assert.Equal(t, 0, calls, "later fields must not be resolved")
}

func TestResolve_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := describe(t).Resolve(ctx, withClock(t), mailTree())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestDescribe_ShapeErrors(t *testing.T) {
	tests := []struct {
		name   string
		fields []inject.Field[Mailer]
		want   error
	}{
		{"redeclared", []inject.Field[Mailer]{inject.Component(clockField), inject.Component(clockField)}, inject.ErrFieldRedeclared},
		{"forward reference", []inject.Field[Mailer]{inject.Func1(addrField, cfgField, addr), inject.Config(cfgField)}, inject.ErrForwardReference},
		{"self reference", []inject.Field[Mailer]{inject.Func1(addrField, addrField, func(_ context.Context, s string) (string, error) { return s, nil })}, inject.ErrForwardReference},
		{"not a field", []inject.Field[Mailer]{inject.Component(notAField)}, inject.ErrNotAField},
		{"nested field", []inject.Field[Mailer]{inject.Component(nestedField)}, inject.ErrNotAField},
		{"nil accessor", []inject.Field[Mailer]{inject.Component[Mailer, string](nil)}, inject.ErrNilAccessor},
		{"nil constructor", []inject.Field[Mailer]{inject.Func0[Mailer, string](addrField, nil)}, inject.ErrNilAccessor},
		{"nil field", []inject.Field[Mailer]{nil}, inject.ErrNilAccessor},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := inject.Describe("mail", tt.fields...)
			assert.Nil(t, d)
			assert.ErrorIs(t, err, tt.want)
			assert.Contains(t, err.Error(), "inject_test.Mailer")
		})
	}

	// Unexported fields can be injected too.
	_, err := inject.Describe("mail", inject.Func0(otherField, func(context.Context) (int, error) { return 1, nil }))
	assert.NoError(t, err)

	_, err = inject.Describe("", inject.Config(cfgField))
	assert.ErrorIs(t, err, inject.ErrNoPrefix)

	_, err = inject.Describe[int]("x")
	assert.ErrorIs(t, err, inject.ErrNotAField)

	assert.Panics(t, func() { inject.MustDescribe("mail", inject.Component(notAField)) })
}

func newBuilder(services *catalog.Catalog[apis.Installer], starters ...apis.Starter) *builder.Builder {
	return builder.New(
		builder.WithConfig(mailTree()),
		builder.WithServices(services),
		builder.WithSignals(),
	).AddStarter(starters...)
}

type clockStarter struct{}

func (clockStarter) Build(_ context.Context, b apis.AppBuilder) error {
	return registry.Insert(b.Components(), &Clock{Now: "noon"})
}

func TestInstall_SingletonThroughCatalog(t *testing.T) {
	services := catalog.New[apis.Installer]()
	services.Submit(describe(t))

	app, err := newBuilder(services, clockStarter{}).Build(context.Background())
	require.NoError(t, err)

	first := registry.MustGet[*Mailer](app.Components())
	second := registry.MustGet[*Mailer](app.Components())
	assert.Same(t, first, second)
	assert.Equal(t, "smtp:25 @ noon", first.Banner)
}

func TestInstall_MissingDependencyFailsBuild(t *testing.T) {
	services := catalog.New[apis.Installer]()
	services.Submit(describe(t))

	_, err := newBuilder(services).Build(context.Background())
	assert.ErrorIs(t, err, inject.ErrComponentNotFound)
}

func TestInstall_Prototype(t *testing.T) {
	services := catalog.New[apis.Installer]()
	services.Submit(describe(t).Prototype())

	app, err := newBuilder(services, clockStarter{}).Build(context.Background())
	require.NoError(t, err)

	assert.False(t, registry.Has[*Mailer](app.Components()))
	provide := registry.MustGet[inject.Provider[Mailer]](app.Components())
	a, err := provide(context.Background())
	require.NoError(t, err)
	b, err := provide(context.Background())
	require.NoError(t, err)
	assert.NotSame(t, a, b)
	assert.Equal(t, a.Banner, b.Banner)
}

func TestRegister_SubmitsToServiceCatalog(t *testing.T) {
	before := catalog.Services.Len()
	d := inject.Register(describe(t).WithOrder(-5))

	require.Equal(t, before+1, catalog.Services.Len())
	assert.Same(t, d, catalog.Services.Entries()[before])
	assert.Equal(t, -5, catalog.OrderOf(d))
	assert.Equal(t, "inject_test.Mailer", d.Name())
}
