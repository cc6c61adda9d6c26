// Package socketio provides the socketio_sink unit, which streams frames to
// a socket.io server as JSON events.
package socketio

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"reflect"
	"time"

	"github.com/vk/sigchain/internal/ctxlog"
	"github.com/vk/sigchain/internal/module"
	"github.com/vk/sigchain/internal/registry"
	"github.com/zishang520/engine.io-client-go/transports"
	"github.com/zishang520/engine.io/v2/types"
	"github.com/zishang520/socket.io-client-go/socket"
)

// ErrConnect is returned when the sink cannot reach its server.
var ErrConnect = errors.New("socket.io connection failed")

// Module implements the registry.Unit interface for this package.
type Module struct{}

// Input defines the arguments for socketio_sink.
type Input struct {
	Size               int    `arg:"size"`
	DataType           string `arg:"dtype,optional"`
	URL                string `arg:"url"`
	Namespace          string `arg:"namespace,optional"`
	Event              string `arg:"event,optional"`
	Timeout            string `arg:"timeout,optional"`
	InsecureSkipVerify bool   `arg:"insecure_skip_verify,optional"`
}

// Payload is the body of every emitted event.
type Payload struct {
	Module string    `json:"module"`
	Frame  int64     `json:"frame"`
	Values []float64 `json:"values"`
}

type sink struct {
	ctx     context.Context
	logger  *slog.Logger
	input   *Input
	target  *url.URL
	timeout time.Duration
	io      *socket.Socket
}

// Build creates a module with task "emit" that sends every frame read on
// "in" as one event. Each replica opens its own connection on its first
// frame and closes it when the module is closed.
func Build(ctx context.Context, name string, in any) (*module.Module, error) {
	input := in.(*Input)
	if input.Size <= 0 {
		return nil, fmt.Errorf("size must be positive, got %d", input.Size)
	}
	dtype, err := module.ParseDataType(input.DataType)
	if err != nil {
		return nil, err
	}
	target, err := url.Parse(input.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse URL: %w", err)
	}
	if target.Scheme == "" || target.Host == "" {
		return nil, fmt.Errorf("url %q must be absolute", input.URL)
	}
	timeout, err := time.ParseDuration(input.Timeout)
	if err != nil {
		return nil, fmt.Errorf("failed to parse timeout: %w", err)
	}

	s := &sink{
		ctx:     ctx,
		logger:  ctxlog.FromContext(ctx).With("unit", "socketio_sink", "module", name, "url", input.URL),
		input:   input,
		target:  target,
		timeout: timeout,
	}

	m := module.New(name)
	t := m.CreateTask("emit")
	src := t.CreateInput("in", dtype, input.Size)

	var frame int64
	t.SetCodelet(func(*module.Task) (int, error) {
		if s.io == nil {
			io, err := s.connect()
			if err != nil {
				return 0, err
			}
			s.io = io
		}
		s.io.Emit(input.Event, Payload{Module: name, Frame: frame, Values: module.Float64s(src)})
		frame++
		return 0, nil
	})
	m.OnReset(func() { frame = 0 })
	m.OnClose(s.close)
	return m, nil
}

// notify reports the connection outcome without blocking. Only the first of
// connect and connect_error is consumed.
func notify(ch chan<- error, err error) {
	select {
	case ch <- err:
	default:
	}
}

func (s *sink) connect() (*socket.Socket, error) {
	s.logger.Info("Connecting to socket.io server...")

	opts := socket.DefaultOptions()
	opts.SetPath(s.target.Path)
	if s.input.InsecureSkipVerify {
		s.logger.Warn("Skipping TLS certificate verification")
		opts.SetTLSClientConfig(&tls.Config{InsecureSkipVerify: true})
	}
	opts.SetTransports(types.NewSet(transports.WebSocket))

	connected := make(chan error, 1)
	baseURL := fmt.Sprintf("%s://%s", s.target.Scheme, s.target.Host)
	manager := socket.NewManager(baseURL, opts)
	io := manager.Socket(s.input.Namespace, opts)

	io.Once(types.EventName("connect"), func(...any) {
		s.logger.Info("Successfully connected", "sid", io.Id())
		notify(connected, nil)
	})
	io.Once(types.EventName("connect_error"), func(errs ...any) {
		err := fmt.Errorf("%v", errs)
		if len(errs) > 0 {
			if e, ok := errs[0].(error); ok {
				err = e
			}
		}
		notify(connected, err)
	})
	io.Connect()

	select {
	case err := <-connected:
		if err != nil {
			io.Disconnect()
			return nil, fmt.Errorf("%w: %w", ErrConnect, err)
		}
		return io, nil
	case <-s.ctx.Done():
		io.Disconnect()
		return nil, fmt.Errorf("%w: %w", ErrConnect, s.ctx.Err())
	case <-time.After(s.timeout):
		io.Disconnect()
		return nil, fmt.Errorf("%w: timed out after %s", ErrConnect, s.timeout)
	}
}

func (s *sink) close() error {
	if s.io == nil {
		return nil
	}
	s.logger.Info("Disconnecting socket.io client", "sid", s.io.Id())
	s.io.Disconnect()
	s.io = nil
	return nil
}

// Register registers the unit with the engine.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterUnit("socketio_sink", &registry.RegisteredUnit{
		NewInput: func() any {
			return &Input{DataType: "int32", Namespace: "/", Event: "frame", Timeout: "10s"}
		},
		InputType: reflect.TypeOf(Input{}),
		Build:     Build,
	})
}
