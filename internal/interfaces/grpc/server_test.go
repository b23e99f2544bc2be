package grpc

import (
	"context"
	"errors"
	"net"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"

	"github.com/turtacn/ExoMetrics/internal/config"
	"github.com/turtacn/ExoMetrics/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/ExoMetrics/internal/infrastructure/monitoring/prometheus"
)

func newTestServer(t *testing.T, opts ...Option) *Server {
	t.Helper()
	lis, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	sopts := &serverOptions{logger: logging.NewNopLogger(), gracefulTimeout: time.Second}
	for _, o := range opts {
		o(sopts)
	}
	return newServer(lis, sopts)
}

func healthStatus(t *testing.T, s *Server, service string) healthpb.HealthCheckResponse_ServingStatus {
	t.Helper()
	resp, err := s.healthServer.Check(context.Background(), &healthpb.HealthCheckRequest{Service: service})
	require.NoError(t, err)
	return resp.Status
}

func TestNewServer(t *testing.T) {
	s, err := NewServer(config.ServerConfig{GRPCPort: 0, Mode: "debug"})
	require.NoError(t, err)
	assert.NotEmpty(t, s.Addr())
	assert.True(t, s.opts.reflection)

	var reflected bool
	for name := range s.grpcServer.GetServiceInfo() {
		if strings.HasPrefix(name, "grpc.reflection.") {
			reflected = true
		}
	}
	assert.True(t, reflected)
	assert.NoError(t, s.Stop(context.Background()))

	s, err = NewServer(config.ServerConfig{GRPCPort: 0, Mode: "release"})
	require.NoError(t, err)
	assert.False(t, s.opts.reflection)
	_, ok := s.grpcServer.GetServiceInfo()["grpc.health.v1.Health"]
	assert.True(t, ok)
	assert.NoError(t, s.Stop(context.Background()))
}

func TestServer_ServeHealth(t *testing.T) {
	s := newTestServer(t, WithMetrics(prometheus.NewNoopAppMetrics()))
	done := make(chan error, 1)
	go func() { done <- s.Start() }()

	conn, err := grpc.Dial(s.Addr(), grpc.WithTransportCredentials(insecure.NewCredentials()))
	require.NoError(t, err)
	defer conn.Close()
	client := healthpb.NewHealthClient(conn)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	resp, err := client.Check(ctx, &healthpb.HealthCheckRequest{})
	require.NoError(t, err)
	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, resp.Status)

	s.SetServing("postgres", false)
	resp, err = client.Check(ctx, &healthpb.HealthCheckRequest{Service: "postgres"})
	require.NoError(t, err)
	assert.Equal(t, healthpb.HealthCheckResponse_NOT_SERVING, resp.Status)

	_, err = client.Check(ctx, &healthpb.HealthCheckRequest{Service: "nope"})
	assert.Equal(t, codes.NotFound, status.Code(err))

	assert.Error(t, s.Start())
	require.NoError(t, s.Stop(context.Background()))
	assert.NoError(t, <-done)
}

func TestServer_StopBeforeStart(t *testing.T) {
	s := newTestServer(t)
	assert.NoError(t, s.Stop(context.Background()))
}

func TestServer_WatchHealth(t *testing.T) {
	s := newTestServer(t)
	redisErr := errors.New("connection refused")
	healthy := make(chan struct{})

	ctx, cancel := context.WithCancel(context.Background())
	finished := make(chan struct{})
	go func() {
		defer close(finished)
		s.WatchHealth(ctx, time.Hour,
			HealthCheck{Component: "postgres", Check: func(context.Context) error { return nil }},
			HealthCheck{Component: "redis", Check: func(context.Context) error {
				close(healthy)
				return redisErr
			}},
		)
	}()
	<-healthy
	cancel()
	<-finished

	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, healthStatus(t, s, "postgres"))
	assert.Equal(t, healthpb.HealthCheckResponse_NOT_SERVING, healthStatus(t, s, "redis"))
	assert.Equal(t, healthpb.HealthCheckResponse_NOT_SERVING, healthStatus(t, s, ""))
}

func TestRecoveryUnaryInterceptor(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	interceptor := recoveryUnaryInterceptor(logging.NewLoggerFromCore(core))
	info := &grpc.UnaryServerInfo{FullMethod: "/exo.Planets/Get"}

	_, err := interceptor(context.Background(), nil, info, func(context.Context, interface{}) (interface{}, error) {
		panic("kaboom")
	})
	assert.Equal(t, codes.Internal, status.Code(err))
	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "/exo.Planets/Get", logs.All()[0].ContextMap()["method"])

	resp, err := interceptor(context.Background(), "req", info, func(_ context.Context, req interface{}) (interface{}, error) {
		return req, nil
	})
	assert.NoError(t, err)
	assert.Equal(t, "req", resp)
}

func TestLoggingUnaryInterceptor(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	interceptor := loggingUnaryInterceptor(logging.NewLoggerFromCore(core))
	ok := func(context.Context, interface{}) (interface{}, error) { return nil, nil }

	_, _ = interceptor(context.Background(), nil, &grpc.UnaryServerInfo{FullMethod: "/grpc.health.v1.Health/Check"}, ok)
	assert.Equal(t, 0, logs.Len())

	_, _ = interceptor(context.Background(), nil, &grpc.UnaryServerInfo{FullMethod: "/exo.Planets/List"}, ok)
	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "OK", logs.All()[0].ContextMap()["code"])
}

func TestMetricsInterceptors_NilMetrics(t *testing.T) {
	_, err := metricsUnaryInterceptor(nil)(context.Background(), nil, &grpc.UnaryServerInfo{FullMethod: "/a.B/C"},
		func(context.Context, interface{}) (interface{}, error) { return nil, status.Error(codes.NotFound, "x") })
	assert.Equal(t, codes.NotFound, status.Code(err))
}

func TestSplitMethodName(t *testing.T) {
	tests := []struct {
		in, service, method string
	}{
		{"/grpc.health.v1.Health/Check", "grpc.health.v1.Health", "Check"},
		{"/Solo", "unknown", "Solo"},
		{"", "unknown", ""},
	}
	for _, tt := range tests {
		service, method := splitMethodName(tt.in)
		assert.Equal(t, tt.service, service, tt.in)
		assert.Equal(t, tt.method, method, tt.in)
	}
}

//Personal.AI order the ending
