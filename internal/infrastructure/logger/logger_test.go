package logger

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	gormlogger "gorm.io/gorm/logger"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want zapcore.Level
	}{
		{"debug", zapcore.DebugLevel},
		{"INFO", zapcore.InfoLevel},
		{"warn", zapcore.WarnLevel},
		{"warning", zapcore.WarnLevel},
		{"error", zapcore.ErrorLevel},
		{"verbose", zapcore.InfoLevel},
		{"", zapcore.InfoLevel},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseLevel(tt.in))
		})
	}
}

func TestNew(t *testing.T) {
	t.Run("console to stdout", func(t *testing.T) {
		l, err := New(DefaultConfig())
		require.NoError(t, err)
		assert.True(t, l.Core().Enabled(zapcore.DebugLevel))
	})

	t.Run("json to file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "app.log")
		l, err := New(Config{Level: "warn", Format: "json", Output: path})
		require.NoError(t, err)
		assert.False(t, l.Core().Enabled(zapcore.InfoLevel))
		assert.FileExists(t, path)
	})

	t.Run("unwritable file fails", func(t *testing.T) {
		_, err := New(Config{Output: filepath.Join(t.TempDir(), "missing", "app.log")})
		assert.Error(t, err)
	})
}

func TestContextHelpers(t *testing.T) {
	core, recorded := observer.New(zapcore.InfoLevel)
	base := zap.New(core)

	ctx := context.Background()
	assert.NotNil(t, FromContext(ctx))

	ctx, l := WithRequestID(ctx, base, "req-1")
	ctx, l = WithSessionID(ctx, l, "sess-1")
	ctx, l = WithCustomerID(ctx, l, "")

	assert.Equal(t, "req-1", GetRequestID(ctx))
	assert.Equal(t, "sess-1", GetSessionID(ctx))
	assert.Empty(t, GetCustomerID(ctx))
	assert.Same(t, l, FromContext(ctx))

	L(ctx).Info("hello")
	require.Equal(t, 1, recorded.Len())
	fields := recorded.All()[0].ContextMap()
	assert.Equal(t, "req-1", fields["request_id"])
	assert.Equal(t, "sess-1", fields["session_id"])
	assert.NotContains(t, fields, "customer_id")
	assert.NotContains(t, fields, "trace_id")
}

func TestWithTraceContext(t *testing.T) {
	core, recorded := observer.New(zapcore.InfoLevel)
	traceID, _ := trace.TraceIDFromHex("0102030405060708090a0b0c0d0e0f10")
	spanID, _ := trace.SpanIDFromHex("0102030405060708")
	sc := trace.NewSpanContext(trace.SpanContextConfig{TraceID: traceID, SpanID: spanID})
	ctx := trace.ContextWithSpanContext(context.Background(), sc)

	WithTraceContext(ctx, zap.New(core)).Info("traced")

	assert.Equal(t, traceID.String(), GetTraceID(ctx))
	fields := recorded.All()[0].ContextMap()
	assert.Equal(t, traceID.String(), fields["trace_id"])
	assert.Equal(t, spanID.String(), fields["span_id"])
}

func TestGinMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)

	core, recorded := observer.New(zapcore.InfoLevel)
	router := gin.New()
	router.Use(GinMiddleware(zap.New(core)))
	router.GET("/ok", func(c *gin.Context) {
		assert.Equal(t, "sess-9", GetSessionID(c.Request.Context()))
		c.Status(http.StatusOK)
	})
	router.GET("/missing", func(c *gin.Context) {
		c.Status(http.StatusNotFound)
	})
	router.GET("/broken", func(c *gin.Context) {
		c.Status(http.StatusInternalServerError)
	})

	for path, level := range map[string]zapcore.Level{
		"/ok":      zapcore.InfoLevel,
		"/missing": zapcore.WarnLevel,
		"/broken":  zapcore.ErrorLevel,
	} {
		t.Run(path, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, path, nil)
			req.Header.Set(HeaderSessionID, "sess-9")
			router.ServeHTTP(httptest.NewRecorder(), req)

			entries := recorded.TakeAll()
			require.Len(t, entries, 1)
			assert.Equal(t, level, entries[0].Level)
			assert.Equal(t, "sess-9", entries[0].ContextMap()["session_id"])
		})
	}
}

func TestRecovery(t *testing.T) {
	gin.SetMode(gin.TestMode)

	core, recorded := observer.New(zapcore.ErrorLevel)
	router := gin.New()
	router.Use(Recovery(zap.New(core)))
	router.GET("/panic", func(c *gin.Context) { panic("boom") })

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/panic", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	require.Equal(t, 1, recorded.Len())
	assert.Equal(t, "Panic recovered", recorded.All()[0].Message)
}

func TestGormLogger_Trace(t *testing.T) {
	core, recorded := observer.New(zapcore.DebugLevel)
	l := NewGormLogger(zap.New(core), gormlogger.Warn, 100*time.Millisecond)
	fc := func() (string, int64) { return "SELECT 1", 1 }

	l.Trace(context.Background(), time.Now(), fc, gormlogger.ErrRecordNotFound)
	assert.Equal(t, 0, recorded.Len())

	l.Trace(context.Background(), time.Now(), fc, assert.AnError)
	require.Equal(t, 1, recorded.Len())
	assert.Equal(t, "SQL Error", recorded.TakeAll()[0].Message)

	l.Trace(context.Background(), time.Now().Add(-time.Second), fc, nil)
	require.Equal(t, 1, recorded.Len())
	assert.Equal(t, "Slow SQL", recorded.TakeAll()[0].Message)

	l.Trace(context.Background(), time.Now(), fc, nil)
	assert.Equal(t, 0, recorded.Len())

	l.LogMode(gormlogger.Info).Trace(context.Background(), time.Now(), fc, nil)
	assert.Equal(t, 1, recorded.Len())
}

func TestGormLevel(t *testing.T) {
	assert.Equal(t, gormlogger.Silent, GormLevel("silent"))
	assert.Equal(t, gormlogger.Error, GormLevel("error"))
	assert.Equal(t, gormlogger.Info, GormLevel("debug"))
	assert.Equal(t, gormlogger.Warn, GormLevel("anything"))
}
