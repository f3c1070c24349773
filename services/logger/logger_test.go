package logsvc

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/trezcool/vidyalaya/core"
)

func Test_keysAndValues(t *testing.T) {
	tests := []struct {
		name string
		args []interface{}
		want []interface{}
	}{
		{name: "none", args: nil, want: []interface{}{}},
		{name: "error", args: []interface{}{errors.New("boom")}, want: []interface{}{"error", "boom"}},
		{
			name: "map keys sorted",
			args: []interface{}{map[string]interface{}{"b": 2, "a": 1}},
			want: []interface{}{"a", 1, "b", 2},
		},
		{name: "nil skipped", args: []interface{}{nil, 42}, want: []interface{}{"arg1", 42}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, keysAndValues(tt.args))
		})
	}
}

func TestRollbarLogger_mirrorsToZap(t *testing.T) {
	obs, logs := observer.New(zap.DebugLevel)
	logger := NewRollbarLogger(zap.New(obs).Sugar(), &core.Config{Env: "TEST"})
	logger.Enable(false)

	logger.Info("exam created", map[string]interface{}{"exam_id": "x1"})
	logger.Error("saving marks", errors.New("db down"))

	entries := logs.AllUntimed()
	if assert.Len(t, entries, 2) {
		assert.Equal(t, "exam created", entries[0].Message)
		assert.Equal(t, map[string]interface{}{"exam_id": "x1"}, entries[0].ContextMap())
		assert.Equal(t, zap.ErrorLevel, entries[1].Level)
		assert.Equal(t, map[string]interface{}{"error": "db down"}, entries[1].ContextMap())
	}
}
