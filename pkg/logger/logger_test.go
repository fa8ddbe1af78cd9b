package logger

import (
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

func TestInitLogger(t *testing.T) {
	tests := []struct {
		name      string
		level     string
		isDev     bool
		expected  logrus.Level
		formatter interface{}
	}{
		{"development defaults to debug", "", true, logrus.DebugLevel, &logrus.TextFormatter{}},
		{"production defaults to info", "", false, logrus.InfoLevel, &logrus.JSONFormatter{}},
		{"explicit level", "WARN", false, logrus.WarnLevel, &logrus.JSONFormatter{}},
		{"invalid level falls back", "loud", false, logrus.InfoLevel, &logrus.JSONFormatter{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			log := InitLogger(tt.level, tt.isDev)
			assert.Equal(t, tt.expected, log.GetLevel())
			assert.IsType(t, tt.formatter, log.Formatter)
			assert.Same(t, log, GetLogger())
		})
	}
}

func TestWithTeamContext(t *testing.T) {
	log := InitLogger("info", false)

	entry := WithTeamContext(log, "req-1", 0)
	assert.Equal(t, "req-1", entry.Data["request_id"])
	assert.NotContains(t, entry.Data, "team_id")

	entry = WithTeamContext(log, "", 7)
	assert.NotContains(t, entry.Data, "request_id")
	assert.Equal(t, uint(7), entry.Data["team_id"])
}
