package main

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/justestif/go-muji/internal/pipeline"
	"github.com/justestif/go-muji/internal/recommend"
)

func TestPrintResult(t *testing.T) {
	tests := []struct {
		name   string
		result *pipeline.Result
		want   []string
	}{
		{
			name:   "empty",
			result: &pipeline.Result{Weather: "현재 날씨: 맑음, 체감 온도: 20.00℃"},
			want:   []string{"현재 날씨: 맑음", pipeline.NoResultsMessage},
		},
		{
			name: "with tracks",
			result: &pipeline.Result{
				Weather:  "w",
				Location: "서울특별시",
				Recommendations: []recommend.Recommendation{
					{Title: "아이유 - 밤편지", Reason: "잔잔해요", TrackURL: "https://open.spotify.com/track/abc"},
				},
			},
			want: []string{"위치: 서울특별시", "1. 아이유 - 밤편지", "   잔잔해요", "https://open.spotify.com/track/abc"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			printResult(&buf, tt.result)
			for _, w := range tt.want {
				assert.Contains(t, buf.String(), w)
			}
		})
	}
}

func TestMigrateCmd_SQLite(t *testing.T) {
	t.Setenv("DATABASE_URL", filepath.Join(t.TempDir(), "muji.db"))
	t.Setenv("LOG_LEVEL", "error")

	var out bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetArgs([]string{"migrate", "--env-file", ""})

	require.NoError(t, root.Execute())
	assert.Contains(t, out.String(), "sqlite")
}

func TestServeCmd_MissingConfig(t *testing.T) {
	t.Setenv("WEATHER_API_KEY", "")
	t.Setenv("WEATHER_URL", "")

	root := newRootCmd()
	root.SetArgs([]string{"serve", "--env-file", ""})
	assert.Error(t, root.Execute())
}
