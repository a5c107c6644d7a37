package mods

import (
	"testing"

	"github.com/ZanzyTHEbar/mod-overlay/modfs/config"

	"github.com/stretchr/testify/assert"
)

func TestFromConfig(t *testing.T) {
	tests := []struct {
		name string
		cfg  config.ModsConfig
		want managerOptions
	}{
		{
			name: "zero values keep defaults",
			cfg:  config.ModsConfig{},
			want: managerOptions{manifestName: "config.yaml", ignoreFile: ".modignore", maxComponents: 16, bucketCount: 64},
		},
		{
			name: "every value applied",
			cfg: config.ModsConfig{
				ManifestName:  "mod.yaml",
				IgnoreFile:    ".ignore",
				MaxComponents: 8,
				BucketCount:   4,
				Workers:       3,
			},
			want: managerOptions{manifestName: "mod.yaml", ignoreFile: ".ignore", maxComponents: 8, bucketCount: 4, workers: 3},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := newManagerOptions([]Option{FromConfig(tt.cfg)})
			assert.Equal(t, tt.want.manifestName, o.manifestName)
			assert.Equal(t, tt.want.ignoreFile, o.ignoreFile)
			assert.Equal(t, tt.want.maxComponents, o.maxComponents)
			assert.Equal(t, tt.want.bucketCount, o.bucketCount)
			assert.Equal(t, tt.want.workers, o.workers)
		})
	}
}
