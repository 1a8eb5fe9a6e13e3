package main

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/pdiddy/paper-fetch/pkg/types"
)

const defaultTimeout = 60 * time.Second

func setDefaults() {
	viper.SetDefault("output_dir", types.DefaultOutputDir)
	viper.SetDefault("mirror_base", types.DefaultMirrorBase)
	viper.SetDefault("crossref_base", types.DefaultCrossRefBase)
	viper.SetDefault("user_agent", types.DefaultUserAgent)
	viper.SetDefault("timeout", defaultTimeout)
	viper.SetDefault("extractors", types.DefaultExtractors)
	viper.SetDefault("log_level", "info")
}

// fetchConfig assembles the FetchConfig from flags, environment and the
// config file, in that order of precedence.
func fetchConfig() types.FetchConfig {
	return types.FetchConfig{
		HTTPConfig: types.HTTPConfig{
			Timeout:   viper.GetDuration("timeout"),
			UserAgent: viper.GetString("user_agent"),
		},
		OutputDir:     viper.GetString("output_dir"),
		MirrorBase:    viper.GetString("mirror_base"),
		CrossRefBase:  viper.GetString("crossref_base"),
		Mailto:        viper.GetString("mailto"),
		Extractors:    viper.GetStringSlice("extractors"),
		WriteMetadata: viper.GetBool("write_metadata"),
		VerifyPDF:     viper.GetBool("verify_pdf"),
	}.WithDefaults()
}

// newLogger builds a console logger on stderr at the given level.
func newLogger(level string) (*zap.Logger, error) {
	if level == "" {
		level = "info"
	}
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}

	cfg := zap.NewDevelopmentConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	cfg.DisableStacktrace = true
	cfg.DisableCaller = true
	cfg.EncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")
	return cfg.Build()
}
