package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

type LoggingCfg struct {
	Level string `mapstructure:"level"`
}

type DirsCfg struct {
	TempDir   string `mapstructure:"temp_dir"`
	OutputDir string `mapstructure:"output_dir"`
	CertDir   string `mapstructure:"cert_dir"`
}

type ToolsCfg struct {
	FFmpeg      string        `mapstructure:"ffmpeg"`
	FFprobe     string        `mapstructure:"ffprobe"`
	C2PATool    string        `mapstructure:"c2patool"`
	CertGen     string        `mapstructure:"certgen"`
	ToolTimeout time.Duration `mapstructure:"tool_timeout"`
}

type PipelineCfg struct {
	SegmentDuration float64 `mapstructure:"segment_duration"`
	VerifyWorkers   int     `mapstructure:"verify_workers"`
}

type DetectionCfg struct {
	Threshold float64 `mapstructure:"threshold"`
	Model     string  `mapstructure:"model"`
}

type SigningCfg struct {
	PrivateKeyPath string `mapstructure:"private_key_path"`
	SignCertPath   string `mapstructure:"sign_cert_path"`
	// Attestation keys are local P-256 PEM files, separate from the
	// C2PA signing material managed by certgen.
	AttestPrivateKeyPath string `mapstructure:"attest_private_key_path"`
	AttestPublicKeyPath  string `mapstructure:"attest_public_key_path"`
}

type Config struct {
	Version   string       `mapstructure:"version"`
	Dirs      DirsCfg      `mapstructure:"dirs"`
	Tools     ToolsCfg     `mapstructure:"tools"`
	Pipeline  PipelineCfg  `mapstructure:"pipeline"`
	Detection DetectionCfg `mapstructure:"detection"`
	Signing   SigningCfg   `mapstructure:"signing"`
	Logging   LoggingCfg   `mapstructure:"logging"`
}

var cfg *Config

// Load populates global config from a viper instance
func Load(v *viper.Viper) error {
	// set defaults
	v.SetDefault("version", "0.1")
	v.SetDefault("dirs.temp_dir", "temp")
	v.SetDefault("dirs.output_dir", "outputs")
	v.SetDefault("dirs.cert_dir", "certs")
	v.SetDefault("tools.ffmpeg", "ffmpeg")
	v.SetDefault("tools.ffprobe", "ffprobe")
	v.SetDefault("tools.c2patool", "c2patool")
	v.SetDefault("tools.certgen", "certgen")
	v.SetDefault("tools.tool_timeout", "5m")
	v.SetDefault("pipeline.segment_duration", 10.0)
	v.SetDefault("pipeline.verify_workers", 4)
	v.SetDefault("detection.threshold", 0.5)
	v.SetDefault("detection.model", "static")
	v.SetDefault("signing.private_key_path", "certs/es256k_private.pem")
	v.SetDefault("signing.sign_cert_path", "certs/es256k_cert.pem")
	v.SetDefault("signing.attest_private_key_path", "certs/attest_private.pem")
	v.SetDefault("signing.attest_public_key_path", "certs/attest_public.pem")
	v.SetDefault("logging.level", "info")

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return fmt.Errorf("unmarshal config: %w", err)
	}
	cfg = &c
	return nil
}

func Get() *Config {
	if cfg == nil {
		cfg = &Config{}
	}
	return cfg
}
