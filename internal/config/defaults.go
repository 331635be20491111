package config

const (
	defaultConfigPath     = "~/.config/vidscribe/config.toml"
	defaultDownloadsDir   = "~/.local/share/vidscribe/downloads"
	defaultStateDir       = "~/.local/share/vidscribe"
	defaultLogDir         = "~/.local/share/vidscribe/logs"
	defaultAPIBind        = "0.0.0.0:5001"
	defaultYtdlpBinary    = "yt-dlp"
	defaultFFmpegBinary   = "ffmpeg"
	defaultFFprobeBinary  = "ffprobe"
	defaultSocketTimeout  = 180
	defaultCommandTimeout = 1800
	defaultUserAgent      = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 " +
		"(KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"
	defaultAudioFormat      = "mp3"
	defaultTitleMaxLength   = 60
	defaultLogFormat        = "console"
	defaultLogLevel         = "info"
	defaultLogRetentionDays = 30
	proxyEnvVar             = "PROXY_URL"
)

var defaultAllowedFormats = []string{"mp3", "m4a", "opus", "wav", "flac", "aac", "vorbis"}

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DownloadsDir:       defaultDownloadsDir,
			TranscriptsTempDir: defaultTranscriptsTempDir(),
			StateDir:           defaultStateDir,
			LogDir:             defaultLogDir,
			APIBind:            defaultAPIBind,
		},
		Engine: Engine{
			YtdlpBinary:    defaultYtdlpBinary,
			FFmpegBinary:   defaultFFmpegBinary,
			FFprobeBinary:  defaultFFprobeBinary,
			SocketTimeout:  defaultSocketTimeout,
			UserAgent:      defaultUserAgent,
			CommandTimeout: defaultCommandTimeout,
		},
		Audio: Audio{
			DefaultFormat:  defaultAudioFormat,
			AllowedFormats: append([]string(nil), defaultAllowedFormats...),
			TitleMaxLength: defaultTitleMaxLength,
		},
		History: History{
			Enabled: true,
		},
		Logging: Logging{
			Format:        defaultLogFormat,
			Level:         defaultLogLevel,
			RetentionDays: defaultLogRetentionDays,
		},
	}
}
