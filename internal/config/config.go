package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/alexflint/go-arg"
	"github.com/joho/godotenv"

	"github.com/jmagar/ytgrab/internal/ffmpeg"
	"github.com/jmagar/ytgrab/internal/model"
)

// Environment variables read after .env is loaded.
const (
	EnvDest     = "YTGRAB_DEST"
	EnvFfmpeg   = "YTGRAB_FFMPEG"
	EnvBackends = "YTGRAB_BACKENDS"
	EnvLogLevel = "YTGRAB_LOG_LEVEL"
	EnvLogFile  = "YTGRAB_LOG_FILE"
	EnvUsePath  = "YTGRAB_FFMPEG_FROM_PATH"
)

const (
	defaultDest  = "."
	fileBaseName = "ytgrab.json"
)

// LoadedConfigPath tracks which config file ReadConfig used. Empty when none
// was found.
var LoadedConfigPath string

// File is the optional JSON config file. Every field is optional.
type File struct {
	DestDir         string   `json:"destDir"`
	Backends        []string `json:"backends"`
	FfmpegNameStr   string   `json:"ffmpegNameStr"`
	UseFfmpegEnvVar bool     `json:"useFfmpegEnvVar"`
	Mp3             bool     `json:"mp3"`
	NoMerge         bool     `json:"noMerge"`
	Pick            bool     `json:"pick"`
	LogLevel        string   `json:"logLevel"`
	LogFile         string   `json:"logFile"`
}

// Env holds the YTGRAB_* overrides. Empty strings mean unset.
type Env struct {
	DestDir   string
	Ffmpeg    string
	Backends  string
	LogLevel  string
	LogFile   string
	UsePath   bool
	usePathOK bool
}

// SearchPaths returns the config file locations in lookup order.
func SearchPaths() ([]string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get home directory: %w", err)
	}
	return []string{
		fileBaseName,
		filepath.Join(homeDir, ".ytgrab", "config.json"),
		filepath.Join(homeDir, ".config", "ytgrab", "config.json"),
	}, nil
}

// ReadConfig reads the first config file found. A missing file is not an
// error and yields an empty File.
func ReadConfig() (*File, error) {
	LoadedConfigPath = ""
	paths, err := SearchPaths()
	if err != nil {
		return nil, err
	}
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read config at %s: %w", path, err)
		}
		var obj File
		if err := json.Unmarshal(data, &obj); err != nil {
			return nil, fmt.Errorf("failed to parse config at %s: %w", path, err)
		}
		LoadedConfigPath = path
		return &obj, nil
	}
	return &File{}, nil
}

// LoadEnv loads .env from the working directory when present and returns
// the YTGRAB_* overrides.
func LoadEnv() Env {
	_ = godotenv.Load()
	env := Env{
		DestDir:  getEnvStr(EnvDest, ""),
		Ffmpeg:   getEnvStr(EnvFfmpeg, ""),
		Backends: getEnvStr(EnvBackends, ""),
		LogLevel: getEnvStr(EnvLogLevel, ""),
		LogFile:  getEnvStr(EnvLogFile, ""),
	}
	if _, ok := os.LookupEnv(EnvUsePath); ok {
		env.UsePath = getEnvBool(EnvUsePath, false)
		env.usePathOK = true
	}
	return env
}

// ParseArgs parses CLI arguments using go-arg.
func ParseArgs() *model.Args {
	var args model.Args
	arg.MustParse(&args)
	return &args
}

// ParseCfg reads the config file, the environment and the CLI arguments and
// returns the resolved Config.
func ParseCfg() (*model.Config, error) {
	file, err := ReadConfig()
	if err != nil {
		return nil, err
	}
	env := LoadEnv()
	args := ParseArgs()
	return Resolve(args, env, file)
}

// Resolve merges the three sources. Flags win over the environment, which
// wins over the file. The ffmpeg binary is resolved last; failing to find
// one leaves FfmpegPath empty.
func Resolve(args *model.Args, env Env, file *File) (*model.Config, error) {
	if args == nil {
		args = &model.Args{}
	}
	if file == nil {
		file = &File{}
	}

	cfg := &model.Config{
		URL:             strings.TrimSpace(args.URL),
		AudioOnly:       args.AudioOnly,
		VideoOnly:       args.VideoOnly,
		Auto:            !(args.Pick || file.Pick),
		Merge:           !(args.NoMerge || file.NoMerge),
		CreateMp3:       args.Mp3 || file.Mp3,
		ListOnly:        args.List,
		CheckFfmpeg:     args.CheckFfmpeg,
		UseFfmpegEnvVar: file.UseFfmpegEnvVar,
	}
	if env.usePathOK {
		cfg.UseFfmpegEnvVar = env.UsePath
	}

	cfg.DestDir = firstNonEmpty(args.Dest, env.DestDir, file.DestDir, defaultDest)
	cfg.FfmpegNameStr = firstNonEmpty(args.Ffmpeg, env.Ffmpeg, file.FfmpegNameStr)
	cfg.LogLevel = firstNonEmpty(args.LogLevel, env.LogLevel, file.LogLevel)
	cfg.LogFile = firstNonEmpty(args.LogFile, env.LogFile, file.LogFile)

	// a flag or variable that lists no names counts as unset; a config file
	// that lists only blanks is rejected
	flagBackends := SplitBackends(args.Backends)
	envBackends := SplitBackends(env.Backends)
	switch {
	case len(flagBackends) > 0:
		cfg.Backends = flagBackends
	case len(envBackends) > 0:
		cfg.Backends = envBackends
	case len(file.Backends) > 0:
		cfg.Backends = SplitBackends(strings.Join(file.Backends, ","))
	default:
		cfg.Backends = append([]string(nil), model.DefaultBackends...)
	}
	if len(cfg.Backends) == 0 {
		return nil, model.ErrNoBackends
	}

	if path, err := ffmpeg.ResolveBinary(cfg.FfmpegNameStr, cfg.UseFfmpegEnvVar); err == nil {
		cfg.FfmpegPath = path
	}
	return cfg, nil
}

// SplitBackends splits a comma separated backend list, dropping blanks.
func SplitBackends(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if name := strings.ToLower(strings.TrimSpace(part)); name != "" {
			out = append(out, name)
		}
	}
	return out
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}

func getEnvStr(key, defaultVal string) string {
	if val := strings.TrimSpace(os.Getenv(key)); val != "" {
		return val
	}
	return defaultVal
}

func getEnvBool(key string, defaultVal bool) bool {
	if val := os.Getenv(key); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			return b
		}
	}
	return defaultVal
}
