package config

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/jmagar/ytgrab/internal/model"
	"github.com/jmagar/ytgrab/internal/testutil"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{EnvDest, EnvFfmpeg, EnvBackends, EnvLogLevel, EnvLogFile} {
		t.Setenv(key, "")
	}
	t.Setenv("PATH", t.TempDir())
}

func TestResolve_Defaults(t *testing.T) {
	clearEnv(t)
	testutil.ChdirTemp(t)

	cfg, err := Resolve(&model.Args{URL: " https://youtu.be/x "}, Env{}, nil)
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	if cfg.URL != "https://youtu.be/x" {
		t.Errorf("URL not trimmed: %q", cfg.URL)
	}
	if cfg.DestDir != "." {
		t.Errorf("DestDir = %q, want .", cfg.DestDir)
	}
	if !cfg.Auto || !cfg.Merge || cfg.CreateMp3 {
		t.Errorf("unexpected defaults: auto=%v merge=%v mp3=%v", cfg.Auto, cfg.Merge, cfg.CreateMp3)
	}
	if !reflect.DeepEqual(cfg.Backends, []string{model.BackendYouTube, model.BackendYtdlp}) {
		t.Errorf("Backends = %v", cfg.Backends)
	}
	if cfg.FfmpegPath != "" {
		t.Errorf("expected no ffmpeg, got %q", cfg.FfmpegPath)
	}
	if cfg.MediaType() != model.MediaTypeBoth {
		t.Errorf("MediaType = %v", cfg.MediaType())
	}
}

func TestResolve_Precedence(t *testing.T) {
	clearEnv(t)
	testutil.ChdirTemp(t)

	file := &File{DestDir: "from-file", Backends: []string{"ytdlp"}, LogLevel: "error", LogFile: "file.log"}
	env := Env{DestDir: "from-env", LogLevel: "debug"}
	args := &model.Args{Dest: "from-flag"}

	cfg, err := Resolve(args, env, file)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.DestDir != "from-flag" {
		t.Errorf("flag should win, got %q", cfg.DestDir)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("env should beat file, got %q", cfg.LogLevel)
	}
	if cfg.LogFile != "file.log" {
		t.Errorf("file value should apply, got %q", cfg.LogFile)
	}
	if !reflect.DeepEqual(cfg.Backends, []string{"ytdlp"}) {
		t.Errorf("Backends = %v", cfg.Backends)
	}

	cfg, err = Resolve(&model.Args{Backends: "ytdlp, YouTube"}, Env{Backends: "youtube"}, file)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(cfg.Backends, []string{"ytdlp", "youtube"}) {
		t.Errorf("flag backends = %v", cfg.Backends)
	}
}

func TestResolve_FlagsMapToConfig(t *testing.T) {
	clearEnv(t)
	testutil.ChdirTemp(t)

	cfg, err := Resolve(&model.Args{AudioOnly: true, NoMerge: true, Mp3: true, Pick: true, List: true, CheckFfmpeg: true}, Env{}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Auto || cfg.Merge || !cfg.CreateMp3 || !cfg.ListOnly || !cfg.CheckFfmpeg {
		t.Fatalf("flags not applied: %+v", cfg)
	}
	if cfg.MediaType() != model.MediaTypeAudio {
		t.Fatalf("MediaType = %v", cfg.MediaType())
	}

	cfg, err = Resolve(&model.Args{}, Env{}, &File{Pick: true, NoMerge: true, Mp3: true})
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Auto || cfg.Merge || !cfg.CreateMp3 {
		t.Fatalf("file toggles not applied: %+v", cfg)
	}
}

func TestResolve_EmptyBackendList(t *testing.T) {
	clearEnv(t)
	testutil.ChdirTemp(t)

	cfg, err := Resolve(&model.Args{Backends: " , "}, Env{Backends: ","}, nil)
	if err != nil {
		t.Fatalf("blank flag should fall through to defaults, got %v", err)
	}
	if !reflect.DeepEqual(cfg.Backends, model.DefaultBackends) {
		t.Fatalf("Backends = %v, want %v", cfg.Backends, model.DefaultBackends)
	}
	cfg, err = Resolve(&model.Args{Backends: " , "}, Env{Backends: "ytdlp"}, nil)
	if err != nil || !reflect.DeepEqual(cfg.Backends, []string{"ytdlp"}) {
		t.Fatalf("blank flag should fall through to env, got %v, %v", cfg, err)
	}
	if _, err := Resolve(&model.Args{}, Env{}, &File{Backends: []string{" "}}); err != model.ErrNoBackends {
		t.Fatalf("expected ErrNoBackends, got %v", err)
	}
}

func TestResolve_FindsLocalFfmpeg(t *testing.T) {
	clearEnv(t)
	dir := testutil.ChdirTemp(t)
	testutil.WriteExecutable(t, filepath.Join(dir, "ffmpeg"))

	cfg, err := Resolve(&model.Args{}, Env{}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.FfmpegPath != "./ffmpeg" {
		t.Fatalf("FfmpegPath = %q, want ./ffmpeg", cfg.FfmpegPath)
	}

	cfg, err = Resolve(&model.Args{Ffmpeg: filepath.Join(dir, "missing")}, Env{}, nil)
	if err != nil {
		t.Fatalf("missing ffmpeg must not be a config error: %v", err)
	}
	if cfg.FfmpegPath != "" {
		t.Fatalf("expected unavailable transcoder, got %q", cfg.FfmpegPath)
	}
}

func TestReadConfig(t *testing.T) {
	home := testutil.WithTempHome(t)
	testutil.ChdirTemp(t)

	file, err := ReadConfig()
	if err != nil {
		t.Fatalf("missing config should not fail: %v", err)
	}
	if LoadedConfigPath != "" || file.DestDir != "" {
		t.Fatalf("expected empty config, got %+v from %q", file, LoadedConfigPath)
	}

	homeCfg := filepath.Join(home, ".config", "ytgrab", "config.json")
	if err := os.MkdirAll(filepath.Dir(homeCfg), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(homeCfg, []byte(`{"destDir":"/music","backends":["ytdlp"],"mp3":true}`), 0644); err != nil {
		t.Fatal(err)
	}
	file, err = ReadConfig()
	if err != nil {
		t.Fatal(err)
	}
	if LoadedConfigPath != homeCfg || file.DestDir != "/music" || !file.Mp3 {
		t.Fatalf("unexpected config %+v from %q", file, LoadedConfigPath)
	}

	if err := os.WriteFile(fileBaseName, []byte(`{"destDir":"local"}`), 0644); err != nil {
		t.Fatal(err)
	}
	file, err = ReadConfig()
	if err != nil {
		t.Fatal(err)
	}
	if LoadedConfigPath != fileBaseName || file.DestDir != "local" {
		t.Fatalf("working directory config should win, got %+v from %q", file, LoadedConfigPath)
	}

	if err := os.WriteFile(fileBaseName, []byte(`{`), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := ReadConfig(); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestLoadEnv(t *testing.T) {
	clearEnv(t)
	dir := testutil.ChdirTemp(t)
	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte("YTGRAB_LOG_FILE=from-dotenv.log\n"), 0644); err != nil {
		t.Fatal(err)
	}
	t.Setenv(EnvDest, "  /videos ")
	t.Setenv(EnvBackends, "ytdlp")
	t.Setenv(EnvUsePath, "true")
	// godotenv never overrides a variable that is set, even to ""
	_ = os.Unsetenv(EnvLogFile)
	t.Cleanup(func() { _ = os.Unsetenv(EnvLogFile) })

	env := LoadEnv()
	if env.DestDir != "/videos" || env.Backends != "ytdlp" {
		t.Fatalf("unexpected env: %+v", env)
	}
	if !env.UsePath || !env.usePathOK {
		t.Fatalf("usePath not read: %+v", env)
	}
	if env.LogFile != "from-dotenv.log" {
		t.Fatalf(".env not loaded, LogFile = %q", env.LogFile)
	}
}

func TestSplitBackends(t *testing.T) {
	tests := map[string][]string{
		"youtube,ytdlp":     {"youtube", "ytdlp"},
		" YTDLP , ,youtube": {"ytdlp", "youtube"},
		"":                  nil,
	}
	for in, want := range tests {
		if got := SplitBackends(in); !reflect.DeepEqual(got, want) {
			t.Errorf("SplitBackends(%q) = %v, want %v", in, got, want)
		}
	}
}
