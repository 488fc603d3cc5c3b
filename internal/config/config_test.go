package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/pflag"

	"github.com/fpang/media-rename/internal/chat"
	"github.com/fpang/media-rename/internal/filehandler"
	"github.com/fpang/media-rename/internal/naming"
)

// isolate points HOME at an empty directory and clears env overrides.
func isolate(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	for _, key := range []string{KeyDirectory, KeyPick, KeyFields, KeyDescribe, KeyPrompt, KeyModel, KeyDryRun, KeyTimeout, KeyValidateKey, KeyAPIKey} {
		t.Setenv(EnvPrefix+"_"+strings.ToUpper(strings.ReplaceAll(key, "-", "_")), "")
	}
	t.Setenv("GEMINI_MODEL", "")
	return home
}

func parseFlags(t *testing.T, args ...string) *pflag.FlagSet {
	t.Helper()
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	RegisterFlags(fs)
	if err := fs.Parse(args); err != nil {
		t.Fatalf("parse flags: %v", err)
	}
	return fs
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestLoad_Defaults(t *testing.T) {
	isolate(t)

	cfg, err := Load(parseFlags(t), filehandler.KindPhoto, "")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Fields != naming.PhotoFields {
		t.Errorf("Fields = %s, want %s", cfg.Fields, naming.PhotoFields)
	}
	if cfg.Model != chat.DefaultModelName {
		t.Errorf("Model = %q, want %q", cfg.Model, chat.DefaultModelName)
	}
	if cfg.Timeout != 30*time.Second {
		t.Errorf("Timeout = %s, want 30s", cfg.Timeout)
	}
	if !cfg.ValidateKey || cfg.Describe || cfg.DryRun || cfg.Pick {
		t.Errorf("unexpected booleans: %+v", cfg)
	}
	if cfg.File != "" {
		t.Errorf("File = %q, want none", cfg.File)
	}
}

func TestLoad_VideoDefaults(t *testing.T) {
	isolate(t)

	cfg, err := Load(nil, filehandler.KindVideo, "")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Fields != naming.VideoFields {
		t.Errorf("Fields = %s, want %s", cfg.Fields, naming.VideoFields)
	}
	if !cfg.ValidateKey {
		t.Error("ValidateKey should default to true without flags")
	}
}

func TestLoad_Flags(t *testing.T) {
	isolate(t)

	fs := parseFlags(t, "-d", "/photos", "--fields", "device, datetime", "--dry-run", "--describe", "--timeout", "5s")
	cfg, err := Load(fs, filehandler.KindPhoto, "")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Directory != "/photos" {
		t.Errorf("Directory = %q", cfg.Directory)
	}
	want := naming.NewSelection(naming.FieldDateTime, naming.FieldDevice, naming.FieldDescription)
	if cfg.Fields != want {
		t.Errorf("Fields = %s, want %s", cfg.Fields, want)
	}
	if !cfg.DryRun || !cfg.Describe || cfg.Timeout != 5*time.Second {
		t.Errorf("cfg = %+v", cfg)
	}
}

func TestLoad_DescriptionFieldImpliesDescribe(t *testing.T) {
	isolate(t)

	cfg, err := Load(parseFlags(t, "--fields", "datetime,description"), filehandler.KindPhoto, "")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !cfg.Describe {
		t.Error("listing description should enable Describe")
	}
}

func TestLoad_Env(t *testing.T) {
	isolate(t)
	t.Setenv("MEDIA_RENAME_DRY_RUN", "true")
	t.Setenv("MEDIA_RENAME_FIELDS", "datetime")
	t.Setenv("GEMINI_MODEL", chat.ModelGemini25Flash)

	cfg, err := Load(parseFlags(t), filehandler.KindPhoto, "")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !cfg.DryRun {
		t.Error("DryRun should come from MEDIA_RENAME_DRY_RUN")
	}
	if cfg.Fields != naming.NewSelection(naming.FieldDateTime) {
		t.Errorf("Fields = %s", cfg.Fields)
	}
	if cfg.Model != chat.ModelGemini25Flash {
		t.Errorf("Model = %q, want GEMINI_MODEL value", cfg.Model)
	}
}

func TestLoad_FlagBeatsEnv(t *testing.T) {
	isolate(t)
	t.Setenv("MEDIA_RENAME_MODEL", "from-env")

	cfg, err := Load(parseFlags(t, "--model", "from-flag"), filehandler.KindPhoto, "")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Model != "from-flag" {
		t.Errorf("Model = %q, want from-flag", cfg.Model)
	}
}

func TestLoad_ExplicitFile(t *testing.T) {
	isolate(t)
	path := filepath.Join(t.TempDir(), "rename.yaml")
	writeFile(t, path, "fields: datetime,lens\ndescribe: true\nprompt: \"  three words  \"\ntimeout: 10s\napi-key: from-file\n")

	cfg, err := Load(parseFlags(t), filehandler.KindPhoto, path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	want := naming.NewSelection(naming.FieldDateTime, naming.FieldLens, naming.FieldDescription)
	if cfg.Fields != want {
		t.Errorf("Fields = %s, want %s", cfg.Fields, want)
	}
	if cfg.Prompt != "three words" || cfg.Timeout != 10*time.Second || cfg.APIKey != "from-file" {
		t.Errorf("cfg = %+v", cfg)
	}
	if cfg.File != path {
		t.Errorf("File = %q, want %q", cfg.File, path)
	}
}

func TestLoad_EnvBeatsFile(t *testing.T) {
	isolate(t)
	path := filepath.Join(t.TempDir(), "rename.yaml")
	writeFile(t, path, "prompt: from-file\n")
	t.Setenv("MEDIA_RENAME_PROMPT", "from-env")

	cfg, err := Load(parseFlags(t), filehandler.KindPhoto, path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Prompt != "from-env" {
		t.Errorf("Prompt = %q, want from-env", cfg.Prompt)
	}
}

func TestLoad_DefaultFileInHome(t *testing.T) {
	home := isolate(t)
	writeFile(t, filepath.Join(home, DefaultFileName), "dry-run: true\n")

	cfg, err := Load(parseFlags(t), filehandler.KindVideo, "")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !cfg.DryRun {
		t.Error("DryRun should come from the default config file")
	}
	if cfg.File != filepath.Join(home, DefaultFileName) {
		t.Errorf("File = %q", cfg.File)
	}
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name string
		args []string
		file string
	}{
		{"unknown field", []string{"--fields", "datetime,colour"}, ""},
		{"directory and pick", []string{"-d", "/x", "--pick"}, ""},
		{"zero timeout when describing", []string{"--describe", "--timeout", "0s"}, ""},
		{"empty model when describing", []string{"--describe", "--model", " "}, ""},
		{"missing config file", nil, "does-not-exist.yaml"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			isolate(t)
			file := tt.file
			if file != "" {
				file = filepath.Join(t.TempDir(), file)
			}
			if _, err := Load(parseFlags(t, tt.args...), filehandler.KindPhoto, file); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestLoad_ZeroTimeoutWithoutDescribe(t *testing.T) {
	isolate(t)

	if _, err := Load(parseFlags(t, "--timeout", "0s"), filehandler.KindPhoto, ""); err != nil {
		t.Errorf("timeout only matters when describing, got %v", err)
	}
}
