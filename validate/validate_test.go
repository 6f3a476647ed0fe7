package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writePreset(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write preset: %v", err)
	}
	return path
}

func hasMessage(messages []string, substr string) bool {
	for _, m := range messages {
		if strings.Contains(m, substr) {
			return true
		}
	}
	return false
}

func TestValidateConfig(t *testing.T) {
	tests := []struct {
		name      string
		file      string
		content   string
		wantValid bool
		wantError string
		wantWarn  string
		wantInfo  string
	}{
		{
			name:      "valid json",
			file:      "beginner.json",
			content:   `{"name":"Beginner","description":"9x9","width":9,"height":9,"mine_count":10}`,
			wantValid: true,
			wantInfo:  "Board: 9x9",
		},
		{
			name:      "valid yaml with seed",
			file:      "seeded.yaml",
			content:   "name: Seeded\ndescription: fixed\nwidth: 8\nheight: 8\nmine_count: 10\nseed: 7\n",
			wantValid: true,
			wantInfo:  "Seed 7: 3BV",
		},
		{
			name:      "invalid json",
			file:      "broken.json",
			content:   `{"name": "Broken",`,
			wantError: "invalid JSON",
		},
		{
			name:      "invalid yaml",
			file:      "broken.yml",
			content:   "name: [unclosed\n",
			wantError: "invalid YAML",
		},
		{
			name:      "missing name and description",
			file:      "anon.json",
			content:   `{"width":3,"height":3,"mine_count":1}`,
			wantError: "description is required",
		},
		{
			name:      "width out of range",
			file:      "wide.json",
			content:   `{"name":"Wide","description":"d","width":101,"height":3,"mine_count":1}`,
			wantError: "width must be between 1 and 100",
		},
		{
			name:      "too many mines",
			file:      "full.json",
			content:   `{"name":"Full","description":"d","width":2,"height":2,"mine_count":4}`,
			wantError: "must be less than the number of tiles",
		},
		{
			name:      "negative mines",
			file:      "negative.json",
			content:   `{"name":"Negative","description":"d","width":2,"height":2,"mine_count":-1}`,
			wantError: "must not be negative",
		},
		{
			name:      "dense board warns",
			file:      "dense.json",
			content:   `{"name":"Dense","description":"d","width":4,"height":4,"mine_count":12}`,
			wantValid: true,
			wantWarn:  "Mine density 75%",
		},
		{
			name:      "empty board warns",
			file:      "open.json",
			content:   `{"name":"Open","description":"d","width":3,"height":3,"mine_count":0}`,
			wantValid: true,
			wantWarn:  "first reveal wins",
		},
	}

	dir := t.TempDir()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := validateConfig(writePreset(t, dir, tt.file, tt.content))

			if result.Valid != tt.wantValid {
				t.Fatalf("Expected valid=%v, got %v (errors: %v)", tt.wantValid, result.Valid, result.Errors)
			}
			if result.File != tt.file {
				t.Errorf("Expected file %s, got %s", tt.file, result.File)
			}
			if tt.wantError != "" && !hasMessage(result.Errors, tt.wantError) {
				t.Errorf("Expected error containing %q, got %v", tt.wantError, result.Errors)
			}
			if tt.wantWarn != "" && !hasMessage(result.Warnings, tt.wantWarn) {
				t.Errorf("Expected warning containing %q, got %v", tt.wantWarn, result.Warnings)
			}
			if tt.wantInfo != "" && !hasMessage(result.Info, tt.wantInfo) {
				t.Errorf("Expected info containing %q, got %v", tt.wantInfo, result.Info)
			}
		})
	}
}

func TestValidateConfig_CollectsAllErrors(t *testing.T) {
	path := writePreset(t, t.TempDir(), "bad.json", `{"width":0,"height":200,"mine_count":-1}`)
	result := validateConfig(path)

	if result.Valid {
		t.Fatal("Expected invalid preset")
	}
	if len(result.Errors) < 4 {
		t.Errorf("Expected at least 4 errors, got %d: %v", len(result.Errors), result.Errors)
	}
}

func TestValidateConfig_MissingFile(t *testing.T) {
	result := validateConfig("/non/existent/preset.json")
	if result.Valid {
		t.Error("Expected missing file to be invalid")
	}
	if !hasMessage(result.Errors, "Failed to read file") {
		t.Errorf("Expected read error, got %v", result.Errors)
	}
}

func TestValidateConfig_UnsupportedExtension(t *testing.T) {
	path := writePreset(t, t.TempDir(), "preset.toml", `name = "x"`)
	result := validateConfig(path)
	if result.Valid || !hasMessage(result.Errors, "unsupported extension") {
		t.Errorf("Expected unsupported extension error, got %v", result.Errors)
	}
}

func TestDuplicateIDs(t *testing.T) {
	files := []string{"/c/beginner.json", "/c/beginner.yaml", "/c/expert.yml", "/c/custom.json"}
	dups := duplicateIDs(files)

	if len(dups) != 1 {
		t.Fatalf("Expected 1 duplicate id, got %d: %v", len(dups), dups)
	}
	if names := dups["beginner"]; len(names) != 2 {
		t.Errorf("Expected beginner defined twice, got %v", names)
	}
}

func TestValidateDir(t *testing.T) {
	t.Run("shipped presets", func(t *testing.T) {
		ok, err := validateDir("../configs")
		if err != nil {
			t.Fatalf("Failed to validate shipped presets: %v", err)
		}
		if !ok {
			t.Error("Expected shipped presets to be valid")
		}
	})

	t.Run("shadowed preset", func(t *testing.T) {
		dir := t.TempDir()
		writePreset(t, dir, "small.json", `{"name":"Small","description":"d","width":3,"height":3,"mine_count":1}`)
		writePreset(t, dir, "small.yaml", "name: Small\ndescription: d\nwidth: 3\nheight: 3\nmine_count: 1\n")

		ok, err := validateDir(dir)
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if ok {
			t.Error("Expected shadowed preset to fail validation")
		}
	})

	t.Run("empty directory", func(t *testing.T) {
		if _, err := validateDir(t.TempDir()); err == nil {
			t.Error("Expected error for a directory without presets")
		}
	})
}
