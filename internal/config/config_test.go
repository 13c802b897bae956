package config

import "testing"

// clearEnv blanks every variable Load reads, so assertions see the built-in
// defaults regardless of the host environment. Empty values count as unset.
func clearEnv(t *testing.T) {
	t.Helper()
	keys := []string{
		"GEMINI_API_KEY", "DATABASE_URL",
		"NEO4J_URI", "NEO4J_USER", "NEO4J_PASSWORD",
		"WORKER_COUNT", "BATCH_SIZE",
		"GENERATION_MODEL", "EMBEDDING_MODEL", "EMBEDDING_BASE_URL",
		"EMBEDDING_DIMENSIONS", "DEFAULT_ORIGIN",
	}
	for _, k := range keys {
		t.Setenv(k, "")
	}
	// Keep godotenv from picking up a stray .env in the working directory.
	t.Chdir(t.TempDir())
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg := Load()

	if cfg.WorkerCount != 8 {
		t.Errorf("WorkerCount = %d, want 8", cfg.WorkerCount)
	}
	if cfg.DefaultOrigin != "en" {
		t.Errorf("DefaultOrigin = %q, want %q", cfg.DefaultOrigin, "en")
	}
	if cfg.DatabaseURL == "" || cfg.Neo4jURI == "" {
		t.Error("connection defaults must not be empty")
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("WORKER_COUNT", "3")
	t.Setenv("DEFAULT_ORIGIN", "en-vi")
	t.Setenv("EMBEDDING_DIMENSIONS", "not-a-number")

	cfg := Load()

	if cfg.WorkerCount != 3 {
		t.Errorf("WorkerCount = %d, want 3", cfg.WorkerCount)
	}
	if cfg.DefaultOrigin != "en-vi" {
		t.Errorf("DefaultOrigin = %q, want %q", cfg.DefaultOrigin, "en-vi")
	}
	// Unparseable integers fall back to the default.
	if cfg.EmbeddingDimensions != 768 {
		t.Errorf("EmbeddingDimensions = %d, want 768", cfg.EmbeddingDimensions)
	}
}
