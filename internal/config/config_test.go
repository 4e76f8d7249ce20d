package config

import "testing"

func TestLoadDefaults(t *testing.T) {
	cfg := Load()
	if cfg.ChunkSize != 1200 || cfg.ChunkOverlap != 150 {
		t.Fatalf("unexpected chunking defaults: size=%d overlap=%d", cfg.ChunkSize, cfg.ChunkOverlap)
	}
	if cfg.TopK != 3 {
		t.Fatalf("unexpected top_k default: %d", cfg.TopK)
	}
	want := []string{"finance", "hr", "sustainability", "general"}
	if len(cfg.Domains) != len(want) {
		t.Fatalf("unexpected domains: %v", cfg.Domains)
	}
	for i, d := range want {
		if cfg.Domains[i] != d {
			t.Fatalf("domain %d: got %s want %s", i, cfg.Domains[i], d)
		}
	}
}

func TestGetenvListNormalizes(t *testing.T) {
	t.Setenv("KNOWBASE_DOMAINS", " Finance, HR ,,legal ")
	cfg := Load()
	want := []string{"finance", "hr", "legal"}
	if len(cfg.Domains) != len(want) {
		t.Fatalf("unexpected domains: %v", cfg.Domains)
	}
	for i, d := range want {
		if cfg.Domains[i] != d {
			t.Fatalf("domain %d: got %s want %s", i, cfg.Domains[i], d)
		}
	}
}
