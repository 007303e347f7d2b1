package config

import "testing"

type sampleConfig struct {
	Name    string `split_words:"true" default:"fallback"`
	Retries int    `split_words:"true" default:"3"`
}

func TestNewFillsFromEnvironment(t *testing.T) {
	t.Setenv("APP_NAME", "smartchain")
	t.Setenv("APP_RETRIES", "5")

	conf, err := New[sampleConfig]("APP")
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if conf.Name != "smartchain" {
		t.Fatalf("Name = %q", conf.Name)
	}
	if conf.Retries != 5 {
		t.Fatalf("Retries = %d", conf.Retries)
	}
}

func TestNewAppliesDefaults(t *testing.T) {
	conf, err := New[sampleConfig]("UNSET_PREFIX")
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if conf.Name != "fallback" {
		t.Fatalf("Name = %q", conf.Name)
	}
	if conf.Retries != 3 {
		t.Fatalf("Retries = %d", conf.Retries)
	}
}

type requiredConfig struct {
	Token string `split_words:"true" required:"true"`
}

func TestNewReportsMissingRequired(t *testing.T) {
	if _, err := New[requiredConfig]("DEFINITELY_UNSET"); err == nil {
		t.Fatal("expected error for missing required variable")
	}
}
