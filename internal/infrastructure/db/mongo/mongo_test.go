package mongo

import "testing"

func TestConfigClientOptions(t *testing.T) {
	opts, timeout, err := Config{URI: "mongodb://localhost:27017", Database: "auth", MaxPoolSize: 20}.clientOptions()
	if err != nil {
		t.Fatalf("clientOptions() error = %v", err)
	}
	if timeout != defaultTimeout {
		t.Errorf("timeout = %v, want %v", timeout, defaultTimeout)
	}
	if opts.AppName == nil || *opts.AppName != appName {
		t.Errorf("AppName = %v, want %q", opts.AppName, appName)
	}
	if opts.MaxPoolSize == nil || *opts.MaxPoolSize != 20 {
		t.Errorf("MaxPoolSize = %v, want 20", opts.MaxPoolSize)
	}
	if opts.ServerSelectionTimeout == nil || *opts.ServerSelectionTimeout != defaultTimeout {
		t.Errorf("ServerSelectionTimeout = %v, want %v", opts.ServerSelectionTimeout, defaultTimeout)
	}
}

func TestConfigClientOptions_Rejects(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
	}{
		{"missing uri", Config{Database: "auth"}},
		{"missing database", Config{URI: "mongodb://localhost:27017"}},
		{"malformed uri", Config{URI: "mysql://localhost", Database: "auth"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, _, err := tt.cfg.clientOptions(); err == nil {
				t.Error("expected error")
			}
		})
	}
}
