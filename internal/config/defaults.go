package config

// DefaultConfig returns configuration with sensible defaults.
// These defaults are used when no config file exists or when
// config file is missing specific fields.
func DefaultConfig() *Config {
	return &Config{
		API: APIConfig{
			TimeoutSeconds: 30,
			PageLimit:      100,
			TimelineLimit:  100,
		},
		Output: OutputConfig{
			DefaultFormat: "text",
		},
		Cache: CacheConfig{
			Disabled: false,
		},
	}
}

// Merge merges loaded config with defaults.
// Values from loaded config take precedence over defaults.
// Returns a new Config with merged values.
func Merge(loaded, defaults *Config) *Config {
	result := &Config{}

	result.API = mergeAPIConfig(loaded.API, defaults.API)
	result.Output = mergeOutputConfig(loaded.Output, defaults.Output)
	result.Cache = mergeCacheConfig(loaded.Cache, defaults.Cache)

	return result
}

func mergeAPIConfig(loaded, defaults APIConfig) APIConfig {
	result := APIConfig{}

	// Token: use loaded if non-empty
	if loaded.Token != "" {
		result.Token = loaded.Token
	} else {
		result.Token = defaults.Token
	}

	// TimeoutSeconds: use loaded if non-zero
	if loaded.TimeoutSeconds != 0 {
		result.TimeoutSeconds = loaded.TimeoutSeconds
	} else {
		result.TimeoutSeconds = defaults.TimeoutSeconds
	}

	// PageLimit: use loaded if non-zero
	if loaded.PageLimit != 0 {
		result.PageLimit = loaded.PageLimit
	} else {
		result.PageLimit = defaults.PageLimit
	}

	// TimelineLimit: use loaded if non-zero
	if loaded.TimelineLimit != 0 {
		result.TimelineLimit = loaded.TimelineLimit
	} else {
		result.TimelineLimit = defaults.TimelineLimit
	}

	return result
}

func mergeOutputConfig(loaded, defaults OutputConfig) OutputConfig {
	result := OutputConfig{}

	// DefaultFormat: use loaded if non-empty
	if loaded.DefaultFormat != "" {
		result.DefaultFormat = loaded.DefaultFormat
	} else {
		result.DefaultFormat = defaults.DefaultFormat
	}

	return result
}

func mergeCacheConfig(loaded, defaults CacheConfig) CacheConfig {
	result := CacheConfig{}

	// Disabled: the zero value means enabled, so the loaded value wins
	result.Disabled = loaded.Disabled

	// Dir: use loaded if non-empty
	if loaded.Dir != "" {
		result.Dir = loaded.Dir
	} else {
		result.Dir = defaults.Dir
	}

	return result
}
