package policy

// Default returns the built-in evaluation configuration. It mirrors the
// organisation's baseline hardening profile; every value can be overridden
// by a policy file loaded with Load.
func Default() *Config {
	cfg := &Config{
		Version: 1,
		AllowedRegistries: []string{
			"registry.bank.internal",
		},
		RestrictedNamespaces: []string{
			"production",
			"prod",
		},
		RequiredLabels: []string{
			"app",
			"team",
			"env",
			"version",
			"owner",
		},
		// Three or more lowercase alphanumeric segments: team-app-env.
		NamePattern: `^[a-z0-9]+(-[a-z0-9]+){2,}$`,
		// Tags such as "1.4.x" track a moving minor release line.
		FloatingTagPattern: `\.x$`,
		LogShipperPattern:  `^(fluent-bit|fluentd|promtail|vector)`,
		RequestLimitRatio: RatioBand{
			Min: 0.4,
			Max: 0.8,
		},
		ProbeBounds: map[string]TimingBounds{
			"liveness": {
				MinInitialDelaySeconds: 5,
				MaxInitialDelaySeconds: 120,
				MinPeriodSeconds:       10,
				MaxPeriodSeconds:       60,
				MinTimeoutSeconds:      1,
				MaxTimeoutSeconds:      10,
				MinFailureThreshold:    2,
				MaxFailureThreshold:    5,
			},
			"readiness": {
				MinInitialDelaySeconds: 2,
				MaxInitialDelaySeconds: 60,
				MinPeriodSeconds:       5,
				MaxPeriodSeconds:       30,
				MinTimeoutSeconds:      1,
				MaxTimeoutSeconds:      10,
				MinFailureThreshold:    2,
				MaxFailureThreshold:    5,
			},
		},
		CheckerTimeoutSeconds: 10,
		Concurrency:           4,
		Enforcement: EnforcementConfig{
			FailOnSeverity: "ERROR",
		},
	}
	if err := cfg.CompilePatterns(); err != nil {
		// The built-in patterns are literals; they always compile.
		panic(err)
	}
	return cfg
}
