package config

// SettingsFile represents the structure of the mpkg.yaml settings file.
// Pointer fields distinguish an absent key from its zero value.
type SettingsFile struct {
	CacheDir                string            `yaml:"cache_dir"`
	Concurrency             *int              `yaml:"concurrency"`
	FixedAddressPolicy      string            `yaml:"fixed_address_policy"`
	DevDependencyPrecedence string            `yaml:"dev_dependency_precedence"`
	AllowUnresolved         *bool             `yaml:"allow_unresolved"`
	NodeResolvers           map[string]string `yaml:"node_resolvers"`
}
