package config

// BasicService is the common shape for optional node-side HTTP services
// such as the Prometheus metrics endpoint.
type BasicService struct {
	Enabled bool   `yaml:"Enabled"`
	Address string `yaml:"Address"`
}
