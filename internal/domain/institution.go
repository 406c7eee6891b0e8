package domain

// InstitutionRecord maps a CIDR prefix to institution metadata. The full set
// is an external, read-only table loaded once per process lifetime.
type InstitutionRecord struct {
	CIDRPrefix string `json:"cidr_prefix" yaml:"cidr"`
	Name       string `json:"name" yaml:"name"`
	Region     string `json:"region" yaml:"region"`
	Country    string `json:"country" yaml:"country"`
}
