package constants

const (
	PubSubProviderLocal  = "local"
	PubSubProviderGoogle = "google"
)

const (
	// MaxIPAddressLength and MaxUserAgentLength match the audit column sizes.
	MaxIPAddressLength = 45
	MaxUserAgentLength = 512
)
