package discovery

import (
	"errors"
	"time"
)

// mDNS service constants.
const (
	// ServiceType is the DNS-SD service type for Plume brokers.
	ServiceType = "_plume._tcp"

	// Domain is the mDNS domain.
	Domain = "local."

	// DefaultPort is the default broker port advertised when the info
	// does not carry one.
	DefaultPort = 4222

	// BrowseTimeout is the default timeout for browse operations.
	BrowseTimeout = 10 * time.Second

	// DefaultTTL is the default advertisement TTL.
	DefaultTTL = 120 * time.Second

	// MaxInstanceNameLen is the maximum mDNS instance name length.
	MaxInstanceNameLen = 63
)

// TXT record keys.
const (
	// TXTKeyVersion is the broker protocol version (required).
	TXTKeyVersion = "v"

	// TXTKeyMaxPayload is the broker's payload size limit in bytes.
	TXTKeyMaxPayload = "mp"

	// TXTKeyCluster is an optional cluster name grouping brokers.
	TXTKeyCluster = "cl"

	// TXTKeyAuth indicates whether the broker requires authentication.
	TXTKeyAuth = "auth"
)

// Discovery errors.
var (
	// ErrMissingRequired indicates a required TXT record is missing.
	ErrMissingRequired = errors.New("missing required TXT record")

	// ErrInvalidTXTRecord indicates a malformed TXT record value.
	ErrInvalidTXTRecord = errors.New("invalid TXT record")

	// ErrInstanceNameInvalid indicates an unusable mDNS instance name.
	ErrInstanceNameInvalid = errors.New("invalid instance name")

	// ErrNotFound indicates no broker was discovered before the
	// timeout or cancellation.
	ErrNotFound = errors.New("no broker found")
)

// BrokerInfo describes a broker advertisement.
type BrokerInfo struct {
	// InstanceName is the mDNS instance name.
	InstanceName string

	// Port the broker listens on. Zero means DefaultPort.
	Port uint16

	// Version is the protocol version string (required).
	Version string

	// MaxPayload is the broker's payload limit in bytes (0 = unadvertised).
	MaxPayload int

	// Cluster optionally groups brokers.
	Cluster string

	// RequiresAuth indicates the broker expects credentials.
	RequiresAuth bool
}

// BrokerService is one discovered broker.
type BrokerService struct {
	// InstanceName is the mDNS instance name.
	InstanceName string

	// Host is the advertised hostname.
	Host string

	// Port is the broker port.
	Port uint16

	// Addresses are the resolved IP addresses (IPv4 and IPv6).
	Addresses []string

	// Version is the protocol version string.
	Version string

	// MaxPayload is the broker's payload limit in bytes (0 = unadvertised).
	MaxPayload int

	// Cluster optionally groups brokers.
	Cluster string

	// RequiresAuth indicates the broker expects credentials.
	RequiresAuth bool
}

// Addr returns the first host:port dial target for the service, or
// the hostname if no address resolved.
func (s *BrokerService) Addr() string {
	host := s.Host
	if len(s.Addresses) > 0 {
		host = s.Addresses[0]
	}
	return joinHostPort(host, s.Port)
}
