// Package discovery implements broker discovery over mDNS/DNS-SD.
//
// Brokers advertise themselves as "_plume._tcp" services with TXT
// records describing the endpoint. Clients browse for brokers on the
// local network instead of being configured with a host and port.
//
// Advertising is only useful for broker implementations and tooling;
// the client library itself never advertises.
package discovery
